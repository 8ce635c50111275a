package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasher_HashAndVerify(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	hash, err := h.Hash("pw12345678")
	require.NoError(t, err)
	assert.NotEqual(t, "pw12345678", hash)

	assert.True(t, h.Verify(hash, "pw12345678"))
	assert.False(t, h.Verify(hash, "wrong-password"))
}

func TestPasswordHasher_DistinctHashes(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	h1, err := h.Hash("pw12345678")
	require.NoError(t, err)
	h2, err := h.Hash("pw12345678")
	require.NoError(t, err)

	// bcrypt salts every hash.
	assert.NotEqual(t, h1, h2)
}

func TestPasswordHasher_MalformedHash(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)
	assert.False(t, h.Verify("not-a-bcrypt-hash", "pw12345678"))
	assert.False(t, h.Verify("", "pw12345678"))
}

func TestNewPasswordHasher_CostOutOfRange(t *testing.T) {
	h := NewPasswordHasher(99)
	assert.Equal(t, DefaultBcryptCost, h.cost)

	h = NewPasswordHasher(0)
	assert.Equal(t, DefaultBcryptCost, h.cost)
}
