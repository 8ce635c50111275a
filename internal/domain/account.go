package domain

import (
	"time"
)

// Status represents the lifecycle state of an account.
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusInactive  Status = "INACTIVE"
	StatusSuspended Status = "SUSPENDED"
	StatusBlocked   Status = "BLOCKED"
)

// ValidStatus reports whether s is one of the known account statuses.
func ValidStatus(s Status) bool {
	switch s {
	case StatusActive, StatusInactive, StatusSuspended, StatusBlocked:
		return true
	}
	return false
}

// Account represents a registered account in the system.
//
// OtpCode and OtpExpiresAt form the active password recovery challenge.
// They are either both set or both nil; issuing a new challenge replaces
// any previous one.
type Account struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Phone        string     `json:"phone,omitempty"`
	Status       Status     `json:"status"`
	OtpCode      *string    `json:"-"`
	OtpExpiresAt *time.Time `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// CanLogin reports whether the account's status permits opening a session.
func (a *Account) CanLogin() bool {
	return a.Status == StatusActive
}

// HasOtpChallenge reports whether a recovery challenge is currently stored.
func (a *Account) HasOtpChallenge() bool {
	return a.OtpCode != nil && a.OtpExpiresAt != nil
}

// OtpExpired reports whether the stored challenge has passed its expiry.
// A challenge checked at exactly its expiry instant is still valid.
func (a *Account) OtpExpired(now time.Time) bool {
	if a.OtpExpiresAt == nil {
		return true
	}
	return now.After(*a.OtpExpiresAt)
}

// Session holds an issued session token and its expiry.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
