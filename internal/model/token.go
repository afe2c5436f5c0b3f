package model

import "time"

type TokenKind string

const (
	TokenKindConfirmation  TokenKind = "confirmation"
	TokenKindPasswordReset TokenKind = "password_reset"
	TokenKindLogin         TokenKind = "login"
)

// AuthToken is a single-use, typed, time-bounded credential. Only the hash of
// the public identifier is stored; the plaintext is returned once at issue
// time and never persisted.
type AuthToken struct {
	ID         int       `json:"id" db:"id"`
	PublicID   string    `json:"-" db:"public_id"`
	SecretHash string    `json:"-" db:"secret_hash"`
	Kind       TokenKind `json:"kind" db:"kind"`
	OwnerID    int       `json:"owner_id" db:"owner_id"`
	ExpiresAt  time.Time `json:"expires_at" db:"expires_at"`
	Consumed   bool      `json:"consumed" db:"consumed"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

func (t *AuthToken) IsExpired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}

// IsActive reports whether the token can still be consumed.
func (t *AuthToken) IsActive(now time.Time) bool {
	return !t.Consumed && !t.IsExpired(now)
}
