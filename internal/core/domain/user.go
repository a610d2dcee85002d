package domain

import "time"

const (
	RoleOps    = "ops"
	RoleClient = "client"
)

// ValidRole reports whether role is one of the roles the system knows about.
func ValidRole(role string) bool {
	return role == RoleOps || role == RoleClient
}

// User models an account. A user starts unverified and becomes verified
// exactly once, by consuming the verification token issued at signup.
// Users are never deleted.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	Verified     bool      `json:"verified"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// VerificationToken is a pending one-time email verification token. It lives
// in the store until consumed or expired; consumption is atomic.
type VerificationToken struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
}

// Expired reports whether the token is past its expiry at the given instant.
func (t VerificationToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
