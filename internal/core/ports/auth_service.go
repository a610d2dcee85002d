package ports

import (
	"context"

	"github.com/securedocs/fileshare/internal/core/domain"
)

// SignupResult is returned after a successful signup.
type SignupResult struct {
	User *domain.User
	// SecureURL is the verification link the user must visit; it embeds the
	// one-time verification token.
	SecureURL string
}

// AuthService defines the signup / verification / login use cases.
type AuthService interface {
	Signup(ctx context.Context, email, password, role string) (*SignupResult, error)
	// VerifyEmail consumes the one-time token and flips the user to verified.
	VerifyEmail(ctx context.Context, token string) (*domain.User, error)
	// Login validates credentials and returns a signed access token. Fails
	// with domain.ErrEmailNotVerified for correct credentials on an
	// unverified account.
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
}
