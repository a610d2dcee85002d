package ports

import (
	"context"

	"github.com/securedocs/fileshare/internal/core/domain"
)

// UserRepository defines persistence for user accounts.
// Create must be atomic with respect to the email uniqueness check so that
// concurrent signups with the same address cannot both succeed.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// MarkVerified flips the one-way verified flag.
	MarkVerified(ctx context.Context, userID string) error
}

// VerificationTokenRepository defines persistence for pending email
// verification tokens.
type VerificationTokenRepository interface {
	// Replace removes any pending tokens for the token's user and stores the
	// new one, so at most one token is outstanding per user.
	Replace(ctx context.Context, token *domain.VerificationToken) error
	// Consume atomically removes the token and returns it. A second Consume
	// of the same token fails with domain.ErrInvalidOrExpiredToken, even when
	// racing with the first.
	Consume(ctx context.Context, token string) (*domain.VerificationToken, error)
}

// FileRepository defines persistence for uploaded file metadata.
type FileRepository interface {
	Create(ctx context.Context, record *domain.FileRecord) error
	FindByID(ctx context.Context, id string) (*domain.FileRecord, error)
	List(ctx context.Context) ([]*domain.FileRecord, error)
}
