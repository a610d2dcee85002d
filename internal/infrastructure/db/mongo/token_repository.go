package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/securedocs/fileshare/internal/core/domain"
)

const tokensCollection = "verification_tokens"

// VerificationTokenRepository persists pending email verification tokens.
// Consume is backed by FindOneAndDelete, a single-document atomic operation:
// of two racing verification attempts exactly one gets the token.
type VerificationTokenRepository struct {
	coll *mongo.Collection
}

func NewVerificationTokenRepository(db *mongo.Database) *VerificationTokenRepository {
	return &VerificationTokenRepository{coll: db.Collection(tokensCollection)}
}

type mongoToken struct {
	Token     string    `bson:"_id"`
	UserID    string    `bson:"user_id"`
	ExpiresAt time.Time `bson:"expires_at"`
}

// Replace removes any pending tokens for the user before storing the new
// one, so issuing a fresh token invalidates all prior ones.
func (r *VerificationTokenRepository) Replace(ctx context.Context, token *domain.VerificationToken) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.coll.DeleteMany(ctx, bson.M{"user_id": token.UserID}); err != nil {
		return fmt.Errorf("invalidate prior tokens: %w", err)
	}

	doc := mongoToken{
		Token:     token.Token,
		UserID:    token.UserID,
		ExpiresAt: token.ExpiresAt,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert verification token: %w", err)
	}
	return nil
}

// Consume atomically removes and returns the token. Unknown and already
// consumed tokens are indistinguishable to the caller.
func (r *VerificationTokenRepository) Consume(ctx context.Context, token string) (*domain.VerificationToken, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mt mongoToken
	err := r.coll.FindOneAndDelete(ctx, bson.M{"_id": token}).Decode(&mt)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrInvalidOrExpiredToken
		}
		return nil, fmt.Errorf("consume verification token: %w", err)
	}

	return &domain.VerificationToken{
		Token:     mt.Token,
		UserID:    mt.UserID,
		ExpiresAt: mt.ExpiresAt,
	}, nil
}

// EnsureIndexes creates a TTL index so expired tokens are reaped by the
// server. Expiry is still checked at consume time; the index is hygiene.
func (r *VerificationTokenRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	})
	return err
}
