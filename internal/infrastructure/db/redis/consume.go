package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LinkConsumer provides the atomic single-use guard for download links,
// backed by Redis SET NX. Key format: link:consumed:<jti>
//
// SET NX succeeds for exactly one caller per key, so two concurrent
// resolutions of the same link cannot both win, even across multiple API
// instances sharing the Redis.
type LinkConsumer struct {
	client *redis.Client
}

// NewLinkConsumer creates a LinkConsumer wrapping the given Redis client.
func NewLinkConsumer(client *redis.Client) *LinkConsumer {
	return &LinkConsumer{client: client}
}

// Consume marks the link id as used. It returns true for the first caller
// and false for every subsequent one. The key expires after ttl, which the
// caller sets to the link lifetime: once the token itself has expired the
// guard is no longer needed.
func (l *LinkConsumer) Consume(ctx context.Context, id string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = time.Hour
	}
	ok, err := l.client.SetNX(ctx, l.key(id), "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("consume link: %w", err)
	}
	return ok, nil
}

func (l *LinkConsumer) key(id string) string {
	return fmt.Sprintf("link:consumed:%s", id)
}
