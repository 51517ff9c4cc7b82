package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenCache tracks invalidated access tokens. A denylisted token stays
// denylisted until its natural expiry, after which the entry lapses.
type TokenCache interface {
	Denylist(ctx context.Context, token string, ttl time.Duration) error
	IsDenylisted(ctx context.Context, token string) (bool, error)
}

type tokenCache struct {
	client *redis.Client
}

// NewTokenCache creates a redis-backed token denylist
func NewTokenCache(client *redis.Client) TokenCache {
	return &tokenCache{client: client}
}

func (c *tokenCache) Denylist(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		// Token already expired, nothing to track
		return nil
	}
	return c.client.Set(ctx, "denylist:"+token, "1", ttl).Err()
}

func (c *tokenCache) IsDenylisted(ctx context.Context, token string) (bool, error) {
	n, err := c.client.Exists(ctx, "denylist:"+token).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
