package redisrepo

import (
	"context"
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type RateLimitRepository interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type rateLimitRepository struct {
	client *redis.Client
}

func NewRateLimitRepository(client *redis.Client) RateLimitRepository {
	return &rateLimitRepository{client: client}
}

// Allow implements a fixed-window counter. Keys are hashed so raw client IPs
// and emails never land in Redis.
func (r *rateLimitRepository) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	hasher := sha256.New()
	hasher.Write([]byte(key))
	hashedKey := fmt.Sprintf("ratelimit:%x", hasher.Sum(nil))

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, hashedKey)
	pipe.Expire(ctx, hashedKey, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}

	return incr.Val() <= int64(limit), nil
}
