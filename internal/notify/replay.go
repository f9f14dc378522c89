package notify

import (
	"context"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// RedisReplayGuard remembers which reminders were already sent so a retried
// task does not message the customer twice.
type RedisReplayGuard struct {
	Client redis.UniversalClient
	TTL    time.Duration
}

// Acquire claims key. It reports false when the key was already claimed.
func (g RedisReplayGuard) Acquire(ctx context.Context, key string) (bool, error) {
	if g.Client == nil {
		return true, nil
	}
	ttl := g.TTL
	if ttl <= 0 {
		ttl = 48 * time.Hour
	}
	return g.Client.SetNX(ctx, "jewelry:reminder:sent:"+key, "1", ttl).Result()
}

// Release drops the claim so a later attempt may send again.
func (g RedisReplayGuard) Release(ctx context.Context, key string) error {
	if g.Client == nil {
		return nil
	}
	return g.Client.Del(ctx, "jewelry:reminder:sent:"+key).Err()
}
