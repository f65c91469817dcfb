package session

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const statePrefix = "oauth_state:"

func OpenRedis(url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return redis.NewClient(opt), nil
}

// SetOAuthState stores a one-time connect-flow state nonce, keyed by the
// nonce, valued by the platform it was issued for.
func SetOAuthState(ctx context.Context, rdb *redis.Client, state, platform string) error {
	return rdb.Set(ctx, statePrefix+state, platform, 10*time.Minute).Err()
}

// TakeOAuthState consumes a state nonce, returning the platform it was
// issued for. A nonce can be taken once.
func TakeOAuthState(ctx context.Context, rdb *redis.Client, state string) (string, error) {
	return rdb.GetDel(ctx, statePrefix+state).Result()
}
