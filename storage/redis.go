package storage

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"
)

var Redis *redis.Client

const sessionPrefix = "session:"

func InitializeRedis() {
	// Get Redis URL from environment, fallback to localhost for development
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "localhost:6379"
		log.Warn().Msg("REDIS_URL not set, using localhost:6379 (development mode)")
	}

	Redis = redis.NewClient(&redis.Options{
		Addr: redisURL,
		DB:   0,
	})

	log.Info().Str("addr", redisURL).Msg("redis initialized")
}

// RecordSession marks token as live for ttl. Sessions only exist while Redis
// is configured; without it every signed, unexpired token is accepted.
func RecordSession(ctx context.Context, token string, userID string, ttl time.Duration) error {
	if Redis == nil {
		return nil
	}
	return Redis.Set(ctx, sessionPrefix+token, userID, ttl).Err()
}

// SessionActive reports whether token was issued by this server and not revoked.
func SessionActive(ctx context.Context, token string) (bool, error) {
	if Redis == nil {
		return true, nil
	}
	_, err := Redis.Get(ctx, sessionPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func RevokeSession(ctx context.Context, token string) error {
	if Redis == nil {
		return nil
	}
	return Redis.Del(ctx, sessionPrefix+token).Err()
}
