package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kontakty/contacts-api/internal/infrastructure/metrics"
)

const storeLabel = "redis"

// LimiterConfig tunes the login lockout policy.
type LimiterConfig struct {
	MaxFailures int
	Window      time.Duration
	Lockout     time.Duration
}

// limiterClient is the subset of *redis.Client the limiter needs.
type limiterClient interface {
	TTL(ctx context.Context, key string) *redis.DurationCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// LoginLimiter locks a username after MaxFailures failed logins within Window.
// Key format:
//
//	login:fail:<username>  failure counter, expires after Window
//	login:lock:<username>  lock marker, expires after Lockout
type LoginLimiter struct {
	client limiterClient
	cfg    LimiterConfig
}

// NewLoginLimiter creates a LoginLimiter wrapping the given Redis client.
func NewLoginLimiter(client *redis.Client, cfg LimiterConfig) *LoginLimiter {
	return newLoginLimiter(client, cfg)
}

func newLoginLimiter(client limiterClient, cfg LimiterConfig) *LoginLimiter {
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = 5
	}
	if cfg.Window <= 0 {
		cfg.Window = 15 * time.Minute
	}
	if cfg.Lockout <= 0 {
		cfg.Lockout = 15 * time.Minute
	}
	return &LoginLimiter{client: client, cfg: cfg}
}

// Allow reports whether the username is currently unlocked.
func (l *LoginLimiter) Allow(ctx context.Context, username string) (bool, time.Duration, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	defer metrics.ObserveStore(storeLabel, "limiter_allow", time.Now())

	ttl, err := l.client.TTL(ctx, lockKey(username)).Result()
	if err != nil {
		return false, 0, fmt.Errorf("limiter ttl: %w", err)
	}
	if ttl > 0 {
		return false, ttl, nil
	}
	return true, 0, nil
}

// Failure counts a failed attempt and locks the username once the threshold
// is reached.
func (l *LoginLimiter) Failure(ctx context.Context, username string) (bool, time.Duration, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	defer metrics.ObserveStore(storeLabel, "limiter_failure", time.Now())

	key := failKey(username)
	n, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return false, 0, fmt.Errorf("limiter incr: %w", err)
	}
	if n == 1 {
		if err := l.client.Expire(ctx, key, l.cfg.Window).Err(); err != nil {
			return false, 0, fmt.Errorf("limiter expire: %w", err)
		}
	}
	if n < int64(l.cfg.MaxFailures) {
		return false, 0, nil
	}

	if err := l.client.Set(ctx, lockKey(username), "1", l.cfg.Lockout).Err(); err != nil {
		return false, 0, fmt.Errorf("limiter lock: %w", err)
	}
	if err := l.client.Del(ctx, key).Err(); err != nil {
		return false, 0, fmt.Errorf("limiter reset: %w", err)
	}
	return true, l.cfg.Lockout, nil
}

// Success clears the failure counter.
func (l *LoginLimiter) Success(ctx context.Context, username string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	return l.client.Del(ctx, failKey(username)).Err()
}

// Keys fold case so spelling variants of a username share one counter.
func failKey(username string) string {
	return "login:fail:" + strings.ToLower(username)
}

func lockKey(username string) string {
	return "login:lock:" + strings.ToLower(username)
}
