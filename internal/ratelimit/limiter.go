package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/yashpagade-yp/user-login/pkg/errors"
)

// Config holds recovery rate limiter tuning parameters.
type Config struct {
	// MaxRequests is the number of recovery codes an email may request
	// within one window.
	MaxRequests int

	// Window is the fixed window over which requests are counted.
	Window time.Duration
}

// DefaultConfig allows 3 recovery requests per email per 15 minutes.
func DefaultConfig() Config {
	return Config{
		MaxRequests: 3,
		Window:      15 * time.Minute,
	}
}

// RecoveryLimiter throttles password recovery requests per email address
// using Redis fixed-window counters. Without it, the recovery endpoint
// could be used to flood a mailbox with codes.
type RecoveryLimiter struct {
	redis  redis.UniversalClient
	config Config
}

// NewRecoveryLimiter creates a limiter backed by the given Redis client.
func NewRecoveryLimiter(redisClient redis.UniversalClient, cfg Config) *RecoveryLimiter {
	return &RecoveryLimiter{
		redis:  redisClient,
		config: cfg,
	}
}

func recoveryKey(email string) string {
	return "recovery:" + strings.ToLower(email)
}

// Allow records a recovery request for the email and reports whether it is
// within budget. Returns a rate-limited error when the budget is exhausted.
func (l *RecoveryLimiter) Allow(ctx context.Context, email string) error {
	key := recoveryKey(email)

	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("increment recovery counter: %w", err)
	}

	// Fixed-window semantics: set TTL only for the first hit in the window.
	if count == 1 {
		if err := l.redis.Expire(ctx, key, l.config.Window).Err(); err != nil {
			return fmt.Errorf("set recovery counter ttl: %w", err)
		}
	}

	if count > int64(l.config.MaxRequests) {
		return apperrors.RateLimited("too many recovery requests, try again later")
	}

	return nil
}

// Reset clears the counter for the email. Called after a successful
// password reset so the next recovery starts fresh.
func (l *RecoveryLimiter) Reset(ctx context.Context, email string) error {
	if err := l.redis.Del(ctx, recoveryKey(email)).Err(); err != nil {
		return fmt.Errorf("reset recovery counter: %w", err)
	}
	return nil
}
