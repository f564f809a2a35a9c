package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultLockoutWindow = 15 * time.Minute

// LoginThrottle counts failed logins per username in a fixed window.
// Key format: login:fail:<username>
type LoginThrottle struct {
	client      *redis.Client
	maxAttempts int64
	window      time.Duration
}

// NewLoginThrottle creates a LoginThrottle. A non-positive window falls back to
// defaultLockoutWindow.
func NewLoginThrottle(client *redis.Client, maxAttempts int, window time.Duration) *LoginThrottle {
	if window <= 0 {
		window = defaultLockoutWindow
	}
	return &LoginThrottle{client: client, maxAttempts: int64(maxAttempts), window: window}
}

// Locked reports whether username has reached maxAttempts failures.
func (t *LoginThrottle) Locked(ctx context.Context, username string) (bool, error) {
	n, err := t.client.Get(ctx, t.key(username)).Int64()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("login throttle check: %w", err)
	}
	return n >= t.maxAttempts, nil
}

// RegisterFailure increments the counter. The window starts at the first
// failure and is not extended by later ones.
func (t *LoginThrottle) RegisterFailure(ctx context.Context, username string) error {
	key := t.key(username)
	pipe := t.client.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, t.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("login throttle register: %w", err)
	}
	return nil
}

// Reset clears the counter after a successful login.
func (t *LoginThrottle) Reset(ctx context.Context, username string) error {
	return t.client.Del(ctx, t.key(username)).Err()
}

// key uses the username verbatim; lookups are case-sensitive, so "ADMIN"
// failures must not lock "admin".
func (t *LoginThrottle) key(username string) string {
	return "login:fail:" + username
}
