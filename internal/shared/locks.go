package shared

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// MonthLockKey builds redis keys for per-month batch critical sections.
func MonthLockKey(monthKey string) string {
	return fmt.Sprintf("dues:month:%s:lock", monthKey)
}

// MonthLocker serializes due-generation and reconciliation runs for a month.
// Two runs over the same month must never race on the same Due rows.
type MonthLocker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewMonthLocker constructs a locker. TTL bounds how long a crashed run can
// keep a month locked.
func NewMonthLocker(client *redis.Client, ttl time.Duration) *MonthLocker {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &MonthLocker{client: client, ttl: ttl}
}

// Acquire takes the lock for a month and returns a release function.
// Returns ErrMonthLocked when another run holds it.
func (l *MonthLocker) Acquire(ctx context.Context, month time.Time) (func(), error) {
	if l == nil || l.client == nil {
		// Lockless mode: single-process deployments and tests.
		return func() {}, nil
	}
	key := MonthLockKey(MonthKey(month))
	ok, err := l.client.SetNX(ctx, key, "1", l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("shared: acquire month lock: %w", err)
	}
	if !ok {
		return nil, ErrMonthLocked
	}
	release := func() {
		_ = l.client.Del(context.Background(), key).Err()
	}
	return release, nil
}
