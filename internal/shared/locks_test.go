package shared

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestLocker(t *testing.T) *MonthLocker {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewMonthLocker(client, time.Minute)
}

func TestMonthLockerSerializesSameMonth(t *testing.T) {
	locker := newTestLocker(t)
	ctx := context.Background()
	month := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)

	release, err := locker.Acquire(ctx, month)
	require.NoError(t, err)

	_, err = locker.Acquire(ctx, month)
	require.ErrorIs(t, err, ErrMonthLocked)

	release()

	release2, err := locker.Acquire(ctx, month)
	require.NoError(t, err)
	release2()
}

func TestMonthLockerAllowsDifferentMonths(t *testing.T) {
	locker := newTestLocker(t)
	ctx := context.Background()

	releaseJan, err := locker.Acquire(ctx, time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	defer releaseJan()

	releaseFeb, err := locker.Acquire(ctx, time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	releaseFeb()
}

func TestMonthLockerNilClientIsLockless(t *testing.T) {
	var locker *MonthLocker
	release, err := locker.Acquire(context.Background(), time.Now())
	require.NoError(t, err)
	release()
}
