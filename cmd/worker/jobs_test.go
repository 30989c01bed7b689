package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type expirerFunc func(ctx context.Context, now time.Time) ([]int64, error)

func (f expirerFunc) ExpireDue(ctx context.Context, now time.Time) ([]int64, error) {
	return f(ctx, now)
}

func TestNewSchedulerRejectsBadSpec(t *testing.T) {
	_, err := newScheduler(time.UTC, zerolog.Nop(), []job{{
		name: "broken",
		spec: "every minute",
		run:  func(context.Context) error { return nil },
	}})
	require.Error(t, err)
	require.Contains(t, err.Error(), "broken")
}

func TestNewSchedulerAcceptsDescriptors(t *testing.T) {
	sched, err := newScheduler(time.UTC, zerolog.Nop(), []job{
		{name: "a", spec: "@every 1m", run: func(context.Context) error { return nil }},
		{name: "b", spec: "*/30 * * * * *", run: func(context.Context) error { return nil }},
	})
	require.NoError(t, err)
	require.Len(t, sched.Entries(), 2)
}

func TestExpirePromotionsPropagatesError(t *testing.T) {
	boom := errors.New("db down")
	run := expirePromotions(expirerFunc(func(context.Context, time.Time) ([]int64, error) {
		return nil, boom
	}), zerolog.Nop())
	require.ErrorIs(t, run(context.Background()), boom)
}

func TestExpirePromotionsPassesCurrentTime(t *testing.T) {
	var got time.Time
	run := expirePromotions(expirerFunc(func(_ context.Context, now time.Time) ([]int64, error) {
		got = now
		return []int64{4}, nil
	}), zerolog.Nop())
	before := time.Now()
	require.NoError(t, run(context.Background()))
	require.False(t, got.Before(before))
}
