package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dinostore/backend/internal/audit"
)

type fakeExpirer struct {
	cutoffs []time.Time
	count   int64
	err     error
}

func (f *fakeExpirer) ExpireStale(_ context.Context, cutoff time.Time) (int64, error) {
	f.cutoffs = append(f.cutoffs, cutoff)
	return f.count, f.err
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestScheduler_Sweep(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

	t.Run("expires entries older than ttl and audits", func(t *testing.T) {
		sink, hook := test.NewNullLogger()
		expirer := &fakeExpirer{count: 3}
		s := NewScheduler(expirer, audit.NewLoggerWithSink(sink), "@every 15m", 48*time.Hour)
		s.now = fixedClock(now)

		count, err := s.Sweep(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
		require.Len(t, expirer.cutoffs, 1)
		assert.Equal(t, now.Add(-48*time.Hour), expirer.cutoffs[0])
		require.Len(t, hook.AllEntries(), 1)
		assert.Contains(t, hook.LastEntry().Message, audit.EventSweep)
	})

	t.Run("nothing to expire writes no audit", func(t *testing.T) {
		sink, hook := test.NewNullLogger()
		s := NewScheduler(&fakeExpirer{}, audit.NewLoggerWithSink(sink), "@every 15m", 48*time.Hour)

		count, err := s.Sweep(context.Background())
		require.NoError(t, err)
		assert.Zero(t, count)
		assert.Empty(t, hook.AllEntries())
	})

	t.Run("storage error", func(t *testing.T) {
		sink, _ := test.NewNullLogger()
		s := NewScheduler(&fakeExpirer{err: errors.New("connection refused")}, audit.NewLoggerWithSink(sink), "@every 15m", 48*time.Hour)

		_, err := s.Sweep(context.Background())
		assert.Error(t, err)
	})
}

func TestScheduler_Start(t *testing.T) {
	sink, _ := test.NewNullLogger()

	t.Run("invalid cron expression", func(t *testing.T) {
		s := NewScheduler(&fakeExpirer{}, audit.NewLoggerWithSink(sink), "every now and then", time.Hour)
		assert.Error(t, s.Start(context.Background()))
	})

	t.Run("start and stop", func(t *testing.T) {
		s := NewScheduler(&fakeExpirer{}, audit.NewLoggerWithSink(sink), "@every 1h", time.Hour)
		require.NoError(t, s.Start(context.Background()))
		s.Stop()
	})
}
