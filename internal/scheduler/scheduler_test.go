package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newspulse/internal/retry"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func fastConfig(interval time.Duration) Config {
	return Config{
		Interval:   interval,
		JobTimeout: time.Second,
		Retry:      retry.Policy{MaxAttempts: 2, InitialBackoff: time.Millisecond, MaxBackoff: 2 * time.Millisecond},
	}
}

func noopJob(context.Context) error { return nil }

func TestScheduler_RunsIngestImmediately(t *testing.T) {
	var calls atomic.Int32
	ingest := func(context.Context) error {
		calls.Add(1)
		return nil
	}

	s := New(ingest, noopJob, fastConfig(time.Hour), testLogger())
	s.Start(context.Background())

	require.Eventually(t, func() bool {
		return calls.Load() == 1
	}, time.Second, 5*time.Millisecond)

	s.Stop()
	assert.Equal(t, int32(1), calls.Load())
}

func TestScheduler_RunsIngestOnInterval(t *testing.T) {
	var calls atomic.Int32
	ingest := func(context.Context) error {
		calls.Add(1)
		return nil
	}

	s := New(ingest, noopJob, fastConfig(20*time.Millisecond), testLogger())
	s.Start(context.Background())

	require.Eventually(t, func() bool {
		return calls.Load() >= 3
	}, time.Second, 5*time.Millisecond)

	s.Stop()
}

func TestScheduler_RetriesFailedJob(t *testing.T) {
	var calls atomic.Int32
	ingest := func(context.Context) error {
		if calls.Add(1) == 1 {
			return errors.New("transient")
		}
		return nil
	}

	s := New(ingest, noopJob, fastConfig(time.Hour), testLogger())
	s.Start(context.Background())

	require.Eventually(t, func() bool {
		return calls.Load() == 2
	}, time.Second, 5*time.Millisecond)

	s.Stop()
}

func TestScheduler_SwallowsExhaustedJobFailure(t *testing.T) {
	var calls atomic.Int32
	ingest := func(context.Context) error {
		calls.Add(1)
		return errors.New("persistent")
	}

	s := New(ingest, noopJob, fastConfig(time.Hour), testLogger())
	s.Start(context.Background())

	require.Eventually(t, func() bool {
		return calls.Load() == 2
	}, time.Second, 5*time.Millisecond)

	// The loop is still alive and Stop returns cleanly.
	s.Stop()
}

func TestScheduler_StartAndStopAreIdempotent(t *testing.T) {
	var calls atomic.Int32
	ingest := func(context.Context) error {
		calls.Add(1)
		return nil
	}

	s := New(ingest, noopJob, fastConfig(time.Hour), testLogger())
	s.Start(context.Background())
	s.Start(context.Background())

	require.Eventually(t, func() bool {
		return calls.Load() == 1
	}, time.Second, 5*time.Millisecond)

	s.Stop()
	s.Stop()
	assert.Equal(t, int32(1), calls.Load(), "second Start must not spawn a second loop")
}

func TestScheduler_StopWaitsForInFlightJob(t *testing.T) {
	release := make(chan struct{})
	var finished atomic.Bool

	ingest := func(context.Context) error {
		<-release
		finished.Store(true)
		return nil
	}

	s := New(ingest, noopJob, fastConfig(time.Hour), testLogger())
	s.Start(context.Background())

	time.Sleep(20 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("Stop returned while a job was still running")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return after the job finished")
	}
	assert.True(t, finished.Load())
}

func TestScheduler_ContextCancelStopsLoops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	s := New(noopJob, noopJob, fastConfig(time.Hour), testLogger())
	s.Start(ctx)

	cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("loops did not exit after context cancellation")
	}
}

func TestUntilNextMidnight(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want time.Duration
	}{
		{
			name: "midday",
			now:  time.Date(2025, 8, 30, 12, 0, 0, 0, time.UTC),
			want: 12 * time.Hour,
		},
		{
			name: "just after midnight",
			now:  time.Date(2025, 8, 30, 0, 0, 1, 0, time.UTC),
			want: 24*time.Hour - time.Second,
		},
		{
			name: "just before midnight",
			now:  time.Date(2025, 8, 30, 23, 59, 59, 0, time.UTC),
			want: time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, untilNextMidnight(tt.now))
		})
	}
}
