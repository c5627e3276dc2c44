package flowcontrol

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLimiterZeroRateIsUnlimited(t *testing.T) {
	l := NewLimiter(0)
	assert.Nil(t, l)
	assert.NoError(t, l.Acquire(context.Background()))
	l.ReportCongestion(100)
	assert.False(t, l.Paused())
	assert.Zero(t, l.Congestion())
}

func TestAcquireWithinBurstIsImmediate(t *testing.T) {
	l := NewLimiter(10)
	start := time.Now()
	for i := 0; i < 10; i++ {
		require.NoError(t, l.Acquire(context.Background()))
	}
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestAcquireBlocksBeyondBurst(t *testing.T) {
	l := NewLimiter(10)
	for i := 0; i < 10; i++ {
		require.NoError(t, l.Acquire(context.Background()))
	}
	// The 11th token needs a refill: at 10/s that is ~100ms away.
	start := time.Now()
	require.NoError(t, l.Acquire(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestCongestionEWMASmoothing(t *testing.T) {
	l := NewLimiter(10)
	l.ReportCongestion(100)
	assert.InDelta(t, 30.0, l.Congestion(), 0.01) // 0.3*100 + 0.7*0
	l.ReportCongestion(100)
	assert.InDelta(t, 51.0, l.Congestion(), 0.01)
}

func TestCongestionPausesAbove95AndResumesBelow80(t *testing.T) {
	l := NewLimiter(10)
	for i := 0; i < 12; i++ {
		l.ReportCongestion(100)
	}
	require.Greater(t, l.Congestion(), 95.0)
	assert.True(t, l.Paused())

	// One moderate sample decays the EWMA below 95 but not below 80 (0.3*70 + 0.7*98.6 ≈ 90):
	// still paused.
	l.ReportCongestion(70)
	if l.Congestion() > 80 {
		assert.True(t, l.Paused(), "pause holds until the smoothed value drops below 80")
	}

	for l.Congestion() > 80 {
		l.ReportCongestion(0)
	}
	assert.False(t, l.Paused())
}

func TestAcquireUnblocksWhenCongestionClears(t *testing.T) {
	l := NewLimiter(10)
	for i := 0; i < 12; i++ {
		l.ReportCongestion(100)
	}
	require.True(t, l.Paused())

	acquired := make(chan error, 1)
	go func() {
		acquired <- l.Acquire(context.Background())
	}()

	select {
	case <-acquired:
		t.Fatal("Acquire returned while paused")
	case <-time.After(50 * time.Millisecond):
	}

	for l.Paused() {
		l.ReportCongestion(0)
	}
	select {
	case err := <-acquired:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Acquire never unblocked after congestion cleared")
	}
}

func TestAcquireWhilePausedHonorsCancellation(t *testing.T) {
	l := NewLimiter(10)
	for i := 0; i < 12; i++ {
		l.ReportCongestion(100)
	}
	require.True(t, l.Paused())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := l.Acquire(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
