package telemetry

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lab-portal/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	calls int32
	err   error
	stamp string
}

func (f *fakeSource) Stats(ctx context.Context, file string) (*models.ServerTelemetry, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.err != nil {
		return nil, f.err
	}
	return &models.ServerTelemetry{LastUpdated: f.stamp}, nil
}

func TestPoller_FirstPollImmediate(t *testing.T) {
	src := &fakeSource{stamp: time.Now().UTC().Format(LastUpdatedLayout)}
	p := NewPoller(src, "", time.UTC, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		_, ok := p.Latest()
		return ok
	}, time.Second, 10*time.Millisecond)

	snap, ok := p.Latest()
	require.True(t, ok)
	assert.True(t, snap.Online)
	assert.NoError(t, snap.Err)

	cancel()
	<-done
}

func TestPoller_FailedTickKeepsRunning(t *testing.T) {
	src := &fakeSource{err: errors.New("agent unreachable")}
	p := NewPoller(src, "", time.UTC, 20*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	// The loop self-retries: multiple ticks happen despite every fetch failing.
	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&src.calls) >= 3
	}, time.Second, 10*time.Millisecond)

	snap, ok := p.Latest()
	require.True(t, ok)
	assert.Error(t, snap.Err)
	assert.False(t, snap.Online)
}

func TestPoller_StaleStampReportsOffline(t *testing.T) {
	src := &fakeSource{stamp: time.Now().UTC().Add(-10 * time.Minute).Format(LastUpdatedLayout)}
	p := NewPoller(src, "", time.UTC, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	require.Eventually(t, func() bool {
		_, ok := p.Latest()
		return ok
	}, time.Second, 10*time.Millisecond)

	snap, _ := p.Latest()
	assert.False(t, snap.Online)
}

func TestPoller_LateResponseDiscarded(t *testing.T) {
	src := &fakeSource{stamp: "09:00 AM; March 01, 2024"}
	p := NewPoller(src, "", time.UTC, time.Hour)

	// Simulate an old in-flight tick completing after a newer one.
	p.mu.Lock()
	p.generation = 2
	p.mu.Unlock()
	newer := Snapshot{Online: true, FetchedAt: time.Now()}
	p.publish(2, newer)

	stale := Snapshot{Online: false, FetchedAt: time.Now().Add(-time.Minute)}
	p.publish(1, stale)

	snap, ok := p.Latest()
	require.True(t, ok)
	assert.Equal(t, newer.FetchedAt, snap.FetchedAt)
	assert.True(t, snap.Online)
}

func TestPoller_SubscribeAndCancel(t *testing.T) {
	src := &fakeSource{stamp: time.Now().UTC().Format(LastUpdatedLayout)}
	p := NewPoller(src, "", time.UTC, 20*time.Millisecond)

	ch, unsubscribe := p.Subscribe()
	defer unsubscribe()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	select {
	case snap := <-ch:
		assert.NotNil(t, snap.Telemetry)
	case <-time.After(time.Second):
		t.Fatal("no snapshot delivered")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller did not stop on cancellation")
	}

	unsubscribe()
	unsubscribe() // idempotent
}
