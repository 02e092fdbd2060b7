package usecase

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAutosaver_DebouncesBursts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	a := NewAutosaver(30*time.Millisecond, func(ctx context.Context) error {
		calls.Add(1)
		return nil
	}, nil)
	go a.Run(ctx)

	for i := 0; i < 10; i++ {
		a.Notify()
		time.Sleep(2 * time.Millisecond)
	}

	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestAutosaver_SavesAgainAfterNewEdits(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	a := NewAutosaver(5*time.Millisecond, func(ctx context.Context) error {
		calls.Add(1)
		return nil
	}, nil)
	go a.Run(ctx)

	a.Notify()
	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)

	a.Notify()
	require.Eventually(t, func() bool { return calls.Load() == 2 }, time.Second, time.Millisecond)
}

func TestAutosaver_FlushesPendingOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var calls atomic.Int32
	a := NewAutosaver(time.Hour, func(ctx context.Context) error {
		assert.NoError(t, ctx.Err())
		calls.Add(1)
		return nil
	}, nil)

	done := make(chan struct{})
	go func() {
		a.Run(ctx)
		close(done)
	}()

	a.Notify()
	// give Run a chance to pick the event up before cancelling
	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestAutosaver_NoSaveWithoutEdits(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var calls atomic.Int32
	a := NewAutosaver(time.Millisecond, func(ctx context.Context) error {
		calls.Add(1)
		return nil
	}, nil)

	done := make(chan struct{})
	go func() {
		a.Run(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()
	<-done
	assert.Equal(t, int32(0), calls.Load())
}

func TestAutosaver_ErrorsAreSwallowed(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	a := NewAutosaver(time.Millisecond, func(ctx context.Context) error {
		calls.Add(1)
		return errors.New("disk unplugged")
	}, nil)
	go a.Run(ctx)

	a.Notify()
	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)

	a.Notify()
	require.Eventually(t, func() bool { return calls.Load() == 2 }, time.Second, time.Millisecond)
}

func TestNotifyNeverBlocks(t *testing.T) {
	a := NewAutosaver(0, func(ctx context.Context) error { return nil }, nil)
	assert.Equal(t, defaultAutosaveDelay, a.delay)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			a.Notify()
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Notify blocked without a consumer")
	}
}
