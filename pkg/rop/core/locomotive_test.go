package core

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ib-77/tradescan/pkg/rop"
	"github.com/stretchr/testify/assert"
)

func even(_ context.Context, in int) rop.Result[bool] {
	return rop.Success(in%2 == 0)
}

// Test Lines with several workers counting matches
func TestLines_CountsMatches(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	for _, workers := range []int{1, 3, 10} {
		q := NewQueue[int]()
		var matched atomic.Int64

		done := Lines(ctx, q, even, Handlers[int]{
			OnMatch: func(ctx context.Context, in int) { matched.Add(1) },
		}, workers)

		for i := range 100 {
			q.Push(i)
		}
		q.MarkFinished()

		select {
		case <-done:
		case <-ctx.Done():
			t.Fatalf("workers=%d did not finish", workers)
		}
		assert.Equal(t, int64(50), matched.Load(), "workers=%d", workers)
	}
}

func TestLocomotive_FailuresDoNotStopWorker(t *testing.T) {
	t.Parallel()

	q := NewQueue[int]()
	push(q, 1, 2, 3, 4)
	q.MarkFinished()

	bad := errors.New("bad value")
	engine := func(_ context.Context, in int) rop.Result[bool] {
		if in == 2 {
			return rop.Fail[bool](bad)
		}
		return rop.Success(true)
	}

	var mu sync.Mutex
	var failed []int
	matched := 0
	wg := &sync.WaitGroup{}
	wg.Add(1)
	Locomotive(context.Background(), q, engine, Handlers[int]{
		OnMatch: func(ctx context.Context, in int) {
			mu.Lock()
			matched++
			mu.Unlock()
		},
		OnFailure: func(ctx context.Context, in int, err error) {
			assert.ErrorIs(t, err, bad)
			mu.Lock()
			failed = append(failed, in)
			mu.Unlock()
		},
	}, wg)
	wg.Wait()

	assert.Equal(t, 3, matched)
	assert.Equal(t, []int{2}, failed)
}

func TestLocomotive_NilEngineDrains(t *testing.T) {
	t.Parallel()

	q := NewQueue[int]()
	push(q, 1, 2, 3)
	q.MarkFinished()

	called := false
	wg := &sync.WaitGroup{}
	wg.Add(1)
	Locomotive(context.Background(), q, nil, Handlers[int]{
		OnMatch: func(ctx context.Context, in int) { called = true },
	}, wg)
	wg.Wait()

	assert.False(t, called)
	assert.Equal(t, 0, q.Len())
}

func TestLocomotive_Cancel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name             string
		processRemaining bool
		wantMatched      int64
		wantRemaining    int
	}{
		{name: "leave remaining", processRemaining: false, wantMatched: 0, wantRemaining: 5},
		{name: "process remaining", processRemaining: true, wantMatched: 5, wantRemaining: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			q := NewQueue[int]()
			push(q, 2, 4, 6, 8, 10)

			ctx, cancel := context.WithCancel(WithProcessOptions(context.Background(), tt.processRemaining))
			cancel()

			var matched atomic.Int64
			remaining := -1
			wg := &sync.WaitGroup{}
			wg.Add(1)
			Locomotive(ctx, q, even, Handlers[int]{
				OnMatch:  func(ctx context.Context, in int) { matched.Add(1) },
				OnCancel: func(ctx context.Context, rest int) { remaining = rest },
			}, wg)
			wg.Wait()

			assert.Equal(t, tt.wantMatched, matched.Load())
			assert.Equal(t, tt.wantRemaining, remaining)
		})
	}
}

func TestIsProcessRemainingEnabled(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	assert.True(t, IsProcessRemainingEnabled(ctx, true))
	assert.False(t, IsProcessRemainingEnabled(ctx, false))
	assert.True(t, IsProcessRemainingEnabled(WithProcessOptions(ctx, true), false))
	assert.False(t, IsProcessRemainingEnabled(WithProcessOptions(ctx, false), true))
}
