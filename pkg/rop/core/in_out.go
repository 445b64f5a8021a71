package core

import (
	"context"
	"sync"

	"github.com/ib-77/tradescan/pkg/rop"
)

// Drain removes and returns everything currently queued without waiting.
func Drain[T any](q *Queue[T]) []T {
	res := make([]T, 0, q.Len())
	for {
		v, ok := q.TryPop()
		if !ok {
			return res
		}
		res = append(res, v)
	}
}

// Lines starts n Locomotives over q and returns a channel closed once all of
// them have returned.
func Lines[T any](ctx context.Context, q *Queue[T],
	engine func(ctx context.Context, in T) rop.Result[bool],
	handlers Handlers[T], n int) <-chan struct{} {

	done := make(chan struct{})
	wg := &sync.WaitGroup{}

	for range n {
		wg.Add(1)
		go Locomotive(ctx, q, engine, handlers, wg)
	}

	go func() {
		wg.Wait()
		close(done)
	}()

	return done
}
