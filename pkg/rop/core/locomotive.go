package core

import (
	"context"
	"sync"

	"github.com/ib-77/tradescan/pkg/rop"
)

// Handlers are optional callbacks invoked by Locomotive. They run on the
// worker goroutine and must be safe for concurrent use.
type Handlers[T any] struct {
	OnMatch   func(ctx context.Context, in T)
	OnFailure func(ctx context.Context, in T, err error)
	// OnCancel receives the number of values still queued when the worker
	// left because of cancellation.
	OnCancel func(ctx context.Context, remaining int)
}

// Locomotive drains q until it is finished and empty, evaluating every value
// with engine. A failed evaluation is handed to OnFailure and the loop moves
// on. A nil engine still drains the queue but never matches.
func Locomotive[T any](ctx context.Context, q *Queue[T],
	engine func(ctx context.Context, in T) rop.Result[bool],
	handlers Handlers[T], wg *sync.WaitGroup) {
	defer wg.Done()

	for {
		in, ok := q.PopOrWait(ctx)
		if !ok {
			if ctx.Err() != nil {
				onCancel(ctx, q, engine, handlers)
			}
			return
		}

		evaluate(ctx, in, engine, handlers)
	}
}

func onCancel[T any](ctx context.Context, q *Queue[T],
	engine func(ctx context.Context, in T) rop.Result[bool], handlers Handlers[T]) {

	if IsProcessRemainingEnabled(ctx, false) {
		rest := context.WithoutCancel(ctx)
		for {
			in, ok := q.TryPop()
			if !ok {
				break
			}
			evaluate(rest, in, engine, handlers)
		}
	}

	if handlers.OnCancel != nil {
		handlers.OnCancel(ctx, q.Len())
	}
}

func evaluate[T any](ctx context.Context, in T,
	engine func(ctx context.Context, in T) rop.Result[bool], handlers Handlers[T]) {

	if engine == nil {
		return
	}

	res := engine(ctx, in)
	switch {
	case res.IsSuccess():
		if res.Result() && handlers.OnMatch != nil {
			handlers.OnMatch(ctx, in)
		}
	case res.IsFailure():
		if handlers.OnFailure != nil {
			handlers.OnFailure(ctx, in, res.Err())
		}
	}
}
