package solo

import (
	"context"

	"github.com/ib-77/tradescan/pkg/rop"
)

func Succeed[T any](input T) rop.Result[T] {
	return rop.Success(input)
}

func Fail[T any](err error) rop.Result[T] {
	return rop.Fail[T](err)
}

func Cancel[T any](err error) rop.Result[T] {
	return rop.Cancel[T](err)
}

// Try runs onTryExecute on a successful input and converts its error into a
// failure. Failed and cancelled inputs pass through unchanged.
func Try[In any, Out any](ctx context.Context, input rop.Result[In],
	onTryExecute func(ctx context.Context, r In) (Out, error)) rop.Result[Out] {

	if input.IsSuccess() {

		out, err := onTryExecute(ctx, input.Result())
		if err != nil {
			return Fail[Out](err)
		}

		return rop.Success(out)
	}

	return rop.FailFrom[In, Out](input)
}

// Guard evaluates check in isolation: a returned error becomes a failure, a
// context error becomes a cancellation and a panic is recovered into a
// failure wrapping rop.ErrPanic.
func Guard[In any, Out any](ctx context.Context, input In,
	check func(ctx context.Context, in In) (Out, error)) (res rop.Result[Out]) {

	if err := ctx.Err(); err != nil {
		return Cancel[Out](err)
	}

	defer func() {
		if r := recover(); r != nil {
			res = Fail[Out](rop.PanicError(r))
		}
	}()

	out, err := check(ctx, input)
	if err != nil {
		if rop.IsCancellationError(err) {
			return Cancel[Out](err)
		}
		return Fail[Out](err)
	}

	return rop.Success(out)
}
