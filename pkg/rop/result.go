package rop

// Result carries the outcome of one unit of work: a value, a failure or a
// cancellation. The zero Result is empty (neither success nor failure).
type Result[T any] struct {
	result    T
	err       error
	isSuccess bool
	isCancel  bool
}

func Success[T any](r T) Result[T] {
	return Result[T]{
		result:    r,
		isSuccess: true,
	}
}

func Fail[T any](err error) Result[T] {
	return Result[T]{
		err: err,
	}
}

func Cancel[T any](err error) Result[T] {
	return Result[T]{
		err:      err,
		isCancel: true,
	}
}

// FailFrom moves a failed or cancelled result to another value type.
func FailFrom[In, Out any](from Result[In]) Result[Out] {
	return Result[Out]{
		err:      from.err,
		isCancel: from.isCancel,
	}
}

func (r Result[T]) Result() T {
	return r.result
}

func (r Result[T]) Err() error {
	return r.err
}

func (r Result[T]) IsSuccess() bool {
	return r.isSuccess
}

func (r Result[T]) IsFailure() bool {
	return !r.isSuccess && !r.isCancel && r.err != nil
}

func (r Result[T]) IsCancel() bool {
	return r.isCancel
}

func (r Result[T]) IsEmpty() bool {
	return r.err == nil && !r.isCancel && !r.isSuccess
}
