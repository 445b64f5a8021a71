package core

import (
	"context"
	"sync"
)

// Queue is an unbounded FIFO shared by one producer and any number of
// consumers. It is closed for good by MarkFinished.
type Queue[T any] struct {
	mu       sync.Mutex
	ready    *sync.Cond
	items    []T
	head     int
	finished bool
}

func NewQueue[T any]() *Queue[T] {
	q := &Queue[T]{}
	q.ready = sync.NewCond(&q.mu)
	return q
}

// Push appends v and wakes one waiting consumer. It never blocks. Values
// pushed after MarkFinished are dropped and Push reports false.
func (q *Queue[T]) Push(v T) bool {
	q.mu.Lock()
	if q.finished {
		q.mu.Unlock()
		return false
	}
	q.items = append(q.items, v)
	q.mu.Unlock()

	q.ready.Signal()
	return true
}

// PopOrWait removes the head value, waiting while the queue is empty and
// not finished. It reports false once the queue is empty and finished, or
// when ctx is done.
func (q *Queue[T]) PopOrWait(ctx context.Context) (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.size() == 0 && !q.finished && ctx.Done() != nil {
		// the callback needs the lock, so it cannot broadcast before we wait
		stop := context.AfterFunc(ctx, func() {
			q.mu.Lock()
			q.ready.Broadcast()
			q.mu.Unlock()
		})
		defer stop()
	}

	for q.size() == 0 && !q.finished && ctx.Err() == nil {
		q.ready.Wait()
	}

	if ctx.Err() != nil {
		var zero T
		return zero, false
	}

	return q.pop()
}

// TryPop removes the head value without waiting.
func (q *Queue[T]) TryPop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pop()
}

// MarkFinished records that nothing more will be pushed and wakes every
// waiting consumer. Calling it again has no effect.
func (q *Queue[T]) MarkFinished() {
	q.mu.Lock()
	q.finished = true
	q.mu.Unlock()

	q.ready.Broadcast()
}

func (q *Queue[T]) Finished() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.finished
}

func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.size()
}

func (q *Queue[T]) size() int {
	return len(q.items) - q.head
}

// pop must be called with mu held.
func (q *Queue[T]) pop() (T, bool) {
	var zero T
	if q.size() == 0 {
		return zero, false
	}

	v := q.items[q.head]
	q.items[q.head] = zero
	q.head++

	// reclaim the consumed prefix once it dominates the backing array
	if q.head == len(q.items) {
		q.items = q.items[:0]
		q.head = 0
	} else if q.head > 1024 && q.head*2 >= len(q.items) {
		n := copy(q.items, q.items[q.head:])
		clear(q.items[n:])
		q.items = q.items[:n]
		q.head = 0
	}

	return v, true
}
