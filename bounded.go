package condqueue

import "fmt"

// BoundedQueue is a blocking, concurrency-safe FIFO queue holding at most a
// fixed number of elements. Push blocks while the queue is full and Pop
// blocks while it is empty.
//
// Like Queue, BoundedQueue is a handle; copies and clones share one queue.
// The zero value is not ready for use; construct via NewBounded.
type BoundedQueue[T any] struct {
	s *state[T]
}

// NewBounded creates an empty queue that holds at most capacity elements.
// A capacity below 1 is rejected with an error wrapping ErrInvalidCapacity,
// since such a queue would block every producer forever.
func NewBounded[T any](capacity int, opts ...Option) (BoundedQueue[T], error) {
	if capacity < 1 {
		return BoundedQueue[T]{}, fmt.Errorf("%w: got %d", ErrInvalidCapacity, capacity)
	}
	return BoundedQueue[T]{s: newState[T](capacity, buildConfig(opts))}, nil
}

// MustNewBounded is like NewBounded but panics on an invalid capacity.
func MustNewBounded[T any](capacity int, opts ...Option) BoundedQueue[T] {
	q, err := NewBounded[T](capacity, opts...)
	if err != nil {
		panic(err)
	}
	return q
}

// Push appends item to the tail, blocking while the queue is full, then wakes
// one goroutine blocked in Pop.
func (q BoundedQueue[T]) Push(item T) {
	q.s.push(item)
}

// Pop removes and returns the head value, blocking while the queue is empty,
// then wakes one goroutine blocked in Push.
func (q BoundedQueue[T]) Pop() T {
	return q.s.pop()
}

// TryPop removes and returns the head value without blocking.
// ok is false if the queue is empty.
func (q BoundedQueue[T]) TryPop() (v T, ok bool) {
	return q.s.tryPop()
}

// Clone returns another handle to the same queue.
func (q BoundedQueue[T]) Clone() BoundedQueue[T] {
	return BoundedQueue[T]{s: q.s}
}

// Len returns the number of elements currently queued.
func (q BoundedQueue[T]) Len() int { return q.s.len() }

// Cap returns the maximum number of elements the queue holds.
func (q BoundedQueue[T]) Cap() int { return q.s.capacity }

// IsEmpty reports whether the queue is empty.
func (q BoundedQueue[T]) IsEmpty() bool { return q.Len() == 0 }

// Snapshot returns a copy of the queue's contents in FIFO order.
func (q BoundedQueue[T]) Snapshot() []T { return q.s.snapshot() }
