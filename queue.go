package condqueue

// Queue is an unbounded, blocking, concurrency-safe FIFO queue.
//
// Queue is a handle: copies of a Queue value (and the result of Clone) all
// refer to the same underlying queue, so any of them may be handed to
// producer and consumer goroutines. The zero value is not ready for use;
// construct via New.
type Queue[T any] struct {
	s *state[T]
}

// New creates an empty unbounded queue.
func New[T any](opts ...Option) Queue[T] {
	return Queue[T]{s: newState[T](0, buildConfig(opts))}
}

// Push appends item to the tail and wakes one goroutine blocked in Pop.
// Push never blocks on an unbounded queue.
func (q Queue[T]) Push(item T) {
	q.s.push(item)
}

// Pop removes and returns the head value, blocking until one is available.
// Pop waits indefinitely if nothing is ever pushed.
func (q Queue[T]) Pop() T {
	return q.s.pop()
}

// TryPop removes and returns the head value without blocking.
// ok is false if the queue is empty.
func (q Queue[T]) TryPop() (v T, ok bool) {
	return q.s.tryPop()
}

// Clone returns another handle to the same queue.
func (q Queue[T]) Clone() Queue[T] {
	return Queue[T]{s: q.s}
}

// Len returns the number of elements currently queued.
func (q Queue[T]) Len() int { return q.s.len() }

// IsEmpty reports whether the queue is empty.
func (q Queue[T]) IsEmpty() bool { return q.Len() == 0 }

// Snapshot returns a copy of the queue's contents in FIFO order.
func (q Queue[T]) Snapshot() []T { return q.s.snapshot() }
