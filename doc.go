// Package condqueue provides generic blocking FIFO queues for producer and
// consumer goroutines.
//
// Queue is unbounded: Push never blocks and Pop blocks while the queue is
// empty. BoundedQueue holds at most a fixed number of elements: Push blocks
// while it is full, which gives producers backpressure. All methods are safe
// for concurrent use by multiple goroutines and elements are delivered in the
// order they were pushed.
//
// Both types are small handles over shared state. Copying a handle, or calling
// Clone, yields another view of the same queue; the state is reclaimed once no
// handle refers to it.
//
// There is no close, timeout or cancellation: a blocked Push or Pop returns
// only when another goroutine makes the matching Pop or Push.
package condqueue
