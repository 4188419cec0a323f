package condqueue

import (
	"sync"
	"time"

	"github.com/gammazero/deque"
	"github.com/go-logr/logr"
)

// state is the block shared by every handle of one queue. All fields below mu
// are guarded by it. A capacity of 0 means unbounded, in which case notFull is
// nil and never waited on.
type state[T any] struct {
	mu       sync.Mutex
	notEmpty *sync.Cond
	notFull  *sync.Cond
	items    deque.Deque[T]
	capacity int

	// goroutines currently parked in a wait loop
	popWaiters  int
	pushWaiters int

	name string
	log  logr.Logger
	inst *instruments
}

func newState[T any](capacity int, cfg config) *state[T] {
	s := &state[T]{
		capacity: capacity,
		name:     cfg.name,
		log:      cfg.logger,
		inst:     newInstruments(cfg.meter, cfg.name),
	}
	s.notEmpty = sync.NewCond(&s.mu)
	if capacity > 0 {
		s.notFull = sync.NewCond(&s.mu)
	}
	s.log.V(1).Info("queue created", "queue", s.name, "capacity", capacity)
	return s
}

func (s *state[T]) bounded() bool { return s.capacity > 0 }

// full must be called with mu held.
func (s *state[T]) full() bool {
	return s.bounded() && s.items.Len() >= s.capacity
}

// push appends item to the back. On a bounded queue it first waits until
// there is room. The waiting consumer, if any, is signaled after unlock.
func (s *state[T]) push(item T) {
	var start time.Time
	s.mu.Lock()
	if s.full() {
		start = time.Now()
		s.pushWaiters++
		// Re-check after every wake: Signal may race with another producer.
		for s.full() {
			s.notFull.Wait()
		}
		s.pushWaiters--
	}
	s.items.PushBack(item)
	n := s.items.Len()
	s.mu.Unlock()
	s.notEmpty.Signal()

	s.inst.pushed()
	if !start.IsZero() {
		s.resumed(opPush, time.Since(start), n)
	}
}

// pop removes and returns the front element, waiting while the queue is empty.
func (s *state[T]) pop() T {
	var start time.Time
	s.mu.Lock()
	if s.items.Len() == 0 {
		start = time.Now()
		s.popWaiters++
		for s.items.Len() == 0 {
			s.notEmpty.Wait()
		}
		s.popWaiters--
	}
	item := s.items.PopFront()
	n := s.items.Len()
	s.mu.Unlock()
	if s.bounded() {
		s.notFull.Signal()
	}

	s.inst.popped()
	if !start.IsZero() {
		s.resumed(opPop, time.Since(start), n)
	}
	return item
}

func (s *state[T]) tryPop() (T, bool) {
	s.mu.Lock()
	if s.items.Len() == 0 {
		s.mu.Unlock()
		var zero T
		return zero, false
	}
	item := s.items.PopFront()
	s.mu.Unlock()
	if s.bounded() {
		s.notFull.Signal()
	}
	s.inst.popped()
	return item, true
}

func (s *state[T]) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items.Len()
}

func (s *state[T]) snapshot() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]T, s.items.Len())
	for i := range out {
		out[i] = s.items.At(i)
	}
	return out
}

// waiters reports how many goroutines are parked in pop and push.
func (s *state[T]) waiters() (pops, pushes int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.popWaiters, s.pushWaiters
}

func (s *state[T]) resumed(o op, waited time.Duration, n int) {
	s.inst.blocked(o, waited)
	s.log.V(1).Info(string(o)+" resumed", "queue", s.name, "waited", waited, "len", n)
}
