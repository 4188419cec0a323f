package condqueue

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBoundedRejectsNonPositiveCapacity(t *testing.T) {
	for _, capacity := range []int{0, -1} {
		_, err := NewBounded[int](capacity)
		require.ErrorIs(t, err, ErrInvalidCapacity, "capacity %d", capacity)
	}

	q, err := NewBounded[int](1)
	require.NoError(t, err)
	require.Equal(t, 1, q.Cap())
}

func TestMustNewBoundedPanics(t *testing.T) {
	require.Panics(t, func() { MustNewBounded[int](0) })
	require.NotPanics(t, func() { MustNewBounded[int](3) })
}

func TestBoundedFIFO(t *testing.T) {
	q := MustNewBounded[string](3)
	q.Push("a")
	q.Push("b")
	q.Push("c")
	require.Equal(t, []string{"a", "b", "c"}, q.Snapshot())
	for _, want := range []string{"a", "b", "c"} {
		assert.Equal(t, want, q.Pop())
	}
}

func TestBoundedPushBlocksWhenFull(t *testing.T) {
	const capacity = 3
	q := MustNewBounded[int](capacity)
	for i := range capacity {
		q.Push(i)
	}

	done := make(chan struct{})
	go func() {
		q.Push(capacity)
		close(done)
	}()
	waitForWaiters(t, q.s, 0, 1)
	requireBlocked(t, done)
	require.Equal(t, capacity, q.Len())

	require.Equal(t, 0, q.Pop())
	receive(t, done)
	require.Equal(t, []int{1, 2, 3}, q.Snapshot())
}

func TestBoundedPopBlocksUntilPush(t *testing.T) {
	q := MustNewBounded[int](2)
	got := make(chan int, 1)
	go func() { got <- q.Pop() }()
	waitForWaiters(t, q.s, 1, 0)
	requireBlocked(t, got)

	q.Push(5)
	require.Equal(t, 5, receive(t, got))
}

func TestBoundedCapacityTwoScenario(t *testing.T) {
	q := MustNewBounded[int](2)
	q.Push(1)
	q.Push(2)

	done := make(chan struct{})
	go func() {
		q.Push(3)
		close(done)
	}()
	waitForWaiters(t, q.s, 0, 1)
	requireBlocked(t, done)

	require.Equal(t, 1, q.Pop())
	receive(t, done)
	require.Equal(t, 2, q.Pop())
	require.Equal(t, 3, q.Pop())
	require.True(t, q.IsEmpty())
}

func TestBoundedPushRechecksAfterSpuriousWakeup(t *testing.T) {
	q := MustNewBounded[int](1)
	q.Push(1)

	done := make(chan struct{})
	go func() {
		q.Push(2)
		close(done)
	}()
	waitForWaiters(t, q.s, 0, 1)

	q.s.mu.Lock()
	q.s.notFull.Broadcast()
	q.s.mu.Unlock()
	requireBlocked(t, done)
	require.Equal(t, 1, q.Len())

	require.Equal(t, 1, q.Pop())
	receive(t, done)
	require.Equal(t, 2, q.Pop())
}

func TestBoundedTryPopWakesProducer(t *testing.T) {
	q := MustNewBounded[int](1)
	q.Push(1)

	done := make(chan struct{})
	go func() {
		q.Push(2)
		close(done)
	}()
	waitForWaiters(t, q.s, 0, 1)

	v, ok := q.TryPop()
	require.True(t, ok)
	require.Equal(t, 1, v)
	receive(t, done)

	v, ok = q.TryPop()
	require.True(t, ok)
	require.Equal(t, 2, v)
	_, ok = q.TryPop()
	require.False(t, ok)
}

func TestBoundedCloneSharesState(t *testing.T) {
	q := MustNewBounded[int](1)
	c := q.Clone()
	require.Equal(t, q.Cap(), c.Cap())

	c.Push(1)
	require.Equal(t, 1, q.Len())

	// The clone filled the shared queue, so a push on the original blocks.
	done := make(chan struct{})
	go func() {
		q.Push(2)
		close(done)
	}()
	waitForWaiters(t, q.s, 0, 1)

	require.Equal(t, 1, c.Pop())
	receive(t, done)
	require.Equal(t, 2, c.Pop())
}

func TestBoundedNeverExceedsCapacity(t *testing.T) {
	const (
		capacity    = 3
		producers   = 4
		perProducer = 300
	)
	q := MustNewBounded[int](capacity)

	var (
		stop     atomic.Bool
		maxDepth atomic.Int64
		wg       sync.WaitGroup
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		for !stop.Load() {
			if n := int64(q.Len()); n > maxDepth.Load() {
				maxDepth.Store(n)
			}
		}
	}()

	results := exchange(t, q, producers, 2, perProducer)
	stop.Store(true)
	wg.Wait()

	requireNoLoss(t, results, producers, perProducer)
	require.LessOrEqual(t, maxDepth.Load(), int64(capacity))
}
