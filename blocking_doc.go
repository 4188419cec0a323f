package condqueue

// Wakeup discipline
//
// Each queue owns one sync.Mutex and up to two sync.Cond values on it:
// notEmpty, waited on by Pop, and notFull, waited on by a bounded Push. The
// unbounded Queue never creates notFull.
//
//   - Every mutation of the element deque happens with the mutex held.
//   - Push signals notEmpty once, after unlocking. One push makes exactly one
//     element available, so waking one consumer is enough.
//   - A bounded Pop signals notFull once, after unlocking, for the same reason.
//   - Every Wait sits in a loop that re-checks its condition. A waiter woken
//     between another goroutine's unlock and signal may find the element
//     already taken; it simply waits again.
//
// sync.Cond registers a waiter before releasing the mutex, so a signal issued
// after unlock cannot be lost.
//
// Minimal outline of the two operations on a bounded queue:
//
//	mu.Lock()
//	for items.Len() == capacity {
//	    notFull.Wait()
//	}
//	items.PushBack(v)
//	mu.Unlock()
//	notEmpty.Signal()
//
//	mu.Lock()
//	for items.Len() == 0 {
//	    notEmpty.Wait()
//	}
//	v := items.PopFront()
//	mu.Unlock()
//	notFull.Signal()
