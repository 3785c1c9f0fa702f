// spinlock.go
//
// Minimal mutual-exclusion primitive for very short critical sections.
// Cheaper than sync.Mutex when the protected region is a handful of pointer
// writes: no parking, no semaphore, no runtime hand-off. On contention the
// loser backs off exponentially through the Go scheduler so a descheduled
// holder cannot starve the spinner (the priority-inversion guard).
//
// Contract: not reentrant. Must never be held across an operation that can
// block, allocate, or panic — holding it across anything slower than an O(1)
// pointer-list operation voids the non-blocking design of every caller.

package spin

import (
	"runtime"
	"sync/atomic"

	"actorruntime/constants"
)

// Lock is a test-and-set spin lock. The zero value is unlocked.
type Lock struct {
	state uint32
}

// Lock busy-waits until the lock is held by the caller.
// Each failed CAS round doubles the number of Gosched calls up to
// constants.LockMaxBackoff, bounding both cache-line traffic and
// worst-case convoy length under heavy contention.
//
//go:nosplit
func (l *Lock) Lock() {
	backoff := 1
	for !l.TryLock() {
		for i := 0; i < backoff; i++ {
			runtime.Gosched()
		}
		if backoff < constants.LockMaxBackoff {
			backoff <<= 1
		}
	}
}

// TryLock attempts a single lock acquisition without waiting.
//
//go:nosplit
//go:inline
func (l *Lock) TryLock() bool {
	return atomic.CompareAndSwapUint32(&l.state, 0, 1)
}

// Unlock releases the lock unconditionally. Calling Unlock on an unheld lock is a
// programmer error the lock does not detect.
//
//go:nosplit
//go:inline
func (l *Lock) Unlock() {
	atomic.StoreUint32(&l.state, 0)
}
