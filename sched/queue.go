// ════════════════════════════════════════════════════════════════════════════════════════════════
// ⚡ NON-BLOCKING SCHEDULING QUEUE
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Actor Runtime Scheduling Core
// Component: Two-Tier Work Distribution
//
// Description:
//   Routes work items from producers to consumers with minimal contention and
//   without ever blocking a caller. One spin-lock-protected queue is shared
//   across all threads; each worker thread additionally owns a local queue
//   that only it ever touches. The split turns the common case — a thread
//   draining continuations it just produced — into a lock-free, single-owner
//   operation, while the shared tier provides a correct serialized fallback
//   for genuinely cross-thread handoff.
//
// Ordering guarantees:
//   - Exact FIFO within any single queue tier
//   - Shared-tier FIFO follows the linearization order of lock acquisitions
//   - NO global FIFO across tiers: interleaved local and shared pushes from
//     different contexts carry no cross-queue ordering
//
// Failure model:
//   There is none. Absence of work is an expected, frequent state handled by
//   the per-context backoff policy, not an error. Contract violations are
//   programmer errors caught by debugcheck assertions, never error returns.
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package sched

import (
	"sync/atomic"
	"unsafe"

	"actorruntime/debug"
	"actorruntime/spin"
	"actorruntime/utils"
	"actorruntime/workq"
	"actorruntime/yield"
)

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// CONTEXT
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Context is the per-caller state needed to interact with the queue.
// Exactly one context per scheduler is the distinguished *shared* context,
// used by callers outside the worker pool (it may only Push). Every worker
// thread owns one *worker* context carrying a thread-confined local queue
// and independent backoff state.
//
// Contexts are caller-allocated (stack, pool, or embedded) and move through
// an explicit two-phase lifecycle: initialize exactly once via the queue,
// release exactly once when the owning thread stops. The shared/worker role
// is decided at initialization, not allocation.
type Context struct {
	shared      bool
	initialized bool
	local       workq.List
	yield       yield.Implementation

	// Counters below are written by the owning thread with atomic adds so
	// the telemetry sampler can read them from outside without tearing.
	pops       uint64
	localHits  uint64
	sharedHits uint64
	misses     uint64
}

// Stats is a point-in-time snapshot of one context's counters.
type Stats struct {
	Pops       uint64 // Successful pops (local + shared)
	LocalHits  uint64 // Pops satisfied by the thread-confined queue
	SharedHits uint64 // Pops satisfied by the shared queue
	Misses     uint64 // Failed pops (one backoff step each)
}

// StatsSnapshot returns the context's counters. Safe to call from any
// thread; the fields are sampled individually, not as one atomic unit.
func (c *Context) StatsSnapshot() Stats {
	return Stats{
		Pops:       atomic.LoadUint64(&c.pops),
		LocalHits:  atomic.LoadUint64(&c.localHits),
		SharedHits: atomic.LoadUint64(&c.sharedHits),
		Misses:     atomic.LoadUint64(&c.misses),
	}
}

// YieldPhase exposes the backoff escalation phase for tests. Owner thread
// only; cross-thread reads would tear on 32-bit targets.
func (c *Context) YieldPhase() uint32 {
	return c.yield.Phase()
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// QUEUE
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Processor is the dispatch seam between the queue and the surrounding
// runtime: it receives a popped item together with an opaque per-call user
// context (allocators, thread-local counters — whatever the handler needs,
// in whatever shape; the queue never looks inside).
type Processor func(ctx *Context, userCtx unsafe.Pointer, item *workq.Node)

// Queue is the two-tier non-blocking scheduling queue. One per scheduler
// instance. The shared tier is the only resource in the core requiring a
// lock; every access to it is funneled through the spin lock, no exceptions.
type Queue struct {
	strategy yield.Strategy
	lock     spin.Lock
	shared   workq.List
	lockAcqs uint64 // atomic: shared-lock acquisition count (tests, telemetry)
}

// New constructs a queue whose worker contexts will escalate through the
// given backoff strategy. The strategy is fixed for the queue's lifetime.
func New(strategy yield.Strategy) *Queue {
	return &Queue{strategy: strategy}
}

// Strategy returns the backoff strategy worker contexts are initialized with.
func (q *Queue) Strategy() yield.Strategy {
	return q.strategy
}

// SharedLockAcquisitions returns how many times the shared-queue lock has
// been taken, across pushes, pops and emptiness checks. The locality-hint
// fast path must leave this counter untouched.
func (q *Queue) SharedLockAcquisitions() uint64 {
	return atomic.LoadUint64(&q.lockAcqs)
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// CONTEXT LIFECYCLE
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// InitializeSharedContext marks a caller-allocated context as the shared
// context common to all non-worker callers. No allocation. Exactly one
// shared context may exist per queue; the runtime enforces that it is only
// ever used from outside the worker pool.
func (q *Queue) InitializeSharedContext(ctx *Context) {
	debug.Assert(!ctx.initialized, "InitializeSharedContext on an initialized context")
	ctx.shared = true
	ctx.initialized = true
}

// InitializeWorkerContext marks a caller-allocated context as owned by the
// calling worker thread and installs the queue's backoff strategy. No
// allocation.
func (q *Queue) InitializeWorkerContext(ctx *Context) {
	debug.Assert(!ctx.initialized, "InitializeWorkerContext on an initialized context")
	ctx.shared = false
	ctx.yield.Select(q.strategy)
	ctx.initialized = true
}

// ReleaseSharedContext tears down a previously initialized shared context.
// Nothing to free today; the call exists so the lifecycle stays symmetric
// and future resources have a home.
func (q *Queue) ReleaseSharedContext(ctx *Context) {
	debug.Assert(ctx.initialized && ctx.shared, "ReleaseSharedContext on a non-shared context")
	ctx.initialized = false
}

// ReleaseWorkerContext tears down a worker context. The local queue must be
// drained first: items still linked there would otherwise vanish silently,
// which is the one genuine failure mode this core guards against. Release
// builds log the leak loudly; debugcheck builds stop on it.
func (q *Queue) ReleaseWorkerContext(ctx *Context) {
	debug.Assert(ctx.initialized && !ctx.shared, "ReleaseWorkerContext on a non-worker context")
	debug.Assert(ctx.local.Empty(), "worker context released with undrained local queue")
	if !ctx.local.Empty() {
		utils.PrintWarning("sched: LEAK: worker context released with " +
			utils.Itoa(ctx.local.Count()) + " undrained local items\n")
	}
	ctx.initialized = false
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// QUEUE OPERATIONS
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Empty reports whether, from this context's perspective, no work is
// visible: the context's local queue (workers only — the shared context has
// none) and the shared queue are both empty at the instant of the check.
//
// This is a point-in-time snapshot, not a guarantee about a subsequent Pop:
// a concurrent push can invalidate it immediately. Callers use it only as
// an idle-detection and drain-loop hint, never as a correctness gate.
func (q *Queue) Empty(ctx *Context) bool {
	debug.Assert(ctx.initialized, "Empty on an uninitialized context")

	if !ctx.shared {
		if !ctx.local.Empty() {
			return false
		}
	}

	q.lock.Lock()
	atomic.AddUint64(&q.lockAcqs, 1)
	empty := q.shared.Empty()
	q.lock.Unlock()
	return empty
}

// WakeAll is a no-op by contract. This implementation never parks a thread,
// so there is nothing to wake: workers that find no work spin, yield, or
// sleep under their backoff policy and re-poll on their own. A blocking
// variant behind the same interface would need real wake semantics here —
// the no-op is a property of this implementation, not of the interface.
func (q *Queue) WakeAll() {
}

// Push schedules an item for processing. With localThread set and a worker
// context, the item lands on that context's local queue — no lock, since
// only the owning thread ever touches it — keeping a continuation on the
// thread that produced it. Every other combination goes through the shared
// queue under the spin lock: pushes from the shared context, and explicit
// cross-thread handoff with the hint cleared.
//
// The item must not currently be linked into any queue; the runtime's
// scheduled-flag bookkeeping upholds that before calling Push.
//
//go:inline
func (q *Queue) Push(ctx *Context, item *workq.Node, localThread bool) {
	debug.Assert(ctx.initialized, "Push on an uninitialized context")

	if localThread && !ctx.shared {
		ctx.local.Push(item)
		return
	}

	q.lock.Lock()
	atomic.AddUint64(&q.lockAcqs, 1)
	q.shared.Push(item)
	q.lock.Unlock()
}

// Pop retrieves the next item for processing, or nil when no work is
// visible. Worker contexts only: the shared context exists purely to Push
// from outside the pool, and popping through it is a contract violation.
//
// The local queue is checked first (unlocked single-owner fast path); only
// when it is empty is the shared queue consulted under the lock. A hit
// resets this context's backoff state; a miss executes exactly one backoff
// escalation step before returning, so the caller's retry loop needs no
// idle logic of its own.
//
//go:inline
func (q *Queue) Pop(ctx *Context) *workq.Node {
	debug.Assert(ctx.initialized, "Pop on an uninitialized context")
	debug.Assert(!ctx.shared, "Pop on the shared context")

	var item *workq.Node
	if ctx.local.Empty() {
		q.lock.Lock()
		atomic.AddUint64(&q.lockAcqs, 1)
		item = q.shared.Pop()
		q.lock.Unlock()
		if item != nil {
			atomic.AddUint64(&ctx.sharedHits, 1)
		}
	} else {
		item = ctx.local.Pop()
		atomic.AddUint64(&ctx.localHits, 1)
	}

	if item != nil {
		ctx.yield.Reset()
		atomic.AddUint64(&ctx.pops, 1)
		return item
	}

	atomic.AddUint64(&ctx.misses, 1)
	ctx.yield.Execute()
	return nil
}

// Process dispatches a previously popped item to the runtime's processor,
// threading the opaque user context through untouched. The indirection is
// deliberately narrow: the queue decides *which* item runs next, never
// *how* it runs.
//
//go:inline
func (q *Queue) Process(ctx *Context, userCtx unsafe.Pointer, item *workq.Node, proc Processor) {
	proc(ctx, userCtx, item)
}
