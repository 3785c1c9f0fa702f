// ════════════════════════════════════════════════════════════════════════════════════════════════
// ⚡ CORE-PINNED WORKER SYSTEM
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Actor Runtime Scheduling Core
// Component: Dedicated-Core Work Processing
//
// Description:
//   OS-thread-locked, core-affine worker loop around the scheduling queue.
//   Each worker repeatedly pops from its own context; the queue's backoff
//   policy governs idle behavior, while the global hot flag and a trailing
//   hot window keep the backoff pinned at its cheapest phase whenever more
//   work is likely imminent.
//
// Adaptive behavior:
//   - Hot mode: backoff held at phase zero during active message flow
//   - Cool mode: backoff escalates per strategy after the idle threshold
//   - Immediate response to the global shutdown flag
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package sched

import (
	"runtime"
	"sync/atomic"
	"time"
	"unsafe"

	"actorruntime/constants"
	"actorruntime/control"
)

// PinnedWorker launches a goroutine bound to a specific CPU core that runs
// the Pop→Process loop until the stop flag rises. The caller supplies an
// UNINITIALIZED context; the worker initializes it on its own thread and
// releases it on exit, asserting the local queue drained.
//
// PARAMETERS:
//   - core: Target CPU core index (0-based); affinity is best-effort
//   - q: The scheduling queue to consume from
//   - ctx: Caller-allocated context, owned by this worker once launched
//   - stop, hot: Global flag pointers from control.Flags()
//   - userCtx: Opaque per-worker context handed to every Process call
//   - proc: Runtime dispatch callback for each popped item
//   - pollCooldown: Designate this worker to manage global cooldown state
//     (exactly one worker per scheduler should carry it)
//   - done: Channel closed when the worker terminates
//
// THREADING MODEL:
//
//	The goroutine locks to an OS thread and sets CPU affinity to ensure
//	consistent cache locality and predictable backoff timing.
func PinnedWorker(
	core int,
	q *Queue,
	ctx *Context,
	stop *uint32,
	hot *uint32,
	userCtx unsafe.Pointer,
	proc Processor,
	pollCooldown bool,
	done chan<- struct{},
) {
	go func() {
		// Lock goroutine to an OS thread for CPU affinity
		runtime.LockOSThread()
		setAffinity(core)

		q.InitializeWorkerContext(ctx)

		// Ensure cleanup on exit
		defer func() {
			q.ReleaseWorkerContext(ctx)
			runtime.UnlockOSThread()
			close(done)
		}()

		lastHit := time.Now()

		// Main consumption loop
		for {
			// Priority 1: Check for shutdown signal
			if atomic.LoadUint32(stop) != 0 {
				return
			}

			// Priority 2: Attempt a pop. A hit dispatches immediately;
			// a miss already executed one backoff step inside Pop.
			if item := q.Pop(ctx); item != nil {
				q.Process(ctx, userCtx, item, proc)
				lastHit = time.Now()
				continue
			}

			// Priority 3: Designated worker maintains global cooldown state
			if pollCooldown {
				control.PollCooldown()
			}

			// Priority 4: While producers are active or the trailing hot
			// window is open, hold the backoff at phase zero so the next
			// miss costs only a spin batch — never a sleep.
			if atomic.LoadUint32(hot) == 1 || time.Since(lastHit) <= constants.HotWindow {
				ctx.yield.Reset()
			}
		}
	}()
}
