// runtime.go — the surrounding actor runtime glue
//
// Owns the scheduling queue, the shared context for external senders, and
// the pool of pinned workers. This is the collaborator layer the scheduling
// core is written against: it decides message semantics and lifecycle, the
// core decides only which mailbox runs next on which thread.

package main

import (
	"runtime"
	"sync/atomic"
	"time"
	"unsafe"

	"actorruntime/config"
	"actorruntime/control"
	"actorruntime/debug"
	"actorruntime/sched"
	"actorruntime/telemetry"
	"actorruntime/utils"
	"actorruntime/workq"
)

// Worker is the per-thread state handed to every Process call through the
// queue's opaque user-context seam. Behaviors reach it to send follow-up
// messages on the worker's own context and to bump thread-local counters.
type Worker struct {
	index     int
	rt        *Runtime
	ctx       *sched.Context
	processed uint64 // atomic: messages handled on this worker
	done      chan struct{}
}

// Send delivers a message from inside a behavior running on this worker.
// The locality hint keeps the target on this thread when it was idle.
func (w *Worker) Send(mb *Mailbox, m Message) {
	w.rt.send(w.ctx, mb, m, true)
}

// Runtime wires the scheduling core to mailboxes and workers.
type Runtime struct {
	queue     *sched.Queue
	shared    sched.Context
	workers   []*Worker
	mailboxes []*Mailbox
	recorder  *telemetry.Recorder
	stopped   uint32 // atomic: Stop ran
}

// NewRuntime builds the runtime for the given configuration: queue with the
// configured backoff strategy, resolved worker count, shared context
// initialized for external senders.
func NewRuntime(cfg config.Config) *Runtime {
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	rt := &Runtime{queue: sched.New(cfg.YieldStrategy())}
	rt.queue.InitializeSharedContext(&rt.shared)

	for i := 0; i < workers; i++ {
		rt.workers = append(rt.workers, &Worker{
			index: i,
			rt:    rt,
			ctx:   &sched.Context{},
			done:  make(chan struct{}),
		})
	}

	control.SetCooldown(cfg.Cooldown())
	return rt
}

// Register adds a mailbox to the runtime's drain accounting. Must complete
// before the first message is sent to it.
func (rt *Runtime) Register(mb *Mailbox) {
	rt.mailboxes = append(rt.mailboxes, mb)
}

// Start launches the pinned workers. Worker 0 doubles as the cooldown
// maintainer. Core assignment begins at cfg base so the ingress side keeps
// its own core.
func (rt *Runtime) Start(coreBase int) {
	stopFlag, hotFlag := control.Flags()
	for _, w := range rt.workers {
		sched.PinnedWorker(
			coreBase+w.index,
			rt.queue,
			w.ctx,
			stopFlag,
			hotFlag,
			unsafe.Pointer(w),
			processMailbox,
			w.index == 0,
			w.done,
		)
	}
	debug.DropMessage("WORKERS", utils.Itoa(len(rt.workers))+" pinned workers started")
}

// StartTelemetry opens the sample recorder against the runtime's workers.
// Telemetry failures disable the recorder and nothing else.
func (rt *Runtime) StartTelemetry(cfg config.Config) {
	if !cfg.Telemetry.Enabled {
		return
	}
	rec, err := telemetry.Open(cfg.Telemetry.Path, cfg.TelemetryInterval(), rt.collectSamples)
	if err != nil {
		debug.DropError("TELEMETRY_OPEN", err)
		return
	}
	rt.recorder = rec
	rec.Start()
	debug.DropMessage("TELEMETRY", "recording to "+cfg.Telemetry.Path)
}

// collectSamples snapshots every worker for the telemetry recorder.
func (rt *Runtime) collectSamples() []telemetry.WorkerSample {
	lockAcqs := rt.queue.SharedLockAcquisitions()
	samples := make([]telemetry.WorkerSample, len(rt.workers))
	for i, w := range rt.workers {
		s := w.ctx.StatsSnapshot()
		samples[i] = telemetry.WorkerSample{
			Worker:     i,
			Pops:       s.Pops,
			LocalHits:  s.LocalHits,
			SharedHits: s.SharedHits,
			Misses:     s.Misses,
			LockAcqs:   lockAcqs,
		}
	}
	return samples
}

// SendExternal delivers a message from outside the worker pool through the
// shared context. Cross-thread by definition, so no locality hint.
func (rt *Runtime) SendExternal(mb *Mailbox, m Message) {
	rt.send(&rt.shared, mb, m, false)
}

// send is the single scheduling entry point: enqueue the message, and if
// that flipped the mailbox from idle to runnable, push the node and mark
// the system hot.
func (rt *Runtime) send(ctx *sched.Context, mb *Mailbox, m Message, local bool) {
	if mb.put(m) {
		rt.queue.Push(ctx, &mb.node, local)
		control.SignalActivity()
	}
}

// processMailbox is the Processor installed on every worker: drain the
// mailbox, mark it idle, and re-schedule it locally if a sender slipped a
// message in between the final empty take and the idle store. The re-push
// CAS keeps the core's single-link invariant: whoever flips idle→runnable
// owns the push, everyone else backs off.
func processMailbox(ctx *sched.Context, userCtx unsafe.Pointer, n *workq.Node) {
	w := (*Worker)(userCtx)
	mb := mailboxOf(n)

	for {
		m, ok := mb.take()
		if !ok {
			break
		}
		mb.behavior(w, mb, m)
		atomic.AddUint64(&w.processed, 1)
	}

	atomic.StoreUint32(&mb.scheduled, 0)
	if mb.pending() && atomic.CompareAndSwapUint32(&mb.scheduled, 0, 1) {
		w.rt.queue.Push(ctx, &mb.node, true)
	}
}

// Processed returns the total messages handled across all workers.
func (rt *Runtime) Processed() uint64 {
	var total uint64
	for _, w := range rt.workers {
		total += atomic.LoadUint64(&w.processed)
	}
	return total
}

// Drain blocks until no work is visible anywhere: both queue tiers empty
// from the external perspective and every registered mailbox idle with no
// pending messages. Point-in-time checks suffice because callers stop
// producing before draining.
func (rt *Runtime) Drain(timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		if rt.quiescent() {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(time.Millisecond)
	}
}

func (rt *Runtime) quiescent() bool {
	if !rt.queue.Empty(&rt.shared) {
		return false
	}
	for _, mb := range rt.mailboxes {
		if !mb.idle() || mb.pending() {
			return false
		}
	}
	return true
}

// Stop raises the global stop flag, waits for every worker to exit (each
// releases its own context on the way out), releases the shared context,
// and closes telemetry. Idempotent.
func (rt *Runtime) Stop() {
	if !atomic.CompareAndSwapUint32(&rt.stopped, 0, 1) {
		return
	}
	control.Shutdown()
	for _, w := range rt.workers {
		<-w.done
	}
	rt.queue.ReleaseSharedContext(&rt.shared)
	if rt.recorder != nil {
		rt.recorder.Close()
	}
}
