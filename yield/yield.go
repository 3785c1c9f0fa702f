// ════════════════════════════════════════════════════════════════════════════════════════════════
// ⚡ PROGRESSIVE BACKOFF POLICY
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Actor Runtime Scheduling Core
// Component: Worker Idle-Time Escalation
//
// Description:
//   Decides what a worker thread does immediately after failing to find work,
//   escalating over consecutive failures to balance handoff latency against
//   wasted CPU. Three closed strategies trade the two off differently:
//
//     - Polite:     brief spin → thread yield → escalating capped sleeps
//     - Strong:     yields almost immediately, sleeps long — lowest CPU
//     - Aggressive: long pure spin, yields late, minimal fixed sleep — lowest latency
//
//   The policy is purely advisory: it never signals success or failure, it
//   only consumes time. Strategy dispatch is a function value selected once
//   at context initialization, so the hot path never branches on a name.
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package yield

import (
	"runtime"
	"time"

	"actorruntime/constants"
)

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// STRATEGY SELECTION
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Strategy identifies one of the closed set of escalation shapes.
type Strategy uint32

const (
	// StrategyPolite spins briefly then backs off through yields into
	// progressively longer sleeps. The default.
	StrategyPolite Strategy = iota

	// StrategyStrong concedes the CPU almost immediately and sleeps
	// longest, favoring idle efficiency over wake latency.
	StrategyStrong

	// StrategyAggressive stays in pure spin far longer before ever
	// sleeping, favoring lowest latency at the cost of CPU.
	StrategyAggressive
)

// String returns the configuration-file name of the strategy.
func (s Strategy) String() string {
	switch s {
	case StrategyStrong:
		return "strong"
	case StrategyAggressive:
		return "aggressive"
	default:
		return "polite"
	}
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// PER-CONTEXT IMPLEMENTATION
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Implementation carries the escalation state of one worker context: a
// monotonically increasing failure counter and the strategy function chosen
// at initialization. Not safe for concurrent use; each worker owns its own.
type Implementation struct {
	counter uint32
	fn      func(uint32)
}

// Select installs the escalation function for the given strategy and clears
// any previous state. Called once, at worker-context initialization.
func (y *Implementation) Select(s Strategy) {
	switch s {
	case StrategyStrong:
		y.fn = executeStrong
	case StrategyAggressive:
		y.fn = executeAggressive
	default:
		y.fn = executePolite
	}
	y.counter = 0
}

// Execute performs one escalation step, consuming an amount of wall-clock
// time that grows with the number of consecutive failures since the last
// Reset. Callers invoke it exactly once per failed pop.
//
//go:inline
func (y *Implementation) Execute() {
	y.fn(y.counter)
	y.counter++
}

// Reset clears the failure counter. Called on every successful pop so the
// next miss starts from the cheapest phase again.
//
//go:nosplit
//go:inline
func (y *Implementation) Reset() {
	y.counter = 0
}

// Phase returns the current escalation phase (the failure count since the
// last Reset). Observable for tests and telemetry; never read on a hot path.
//
//go:nosplit
//go:inline
func (y *Implementation) Phase() uint32 {
	return y.counter
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// ESCALATION SHAPES
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// executePolite: spin for the first phases, yield the thread for the next,
// then sleep in growing multiples of the quantum, capped.
//
// Phase map:
//
//	[0, PoliteSpinPhase)                → CPU-relax spin batch
//	[PoliteSpinPhase, PoliteYieldPhase) → runtime.Gosched
//	[PoliteYieldPhase, ∞)               → sleep (phase-scaled, capped)
func executePolite(counter uint32) {
	if counter < constants.PoliteSpinPhase {
		spinRelax()
		return
	}
	if counter < constants.PoliteYieldPhase {
		runtime.Gosched()
		return
	}
	d := time.Duration(counter-constants.PoliteYieldPhase+1) * constants.SleepQuantum
	if d > constants.PoliteSleepCap {
		d = constants.PoliteSleepCap
	}
	time.Sleep(d)
}

// executeStrong: almost no spinning. A couple of yields, then escalating
// sleeps with a higher cap than polite — the worker is expected to be off
// the CPU whenever there is no work.
func executeStrong(counter uint32) {
	if counter < constants.StrongYieldPhase {
		runtime.Gosched()
		return
	}
	d := time.Duration(counter-constants.StrongYieldPhase+1) * constants.SleepQuantum
	if d > constants.StrongSleepCap {
		d = constants.StrongSleepCap
	}
	time.Sleep(d)
}

// executeAggressive: stay on-core as long as defensible. Long pure-spin
// window, short yield window, then a single minimal sleep that never grows —
// an aggressive worker is never more than one quantum from full speed.
func executeAggressive(counter uint32) {
	if counter < constants.AggressiveSpinPhase {
		spinRelax()
		return
	}
	if counter < constants.AggressiveYieldPhase {
		runtime.Gosched()
		return
	}
	time.Sleep(constants.AggressiveSleep)
}

// spinRelax issues a batch of PAUSE instructions (no-op off amd64), keeping
// the spinning hyperthread polite to its sibling without leaving userspace.
//
//go:nosplit
//go:inline
func spinRelax() {
	for i := 0; i < constants.SpinRelaxBatch; i++ {
		cpuRelax()
	}
}
