// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: constants.go — Global Scheduler Tunables
//
// Purpose:
//   - Defines system-wide constants for backoff escalation, spin budgets,
//     worker cooldown, and telemetry defaults.
//
// Notes:
//   - Tuned for low-latency message handoff while keeping idle CPU bounded.
//   - Escalation thresholds are phase counts, not durations: the yield policy
//     maps them onto consecutive failed pops.
//
// ⚠️ No runtime logic here — all values must be compile-time resolvable
// ─────────────────────────────────────────────────────────────────────────────

package constants

import "time"

// ─────────────────────────── Backoff Escalation ────────────────────────────

const (
	// PoliteSpinPhase is the number of consecutive failed pops a polite
	// worker spends in pure CPU-relax spinning before yielding the thread.
	// 10 phases ≈ 320 PAUSE instructions — short enough that a producer on
	// a sibling core is still caught within ~1µs.
	PoliteSpinPhase = 10

	// PoliteYieldPhase is the phase count at which a polite worker stops
	// calling into the OS scheduler and starts sleeping instead.
	PoliteYieldPhase = 20

	// StrongYieldPhase is the (much earlier) phase at which a strong worker
	// gives up its timeslice. Strong workers trade latency for idle CPU.
	StrongYieldPhase = 2

	// AggressiveSpinPhase keeps aggressive workers in pure spin far longer
	// than polite ones. 100 phases ≈ 3200 PAUSE instructions, chosen so a
	// saturated producer never observes an aggressive consumer off-core.
	AggressiveSpinPhase = 100

	// AggressiveYieldPhase bounds the Gosched window of aggressive workers
	// before they concede to a minimal fixed sleep.
	AggressiveYieldPhase = 110

	// SpinRelaxBatch is the number of PAUSE instructions issued per spin
	// phase. Batching amortizes the call overhead of the assembly stub.
	SpinRelaxBatch = 32

	// SleepQuantum is the base sleep unit for escalating backoff.
	// Sleeps grow in multiples of this quantum up to the per-strategy cap.
	SleepQuantum = 500 * time.Microsecond

	// PoliteSleepCap bounds polite escalation: even a long-idle worker
	// wakes at least every 10ms to re-check both queue tiers.
	PoliteSleepCap = 10 * time.Millisecond

	// StrongSleepCap allows strong workers to back off twice as far,
	// halving idle wakeups at the cost of worst-case handoff latency.
	StrongSleepCap = 20 * time.Millisecond

	// AggressiveSleep is the single fixed sleep aggressive workers ever
	// take. It never escalates: aggressive means latency first.
	AggressiveSleep = 1 * time.Millisecond
)

// ───────────────────────────── Spin Lock ────────────────────────────────────

const (
	// LockMaxBackoff caps the exponential Gosched backoff inside the spin
	// lock. 16 yields per retry round keeps worst-case convoy length
	// bounded while still de-scheduling under heavy contention.
	LockMaxBackoff = 16
)

// ─────────────────────────── Worker Cooldown ────────────────────────────────

const (
	// HotWindow is how long a pinned worker keeps its backoff pinned at
	// phase zero after its last successful pop. Within this window more
	// work is assumed imminent and sleeping would only add wake latency.
	HotWindow = 5 * time.Second

	// DefaultCooldown is the idle period after the last producer activity
	// before the global hot flag auto-clears. Overridable via config.
	DefaultCooldown = 1 * time.Second
)

// ───────────────────────────── Defaults ─────────────────────────────────────

const (
	// DefaultWorkers is the worker-thread count used when the config file
	// is absent or omits the field. Zero means "one per available core",
	// resolved at startup.
	DefaultWorkers = 0

	// DefaultCoreBase is the first CPU core index workers are pinned to.
	// Core 0 is left for the producer/ingress side by default.
	DefaultCoreBase = 1

	// DefaultConfigPath is where the runtime looks for its configuration
	// when no path is given on the command line.
	DefaultConfigPath = "scheduler.json"

	// DefaultTelemetryPath is the SQLite database telemetry samples land
	// in when telemetry is enabled without an explicit path.
	DefaultTelemetryPath = "sched_telemetry.db"

	// DefaultTelemetryInterval is the sampling period for worker counters.
	DefaultTelemetryInterval = 1 * time.Second
)
