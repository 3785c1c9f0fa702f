// control.go — Global control flags and activity management for pinned workers
// ============================================================================
// SCHEDULER CONTROL ORCHESTRATION
// ============================================================================
//
// Control provides lightweight global signaling infrastructure for
// coordinating activity states and graceful shutdown across pinned worker
// threads with nanosecond-precision timing and zero-allocation operations.
//
// Architecture overview:
//   • Global hot/stop flags for lock-free inter-thread communication
//   • Nanosecond-precision activity tracking with automatic cooldown
//   • Zero-allocation flag access for hot path performance
//   • Graceful shutdown coordination across all worker cores
//
// Threading model:
//   • The message-send path signals activity via SignalActivity()
//   • Worker threads poll flags via Flags() for loop coordination
//   • Automatic cooldown prevents unnecessary hot spinning once senders idle
//   • Graceful shutdown ensures clean drain before thread release
//
// Safety guarantees:
//   • Race-free flag access with atomic memory ordering
//   • Bounded cooldown periods prevent infinite hot spinning
//   • Deterministic shutdown behavior across all cores

package control

import (
	"sync/atomic"
	"time"

	"actorruntime/constants"
)

// ============================================================================
// GLOBAL STATE MANAGEMENT
// ============================================================================

var (
	// Global coordination flags - polled by all worker threads
	hot  uint32 // Activity indicator: 1 = producers actively sending, 0 = idle
	stop uint32 // Shutdown signal: 1 = initiate graceful shutdown, 0 = running

	// Activity timing for automatic cooldown management
	lastHot    int64 // Nanosecond timestamp of last producer activity
	cooldownNs = int64(constants.DefaultCooldown)
)

// ============================================================================
// ACTIVITY SIGNALING (SEND-PATH INTEGRATION)
// ============================================================================

// SignalActivity marks the scheduler as active and records precise timing
// for automatic cooldown management. Called from the message-send path
// whenever a work item transitions from idle to runnable.
//
//go:nosplit
//go:inline
func SignalActivity() {
	atomic.StoreUint32(&hot, 1)
	atomic.StoreInt64(&lastHot, time.Now().UnixNano())
}

// ============================================================================
// COOLDOWN MANAGEMENT (AUTOMATIC EFFICIENCY)
// ============================================================================

// PollCooldown implements automatic hot-flag clearance based on elapsed
// time since the last send. Integrates into worker idle loops so a burst of
// sends keeps every worker spinning, and a quiet period releases them back
// to their backoff policies.
//
//go:nosplit
//go:inline
func PollCooldown() {
	if atomic.LoadUint32(&hot) == 1 &&
		time.Now().UnixNano()-atomic.LoadInt64(&lastHot) > atomic.LoadInt64(&cooldownNs) {
		atomic.StoreUint32(&hot, 0)
	}
}

// SetCooldown adjusts the idle period after which the hot flag auto-clears.
// Applied live on configuration reload; non-positive values are ignored.
func SetCooldown(d time.Duration) {
	if d <= 0 {
		return
	}
	atomic.StoreInt64(&cooldownNs, int64(d))
}

// ============================================================================
// SYSTEM SHUTDOWN (GRACEFUL TERMINATION)
// ============================================================================

// Shutdown initiates graceful termination by setting the global stop flag.
// All pinned worker threads monitor this flag and terminate cleanly upon
// detection, after the surrounding runtime has drained both queue tiers.
//
//go:nosplit
//go:inline
func Shutdown() {
	atomic.StoreUint32(&stop, 1)
}

// Reset clears both flags. Test hook only: production code never un-stops
// a scheduler.
func Reset() {
	atomic.StoreUint32(&stop, 0)
	atomic.StoreUint32(&hot, 0)
}

// ============================================================================
// FLAG ACCESS (WORKER INTEGRATION)
// ============================================================================

// Flags returns direct pointers to the global coordination flags for
// zero-allocation polling by pinned worker threads. Loads through the
// returned pointers must use sync/atomic.
//
// Return values: (*stop_flag, *hot_flag) for PinnedWorker integration.
// Memory safety: returned pointers remain valid for application lifetime.
//
//go:nosplit
//go:inline
func Flags() (*uint32, *uint32) {
	return &stop, &hot
}
