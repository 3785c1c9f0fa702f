//go:build debugcheck

package debug

// Assert panics when cond is false. Compiled in only under the debugcheck
// build tag; release builds pay nothing for contract checks.
//
// Contract violations in the scheduler (popping from the shared context,
// double-initializing a context, releasing a worker context with undrained
// local work) are programmer errors. Recovering mid-schedule would be
// unsafe, so the only correct response is a loud, immediate stop.
func Assert(cond bool, msg string) {
	if !cond {
		panic("sched: contract violation: " + msg)
	}
}

// Enabled reports whether contract checks are compiled in. Tests use it to
// skip assertion-trip cases in release builds.
const Enabled = true
