// setaffinity_stub.go - CPU affinity no-op for platforms without
// sched_setaffinity(2). Workers run unpinned; everything else is identical.

//go:build !linux || tinygo

package sched

// setAffinity is a no-op on unsupported platforms.
//
//go:nosplit
//go:inline
func setAffinity(cpu int) {
}
