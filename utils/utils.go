// utils.go — low-level zero-alloc helpers shared by the scheduler packages.
package utils

import (
	"syscall"
	"unsafe"
)

///////////////////////////////////////////////////////////////////////////////
// Conversion Utilities — Zero-Alloc Casts
///////////////////////////////////////////////////////////////////////////////

// B2s converts a []byte to a string **without** allocation.
// ⚠️ Caller must ensure the input slice remains valid and unchanged.
// Used for human-readable print paths.
//
//go:nosplit
//go:inline
func B2s(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return unsafe.String(&b[0], len(b))
}

///////////////////////////////////////////////////////////////////////////////
// Integer Formatting — No strconv, No Heap Pressure
///////////////////////////////////////////////////////////////////////////////

// Itoa renders an int into decimal ASCII without touching strconv.
// Digit assembly runs in a fixed stack buffer; only the final string
// materializes. Intended for cold-path diagnostics only.
//
//go:nosplit
//go:inline
func Itoa(v int) string {
	if v == 0 {
		return "0"
	}
	var buf [20]byte
	neg := v < 0
	if neg {
		v = -v
	}
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// Utoa renders a uint64 into decimal ASCII. Same contract as Itoa.
//
//go:nosplit
//go:inline
func Utoa(v uint64) string {
	if v == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}

///////////////////////////////////////////////////////////////////////////////
// Direct stderr Writer — Bypasses fmt and os.File
///////////////////////////////////////////////////////////////////////////////

// PrintWarning writes a message straight to file descriptor 2.
// No buffering, no locking, no fmt machinery. Interleaving across threads
// is tolerated because callers only emit single short lines.
//
//go:nosplit
func PrintWarning(msg string) {
	if len(msg) == 0 {
		return
	}
	_, _ = syscall.Write(2, unsafe.Slice(unsafe.StringData(msg), len(msg)))
}

///////////////////////////////////////////////////////////////////////////////
// Hash & Mixers — For Run-ID Generation
///////////////////////////////////////////////////////////////////////////////

// Mix64 applies a Murmur3-style avalanche to a 64-bit value.
// Used to derive telemetry run identifiers from wall-clock nanoseconds.
//
//go:nosplit
//go:inline
func Mix64(x uint64) uint64 {
	x ^= x >> 33
	x *= 0xff51afd7ed558ccd
	x ^= x >> 33
	x *= 0xc4ceb9fe1a85ec53
	x ^= x >> 33
	return x
}
