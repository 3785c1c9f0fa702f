//go:build !debugcheck

package debug

// Assert is a no-op in release builds. The empty body inlines away entirely,
// including evaluation-free call sites (callers must keep cond side-effect
// free for this reason).
//
//go:nosplit
//go:inline
func Assert(cond bool, msg string) {}

// Enabled reports whether contract checks are compiled in.
const Enabled = false
