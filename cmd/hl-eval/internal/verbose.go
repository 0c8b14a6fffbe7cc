package internal

import "sync/atomic"

var verboseEnabled atomic.Bool

// SetVerbose toggles verbose diagnostics for the whole process.
func SetVerbose(enabled bool) {
	verboseEnabled.Store(enabled)
}

// IsVerbose reports whether verbose diagnostics are enabled.
func IsVerbose() bool {
	return verboseEnabled.Load()
}
