// Package monitoring holds the process-wide logging hooks. Logf is the
// general-purpose sink used by the command-line tools; Opsf, Diagf and
// Tracef are the leveled streams used by the engine.
package monitoring

import "log"

// Logf defaults to log.Printf. Tests or embedding hosts may redirect or
// mute it with SetLogger.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}
