// Package diag provides opt-in debug tracing for the parse paths, mirroring
// the debug-flag-gated log.Printf calls of the parser this package's
// callers are modeled on. Production parsing never depends on diag: faults
// still surface as Warning values, never as log lines.
package diag

import (
	"io"
	"log"
	"os"
)

// Logger gates a stdlib *log.Logger behind an enabled flag. The zero value
// is a disabled logger: every method is then a no-op.
type Logger struct {
	enabled bool
	l       *log.Logger
}

// Disabled returns a Logger whose Printf/Println calls are no-ops.
func Disabled() *Logger {
	return &Logger{enabled: false, l: log.New(io.Discard, "", 0)}
}

// New returns an enabled Logger writing to os.Stderr with the given prefix.
func New(prefix string) *Logger {
	return &Logger{enabled: true, l: log.New(os.Stderr, prefix, log.LstdFlags)}
}

// Printf logs a formatted trace line when the logger is enabled.
func (d *Logger) Printf(format string, args ...interface{}) {
	if d == nil || !d.enabled {
		return
	}
	d.l.Printf(format, args...)
}

// Println logs a trace line when the logger is enabled.
func (d *Logger) Println(args ...interface{}) {
	if d == nil || !d.enabled {
		return
	}
	d.l.Println(args...)
}

// Enabled reports whether tracing is on, letting callers skip building an
// expensive trace message when it would be discarded anyway.
func (d *Logger) Enabled() bool {
	return d != nil && d.enabled
}
