// Package platform wires configuration, seeding, the GA engine,
// reporting, and the run store into a single orchestrated run, plus the
// small leveled logger every stage reports diagnostics through.
package platform

import (
	"fmt"
	"io"
	"os"
)

// Logger is a small leveled diagnostic writer in a terse single-line
// style (plain fmt.Fprintln(os.Stderr, ...), no structured logging
// dependency anywhere in the module).
type Logger struct {
	out     io.Writer
	verbose bool
}

// NewLogger returns a Logger writing to w; verbose gates Debugf output.
func NewLogger(w io.Writer, verbose bool) *Logger {
	return &Logger{out: w, verbose: verbose}
}

// StderrLogger returns a Logger writing to os.Stderr.
func StderrLogger(verbose bool) *Logger {
	return NewLogger(os.Stderr, verbose)
}

func (l *Logger) Warnf(format string, args ...any) {
	fmt.Fprintln(l.out, "warn: "+fmt.Sprintf(format, args...))
}

func (l *Logger) Errorf(format string, args ...any) {
	fmt.Fprintln(l.out, "error: "+fmt.Sprintf(format, args...))
}

func (l *Logger) Infof(format string, args ...any) {
	fmt.Fprintln(l.out, "info: "+fmt.Sprintf(format, args...))
}

func (l *Logger) Debugf(format string, args ...any) {
	if !l.verbose {
		return
	}
	fmt.Fprintln(l.out, "debug: "+fmt.Sprintf(format, args...))
}
