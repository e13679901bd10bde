package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Logger writes operator-facing messages to stderr. It is deliberately
// small: sync and deploy runs are read by humans and CI logs, not by
// machines, so there is no structured output.
type Logger struct {
	out     io.Writer
	debug   bool
	noColor bool
}

// New creates a logger writing to stderr.
func New(debug, noColor bool) *Logger {
	return &Logger{out: os.Stderr, debug: debug, noColor: noColor}
}

// NewWithWriter creates a logger with a custom writer, for tests.
func NewWithWriter(w io.Writer, debug, noColor bool) *Logger {
	return &Logger{out: w, debug: debug, noColor: noColor}
}

func (l *Logger) emit(color, glyph, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if l.noColor {
		fmt.Fprintf(l.out, "%s %s\n", glyph, msg)
		return
	}
	fmt.Fprintf(l.out, "\033[%sm%s\033[0m %s\n", color, glyph, msg)
}

// Info logs a per-entry or per-step success message.
func (l *Logger) Info(format string, args ...interface{}) {
	l.emit("32", "✓", format, args...)
}

// Warn logs a recoverable-skip condition (e.g. an unreadable secret file).
func (l *Logger) Warn(format string, args ...interface{}) {
	l.emit("33", "⚠", format, args...)
}

// Error logs a fatal condition before the run aborts.
func (l *Logger) Error(format string, args ...interface{}) {
	l.emit("31", "✗", format, args...)
}

// Debug logs diagnostics when --debug is set.
func (l *Logger) Debug(format string, args ...interface{}) {
	if !l.debug {
		return
	}
	l.emit("36", "[DEBUG]", format, args...)
}

// Secret is a value that must never appear in logs. Format it with %s
// and the redacted marker is printed instead.
type Secret string

func (s Secret) String() string { return "[REDACTED]" }

// GoString covers %#v formatting.
func (s Secret) GoString() string { return "[REDACTED]" }

// Redact replaces known secret values inside s with the redacted marker.
// Values of three characters or fewer are left alone; replacing those
// would mangle unrelated text.
func Redact(s string, secrets []string) string {
	for _, secret := range secrets {
		if len(secret) > 3 {
			s = strings.ReplaceAll(s, secret, "[REDACTED]")
		}
	}
	return s
}
