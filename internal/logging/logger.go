// Package logging defines the minimal structured-logging seam shared by
// the library packages, plus the adapter that backs it with the CLI's
// terminal logger. Library code depends only on the interface so tests
// stay silent and callers choose the sink.
package logging

// Logger provides structured logging with key-value context.
type Logger interface {
	// Debug logs debug-level messages with optional key-value pairs.
	Debug(msg string, keysAndValues ...interface{})

	// Info logs info-level messages with optional key-value pairs.
	Info(msg string, keysAndValues ...interface{})

	// Warn logs warning-level messages with optional key-value pairs.
	Warn(msg string, keysAndValues ...interface{})

	// Error logs error-level messages with optional key-value pairs.
	Error(msg string, keysAndValues ...interface{})
}

// nopLogger is a Logger implementation that does nothing.
type nopLogger struct{}

func (n *nopLogger) Debug(msg string, keysAndValues ...interface{}) {}
func (n *nopLogger) Info(msg string, keysAndValues ...interface{})  {}
func (n *nopLogger) Warn(msg string, keysAndValues ...interface{})  {}
func (n *nopLogger) Error(msg string, keysAndValues ...interface{}) {}

// Nop returns a Logger that discards everything. It is the default
// wherever no logger is injected.
func Nop() Logger {
	return &nopLogger{}
}
