package logging

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// charmLogger adapts a charmbracelet terminal logger to the Logger seam.
type charmLogger struct {
	l *log.Logger
}

// NewCharm returns a Logger backed by a charmbracelet terminal logger
// writing to w. When verbose is set the threshold drops to debug so the
// per-stage pipeline events become visible.
func NewCharm(w io.Writer, verbose bool) Logger {
	opts := log.Options{
		Prefix:          "prefab",
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
	}
	if verbose {
		opts.Level = log.DebugLevel
	}
	return &charmLogger{l: log.NewWithOptions(w, opts)}
}

func (c *charmLogger) Debug(msg string, keysAndValues ...interface{}) {
	c.l.Debug(msg, keysAndValues...)
}

func (c *charmLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Info(msg, keysAndValues...)
}

func (c *charmLogger) Warn(msg string, keysAndValues ...interface{}) {
	c.l.Warn(msg, keysAndValues...)
}

func (c *charmLogger) Error(msg string, keysAndValues ...interface{}) {
	c.l.Error(msg, keysAndValues...)
}
