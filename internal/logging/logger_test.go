package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestNop(t *testing.T) {
	logger := Nop()

	// Must accept any shape of key-value arguments without side effects.
	logger.Debug("debug message")
	logger.Info("info message", "key", "value")
	logger.Warn("warn message", "count", 3)
	logger.Error("error message", "err", "boom", "dangling")
}

func TestNewCharm_Levels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewCharm(&buf, false)

	logger.Debug("hidden detail", "stage", "flatten")
	logger.Info("visible event", "package", "ripgrep")

	out := buf.String()
	if strings.Contains(out, "hidden detail") {
		t.Errorf("debug message logged at default level: %q", out)
	}
	if !strings.Contains(out, "visible event") {
		t.Errorf("info message missing from output: %q", out)
	}
	if !strings.Contains(out, "ripgrep") {
		t.Errorf("key-value context missing from output: %q", out)
	}
}

func TestNewCharm_Verbose(t *testing.T) {
	var buf bytes.Buffer
	logger := NewCharm(&buf, true)

	logger.Debug("pipeline stage", "stage", "classify")

	if !strings.Contains(buf.String(), "pipeline stage") {
		t.Errorf("verbose logger dropped debug message: %q", buf.String())
	}
}
