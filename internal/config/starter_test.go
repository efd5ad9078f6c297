package config

import (
	"path/filepath"
	"testing"

	"github.com/prefab-dev/prefab/internal/testutil"
)

func TestWriteStarter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	if err := WriteStarter(path); err != nil {
		t.Fatalf("WriteStarter() error = %v", err)
	}

	// The starter must load cleanly with its documented defaults.
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load(starter) error = %v", err)
	}
	if cfg.Conda.Channel != "my-channel" {
		t.Errorf("Channel = %q, want %q", cfg.Conda.Channel, "my-channel")
	}
	if cfg.Verify.Mode != "auto" {
		t.Errorf("Verify.Mode = %q, want %q", cfg.Verify.Mode, "auto")
	}
	if len(cfg.Packages) != 0 {
		t.Errorf("len(Packages) = %d, want 0", len(cfg.Packages))
	}
}

func TestWriteStarter_RefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	testutil.WriteFile(t, path, "[conda]\n", 0o644)

	if err := WriteStarter(path); err == nil {
		t.Fatal("WriteStarter() expected error for existing file")
	}
}
