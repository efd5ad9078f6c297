package main

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/prefab-dev/prefab/internal/config"
)

func TestRunConfigInit_WritesStarter(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "config.toml")

	if err := runConfigInit([]string{"--config-file", configFile}); err != nil {
		t.Fatalf("runConfigInit() error = %v", err)
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		t.Fatalf("starter config does not load: %v", err)
	}
	if len(cfg.Packages) != 0 {
		t.Errorf("starter config declares packages: %+v", cfg.Packages)
	}
}

func TestRunConfigInit_RefusesOverwrite(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "config.toml")

	if err := runConfigInit([]string{"--config-file", configFile}); err != nil {
		t.Fatalf("first init: %v", err)
	}
	err := runConfigInit([]string{"--config-file", configFile})
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Errorf("error = %v, want overwrite refusal", err)
	}
}
