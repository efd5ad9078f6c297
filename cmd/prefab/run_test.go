package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prefab-dev/prefab/internal/testutil"
)

func TestRunRun_ParseFlags(t *testing.T) {
	opts, err := parseRunArgs([]string{
		"--config-file", "custom.toml",
		"--work-dir", "/tmp/work",
		"--jobs", "4",
		"--keep-temporary-data",
		"--verbose",
	})
	if err != nil {
		t.Fatalf("parseRunArgs() error = %v", err)
	}

	if opts.configFile != "custom.toml" || opts.workDir != "/tmp/work" {
		t.Errorf("opts = %+v", opts)
	}
	if opts.jobs != 4 {
		t.Errorf("jobs = %d, want 4", opts.jobs)
	}
	if !opts.keepTemporaryData || !opts.verbose {
		t.Errorf("booleans = %+v", opts)
	}
}

func TestRunRun_Defaults(t *testing.T) {
	opts, err := parseRunArgs(nil)
	if err != nil {
		t.Fatalf("parseRunArgs() error = %v", err)
	}
	if opts.configFile != "config.toml" || opts.workDir != "." || opts.jobs != 1 {
		t.Errorf("defaults = %+v", opts)
	}
}

func TestRunRun_BadJobs(t *testing.T) {
	for _, value := range []string{"abc", "0", "-2", ""} {
		_, err := parseRunArgs([]string{"--jobs", value})
		if err == nil || !strings.Contains(err.Error(), "invalid --jobs value") {
			t.Errorf("parseRunArgs(--jobs %q) error = %v, want invalid value", value, err)
		}
	}
}

func TestRunRun_EndToEnd(t *testing.T) {
	workDir := t.TempDir()
	unitDir := filepath.Join(workDir, "linux-64", "mytool-1.0.0")
	if err := os.MkdirAll(unitDir, 0755); err != nil {
		t.Fatalf("create unit dir: %v", err)
	}
	testutil.WriteTarGz(t, filepath.Join(unitDir, "mytool-1.0.0-linux-64.tar.gz"), []testutil.Entry{
		{Name: "mytool", Body: testutil.ELFBody(), Mode: 0o755},
	})

	err := runRun([]string{
		"--work-dir", workDir,
		"--config-file", filepath.Join(workDir, "no-such-config.toml"),
	})
	if err != nil {
		t.Fatalf("runRun() error = %v", err)
	}

	if _, err := os.Stat(filepath.Join(unitDir, "prefix", "bin", "mytool")); err != nil {
		t.Errorf("normalized binary missing: %v", err)
	}
}

func TestRunRun_FailuresBecomeError(t *testing.T) {
	workDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(workDir, "linux-64", "broken-1.0.0"), 0755); err != nil {
		t.Fatalf("create unit dir: %v", err)
	}

	err := runRun([]string{
		"--work-dir", workDir,
		"--config-file", filepath.Join(workDir, "no-such-config.toml"),
	})
	if err == nil || !strings.Contains(err.Error(), "some units failed") {
		t.Fatalf("runRun() error = %v, want unit failure", err)
	}
	if got := exitCode(err); got != 1 {
		t.Errorf("exitCode() = %d, want 1: per-unit failures never leak 2/3", got)
	}
}

func TestRunRun_BrokenConfig(t *testing.T) {
	workDir := t.TempDir()
	configFile := filepath.Join(workDir, "config.toml")
	if err := os.WriteFile(configFile, []byte("{not toml"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	err := runRun([]string{"--work-dir", workDir, "--config-file", configFile})
	if err == nil || !strings.Contains(err.Error(), "parse config") {
		t.Errorf("runRun() error = %v, want parse failure", err)
	}
}

func TestRunRun_UnknownFlag(t *testing.T) {
	_, err := parseRunArgs([]string{"--frobnicate"})
	if err == nil || !strings.Contains(err.Error(), "unknown option") {
		t.Errorf("error = %v, want unknown option", err)
	}
}
