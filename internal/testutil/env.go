// Package testutil provides utilities for testing prefab in isolation.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// SetupTestEnv blanks the conda-build environment variables so tests never
// inherit descriptor values from a surrounding build environment.
// Restoration is handled by t.Setenv.
func SetupTestEnv(t *testing.T) {
	t.Helper()

	for _, key := range []string{
		"PKG_NAME",
		"PKG_VERSION",
		"PREFIX",
		"SRC_DIR",
		"target_platform",
		"TARGET_PLATFORM",
	} {
		t.Setenv(key, "")
	}
}

// WriteFile writes a regular file with the given mode, creating parents.
func WriteFile(t *testing.T, path, body string, mode os.FileMode) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create parent directory for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(body), mode); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}
