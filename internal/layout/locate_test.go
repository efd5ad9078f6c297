package layout

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prefab-dev/prefab/internal/archive"
	"github.com/prefab-dev/prefab/internal/descriptor"
	"github.com/prefab-dev/prefab/internal/platform"
	"github.com/prefab-dev/prefab/internal/testutil"
)

func testDescriptor(t *testing.T, name, version string, p platform.Platform) *descriptor.Descriptor {
	t.Helper()
	desc, err := descriptor.New(name, version, p)
	if err != nil {
		t.Fatalf("descriptor.New(%q, %q, %q) error = %v", name, version, p, err)
	}
	return desc
}

func TestLocateArtifact(t *testing.T) {
	tests := []struct {
		name       string
		files      []string
		wantFile   string
		wantFormat archive.Format
	}{
		{
			name:       "tarball",
			files:      []string{"ripgrep-14.1.0-linux-64.tar.gz"},
			wantFile:   "ripgrep-14.1.0-linux-64.tar.gz",
			wantFormat: archive.FormatTarGz,
		},
		{
			name:       "zip wins over tarball",
			files:      []string{"ripgrep-14.1.0-linux-64.tar.gz", "ripgrep-14.1.0-linux-64.zip"},
			wantFile:   "ripgrep-14.1.0-linux-64.zip",
			wantFormat: archive.FormatZip,
		},
		{
			name:       "tarball wins over compressed binary",
			files:      []string{"ripgrep-14.1.0-linux-64.gz", "ripgrep-14.1.0-linux-64.tar.gz"},
			wantFile:   "ripgrep-14.1.0-linux-64.tar.gz",
			wantFormat: archive.FormatTarGz,
		},
		{
			name:       "bare binary last",
			files:      []string{"ripgrep-14.1.0-linux-64"},
			wantFile:   "ripgrep-14.1.0-linux-64",
			wantFormat: archive.FormatBinary,
		},
		{
			name:       "short tgz alias",
			files:      []string{"ripgrep-14.1.0-linux-64.tgz"},
			wantFile:   "ripgrep-14.1.0-linux-64.tgz",
			wantFormat: archive.FormatTarGz,
		},
		{
			name:       "unrelated files ignored",
			files:      []string{"README.md", "ripgrep-14.1.0-osx-64.tar.gz", "ripgrep-14.1.0-linux-64.tar.xz"},
			wantFile:   "ripgrep-14.1.0-linux-64.tar.xz",
			wantFormat: archive.FormatTarXz,
		},
	}

	desc := testDescriptor(t, "ripgrep", "14.1.0", platform.Linux64)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srcDir := t.TempDir()
			for _, file := range tt.files {
				testutil.WriteFile(t, filepath.Join(srcDir, file), "payload", 0o644)
			}

			artifact, err := LocateArtifact(srcDir, desc)
			if err != nil {
				t.Fatalf("LocateArtifact() error = %v", err)
			}
			if got, want := artifact.Path, filepath.Join(srcDir, tt.wantFile); got != want {
				t.Errorf("Path = %q, want %q", got, want)
			}
			if artifact.Format != tt.wantFormat {
				t.Errorf("Format = %v, want %v", artifact.Format, tt.wantFormat)
			}
		})
	}
}

func TestLocateArtifact_SkipsDirectories(t *testing.T) {
	srcDir := t.TempDir()
	desc := testDescriptor(t, "ripgrep", "14.1.0", platform.Linux64)

	// A directory spelled exactly like the bare-binary candidate must not
	// shadow a real artifact.
	if err := os.MkdirAll(filepath.Join(srcDir, "ripgrep-14.1.0-linux-64"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	testutil.WriteFile(t, filepath.Join(srcDir, "ripgrep-14.1.0-linux-64.tar.gz"), "payload", 0o644)

	artifact, err := LocateArtifact(srcDir, desc)
	if err != nil {
		t.Fatalf("LocateArtifact() error = %v", err)
	}
	if artifact.Format != archive.FormatTarGz {
		t.Errorf("Format = %v, want %v", artifact.Format, archive.FormatTarGz)
	}
}

func TestLocateArtifact_Missing(t *testing.T) {
	srcDir := t.TempDir()
	testutil.WriteFile(t, filepath.Join(srcDir, "ripgrep-14.1.0-osx-64.tar.gz"), "wrong platform", 0o644)
	testutil.WriteFile(t, filepath.Join(srcDir, "notes.txt"), "unrelated", 0o644)

	desc := testDescriptor(t, "ripgrep", "14.1.0", platform.Linux64)
	_, err := LocateArtifact(srcDir, desc)
	if !errors.Is(err, ErrMissingArtifact) {
		t.Fatalf("error = %v, want ErrMissingArtifact", err)
	}

	// The message lists the directory so naming mismatches are obvious.
	for _, fragment := range []string{"ripgrep-14.1.0-linux-64", "ripgrep-14.1.0-osx-64.tar.gz", "notes.txt"} {
		if !strings.Contains(err.Error(), fragment) {
			t.Errorf("error %q does not mention %q", err, fragment)
		}
	}
}

func TestLocateArtifact_EmptyDir(t *testing.T) {
	desc := testDescriptor(t, "fd", "10.2.0", platform.OSXArm64)

	_, err := LocateArtifact(t.TempDir(), desc)
	if !errors.Is(err, ErrMissingArtifact) {
		t.Fatalf("error = %v, want ErrMissingArtifact", err)
	}
	if !strings.Contains(err.Error(), "(empty)") {
		t.Errorf("error %q does not flag the empty directory", err)
	}
}
