package layout

import (
	"path/filepath"
	"testing"

	"github.com/prefab-dev/prefab/internal/platform"
	"github.com/prefab-dev/prefab/internal/testutil"
)

func TestMagicDetector(t *testing.T) {
	tests := []struct {
		name string
		body string
		want bool
	}{
		{name: "elf binary", body: testutil.ELFBody(), want: true},
		{name: "macho binary", body: testutil.MachOBody(), want: true},
		{name: "shebang script", body: testutil.ShebangBody(), want: true},
		{name: "shebang only", body: "#!", want: true},
		{name: "plain text", body: "just a readme\n", want: false},
		{name: "empty file", body: "", want: false},
		{name: "single byte", body: "#", want: false},
		{name: "elf prefix truncated", body: "\x7fEL", want: false},
	}

	detector := NewDetector(platform.Linux64)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "candidate")
			testutil.WriteFile(t, path, tt.body, 0o644)

			got, err := detector.IsExecutable(path)
			if err != nil {
				t.Fatalf("IsExecutable() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("IsExecutable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMagicDetector_MissingFile(t *testing.T) {
	detector := NewDetector(platform.OSXArm64)

	_, err := detector.IsExecutable(filepath.Join(t.TempDir(), "absent"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestMagicDetector_IgnoresPermissionBits(t *testing.T) {
	dir := t.TempDir()

	// Mode bits say executable, content says text. Content wins.
	script := filepath.Join(dir, "fake")
	testutil.WriteFile(t, script, "not a program\n", 0o755)

	// Mode bits say plain file, content says ELF. Content wins again.
	binary := filepath.Join(dir, "real")
	testutil.WriteFile(t, binary, testutil.ELFBody(), 0o600)

	detector := NewDetector(platform.Linux64)
	if got, err := detector.IsExecutable(script); err != nil || got {
		t.Errorf("IsExecutable(mode-only) = %v, %v; want false, nil", got, err)
	}
	if got, err := detector.IsExecutable(binary); err != nil || !got {
		t.Errorf("IsExecutable(content-only) = %v, %v; want true, nil", got, err)
	}
}

func TestSuffixDetector(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		want     bool
	}{
		{name: "exe", fileName: "rg.exe", want: true},
		{name: "uppercase exe", fileName: "RG.EXE", want: true},
		{name: "batch", fileName: "setup.bat", want: true},
		{name: "cmd", fileName: "run.cmd", want: true},
		{name: "com", fileName: "legacy.com", want: true},
		{name: "powershell", fileName: "install.ps1", want: true},
		{name: "dll", fileName: "helper.dll", want: false},
		{name: "no extension", fileName: "rg", want: false},
		{name: "exe in middle", fileName: "rg.exe.txt", want: false},
	}

	detector := NewDetector(platform.Win64)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.fileName)
			testutil.WriteFile(t, path, "payload", 0o644)

			got, err := detector.IsExecutable(path)
			if err != nil {
				t.Fatalf("IsExecutable() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("IsExecutable(%q) = %v, want %v", tt.fileName, got, tt.want)
			}
		})
	}
}

func TestSuffixDetector_DoesNotReadFile(t *testing.T) {
	// Extension matching must work even when the file cannot be opened.
	detector := NewDetector(platform.WinArm64)

	got, err := detector.IsExecutable(filepath.Join(t.TempDir(), "absent.exe"))
	if err != nil {
		t.Fatalf("IsExecutable() error = %v", err)
	}
	if !got {
		t.Error("IsExecutable(absent.exe) = false, want true")
	}
}

func TestNewDetector_PlatformSelection(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tool.exe")
	testutil.WriteFile(t, path, "plain text, executable extension", 0o644)

	winGot, err := NewDetector(platform.Win32).IsExecutable(path)
	if err != nil {
		t.Fatalf("windows detector error = %v", err)
	}
	linuxGot, err := NewDetector(platform.LinuxAarch64).IsExecutable(path)
	if err != nil {
		t.Fatalf("linux detector error = %v", err)
	}

	if !winGot {
		t.Error("windows detector rejected tool.exe")
	}
	if linuxGot {
		t.Error("linux detector accepted plain text")
	}
}
