package platform

import (
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Platform
		wantErr bool
	}{
		{"linux-64", "linux-64", Linux64, false},
		{"osx-arm64", "osx-arm64", OSXArm64, false},
		{"win-64", "win-64", Win64, false},
		{"noarch", "noarch", Noarch, false},
		{"surrounding whitespace", "  linux-aarch64  ", LinuxAarch64, false},
		{"uppercase rejected", "Linux-64", "", true},
		{"goos style rejected", "linux/amd64", "", true},
		{"unknown", "plan9-64", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("Parse() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if got != tt.want {
				t.Errorf("Parse() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestKnown(t *testing.T) {
	if !Known("linux-64") {
		t.Error("Known(linux-64) = false, want true")
	}
	if Known("linux64") {
		t.Error("Known(linux64) = true, want false")
	}
}

func TestAll(t *testing.T) {
	all := All()
	if len(all) != len(known) {
		t.Fatalf("All() returned %d identifiers, want %d", len(all), len(known))
	}
	for i := 1; i < len(all); i++ {
		if all[i-1] >= all[i] {
			t.Errorf("All() not sorted: %q before %q", all[i-1], all[i])
		}
	}
}

func TestPlatform_Predicates(t *testing.T) {
	tests := []struct {
		platform Platform
		windows  bool
		linux    bool
		osx      bool
		noarch   bool
	}{
		{Linux64, false, true, false, false},
		{LinuxAarch64, false, true, false, false},
		{OSX64, false, false, true, false},
		{OSXArm64, false, false, true, false},
		{Win64, true, false, false, false},
		{WinArm64, true, false, false, false},
		{Noarch, false, false, false, true},
		{FreeBSD64, false, false, false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.platform), func(t *testing.T) {
			if got := tt.platform.IsWindows(); got != tt.windows {
				t.Errorf("IsWindows() = %v, want %v", got, tt.windows)
			}
			if got := tt.platform.IsLinux(); got != tt.linux {
				t.Errorf("IsLinux() = %v, want %v", got, tt.linux)
			}
			if got := tt.platform.IsOSX(); got != tt.osx {
				t.Errorf("IsOSX() = %v, want %v", got, tt.osx)
			}
			if got := tt.platform.IsNoarch(); got != tt.noarch {
				t.Errorf("IsNoarch() = %v, want %v", got, tt.noarch)
			}
		})
	}
}
