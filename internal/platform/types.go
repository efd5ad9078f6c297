// Package platform defines the target-platform vocabulary used to label
// repackaged binaries and detects the platform of the machine running the
// tool.
//
// Identifiers follow the conda subdir convention ("linux-64", "osx-arm64",
// "win-64", ...). They select the executable-detection strategy for a unit
// and, via host detection, provide the default target platform when neither
// flags nor environment specify one. Host detection uses gopsutil for Linux
// distribution details and falls back gracefully when those are unavailable.
package platform

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Platform identifies a target platform in conda subdir notation.
type Platform string

// Supported target platforms.
const (
	Noarch       Platform = "noarch"
	Linux32      Platform = "linux-32"
	Linux64      Platform = "linux-64"
	LinuxAarch64 Platform = "linux-aarch64"
	LinuxArmV6L  Platform = "linux-armv6l"
	LinuxArmV7L  Platform = "linux-armv7l"
	LinuxPPC64   Platform = "linux-ppc64"
	LinuxPPC64LE Platform = "linux-ppc64le"
	LinuxRiscV64 Platform = "linux-riscv64"
	LinuxS390X   Platform = "linux-s390x"
	OSX64        Platform = "osx-64"
	OSXArm64     Platform = "osx-arm64"
	Win32        Platform = "win-32"
	Win64        Platform = "win-64"
	WinArm64     Platform = "win-arm64"
	FreeBSD64    Platform = "freebsd-64"
)

// known holds the full identifier vocabulary.
var known = map[Platform]bool{
	Noarch:       true,
	Linux32:      true,
	Linux64:      true,
	LinuxAarch64: true,
	LinuxArmV6L:  true,
	LinuxArmV7L:  true,
	LinuxPPC64:   true,
	LinuxPPC64LE: true,
	LinuxRiscV64: true,
	LinuxS390X:   true,
	OSX64:        true,
	OSXArm64:     true,
	Win32:        true,
	Win64:        true,
	WinArm64:     true,
	FreeBSD64:    true,
}

// Parse validates a platform identifier string.
func Parse(s string) (Platform, error) {
	p := Platform(strings.TrimSpace(s))
	if p == "" {
		return "", fmt.Errorf("empty target platform")
	}
	if !known[p] {
		return "", fmt.Errorf("unknown target platform %q", s)
	}
	return p, nil
}

// Known reports whether s is a recognized platform identifier.
func Known(s string) bool {
	return known[Platform(s)]
}

// All returns every supported identifier in sorted order.
func All() []Platform {
	out := make([]Platform, 0, len(known))
	for p := range known {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// IsWindows returns true for win-* targets.
func (p Platform) IsWindows() bool {
	return strings.HasPrefix(string(p), "win-")
}

// IsLinux returns true for linux-* targets.
func (p Platform) IsLinux() bool {
	return strings.HasPrefix(string(p), "linux-")
}

// IsOSX returns true for osx-* targets.
func (p Platform) IsOSX() bool {
	return strings.HasPrefix(string(p), "osx-")
}

// IsNoarch returns true for the platform-independent target.
func (p Platform) IsNoarch() bool {
	return p == Noarch
}

// Host describes the machine the tool is running on.
type Host struct {
	Platform Platform // host platform in subdir notation
	OS       string   // runtime.GOOS
	Arch     string   // runtime.GOARCH
	Distro   string   // distribution ID (Linux only, e.g. "ubuntu")
	Version  string   // distribution version (Linux only, e.g. "22.04")
}

// Detector is the interface for host platform detection.
type Detector interface {
	Detect(ctx context.Context) (*Host, error)
}
