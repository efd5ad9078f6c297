package platform

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v4/host"
)

// hostSubdirs maps GOOS/GOARCH pairs to subdir identifiers.
var hostSubdirs = map[string]Platform{
	"linux/386":     Linux32,
	"linux/amd64":   Linux64,
	"linux/arm":     LinuxArmV7L,
	"linux/arm64":   LinuxAarch64,
	"linux/ppc64":   LinuxPPC64,
	"linux/ppc64le": LinuxPPC64LE,
	"linux/riscv64": LinuxRiscV64,
	"linux/s390x":   LinuxS390X,
	"darwin/amd64":  OSX64,
	"darwin/arm64":  OSXArm64,
	"windows/386":   Win32,
	"windows/amd64": Win64,
	"windows/arm64": WinArm64,
	"freebsd/amd64": FreeBSD64,
}

// RealDetector implements Detector using actual host inspection.
type RealDetector struct{}

// NewDetector creates a new host platform detector.
func NewDetector() Detector {
	return &RealDetector{}
}

// Detect maps the running OS and architecture to a target-platform
// identifier and, on Linux, adds distribution details via gopsutil.
//
// Distribution lookup failures are non-fatal: the host platform itself
// comes from the Go runtime and is always available on supported systems.
// Context cancellation during the gopsutil query is a hard failure.
func (d *RealDetector) Detect(ctx context.Context) (*Host, error) {
	subdir, err := hostSubdir(runtime.GOOS, runtime.GOARCH)
	if err != nil {
		return nil, fmt.Errorf("host detection failed: %w", err)
	}

	h := &Host{
		Platform: subdir,
		OS:       runtime.GOOS,
		Arch:     runtime.GOARCH,
	}

	if runtime.GOOS == "linux" {
		distro, _, version, err := host.PlatformInformationWithContext(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("host detection cancelled: %w", ctx.Err())
			}
			// Distro details are informational only.
			return h, nil
		}
		h.Distro = strings.ToLower(strings.TrimSpace(distro))
		h.Version = strings.TrimSpace(version)
	}

	return h, nil
}

// hostSubdir resolves a GOOS/GOARCH pair to a subdir identifier.
func hostSubdir(goos, goarch string) (Platform, error) {
	if p, ok := hostSubdirs[goos+"/"+goarch]; ok {
		return p, nil
	}
	return "", fmt.Errorf("no target platform for host %s/%s", goos, goarch)
}
