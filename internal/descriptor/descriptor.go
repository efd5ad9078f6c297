// Package descriptor identifies the package a unit of work repackages:
// name, version, and target platform. The trio fixes the archive stem
// ("{name}-{version}-{platform}") every input artifact must carry.
package descriptor

import (
	"fmt"
	"strings"

	"github.com/prefab-dev/prefab/internal/platform"
)

// Descriptor identifies one package at one version for one target platform.
type Descriptor struct {
	Name     string
	Version  string
	Platform platform.Platform
}

// New validates the fields and returns a descriptor. Names are normalized
// to lower case; archive stems and decompressed binaries always use the
// lowercase form.
func New(name, version string, p platform.Platform) (*Descriptor, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	version = strings.TrimSpace(version)

	if err := validateToken("package name", name); err != nil {
		return nil, err
	}
	if err := validateToken("package version", version); err != nil {
		return nil, err
	}
	if _, err := platform.Parse(string(p)); err != nil {
		return nil, fmt.Errorf("invalid descriptor: %w", err)
	}

	return &Descriptor{Name: name, Version: version, Platform: p}, nil
}

// Stem returns the artifact base name without extension:
// "{name}-{version}-{platform}".
func (d *Descriptor) Stem() string {
	return fmt.Sprintf("%s-%s-%s", d.Name, d.Version, d.Platform)
}

// String renders the descriptor for log lines and error messages.
func (d *Descriptor) String() string {
	return d.Stem()
}

// validateToken rejects values that would break file names built from the
// descriptor.
func validateToken(field, value string) error {
	if value == "" {
		return fmt.Errorf("invalid descriptor: %s is empty", field)
	}
	if strings.ContainsAny(value, "/\\ \t\n\x00") {
		return fmt.Errorf("invalid descriptor: %s %q contains a path separator or whitespace", field, value)
	}
	if value == "." || value == ".." {
		return fmt.Errorf("invalid descriptor: %s %q is not a valid file name component", field, value)
	}
	return nil
}
