package layout

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// StripVersionSuffixes renames executables in the prefix's bin directory
// so "mytool-1.2.3-linux-64" installs as plain "mytool". Only entries
// whose name contains the version string are touched; the cut happens at
// the first dash.
//
// Tools whose intended name itself contains a dash declare it through the
// executables allow-list: a listed name claims any file spelled
// "{name}-{rest}" and survives the cut intact. Renames clobber, so two
// qualifying files that shorten to the same name resolve to whichever
// sorts last.
func StripVersionSuffixes(prefix, version string, executables []string) error {
	binDir := filepath.Join(prefix, BinDir)
	entries, err := os.ReadDir(binDir)
	if err != nil {
		return fmt.Errorf("read bin dir: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if version == "" || !strings.Contains(name, version) {
			continue
		}
		short := shortName(name, executables)
		if short == name {
			continue
		}
		if err := os.Rename(filepath.Join(binDir, name), filepath.Join(binDir, short)); err != nil {
			return fmt.Errorf("rename %s: %w", name, err)
		}
	}
	return nil
}

// shortName cuts name after a matching allow-listed executable, or at the
// first dash. Names without an interior dash pass through unchanged.
func shortName(name string, executables []string) string {
	for _, exec := range executables {
		if exec == "" {
			continue
		}
		if name == exec {
			return name
		}
		if strings.HasPrefix(name, exec+"-") {
			return exec
		}
	}
	idx := strings.Index(name, "-")
	if idx <= 0 {
		return name
	}
	return name[:idx]
}
