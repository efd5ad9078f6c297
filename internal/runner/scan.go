package runner

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/prefab-dev/prefab/internal/config"
	"github.com/prefab-dev/prefab/internal/logging"
	"github.com/prefab-dev/prefab/internal/platform"
)

// Unit is one normalizable package build found in the work tree: the
// artifact directory for a single package version on a single platform.
type Unit struct {
	Platform    platform.Platform
	Name        string
	Version     string
	Dir         string   // unit directory; SourceDir of the normalize
	Executables []string // rename allow-list from the matching config entry
}

// Outcome records how one unit ended up. Skipped outcomes may describe
// directories that never became units, so Platform is plain text here.
type Outcome struct {
	Platform string
	Name     string
	Version  string
	Status   Status
	Message  string
}

// ScanWorkTree discovers units under workDir. The first directory level
// is platform identifiers, the second is {name}-{version} unit
// directories. Unknown platform directories and unit directories that
// cannot be split are reported as skipped outcomes rather than errors,
// as is any configured package missing from a scanned platform.
func ScanWorkTree(workDir string, cfg *config.Config, logger logging.Logger) ([]Unit, []Outcome, error) {
	entries, err := os.ReadDir(workDir)
	if err != nil {
		return nil, nil, fmt.Errorf("read work tree: %w", err)
	}

	var units []Unit
	var skips []Outcome
	var scanned []platform.Platform

	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		if !platform.Known(entry.Name()) {
			logger.Warn("skipping unknown platform directory", "dir", entry.Name())
			skips = append(skips, skipUnknownPlatform(workDir, entry.Name())...)
			continue
		}

		p := platform.Platform(entry.Name())
		scanned = append(scanned, p)

		platformDir := filepath.Join(workDir, entry.Name())
		children, err := os.ReadDir(platformDir)
		if err != nil {
			return nil, nil, fmt.Errorf("read platform directory %s: %w", platformDir, err)
		}

		for _, child := range children {
			if !child.IsDir() {
				continue
			}
			name, version, execs, ok := splitUnitName(child.Name(), cfg)
			if !ok {
				skips = append(skips, Outcome{
					Platform: string(p),
					Name:     child.Name(),
					Status:   StatusSkipped,
					Message:  "unrecognized unit directory name",
				})
				continue
			}
			units = append(units, Unit{
				Platform:    p,
				Name:        name,
				Version:     version,
				Dir:         filepath.Join(platformDir, child.Name()),
				Executables: execs,
			})
		}
	}

	skips = append(skips, skipAbsentPackages(units, scanned, cfg)...)

	return units, skips, nil
}

// skipUnknownPlatform reports the unit directories sitting under a
// platform directory that is not in the platform vocabulary.
func skipUnknownPlatform(workDir, dir string) []Outcome {
	children, err := os.ReadDir(filepath.Join(workDir, dir))
	if err != nil {
		return nil
	}

	var skips []Outcome
	for _, child := range children {
		if !child.IsDir() {
			continue
		}
		skips = append(skips, Outcome{
			Platform: dir,
			Name:     child.Name(),
			Status:   StatusSkipped,
			Message:  "unknown platform directory",
		})
	}
	return skips
}

// skipAbsentPackages reports configured packages that have no unit
// directory on a platform the scan visited.
func skipAbsentPackages(units []Unit, scanned []platform.Platform, cfg *config.Config) []Outcome {
	if cfg == nil {
		return nil
	}

	present := make(map[string]bool, len(units))
	for _, unit := range units {
		present[string(unit.Platform)+"/"+unit.Name] = true
	}

	var skips []Outcome
	for _, p := range scanned {
		for _, pkg := range cfg.Packages {
			name := pkg.EffectiveName()
			if present[string(p)+"/"+name] {
				continue
			}
			skips = append(skips, Outcome{
				Platform: string(p),
				Name:     name,
				Status:   StatusSkipped,
				Message:  "not present in work tree",
			})
		}
	}
	return skips
}

// splitUnitName splits a {name}-{version} unit directory name. Configured
// package names take precedence as longest-prefix matches; otherwise the
// split falls at the last dash whose suffix starts with a digit.
func splitUnitName(dirName string, cfg *config.Config) (name, version string, executables []string, ok bool) {
	if cfg != nil {
		var best *config.Package
		for i := range cfg.Packages {
			pkgName := cfg.Packages[i].EffectiveName()
			if len(dirName) <= len(pkgName)+1 {
				continue
			}
			if !strings.EqualFold(dirName[:len(pkgName)], pkgName) || dirName[len(pkgName)] != '-' {
				continue
			}
			if best == nil || len(pkgName) > len(best.EffectiveName()) {
				best = &cfg.Packages[i]
			}
		}
		if best != nil {
			pkgName := best.EffectiveName()
			return pkgName, dirName[len(pkgName)+1:], best.Executables, true
		}
	}

	for i := len(dirName) - 1; i > 0; i-- {
		if dirName[i] != '-' {
			continue
		}
		if i+1 < len(dirName) && dirName[i+1] >= '0' && dirName[i+1] <= '9' {
			return dirName[:i], dirName[i+1:], nil, true
		}
	}
	return "", "", nil, false
}
