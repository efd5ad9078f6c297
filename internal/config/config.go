// Package config defines the prefab run configuration: conda channel,
// verification settings, and the package list, stored as TOML alongside
// the work tree.
package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/prefab-dev/prefab/internal/verify"
)

// DefaultFileName is the config file "prefab run" looks for in the
// working directory.
const DefaultFileName = "config.toml"

// Config is the on-disk run configuration.
type Config struct {
	Conda    Conda     `toml:"conda"`
	Verify   Verify    `toml:"verify"`
	Packages []Package `toml:"packages,omitempty"`
}

// Conda holds publishing-channel settings recorded in unit env files.
type Conda struct {
	Channel string `toml:"channel,omitempty"`
}

// Verify selects artifact verification behavior for all units.
type Verify struct {
	// Mode is off, auto, or required. Empty means auto.
	Mode string `toml:"mode,omitempty"`
	// MinisignKey is the path to a minisign public key file.
	MinisignKey string `toml:"minisign_key,omitempty"`
	// PGPKeyring is the path to an armored or binary PGP public keyring.
	PGPKeyring string `toml:"pgp_keyring,omitempty"`
}

// Package is one third-party release to repackage.
type Package struct {
	// Repository is the upstream "owner/repo" the release comes from.
	Repository string `toml:"repository"`
	// Name overrides the package name. Empty defaults to the repository
	// basename.
	Name string `toml:"name,omitempty"`
	// Executables allow-lists installed binary names that contain
	// dashes, protecting them from version-suffix stripping.
	Executables []string `toml:"executables,omitempty"`
}

// EffectiveName is the lowercase package name units are keyed by.
func (p Package) EffectiveName() string {
	if p.Name != "" {
		return strings.ToLower(p.Name)
	}
	_, repo, err := SplitRepository(p.Repository)
	if err != nil {
		return strings.ToLower(p.Repository)
	}
	return strings.ToLower(repo)
}

// SplitRepository splits an "owner/repo" reference into its halves.
func SplitRepository(repository string) (owner, repo string, err error) {
	if strings.ContainsAny(repository, " \t") {
		return "", "", fmt.Errorf("repository %q must not contain whitespace", repository)
	}
	parts := strings.Split(repository, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("repository %q must have the form owner/repo", repository)
	}
	return parts[0], parts[1], nil
}

// ValidateRepository checks an "owner/repo" reference.
func ValidateRepository(repository string) error {
	_, _, err := SplitRepository(repository)
	return err
}

// packageKey is the duplicate-detection identity of a package.
func packageKey(p Package) string {
	return strings.ToLower(p.Repository) + "\x00" + p.EffectiveName()
}

// Load reads and validates a config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &cfg, nil
}

// LoadOrDefault reads a config file, substituting an empty config when
// the file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil && errors.Is(err, os.ErrNotExist) {
		return &Config{}, nil
	}
	return cfg, err
}

// Validate checks repository shapes, the verification mode, and
// duplicate package identities.
func (c *Config) Validate() error {
	if _, err := verify.ParseMode(c.Verify.Mode); err != nil {
		return err
	}
	seen := make(map[string]bool)
	for _, pkg := range c.Packages {
		if err := ValidateRepository(pkg.Repository); err != nil {
			return err
		}
		for _, exec := range pkg.Executables {
			if strings.TrimSpace(exec) == "" {
				return fmt.Errorf("package %s: executable names must not be empty", pkg.EffectiveName())
			}
		}
		key := packageKey(pkg)
		if seen[key] {
			return fmt.Errorf("duplicate package %s (%s)", pkg.EffectiveName(), pkg.Repository)
		}
		seen[key] = true
	}
	return nil
}

// Save writes the config atomically with packages sorted by repository
// and name.
func Save(path string, cfg *Config) error {
	sortPackages(cfg.Packages)
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("write temp config: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace config: %w", err)
	}
	return nil
}

func sortPackages(pkgs []Package) {
	sort.SliceStable(pkgs, func(i, j int) bool {
		ri, rj := strings.ToLower(pkgs[i].Repository), strings.ToLower(pkgs[j].Repository)
		if ri != rj {
			return ri < rj
		}
		return pkgs[i].EffectiveName() < pkgs[j].EffectiveName()
	})
}
