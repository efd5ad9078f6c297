package config

import (
	"fmt"
	"strings"
)

// Add appends a package, rejecting duplicates of (repository, name).
func (c *Config) Add(pkg Package) error {
	if err := ValidateRepository(pkg.Repository); err != nil {
		return err
	}
	for _, exec := range pkg.Executables {
		if strings.TrimSpace(exec) == "" {
			return fmt.Errorf("executable names must not be empty")
		}
	}

	key := packageKey(pkg)
	for _, existing := range c.Packages {
		if packageKey(existing) == key {
			return fmt.Errorf("package %s (%s) is already configured", pkg.EffectiveName(), pkg.Repository)
		}
	}
	c.Packages = append(c.Packages, pkg)
	return nil
}

// Remove drops the package identified by repository and, when one
// repository provides several packages, by name.
func (c *Config) Remove(repository, name string) error {
	var matches []int
	for i, pkg := range c.Packages {
		if !strings.EqualFold(pkg.Repository, repository) {
			continue
		}
		if name != "" && pkg.EffectiveName() != strings.ToLower(name) {
			continue
		}
		matches = append(matches, i)
	}

	switch {
	case len(matches) == 0:
		if name != "" {
			return fmt.Errorf("package %s (%s) is not configured", name, repository)
		}
		return fmt.Errorf("no package configured for %s", repository)
	case len(matches) > 1:
		return fmt.Errorf("%d packages configured for %s, pass a name to pick one", len(matches), repository)
	}

	i := matches[0]
	c.Packages = append(c.Packages[:i], c.Packages[i+1:]...)
	return nil
}

// FindByName returns the configured package whose effective name matches
// name, case-insensitively.
func (c *Config) FindByName(name string) (Package, bool) {
	lower := strings.ToLower(name)
	for _, pkg := range c.Packages {
		if pkg.EffectiveName() == lower {
			return pkg, true
		}
	}
	return Package{}, false
}
