package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/prefab-dev/prefab/internal/config"
)

// runConfigList handles the `prefab config list` subcommand
func runConfigList(args []string) error {
	showHelp := false
	configFile := config.DefaultFileName

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch arg {
		case "--help", "-h":
			showHelp = true
		case "--config-file":
			value, err := flagValue(args, &i)
			if err != nil {
				return err
			}
			configFile = value
		default:
			return fmt.Errorf("unknown option: %s\nRun 'prefab config list --help' for usage", arg)
		}
	}

	if showHelp {
		printConfigListHelp()
		return nil
	}

	cfg, err := config.LoadOrDefault(configFile)
	if err != nil {
		return err
	}

	if len(cfg.Packages) == 0 {
		fmt.Println("No packages configured.")
		fmt.Println("Run 'prefab config add <owner/repo>' to track one.")
		return nil
	}

	packages := make([]config.Package, len(cfg.Packages))
	copy(packages, cfg.Packages)
	sort.SliceStable(packages, func(i, j int) bool {
		ri, rj := strings.ToLower(packages[i].Repository), strings.ToLower(packages[j].Repository)
		if ri != rj {
			return ri < rj
		}
		return packages[i].EffectiveName() < packages[j].EffectiveName()
	})

	fmt.Println("Tracked packages:")
	fmt.Println()

	for _, pkg := range packages {
		details := formatPackageDetails(pkg)
		if details != "" {
			fmt.Printf("  %s %s\n", pkg.Repository, details)
		} else {
			fmt.Printf("  %s\n", pkg.Repository)
		}
	}

	return nil
}

// formatPackageDetails formats the non-default package fields for display
func formatPackageDetails(pkg config.Package) string {
	var parts []string

	if pkg.Name != "" {
		parts = append(parts, fmt.Sprintf("name: %s", pkg.EffectiveName()))
	}
	if len(pkg.Executables) > 0 {
		parts = append(parts, fmt.Sprintf("executables: %s", strings.Join(pkg.Executables, ", ")))
	}

	if len(parts) == 0 {
		return ""
	}
	return "(" + strings.Join(parts, "; ") + ")"
}

// printConfigListHelp prints help for the config list command
func printConfigListHelp() {
	fmt.Println("Usage: prefab config list [options]")
	fmt.Println()
	fmt.Println("List the packages tracked in the config file.")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -h, --help          Show this help message")
	fmt.Println("  --config-file FILE  Config file to read (default config.toml)")
}
