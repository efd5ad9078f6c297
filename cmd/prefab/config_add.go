package main

import (
	"fmt"

	"github.com/prefab-dev/prefab/internal/config"
)

type configAddOpts struct {
	showHelp    bool
	configFile  string
	name        string
	executables []string
	repos       []string
}

// parseConfigAddArgs parses command line arguments for config add.
func parseConfigAddArgs(args []string) (*configAddOpts, error) {
	opts := &configAddOpts{configFile: config.DefaultFileName}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch arg {
		case "--help", "-h":
			opts.showHelp = true
		case "--config-file":
			value, err := flagValue(args, &i)
			if err != nil {
				return nil, err
			}
			opts.configFile = value
		case "--name":
			value, err := flagValue(args, &i)
			if err != nil {
				return nil, err
			}
			opts.name = value
		case "--executable":
			value, err := flagValue(args, &i)
			if err != nil {
				return nil, err
			}
			opts.executables = append(opts.executables, value)
		default:
			// Anything not starting with - is a repository
			if len(arg) > 0 && arg[0] != '-' {
				opts.repos = append(opts.repos, arg)
			} else {
				return nil, fmt.Errorf("unknown option: %s\nRun 'prefab config add --help' for usage", arg)
			}
		}
	}

	return opts, nil
}

// runConfigAdd handles the `prefab config add` subcommand
func runConfigAdd(args []string) error {
	opts, err := parseConfigAddArgs(args)
	if err != nil {
		return err
	}

	if opts.showHelp {
		printConfigAddHelp()
		return nil
	}

	if len(opts.repos) != 1 {
		return fmt.Errorf("expected exactly one <owner/repo> argument; run 'prefab config add --help' for usage")
	}

	cfg, err := config.LoadOrDefault(opts.configFile)
	if err != nil {
		return err
	}

	pkg := config.Package{
		Repository:  opts.repos[0],
		Name:        opts.name,
		Executables: opts.executables,
	}
	if err := cfg.Add(pkg); err != nil {
		return err
	}

	if err := config.Save(opts.configFile, cfg); err != nil {
		return err
	}

	fmt.Printf("Added %s (package %s)\n", pkg.Repository, pkg.EffectiveName())
	return nil
}

// printConfigAddHelp prints help for the config add command
func printConfigAddHelp() {
	fmt.Println("Usage: prefab config add [options] <owner/repo>")
	fmt.Println()
	fmt.Println("Track a package in the config file, creating the file if needed.")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -h, --help          Show this help message")
	fmt.Println("  --config-file FILE  Config file to update (default config.toml)")
	fmt.Println("  --name NAME         Package name when it differs from the repo basename")
	fmt.Println("  --executable NAME   Binary name to preserve during normalization; repeatable")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  prefab config add BurntSushi/ripgrep --executable rg")
	fmt.Println("  prefab config add cli/cli --name gh --executable gh")
}
