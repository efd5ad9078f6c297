package main

import (
	"fmt"

	"github.com/prefab-dev/prefab/internal/config"
)

type configRemoveOpts struct {
	showHelp   bool
	configFile string
	name       string
	repos      []string
}

// parseConfigRemoveArgs parses command line arguments for config remove.
func parseConfigRemoveArgs(args []string) (*configRemoveOpts, error) {
	opts := &configRemoveOpts{configFile: config.DefaultFileName}

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
		default:
			// Anything not starting with - is a repository
			if len(arg) > 0 && arg[0] != '-' {
				opts.repos = append(opts.repos, arg)
			} else {
				return nil, fmt.Errorf("unknown option: %s\nRun 'prefab config remove --help' for usage", arg)
			}
		}
	}

	return opts, nil
}

// runConfigRemove handles the `prefab config remove` subcommand
func runConfigRemove(args []string) error {
	opts, err := parseConfigRemoveArgs(args)
	if err != nil {
		return err
	}

	if opts.showHelp {
		printConfigRemoveHelp()
		return nil
	}

	if len(opts.repos) != 1 {
		return fmt.Errorf("expected exactly one <owner/repo> argument; run 'prefab config remove --help' for usage")
	}

	cfg, err := config.LoadOrDefault(opts.configFile)
	if err != nil {
		return err
	}

	if err := cfg.Remove(opts.repos[0], opts.name); err != nil {
		return err
	}

	if err := config.Save(opts.configFile, cfg); err != nil {
		return err
	}

	fmt.Printf("Removed %s\n", opts.repos[0])
	return nil
}

// printConfigRemoveHelp prints help for the config remove command
func printConfigRemoveHelp() {
	fmt.Println("Usage: prefab config remove [options] <owner/repo>")
	fmt.Println()
	fmt.Println("Stop tracking a package. When several packages share a repository,")
	fmt.Println("pass --name to pick one.")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -h, --help          Show this help message")
	fmt.Println("  --config-file FILE  Config file to update (default config.toml)")
	fmt.Println("  --name NAME         Package name to disambiguate")
}
