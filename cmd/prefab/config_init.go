package main

import (
	"fmt"

	"github.com/prefab-dev/prefab/internal/config"
)

// runConfigInit handles the `prefab config init` subcommand
func runConfigInit(args []string) error {
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
			return fmt.Errorf("unknown option: %s\nRun 'prefab config init --help' for usage", arg)
		}
	}

	if showHelp {
		printConfigInitHelp()
		return nil
	}

	if err := config.WriteStarter(configFile); err != nil {
		return err
	}

	fmt.Printf("Wrote starter config to %s\n", configFile)
	fmt.Println("Edit it, then run 'prefab config add <owner/repo>' to track packages.")
	return nil
}

// printConfigInitHelp prints help for the config init command
func printConfigInitHelp() {
	fmt.Println("Usage: prefab config init [options]")
	fmt.Println()
	fmt.Println("Write a commented starter config file. Refuses to overwrite an")
	fmt.Println("existing file.")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -h, --help          Show this help message")
	fmt.Println("  --config-file FILE  Where to write the config (default config.toml)")
}
