package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/prefab-dev/prefab/internal/layout"
)

// Version will be set at build time via -ldflags
var Version = "v0.1.0"

func main() {
	// Handle subcommands
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version":
			fmt.Printf("prefab %s\n", Version)
			return
		case "normalize":
			// Handle prefab normalize subcommand
			exitOn(runNormalize(os.Args[2:]))
			return
		case "run":
			// Handle prefab run subcommand
			exitOn(runRun(os.Args[2:]))
			return
		case "config":
			// Handle prefab config subcommand
			if len(os.Args) < 3 {
				fmt.Fprintln(os.Stderr, "Error: config subcommand requires an action")
				printConfigUsage(os.Stderr)
				os.Exit(1)
			}
			switch os.Args[2] {
			case "init":
				exitOn(runConfigInit(os.Args[3:]))
			case "add":
				exitOn(runConfigAdd(os.Args[3:]))
			case "remove":
				exitOn(runConfigRemove(os.Args[3:]))
			case "list":
				exitOn(runConfigList(os.Args[3:]))
			default:
				fmt.Fprintf(os.Stderr, "Error: unknown config action: %s\n", os.Args[2])
				printConfigUsage(os.Stderr)
				os.Exit(1)
			}
			return
		case "--help", "-h", "help":
			// fall through to the usage text
		default:
			fmt.Fprintf(os.Stderr, "Error: unknown command: %s\n", os.Args[1])
			fmt.Fprintln(os.Stderr, "Run 'prefab --help' for usage")
			os.Exit(1)
		}
	}

	// Default: show help
	fmt.Println("prefab - repackage prebuilt release binaries into installable prefixes")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  prefab --version                   Show version information")
	fmt.Println("  prefab normalize [options]         Normalize one artifact into a prefix")
	fmt.Println("  prefab run [options]               Normalize every unit in a work tree")
	fmt.Println("  prefab config init [options]       Write a starter config file")
	fmt.Println("  prefab config add <owner/repo>     Track a package in the config")
	fmt.Println("  prefab config remove <owner/repo>  Stop tracking a package")
	fmt.Println("  prefab config list [options]       List tracked packages")
	fmt.Println()
	fmt.Println("Run 'prefab <command> --help' for command options.")
}

func printConfigUsage(w *os.File) {
	fmt.Fprintln(w, "Usage: prefab config init [options]")
	fmt.Fprintln(w, "       prefab config add [options] <owner/repo>")
	fmt.Fprintln(w, "       prefab config remove [options] <owner/repo>")
	fmt.Fprintln(w, "       prefab config list [options]")
}

// exitOn prints the error and exits with its mapped code. A nil error
// returns control to the caller.
func exitOn(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(exitCode(err))
}

// exitCode distinguishes the two failure classes callers script against:
// a missing input artifact exits 2, an unusable prefix exits 3, and
// everything else exits 1.
func exitCode(err error) int {
	switch {
	case errors.Is(err, layout.ErrMissingArtifact):
		return 2
	case errors.Is(err, layout.ErrPrefixAccess):
		return 3
	default:
		return 1
	}
}

// flagValue returns the value following a flag, advancing the caller's
// loop index past it.
func flagValue(args []string, i *int) (string, error) {
	if *i+1 >= len(args) {
		return "", fmt.Errorf("%s requires a value", args[*i])
	}
	*i++
	return args[*i], nil
}
