package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/prefab-dev/prefab/internal/config"
	"github.com/prefab-dev/prefab/internal/logging"
	"github.com/prefab-dev/prefab/internal/runner"
)

type runOpts struct {
	showHelp          bool
	verbose           bool
	configFile        string
	workDir           string
	jobs              int
	keepTemporaryData bool
}

// parseRunArgs parses command line arguments for run.
func parseRunArgs(args []string) (*runOpts, error) {
	opts := &runOpts{
		configFile: config.DefaultFileName,
		workDir:    ".",
		jobs:       1,
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch arg {
		case "--help", "-h":
			opts.showHelp = true
		case "--verbose", "-v":
			opts.verbose = true
		case "--keep-temporary-data":
			opts.keepTemporaryData = true
		case "--config-file":
			value, err := flagValue(args, &i)
			if err != nil {
				return nil, err
			}
			opts.configFile = value
		case "--work-dir":
			value, err := flagValue(args, &i)
			if err != nil {
				return nil, err
			}
			opts.workDir = value
		case "--jobs", "-j":
			value, err := flagValue(args, &i)
			if err != nil {
				return nil, err
			}
			jobs, err := strconv.Atoi(value)
			if err != nil || jobs < 1 {
				return nil, fmt.Errorf("invalid --jobs value %q: want a positive integer", value)
			}
			opts.jobs = jobs
		default:
			return nil, fmt.Errorf("unknown option: %s\nRun 'prefab run --help' for usage", arg)
		}
	}

	return opts, nil
}

// runRun handles the `prefab run` subcommand
func runRun(args []string) error {
	opts, err := parseRunArgs(args)
	if err != nil {
		return err
	}

	if opts.showHelp {
		printRunHelp()
		return nil
	}

	logger := logging.NewCharm(os.Stderr, opts.verbose)

	cfg, err := config.LoadOrDefault(opts.configFile)
	if err != nil {
		return err
	}

	// Create context with timeout (an hour covers large work trees)
	ctx, cancel := context.WithTimeout(context.Background(), time.Hour)
	defer cancel()

	r := runner.NewRunner(runner.Config{Logger: logger})
	result, err := r.Run(ctx, runner.RunOptions{
		Config:            cfg,
		WorkDir:           opts.workDir,
		Jobs:              opts.jobs,
		KeepTemporaryData: opts.keepTemporaryData,
	})
	if err != nil {
		return err
	}

	fmt.Print(runner.FormatRunReport(result.Outcomes))

	if result.HasFailures() {
		return fmt.Errorf("some units failed; journal at %s", result.JournalPath)
	}
	return nil
}

// printRunHelp prints help for the run command
func printRunHelp() {
	fmt.Println("Usage: prefab run [options]")
	fmt.Println()
	fmt.Println("Scan a work tree of {platform}/{name}-{version} unit directories and")
	fmt.Println("normalize every unit into its own prefix. Unit failures are reported")
	fmt.Println("and rolled back; the run continues with the remaining units.")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -h, --help             Show this help message")
	fmt.Println("  -v, --verbose          Enable debug logging")
	fmt.Println("  --config-file FILE     Config file to load (default config.toml)")
	fmt.Println("  --work-dir DIR         Work tree to scan (default .)")
	fmt.Println("  -j, --jobs N           Normalize up to N units concurrently (default 1)")
	fmt.Println("  --keep-temporary-data  Keep failed unit prefixes for inspection")
	fmt.Println()
	fmt.Println("Exit codes:")
	fmt.Println("  0  every unit succeeded or was skipped")
	fmt.Println("  1  at least one unit failed, or the run could not start")
}
