package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/prefab-dev/prefab/internal/descriptor"
	"github.com/prefab-dev/prefab/internal/layout"
	"github.com/prefab-dev/prefab/internal/logging"
	"github.com/prefab-dev/prefab/internal/platform"
	"github.com/prefab-dev/prefab/internal/verify"
)

type normalizeOpts struct {
	showHelp    bool
	verbose     bool
	name        string
	version     string
	platform    string
	srcDir      string
	prefix      string
	executables []string
	verifyMode  string
	minisignKey string
	pgpKeyring  string
}

// parseNormalizeArgs parses command line arguments for normalize.
func parseNormalizeArgs(args []string) (*normalizeOpts, error) {
	opts := &normalizeOpts{}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch arg {
		case "--help", "-h":
			opts.showHelp = true
		case "--verbose", "-v":
			opts.verbose = true
		case "--name":
			value, err := flagValue(args, &i)
			if err != nil {
				return nil, err
			}
			opts.name = value
		case "--pkg-version":
			value, err := flagValue(args, &i)
			if err != nil {
				return nil, err
			}
			opts.version = value
		case "--platform":
			value, err := flagValue(args, &i)
			if err != nil {
				return nil, err
			}
			opts.platform = value
		case "--src-dir":
			value, err := flagValue(args, &i)
			if err != nil {
				return nil, err
			}
			opts.srcDir = value
		case "--prefix":
			value, err := flagValue(args, &i)
			if err != nil {
				return nil, err
			}
			opts.prefix = value
		case "--executable":
			value, err := flagValue(args, &i)
			if err != nil {
				return nil, err
			}
			opts.executables = append(opts.executables, value)
		case "--verify":
			value, err := flagValue(args, &i)
			if err != nil {
				return nil, err
			}
			opts.verifyMode = value
		case "--minisign-key":
			value, err := flagValue(args, &i)
			if err != nil {
				return nil, err
			}
			opts.minisignKey = value
		case "--pgp-keyring":
			value, err := flagValue(args, &i)
			if err != nil {
				return nil, err
			}
			opts.pgpKeyring = value
		default:
			return nil, fmt.Errorf("unknown option: %s\nRun 'prefab normalize --help' for usage", arg)
		}
	}

	return opts, nil
}

// resolveEnv fills unset options from the conventional build environment
// variables. Flags always win over the environment.
func (o *normalizeOpts) resolveEnv() {
	o.name = orEnv(o.name, "PKG_NAME")
	o.version = orEnv(o.version, "PKG_VERSION")
	o.prefix = orEnv(o.prefix, "PREFIX")
	o.srcDir = orEnv(o.srcDir, "SRC_DIR")
	o.platform = orEnv(o.platform, "target_platform")
	o.platform = orEnv(o.platform, "TARGET_PLATFORM")
	if o.srcDir == "" {
		o.srcDir = "."
	}
}

// orEnv returns value, or the named environment variable when value is
// empty.
func orEnv(value, key string) string {
	if value != "" {
		return value
	}
	return os.Getenv(key)
}

// runNormalize handles the `prefab normalize` subcommand
func runNormalize(args []string) error {
	opts, err := parseNormalizeArgs(args)
	if err != nil {
		return err
	}

	if opts.showHelp {
		printNormalizeHelp()
		return nil
	}

	opts.resolveEnv()

	if opts.name == "" {
		return fmt.Errorf("package name is required (--name or PKG_NAME)")
	}
	if opts.version == "" {
		return fmt.Errorf("package version is required (--pkg-version or PKG_VERSION)")
	}
	if opts.prefix == "" {
		return fmt.Errorf("prefix is required (--prefix or PREFIX)")
	}

	logger := logging.NewCharm(os.Stderr, opts.verbose)

	// Create context with timeout (10 minutes for large archives)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	target, err := resolveTargetPlatform(ctx, opts.platform, logger)
	if err != nil {
		return err
	}

	desc, err := descriptor.New(opts.name, opts.version, target)
	if err != nil {
		return err
	}

	mode, err := verify.ParseMode(opts.verifyMode)
	if err != nil {
		return err
	}
	verifier := verify.NewVerifier(verify.Config{
		Mode:        mode,
		MinisignKey: opts.minisignKey,
		PGPKeyring:  opts.pgpKeyring,
	})

	normalizer := layout.NewNormalizer(layout.Config{Verifier: verifier, Logger: logger})
	result, err := normalizer.Normalize(ctx, layout.NormalizeOptions{
		Descriptor:  desc,
		SourceDir:   opts.srcDir,
		Prefix:      opts.prefix,
		Executables: opts.executables,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Normalized %s into %s\n", desc, opts.prefix)
	if result.Verified != "" {
		fmt.Printf("  verified: %s\n", result.Verified)
	}
	for _, name := range result.Executables {
		fmt.Printf("  bin/%s\n", name)
	}
	return nil
}

// resolveTargetPlatform parses an explicit platform identifier, or falls
// back to detecting the host's.
func resolveTargetPlatform(ctx context.Context, name string, logger logging.Logger) (platform.Platform, error) {
	if name != "" {
		return platform.Parse(name)
	}

	host, err := platform.NewDetector().Detect(ctx)
	if err != nil {
		return "", err
	}
	if host.Distro != "" {
		logger.Debug("detected host platform",
			"platform", host.Platform,
			"distro", host.Distro,
			"version", host.Version)
	} else {
		logger.Debug("detected host platform", "platform", host.Platform)
	}
	return host.Platform, nil
}

// printNormalizeHelp prints help for the normalize command
func printNormalizeHelp() {
	fmt.Println("Usage: prefab normalize [options]")
	fmt.Println()
	fmt.Println("Locate a release artifact, unpack it, and reshape it into a")
	fmt.Println("standardized installable prefix (bin/, misc/, reserved dirs).")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -h, --help            Show this help message")
	fmt.Println("  -v, --verbose         Enable debug logging")
	fmt.Println("  --name NAME           Package name (env: PKG_NAME)")
	fmt.Println("  --pkg-version VER     Package version (env: PKG_VERSION)")
	fmt.Println("  --platform PLAT       Target platform, e.g. linux-64 (env: target_platform;")
	fmt.Println("                        detected from the host when unset)")
	fmt.Println("  --src-dir DIR         Directory holding the artifact (env: SRC_DIR, default .)")
	fmt.Println("  --prefix DIR          Installation prefix to populate (env: PREFIX)")
	fmt.Println("  --executable NAME     Final binary name to preserve across the version-suffix")
	fmt.Println("                        rename; repeatable")
	fmt.Println("  --verify MODE         Artifact verification: off, auto, or required (default auto)")
	fmt.Println("  --minisign-key FILE   Minisign public key for signature sidecars")
	fmt.Println("  --pgp-keyring FILE    PGP public keyring for signature sidecars")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  prefab normalize --name ripgrep --pkg-version 14.1.0 \\")
	fmt.Println("      --platform linux-64 --src-dir ./downloads --prefix ./prefix")
	fmt.Println()
	fmt.Println("Exit codes:")
	fmt.Println("  0  success")
	fmt.Println("  2  no input artifact found in the source directory")
	fmt.Println("  3  prefix not usable (populated, equals the source dir, or access denied)")
	fmt.Println("  1  any other failure")
}
