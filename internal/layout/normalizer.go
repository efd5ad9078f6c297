package layout

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/prefab-dev/prefab/internal/archive"
	"github.com/prefab-dev/prefab/internal/descriptor"
	"github.com/prefab-dev/prefab/internal/logging"
)

// Verifier authenticates an input artifact before it is unpacked. The
// returned method names what proved the file genuine; an error vetoes the
// run.
type Verifier interface {
	Verify(ctx context.Context, artifactPath string) (method string, err error)
}

// Normalizer orchestrates locating, unpacking, and reshaping one release
// artifact into an installable prefix.
type Normalizer struct {
	extractor *archive.Extractor
	verifier  Verifier
	logger    logging.Logger
}

// Config holds construction options for a Normalizer.
type Config struct {
	// Verifier authenticates artifacts before extraction. Nil skips
	// verification entirely.
	Verifier Verifier
	// Logger receives per-stage progress events. Nil discards them.
	Logger logging.Logger
}

// NewNormalizer creates a normalizer from config.
func NewNormalizer(config Config) *Normalizer {
	logger := config.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	return &Normalizer{
		extractor: archive.NewExtractor(),
		verifier:  config.Verifier,
		logger:    logger,
	}
}

// NormalizeOptions describe one normalization job.
type NormalizeOptions struct {
	// Descriptor identifies the package, version, and target platform.
	Descriptor *descriptor.Descriptor
	// SourceDir is the directory holding the release artifact.
	SourceDir string
	// Prefix is the installation prefix to populate. It is created if
	// absent and must be empty.
	Prefix string
	// Executables allow-lists final binary names that contain dashes, so
	// version-suffix stripping keeps them whole.
	Executables []string
}

// NormalizeResult reports what a completed run did.
type NormalizeResult struct {
	// Artifact is the input file that was consumed.
	Artifact *Artifact
	// Verified names the method that authenticated the artifact, or ""
	// when verification was skipped.
	Verified string
	// Executables lists the final bin/ entries, sorted.
	Executables []string
	// Duration covers the whole pipeline.
	Duration time.Duration
}

// Normalize runs the full pipeline for one unit: prefix guards, artifact
// lookup, optional verification, unpacking, flattening, classification,
// and version-suffix renaming.
//
// Failures that a caller should map to a distinct outcome wrap
// ErrMissingArtifact or ErrPrefixAccess; everything else is an ordinary
// pipeline error.
func (n *Normalizer) Normalize(ctx context.Context, opts NormalizeOptions) (*NormalizeResult, error) {
	start := time.Now()

	if opts.Descriptor == nil {
		return nil, fmt.Errorf("descriptor is required")
	}
	if opts.SourceDir == "" {
		return nil, fmt.Errorf("source directory is required")
	}
	if opts.Prefix == "" {
		return nil, fmt.Errorf("prefix is required")
	}

	if err := preparePrefix(opts.Prefix, opts.SourceDir); err != nil {
		return nil, err
	}

	artifact, err := LocateArtifact(opts.SourceDir, opts.Descriptor)
	if err != nil {
		return nil, err
	}
	n.logger.Debug("located artifact", "path", artifact.Path, "format", artifact.Format.String())

	verified := ""
	if n.verifier != nil {
		method, err := n.verifier.Verify(ctx, artifact.Path)
		if err != nil {
			return nil, fmt.Errorf("verify artifact: %w", err)
		}
		verified = method
		n.logger.Debug("verified artifact", "method", method)
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("normalize cancelled: %w", err)
	}

	if err := n.unpack(artifact, opts); err != nil {
		return nil, err
	}
	n.logger.Debug("unpacked artifact", "prefix", opts.Prefix)

	if err := Flatten(opts.Prefix); err != nil {
		return nil, fmt.Errorf("flatten payload: %w", err)
	}

	if err := Classify(opts.Prefix, NewDetector(opts.Descriptor.Platform)); err != nil {
		return nil, fmt.Errorf("classify payload: %w", err)
	}

	if err := StripVersionSuffixes(opts.Prefix, opts.Descriptor.Version, opts.Executables); err != nil {
		return nil, fmt.Errorf("strip version suffixes: %w", err)
	}

	executables, err := listBin(opts.Prefix)
	if err != nil {
		return nil, err
	}

	n.logger.Info("normalized package",
		"package", opts.Descriptor.Name,
		"version", opts.Descriptor.Version,
		"platform", opts.Descriptor.Platform,
		"executables", len(executables))

	return &NormalizeResult{
		Artifact:    artifact,
		Verified:    verified,
		Executables: executables,
		Duration:    time.Since(start),
	}, nil
}

// unpack dispatches on the artifact's format kind. Multi-file archives
// extract in place; single-file payloads land as "{name}" at the top of
// the prefix and classification decides where they belong.
func (n *Normalizer) unpack(artifact *Artifact, opts NormalizeOptions) error {
	switch {
	case artifact.Format.IsArchive():
		if err := n.extractor.ExtractArchive(artifact.Path, opts.Prefix, artifact.Format); err != nil {
			return fmt.Errorf("extract archive: %w", err)
		}
	case artifact.Format.IsCompressedBinary():
		dest := filepath.Join(opts.Prefix, opts.Descriptor.Name)
		if err := n.extractor.DecompressFile(artifact.Path, dest, artifact.Format); err != nil {
			return fmt.Errorf("decompress binary: %w", err)
		}
	default:
		dest := filepath.Join(opts.Prefix, opts.Descriptor.Name)
		if err := n.extractor.CopyBinary(artifact.Path, dest); err != nil {
			return fmt.Errorf("copy binary: %w", err)
		}
	}
	return nil
}

// preparePrefix creates the prefix and confirms it is safe to populate.
// A populated prefix is rejected rather than merged over, which also
// catches accidental re-runs against a finished unit.
func preparePrefix(prefix, srcDir string) error {
	if filepath.Clean(prefix) == filepath.Clean(srcDir) {
		return fmt.Errorf("%w: prefix and source directory are the same path %s", ErrPrefixAccess, prefix)
	}
	if err := os.MkdirAll(prefix, 0755); err != nil {
		return fmt.Errorf("%w: create %s: %v", ErrPrefixAccess, prefix, err)
	}
	entries, err := os.ReadDir(prefix)
	if err != nil {
		return fmt.Errorf("%w: read %s: %v", ErrPrefixAccess, prefix, err)
	}
	if len(entries) > 0 {
		return fmt.Errorf("%w: %s already contains %d entries; refusing to normalize into a populated prefix",
			ErrPrefixAccess, prefix, len(entries))
	}
	return nil
}

// listBin returns the sorted entries of the prefix's bin directory.
func listBin(prefix string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(prefix, BinDir))
	if err != nil {
		return nil, fmt.Errorf("read bin dir: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}
