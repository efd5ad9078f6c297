package layout

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prefab-dev/prefab/internal/archive"
	"github.com/prefab-dev/prefab/internal/descriptor"
)

// Artifact is the located input file for a unit.
type Artifact struct {
	// Path is the absolute or caller-relative location of the file.
	Path string
	// Format is the packaging format inferred from the matched extension.
	Format archive.Format
}

// LocateArtifact probes srcDir for the descriptor's stem combined with
// each supported extension, in the fixed candidate order. The first
// regular file that exists wins, so a .zip next to a .tar.gz resolves the
// same way every run. Returns an ErrMissingArtifact error when nothing
// matches.
func LocateArtifact(srcDir string, desc *descriptor.Descriptor) (*Artifact, error) {
	stem := desc.Stem()

	for _, candidate := range archive.Candidates() {
		path := filepath.Join(srcDir, stem+candidate.Ext)
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("probe %s: %w", path, err)
		}
		if !info.Mode().IsRegular() {
			continue
		}
		return &Artifact{Path: path, Format: candidate.Format}, nil
	}

	return nil, missingArtifactError(srcDir, stem)
}
