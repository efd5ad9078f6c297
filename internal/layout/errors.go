package layout

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
)

// Failure classes the command layer maps to distinct exit codes. Wrapped
// errors carry the details; callers test with errors.Is.
var (
	// ErrMissingArtifact means no file in the source directory matched the
	// descriptor's stem with a supported extension.
	ErrMissingArtifact = errors.New("input artifact not found")

	// ErrPrefixAccess means the target prefix cannot be used: it is not
	// creatable, not readable, already populated, or aliases the source
	// directory.
	ErrPrefixAccess = errors.New("installation prefix not usable")
)

// missingArtifactError lists the source directory so a naming mismatch
// between the release file and the expected stem is visible at a glance.
func missingArtifactError(srcDir, stem string) error {
	entries, err := os.ReadDir(srcDir)
	if err != nil {
		return fmt.Errorf("%w: no file in %s matches stem %q (listing failed: %v)",
			ErrMissingArtifact, srcDir, stem, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	listing := "(empty)"
	if len(names) > 0 {
		listing = strings.Join(names, ", ")
	}
	return fmt.Errorf("%w: no file in %s matches stem %q with a supported extension; directory contains: %s",
		ErrMissingArtifact, srcDir, stem, listing)
}
