// Package archive extracts release artifacts into a directory. It speaks
// every packaging format the repackaging pipeline accepts: zip and tar
// archives (gzip, xz, zstd, bzip2, or uncompressed), single-file
// compressed binaries (gzip, xz, zstd), and bare executables.
package archive

import (
	"fmt"
	"strings"
)

// Format identifies a supported artifact packaging format.
type Format int

const (
	// FormatBinary is a bare executable with no archive wrapper.
	FormatBinary Format = iota
	FormatZip
	FormatTarGz
	FormatTarXz
	FormatTarZst
	FormatTarBz2
	FormatTar
	FormatGz
	FormatXz
	FormatZst
)

// String returns the canonical extension-like name of the format.
func (f Format) String() string {
	switch f {
	case FormatBinary:
		return "binary"
	case FormatZip:
		return "zip"
	case FormatTarGz:
		return "tar.gz"
	case FormatTarXz:
		return "tar.xz"
	case FormatTarZst:
		return "tar.zst"
	case FormatTarBz2:
		return "tar.bz2"
	case FormatTar:
		return "tar"
	case FormatGz:
		return "gz"
	case FormatXz:
		return "xz"
	case FormatZst:
		return "zst"
	default:
		return "unknown"
	}
}

// IsArchive returns true for multi-file formats extracted into a tree.
func (f Format) IsArchive() bool {
	switch f {
	case FormatZip, FormatTarGz, FormatTarXz, FormatTarZst, FormatTarBz2, FormatTar:
		return true
	}
	return false
}

// IsCompressedBinary returns true for single-file compressed formats that
// decompress to exactly one executable.
func (f Format) IsCompressedBinary() bool {
	switch f {
	case FormatGz, FormatXz, FormatZst:
		return true
	}
	return false
}

// Candidate pairs an artifact extension with its format. Ext includes the
// leading dot; the bare-binary candidate has an empty Ext.
type Candidate struct {
	Ext    string
	Format Format
}

// candidates is the fixed probe order for artifact files. Archives come
// first, then single-file compressed binaries, then the bare executable.
// Longer extensions precede their suffixes so ".tar.gz" never matches as
// ".gz".
var candidates = []Candidate{
	{".zip", FormatZip},
	{".tar.gz", FormatTarGz},
	{".tgz", FormatTarGz},
	{".tar.xz", FormatTarXz},
	{".txz", FormatTarXz},
	{".tar.zst", FormatTarZst},
	{".tar.bz2", FormatTarBz2},
	{".tar", FormatTar},
	{".gz", FormatGz},
	{".xz", FormatXz},
	{".zst", FormatZst},
	{"", FormatBinary},
}

// Candidates returns the probe order for artifact extensions.
func Candidates() []Candidate {
	out := make([]Candidate, len(candidates))
	copy(out, candidates)
	return out
}

// DetectFormat matches a file name against the known extensions.
// The bare-binary candidate never matches here; a name without a known
// extension yields an error.
func DetectFormat(filename string) (Format, error) {
	for _, c := range candidates {
		if c.Ext == "" {
			continue
		}
		if strings.HasSuffix(filename, c.Ext) {
			return c.Format, nil
		}
	}
	return FormatBinary, fmt.Errorf("unrecognized archive extension: %s", filename)
}
