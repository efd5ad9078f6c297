package layout

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/prefab-dev/prefab/internal/platform"
)

// Detector decides whether a payload file is an executable program.
type Detector interface {
	// IsExecutable reports whether the file at path should be installed
	// under bin/.
	IsExecutable(path string) (bool, error)
}

// NewDetector returns the detection strategy for a target platform:
// header sniffing for POSIX targets, extension matching for Windows.
// Permission bits are ignored on purpose; archives routinely lose them.
func NewDetector(target platform.Platform) Detector {
	if target.IsWindows() {
		return &suffixDetector{}
	}
	return &magicDetector{}
}

// execMagics are the file signatures accepted as native executables:
// ELF, the four Mach-O byte orders, and the Mach-O universal header.
var execMagics = [][]byte{
	{0x7f, 'E', 'L', 'F'},
	{0xfe, 0xed, 0xfa, 0xce},
	{0xfe, 0xed, 0xfa, 0xcf},
	{0xce, 0xfa, 0xed, 0xfe},
	{0xcf, 0xfa, 0xed, 0xfe},
	{0xca, 0xfe, 0xba, 0xbe},
}

// magicDetector classifies by file content: native binary signatures and
// shebang scripts count, everything else does not.
type magicDetector struct{}

func (d *magicDetector) IsExecutable(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	header := make([]byte, 4)
	n, err := io.ReadFull(f, header)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return false, fmt.Errorf("read header of %s: %w", path, err)
	}
	return isExecHeader(header[:n]), nil
}

func isExecHeader(header []byte) bool {
	if len(header) >= 2 && header[0] == '#' && header[1] == '!' {
		return true
	}
	for _, magic := range execMagics {
		if bytes.HasPrefix(header, magic) {
			return true
		}
	}
	return false
}

// windowsExecSuffixes are the extensions treated as executable on win-*
// targets, where content sniffing and permission bits carry no signal.
var windowsExecSuffixes = []string{".exe", ".bat", ".cmd", ".com", ".ps1"}

// suffixDetector classifies by file extension, case-insensitively.
type suffixDetector struct{}

func (d *suffixDetector) IsExecutable(path string) (bool, error) {
	name := strings.ToLower(filepath.Base(path))
	for _, suffix := range windowsExecSuffixes {
		if strings.HasSuffix(name, suffix) {
			return true, nil
		}
	}
	return false, nil
}
