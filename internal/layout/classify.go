package layout

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/prefab-dev/prefab/internal/archive"
)

// Classify sorts the top-level entries of prefix into bin/, misc/, and the
// reserved structural directories. The listing is taken once and bin/ and
// misc/ are created before any move, so freshly placed entries are never
// re-classified.
//
// Executables land in bin/ with the executable bit set. Reserved
// directories stay where they are. Everything else, including non-reserved
// directories and symlinks whose target is missing or a directory, moves
// to misc/.
func Classify(prefix string, detector Detector) error {
	entries, err := os.ReadDir(prefix)
	if err != nil {
		return fmt.Errorf("read prefix: %w", err)
	}

	binDir := filepath.Join(prefix, BinDir)
	miscDir := filepath.Join(prefix, MiscDir)
	if err := os.MkdirAll(binDir, 0755); err != nil {
		return fmt.Errorf("create bin dir: %w", err)
	}
	if err := os.MkdirAll(miscDir, 0755); err != nil {
		return fmt.Errorf("create misc dir: %w", err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if name == BinDir || name == MiscDir {
			continue
		}
		path := filepath.Join(prefix, name)

		if entry.IsDir() {
			if IsReservedDir(name) {
				continue
			}
			if err := moveEntry(path, filepath.Join(miscDir, name)); err != nil {
				return err
			}
			continue
		}

		// Files and symlinks. A symlink is judged by what it points at
		// but relocated as the link itself.
		executable, err := entryExecutable(path, entry.Type(), detector)
		if err != nil {
			return err
		}
		if !executable {
			if err := moveEntry(path, filepath.Join(miscDir, name)); err != nil {
				return err
			}
			continue
		}

		dest := filepath.Join(binDir, name)
		if err := moveEntry(path, dest); err != nil {
			return err
		}
		if info, err := os.Lstat(dest); err == nil && info.Mode().IsRegular() {
			if err := archive.SetExecutable(dest); err != nil {
				return fmt.Errorf("mark %s executable: %w", name, err)
			}
		}
	}
	return nil
}

// entryExecutable resolves the entry's effective type and asks the
// detector about regular files. Broken symlinks and symlinks to
// directories are never executables.
func entryExecutable(path string, mode fs.FileMode, detector Detector) (bool, error) {
	if mode&fs.ModeSymlink != 0 {
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				return false, nil
			}
			return false, fmt.Errorf("resolve symlink %s: %w", path, err)
		}
		if !info.Mode().IsRegular() {
			return false, nil
		}
	}
	return detector.IsExecutable(path)
}

// moveEntry renames src into place, refusing to clobber an existing entry.
func moveEntry(src, dest string) error {
	if _, err := os.Lstat(dest); err == nil {
		return fmt.Errorf("classify %s: %s already exists", filepath.Base(src), dest)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("check %s: %w", dest, err)
	}
	if err := os.Rename(src, dest); err != nil {
		return fmt.Errorf("move %s: %w", filepath.Base(src), err)
	}
	return nil
}
