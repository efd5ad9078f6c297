package archive

import (
	"archive/tar"
	"archive/zip"
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// Extractor handles artifact extraction.
type Extractor struct{}

// NewExtractor creates a new extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// ExtractArchive extracts a multi-file archive into a destination
// directory. The format must satisfy IsArchive.
func (e *Extractor) ExtractArchive(archivePath, destDir string, format Format) error {
	if !format.IsArchive() {
		return fmt.Errorf("format %s is not an archive", format)
	}

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("create dest dir: %w", err)
	}

	if format == FormatZip {
		return e.extractZip(archivePath, destDir)
	}

	// Open archive file
	archiveFile, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer archiveFile.Close()

	reader, closeReader, err := decompressor(archiveFile, format)
	if err != nil {
		return err
	}
	defer closeReader()

	return e.extractTar(tar.NewReader(reader), destDir)
}

// DecompressFile decompresses a single-file compressed binary into
// destPath and marks it executable. The format must satisfy
// IsCompressedBinary.
func (e *Extractor) DecompressFile(archivePath, destPath string, format Format) error {
	if !format.IsCompressedBinary() {
		return fmt.Errorf("format %s is not a single-file compressed binary", format)
	}

	archiveFile, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("open compressed file: %w", err)
	}
	defer archiveFile.Close()

	reader, closeReader, err := decompressor(archiveFile, format)
	if err != nil {
		return err
	}
	defer closeReader()

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return fmt.Errorf("create dest dir: %w", err)
	}

	outFile, err := os.OpenFile(destPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0755)
	if err != nil {
		return fmt.Errorf("create file %s: %w", destPath, err)
	}

	if _, err := io.Copy(outFile, reader); err != nil {
		outFile.Close()
		return fmt.Errorf("decompress to %s: %w", destPath, err)
	}

	return outFile.Close()
}

// CopyBinary copies a bare executable artifact to destPath and marks it
// executable.
func (e *Extractor) CopyBinary(srcPath, destPath string) error {
	srcFile, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("open binary: %w", err)
	}
	defer srcFile.Close()

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return fmt.Errorf("create dest dir: %w", err)
	}

	outFile, err := os.OpenFile(destPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0755)
	if err != nil {
		return fmt.Errorf("create file %s: %w", destPath, err)
	}

	if _, err := io.Copy(outFile, srcFile); err != nil {
		outFile.Close()
		return fmt.Errorf("copy binary to %s: %w", destPath, err)
	}

	return outFile.Close()
}

// decompressor wraps a compressed stream with the matching reader.
// The returned func releases reader resources; the caller still closes
// the underlying file.
func decompressor(r io.Reader, format Format) (io.Reader, func(), error) {
	switch format {
	case FormatTarGz, FormatGz:
		gzReader, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("create gzip reader: %w", err)
		}
		return gzReader, func() { gzReader.Close() }, nil
	case FormatTarXz, FormatXz:
		xzReader, err := xz.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("create xz reader: %w", err)
		}
		return xzReader, func() {}, nil
	case FormatTarZst, FormatZst:
		zstReader, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("create zstd reader: %w", err)
		}
		return zstReader, zstReader.Close, nil
	case FormatTarBz2:
		return bzip2.NewReader(r), func() {}, nil
	case FormatTar:
		return r, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("no decompressor for format %s", format)
	}
}

// extractTar extracts every entry of a tar stream into destDir.
func (e *Extractor) extractTar(tarReader *tar.Reader, destDir string) error {
	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			break // End of archive
		}
		if err != nil {
			return fmt.Errorf("read tar header: %w", err)
		}

		target, err := entryTarget(destDir, header.Name)
		if err != nil {
			return err
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return fmt.Errorf("create directory %s: %w", target, err)
			}

		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return fmt.Errorf("create parent dir for %s: %w", target, err)
			}

			perm := fileMode(os.FileMode(header.Mode))
			outFile, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
			if err != nil {
				return fmt.Errorf("create file %s: %w", target, err)
			}

			if _, err := io.Copy(outFile, tarReader); err != nil {
				outFile.Close()
				return fmt.Errorf("write file %s: %w", target, err)
			}

			outFile.Close()

		case tar.TypeSymlink:
			if err := checkLinkTarget(destDir, target, header.Linkname); err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return fmt.Errorf("create parent dir for %s: %w", target, err)
			}
			if err := os.Symlink(header.Linkname, target); err != nil {
				return fmt.Errorf("create symlink %s: %w", target, err)
			}

		case tar.TypeLink:
			// Hard link targets are archive-relative.
			linkSource, err := entryTarget(destDir, header.Linkname)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return fmt.Errorf("create parent dir for %s: %w", target, err)
			}
			if err := os.Link(linkSource, target); err != nil {
				return fmt.Errorf("create hard link %s: %w", target, err)
			}

		default:
			// Skip other types (char devices, block devices, etc.)
			continue
		}
	}

	return nil
}

// extractZip extracts every entry of a zip archive into destDir.
func (e *Extractor) extractZip(archivePath, destDir string) error {
	zipReader, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("open zip archive: %w", err)
	}
	defer zipReader.Close()

	for _, entry := range zipReader.File {
		target, err := entryTarget(destDir, entry.Name)
		if err != nil {
			return err
		}

		mode := entry.Mode()

		switch {
		case mode.IsDir():
			if err := os.MkdirAll(target, 0755); err != nil {
				return fmt.Errorf("create directory %s: %w", target, err)
			}

		case mode&os.ModeSymlink != 0:
			linkname, err := readZipEntry(entry)
			if err != nil {
				return fmt.Errorf("read symlink entry %s: %w", entry.Name, err)
			}
			if err := checkLinkTarget(destDir, target, linkname); err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return fmt.Errorf("create parent dir for %s: %w", target, err)
			}
			if err := os.Symlink(linkname, target); err != nil {
				return fmt.Errorf("create symlink %s: %w", target, err)
			}

		default:
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return fmt.Errorf("create parent dir for %s: %w", target, err)
			}

			src, err := entry.Open()
			if err != nil {
				return fmt.Errorf("open zip entry %s: %w", entry.Name, err)
			}

			outFile, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, fileMode(mode))
			if err != nil {
				src.Close()
				return fmt.Errorf("create file %s: %w", target, err)
			}

			if _, err := io.Copy(outFile, src); err != nil {
				outFile.Close()
				src.Close()
				return fmt.Errorf("write file %s: %w", target, err)
			}

			outFile.Close()
			src.Close()
		}
	}

	return nil
}

// readZipEntry returns the full content of one zip entry as a string.
func readZipEntry(entry *zip.File) (string, error) {
	src, err := entry.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// entryTarget joins an archive entry name onto destDir and rejects paths
// escaping it.
func entryTarget(destDir, name string) (string, error) {
	target := filepath.Join(destDir, name)

	// Security check: prevent path traversal
	if target != filepath.Clean(destDir) &&
		!strings.HasPrefix(target, filepath.Clean(destDir)+string(os.PathSeparator)) {
		return "", fmt.Errorf("illegal file path: %s", name)
	}
	return target, nil
}

// checkLinkTarget rejects symlinks whose target resolves outside destDir.
// Absolute targets are always rejected.
func checkLinkTarget(destDir, linkPath, linkname string) error {
	if filepath.IsAbs(linkname) {
		return fmt.Errorf("illegal symlink target: %s", linkname)
	}

	resolved := filepath.Join(filepath.Dir(linkPath), linkname)
	if resolved != filepath.Clean(destDir) &&
		!strings.HasPrefix(resolved, filepath.Clean(destDir)+string(os.PathSeparator)) {
		return fmt.Errorf("illegal symlink target: %s", linkname)
	}
	return nil
}

// fileMode sanitizes an archive-recorded mode for newly created files.
// Archives with no mode information yield 0644.
func fileMode(recorded os.FileMode) os.FileMode {
	perm := recorded.Perm()
	if perm == 0 {
		return 0644
	}
	return perm
}

// SetExecutable sets executable permissions on a file.
func SetExecutable(path string) error {
	// Set permissions to 0755 (rwxr-xr-x)
	if err := os.Chmod(path, 0755); err != nil {
		return fmt.Errorf("set executable: %w", err)
	}
	return nil
}
