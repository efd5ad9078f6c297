package testutil

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"io"
	"os"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// Entry describes one member of a fixture archive.
type Entry struct {
	Name string
	Body string
	Mode os.FileMode // 0 means the format default
	Dir  bool
	Link string // when set, Name is written as a symlink to Link
}

// ELFBody returns bytes that pass ELF content sniffing. The payload is not
// a loadable binary, just a recognizable header plus filler.
func ELFBody() string {
	return "\x7fELF\x02\x01\x01\x00fixture body"
}

// MachOBody returns bytes that pass Mach-O content sniffing.
func MachOBody() string {
	return "\xcf\xfa\xed\xfefixture body"
}

// ShebangBody returns a minimal shell script body.
func ShebangBody() string {
	return "#!/bin/sh\necho ok\n"
}

// WriteTarGz writes a gzip-compressed tar fixture at path.
func WriteTarGz(t *testing.T, path string, entries []Entry) {
	t.Helper()

	f := createFixture(t, path)
	defer closeFixture(t, path, f)

	gzWriter := gzip.NewWriter(f)
	writeTarStream(t, gzWriter, entries)
	if err := gzWriter.Close(); err != nil {
		t.Fatalf("failed to close gzip writer for %s: %v", path, err)
	}
}

// WriteTarXz writes an xz-compressed tar fixture at path.
func WriteTarXz(t *testing.T, path string, entries []Entry) {
	t.Helper()

	f := createFixture(t, path)
	defer closeFixture(t, path, f)

	xzWriter, err := xz.NewWriter(f)
	if err != nil {
		t.Fatalf("failed to create xz writer for %s: %v", path, err)
	}
	writeTarStream(t, xzWriter, entries)
	if err := xzWriter.Close(); err != nil {
		t.Fatalf("failed to close xz writer for %s: %v", path, err)
	}
}

// WriteTarZst writes a zstd-compressed tar fixture at path.
func WriteTarZst(t *testing.T, path string, entries []Entry) {
	t.Helper()

	f := createFixture(t, path)
	defer closeFixture(t, path, f)

	zstWriter, err := zstd.NewWriter(f)
	if err != nil {
		t.Fatalf("failed to create zstd writer for %s: %v", path, err)
	}
	writeTarStream(t, zstWriter, entries)
	if err := zstWriter.Close(); err != nil {
		t.Fatalf("failed to close zstd writer for %s: %v", path, err)
	}
}

// WriteTar writes an uncompressed tar fixture at path.
func WriteTar(t *testing.T, path string, entries []Entry) {
	t.Helper()

	f := createFixture(t, path)
	defer closeFixture(t, path, f)

	writeTarStream(t, f, entries)
}

// WriteZip writes a zip fixture at path.
func WriteZip(t *testing.T, path string, entries []Entry) {
	t.Helper()

	f := createFixture(t, path)
	defer closeFixture(t, path, f)

	zipWriter := zip.NewWriter(f)
	for _, entry := range entries {
		switch {
		case entry.Dir:
			header := &zip.FileHeader{Name: entry.Name + "/"}
			header.SetMode(os.ModeDir | modeOrDefault(entry.Mode, 0o755))
			if _, err := zipWriter.CreateHeader(header); err != nil {
				t.Fatalf("failed to add zip directory %s: %v", entry.Name, err)
			}
		case entry.Link != "":
			header := &zip.FileHeader{Name: entry.Name}
			header.SetMode(os.ModeSymlink | 0o777)
			w, err := zipWriter.CreateHeader(header)
			if err != nil {
				t.Fatalf("failed to add zip symlink %s: %v", entry.Name, err)
			}
			if _, err := w.Write([]byte(entry.Link)); err != nil {
				t.Fatalf("failed to write zip symlink %s: %v", entry.Name, err)
			}
		default:
			header := &zip.FileHeader{Name: entry.Name, Method: zip.Deflate}
			header.SetMode(modeOrDefault(entry.Mode, 0o644))
			w, err := zipWriter.CreateHeader(header)
			if err != nil {
				t.Fatalf("failed to add zip file %s: %v", entry.Name, err)
			}
			if _, err := w.Write([]byte(entry.Body)); err != nil {
				t.Fatalf("failed to write zip file %s: %v", entry.Name, err)
			}
		}
	}
	if err := zipWriter.Close(); err != nil {
		t.Fatalf("failed to close zip writer for %s: %v", path, err)
	}
}

// WriteGz writes a gzip-compressed single file fixture at path.
func WriteGz(t *testing.T, path, body string) {
	t.Helper()

	f := createFixture(t, path)
	defer closeFixture(t, path, f)

	gzWriter := gzip.NewWriter(f)
	if _, err := gzWriter.Write([]byte(body)); err != nil {
		t.Fatalf("failed to write gzip body for %s: %v", path, err)
	}
	if err := gzWriter.Close(); err != nil {
		t.Fatalf("failed to close gzip writer for %s: %v", path, err)
	}
}

// WriteXz writes an xz-compressed single file fixture at path.
func WriteXz(t *testing.T, path, body string) {
	t.Helper()

	f := createFixture(t, path)
	defer closeFixture(t, path, f)

	xzWriter, err := xz.NewWriter(f)
	if err != nil {
		t.Fatalf("failed to create xz writer for %s: %v", path, err)
	}
	if _, err := xzWriter.Write([]byte(body)); err != nil {
		t.Fatalf("failed to write xz body for %s: %v", path, err)
	}
	if err := xzWriter.Close(); err != nil {
		t.Fatalf("failed to close xz writer for %s: %v", path, err)
	}
}

// WriteZst writes a zstd-compressed single file fixture at path.
func WriteZst(t *testing.T, path, body string) {
	t.Helper()

	f := createFixture(t, path)
	defer closeFixture(t, path, f)

	zstWriter, err := zstd.NewWriter(f)
	if err != nil {
		t.Fatalf("failed to create zstd writer for %s: %v", path, err)
	}
	if _, err := zstWriter.Write([]byte(body)); err != nil {
		t.Fatalf("failed to write zstd body for %s: %v", path, err)
	}
	if err := zstWriter.Close(); err != nil {
		t.Fatalf("failed to close zstd writer for %s: %v", path, err)
	}
}

// writeTarStream writes entries as a tar stream onto w.
func writeTarStream(t *testing.T, w io.Writer, entries []Entry) {
	t.Helper()

	tarWriter := tar.NewWriter(w)
	for _, entry := range entries {
		switch {
		case entry.Dir:
			header := &tar.Header{
				Name:     entry.Name + "/",
				Typeflag: tar.TypeDir,
				Mode:     int64(modeOrDefault(entry.Mode, 0o755)),
			}
			if err := tarWriter.WriteHeader(header); err != nil {
				t.Fatalf("failed to add tar directory %s: %v", entry.Name, err)
			}
		case entry.Link != "":
			header := &tar.Header{
				Name:     entry.Name,
				Typeflag: tar.TypeSymlink,
				Linkname: entry.Link,
				Mode:     0o777,
			}
			if err := tarWriter.WriteHeader(header); err != nil {
				t.Fatalf("failed to add tar symlink %s: %v", entry.Name, err)
			}
		default:
			header := &tar.Header{
				Name:     entry.Name,
				Typeflag: tar.TypeReg,
				Mode:     int64(modeOrDefault(entry.Mode, 0o644)),
				Size:     int64(len(entry.Body)),
			}
			if err := tarWriter.WriteHeader(header); err != nil {
				t.Fatalf("failed to add tar file %s: %v", entry.Name, err)
			}
			if _, err := tarWriter.Write([]byte(entry.Body)); err != nil {
				t.Fatalf("failed to write tar file %s: %v", entry.Name, err)
			}
		}
	}
	if err := tarWriter.Close(); err != nil {
		t.Fatalf("failed to close tar writer: %v", err)
	}
}

func createFixture(t *testing.T, path string) *os.File {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create fixture %s: %v", path, err)
	}
	return f
}

func closeFixture(t *testing.T, path string, f *os.File) {
	t.Helper()

	if err := f.Close(); err != nil {
		t.Fatalf("failed to close fixture %s: %v", path, err)
	}
}

func modeOrDefault(mode, fallback os.FileMode) os.FileMode {
	if mode == 0 {
		return fallback
	}
	return mode
}
