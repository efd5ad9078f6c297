package archive

import (
	"strings"
	"testing"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     Format
		wantErr  bool
	}{
		{"zip", "tool-1.0-linux-64.zip", FormatZip, false},
		{"tar.gz", "tool-1.0-linux-64.tar.gz", FormatTarGz, false},
		{"tgz alias", "tool-1.0-linux-64.tgz", FormatTarGz, false},
		{"tar.xz", "tool-1.0-linux-64.tar.xz", FormatTarXz, false},
		{"txz alias", "tool-1.0-linux-64.txz", FormatTarXz, false},
		{"tar.zst", "tool-1.0-linux-64.tar.zst", FormatTarZst, false},
		{"tar.bz2", "tool-1.0-linux-64.tar.bz2", FormatTarBz2, false},
		{"plain tar", "tool-1.0-linux-64.tar", FormatTar, false},
		{"gz single file", "tool-1.0-linux-64.gz", FormatGz, false},
		{"xz single file", "tool-1.0-linux-64.xz", FormatXz, false},
		{"zst single file", "tool-1.0-linux-64.zst", FormatZst, false},
		{"no extension", "tool-1.0-linux-64", FormatBinary, true},
		{"unknown extension", "tool-1.0-linux-64.rar", FormatBinary, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectFormat(tt.filename)
			if (err != nil) != tt.wantErr {
				t.Errorf("DetectFormat() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("DetectFormat() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFormat_String(t *testing.T) {
	tests := []struct {
		format Format
		want   string
	}{
		{FormatBinary, "binary"},
		{FormatZip, "zip"},
		{FormatTarGz, "tar.gz"},
		{FormatTarXz, "tar.xz"},
		{FormatTarZst, "tar.zst"},
		{FormatTarBz2, "tar.bz2"},
		{FormatTar, "tar"},
		{FormatGz, "gz"},
		{FormatXz, "xz"},
		{FormatZst, "zst"},
		{Format(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.format.String(); got != tt.want {
			t.Errorf("Format(%d).String() = %q, want %q", tt.format, got, tt.want)
		}
	}
}

func TestFormat_Kinds(t *testing.T) {
	archives := []Format{FormatZip, FormatTarGz, FormatTarXz, FormatTarZst, FormatTarBz2, FormatTar}
	for _, f := range archives {
		if !f.IsArchive() {
			t.Errorf("%v.IsArchive() = false, want true", f)
		}
		if f.IsCompressedBinary() {
			t.Errorf("%v.IsCompressedBinary() = true, want false", f)
		}
	}

	singles := []Format{FormatGz, FormatXz, FormatZst}
	for _, f := range singles {
		if f.IsArchive() {
			t.Errorf("%v.IsArchive() = true, want false", f)
		}
		if !f.IsCompressedBinary() {
			t.Errorf("%v.IsCompressedBinary() = false, want true", f)
		}
	}

	if FormatBinary.IsArchive() || FormatBinary.IsCompressedBinary() {
		t.Error("FormatBinary should be neither archive nor compressed binary")
	}
}

func TestCandidates(t *testing.T) {
	got := Candidates()

	if got[0].Ext != ".zip" {
		t.Errorf("first candidate ext = %q, want .zip", got[0].Ext)
	}
	last := got[len(got)-1]
	if last.Ext != "" || last.Format != FormatBinary {
		t.Errorf("last candidate = %+v, want bare binary", last)
	}

	// .tar.gz must come before .gz so the longer suffix wins.
	tarGzIdx, gzIdx := -1, -1
	for i, c := range got {
		switch c.Ext {
		case ".tar.gz":
			tarGzIdx = i
		case ".gz":
			gzIdx = i
		}
	}
	if tarGzIdx == -1 || gzIdx == -1 || tarGzIdx > gzIdx {
		t.Errorf("candidate order wrong: .tar.gz at %d, .gz at %d", tarGzIdx, gzIdx)
	}

	// Mutating the returned slice must not affect the probe order.
	got[0].Ext = ".corrupted"
	if Candidates()[0].Ext != ".zip" {
		t.Error("Candidates() returned shared backing storage")
	}

	for _, c := range Candidates() {
		if c.Ext == "" {
			continue
		}
		if !strings.HasPrefix(c.Ext, ".") {
			t.Errorf("candidate ext %q missing leading dot", c.Ext)
		}
	}
}
