package journal

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testUnits() []UnitRecord {
	return []UnitRecord{
		{Platform: "linux-64", Name: "ripgrep", Version: "14.1.0"},
		{Platform: "osx-arm64", Name: "ripgrep", Version: "14.1.0"},
		{Platform: "linux-64", Name: "fd", Version: "10.2.0"},
	}
}

func TestNew(t *testing.T) {
	j := New(testUnits())

	if j.Version != 1 {
		t.Errorf("Version = %d, want 1", j.Version)
	}
	if j.ID == "" {
		t.Error("ID is empty")
	}
	if j.StartedAt.IsZero() {
		t.Error("StartedAt is zero")
	}
	if len(j.Units) != 3 {
		t.Fatalf("len(Units) = %d, want 3", len(j.Units))
	}
	for _, unit := range j.Units {
		if unit.State != StatePending {
			t.Errorf("unit %s/%s state = %q, want pending", unit.Platform, unit.Name, unit.State)
		}
	}
}

func TestNewDistinctIDs(t *testing.T) {
	a := New(nil)
	b := New(nil)
	if a.ID == b.ID {
		t.Errorf("two journals share ID %s", a.ID)
	}
}

func TestSaveAndLoad(t *testing.T) {
	workDir := t.TempDir()

	j := New(testUnits())
	j.UpdateUnit("linux-64", "ripgrep", "14.1.0", StateCompleted, nil)
	j.UpdateUnit("osx-arm64", "ripgrep", "14.1.0", StateFailed, errors.New("no artifact"))

	if err := j.Save(workDir); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(j.Path(workDir))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if loaded.ID != j.ID {
		t.Errorf("ID = %s, want %s", loaded.ID, j.ID)
	}
	if len(loaded.Units) != len(j.Units) {
		t.Fatalf("len(Units) = %d, want %d", len(loaded.Units), len(j.Units))
	}
	if loaded.Units[0].State != StateCompleted {
		t.Errorf("unit 0 state = %q, want completed", loaded.Units[0].State)
	}
	if loaded.Units[1].State != StateFailed {
		t.Errorf("unit 1 state = %q, want failed", loaded.Units[1].State)
	}
	if loaded.Units[1].LastError != "no artifact" {
		t.Errorf("unit 1 last error = %q, want %q", loaded.Units[1].LastError, "no artifact")
	}
	if loaded.Units[2].State != StatePending {
		t.Errorf("unit 2 state = %q, want pending", loaded.Units[2].State)
	}
}

func TestSaveLeavesNoTemporaryFile(t *testing.T) {
	workDir := t.TempDir()

	j := New(testUnits())
	if err := j.Save(workDir); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	entries, err := os.ReadDir(MetaDir(workDir))
	if err != nil {
		t.Fatalf("read journal dir: %v", err)
	}
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".tmp") {
			t.Errorf("temporary file left behind: %s", entry.Name())
		}
	}
}

func TestSaveOverwrites(t *testing.T) {
	workDir := t.TempDir()

	j := New(testUnits())
	if err := j.Save(workDir); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	j.UpdateUnit("linux-64", "fd", "10.2.0", StateInProgress, nil)
	if err := j.Save(workDir); err != nil {
		t.Fatalf("second Save() error = %v", err)
	}

	loaded, err := Load(j.Path(workDir))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Units[2].State != StateInProgress {
		t.Errorf("unit 2 state = %q, want in_progress", loaded.Units[2].State)
	}
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "run-absent.json"))
		if err == nil {
			t.Fatal("Load() succeeded on missing file")
		}
	})

	t.Run("corrupt file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "run-broken.json")
		if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
			t.Fatalf("write corrupt journal: %v", err)
		}
		_, err := Load(path)
		if err == nil || !strings.Contains(err.Error(), "unmarshal journal") {
			t.Errorf("error = %v, want unmarshal failure", err)
		}
	})
}

func TestUpdateUnit(t *testing.T) {
	t.Run("clears previous error on success", func(t *testing.T) {
		j := New(testUnits())
		j.UpdateUnit("linux-64", "ripgrep", "14.1.0", StateFailed, errors.New("boom"))
		j.UpdateUnit("linux-64", "ripgrep", "14.1.0", StateCompleted, nil)

		if j.Units[0].State != StateCompleted {
			t.Errorf("state = %q, want completed", j.Units[0].State)
		}
		if j.Units[0].LastError != "" {
			t.Errorf("last error = %q, want empty", j.Units[0].LastError)
		}
	})

	t.Run("unknown unit is a no-op", func(t *testing.T) {
		j := New(testUnits())
		j.UpdateUnit("win-64", "ripgrep", "14.1.0", StateCompleted, nil)

		for _, unit := range j.Units {
			if unit.State != StatePending {
				t.Errorf("unit %s/%s state changed to %q", unit.Platform, unit.Name, unit.State)
			}
		}
	})

	t.Run("matches on all three fields", func(t *testing.T) {
		j := New(testUnits())
		j.UpdateUnit("linux-64", "ripgrep", "13.0.0", StateCompleted, nil)

		if j.Units[0].State != StatePending {
			t.Errorf("wrong version matched: state = %q", j.Units[0].State)
		}
	})
}

func TestProgressQueries(t *testing.T) {
	t.Run("fresh journal is unfinished", func(t *testing.T) {
		j := New(testUnits())
		if !j.HasUnfinished() {
			t.Error("HasUnfinished() = false for fresh journal")
		}
		if j.AllCompleted() {
			t.Error("AllCompleted() = true for fresh journal")
		}
	})

	t.Run("all completed", func(t *testing.T) {
		j := New(testUnits())
		for _, unit := range testUnits() {
			j.UpdateUnit(unit.Platform, unit.Name, unit.Version, StateCompleted, nil)
		}
		if j.HasUnfinished() {
			t.Error("HasUnfinished() = true after completion")
		}
		if !j.AllCompleted() {
			t.Error("AllCompleted() = false after completion")
		}
	})

	t.Run("failure counts as unfinished", func(t *testing.T) {
		j := New(testUnits())
		for _, unit := range testUnits() {
			j.UpdateUnit(unit.Platform, unit.Name, unit.Version, StateCompleted, nil)
		}
		j.UpdateUnit("linux-64", "fd", "10.2.0", StateFailed, errors.New("checksum mismatch"))

		if !j.HasUnfinished() {
			t.Error("HasUnfinished() = false with a failed unit")
		}
		if j.AllCompleted() {
			t.Error("AllCompleted() = true with a failed unit")
		}
	})

	t.Run("empty journal never completes", func(t *testing.T) {
		j := New(nil)
		if j.AllCompleted() {
			t.Error("AllCompleted() = true for empty journal")
		}
	})
}
