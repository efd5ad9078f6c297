// Package journal records the progress of a batch run on disk and holds
// the work-tree lock that keeps concurrent runs apart. The journal is
// diagnostic: it tells a later invocation (or a human) what a crashed or
// interrupted run had finished.
package journal

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// State represents the progress of a single unit within a run.
type State string

const (
	StatePending    State = "pending"
	StateInProgress State = "in_progress"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
)

// metaDirName is the journal and lock directory inside the work tree.
const metaDirName = ".prefab"

// MetaDir returns the journal directory for a work tree.
func MetaDir(workDir string) string {
	return filepath.Join(workDir, metaDirName)
}

// RunJournal captures one batch run and its units.
type RunJournal struct {
	Version   int          `json:"version"` // Schema version for future evolution
	ID        string       `json:"id"`      // UUID for unique identification
	StartedAt time.Time    `json:"started_at"`
	Units     []UnitRecord `json:"units"`
}

// UnitRecord tracks one unit through the run.
type UnitRecord struct {
	Platform  string `json:"platform"`
	Name      string `json:"name"`
	Version   string `json:"version"`
	State     State  `json:"state"`
	LastError string `json:"last_error,omitempty"`
}

// New creates a journal covering the given units, all pending.
func New(units []UnitRecord) *RunJournal {
	records := make([]UnitRecord, len(units))
	copy(records, units)
	for i := range records {
		records[i].State = StatePending
		records[i].LastError = ""
	}

	return &RunJournal{
		Version:   1,
		ID:        uuid.New().String(),
		StartedAt: time.Now().UTC(),
		Units:     records,
	}
}

// Path returns the journal's file location within a work tree.
func (j *RunJournal) Path(workDir string) string {
	return filepath.Join(MetaDir(workDir), fmt.Sprintf("run-%s.json", j.ID))
}

// Save writes the journal to disk atomically.
// Uses write-then-rename pattern for atomicity.
func (j *RunJournal) Save(workDir string) error {
	dir := MetaDir(workDir)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create journal directory: %w", err)
	}

	finalPath := j.Path(workDir)
	tmpPath := finalPath + ".tmp"

	data, err := json.MarshalIndent(j, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal journal: %w", err)
	}

	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("write temporary journal file: %w", err)
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename journal file: %w", err)
	}

	// Sync directory for durability
	df, err := os.Open(dir)
	if err == nil {
		if syncErr := df.Sync(); syncErr != nil {
			df.Close()
			return fmt.Errorf("sync journal directory: %w", syncErr)
		}
		df.Close()
	}

	return nil
}

// Load reads a journal from disk.
func Load(path string) (*RunJournal, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read journal file: %w", err)
	}

	var j RunJournal
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("unmarshal journal: %w", err)
	}
	return &j, nil
}

// UpdateUnit sets the state of the unit identified by platform, name,
// and version.
func (j *RunJournal) UpdateUnit(platform, name, version string, state State, err error) {
	for i := range j.Units {
		unit := &j.Units[i]
		if unit.Platform != platform || unit.Name != name || unit.Version != version {
			continue
		}
		unit.State = state
		if err != nil {
			unit.LastError = err.Error()
		} else {
			unit.LastError = ""
		}
		break
	}
}

// HasUnfinished reports whether any unit is still pending or failed.
func (j *RunJournal) HasUnfinished() bool {
	for _, unit := range j.Units {
		if unit.State == StatePending || unit.State == StateInProgress || unit.State == StateFailed {
			return true
		}
	}
	return false
}

// AllCompleted reports whether every unit finished successfully.
func (j *RunJournal) AllCompleted() bool {
	for _, unit := range j.Units {
		if unit.State != StateCompleted {
			return false
		}
	}
	return len(j.Units) > 0
}
