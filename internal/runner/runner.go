// Package runner orchestrates batch normalization over a work tree of
// per-platform, per-package artifact directories. It owns the work-tree
// lock, the run journal, the worker pool, and the aggregate report.
package runner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/prefab-dev/prefab/internal/config"
	"github.com/prefab-dev/prefab/internal/descriptor"
	"github.com/prefab-dev/prefab/internal/journal"
	"github.com/prefab-dev/prefab/internal/layout"
	"github.com/prefab-dev/prefab/internal/logging"
	"github.com/prefab-dev/prefab/internal/verify"
)

// prefixDirName is the installation prefix directory inside each unit.
const prefixDirName = "prefix"

// PrefixDir returns the unit's installation prefix location.
func (u Unit) PrefixDir() string {
	return filepath.Join(u.Dir, prefixDirName)
}

// Runner executes batch runs.
type Runner struct {
	logger logging.Logger
	clock  Clock
}

// Config holds construction options for a Runner.
type Config struct {
	// Logger receives progress events. Nil discards them.
	Logger logging.Logger
	// Clock supplies time for durations. Nil uses the system clock.
	Clock Clock
}

// NewRunner creates a runner from config.
func NewRunner(config Config) *Runner {
	logger := config.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	clock := config.Clock
	if clock == nil {
		clock = RealClock{}
	}
	return &Runner{logger: logger, clock: clock}
}

// RunOptions describe one batch run.
type RunOptions struct {
	// Config supplies packages, the channel, and verification settings.
	Config *config.Config
	// WorkDir is the work tree root to scan.
	WorkDir string
	// Jobs caps concurrent units. Values below one mean serial.
	Jobs int
	// KeepTemporaryData leaves failed unit prefixes in place for
	// inspection instead of rolling them back.
	KeepTemporaryData bool
}

// RunResult reports a finished batch run.
type RunResult struct {
	// Outcomes holds one entry per unit and per skip, sorted by
	// package, version, and platform.
	Outcomes []Outcome
	// JournalPath is the run journal written under the work tree.
	JournalPath string
	// Duration is the total wall time of the run.
	Duration time.Duration
}

// HasFailures reports whether any unit failed.
func (r *RunResult) HasFailures() bool {
	for _, o := range r.Outcomes {
		if o.Status == StatusFailed {
			return true
		}
	}
	return false
}

// Run scans the work tree and normalizes every unit found, up to
// opts.Jobs at a time. Unit failures do not stop the run; they come back
// as failed outcomes. The returned error covers run-level problems only:
// an unusable work tree, a held lock, or an unwritable journal.
func (r *Runner) Run(ctx context.Context, opts RunOptions) (*RunResult, error) {
	start := r.clock.Now()

	if opts.Config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if opts.WorkDir == "" {
		return nil, fmt.Errorf("work directory is required")
	}
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = 1
	}

	info, err := os.Stat(opts.WorkDir)
	if err != nil {
		return nil, fmt.Errorf("work directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("work directory %s is not a directory", opts.WorkDir)
	}

	lock, err := journal.AcquireLock(ctx, opts.WorkDir)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			r.logger.Warn("release work-tree lock", "error", err)
		}
	}()

	units, skips, err := ScanWorkTree(opts.WorkDir, opts.Config, r.logger)
	if err != nil {
		return nil, err
	}
	r.logger.Info("scanned work tree",
		"dir", opts.WorkDir,
		"units", len(units),
		"skipped", len(skips))

	mode, err := verify.ParseMode(opts.Config.Verify.Mode)
	if err != nil {
		return nil, fmt.Errorf("config verification mode: %w", err)
	}
	verifier := verify.NewVerifier(verify.Config{
		Mode:        mode,
		MinisignKey: opts.Config.Verify.MinisignKey,
		PGPKeyring:  opts.Config.Verify.PGPKeyring,
	})
	normalizer := layout.NewNormalizer(layout.Config{Verifier: verifier, Logger: r.logger})

	records := make([]journal.UnitRecord, 0, len(units))
	for _, unit := range units {
		records = append(records, journal.UnitRecord{
			Platform: string(unit.Platform),
			Name:     unit.Name,
			Version:  unit.Version,
		})
	}
	state := &runState{
		journal: journal.New(records),
		workDir: opts.WorkDir,
		logger:  r.logger,
	}
	if err := state.journal.Save(opts.WorkDir); err != nil {
		return nil, err
	}

	workCh := make(chan Unit, len(units))
	for _, unit := range units {
		workCh <- unit
	}
	close(workCh)

	outcomeCh := make(chan Outcome, len(units))
	var wg sync.WaitGroup
	for i := 0; i < jobs; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for unit := range workCh {
				outcomeCh <- r.runUnit(ctx, unit, normalizer, state, opts)
			}
		}()
	}
	wg.Wait()
	close(outcomeCh)

	outcomes := make([]Outcome, 0, len(units)+len(skips))
	for o := range outcomeCh {
		outcomes = append(outcomes, o)
	}
	outcomes = append(outcomes, skips...)
	sortOutcomes(outcomes)

	result := &RunResult{
		Outcomes:    outcomes,
		JournalPath: state.journal.Path(opts.WorkDir),
		Duration:    r.clock.Now().Sub(start),
	}

	counts := make(map[Status]int)
	for _, o := range outcomes {
		counts[o.Status]++
	}
	r.logger.Info("run finished",
		"succeeded", counts[StatusSucceeded],
		"failed", counts[StatusFailed],
		"skipped", counts[StatusSkipped],
		"duration", result.Duration)

	return result, nil
}

// runUnit takes one unit through journal transitions, normalization, and
// the env file, rolling the prefix back on failure.
func (r *Runner) runUnit(ctx context.Context, unit Unit, normalizer *layout.Normalizer, state *runState, opts RunOptions) Outcome {
	outcome := Outcome{
		Platform: string(unit.Platform),
		Name:     unit.Name,
		Version:  unit.Version,
	}

	if err := ctx.Err(); err != nil {
		// Never started; the journal keeps the unit pending.
		outcome.Status = StatusFailed
		outcome.Message = fmt.Sprintf("run cancelled: %v", err)
		return outcome
	}

	state.update(unit, journal.StateInProgress, nil)
	r.logger.Info("normalizing unit",
		"platform", unit.Platform,
		"package", unit.Name,
		"version", unit.Version)

	if err := r.normalizeUnit(ctx, unit, normalizer, opts.Config.Conda.Channel); err != nil {
		if !opts.KeepTemporaryData {
			if removeErr := os.RemoveAll(unit.PrefixDir()); removeErr != nil {
				r.logger.Warn("roll back unit prefix", "dir", unit.PrefixDir(), "error", removeErr)
			}
		}
		state.update(unit, journal.StateFailed, err)
		r.logger.Error("unit failed",
			"platform", unit.Platform,
			"package", unit.Name,
			"version", unit.Version,
			"error", err)
		outcome.Status = StatusFailed
		outcome.Message = err.Error()
		return outcome
	}

	state.update(unit, journal.StateCompleted, nil)
	outcome.Status = StatusSucceeded
	outcome.Message = "ok"
	return outcome
}

func (r *Runner) normalizeUnit(ctx context.Context, unit Unit, normalizer *layout.Normalizer, channel string) error {
	desc, err := descriptor.New(unit.Name, unit.Version, unit.Platform)
	if err != nil {
		return err
	}

	if _, err := normalizer.Normalize(ctx, layout.NormalizeOptions{
		Descriptor:  desc,
		SourceDir:   unit.Dir,
		Prefix:      unit.PrefixDir(),
		Executables: unit.Executables,
	}); err != nil {
		return err
	}

	return WriteEnvFile(unit, channel)
}

// runState serializes journal updates from concurrent workers. Journal
// persistence failures degrade to warnings so a full disk cannot abort a
// run that is otherwise working.
type runState struct {
	mu      sync.Mutex
	journal *journal.RunJournal
	workDir string
	logger  logging.Logger
}

func (s *runState) update(unit Unit, state journal.State, unitErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.journal.UpdateUnit(string(unit.Platform), unit.Name, unit.Version, state, unitErr)
	if err := s.journal.Save(s.workDir); err != nil {
		s.logger.Warn("persist journal", "error", err)
	}
}

func sortOutcomes(outcomes []Outcome) {
	sort.Slice(outcomes, func(i, j int) bool {
		if outcomes[i].Name != outcomes[j].Name {
			return outcomes[i].Name < outcomes[j].Name
		}
		if outcomes[i].Version != outcomes[j].Version {
			return outcomes[i].Version < outcomes[j].Version
		}
		return outcomes[i].Platform < outcomes[j].Platform
	})
}
