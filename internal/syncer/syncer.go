// Package syncer pushes a parsed env file into a secret/variable store:
// one remote mutation per syntactically valid entry, warnings for
// unreadable file-sourced secrets, and nothing at all for entries
// outside the naming convention.
package syncer

import (
	"context"
	"fmt"
	"os"

	"github.com/airlift-sh/airlift/internal/envfile"
	dserrors "github.com/airlift-sh/airlift/internal/errors"
	"github.com/airlift-sh/airlift/internal/logging"
	"github.com/airlift-sh/airlift/internal/secretstores"
	"github.com/airlift-sh/airlift/internal/secure"
)

// Outcome is the per-entry result.
type Outcome int

const (
	// OutcomeSet means exactly one remote mutation succeeded.
	OutcomeSet Outcome = iota
	// OutcomeSkipped means no mutation was attempted (unreadable file
	// secret; ignored entries never reach the report).
	OutcomeSkipped
	// OutcomeFailed means the remote call returned an error.
	OutcomeFailed
)

// Result records what happened to one entry.
type Result struct {
	Key     string
	Name    string
	Kind    envfile.Kind
	Outcome Outcome
	Err     error
}

// Report is the per-run summary handed back to the command layer.
type Report struct {
	Results []Result
}

// Counts returns the number of set, skipped and failed entries.
func (r Report) Counts() (set, skipped, failed int) {
	for _, res := range r.Results {
		switch res.Outcome {
		case OutcomeSet:
			set++
		case OutcomeSkipped:
			skipped++
		case OutcomeFailed:
			failed++
		}
	}
	return
}

// Syncer drives one sync run against a single store.
type Syncer struct {
	store  secretstores.Store
	logger *logging.Logger

	// strict aborts on the first remote failure instead of collecting
	// failures and reporting them at the end. CI runs want strict.
	strict bool
}

// New creates a syncer.
func New(store secretstores.Store, logger *logging.Logger, strict bool) *Syncer {
	return &Syncer{store: store, logger: logger, strict: strict}
}

// Sync processes the env file at path. Each classified entry produces
// exactly one store call; ignored and malformed lines produce none.
// Re-running is idempotent because store sets are overwrites.
func (s *Syncer) Sync(ctx context.Context, path string) (Report, error) {
	entries, err := envfile.ParseFile(path)
	if err != nil {
		return Report{}, dserrors.UserError{
			Message:    fmt.Sprintf("Cannot read env file %s", path),
			Suggestion: "Check the --file path and its permissions",
			Err:        err,
		}
	}

	var report Report
	for _, entry := range entries {
		kind := entry.Kind()
		if kind == envfile.KindIgnored {
			s.logger.Debug("ignoring %s (outside naming convention)", entry.Key)
			continue
		}

		result := s.process(ctx, entry, kind)
		report.Results = append(report.Results, result)

		if result.Outcome == OutcomeFailed && s.strict {
			return report, result.Err
		}
	}

	_, _, failed := report.Counts()
	if failed > 0 {
		return report, dserrors.UserError{
			Message:    fmt.Sprintf("%d entries failed to sync to store %s", failed, s.store.Name()),
			Suggestion: "Inspect the errors above; re-running retries every entry (sets are overwrites)",
		}
	}
	return report, nil
}

func (s *Syncer) process(ctx context.Context, entry envfile.Entry, kind envfile.Kind) Result {
	name := entry.TargetName()
	result := Result{Key: entry.Key, Name: name, Kind: kind}

	switch kind {
	case envfile.KindFileSecret:
		data, err := os.ReadFile(entry.Value)
		if err != nil {
			// Recoverable-skip: the rest of the file still syncs.
			s.logger.Warn("skipping %s: cannot read file %s: %v", entry.Key, entry.Value, err)
			result.Outcome = OutcomeSkipped
			return result
		}

		buf := secure.NewBuffer(data)
		defer buf.Destroy()
		for i := range data {
			data[i] = 0
		}

		locked, err := buf.Open()
		if err != nil {
			result.Outcome = OutcomeFailed
			result.Err = fmt.Errorf("failed to open secure buffer for %s: %w", entry.Key, err)
			s.logger.Error("%v", result.Err)
			return result
		}
		defer locked.Destroy()

		if err := s.store.SetSecret(ctx, name, locked.Bytes()); err != nil {
			return s.failed(result, err)
		}

	case envfile.KindInlineSecret:
		if err := s.store.SetSecret(ctx, name, []byte(entry.Value)); err != nil {
			return s.failed(result, err)
		}

	case envfile.KindVariable:
		if err := s.store.SetVariable(ctx, name, entry.Value); err != nil {
			return s.failed(result, err)
		}
	}

	result.Outcome = OutcomeSet
	s.logger.Info("set %s %s", kind, name)
	return result
}

func (s *Syncer) failed(result Result, err error) Result {
	result.Outcome = OutcomeFailed
	result.Err = err
	s.logger.Error("failed to set %s %s: %v", result.Kind, result.Name, err)
	return result
}
