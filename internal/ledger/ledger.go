// Package ledger runs sequential validation plans with on-disk completion
// markers. Each step writes a sentinel file when it completes, so a
// re-run skips finished work and a crash is safe to resume from. State is
// archived on reset, never deleted, so prior runs stay inspectable until
// the next one is proven.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Step is one unit of a plan. Optional steps log their failure and let the
// plan continue; required steps abort it.
type Step struct {
	Name     string
	Optional bool
	Run      func(ctx context.Context) error
}

// Ledger tracks step completion under a directory of sentinel files.
type Ledger struct {
	dir    string
	logger *slog.Logger
}

// New creates a ledger rooted at dir.
func New(dir string, logger *slog.Logger) *Ledger {
	return &Ledger{dir: dir, logger: logger}
}

// Dir returns the ledger directory.
func (l *Ledger) Dir() string {
	return l.dir
}

func (l *Ledger) sentinel(idx int, step Step) string {
	return filepath.Join(l.dir, fmt.Sprintf("%02d_%s.ok", idx+1, step.Name))
}

// RunPlan executes steps in order, skipping any whose sentinel already
// exists and writing a sentinel after each success.
func (l *Ledger) RunPlan(ctx context.Context, steps []Step) error {
	if err := os.MkdirAll(l.dir, 0755); err != nil {
		return fmt.Errorf("failed to create ledger directory: %w", err)
	}

	for i, step := range steps {
		sentinel := l.sentinel(i, step)
		if _, err := os.Stat(sentinel); err == nil {
			l.logger.Info("skipping completed step", "step", step.Name)
			continue
		}

		l.logger.Info("running step", "step", step.Name)
		if err := step.Run(ctx); err != nil {
			if step.Optional {
				l.logger.Warn("optional step failed", "step", step.Name, "error", err)
				continue
			}
			return fmt.Errorf("step %s failed: %w", step.Name, err)
		}

		stamp := time.Now().Format(time.RFC3339) + "\n"
		if err := os.WriteFile(sentinel, []byte(stamp), 0644); err != nil {
			return fmt.Errorf("failed to write sentinel for step %s: %w", step.Name, err)
		}
		l.logger.Info("completed step", "step", step.Name)
	}
	return nil
}

// Reset archives the ledger directory to <dir>.<timestamp>.bak instead of
// deleting it. A missing directory is not an error.
func (l *Ledger) Reset() error {
	if _, err := os.Stat(l.dir); os.IsNotExist(err) {
		l.logger.Info("no ledger to archive", "dir", l.dir)
		return nil
	}

	dest := fmt.Sprintf("%s.%s.bak", l.dir, time.Now().Format("20060102-150405"))
	if err := os.Rename(l.dir, dest); err != nil {
		return fmt.Errorf("failed to archive ledger: %w", err)
	}
	l.logger.Info("archived ledger", "dest", dest)
	return nil
}
