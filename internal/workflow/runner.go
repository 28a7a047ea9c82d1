package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"shisho/internal/logging"
	"shisho/internal/media"
	"shisho/internal/renamer"
	"shisho/internal/services"
)

// Resolver identifies a local file. The resolver package's implementation
// satisfies it.
type Resolver interface {
	Resolve(ctx context.Context, path string) (media.Resolved, error)
}

// Status is the final disposition of one file in a run.
type Status string

const (
	StatusRenamed      Status = "renamed"
	StatusPlanned      Status = "planned"
	StatusNoChange     Status = "no change"
	StatusUnidentified Status = "unidentified"
	StatusCollision    Status = "collision"
	StatusFailed       Status = "failed"
)

// Outcome records what happened to a single file.
type Outcome struct {
	Path   string
	Plan   renamer.Plan
	Status Status
	Err    error
}

// Summary aggregates a run's outcomes for reporting and exit status.
type Summary struct {
	Renamed      int
	Planned      int
	Unchanged    int
	Unidentified int
	Collisions   int
	Failed       int
}

// Clean reports whether every file was handled without error.
func (s Summary) Clean() bool {
	return s.Unidentified == 0 && s.Collisions == 0 && s.Failed == 0
}

// Result is the full record of one run.
type Result struct {
	RunID    string
	DryRun   bool
	Outcomes []Outcome
	Summary  Summary
}

// Progress is called as files move through the pipeline so the CLI can show
// live activity. Stage is one of "resolving", "renaming".
type Progress func(stage, path string)

// Runner executes the rename workflow over a batch of files. Files are
// processed strictly in order; the remote service's rate limit makes
// parallel resolution pointless.
type Runner struct {
	resolver Resolver
	logger   *slog.Logger
	dryRun   bool
	progress Progress
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger attaches a logger for per-file progress.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithDryRun plans and reports without touching the filesystem.
func WithDryRun(dryRun bool) Option {
	return func(r *Runner) {
		r.dryRun = dryRun
	}
}

// WithProgress registers a live progress callback.
func WithProgress(progress Progress) Option {
	return func(r *Runner) {
		r.progress = progress
	}
}

// NewRunner constructs a runner over the given resolver.
func NewRunner(resolver Resolver, opts ...Option) *Runner {
	r := &Runner{
		resolver: resolver,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run processes the file or directory at root. Per-file failures are
// recorded in the result and never stop the batch; only context
// cancellation and fatal errors (a dead session that re-login could not
// revive) abort the run.
func (r *Runner) Run(ctx context.Context, root string) (*Result, error) {
	result := &Result{
		RunID:  uuid.NewString(),
		DryRun: r.dryRun,
	}
	logger := logging.WithComponent(r.logger, "workflow").With(
		logging.String(logging.FieldRunID, result.RunID))

	paths, err := Gather(root)
	if err != nil {
		return nil, err
	}
	logger.Info("starting run",
		logging.Int("files", len(paths)),
		logging.Bool("dry_run", r.dryRun))

	// Resolve everything first so collision checks see the whole batch.
	var plans []renamer.Plan
	planned := make([]int, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		r.report("resolving", path)
		resolved, err := r.resolver.Resolve(ctx, path)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if services.IsFatal(err) {
				return nil, err
			}
			outcome := Outcome{Path: path, Err: err, Status: StatusFailed}
			if errors.Is(err, services.ErrUnidentified) {
				outcome.Status = StatusUnidentified
			}
			logger.Warn("file not resolved",
				logging.String(logging.FieldFile, path),
				logging.Error(err))
			result.Outcomes = append(result.Outcomes, outcome)
			continue
		}

		plan := renamer.Build(path, resolved)
		result.Outcomes = append(result.Outcomes, Outcome{Path: path, Plan: plan})
		plans = append(plans, plan)
		planned = append(planned, len(result.Outcomes)-1)
	}

	collisions := renamer.Check(plans)
	for j, planIdx := range planned {
		// Interrupts are honored between files; a single rename is never
		// cut short once started.
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		outcome := &result.Outcomes[planIdx]
		if cerr := collisions[j]; cerr != nil {
			outcome.Status = StatusCollision
			outcome.Err = cerr
			logger.Warn("rename collision",
				logging.String(logging.FieldFile, outcome.Path),
				logging.Error(cerr))
			continue
		}
		if outcome.Plan.NoChange {
			outcome.Status = StatusNoChange
			continue
		}
		if r.dryRun {
			outcome.Status = StatusPlanned
			continue
		}
		r.report("renaming", outcome.Path)
		if err := renamer.Apply(outcome.Plan); err != nil {
			outcome.Status = StatusFailed
			outcome.Err = err
			logger.Error("rename failed",
				logging.String(logging.FieldFile, outcome.Path),
				logging.Error(err))
			continue
		}
		outcome.Status = StatusRenamed
		logger.Info("renamed",
			logging.String(logging.FieldFile, outcome.Path),
			logging.String("target", outcome.Plan.TargetName))
	}

	result.Summary = summarize(result.Outcomes)
	logger.Info("run complete",
		logging.Int("renamed", result.Summary.Renamed),
		logging.Int("failed", result.Summary.Failed+result.Summary.Unidentified+result.Summary.Collisions))
	return result, nil
}

func (r *Runner) report(stage, path string) {
	if r.progress != nil {
		r.progress(stage, path)
	}
}

func summarize(outcomes []Outcome) Summary {
	var s Summary
	for _, o := range outcomes {
		switch o.Status {
		case StatusRenamed:
			s.Renamed++
		case StatusPlanned:
			s.Planned++
		case StatusNoChange:
			s.Unchanged++
		case StatusUnidentified:
			s.Unidentified++
		case StatusCollision:
			s.Collisions++
		case StatusFailed:
			s.Failed++
		}
	}
	return s
}

// Gather expands root into the ordered list of files to process. A file
// argument yields itself; a directory yields its immediate regular files,
// sorted by name. Symlinks, dotfiles, and subdirectories are skipped.
func Gather(root string) ([]string, error) {
	info, err := os.Lstat(root)
	if err != nil {
		return nil, services.Wrap(services.ErrFilesystem, "workflow", "gather", "stat input path", err)
	}

	if !info.IsDir() {
		if !info.Mode().IsRegular() {
			return nil, services.Wrap(services.ErrFilesystem, "workflow", "gather",
				fmt.Sprintf("%s is not a regular file", root), nil)
		}
		return []string{root}, nil
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, services.Wrap(services.ErrFilesystem, "workflow", "gather", "read directory", err)
	}
	var paths []string
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if !entry.Type().IsRegular() {
			continue
		}
		paths = append(paths, filepath.Join(root, entry.Name()))
	}
	return paths, nil
}
