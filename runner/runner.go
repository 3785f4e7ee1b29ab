// Package runner orchestrates multi-file analysis runs.
//
// Per-file analysis is a pure, synchronous tree walk with no shared
// state, so files are embarrassingly parallel. The runner fans the
// sorted file list out over a bounded worker group and assembles a
// report keyed and ordered by file path, deterministic regardless of
// completion order.
package runner

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/QwilApp/scryo/ast"
	"github.com/QwilApp/scryo/loader"
)

// FileResult pairs one analyzed file with its extraction result.
type FileResult struct {
	Path   string      `json:"path"`
	Result *ast.Result `json:"result"`
}

// Report is the aggregated output of one run, ordered by file path.
type Report struct {
	Files []FileResult `json:"files"`
}

// Diagnostics reports the total diagnostic count across all files.
func (r *Report) Diagnostics() int {
	n := 0
	for _, f := range r.Files {
		n += len(f.Result.Errors)
	}
	return n
}

// Runner analyzes a list of files with a shared Analyzer.
//
// Thread Safety: Runner is safe for concurrent use; each Run call owns
// its accumulators.
type Runner struct {
	analyzer *ast.Analyzer
	workers  int
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithWorkers bounds run concurrency. Values below 1 fall back to
// GOMAXPROCS.
func WithWorkers(n int) RunnerOption {
	return func(r *Runner) {
		if n >= 1 {
			r.workers = n
		}
	}
}

// NewRunner creates a Runner around an Analyzer. A nil analyzer gets
// default options.
func NewRunner(analyzer *ast.Analyzer, opts ...RunnerOption) *Runner {
	if analyzer == nil {
		analyzer = ast.NewAnalyzer()
	}
	r := &Runner{
		analyzer: analyzer,
		workers:  runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run analyzes every file in the list, which callers are expected to
// have produced via loader.Discover (already sorted).
//
// The first unreadable or unparseable file aborts the whole run: no
// further files are submitted, in-flight files run to completion, and
// the error is returned. Shebang scripts are not failures; they appear
// in the report with an empty result.
func (r *Runner) Run(ctx context.Context, files []string) (*Report, error) {
	start := time.Now()

	results := make([]*ast.Result, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			src, err := loader.Load(path)
			if err != nil {
				return err
			}
			if src.Skipped {
				results[i] = ast.EmptyResult(path)
				return nil
			}

			result, err := r.analyzer.Analyze(ctx, src.Content, path)
			if err != nil {
				return fmt.Errorf("analyze %s: %w", path, err)
			}
			results[i] = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Slot-indexed results keep report order identical to the sorted
	// input regardless of which worker finished first.
	report := &Report{Files: make([]FileResult, len(files))}
	for i, path := range files {
		report.Files[i] = FileResult{Path: path, Result: results[i]}
	}

	slog.Info("run complete",
		slog.Int("files", len(files)),
		slog.Int("diagnostics", report.Diagnostics()),
		slog.Duration("duration", time.Since(start)),
	)

	return report, nil
}
