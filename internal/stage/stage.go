// Package stage runs a per-file operation over a set of files with a bounded
// worker pool.
//
// Workers share only two counters, files started and files failed. A failing
// file is counted and optionally recorded in a failure log; it never stops
// the pool.
package stage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/meigma/npk/internal/npktype"
)

// Func processes one file.
type Func func(ctx context.Context, path string) error

// Result summarizes a stage run.
type Result struct {
	// Total is the number of input files.
	Total int

	// Done is the number of files processed, failed ones included.
	Done int

	// Failed is the number of files Func rejected.
	Failed int

	// Failures lists rejected files relative to the root, in completion order.
	Failures []string
}

// Runner holds stage configuration.
type Runner struct {
	workers    int
	root       string
	failureLog string
	stage      npktype.ProgressStage
	logger     *slog.Logger
	progress   npktype.ProgressFunc
}

// Option configures a Runner.
type Option func(*Runner)

// WithWorkers sets the pool size. Values < 1 use runtime.NumCPU().
func WithWorkers(n int) Option {
	return func(r *Runner) {
		r.workers = n
	}
}

// WithRoot sets the directory that failure paths and progress paths are
// reported relative to.
func WithRoot(root string) Option {
	return func(r *Runner) {
		r.root = root
	}
}

// WithFailureLog appends each rejected file, relative to the root, to path.
func WithFailureLog(path string) Option {
	return func(r *Runner) {
		r.failureLog = path
	}
}

// WithStage sets the stage reported in progress events.
func WithStage(stage npktype.ProgressStage) Option {
	return func(r *Runner) {
		r.stage = stage
	}
}

// WithLogger sets the logger for rejected files.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithProgress sets a callback invoked as each file starts.
func WithProgress(fn npktype.ProgressFunc) Option {
	return func(r *Runner) {
		r.progress = fn
	}
}

// New returns a Runner.
func New(opts ...Option) *Runner {
	r := &Runner{
		stage:  npktype.StageDecrypting,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.workers < 1 {
		r.workers = runtime.NumCPU()
	}
	return r
}

// Run applies fn to every file. It returns an error only when ctx is done or
// the failure log cannot be written.
func (r *Runner) Run(ctx context.Context, files []string, fn Func) (Result, error) {
	res := Result{Total: len(files)}
	if len(files) == 0 {
		return res, nil
	}

	var (
		done   atomic.Int64
		failed atomic.Int64
		mu     sync.Mutex
		logErr error
	)

	record := func(rel string) {
		mu.Lock()
		defer mu.Unlock()
		res.Failures = append(res.Failures, rel)
		if r.failureLog == "" || logErr != nil {
			return
		}
		logErr = appendLine(r.failureLog, rel)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for _, file := range files {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rel := r.rel(file)
			n := done.Add(1)
			r.emit(rel, int(n), len(files), int(failed.Load()), nil)

			if err := fn(gctx, file); err != nil {
				if errors.Is(err, context.Canceled) && gctx.Err() != nil {
					return err
				}
				f := failed.Add(1)
				record(rel)
				r.logger.Warn("stage failed", "stage", r.stage.String(), "path", rel, "error", err)
				r.emit(rel, int(n), len(files), int(f), err)
			}
			return nil
		})
	}

	err := g.Wait()
	res.Done = int(done.Load())
	res.Failed = int(failed.Load())
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		return res, err
	}
	if logErr != nil {
		return res, fmt.Errorf("write failure log: %w", logErr)
	}
	r.emit("", res.Done, res.Total, res.Failed, nil)
	return res, nil
}

func (r *Runner) rel(path string) string {
	if r.root == "" {
		return filepath.ToSlash(path)
	}
	rel, err := filepath.Rel(r.root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func (r *Runner) emit(path string, done, total, failed int, err error) {
	if r.progress == nil {
		return
	}
	stage := r.stage
	if path == "" {
		stage = npktype.StageDone
	}
	r.progress(npktype.ProgressEvent{
		Stage:      stage,
		Path:       path,
		FilesDone:  done,
		FilesTotal: total,
		Failed:     failed,
		Err:        err,
	})
}

func appendLine(path, line string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(line + "\n"); err != nil {
		_ = f.Close() //nolint:errcheck // write error takes precedence
		return err
	}
	return f.Close()
}
