package npk

import (
	"context"
	"log/slog"

	"github.com/meigma/npk/internal/stage"
)

// StageFunc processes one file of a downstream stage.
type StageFunc = stage.Func

// StageResult summarizes a stage run.
type StageResult = stage.Result

// StageOption configures RunStage.
type StageOption = stage.Option

// StageWithWorkers sets the pool size. Values < 1 use runtime.NumCPU().
func StageWithWorkers(n int) StageOption { return stage.WithWorkers(n) }

// StageWithRoot sets the directory failure and progress paths are relative to.
func StageWithRoot(root string) StageOption { return stage.WithRoot(root) }

// StageWithFailureLog appends every rejected file to path.
func StageWithFailureLog(path string) StageOption { return stage.WithFailureLog(path) }

// StageWithStage sets the stage reported in progress events.
func StageWithStage(s ProgressStage) StageOption { return stage.WithStage(s) }

// StageWithLogger sets the logger for rejected files.
func StageWithLogger(logger *slog.Logger) StageOption { return stage.WithLogger(logger) }

// StageWithProgress sets a callback invoked as each file starts and fails.
func StageWithProgress(fn ProgressFunc) StageOption { return stage.WithProgress(fn) }

// RunStage applies fn to every file with a bounded worker pool. A file fn
// rejects is counted and logged; it never stops the stage. An error is
// returned only when ctx is done or the failure log cannot be written.
func RunStage(ctx context.Context, files []string, fn StageFunc, opts ...StageOption) (StageResult, error) {
	return stage.New(opts...).Run(ctx, files, fn)
}

// FindFiles returns every regular file under root whose name ends in ext.
func FindFiles(root, ext string) ([]string, error) {
	return stage.Find(root, ext)
}
