package npk

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/meigma/npk/internal/display"
	"github.com/meigma/npk/internal/pathhash"
)

// UnpackOption configures Unpack.
type UnpackOption func(*unpackConfig)

type unpackConfig struct {
	logger       *slog.Logger
	workers      int
	progress     ProgressFunc
	display      io.Writer
	displayPlain bool
	displayWidth int
	overwrite    bool
	decryptNXS   bool
	maxEntrySize uint64
	reportPath   string
}

// UnpackWithLogger sets the logger for the batch and its containers.
func UnpackWithLogger(logger *slog.Logger) UnpackOption {
	return func(cfg *unpackConfig) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// UnpackWithWorkers sets the number of containers extracted concurrently.
// Values < 1 use runtime.NumCPU().
func UnpackWithWorkers(n int) UnpackOption {
	return func(cfg *unpackConfig) {
		cfg.workers = n
	}
}

// UnpackWithProgress sets a callback for per-entry progress. It is called
// concurrently from every container worker.
func UnpackWithProgress(fn ProgressFunc) UnpackOption {
	return func(cfg *unpackConfig) {
		cfg.progress = fn
	}
}

// UnpackWithDisplay renders one progress line per container on w.
// When plain is true, updates are written as plain lines instead of
// rewriting fixed lines. width truncates lines; zero disables truncation.
func UnpackWithDisplay(w io.Writer, plain bool, width int) UnpackOption {
	return func(cfg *unpackConfig) {
		cfg.display = w
		cfg.displayPlain = plain
		cfg.displayWidth = width
	}
}

// UnpackWithOverwrite controls whether existing files are replaced.
// Default: true.
func UnpackWithOverwrite(overwrite bool) UnpackOption {
	return func(cfg *unpackConfig) {
		cfg.overwrite = overwrite
	}
}

// UnpackWithNXS decrypts NXS payloads inline. See ExtractWithNXS.
func UnpackWithNXS(enabled bool) UnpackOption {
	return func(cfg *unpackConfig) {
		cfg.decryptNXS = enabled
	}
}

// UnpackWithMaxEntrySize limits the size of any entry. See WithMaxEntrySize.
func UnpackWithMaxEntrySize(limit uint64) UnpackOption {
	return func(cfg *unpackConfig) {
		cfg.maxEntrySize = limit
	}
}

// UnpackWithReport writes a JSON-lines record of every recovered file to path.
func UnpackWithReport(path string) UnpackOption {
	return func(cfg *unpackConfig) {
		cfg.reportPath = path
	}
}

// ContainerResult is the outcome of one container in a batch.
type ContainerResult struct {
	Name  string
	Path  string
	Slot  int
	Stats ExtractStats
}

// UnpackResult summarizes a batch.
type UnpackResult struct {
	// Dest is the output directory used.
	Dest string

	// PathMap is the map shared by every container of the batch.
	PathMap *PathMap

	// ManifestFrom is the path of the container the map was built from.
	ManifestFrom string

	// Containers holds one result per container that was opened, in input order.
	Containers []ContainerResult

	// Errors lists containers that could not be opened.
	Errors []error

	// Stats totals the stats of every container.
	Stats ExtractStats
}

// Unpack extracts a batch of containers into destDir.
//
// Containers are opened in order and the first one carrying a readable
// manifest provides the path map for the whole batch. The map is frozen
// before extraction starts; containers are then extracted concurrently, one
// worker per container. A container that cannot be opened is reported in
// UnpackResult.Errors and the rest of the batch continues.
//
// An empty destDir selects DefaultOutputDir(paths[0]).
func Unpack(ctx context.Context, paths []string, destDir string, opts ...UnpackOption) (UnpackResult, error) {
	cfg := unpackConfig{
		logger:       slog.New(slog.DiscardHandler),
		overwrite:    true,
		maxEntrySize: DefaultMaxEntrySize,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.workers < 1 {
		cfg.workers = runtime.NumCPU()
	}

	var res UnpackResult
	if len(paths) == 0 {
		return res, errors.New("npk: no containers to unpack")
	}
	if destDir == "" {
		destDir = DefaultOutputDir(paths[0])
	}
	res.Dest = destDir

	nonEmpty, err := PrepareOutputDir(destDir)
	if err != nil {
		return res, err
	}
	if nonEmpty {
		cfg.logger.Info("output directory is not empty, leaving it as is", "dir", destDir)
	}

	containers, pm := discover(paths, &cfg, &res)
	defer func() {
		for _, c := range containers {
			_ = c.Close() //nolint:errcheck // read-only files
		}
	}()
	res.PathMap = pm

	var report *Report
	if cfg.reportPath != "" {
		report, err = CreateReport(cfg.reportPath)
		if err != nil {
			return res, err
		}
		defer report.Close() //nolint:errcheck // close error is checked below
	}

	progress := cfg.progress
	if cfg.display != nil {
		names := make([]string, len(containers))
		for i, c := range containers {
			names[i] = c.Name()
		}
		d := display.New(cfg.display, names,
			display.WithPlain(cfg.displayPlain),
			display.WithWidth(cfg.displayWidth))
		d.Start()
		progress = chainProgress(progress, d.Progress())
	}

	res.Containers = make([]ContainerResult, len(containers))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.workers)
	for slot, c := range containers {
		g.Go(func() error {
			extractOpts := []ExtractOption{
				ExtractWithSlot(slot),
				ExtractWithOverwrite(cfg.overwrite),
				ExtractWithNXS(cfg.decryptNXS),
				ExtractWithProgress(progress),
			}
			if report != nil {
				extractOpts = append(extractOpts, ExtractWithReport(report))
			}
			stats, err := c.Extract(gctx, pm, destDir, extractOpts...)

			mu.Lock()
			res.Containers[slot] = ContainerResult{Name: c.Name(), Path: c.Path(), Slot: slot, Stats: stats}
			mu.Unlock()
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return res, err
	}

	for _, cr := range res.Containers {
		res.Stats.Add(cr.Stats)
	}
	if report != nil {
		if err := report.Close(); err != nil {
			return res, err
		}
	}
	return res, nil
}

// discover opens every container in order and resolves the path map from the
// first container that yields a non-empty one. Discovery is sequential and
// finishes before any extraction starts.
func discover(paths []string, cfg *unpackConfig, res *UnpackResult) ([]*Container, *PathMap) {
	pm := pathhash.Empty()
	var containers []*Container
	for _, path := range paths {
		c, err := Open(path, WithLogger(cfg.logger), WithMaxEntrySize(cfg.maxEntrySize))
		if err != nil {
			cfg.logger.Error("cannot open container", "path", path, "error", err)
			res.Errors = append(res.Errors, &ContainerError{Path: path, Err: err})
			continue
		}
		containers = append(containers, c)

		if pm.Len() > 0 {
			continue
		}
		found, err := ResolvePathMap(c)
		if err != nil {
			cfg.logger.Warn("cannot resolve path map", "container", c.Name(), "error", err)
			continue
		}
		if found.Len() > 0 {
			pm = found
			res.ManifestFrom = path
		}
	}
	return containers, pm
}

func chainProgress(fns ...ProgressFunc) ProgressFunc {
	var set []ProgressFunc
	for _, fn := range fns {
		if fn != nil {
			set = append(set, fn)
		}
	}
	if len(set) == 0 {
		return nil
	}
	return func(ev ProgressEvent) {
		for _, fn := range set {
			fn(ev)
		}
	}
}

// DefaultOutputDir returns the directory used when no output is given: the
// container's directory joined with its base name without extension.
func DefaultOutputDir(containerPath string) string {
	abs, err := filepath.Abs(containerPath)
	if err != nil {
		abs = containerPath
	}
	base := filepath.Base(abs)
	return filepath.Join(filepath.Dir(abs), strings.TrimSuffix(base, filepath.Ext(base)))
}

// PrepareOutputDir creates dir if needed and reports whether it already
// held files. Existing content is left as is.
func PrepareOutputDir(dir string) (bool, error) {
	entries, err := os.ReadDir(dir)
	switch {
	case err == nil:
		return len(entries) > 0, nil
	case errors.Is(err, os.ErrNotExist):
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return false, fmt.Errorf("npk: create output directory: %w", err)
		}
		return false, nil
	default:
		return false, fmt.Errorf("npk: output directory: %w", err)
	}
}
