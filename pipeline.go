package npk

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// File and directory names used by UnpackXAPK.
const (
	XAPKExt          = ".xapk"
	ScriptContainer  = "script.npk"
	ScriptDir        = "script"
	ResourceDir      = "res_npk"
	FailedDecompile  = "failed_uncompyle.txt"
	decompiledSuffix = ".py"
)

// PipelineOption configures UnpackXAPK.
type PipelineOption func(*pipelineConfig)

type pipelineConfig struct {
	logger       *slog.Logger
	workers      int
	progress     ProgressFunc
	display      io.Writer
	displayPlain bool
	displayWidth int
	decompiler   Decompiler
}

// PipelineWithLogger sets the logger for every step.
func PipelineWithLogger(logger *slog.Logger) PipelineOption {
	return func(cfg *pipelineConfig) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// PipelineWithWorkers sets the pool size of the unpack and stage pools.
func PipelineWithWorkers(n int) PipelineOption {
	return func(cfg *pipelineConfig) {
		cfg.workers = n
	}
}

// PipelineWithProgress receives extraction and stage progress.
func PipelineWithProgress(fn ProgressFunc) PipelineOption {
	return func(cfg *pipelineConfig) {
		cfg.progress = fn
	}
}

// PipelineWithDisplay renders container extraction on w. See UnpackWithDisplay.
func PipelineWithDisplay(w io.Writer, plain bool, width int) PipelineOption {
	return func(cfg *pipelineConfig) {
		cfg.display = w
		cfg.displayPlain = plain
		cfg.displayWidth = width
	}
}

// PipelineWithDecompiler enables the decompile stage. Without it the stage
// is skipped.
func PipelineWithDecompiler(d Decompiler) PipelineOption {
	return func(cfg *pipelineConfig) {
		cfg.decompiler = d
	}
}

// PipelineResult summarizes UnpackXAPK.
type PipelineResult struct {
	// Root is the directory the bundle was extracted to.
	Root string

	// APKDir and OBBDir are the extracted nested archives. OBBDir is empty
	// when the bundle carries no .obb.
	APKDir string
	OBBDir string

	// ScriptDir holds the extracted script container.
	ScriptDir string

	Script    UnpackResult
	Resources UnpackResult

	// NXS is the decryption stage run over ScriptDir.
	NXS StageResult

	// CompiledScripts counts .cpyc files left after decryption.
	CompiledScripts int

	// Decompile is the decompiler stage; DecompileSkipped is set when no
	// decompiler was configured.
	Decompile        StageResult
	DecompileSkipped bool
}

// UnpackXAPK runs the whole recovery pipeline on an .xapk bundle:
//
//  1. extract the bundle to outDir/<bundle name>
//  2. extract every nested .obb then every nested .apk next to itself
//  3. unpack assets/script.npk of the apk to assets/script
//  4. unpack every .npk of the obb to res_npk
//  5. decrypt every .nxs under the script directory
//  6. decompile every .pyc under the script directory, if a decompiler is set
//
// Decompiler rejections are appended to failed_uncompyle.txt in the script
// directory and never stop the pipeline.
func UnpackXAPK(ctx context.Context, xapkPath, outDir string, opts ...PipelineOption) (PipelineResult, error) {
	cfg := pipelineConfig{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&cfg)
	}
	var res PipelineResult

	base, err := checkXAPK(xapkPath)
	if err != nil {
		return res, err
	}

	res.Root = filepath.Join(outDir, base)
	nonEmpty, err := PrepareOutputDir(res.Root)
	if err != nil {
		return res, err
	}
	if nonEmpty {
		cfg.logger.Info("output directory is not empty, leaving it as is", "dir", res.Root)
	}

	if err := unzip(xapkPath, res.Root); err != nil {
		return res, err
	}
	cfg.logger.Info("extracted bundle", "path", xapkPath, "dir", res.Root)

	if res.OBBDir, err = unzipNested(res.Root, ".obb", cfg.logger); err != nil {
		return res, err
	}
	if res.APKDir, err = unzipNested(res.Root, ".apk", cfg.logger); err != nil {
		return res, err
	}
	if res.APKDir == "" {
		return res, fmt.Errorf("%w: %s", ErrNoScriptContainer, xapkPath)
	}

	script := filepath.Join(res.APKDir, "assets", ScriptContainer)
	res.ScriptDir = filepath.Join(res.APKDir, "assets", ScriptDir)
	if res.Script, err = Unpack(ctx, []string{script}, res.ScriptDir, cfg.unpackOptions()...); err != nil {
		return res, err
	}
	if len(res.Script.Errors) > 0 {
		return res, errors.Join(res.Script.Errors...)
	}

	if res.OBBDir != "" {
		resources, err := FindFiles(res.OBBDir, ".npk")
		if err != nil {
			return res, fmt.Errorf("npk: find resource containers: %w", err)
		}
		if len(resources) > 0 {
			res.Resources, err = Unpack(ctx, resources, filepath.Join(res.OBBDir, ResourceDir), cfg.unpackOptions()...)
			if err != nil {
				return res, err
			}
		}
	}

	if res.NXS, err = cfg.runStage(ctx, res.ScriptDir, KindNXS.Ext(), StageDecrypting, "", func(_ context.Context, path string) error {
		_, err := DecryptNXSFile(path)
		return err
	}); err != nil {
		return res, err
	}

	compiled, err := FindFiles(res.ScriptDir, KindCPYC.Ext())
	if err != nil {
		return res, fmt.Errorf("npk: find compiled scripts: %w", err)
	}
	res.CompiledScripts = len(compiled)

	if cfg.decompiler == nil {
		res.DecompileSkipped = true
		cfg.logger.Info("no decompiler configured, skipping decompile stage")
		return res, nil
	}
	failureLog := filepath.Join(res.ScriptDir, FailedDecompile)
	res.Decompile, err = cfg.runStage(ctx, res.ScriptDir, KindPYC.Ext(), StageDecompiling, failureLog, func(ctx context.Context, path string) error {
		return cfg.decompiler.Decompile(ctx, path, strings.TrimSuffix(path, filepath.Ext(path))+decompiledSuffix)
	})
	if err != nil {
		return res, err
	}
	if res.Decompile.Failed > 0 {
		cfg.logger.Warn("decompile failures recorded", "failed", res.Decompile.Failed, "log", failureLog)
	}
	return res, nil
}

func (cfg *pipelineConfig) unpackOptions() []UnpackOption {
	opts := []UnpackOption{
		UnpackWithLogger(cfg.logger),
		UnpackWithWorkers(cfg.workers),
		UnpackWithProgress(cfg.progress),
	}
	if cfg.display != nil {
		opts = append(opts, UnpackWithDisplay(cfg.display, cfg.displayPlain, cfg.displayWidth))
	}
	return opts
}

func (cfg *pipelineConfig) runStage(ctx context.Context, root, ext string, s ProgressStage, failureLog string, fn StageFunc) (StageResult, error) {
	files, err := FindFiles(root, ext)
	if err != nil {
		return StageResult{}, fmt.Errorf("npk: find %s files: %w", ext, err)
	}
	res, err := RunStage(ctx, files, fn,
		StageWithWorkers(cfg.workers),
		StageWithRoot(root),
		StageWithFailureLog(failureLog),
		StageWithStage(s),
		StageWithLogger(cfg.logger),
		StageWithProgress(cfg.progress))
	if err != nil {
		return res, err
	}
	cfg.logger.Info("stage finished", "stage", s.String(), "files", res.Total, "failed", res.Failed)
	return res, nil
}

// checkXAPK validates the bundle and returns its name without extension.
func checkXAPK(path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return "", fmt.Errorf("npk: %s: %w", path, err)
	}
	name := filepath.Base(path)
	ext := filepath.Ext(name)
	if ext != XAPKExt {
		return "", fmt.Errorf("%w: %s", ErrNotXAPK, path)
	}
	kind, err := SniffFile(path)
	if err != nil {
		return "", fmt.Errorf("npk: %s: %w", path, err)
	}
	if kind != KindAPK {
		return "", fmt.Errorf("%w: %s is %s", ErrNotXAPK, path, kind)
	}
	return strings.TrimSuffix(name, ext), nil
}

func unzip(path, dir string) error {
	a, err := OpenZip(path)
	if err != nil {
		return err
	}
	defer a.Close()
	return a.ExtractTo(dir)
}

// unzipNested extracts every archive with extension ext found under root
// into a sibling directory named after it. Archives whose directory already
// exists are skipped. It returns the directory of the last archive found.
func unzipNested(root, ext string, logger *slog.Logger) (string, error) {
	archives, err := FindFiles(root, ext)
	if err != nil {
		return "", fmt.Errorf("npk: find %s archives: %w", ext, err)
	}
	var last string
	for _, archive := range archives {
		dir := strings.TrimSuffix(archive, ext)
		last = dir
		if err := os.Mkdir(dir, 0o750); err != nil {
			if errors.Is(err, fs.ErrExist) {
				logger.Info("archive already extracted", "path", archive)
				continue
			}
			return "", err
		}
		if err := unzip(archive, dir); err != nil {
			return "", err
		}
		logger.Info("extracted archive", "path", archive, "dir", dir)
	}
	return last, nil
}
