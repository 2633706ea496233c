package batch

import (
	"fmt"
	"os"
	"path/filepath"
)

// FileSink writes outputs to the filesystem with atomic writes.
//
// Files are written to a temporary file in the same directory,
// then renamed to the final path on Commit. This ensures that
// partially written files are never visible at the final path.
type FileSink struct {
	destDir   string
	overwrite bool
	perm      os.FileMode
}

// FileSinkOption configures a FileSink.
type FileSinkOption func(*FileSink)

// WithOverwrite controls whether existing files are replaced.
// By default, existing files are replaced.
func WithOverwrite(overwrite bool) FileSinkOption {
	return func(s *FileSink) {
		s.overwrite = overwrite
	}
}

// NewFileSink creates a FileSink that writes to destDir.
//
// destDir must be an absolute path or relative to the current directory.
// Parent directories are created automatically as needed.
func NewFileSink(destDir string, opts ...FileSinkOption) *FileSink {
	s := &FileSink{
		destDir:   destDir,
		overwrite: true,
		perm:      0o644,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the filesystem path an output is written to.
func (s *FileSink) Path(out *Output) string {
	return filepath.Join(s.destDir, filepath.FromSlash(out.Path))
}

// ShouldProcess returns false if the file already exists and overwrite is disabled.
func (s *FileSink) ShouldProcess(out *Output) bool {
	if s.overwrite {
		return true
	}
	_, err := os.Stat(s.Path(out))
	return os.IsNotExist(err)
}

// Writer returns a Committer that writes to a temp file and renames on Commit.
func (s *FileSink) Writer(out *Output) (Committer, error) {
	destPath := s.Path(out)

	dir := filepath.Dir(destPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create directory %s: %w", dir, err)
	}

	// Same directory so the final rename stays on one filesystem.
	tempFile, err := os.CreateTemp(dir, ".npk-*")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}

	return &fileCommitter{
		destPath: destPath,
		tempFile: tempFile,
		perm:     s.perm,
	}, nil
}

// fileCommitter writes to a temp file and renames on Commit.
type fileCommitter struct {
	destPath string
	tempFile *os.File
	perm     os.FileMode
}

// Write implements io.Writer.
func (c *fileCommitter) Write(p []byte) (int, error) {
	return c.tempFile.Write(p)
}

// Commit closes the temp file, applies the file mode, and renames to the final path.
func (c *fileCommitter) Commit() error {
	tempPath := c.tempFile.Name()

	if err := c.tempFile.Close(); err != nil {
		_ = os.Remove(tempPath) //nolint:errcheck // best-effort cleanup
		return fmt.Errorf("close temp file: %w", err)
	}

	// CreateTemp uses 0o600.
	if err := os.Chmod(tempPath, c.perm); err != nil {
		_ = os.Remove(tempPath) //nolint:errcheck // best-effort cleanup
		return fmt.Errorf("chmod: %w", err)
	}

	if err := os.Rename(tempPath, c.destPath); err != nil {
		_ = os.Remove(tempPath) //nolint:errcheck // best-effort cleanup
		return fmt.Errorf("rename to %s: %w", c.destPath, err)
	}

	return nil
}

// Discard closes and removes the temp file.
func (c *fileCommitter) Discard() error {
	tempPath := c.tempFile.Name()
	_ = c.tempFile.Close() //nolint:errcheck // we're cleaning up
	return os.Remove(tempPath)
}
