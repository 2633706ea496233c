package npk

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"

	"github.com/meigma/npk/internal/pathutil"
)

// Archive is a standard archive whose entries can be listed and extracted.
type Archive interface {
	// List returns the entry names in archive order.
	List() []string

	// ExtractTo writes every entry under dir.
	ExtractTo(dir string) error

	Close() error
}

type zipArchive struct {
	rc *zip.ReadCloser
}

// OpenZip opens a zip archive, such as an .xapk, .apk or .obb file.
func OpenZip(path string) (Archive, error) {
	rc, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("npk: open archive %s: %w", path, err)
	}
	return &zipArchive{rc: rc}, nil
}

func (a *zipArchive) List() []string {
	names := make([]string, len(a.rc.File))
	for i, f := range a.rc.File {
		names[i] = f.Name
	}
	return names
}

// ExtractTo rejects entries that would land outside dir with ErrUnsafePath.
func (a *zipArchive) ExtractTo(dir string) error {
	for _, f := range a.rc.File {
		name := pathutil.Clean(f.Name)
		if name == "" {
			continue
		}
		if !pathutil.IsLocal(name) {
			return fmt.Errorf("%w: %s", ErrUnsafePath, f.Name)
		}
		dst := filepath.Join(dir, filepath.FromSlash(name))
		if f.FileInfo().IsDir() || strings.HasSuffix(f.Name, "/") {
			if err := os.MkdirAll(dst, 0o750); err != nil {
				return err
			}
			continue
		}
		if err := extractZipFile(f, dst); err != nil {
			return fmt.Errorf("npk: extract %s: %w", f.Name, err)
		}
	}
	return nil
}

func extractZipFile(f *zip.File, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return err
	}
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644) //nolint:gosec // path checked by IsLocal
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil { //nolint:gosec // archive sizes are bounded by the input
		_ = out.Close() //nolint:errcheck // copy error takes precedence
		return err
	}
	return out.Close()
}

func (a *zipArchive) Close() error {
	return a.rc.Close()
}
