package npk

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/meigma/npk/internal/fileops"
	"github.com/meigma/npk/internal/header"
)

// ByteSource provides random access to container bytes.
//
// *os.File does not implement Size; use Open for files on disk.
type ByteSource interface {
	io.ReaderAt
	Size() int64
}

// DefaultMaxEntrySize is the default per-entry size limit (256 MiB).
const DefaultMaxEntrySize = fileops.DefaultMaxEntrySize

// Container is an opened NXPK container: its header and entry map.
//
// Entries are read on demand from the underlying source. A Container is safe
// for concurrent reads.
type Container struct {
	name         string
	path         string
	src          ByteSource
	closer       io.Closer
	header       Header
	entries      []Entry
	ops          *fileops.Ops
	maxEntrySize uint64
	logger       *slog.Logger
}

// Option configures a Container.
type Option func(*Container)

// WithLogger sets the logger for recovered failures.
// By default nothing is logged.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Container) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMaxEntrySize limits the compressed and uncompressed size of any entry.
// Set limit to 0 to disable the limit.
func WithMaxEntrySize(limit uint64) Option {
	return func(c *Container) {
		c.maxEntrySize = limit
	}
}

// Open opens the container at path.
//
// The magic is checked before anything else. The file stays open until
// Close is called.
func Open(path string, opts ...Option) (*Container, error) {
	f, err := os.Open(path) //nolint:gosec // user-provided path is intentional
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("npk: open %s: %w", path, err)
	}
	src, err := newFileSource(f)
	if err != nil {
		_ = f.Close() //nolint:errcheck // open error takes precedence
		return nil, err
	}

	c, err := OpenSource(filepath.Base(path), src, opts...)
	if err != nil {
		_ = f.Close() //nolint:errcheck // open error takes precedence
		return nil, err
	}
	c.path = path
	c.closer = f
	return c, nil
}

// OpenSource reads the header and entry map from src. name is used in errors,
// logs and progress output.
func OpenSource(name string, src ByteSource, opts ...Option) (*Container, error) {
	c := &Container{
		name:         name,
		src:          src,
		maxEntrySize: DefaultMaxEntrySize,
		logger:       slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}

	h, entries, err := header.Read(src)
	if err != nil {
		return nil, fmt.Errorf("npk: %s: %w", name, err)
	}
	c.header = h
	c.entries = entries
	c.ops = fileops.New(src, fileops.WithMaxEntrySize(c.maxEntrySize), fileops.WithInflatePool(inflatePool))

	c.logger.Debug("opened container",
		"container", name,
		"version", int(h.Version),
		"entries", h.EntryCount,
		"size", h.TotalSize)
	return c, nil
}

// Name returns the base name of the container.
func (c *Container) Name() string {
	return c.name
}

// Path returns the path the container was opened from, or "" for OpenSource.
func (c *Container) Path() string {
	return c.path
}

// Header returns the parsed header.
func (c *Container) Header() Header {
	return c.header
}

// Version returns the entry layout version.
func (c *Container) Version() Version {
	return c.header.Version
}

// Entries returns a copy of the entry map in declared order.
func (c *Container) Entries() []Entry {
	return slices.Clone(c.entries)
}

// Len returns the number of entries.
func (c *Container) Len() int {
	return len(c.entries)
}

// ReadEntry reads and decodes one entry. Entries using compression code 1
// are decoded when they carry a zlib header and returned raw otherwise.
func (c *Container) ReadEntry(e Entry) ([]byte, error) {
	res, err := c.ops.ReadAll(&e)
	if err != nil {
		return res.Data, fmt.Errorf("npk: %s: %w", c.name, err)
	}
	return res.Data, nil
}

// Close releases the underlying file, if Open created it.
func (c *Container) Close() error {
	if c.closer == nil {
		return nil
	}
	err := c.closer.Close()
	c.closer = nil
	return err
}
