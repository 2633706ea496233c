package npktype

import (
	"errors"
	"fmt"
)

// Sentinel errors for container and payload operations.
var (
	// ErrNotFound is returned when an input path does not exist.
	ErrNotFound = errors.New("npk: no such file")

	// ErrNotAContainer is returned when a file does not start with the NXPK magic.
	ErrNotAContainer = errors.New("npk: not an NXPK container")

	// ErrNotNXS is returned when a payload does not start with the NXS magic.
	ErrNotNXS = errors.New("npk: not an NXS payload")

	// ErrInconsistentSize is returned when the map region is not an exact
	// multiple of the entry count.
	ErrInconsistentSize = errors.New("npk: inconsistent map size")

	// ErrUnsupportedVersion is returned when the entry record size matches
	// neither known layout.
	ErrUnsupportedVersion = errors.New("npk: unsupported entry layout")

	// ErrDecompression is returned when an LZ4 or DEFLATE stream cannot be decoded.
	ErrDecompression = errors.New("npk: decompression failed")

	// ErrCipher is returned when the rotor stage receives corrupt or foreign input.
	ErrCipher = errors.New("npk: cipher failure")

	// ErrSizeOverflow is returned when offsets or sizes exceed the source or
	// configured limits.
	ErrSizeOverflow = errors.New("npk: size overflow")

	// ErrUnsafePath is returned when a resolved output path would escape the
	// destination directory.
	ErrUnsafePath = errors.New("npk: output path escapes destination")
)

// EntryError records a failure recovered while processing one entry. It
// never aborts the container.
type EntryError struct {
	// Container is the base name of the container holding the entry.
	Container string

	// Index is the position of the entry in the container map.
	Index int

	// Hash is the structural hash of the entry.
	Hash uint64

	// Path is the output path, if one was resolved.
	Path string

	Err error
}

func (e *EntryError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: entry %d (%016x) %s: %v", e.Container, e.Index, e.Hash, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: entry %d (%016x): %v", e.Container, e.Index, e.Hash, e.Err)
}

func (e *EntryError) Unwrap() error {
	return e.Err
}
