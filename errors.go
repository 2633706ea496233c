package npk

import (
	"errors"

	"github.com/meigma/npk/internal/npktype"
)

// Sentinel errors re-exported from internal/npktype.
var (
	// ErrNotFound is returned when an input path does not exist.
	ErrNotFound = npktype.ErrNotFound

	// ErrNotAContainer is returned when a file does not start with the NXPK magic.
	ErrNotAContainer = npktype.ErrNotAContainer

	// ErrNotNXS is returned when a payload does not carry the NXS signature.
	ErrNotNXS = npktype.ErrNotNXS

	// ErrInconsistentSize is returned when the map region is not an exact
	// multiple of the entry count.
	ErrInconsistentSize = npktype.ErrInconsistentSize

	// ErrUnsupportedVersion is returned when the entry record size matches
	// neither known layout.
	ErrUnsupportedVersion = npktype.ErrUnsupportedVersion

	// ErrDecompression is returned when an LZ4 or zlib stream cannot be decoded.
	ErrDecompression = npktype.ErrDecompression

	// ErrCipher is returned when an NXS payload does not decipher to a valid stream.
	ErrCipher = npktype.ErrCipher

	// ErrSizeOverflow is returned when offsets or sizes exceed the source or limits.
	ErrSizeOverflow = npktype.ErrSizeOverflow

	// ErrUnsafePath is returned when an output path would escape its destination.
	ErrUnsafePath = npktype.ErrUnsafePath
)

// Sentinel errors specific to the npk package.
var (
	// ErrNotXAPK is returned when a pipeline input is not an .xapk bundle.
	ErrNotXAPK = errors.New("npk: not an xapk bundle")

	// ErrNoScriptContainer is returned when a bundle has no assets/script.npk.
	ErrNoScriptContainer = errors.New("npk: no script container in bundle")
)

// EntryError records a failure recovered while extracting one entry.
type EntryError = npktype.EntryError

// ContainerError records a container that could not be opened or extracted.
// It never stops the rest of a batch.
type ContainerError struct {
	Path string
	Err  error
}

func (e *ContainerError) Error() string {
	return "npk: " + e.Path + ": " + e.Err.Error()
}

func (e *ContainerError) Unwrap() error {
	return e.Err
}
