// Package fileops provides internal payload access for container entries:
// bounded reads from a byte source and the decompression transforms.
package fileops

import "github.com/meigma/npk/internal/npktype"

// Re-export types from npktype to keep call sites short.
type (
	Entry       = npktype.Entry
	Compression = npktype.Compression
)

// Re-export compression constants.
const (
	CompressionStore   = npktype.CompressionStore
	CompressionDeflate = npktype.CompressionDeflate
	CompressionLZ4     = npktype.CompressionLZ4
)

// Re-export sentinel errors.
var (
	ErrDecompression = npktype.ErrDecompression
	ErrSizeOverflow  = npktype.ErrSizeOverflow
)
