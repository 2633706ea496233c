package npk

import (
	"github.com/meigma/npk/internal/magic"
	"github.com/meigma/npk/internal/npktype"
	"github.com/meigma/npk/internal/pathhash"
)

// Re-export types from internal packages for the public API.
type (
	// Header is the fixed container header.
	Header = npktype.Header

	// Entry is one record of a container map.
	Entry = npktype.Entry

	// Version selects the entry record layout.
	Version = npktype.Version

	// Compression identifies the transform applied to an entry payload.
	Compression = npktype.Compression

	// Encryption identifies the per-entry encryption code.
	Encryption = npktype.Encryption

	// Kind is the sniffed classification of a byte buffer.
	Kind = magic.Kind

	// PathMap maps structural hashes to relative paths. It is frozen once
	// built and safe for concurrent reads.
	PathMap = pathhash.Map
)

// Re-export layout and codec constants.
const (
	VersionUnknown = npktype.VersionUnknown
	V1             = npktype.V1
	V2             = npktype.V2

	CompressionStore   = npktype.CompressionStore
	CompressionDeflate = npktype.CompressionDeflate
	CompressionLZ4     = npktype.CompressionLZ4

	ScriptManifestHash   = npktype.ScriptManifestHash
	ResourceManifestHash = npktype.ResourceManifestHash
)

// HashPath returns the structural hash of a script path as listed in a
// script manifest.
func HashPath(path string) uint64 {
	return pathhash.ScriptPathHash(path)
}
