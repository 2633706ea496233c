// Package pathhash maps structural entry hashes back to relative paths.
//
// Containers identify entries only by a 64-bit hash. A container may carry a
// manifest listing the paths it holds: the script manifest lists bare paths
// that must be hashed, the resource manifest lists explicit hash/path pairs.
package pathhash

import (
	"strings"

	"github.com/twmb/murmur3"
)

// Murmur seeds for the two halves of the structural hash.
const (
	HighSeed uint32 = 0x9747B28C
	LowSeed  uint32 = 0xC82B7479
)

// hashSeparator is the separator used when hashing. The game computes hashes
// over Windows-style paths, so this does not depend on the host OS.
const hashSeparator = `\`

var stripPrefixes = []string{"lib/", "engine/common/", "engine/"}

// Hash returns the structural hash of an already normalized path:
// murmur3 x86_32 with HighSeed in the upper half and LowSeed in the lower.
func Hash(normalized string) uint64 {
	b := []byte(normalized)
	hi := murmur3.SeedSum32(HighSeed, b)
	lo := murmur3.SeedSum32(LowSeed, b)
	return uint64(hi)<<32 | uint64(lo)
}

// NormalizeScriptPath converts a script manifest line to the form that is
// hashed. At most one of the known prefixes is removed, tried in order
// "lib/", "engine/common/", "engine/", and forward slashes become backslashes.
func NormalizeScriptPath(p string) string {
	for _, prefix := range stripPrefixes {
		if rest, ok := strings.CutPrefix(p, prefix); ok {
			p = rest
			break
		}
	}
	return strings.ReplaceAll(p, "/", hashSeparator)
}

// ScriptPathHash normalizes p and hashes it.
func ScriptPathHash(p string) uint64 {
	return Hash(NormalizeScriptPath(p))
}
