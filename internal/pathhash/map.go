package pathhash

import "maps"

// Source identifies the manifest a Map was built from.
type Source uint8

const (
	SourceNone Source = iota
	SourceScript
	SourceResource
)

func (s Source) String() string {
	switch s {
	case SourceScript:
		return "script"
	case SourceResource:
		return "resource"
	default:
		return "none"
	}
}

// Map is a frozen hash to path mapping. It is safe for concurrent reads.
// A nil *Map behaves as an empty map.
type Map struct {
	paths  map[uint64]string
	source Source
}

// Empty returns a map with no entries.
func Empty() *Map {
	return &Map{paths: map[uint64]string{}}
}

// Lookup returns the relative path recorded for hash. Paths use forward
// slashes.
func (m *Map) Lookup(hash uint64) (string, bool) {
	if m == nil {
		return "", false
	}
	p, ok := m.paths[hash]
	return p, ok
}

// Len returns the number of mapped hashes.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.paths)
}

// Source returns the manifest kind the map was built from.
func (m *Map) Source() Source {
	if m == nil {
		return SourceNone
	}
	return m.source
}

// All returns a copy of the mapping.
func (m *Map) All() map[uint64]string {
	if m == nil {
		return map[uint64]string{}
	}
	return maps.Clone(m.paths)
}

// Builder accumulates mappings before freezing them into a Map.
// A Builder must not be used after Freeze.
type Builder struct {
	paths map[uint64]string
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{paths: make(map[uint64]string)}
}

// Add records path for hash. Later additions replace earlier ones.
func (b *Builder) Add(hash uint64, path string) {
	b.paths[hash] = path
}

// Len returns the number of mappings added so far.
func (b *Builder) Len() int {
	return len(b.paths)
}

// Freeze returns the finished Map.
func (b *Builder) Freeze(source Source) *Map {
	m := &Map{paths: b.paths, source: source}
	b.paths = nil
	return m
}
