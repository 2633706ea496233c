package npk

import (
	"errors"
	"fmt"

	"github.com/meigma/npk/internal/fileops"
	"github.com/meigma/npk/internal/npktype"
	"github.com/meigma/npk/internal/pathhash"
)

// ResolvePathMap builds the path map from the manifest embedded in c.
//
// The script manifest is preferred over the resource manifest. A container
// with no manifest, or one whose manifest cannot be decoded, yields an empty
// map: corruption is logged and every entry later falls back to a
// synthesized name. An error is only returned when the source cannot be read.
func ResolvePathMap(c *Container) (*PathMap, error) {
	entry, source, ok := c.findManifest()
	if !ok {
		return pathhash.Empty(), nil
	}

	m, err := c.decodeManifest(&entry, source)
	if err != nil {
		if isFormatError(err) {
			c.logger.Warn("manifest unreadable",
				"container", c.name,
				"index", entry.Index,
				"hash", entry.NameHash,
				"error", err)
			return pathhash.Empty(), nil
		}
		return nil, fmt.Errorf("npk: %s: manifest: %w", c.name, err)
	}

	c.logger.Debug("resolved path map",
		"container", c.name,
		"manifest", source.String(),
		"paths", m.Len())
	return m, nil
}

func (c *Container) findManifest() (Entry, pathhash.Source, bool) {
	for _, want := range []struct {
		hash   uint64
		source pathhash.Source
	}{
		{npktype.ScriptManifestHash, pathhash.SourceScript},
		{npktype.ResourceManifestHash, pathhash.SourceResource},
	} {
		for _, e := range c.entries {
			if e.NameHash == want.hash {
				return e, want.source, true
			}
		}
	}
	return Entry{}, pathhash.SourceNone, false
}

// decodeManifest reads a manifest entry as an LZ4 block regardless of its
// compression code; the resource manifest is additionally zlib-wrapped.
func (c *Container) decodeManifest(entry *Entry, source pathhash.Source) (*PathMap, error) {
	raw, err := c.ops.ReadRaw(entry)
	if err != nil {
		return nil, err
	}
	text, err := fileops.DecodeLZ4(raw, uint64(entry.UncompressedSize))
	if err != nil {
		return nil, err
	}

	if source == pathhash.SourceScript {
		return pathhash.ParseScriptManifest(text)
	}

	text, err = c.ops.Inflate(text)
	if err != nil {
		return nil, err
	}
	m, skipped, err := pathhash.ParseResourceManifest(text)
	if err != nil {
		return nil, err
	}
	if skipped > 0 {
		c.logger.Warn("skipped malformed manifest lines",
			"container", c.name,
			"lines", skipped)
	}
	return m, nil
}

func isFormatError(err error) bool {
	return errors.Is(err, ErrDecompression) ||
		errors.Is(err, ErrSizeOverflow) ||
		errors.Is(err, pathhash.ErrInvalidManifest)
}
