package pathhash

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/meigma/npk/internal/pathutil"
)

// ErrInvalidManifest is returned when manifest text is not valid UTF-8.
var ErrInvalidManifest = errors.New("pathhash: manifest is not valid UTF-8")

// resourceLine matches "<decimal hash><anything><whitespace><path>". The
// first run of digits is the hash and everything after the last whitespace
// run is the path.
var resourceLine = regexp.MustCompile(`^.*?(\d+).*\s+(.*)$`)

// ParseScriptManifest builds a map from decoded script manifest text: one
// forward-slash path per line, hashed after NormalizeScriptPath. Empty lines
// are skipped. The stored path is the line as written.
func ParseScriptManifest(text []byte) (*Map, error) {
	if !utf8.Valid(text) {
		return nil, ErrInvalidManifest
	}
	b := NewBuilder()
	for line := range strings.SplitSeq(string(text), "\n") {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			continue
		}
		b.Add(ScriptPathHash(line), pathutil.Clean(line))
	}
	return b.Freeze(SourceScript), nil
}

// ParseResourceManifest builds a map from decoded resource manifest text:
// lines of a decimal hash and a path. No hashing is performed. It returns
// the number of non-empty lines that could not be parsed.
func ParseResourceManifest(text []byte) (*Map, int, error) {
	if !utf8.Valid(text) {
		return nil, 0, ErrInvalidManifest
	}
	b := NewBuilder()
	skipped := 0
	for line := range strings.SplitSeq(string(text), "\n") {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			continue
		}
		m := resourceLine.FindStringSubmatch(line)
		if m == nil {
			skipped++
			continue
		}
		hash, err := strconv.ParseUint(m[1], 10, 64)
		if err != nil || m[2] == "" {
			skipped++
			continue
		}
		b.Add(hash, pathutil.Clean(m[2]))
	}
	return b.Freeze(SourceResource), skipped, nil
}
