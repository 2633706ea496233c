package npk

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/npk/internal/testutil"
)

const fooBarHash uint64 = 0x35fdc97187c51ad1

func TestHashPath_Golden(t *testing.T) {
	t.Parallel()

	assert.Equal(t, fooBarHash, HashPath("foo/bar.txt"))
	assert.Equal(t, fooBarHash, HashPath(`foo\bar.txt`))
	assert.Equal(t, uint64(0x0c00c957c5185035), HashPath("lib/client/main.py"))
}

func TestOpen_EndToEnd(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeContainer(t, dir, "script.npk", V2,
		testutil.ScriptManifest(t, "foo/bar.txt"),
		testutil.LZ4(t, fooBarHash, []byte("hello world")),
	)

	c, err := Open(path)
	require.NoError(t, err)
	defer c.Close()

	assert.Equal(t, "script.npk", c.Name())
	assert.Equal(t, path, c.Path())
	assert.Equal(t, V2, c.Version())
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, uint32(2), c.Header().EntryCount)

	pm, err := ResolvePathMap(c)
	require.NoError(t, err)
	require.Equal(t, 1, pm.Len())
	got, ok := pm.Lookup(fooBarHash)
	require.True(t, ok)
	assert.Equal(t, "foo/bar.txt", got)

	out := filepath.Join(dir, "out")
	stats, err := c.Extract(context.Background(), pm, out)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Entries)
	assert.Equal(t, 2, stats.Written)
	assert.Zero(t, stats.Unknown)
	assert.Empty(t, stats.Failed)
	assert.Equal(t, []byte("hello world"), readFile(t, filepath.Join(out, "foo", "bar.txt")))
	assert.Equal(t, []byte("foo/bar.txt\n"), readFile(t, filepath.Join(out, "tmpvrmBoP.lst")))
}

func TestExtract_SniffedExtension(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeContainer(t, dir, "res.npk", V2,
		testutil.ScriptManifest(t, "ui/icon.txt"),
		testutil.LZ4(t, HashPath("ui/icon.txt"), pngPayload),
	)
	c, err := Open(path)
	require.NoError(t, err)
	defer c.Close()

	pm, err := ResolvePathMap(c)
	require.NoError(t, err)

	out := filepath.Join(dir, "out")
	_, err = c.Extract(context.Background(), pm, out)
	require.NoError(t, err)

	assert.Equal(t, pngPayload, readFile(t, filepath.Join(out, "ui", "icon.png")))
	assert.NoFileExists(t, filepath.Join(out, "ui", "icon.txt"))
}

func TestExtract_UnknownCount(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeContainer(t, dir, "res.npk", V2,
		testutil.Stored(11, []byte("x")),
		testutil.ScriptManifest(t, "foo/bar.txt"),
		testutil.Stored(fooBarHash, []byte("known")),
		testutil.Stored(22, []byte("y")),
		testutil.LZ4(t, 33, []byte("zzzz")),
	)
	c, err := Open(path)
	require.NoError(t, err)
	defer c.Close()

	pm, err := ResolvePathMap(c)
	require.NoError(t, err)

	out := filepath.Join(dir, "out")
	stats, err := c.Extract(context.Background(), pm, out)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Unknown)
	assert.Equal(t, 5, stats.Written)
	assert.ElementsMatch(t, []string{
		"_unknown_11", "_unknown_22", "_unknown_33", "foo/bar.txt", "tmpvrmBoP.lst",
	}, listFiles(t, out))
	assert.Equal(t, []byte("zzzz"), readFile(t, filepath.Join(out, UnknownName(33))))
}

func TestExtract_ResourceManifest(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeContainer(t, dir, "res0.npk", V2,
		testutil.ResourceManifest(t, "12345 res/a.png", "67890\tres/b.dat"),
		testutil.Stored(12345, pngPayload),
		testutil.Stored(67890, []byte("data")),
	)
	c, err := Open(path)
	require.NoError(t, err)
	defer c.Close()

	pm, err := ResolvePathMap(c)
	require.NoError(t, err)
	assert.Equal(t, 2, pm.Len())

	out := filepath.Join(dir, "out")
	stats, err := c.Extract(context.Background(), pm, out)
	require.NoError(t, err)
	assert.Zero(t, stats.Unknown)
	assert.ElementsMatch(t, []string{"filelist.txt", "res/a.png", "res/b.dat"}, listFiles(t, out))
	assert.Equal(t, "12345 res/a.png\n67890\tres/b.dat", string(readFile(t, filepath.Join(out, "filelist.txt"))))
}

func TestExtract_V1(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeContainer(t, dir, "old.npk", V1,
		testutil.Stored(0xABCDEF, []byte("first")),
		testutil.LZ4(t, 0x123456, pngPayload),
	)
	c, err := Open(path)
	require.NoError(t, err)
	defer c.Close()
	assert.Equal(t, V1, c.Version())

	pm, err := ResolvePathMap(c)
	require.NoError(t, err)
	assert.Zero(t, pm.Len())

	out := filepath.Join(dir, "out")
	stats, err := c.Extract(context.Background(), pm, out)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Unknown)
	assert.ElementsMatch(t, []string{UnknownName(0xABCDEF), UnknownName(0x123456) + ".png"}, listFiles(t, out))
}

func TestResolvePathMap_CorruptManifest(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeContainer(t, dir, "bad.npk", V2,
		testutil.BuildEntry{
			Hash:             ScriptManifestHash,
			Stored:           []byte{0xff, 0xff, 0xff, 0xff},
			UncompressedSize: 100,
			CompressionCode:  2,
		},
		testutil.Stored(fooBarHash, []byte("known")),
	)
	c, err := Open(path)
	require.NoError(t, err)
	defer c.Close()

	pm, err := ResolvePathMap(c)
	require.NoError(t, err)
	assert.Zero(t, pm.Len())
}

func TestOpen_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	_, err := Open(filepath.Join(dir, "missing.npk"))
	require.ErrorIs(t, err, ErrNotFound)

	notNPK := testutil.WriteFile(t, dir, "plain.npk", []byte("PK\x03\x04 not a container"))
	_, err = Open(notNPK)
	require.ErrorIs(t, err, ErrNotAContainer)

	image := testutil.BuildContainer(t, V2, []testutil.BuildEntry{testutil.Stored(1, []byte("a"))})
	truncated := testutil.WriteFile(t, dir, "short.npk", image[:len(image)-3])
	_, err = Open(truncated)
	require.ErrorIs(t, err, ErrUnsupportedVersion)
}

func TestContainer_ReadEntry(t *testing.T) {
	t.Parallel()

	c, err := OpenSource("mem.npk", testutil.NewMockByteSource(testutil.BuildContainer(t, V2, []testutil.BuildEntry{
		testutil.LZ4(t, 7, []byte("payload payload payload")),
	})))
	require.NoError(t, err)
	defer c.Close()

	entries := c.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, CompressionLZ4, entries[0].Compression())

	data, err := c.ReadEntry(entries[0])
	require.NoError(t, err)
	assert.Equal(t, []byte("payload payload payload"), data)

	entries[0].NameHash = 99
	assert.Equal(t, uint64(7), c.Entries()[0].NameHash)
}

func TestContainer_Inspect(t *testing.T) {
	t.Parallel()

	c, err := OpenSource("mem.npk", testutil.NewMockByteSource(testutil.BuildContainer(t, V2, []testutil.BuildEntry{
		testutil.Stored(1, []byte("a")),
		testutil.LZ4(t, 2, []byte("bbbb")),
	})))
	require.NoError(t, err)

	var header bytes.Buffer
	require.NoError(t, c.WriteHeader(&header))
	assert.Contains(t, header.String(), "nb_files:   2")
	assert.Contains(t, header.String(), "info_size:  40")
	assert.Contains(t, header.String(), "version:    2")

	var out bytes.Buffer
	require.NoError(t, c.WriteCSV(&out))
	rows, err := csv.NewReader(&out).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, csvColumns, rows[0])
	assert.Equal(t, "0", rows[1][0])
	assert.Equal(t, "1", rows[1][1])
	assert.Equal(t, "2", rows[2][1])
	assert.Equal(t, "2", rows[2][11])
}

func TestContainer_InspectV1(t *testing.T) {
	t.Parallel()

	c, err := OpenSource("v1.npk", testutil.NewMockByteSource(testutil.BuildContainer(t, V1, []testutil.BuildEntry{
		testutil.Stored(5, []byte("a")),
	})))
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, c.WriteCSV(&out))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "0,5,24,1,1,,0,,,,,0,0,0", lines[1])
}

func TestPrepareOutputDir(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "a", "b")
	nonEmpty, err := PrepareOutputDir(dir)
	require.NoError(t, err)
	assert.False(t, nonEmpty)
	assert.DirExists(t, dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "f"), nil, 0o600))
	nonEmpty, err = PrepareOutputDir(dir)
	require.NoError(t, err)
	assert.True(t, nonEmpty)
}

func TestDefaultOutputDir(t *testing.T) {
	t.Parallel()

	assert.Equal(t, filepath.Join("/data", "game", "script"), DefaultOutputDir("/data/game/script.npk"))
	assert.Equal(t, filepath.Join("/data", "res"), DefaultOutputDir("/data/res"))
}
