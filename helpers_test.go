package npk

import (
	"bytes"
	"encoding/hex"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/require"

	"github.com/meigma/npk/internal/testutil"
)

// goldenNXS decrypts to a cpyc header followed by filler text.
const goldenNXS = "1d04155dab330e1f0225e65dd01593ab048aa8fabe966a791db4d0e4d13554cf" +
	"69e1a7406521b1eb16c6f8e9663164b9dcd19fcd693826ae569308b480"

var (
	pngPayload = []byte("\x89PNG\r\n\x1a\n fake image data")
	pycPayload = []byte("\x03\xf3\r\n compiled bytecode")
)

func goldenNXSBytes(t *testing.T) []byte {
	t.Helper()
	data, err := hex.DecodeString(goldenNXS)
	require.NoError(t, err)
	return data
}

func goldenNXSPlain() []byte {
	return append([]byte("c\x00\x00\x00\x00\x00\x00\x00\x00"),
		bytes.Repeat([]byte("compiled script body "), 8)...)
}

// writeContainer builds a container image and writes it to dir/name.
func writeContainer(t *testing.T, dir, name string, version Version, entries ...testutil.BuildEntry) string {
	t.Helper()
	return testutil.WriteFile(t, dir, name, testutil.BuildContainer(t, version, entries))
}

// zipBytes builds a zip archive holding files, in sorted name order.
func zipBytes(t *testing.T, files map[string][]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range slices.Sorted(maps.Keys(files)) {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write(files[name])
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func readFile(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}

func listFiles(t *testing.T, root string) []string {
	t.Helper()
	var out []string
	require.NoError(t, filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			out = append(out, filepath.ToSlash(rel))
		}
		return nil
	}))
	return out
}
