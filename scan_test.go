package npk

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/npk/internal/testutil"
)

func TestSniff_Priority(t *testing.T) {
	t.Parallel()

	assert.Equal(t, KindNone, Sniff(nil))
	assert.Equal(t, KindUnknown, Sniff([]byte("hello")))
	assert.Equal(t, Kind("type2"), Sniff([]byte{0x04, 0, 0, 0}))
	assert.Equal(t, Kind("type1"), Sniff([]byte{0x14, 0, 0, 0}))
	assert.Equal(t, KindPNG, Sniff(pngPayload))
	assert.Equal(t, KindPYC, Sniff(pycPayload))
	assert.Equal(t, KindUnknown, Kinds()[len(Kinds())-1])
}

func TestScan(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	testutil.WriteFile(t, root, "a/icon.png", pngPayload)
	testutil.WriteFile(t, root, "a/b/main.pyc", pycPayload)
	testutil.WriteFile(t, root, "c/other.png", pngPayload)
	testutil.WriteFile(t, root, "notes.txt", []byte("hello"))
	testutil.WriteFile(t, root, "empty", nil)

	report, err := Scan(root)
	require.NoError(t, err)

	assert.Equal(t, map[Kind]int{
		KindUnknown: 1,
		KindNone:    1,
		KindPNG:     2,
		KindPYC:     1,
	}, report.Counts)
	assert.Len(t, report.Files, 4)

	var listing bytes.Buffer
	require.NoError(t, report.WriteListing(&listing))
	assert.Contains(t, listing.String(), " png  - "+filepath.Join(root, "a", "icon.png")+"\n")
	assert.Contains(t, listing.String(), " pyc  - "+filepath.Join(root, "a", "b", "main.pyc")+"\n")

	var js bytes.Buffer
	require.NoError(t, report.WriteJSON(&js))
	assert.Equal(t, "{\n    \"none\": 1,\n    \"png\": 2,\n    \"pyc\": 1,\n    \"unknown\": 1\n}\n", js.String())
}

func TestScan_EmptyTree(t *testing.T) {
	t.Parallel()

	report, err := Scan(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, map[Kind]int{KindUnknown: 0}, report.Counts)

	var js bytes.Buffer
	require.NoError(t, report.WriteJSON(&js))
	assert.Equal(t, "{\n    \"unknown\": 0\n}\n", js.String())
}

func TestScan_MissingRoot(t *testing.T) {
	t.Parallel()

	_, err := Scan(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
}
