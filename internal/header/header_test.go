package header

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/npk/internal/npktype"
	"github.com/meigma/npk/internal/testutil"
)

func TestRead_V2(t *testing.T) {
	t.Parallel()

	entries := []testutil.BuildEntry{
		testutil.Stored(0x1122334455667788, []byte("first")),
		testutil.LZ4(t, 0xAABBCCDDEEFF0011, []byte("second payload second payload")),
	}
	data := testutil.BuildContainer(t, npktype.V2, entries)
	src := testutil.NewMockByteSource(data)

	h, got, err := Read(src)
	require.NoError(t, err)

	assert.Equal(t, npktype.V2, h.Version)
	assert.Equal(t, uint32(40), h.RecordSize)
	assert.Equal(t, uint32(2), h.EntryCount)
	assert.Equal(t, uint64(len(data)), h.TotalSize)
	assert.Equal(t, uint64(h.EntryCount)*uint64(h.RecordSize), h.TotalSize-uint64(h.MapOffset))

	require.Len(t, got, 2)
	assert.Equal(t, 0, got[0].Index)
	assert.Equal(t, uint64(0x1122334455667788), got[0].NameHash)
	assert.Equal(t, uint32(npktype.HeaderSize), got[0].Offset)
	assert.Equal(t, uint32(5), got[0].CompressedSize)
	assert.Equal(t, npktype.CompressionStore, got[0].Compression())

	assert.Equal(t, 1, got[1].Index)
	assert.Equal(t, uint64(0xAABBCCDDEEFF0011), got[1].NameHash)
	assert.Equal(t, npktype.CompressionLZ4, got[1].Compression())
	assert.Equal(t, uint32(len("second payload second payload")), got[1].UncompressedSize)
}

func TestRead_V1(t *testing.T) {
	t.Parallel()

	entries := []testutil.BuildEntry{
		testutil.Stored(0xFFFFFFFF12345678, []byte("a")),
		testutil.Stored(0x9, []byte("bb")),
		testutil.Stored(0xA, []byte("ccc")),
	}
	data := testutil.BuildContainer(t, npktype.V1, entries)

	h, got, err := Read(testutil.NewMockByteSource(data))
	require.NoError(t, err)

	assert.Equal(t, npktype.V1, h.Version)
	assert.Equal(t, uint32(28), h.RecordSize)
	require.Len(t, got, 3)
	// v1 stores 32-bit hashes.
	assert.Equal(t, uint64(0x12345678), got[0].NameHash)
	assert.Equal(t, npktype.V1, got[0].Version)
	assert.Equal(t, uint32(3), got[2].CompressedSize)
	assert.Equal(t, 2, got[2].Index)
}

func TestReadHeader_Errors(t *testing.T) {
	t.Parallel()

	valid := testutil.BuildContainer(t, npktype.V2, []testutil.BuildEntry{
		testutil.Stored(1, []byte("x")),
	})

	tests := []struct {
		name    string
		mutate  func([]byte) []byte
		wantErr error
	}{
		{
			name:    "bad magic",
			mutate:  func(b []byte) []byte { b[0] = 'X'; return b },
			wantErr: npktype.ErrNotAContainer,
		},
		{
			name:    "too short for magic",
			mutate:  func(b []byte) []byte { return b[:2] },
			wantErr: npktype.ErrNotAContainer,
		},
		{
			name: "zero entries",
			mutate: func(b []byte) []byte {
				binary.LittleEndian.PutUint32(b[4:], 0)
				return b
			},
			wantErr: npktype.ErrInconsistentSize,
		},
		{
			name: "map offset beyond file",
			mutate: func(b []byte) []byte {
				binary.LittleEndian.PutUint32(b[0x14:], uint32(len(b)+1))
				return b
			},
			wantErr: npktype.ErrInconsistentSize,
		},
		{
			name: "unsupported record size",
			mutate: func(b []byte) []byte {
				// 40 + 4 = 44 bytes per record for one entry.
				return append(b, 0, 0, 0, 0)
			},
			wantErr: npktype.ErrUnsupportedVersion,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			data := tt.mutate(append([]byte(nil), valid...))
			_, err := ReadHeader(testutil.NewMockByteSource(data))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestReadHeader_InconsistentWithTwoEntries(t *testing.T) {
	t.Parallel()

	data := testutil.BuildContainer(t, npktype.V2, []testutil.BuildEntry{
		testutil.Stored(1, []byte("x")),
		testutil.Stored(2, []byte("y")),
	})
	// 81 bytes of map for two entries is not integral.
	data = append(data, 0)
	_, err := ReadHeader(testutil.NewMockByteSource(data))
	assert.ErrorIs(t, err, npktype.ErrInconsistentSize)
}

func TestRead_FieldsAndLargeOffset(t *testing.T) {
	t.Parallel()

	e := testutil.Stored(7, []byte("payload"))
	e.EncryptionCode = 3
	e.LargeOffset = 2
	data := testutil.BuildContainer(t, npktype.V2, []testutil.BuildEntry{e})

	_, got, err := Read(testutil.NewMockByteSource(data))
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, uint8(3), got[0].EncryptionCode)
	assert.Equal(t, npktype.EncryptionUnknown, got[0].Encryption())
	assert.Equal(t, uint64(2)<<20, got[0].DataOffset())
}
