package testutil

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/klauspost/compress/zlib"
	"github.com/pierrec/lz4/v4"

	"github.com/meigma/npk/internal/npktype"
)

// BuildEntry describes one entry of a synthetic container.
type BuildEntry struct {
	// Hash is the structural hash. v1 containers keep the low 32 bits.
	Hash uint64

	// Stored is written verbatim to the data region.
	Stored []byte

	// UncompressedSize is written to the record as is.
	UncompressedSize uint32

	CompressionCode uint16
	EncryptionCode  uint8

	// LargeOffset is written to the record; the stored offset is still the
	// real one, so tests that set it must place data accordingly.
	LargeOffset uint8
}

// Stored returns an entry whose payload is stored uncompressed.
func Stored(hash uint64, payload []byte) BuildEntry {
	return BuildEntry{
		Hash:             hash,
		Stored:           payload,
		UncompressedSize: uint32(len(payload)), //nolint:gosec // test payloads are small
	}
}

// LZ4 returns an entry whose payload is a raw LZ4 block (compression code 2).
func LZ4(tb testing.TB, hash uint64, payload []byte) BuildEntry {
	tb.Helper()
	return BuildEntry{
		Hash:             hash,
		Stored:           EncodeLZ4(tb, payload),
		UncompressedSize: uint32(len(payload)), //nolint:gosec // test payloads are small
		CompressionCode:  2,
	}
}

// ScriptManifest returns the LZ4-encoded script manifest entry listing paths.
func ScriptManifest(tb testing.TB, paths ...string) BuildEntry {
	tb.Helper()
	return LZ4(tb, npktype.ScriptManifestHash, []byte(strings.Join(paths, "\n")+"\n"))
}

// ResourceManifest returns the resource manifest entry: LZ4 over a zlib
// stream of "<hash> <path>" lines.
func ResourceManifest(tb testing.TB, lines ...string) BuildEntry {
	tb.Helper()
	inner := Deflate(tb, []byte(strings.Join(lines, "\n")))
	return LZ4(tb, npktype.ResourceManifestHash, inner)
}

// EncodeLZ4 encodes payload as one raw LZ4 block.
func EncodeLZ4(tb testing.TB, payload []byte) []byte {
	tb.Helper()
	dst := make([]byte, lz4.CompressBlockBound(len(payload)))
	n, err := lz4.CompressBlock(payload, dst, nil)
	if err != nil {
		tb.Fatalf("lz4 compress: %v", err)
	}
	return dst[:n]
}

// Deflate encodes payload as a zlib stream.
func Deflate(tb testing.TB, payload []byte) []byte {
	tb.Helper()
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	if _, err := w.Write(payload); err != nil {
		tb.Fatalf("zlib write: %v", err)
	}
	if err := w.Close(); err != nil {
		tb.Fatalf("zlib close: %v", err)
	}
	return buf.Bytes()
}

// BuildContainer assembles a container image: header, payloads in entry
// order, then the map at the end of the file so the record size equals
// the layout size.
func BuildContainer(tb testing.TB, version npktype.Version, entries []BuildEntry) []byte {
	tb.Helper()

	var buf bytes.Buffer
	buf.Write(npktype.Magic[:])
	header := make([]byte, npktype.HeaderSize-len(npktype.Magic))
	buf.Write(header)

	offsets := make([]uint32, len(entries))
	for i, e := range entries {
		offsets[i] = uint32(buf.Len()) //nolint:gosec // test images are small
		buf.Write(e.Stored)
	}
	mapOffset := uint32(buf.Len()) //nolint:gosec // test images are small

	le := binary.LittleEndian
	for i, e := range entries {
		switch version {
		case npktype.V1:
			rec := make([]byte, npktype.V1RecordSize)
			le.PutUint32(rec[0:], uint32(e.Hash)) //nolint:gosec // v1 keeps 32 bits
			le.PutUint32(rec[4:], offsets[i])
			le.PutUint32(rec[8:], uint32(len(e.Stored))) //nolint:gosec // test images are small
			le.PutUint32(rec[12:], e.UncompressedSize)
			le.PutUint16(rec[24:], e.CompressionCode)
			rec[26] = e.EncryptionCode
			rec[27] = e.LargeOffset
			buf.Write(rec)
		case npktype.V2:
			rec := make([]byte, npktype.V2RecordSize)
			le.PutUint64(rec[0:], e.Hash)
			le.PutUint32(rec[8:], offsets[i])
			le.PutUint32(rec[12:], uint32(len(e.Stored))) //nolint:gosec // test images are small
			le.PutUint32(rec[16:], e.UncompressedSize)
			le.PutUint16(rec[36:], e.CompressionCode)
			rec[38] = e.EncryptionCode
			rec[39] = e.LargeOffset
			buf.Write(rec)
		default:
			tb.Fatalf("unsupported version %d", version)
		}
	}

	out := buf.Bytes()
	le.PutUint32(out[0x4:], uint32(len(entries))) //nolint:gosec // test images are small
	le.PutUint32(out[0x14:], mapOffset)
	return out
}
