// Package header reads the fixed container header and the entry map.
//
// The map holds EntryCount fixed-size records starting at MapOffset and
// running to the end of the file. The record size is derived from the file
// size and selects one of two layouts:
//
//	v1 (28 bytes): hash u32, offset u32, csize u32, usize u32, reserved u64,
//	               compression u16, encryption u8, large offset u8
//	v2 (40 bytes): hash u64, offset u32, csize u32, usize u32, reserved u32,
//	               reserved u64, 4 x reserved u8, compression u16,
//	               encryption u8, large offset u8
//
// All integers are little-endian.
package header

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/meigma/npk/internal/npktype"
)

type (
	Header  = npktype.Header
	Entry   = npktype.Entry
	Version = npktype.Version
)

// Source provides random access to container bytes.
type Source interface {
	io.ReaderAt
	Size() int64
}

// rawHeader mirrors the first HeaderSize bytes of a container.
type rawHeader struct {
	Magic                [4]byte
	EntryCount           uint32
	LargeFileIndexOffset uint32
	Reserved0            uint32
	Reserved1            uint32
	MapOffset            uint32
}

type v1Record struct {
	NameHash         uint32
	Offset           uint32
	CompressedSize   uint32
	UncompressedSize uint32
	Field16          uint64
	Compression      uint16
	Encryption       uint8
	LargeOffset      uint8
}

type v2Record struct {
	NameHash         uint64
	Offset           uint32
	CompressedSize   uint32
	UncompressedSize uint32
	Field20          uint32
	Field24          uint64
	Field32          uint8
	Field33          uint8
	Field34          uint8
	Field35          uint8
	Compression      uint16
	Encryption       uint8
	LargeOffset      uint8
}

// CheckMagic reports whether src starts with the container magic.
func CheckMagic(src io.ReaderAt) (bool, error) {
	var magic [4]byte
	n, err := src.ReadAt(magic[:], 0)
	if n < len(magic) {
		if err == nil || errors.Is(err, io.EOF) {
			return false, nil
		}
		return false, err
	}
	return magic == npktype.Magic, nil
}

// ReadHeader reads and validates the fixed header, including the layout
// version derived from the map size.
func ReadHeader(src Source) (Header, error) {
	ok, err := CheckMagic(src)
	if err != nil {
		return Header{}, err
	}
	if !ok {
		return Header{}, npktype.ErrNotAContainer
	}

	size := src.Size()
	if size < npktype.HeaderSize {
		return Header{}, fmt.Errorf("%w: file is %d bytes", npktype.ErrInconsistentSize, size)
	}

	var raw rawHeader
	if err := binary.Read(io.NewSectionReader(src, 0, npktype.HeaderSize), binary.LittleEndian, &raw); err != nil {
		return Header{}, fmt.Errorf("read header: %w", err)
	}

	h := Header{
		TotalSize:            uint64(size),
		EntryCount:           raw.EntryCount,
		LargeFileIndexOffset: raw.LargeFileIndexOffset,
		Reserved0:            raw.Reserved0,
		Reserved1:            raw.Reserved1,
		MapOffset:            raw.MapOffset,
	}

	if h.EntryCount == 0 {
		return Header{}, fmt.Errorf("%w: no entries", npktype.ErrInconsistentSize)
	}
	if uint64(h.MapOffset) > h.TotalSize {
		return Header{}, fmt.Errorf("%w: map offset %d beyond file size %d",
			npktype.ErrInconsistentSize, h.MapOffset, h.TotalSize)
	}

	mapSize := h.TotalSize - uint64(h.MapOffset)
	if mapSize%uint64(h.EntryCount) != 0 {
		return Header{}, fmt.Errorf("%w: map of %d bytes for %d entries",
			npktype.ErrInconsistentSize, mapSize, h.EntryCount)
	}
	recordSize := mapSize / uint64(h.EntryCount)

	h.Version = npktype.VersionForRecordSize(recordSize)
	if h.Version == npktype.VersionUnknown {
		return Header{}, fmt.Errorf("%w: record size %d", npktype.ErrUnsupportedVersion, recordSize)
	}
	h.RecordSize = uint32(recordSize) //nolint:gosec // one of the two known sizes

	return h, nil
}

// ReadMap reads the entry records described by h.
//
// v2 records are read at their computed offset one by one; v1 records are
// read sequentially from the start of the map.
func ReadMap(src Source, h Header) ([]Entry, error) {
	entries := make([]Entry, 0, h.EntryCount)
	switch h.Version {
	case npktype.V1:
		r := bufio.NewReader(io.NewSectionReader(src, int64(h.MapOffset), int64(h.TotalSize)-int64(h.MapOffset)))
		for i := range int(h.EntryCount) {
			var rec v1Record
			if err := binary.Read(r, binary.LittleEndian, &rec); err != nil {
				return nil, fmt.Errorf("read entry %d: %w", i, err)
			}
			entries = append(entries, fromV1(i, rec))
		}
	case npktype.V2:
		buf := make([]byte, h.Version.RecordSize())
		for i := range int(h.EntryCount) {
			off := int64(h.MapOffset) + int64(i)*int64(h.RecordSize)
			if _, err := src.ReadAt(buf, off); err != nil && !errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("read entry %d: %w", i, err)
			}
			var rec v2Record
			if err := binary.Read(bytes.NewReader(buf), binary.LittleEndian, &rec); err != nil {
				return nil, fmt.Errorf("read entry %d: %w", i, err)
			}
			entries = append(entries, fromV2(i, rec))
		}
	default:
		return nil, fmt.Errorf("%w: version %d", npktype.ErrUnsupportedVersion, h.Version)
	}
	return entries, nil
}

// Read reads the header and the full entry map.
func Read(src Source) (Header, []Entry, error) {
	h, err := ReadHeader(src)
	if err != nil {
		return Header{}, nil, err
	}
	entries, err := ReadMap(src, h)
	if err != nil {
		return Header{}, nil, err
	}
	return h, entries, nil
}

func fromV1(i int, rec v1Record) Entry {
	return Entry{
		Index:            i,
		Version:          npktype.V1,
		NameHash:         uint64(rec.NameHash),
		Offset:           rec.Offset,
		CompressedSize:   rec.CompressedSize,
		UncompressedSize: rec.UncompressedSize,
		Field16:          rec.Field16,
		CompressionCode:  rec.Compression,
		EncryptionCode:   rec.Encryption,
		LargeOffset:      rec.LargeOffset,
	}
}

func fromV2(i int, rec v2Record) Entry {
	return Entry{
		Index:            i,
		Version:          npktype.V2,
		NameHash:         rec.NameHash,
		Offset:           rec.Offset,
		CompressedSize:   rec.CompressedSize,
		UncompressedSize: rec.UncompressedSize,
		Field20:          rec.Field20,
		Field24:          rec.Field24,
		Field32:          rec.Field32,
		Field33:          rec.Field33,
		Field34:          rec.Field34,
		Field35:          rec.Field35,
		CompressionCode:  rec.Compression,
		EncryptionCode:   rec.Encryption,
		LargeOffset:      rec.LargeOffset,
	}
}
