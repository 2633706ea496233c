package npktype

// Magic is the four-byte signature at the start of every container.
var Magic = [4]byte{'N', 'X', 'P', 'K'}

// Manifest hashes. Entries bearing these hashes hold the embedded file list.
const (
	ScriptManifestHash   uint64 = 0x4557903497D4CDAA
	ResourceManifestHash uint64 = 0xD4A17339F75381FD
)

// Reserved output names for manifest entries that are not themselves listed
// in the path map.
const (
	ScriptManifestName   = "tmpvrmBoP.lst"
	ResourceManifestName = "filelist.txt"
)

// LargeOffsetShift is applied to the large-offset flag to obtain the real
// offset of entries stored beyond 32-bit addressing.
//
// TODO: verify the shift against a container that actually sets the flag.
const LargeOffsetShift = 20

// Version selects the entry record layout.
type Version uint8

const (
	VersionUnknown Version = 0
	V1             Version = 1
	V2             Version = 2
)

// Record sizes of the two entry layouts.
const (
	V1RecordSize = 28
	V2RecordSize = 40
)

// VersionForRecordSize returns the layout selected by a record size.
func VersionForRecordSize(size uint64) Version {
	switch size {
	case V1RecordSize:
		return V1
	case V2RecordSize:
		return V2
	default:
		return VersionUnknown
	}
}

// RecordSize returns the on-disk size of one entry record.
func (v Version) RecordSize() int {
	switch v {
	case V1:
		return V1RecordSize
	case V2:
		return V2RecordSize
	default:
		return 0
	}
}

// HeaderSize is the number of bytes occupied by the fixed header fields.
const HeaderSize = 0x18

// Header is the fixed container header.
type Header struct {
	// TotalSize is the size of the container file in bytes.
	TotalSize uint64

	// EntryCount is the number of records in the map.
	EntryCount uint32

	// LargeFileIndexOffset is read from 0x8. Its meaning is not known.
	LargeFileIndexOffset uint32

	// Reserved0 and Reserved1 are read from 0xC and 0x10.
	Reserved0 uint32
	Reserved1 uint32

	// MapOffset is the byte offset of the first entry record.
	MapOffset uint32

	// RecordSize is (TotalSize - MapOffset) / EntryCount.
	RecordSize uint32

	// Version is selected by RecordSize.
	Version Version
}

// Entry is one record of a container map.
//
// Both layouts decode into the same struct; Version tells which fields were
// present on disk. Fields that only exist in v2 are zero for v1 entries and
// Field16 is only set for v1.
type Entry struct {
	// Index is the zero-based position of the record in the map.
	Index int

	Version Version

	// NameHash is the structural hash identifying the entry. v1 stores 32 bits.
	NameHash uint64

	// Offset is the stored 32-bit file offset.
	Offset uint32

	CompressedSize   uint32
	UncompressedSize uint32

	// Field16 is the reserved 64-bit v1 field at record offset 16.
	Field16 uint64

	// Reserved v2 fields, named after their record offset.
	Field20 uint32
	Field24 uint64
	Field32 uint8
	Field33 uint8
	Field34 uint8
	Field35 uint8

	CompressionCode uint16
	EncryptionCode  uint8
	LargeOffset     uint8
}

// DataOffset returns the resolved offset of the entry payload, honouring the
// large-offset flag.
func (e *Entry) DataOffset() uint64 {
	if e.LargeOffset != 0 {
		return uint64(e.LargeOffset) << LargeOffsetShift
	}
	return uint64(e.Offset)
}

// Compression returns the decoded compression variant.
func (e *Entry) Compression() Compression {
	return CompressionFromCode(e.CompressionCode)
}

// Encryption returns the decoded encryption variant.
func (e *Entry) Encryption() Encryption {
	return EncryptionFromCode(e.EncryptionCode)
}
