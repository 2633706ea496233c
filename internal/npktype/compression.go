package npktype

import "fmt"

// Compression identifies the transform applied to an entry payload.
//
// Only the codes below are defined by the format. Every other raw value
// decodes to CompressionStore, see CompressionFromCode.
type Compression uint8

const (
	// CompressionStore means the payload is stored as is.
	CompressionStore Compression = iota
	// CompressionDeflate is code 1. It is recognised but not part of the
	// observed extraction path, so payloads are flagged when it appears.
	CompressionDeflate
	// CompressionLZ4 is code 2, a raw LZ4 block.
	CompressionLZ4
)

// CompressionFromCode maps the on-disk 16-bit code to a Compression.
func CompressionFromCode(code uint16) Compression {
	switch code {
	case 1:
		return CompressionDeflate
	case 2:
		return CompressionLZ4
	default:
		return CompressionStore
	}
}

func (c Compression) String() string {
	switch c {
	case CompressionStore:
		return "store"
	case CompressionDeflate:
		return "deflate"
	case CompressionLZ4:
		return "lz4"
	default:
		return fmt.Sprintf("compression(%d)", uint8(c))
	}
}

// Encryption identifies the per-entry encryption code. No container seen so
// far carries a non-zero code; the value is kept for inspection output.
type Encryption uint8

const (
	EncryptionNone Encryption = iota
	EncryptionUnknown
)

// EncryptionFromCode maps the on-disk 8-bit code to an Encryption.
func EncryptionFromCode(code uint8) Encryption {
	if code == 0 {
		return EncryptionNone
	}
	return EncryptionUnknown
}

func (e Encryption) String() string {
	if e == EncryptionNone {
		return "none"
	}
	return "unknown"
}
