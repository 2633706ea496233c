// Package magic classifies byte buffers by their leading signature.
package magic

import (
	"bytes"
	"io"
	"os"
)

// Kind is the classification of a buffer. Its value doubles as the file
// extension given to extracted payloads.
type Kind string

// Known kinds, in signature priority order.
const (
	None    Kind = "none"
	Unknown Kind = "unknown"

	APK   Kind = "apk"
	EPK   Kind = "epk"
	NPK   Kind = "npk"
	NXS   Kind = "nxs"
	CPYC  Kind = "cpyc"
	PYC   Kind = "pyc"
	COC   Kind = "coc"
	HIT   Kind = "hit"
	PKM   Kind = "pkm"
	PVR   Kind = "pvr"
	DDS   Kind = "dds"
	KTX   Kind = "ktx"
	PNG   Kind = "png"
	Mesh  Kind = "mesh"
	Type1 Kind = "type1"
	Type2 Kind = "type2"
	Type3 Kind = "type3"
	VANT  Kind = "vant"
	MDMP  Kind = "mdmp"
	RGIS  Kind = "rgis"
	NTRK  Kind = "ntrk"
	RIFF  Kind = "riff"
	BNK   Kind = "bnk"
)

// signature maps a byte pattern at an offset to a kind.
type signature struct {
	offset int
	magic  []byte
	kind   Kind
}

// signatures is checked in order and the first match wins. The four-byte
// little-endian integer signatures must stay after every other four-byte
// signature they could shadow.
//
//nolint:gochecknoglobals
var signatures = []signature{
	{0, []byte("PK\x03\x04"), APK},
	{0, []byte("EXPK"), EPK},
	{0, []byte("NXPK"), NPK},
	{0, []byte{0x1d, 0x04}, NXS},
	{0, []byte("c\x00\x00\x00\x00\x00\x00\x00\x00"), CPYC},
	{0, []byte("\x03\xf3\r\n"), PYC},
	{0, []byte("CocosStudio-UI"), COC},
	{0, []byte("hit"), HIT},
	{0, []byte("PKM"), PKM},
	{0, []byte("PVR"), PVR},
	{0, []byte("DDS"), DDS},
	{1, []byte("KTX"), KTX},
	{1, []byte("PNG"), PNG},
	{0, []byte{0x34, 0x80, 0xC8, 0xBB}, Mesh},
	{0, []byte{0x14, 0x00, 0x00, 0x00}, Type1},
	{0, []byte{0x04, 0x00, 0x00, 0x00}, Type2},
	{0, []byte{0x00, 0x01, 0x00, 0x00}, Type3},
	{0, []byte("VANT"), VANT},
	{0, []byte("MDMP"), MDMP},
	{0, []byte("RGIS"), RGIS},
	{0, []byte("NTRK"), NTRK},
	{0, []byte("RIFF"), RIFF},
	{0, []byte("BKHD"), BNK},
}

// MaxSignatureLen is the number of leading bytes Sniff ever looks at.
const MaxSignatureLen = 16

// Sniff classifies data. It returns None for an empty buffer and Unknown
// when no signature matches.
func Sniff(data []byte) Kind {
	if len(data) == 0 {
		return None
	}
	for _, sig := range signatures {
		end := sig.offset + len(sig.magic)
		if len(data) < end {
			continue
		}
		if bytes.Equal(data[sig.offset:end], sig.magic) {
			return sig.kind
		}
	}
	return Unknown
}

// SniffReader classifies the first bytes read from r.
func SniffReader(r io.Reader) (Kind, error) {
	buf := make([]byte, MaxSignatureLen)
	n, err := io.ReadFull(r, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return Unknown, err
	}
	return Sniff(buf[:n]), nil
}

// SniffFile classifies the file at path.
func SniffFile(path string) (Kind, error) {
	f, err := os.Open(path)
	if err != nil {
		return Unknown, err
	}
	defer f.Close()
	return SniffReader(f)
}

// Known reports whether k names a concrete format, that is neither None nor
// Unknown. Extraction only trusts known kinds to rename outputs.
func (k Kind) Known() bool {
	return k != None && k != Unknown && k != ""
}

// Ext returns the kind as a file extension with a leading dot.
func (k Kind) Ext() string {
	return "." + string(k)
}

// Kinds returns every kind Sniff can produce from a non-empty buffer, in
// priority order, followed by Unknown.
func Kinds() []Kind {
	out := make([]Kind, 0, len(signatures)+1)
	for _, sig := range signatures {
		out = append(out, sig.kind)
	}
	return append(out, Unknown)
}
