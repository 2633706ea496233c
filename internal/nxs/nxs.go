// Package nxs decodes encrypted script payloads.
//
// An NXS payload is produced by reversing the plaintext, masking its first
// 128 bytes with 0x9A, compressing the result with zlib and enciphering the
// stream with a six-rotor machine keyed by a fixed passphrase. Decrypt undoes
// those steps in reverse order.
package nxs

import (
	"bytes"
	"fmt"
	"slices"
	"strings"

	"github.com/klauspost/compress/zlib"

	"github.com/meigma/npk/internal/fileops"
	"github.com/meigma/npk/internal/magic"
	"github.com/meigma/npk/internal/npktype"
	"github.com/meigma/npk/internal/rotor"
)

const (
	// MaskedPrefix is the number of leading bytes masked with MaskByte.
	MaskedPrefix = 128
	// MaskByte is XORed into the first MaskedPrefix bytes.
	MaskByte = 0x9A

	// sniffLen is how much of the payload must classify as nxs.
	sniffLen = 12
)

// Key returns the rotor passphrase. It is built from three fragments in a
// fixed pattern.
func Key() []byte {
	const (
		dn = "j2h56ogodh3se"
		dt = "=dziaq."
		df = `|os=5v7!"-234`
	)
	var b strings.Builder
	b.WriteString(strings.Repeat(dn, 4))
	b.WriteString(strings.Repeat(dt+dn+df, 5))
	b.WriteString("!#")
	b.WriteString(strings.Repeat(dt, 7))
	b.WriteString(strings.Repeat(df, 2))
	b.WriteString("*&'")
	return []byte(b.String())
}

// Codec decrypts and encrypts payloads. The zero value is not usable; create
// one with New. A Codec is not safe for concurrent use.
type Codec struct {
	rotor *rotor.Rotor
	pool  *fileops.InflatePool
}

// New returns a Codec keyed with Key. pool may be nil.
func New(pool *fileops.InflatePool) *Codec {
	return &Codec{
		rotor: rotor.New(Key(), rotor.DefaultRotors),
		pool:  pool,
	}
}

// IsNXS reports whether data starts with the NXS signature.
func IsNXS(data []byte) bool {
	return magic.Sniff(data[:min(len(data), sniffLen)]) == magic.NXS
}

// Decrypt recovers the plaintext of an NXS payload.
func (c *Codec) Decrypt(data []byte) ([]byte, error) {
	if !IsNXS(data) {
		return nil, npktype.ErrNotNXS
	}
	stream := c.rotor.Decrypt(data)
	plain, err := c.inflate(stream)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", npktype.ErrCipher, err)
	}
	Unmask(plain)
	return plain, nil
}

// Encrypt produces an NXS payload that Decrypt maps back to plain. The stream
// is compressed at the best level so the enciphered header carries the NXS
// signature.
func (c *Codec) Encrypt(plain []byte) ([]byte, error) {
	buf := bytes.Clone(plain)
	Mask(buf)

	var z bytes.Buffer
	w, err := zlib.NewWriterLevel(&z, zlib.BestCompression)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(buf); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return c.rotor.Encrypt(z.Bytes()), nil
}

func (c *Codec) inflate(data []byte) ([]byte, error) {
	if c.pool != nil {
		return c.pool.Inflate(data)
	}
	return fileops.NewInflatePool().Inflate(data)
}

// Unmask reverses the masking step in place: XOR the first MaskedPrefix bytes
// with MaskByte, then reverse the whole buffer.
func Unmask(b []byte) {
	for i := range min(len(b), MaskedPrefix) {
		b[i] ^= MaskByte
	}
	slices.Reverse(b)
}

// Mask is the inverse of Unmask: reverse the buffer, then XOR the first
// MaskedPrefix bytes.
func Mask(b []byte) {
	slices.Reverse(b)
	for i := range min(len(b), MaskedPrefix) {
		b[i] ^= MaskByte
	}
}
