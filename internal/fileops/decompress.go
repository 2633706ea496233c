package fileops

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/zlib"
	"github.com/pierrec/lz4/v4"
)

// InflatePool manages reusable zlib readers to reduce allocation overhead.
type InflatePool struct {
	pool *sync.Pool
}

// NewInflatePool creates a new pool for zlib readers.
func NewInflatePool() *InflatePool {
	return &InflatePool{pool: &sync.Pool{}}
}

// Inflate decodes a complete zlib stream.
func (p *InflatePool) Inflate(data []byte) ([]byte, error) {
	return p.InflateLimit(data, 0)
}

// InflateLimit decodes a complete zlib stream that must not decode to more
// than limit bytes. A zero limit means no limit.
func (p *InflatePool) InflateLimit(data []byte, limit uint64) ([]byte, error) {
	r, release, err := p.get(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecompression, err)
	}
	defer release()

	var out bytes.Buffer
	out.Grow(len(data) * 2)
	if _, err := io.Copy(&out, limitReader(r, limit)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecompression, err)
	}
	if limit > 0 {
		if err := EnsureNoExtra(r); err != nil {
			if errors.Is(err, ErrSizeOverflow) {
				return nil, fmt.Errorf("%w: inflated stream exceeds %d bytes", ErrSizeOverflow, limit)
			}
			return nil, fmt.Errorf("%w: %v", ErrDecompression, err)
		}
	}
	return out.Bytes(), nil
}

// get returns a reader positioned on src and a release function. If an
// error is returned, no release function needs to be called.
func (p *InflatePool) get(src io.Reader) (io.ReadCloser, func(), error) {
	if p == nil || p.pool == nil {
		r, err := zlib.NewReader(src)
		if err != nil {
			return nil, nil, err
		}
		return r, func() { _ = r.Close() }, nil
	}

	if value := p.pool.Get(); value != nil {
		if r, ok := value.(io.ReadCloser); ok {
			if resetter, ok := r.(zlib.Resetter); ok {
				if err := resetter.Reset(src, nil); err != nil {
					return nil, nil, err
				}
				return r, func() { p.pool.Put(r) }, nil
			}
		}
	}

	r, err := zlib.NewReader(src)
	if err != nil {
		return nil, nil, err
	}
	return r, func() { p.pool.Put(r) }, nil
}

// DecodeLZ4 decodes a raw LZ4 block whose decoded size is known.
func DecodeLZ4(data []byte, size uint64) ([]byte, error) {
	n, err := toInt(size)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	written, err := lz4.UncompressBlock(data, out)
	if err != nil {
		return nil, fmt.Errorf("%w: lz4: %v", ErrDecompression, err)
	}
	if written != n {
		return out[:written], fmt.Errorf("%w: lz4: short block (%d of %d bytes)", ErrDecompression, written, n)
	}
	return out, nil
}

// EncodeLZ4 encodes data as a single raw LZ4 block. It always emits a block,
// even for incompressible input.
func EncodeLZ4(data []byte) ([]byte, error) {
	dst := make([]byte, lz4.CompressBlockBound(len(data)))
	n, err := lz4.CompressBlock(data, dst, nil)
	if err != nil {
		return nil, fmt.Errorf("lz4: %w", err)
	}
	return dst[:n], nil
}

// HasZlibHeader reports whether data starts with a valid zlib stream header.
func HasZlibHeader(data []byte) bool {
	if len(data) < 2 {
		return false
	}
	cmf, flg := data[0], data[1]
	if cmf&0x0f != 8 || cmf>>4 > 7 {
		return false
	}
	return (uint16(cmf)<<8|uint16(flg))%31 == 0
}
