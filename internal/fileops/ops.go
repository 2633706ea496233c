package fileops

import (
	"errors"
	"fmt"
	"io"
)

// DefaultMaxEntrySize is the default maximum entry size (256MB).
const DefaultMaxEntrySize = 256 << 20

// ByteSource provides random access to container bytes.
type ByteSource interface {
	io.ReaderAt
	Size() int64
}

// Ops handles reading and decoding entry payloads from a ByteSource.
type Ops struct {
	source       ByteSource
	maxEntrySize uint64
	pool         *InflatePool
}

// Option configures an Ops instance.
type Option func(*Ops)

// WithMaxEntrySize sets the maximum entry size limit.
// Set to 0 to disable the limit.
func WithMaxEntrySize(limit uint64) Option {
	return func(o *Ops) {
		o.maxEntrySize = limit
	}
}

// WithInflatePool shares a zlib reader pool between several Ops.
func WithInflatePool(pool *InflatePool) Option {
	return func(o *Ops) {
		o.pool = pool
	}
}

// New creates a new Ops instance for reading entries from the given source.
func New(source ByteSource, opts ...Option) *Ops {
	o := &Ops{
		source:       source,
		maxEntrySize: DefaultMaxEntrySize,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.pool == nil {
		o.pool = NewInflatePool()
	}
	return o
}

// Pool returns the zlib reader pool for reuse.
func (o *Ops) Pool() *InflatePool {
	return o.pool
}

// ReadRaw reads the stored bytes of an entry without decoding them.
func (o *Ops) ReadRaw(entry *Entry) ([]byte, error) {
	if err := ValidateForRead(entry, o.source.Size(), o.maxEntrySize); err != nil {
		return nil, fmt.Errorf("read entry %d: %w", entry.Index, err)
	}
	data := make([]byte, entry.CompressedSize)
	n, err := o.source.ReadAt(data, int64(entry.DataOffset())) //nolint:gosec // bounded by ValidateForRead
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read entry %d: %w", entry.Index, err)
	}
	if n != len(data) {
		return nil, fmt.Errorf("read entry %d: short read (%d of %d bytes)", entry.Index, n, len(data))
	}
	return data, nil
}

// Result is a decoded entry payload.
type Result struct {
	// Data is the decoded payload. On a decode error it holds the bytes
	// recovered so far, which may be the raw stored bytes.
	Data []byte

	// Flagged is set when the payload used a compression code that is
	// recognised but not part of the observed format, and was passed
	// through or decoded on a best-effort basis.
	Flagged bool
}

// Decode applies the entry's compression transform to raw.
//
// CompressionDeflate is decoded only when raw carries a zlib header;
// otherwise the raw bytes are passed through. Either way the result is
// flagged so callers can report it.
func (o *Ops) Decode(entry *Entry, raw []byte) (Result, error) {
	switch entry.Compression() {
	case CompressionStore:
		return Result{Data: raw}, nil
	case CompressionLZ4:
		data, err := DecodeLZ4(raw, uint64(entry.UncompressedSize))
		if err != nil {
			return Result{Data: data}, err
		}
		return Result{Data: data}, nil
	case CompressionDeflate:
		if !HasZlibHeader(raw) {
			return Result{Data: raw, Flagged: true}, nil
		}
		data, err := o.pool.InflateLimit(raw, o.maxEntrySize)
		if err != nil {
			return Result{Data: raw, Flagged: true}, err
		}
		return Result{Data: data, Flagged: true}, nil
	default:
		return Result{Data: raw}, nil
	}
}

// ReadAll reads and decodes an entry.
func (o *Ops) ReadAll(entry *Entry) (Result, error) {
	raw, err := o.ReadRaw(entry)
	if err != nil {
		return Result{}, err
	}
	return o.Decode(entry, raw)
}

// Inflate decodes a zlib stream with the shared pool. The decoded stream is
// bounded by the maximum entry size.
func (o *Ops) Inflate(data []byte) ([]byte, error) {
	return o.pool.InflateLimit(data, o.maxEntrySize)
}
