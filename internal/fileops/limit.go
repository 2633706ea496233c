package fileops

import (
	"io"
	"math"
)

// limitReader caps r at limit bytes. A zero limit returns r unchanged.
func limitReader(r io.Reader, limit uint64) io.Reader {
	if limit == 0 {
		return r
	}
	return io.LimitReader(r, int64(min(limit, math.MaxInt64))) //nolint:gosec // clamped above
}

// EnsureNoExtra reads from r and returns ErrSizeOverflow if any data is
// left. It detects decoded streams that run past their expected size.
func EnsureNoExtra(r io.Reader) error {
	var scratch [1]byte
	n, err := r.Read(scratch[:])
	if n > 0 {
		return ErrSizeOverflow
	}
	if err == io.EOF {
		return nil
	}
	return err
}
