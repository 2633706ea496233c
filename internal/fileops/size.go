package fileops

import "math"

// toInt converts a uint64 to int, returning ErrSizeOverflow if it doesn't fit.
func toInt(size uint64) (int, error) {
	if size > uint64(math.MaxInt) {
		return 0, ErrSizeOverflow
	}
	return int(size), nil
}

// addUint64 adds two uint64 values, returning (result, false) on overflow.
func addUint64(a, b uint64) (uint64, bool) {
	sum := a + b
	if sum < a {
		return 0, false
	}
	return sum, true
}
