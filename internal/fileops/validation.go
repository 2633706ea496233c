package fileops

// ValidateForRead checks that an entry is safe to read from a source of the given size.
// It validates:
//   - Source size is non-negative
//   - Entry sizes are within maxSize (if maxSize > 0)
//   - Resolved offset + compressed size doesn't overflow
//   - The payload range is within source bounds
func ValidateForRead(entry *Entry, sourceSize int64, maxSize uint64) error {
	if sourceSize < 0 {
		return ErrSizeOverflow
	}

	if maxSize > 0 {
		if uint64(entry.CompressedSize) > maxSize || uint64(entry.UncompressedSize) > maxSize {
			return ErrSizeOverflow
		}
	}

	end, ok := addUint64(entry.DataOffset(), uint64(entry.CompressedSize))
	if !ok {
		return ErrSizeOverflow
	}
	if end > uint64(sourceSize) {
		return ErrSizeOverflow
	}

	return nil
}
