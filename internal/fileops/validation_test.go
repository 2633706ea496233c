package fileops

import (
	"errors"
	"math"
	"testing"
)

func TestValidateForRead(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		entry      *Entry
		sourceSize int64
		maxSize    uint64
		wantErr    error
	}{
		{
			name:       "valid entry within bounds",
			entry:      &Entry{Offset: 0, CompressedSize: 100, UncompressedSize: 100},
			sourceSize: 1000,
		},
		{
			name:       "valid entry at exact bounds",
			entry:      &Entry{Offset: 900, CompressedSize: 100, UncompressedSize: 400},
			sourceSize: 1000,
		},
		{
			name:       "negative source size",
			entry:      &Entry{CompressedSize: 1},
			sourceSize: -1,
			wantErr:    ErrSizeOverflow,
		},
		{
			name:       "compressed size exceeds max",
			entry:      &Entry{CompressedSize: 200, UncompressedSize: 100},
			sourceSize: 1000,
			maxSize:    100,
			wantErr:    ErrSizeOverflow,
		},
		{
			name:       "uncompressed size exceeds max",
			entry:      &Entry{CompressedSize: 50, UncompressedSize: 200},
			sourceSize: 1000,
			maxSize:    100,
			wantErr:    ErrSizeOverflow,
		},
		{
			name:       "data extends beyond source",
			entry:      &Entry{Offset: 950, CompressedSize: 100},
			sourceSize: 1000,
			wantErr:    ErrSizeOverflow,
		},
		{
			name:       "large offset resolves beyond source",
			entry:      &Entry{Offset: 0, CompressedSize: 10, LargeOffset: 1},
			sourceSize: 1 << 19,
			wantErr:    ErrSizeOverflow,
		},
		{
			name:       "large offset within source",
			entry:      &Entry{Offset: 0, CompressedSize: 10, LargeOffset: 1},
			sourceSize: 1<<20 + 10,
		},
		{
			name:       "max size zero disables limit",
			entry:      &Entry{CompressedSize: math.MaxUint32, UncompressedSize: math.MaxUint32},
			sourceSize: math.MaxUint32,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateForRead(tt.entry, tt.sourceSize, tt.maxSize)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateForRead() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
