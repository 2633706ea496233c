package fileops

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/klauspost/compress/zlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func deflate(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := zlib.NewWriterLevel(&buf, zlib.BestCompression)
	require.NoError(t, err)
	_, err = w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestLZ4RoundTrip(t *testing.T) {
	t.Parallel()

	inputs := map[string][]byte{
		"empty-ish":      []byte("x"),
		"repetitive":     bytes.Repeat([]byte("script/main.py\n"), 200),
		"incompressible": []byte("q7#Lm9!zP2@vR"),
	}

	for name, original := range inputs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			encoded, err := EncodeLZ4(original)
			require.NoError(t, err)

			decoded, err := DecodeLZ4(encoded, uint64(len(original)))
			require.NoError(t, err)
			require.Equal(t, original, decoded)

			// Re-encoding the decoded bytes decodes to the same payload.
			again, err := EncodeLZ4(decoded)
			require.NoError(t, err)
			decodedAgain, err := DecodeLZ4(again, uint64(len(decoded)))
			require.NoError(t, err)
			assert.Equal(t, decoded, decodedAgain)
		})
	}
}

func TestDecodeLZ4_Errors(t *testing.T) {
	t.Parallel()

	encoded, err := EncodeLZ4(bytes.Repeat([]byte("abc"), 100))
	require.NoError(t, err)

	_, err = DecodeLZ4(encoded, 10)
	assert.ErrorIs(t, err, ErrDecompression)

	_, err = DecodeLZ4(encoded, 1000)
	assert.ErrorIs(t, err, ErrDecompression)
}

func TestInflatePool(t *testing.T) {
	t.Parallel()

	original := []byte(strings.Repeat("resource manifest line\n", 50))
	compressed := deflate(t, original)
	pool := NewInflatePool()

	t.Run("basic", func(t *testing.T) {
		t.Parallel()
		out, err := pool.Inflate(compressed)
		require.NoError(t, err)
		assert.Equal(t, original, out)
	})

	t.Run("reuse", func(t *testing.T) {
		t.Parallel()
		for i := range 5 {
			out, err := pool.Inflate(compressed)
			require.NoError(t, err, "iteration %d", i)
			assert.Equal(t, original, out)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		t.Parallel()
		_, err := pool.Inflate([]byte("this is not zlib"))
		assert.ErrorIs(t, err, ErrDecompression)
	})

	t.Run("nil pool", func(t *testing.T) {
		t.Parallel()
		var p *InflatePool
		out, err := p.Inflate(compressed)
		require.NoError(t, err)
		assert.Equal(t, original, out)
	})

	t.Run("concurrent", func(t *testing.T) {
		t.Parallel()
		var wg sync.WaitGroup
		errs := make(chan error, 10)
		for range 10 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for range 50 {
					out, err := pool.Inflate(compressed)
					if err != nil {
						errs <- err
						return
					}
					if !bytes.Equal(out, original) {
						errs <- ErrDecompression
						return
					}
				}
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			t.Errorf("concurrent inflate: %v", err)
		}
	})
}

func TestInflateLimit(t *testing.T) {
	t.Parallel()

	original := bytes.Repeat([]byte("a"), 1000)
	compressed := deflate(t, original)
	pool := NewInflatePool()

	out, err := pool.InflateLimit(compressed, 1000)
	require.NoError(t, err)
	assert.Equal(t, original, out)

	_, err = pool.InflateLimit(compressed, 999)
	require.ErrorIs(t, err, ErrSizeOverflow)

	out, err = pool.InflateLimit(compressed, 0)
	require.NoError(t, err)
	assert.Len(t, out, 1000)
}

func TestEnsureNoExtra(t *testing.T) {
	t.Parallel()

	require.NoError(t, EnsureNoExtra(bytes.NewReader(nil)))
	require.ErrorIs(t, EnsureNoExtra(bytes.NewReader([]byte{1})), ErrSizeOverflow)
}

func TestHasZlibHeader(t *testing.T) {
	t.Parallel()

	assert.True(t, HasZlibHeader([]byte{0x78, 0x9c}))
	assert.True(t, HasZlibHeader([]byte{0x78, 0xda}))
	assert.True(t, HasZlibHeader([]byte{0x78, 0x01}))
	assert.False(t, HasZlibHeader([]byte{0x78, 0x00}))
	assert.False(t, HasZlibHeader([]byte{0x1d, 0x04}))
	assert.False(t, HasZlibHeader([]byte{0x78}))
}
