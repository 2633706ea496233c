package npk

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/meigma/npk/internal/fileops"
	"github.com/meigma/npk/internal/magic"
	"github.com/meigma/npk/internal/nxs"
)

var (
	inflatePool = fileops.NewInflatePool()
	codecPool   = sync.Pool{
		New: func() any { return nxs.New(inflatePool) },
	}
)

func withCodec[T any](fn func(*nxs.Codec) (T, error)) (T, error) {
	c := codecPool.Get().(*nxs.Codec) //nolint:errcheck // pool only holds codecs
	defer codecPool.Put(c)
	return fn(c)
}

// DecryptNXS recovers the plaintext of an NXS payload. It returns ErrNotNXS
// when data does not carry the NXS signature and ErrCipher when the
// deciphered stream does not inflate.
func DecryptNXS(data []byte) ([]byte, error) {
	return withCodec(func(c *nxs.Codec) ([]byte, error) {
		return c.Decrypt(data)
	})
}

// EncryptNXS produces a payload that DecryptNXS maps back to plain.
func EncryptNXS(plain []byte) ([]byte, error) {
	return withCodec(func(c *nxs.Codec) ([]byte, error) {
		return c.Encrypt(plain)
	})
}

// DecryptNXSFile decrypts the file at path and writes the plaintext next to
// it. The output name is the input minus its last extension plus the sniffed
// kind of the plaintext, so an unrecognised payload ends in ".unknown". It
// returns the output path.
func DecryptNXSFile(path string) (string, error) {
	data, err := os.ReadFile(path) //nolint:gosec // caller-provided path
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return "", fmt.Errorf("npk: read %s: %w", path, err)
	}

	plain, err := DecryptNXS(data)
	if err != nil {
		return "", fmt.Errorf("npk: %s: %w", path, err)
	}

	out := strings.TrimSuffix(path, filepath.Ext(path)) + magic.Sniff(plain).Ext()
	if err := os.WriteFile(out, plain, 0o644); err != nil { //nolint:gosec // output files are world readable
		return "", fmt.Errorf("npk: write %s: %w", out, err)
	}
	return out, nil
}
