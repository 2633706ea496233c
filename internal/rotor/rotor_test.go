package rotor

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// nxsKey is the passphrase used for script payloads, repeated here so the
// cipher can be tested without the nxs package.
var nxsKey = func() []byte {
	dn, dt, df := "j2h56ogodh3se", "=dziaq.", `|os=5v7!"-234`
	var b bytes.Buffer
	for range 4 {
		b.WriteString(dn)
	}
	for range 5 {
		b.WriteString(dt + dn + df)
	}
	b.WriteString("!#")
	for range 7 {
		b.WriteString(dt)
	}
	b.WriteString(df + df)
	b.WriteString("*&'")
	return b.Bytes()
}()

func TestKeySchedule(t *testing.T) {
	t.Parallel()

	assert.Len(t, nxsKey, 297)
	assert.Equal(t, [5]int16{5816, -8351, 383, 6287, 22658}, New(nxsKey, DefaultRotors).Key())
	assert.Equal(t, [5]int16{-7064, -26219, -8284, -9660, 30829}, New([]byte("key"), DefaultRotors).Key())
}

func TestEncrypt_GoldenVectors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		key   []byte
		plain []byte
		want  string
	}{
		{"nxs key", nxsKey, []byte("hello, rotor"), "b605ecf18f09592ff4ef73b8"},
		{"zlib best compression header", nxsKey, []byte{0x78, 0xda}, "1d04"},
		{"zlib default header", nxsKey, []byte{0x78, 0x9c}, "1d88"},
		{"short key", []byte("key"), []byte("abcdefgh"), "ca80b38e52360f71"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := New(tt.key, DefaultRotors)
			assert.Equal(t, tt.want, hex.EncodeToString(r.Encrypt(tt.plain)))
		})
	}
}

func TestDecrypt_GoldenVector(t *testing.T) {
	t.Parallel()

	ct, err := hex.DecodeString("b605ecf18f09592ff4ef73b8")
	require.NoError(t, err)
	assert.Equal(t, "hello, rotor", string(New(nxsKey, DefaultRotors).Decrypt(ct)))
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	long := make([]byte, 4096)
	for i := range long {
		long[i] = byte(i * 7)
	}

	inputs := [][]byte{
		{},
		{0},
		[]byte("a"),
		long,
	}
	for _, rotors := range []int{1, 3, DefaultRotors} {
		r := New(nxsKey, rotors)
		for _, in := range inputs {
			out := r.Decrypt(r.Encrypt(in))
			assert.Equal(t, in, out, "rotors=%d len=%d", rotors, len(in))
		}
	}
}

func TestCallsAreIndependent(t *testing.T) {
	t.Parallel()

	r := New([]byte("key"), DefaultRotors)
	first := r.Encrypt([]byte("abcdefgh"))
	second := r.Encrypt([]byte("abcdefgh"))
	assert.Equal(t, first, second)
}

func TestNew_DefaultRotors(t *testing.T) {
	t.Parallel()

	r := New([]byte("key"), 0)
	assert.Equal(t, DefaultRotors, r.rotors)
}

func TestPermutationIsInverse(t *testing.T) {
	t.Parallel()

	r := New(nxsKey, DefaultRotors)
	r.init()
	for i := range r.rotors {
		for j := range size {
			assert.Equal(t, byte(j), r.dec[i][r.enc[i][j]], "rotor %d byte %d", i, j)
		}
	}
}
