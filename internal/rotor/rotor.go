// Package rotor implements the classic multi-rotor substitution cipher
// keyed by a passphrase.
//
// The machine holds a number of 256-entry permutation rotors. Each byte passes
// through every rotor in turn, offset by that rotor's position, after which the
// rotors step like an odometer. Rotor wiring, start positions and step sizes
// all come from a small linear congruential generator seeded from the key, so
// the same key always yields the same machine. Every Encrypt or Decrypt call
// starts from that initial state.
package rotor

import "math"

const (
	// DefaultRotors is the number of rotors used when none is specified.
	DefaultRotors = 6

	size = 256
)

// Rotor is a keyed cipher machine. It is not safe for concurrent use; each
// call rewires the machine from the key.
type Rotor struct {
	key    [5]int16
	seed   [3]int
	rotors int

	enc       [][size]byte
	dec       [][size]byte
	positions []byte
	advances  []byte
}

// New returns a machine keyed by key with n rotors. n < 1 selects
// DefaultRotors.
func New(key []byte, n int) *Rotor {
	if n < 1 {
		n = DefaultRotors
	}
	r := &Rotor{
		rotors:    n,
		enc:       make([][size]byte, n),
		dec:       make([][size]byte, n),
		positions: make([]byte, n),
		advances:  make([]byte, n),
	}
	r.setKey(key)
	return r
}

// Key returns the five 16-bit key words derived from the passphrase.
func (r *Rotor) Key() [5]int16 {
	return r.key
}

// Encrypt returns the enciphered form of src.
func (r *Rotor) Encrypt(src []byte) []byte {
	r.init()
	out := make([]byte, len(src))
	for i, p := range src {
		out[i] = r.encryptByte(p)
	}
	return out
}

// Decrypt returns the deciphered form of src.
func (r *Rotor) Decrypt(src []byte) []byte {
	r.init()
	out := make([]byte, len(src))
	for i, c := range src {
		out[i] = r.decryptByte(c)
	}
	return out
}

func (r *Rotor) setKey(key []byte) {
	k1, k2, k3, k4, k5 := uint32(995), uint32(576), uint32(767), uint32(671), uint32(463)
	for _, b := range key {
		ki := uint32(b)
		k1 = (rotl13(k1) + ki) & 0xffff
		k2 = (rotl13(k2) ^ ki) & 0xffff
		k3 = (rotl13(k3) - ki) & 0xffff
		k4 = (ki - rotl13(k4)) & 0xffff
		k5 = (rotl13(k5) ^ ^ki) & 0xffff
	}
	r.key = [5]int16{
		int16(k1),     //nolint:gosec // 16-bit key words are stored signed
		int16(k2 | 1), //nolint:gosec // 16-bit key words are stored signed
		int16(k3),     //nolint:gosec // 16-bit key words are stored signed
		int16(k4),     //nolint:gosec // 16-bit key words are stored signed
		int16(k5),     //nolint:gosec // 16-bit key words are stored signed
	}
}

// rotl13 is the key schedule rotation: k<<3 | k>>13, not masked.
func rotl13(k uint32) uint32 {
	return k<<3 | k>>13
}

func (r *Rotor) resetSeed() {
	r.seed = [3]int{int(r.key[0]), int(r.key[1]), int(r.key[2])}
}

// random is a three-part Wichmann-Hill generator returning a value in [0, 1).
// Go integer division truncates toward zero, matching the generator's
// behaviour for the negative seeds that signed key words produce.
func (r *Rotor) random() float64 {
	x, y, z := r.seed[0], r.seed[1], r.seed[2]

	x = 171*(x%177) - 2*(x/177)
	y = 172*(y%176) - 35*(y/176)
	z = 170*(z%178) - 63*(z/178)
	if x < 0 {
		x += 30269
	}
	if y < 0 {
		y += 30307
	}
	if z < 0 {
		z += 30323
	}
	r.seed = [3]int{x, y, z}

	term := float64(x)/30269.0 + float64(y)/30307.0 + float64(z)/30323.0
	val := term - math.Floor(term)
	if val >= 1.0 {
		val = 0
	}
	return val
}

// rand returns an integer in [0, s).
func (r *Rotor) rand(s int) int {
	return int(r.random()*float64(s)) % s
}

func (r *Rotor) init() {
	r.resetSeed()
	for i := range r.rotors {
		r.positions[i] = byte(r.rand(size))
		r.advances[i] = byte(1 + 2*r.rand(size/2))
		r.permute(i)
	}
}

// permute shuffles rotor i from the identity and records its inverse.
func (r *Rotor) permute(i int) {
	e := &r.enc[i]
	d := &r.dec[i]
	for j := range size {
		e[j] = byte(j)
	}
	for n := size; n >= 2; {
		q := r.rand(n)
		n--
		j := e[q]
		e[q] = e[n]
		e[n] = j
		d[j] = byte(n)
	}
	d[e[0]] = 0
}

// advance steps every rotor; a rotor that wraps bumps the next one.
func (r *Rotor) advance() {
	for i := range r.rotors {
		t := int(r.positions[i]) + int(r.advances[i])
		r.positions[i] = byte(t % size)
		if t >= size && i < r.rotors-1 {
			r.positions[i+1]++
		}
	}
}

func (r *Rotor) encryptByte(p byte) byte {
	t := p
	for i := range r.rotors {
		t = r.enc[i][r.positions[i]^t]
	}
	r.advance()
	return t
}

func (r *Rotor) decryptByte(c byte) byte {
	t := c
	for i := r.rotors - 1; i >= 0; i-- {
		t = r.positions[i] ^ r.dec[i][t]
	}
	r.advance()
	return t
}
