// Package protocol wraps STROBE protocols with a 256-bit security level.
//
// STROBE operations only fail on misuse (e.g. a RECV_ENC after a SEND_CLR with the wrong role), so
// every failure here is a programming error and panics.
package protocol

import (
	"encoding/binary"

	"github.com/gtank/ristretto255"
	"github.com/sammyne/strobe"
)

const (
	// UniformBytestringSize is the length of a uniform bytestring which can be mapped to a
	// ristretto255 element or scalar.
	UniformBytestringSize = 64

	// RatchetSize determines the amount of state to reset during each ratchet.
	RatchetSize = int(strobe.Bit256) / 8
)

type Protocol struct {
	s *strobe.Strobe
}

func New(name string) *Protocol {
	s, err := strobe.New(name, strobe.Bit256)
	if err != nil {
		panic(err)
	}

	return &Protocol{s: s}
}

func (p *Protocol) MetaAD(data []byte) {
	if err := p.s.AD(data, metaOpts); err != nil {
		panic(err)
	}
}

func (p *Protocol) AD(data []byte) {
	if err := p.s.AD(data, defaultOpts); err != nil {
		panic(err)
	}
}

func (p *Protocol) KEY(key []byte) {
	k := make([]byte, len(key))
	copy(k, key)

	if err := p.s.KEY(k, false); err != nil {
		panic(err)
	}
}

func (p *Protocol) Ratchet() {
	if err := p.s.RATCHET(RatchetSize); err != nil {
		panic(err)
	}
}

// PRF fills dst with pseudorandom output.
func (p *Protocol) PRF(dst []byte) {
	if err := p.s.PRF(dst, false); err != nil {
		panic(err)
	}
}

func (p *Protocol) PRFScalar() *ristretto255.Scalar {
	var buf [UniformBytestringSize]byte

	p.PRF(buf[:])

	return ristretto255.NewScalar().FromUniformBytes(buf[:])
}

func (p *Protocol) SendCLR(data []byte) {
	if err := p.s.SendCLR(data, defaultOpts); err != nil {
		panic(err)
	}
}

func (p *Protocol) RecvCLR(data []byte) {
	if err := p.s.RecvCLR(data, defaultOpts); err != nil {
		panic(err)
	}
}

// SendENC returns the encryption of plaintext. The argument is not modified.
func (p *Protocol) SendENC(plaintext []byte) []byte {
	out := make([]byte, len(plaintext))
	copy(out, plaintext)

	if _, err := p.s.SendENC(out, defaultOpts); err != nil {
		panic(err)
	}

	return out
}

// RecvENC returns the decryption of ciphertext. The argument is not modified.
func (p *Protocol) RecvENC(ciphertext []byte) []byte {
	out := make([]byte, len(ciphertext))
	copy(out, ciphertext)

	if _, err := p.s.RecvENC(out, defaultOpts); err != nil {
		panic(err)
	}

	return out
}

// LittleEndianU32 returns n as a 32-bit little endian bit string.
func LittleEndianU32(n int) []byte {
	var b [4]byte

	binary.LittleEndian.PutUint32(b[:], uint32(n))

	return b[:]
}

// LittleEndianU64 returns n as a 64-bit little endian bit string.
func LittleEndianU64(n uint64) []byte {
	var b [8]byte

	binary.LittleEndian.PutUint64(b[:], n)

	return b[:]
}

//nolint:gochecknoglobals // constants
var (
	defaultOpts = &strobe.Options{}
	metaOpts    = &strobe.Options{Meta: true}
)
