// Package balloonkdf implements memory-hard Balloon Hashing via STROBE. It turns a passphrase into
// the uniform bytestring from which a prover's long-term secret is derived.
//
// Hashes are generated as follows, given a passphrase P, salt S, space parameter X, time parameter
// T, and key size N:
//
//	INIT('cpauth.kdf.balloon',  level=256)
//	AD(LE_U32(X), meta=true)
//	AD(LE_U32(T), meta=true)
//	AD(LE_U32(N), meta=true)
//	KEY(P)
//	AD(S)
//
// Then, for each iteration of the balloon hashing algorithm, given a counter C, a left block L, and
// a right block R:
//
//	AD(LE_U64(C))
//	AD(L)
//	AD(R)
//	PRF(N)
//
// See https://eprint.iacr.org/2016/027.pdf
package balloonkdf

import (
	"encoding/binary"

	"github.com/codahale/cpauth/pkg/cpauth/internal/protocol"
)

// DeriveKey returns an n-byte key of the given passphrase. Odd values of n are rounded up.
func DeriveKey(passphrase, salt []byte, space, time uint32, n int) []byte {
	n += n % 2 // round up

	// The index block must hold three 32-bit values.
	if n < 12 {
		n = 12
	}

	// Initialize a new protocol.
	balloon := protocol.New("cpauth.kdf.balloon")

	// Include the space, time, and size parameters as associated data.
	balloon.MetaAD(protocol.LittleEndianU32(int(space)))
	balloon.MetaAD(protocol.LittleEndianU32(int(time)))
	balloon.MetaAD(protocol.LittleEndianU32(n))

	// Key the protocol with the passphrase.
	balloon.KEY(passphrase)

	// Include the salt as associated data.
	balloon.AD(salt)

	// Allocate a 64-bit counter.
	var ctr uint64

	// Allocate an index block.
	idx := make([]byte, n)

	// Allocate blocks.
	buf := make([][]byte, space)
	for i := range buf {
		buf[i] = make([]byte, n)
	}

	// Initialize first block.
	hashCounter(balloon, &ctr, buf[0], nil, nil)

	// Initialize all other blocks.
	for m := uint32(1); m < space; m++ {
		hashCounter(balloon, &ctr, buf[m], buf[m-1], nil)
	}

	// Mix buffer contents.
	for t := uint32(1); t < time; t++ {
		for m := uint32(1); m < space; m++ {
			// Hash last and current blocks.
			prev := buf[(m-1)%space]
			hashCounter(balloon, &ctr, buf[m], prev, buf[m])

			// Hash pseudorandomly chosen blocks.
			for i := 0; i < delta; i++ {
				// Map indexes to a block and hash it and the salt.
				binary.LittleEndian.PutUint32(idx[0:], t)
				binary.LittleEndian.PutUint32(idx[4:], m)
				binary.LittleEndian.PutUint32(idx[8:], uint32(i))
				hashCounter(balloon, &ctr, idx, salt, idx)

				// Map the hashed index block back to an index and hash that block.
				other := int(binary.LittleEndian.Uint64(idx) % uint64(space))
				hashCounter(balloon, &ctr, buf[m], buf[other], nil)
			}
		}
	}

	return buf[space-1]
}

func hashCounter(p *protocol.Protocol, ctr *uint64, dst, left, right []byte) {
	// Increment the counter.
	*ctr++

	// Hash the counter, the left block, and the right block.
	p.AD(protocol.LittleEndianU64(*ctr))
	p.AD(left)
	p.AD(right)

	// Extract a new block.
	p.PRF(dst)
}

const (
	delta = 3 // Delta is the number of dependencies per block.
)
