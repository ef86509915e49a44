// Package rng provides the cryptographically secure random number generator used for nonces,
// challenges, token IDs, and signing keys.
//
// At startup, a STROBE protocol is initialized:
//
//	INIT('cpauth.rng', level=256)
//
// When a block of random data is required, a block B of equivalent size is read from the host
// machine's RNG, and the following operations performed:
//
//	AD(LE_U64(LEN(B)), meta=true)
//	KEY(B)
//	PRF(LEN(B)) -> B
//	RATCHET(32)
//
// This insulates us somewhat against compromised RNGs, but at the end of the day this is still a
// deterministic process.
package rng

import (
	"crypto/rand"
	"io"
	"sync"

	"github.com/codahale/cpauth/pkg/cpauth/internal/protocol"
)

// Read is a helper function that calls Reader.Read using io.ReadFull. On return, n == len(b) if and
// only if err == nil.
func Read(b []byte) (int, error) {
	return io.ReadFull(Reader, b)
}

//nolint:gochecknoglobals // need a singleton
// Reader is a global, shared instance of a cryptographically secure random number generator. It is
// safe for concurrent use.
var Reader io.Reader = &reader{rng: protocol.New("cpauth.rng")}

type reader struct {
	mu  sync.Mutex
	rng *protocol.Protocol
}

func (r *reader) Read(p []byte) (n int, err error) {
	// Read a new block of data from the underlying RNG.
	if _, err := rand.Read(p); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Include length of PRF request as associated data.
	r.rng.MetaAD(protocol.LittleEndianU64(uint64(len(p))))

	// Re-key the protocol with the block.
	r.rng.KEY(p)

	// Return the results of the PRF.
	r.rng.PRF(p)

	// Ratchet the state of the RNG to prevent rollback.
	r.rng.Ratchet()

	return len(p), nil
}
