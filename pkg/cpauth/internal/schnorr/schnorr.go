// Package schnorr provides the STROBE-based Schnorr signatures which make session tokens
// tamper-evident.
//
// Signing is as follows, given a private scalar D, its public point Q, and a message M. First, a
// deterministic nonce r is derived from the private key and message:
//
//	INIT('cpauth.schnorr.nonce', level=256)
//	AD(M)
//	KEY(D)
//	PRF(64) -> r
//
// Given the nonce r, its public point R = gr is calculated, and a second protocol is run:
//
//	INIT('cpauth.schnorr', level=256)
//	AD(M)
//	AD(Q)
//	SEND_CLR(R)
//	PRF(64) -> k
//	s = (kd + r)
//	SEND_ENC(s)
//
// The resulting signature consists of the ephemeral point R and the encrypted signature scalar S.
//
// To verify, cpauth.schnorr is run with a public key Q, an ephemeral point R, an encrypted
// signature scalar S, and a candidate message M:
//
//	INIT('cpauth.schnorr', level=256)
//	AD(M)
//	AD(Q)
//	RECV_CLR(R)
//	PRF(64) -> k
//	RECV_ENC(S)
//
// Finally, the verifier calculates R' = -kQ + gs and compares R' == R.
package schnorr

import (
	"github.com/codahale/cpauth/pkg/cpauth/internal/protocol"
	"github.com/gtank/ristretto255"
)

const (
	ElementSize   = 32                       // ElementSize is the length of an encoded element.
	ScalarSize    = 32                       // ScalarSize is the length of an encoded scalar.
	SignatureSize = ElementSize + ScalarSize // SignatureSize is the length of a signature.
)

// Sign uses the given key pair to construct a deterministic Schnorr signature of the given message.
func Sign(d *ristretto255.Scalar, q *ristretto255.Element, msg []byte) []byte {
	// Deterministically derive a nonce via cpauth.schnorr.nonce.
	r := deriveNonce(d, msg)

	// Calculate the signature ephemeral.
	R := ristretto255.NewElement().ScalarBaseMult(r)
	sig := R.Encode(make([]byte, 0, SignatureSize))

	// Initialize the cpauth.schnorr protocol.
	schnorr := protocol.New("cpauth.schnorr")

	// Include the message and the signer's public key as associated data.
	schnorr.AD(msg)
	schnorr.AD(q.Encode(nil))

	// Transmit the signature ephemeral.
	schnorr.SendCLR(sig)

	// Derive a challenge scalar.
	k := schnorr.PRFScalar()

	// Calculate the signature scalar (kd + r).
	s := ristretto255.NewScalar().Multiply(k, d)
	s = ristretto255.NewScalar().Add(s, r)

	// Encrypt the signature scalar.
	return append(sig, schnorr.SendENC(s.Encode(nil))...)
}

// Verify uses the given public key to verify the signature of the given candidate message.
func Verify(q *ristretto255.Element, sig, msg []byte) bool {
	if len(sig) != SignatureSize {
		return false
	}

	// Decode the signature ephemeral.
	R := ristretto255.NewElement()
	if err := R.Decode(sig[:ElementSize]); err != nil {
		return false
	}

	schnorr := protocol.New("cpauth.schnorr")

	// Include the message and the signer's public key as associated data.
	schnorr.AD(msg)
	schnorr.AD(q.Encode(nil))

	// Receive the signature ephemeral.
	schnorr.RecvCLR(sig[:ElementSize])

	// Derive a challenge scalar.
	k := schnorr.PRFScalar()

	// Decrypt and decode the signature scalar.
	s := ristretto255.NewScalar()
	if err := s.Decode(schnorr.RecvENC(sig[ElementSize:])); err != nil {
		return false
	}

	// R' = -kQ + gs
	kq := ristretto255.NewElement().ScalarMult(k, q)
	Rp := ristretto255.NewElement().ScalarBaseMult(s)
	Rp = ristretto255.NewElement().Subtract(Rp, kq)

	return Rp.Equal(R) == 1
}

func deriveNonce(d *ristretto255.Scalar, msg []byte) *ristretto255.Scalar {
	nonce := protocol.New("cpauth.schnorr.nonce")

	// Include the message as associated data.
	nonce.AD(msg)

	// Key the protocol with the signer's private key.
	nonce.KEY(d.Encode(nil))

	// Derive a nonce.
	return nonce.PRFScalar()
}
