package schnorr

import (
	"bytes"
	"testing"

	"github.com/codahale/cpauth/pkg/cpauth/internal/protocol"
	"github.com/codahale/gubbins/assert"
	"github.com/gtank/ristretto255"
)

func TestSignAndVerify(t *testing.T) {
	t.Parallel()

	d, q := keyPair()

	sig := Sign(d, q, []byte("this is great"))

	assert.Equal(t, "signature length", SignatureSize, len(sig))

	if !Verify(q, sig, []byte("this is great")) {
		t.Error("didn't verify")
	}
}

func TestSignAndVerify_BadKey(t *testing.T) {
	t.Parallel()

	d, q := keyPair()

	// Create a fake public key.
	qP := ristretto255.NewElement().FromUniformBytes(bytes.Repeat([]byte{0xf3}, protocol.UniformBytestringSize))

	if Verify(qP, Sign(d, q, []byte("this is great")), []byte("this is great")) {
		t.Error("did verify")
	}
}

func TestSignAndVerify_BadMessage(t *testing.T) {
	t.Parallel()

	d, q := keyPair()

	if Verify(q, Sign(d, q, []byte("this is great")), []byte("this is not great")) {
		t.Error("did verify")
	}
}

func TestSignAndVerify_BadSig(t *testing.T) {
	t.Parallel()

	d, q := keyPair()

	sig := Sign(d, q, []byte("this is great"))

	// Modify the signature.
	sig[0] ^= 1

	if Verify(q, sig, []byte("this is great")) {
		t.Error("did verify")
	}
}

func TestVerify_ShortSig(t *testing.T) {
	t.Parallel()

	_, q := keyPair()

	if Verify(q, []byte("nope"), []byte("this is great")) {
		t.Error("did verify")
	}
}

func keyPair() (*ristretto255.Scalar, *ristretto255.Element) {
	d := ristretto255.NewScalar().FromUniformBytes(bytes.Repeat([]byte{0xf2}, protocol.UniformBytestringSize))

	return d, ristretto255.NewElement().ScalarBaseMult(d)
}
