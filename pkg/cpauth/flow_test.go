package cpauth

import (
	"context"
	"math/big"
	"testing"

	"github.com/codahale/gubbins/assert"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestAuthenticate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	v := newTestVerifier(DemoParams(), &fakeIssuer{})
	p := NewProver(DemoParams())

	if err := Enroll(ctx, v, p, "alice", big.NewInt(42)); err != nil {
		t.Fatal(err)
	}

	sess, err := Authenticate(ctx, v, p)
	if err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, "subject", "alice", sess.Subject)
	assert.Equal(t, "state", Authenticated, p.State())
}

func TestAuthenticate_WrongSecret(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	v := newTestVerifier(DemoParams(), &fakeIssuer{})
	honest := NewProver(DemoParams())

	if err := Enroll(ctx, v, honest, "alice", big.NewInt(42)); err != nil {
		t.Fatal(err)
	}

	// Same username, different secret and nonce, but the commitments never reach the verifier.
	impostor := NewProver(DemoParams())
	if _, _, err := impostor.Register("alice", big.NewInt(43)); err != nil {
		t.Fatal(err)
	}

	_, err := Authenticate(ctx, v, impostor)
	assert.Equal(t, "error", ErrInvalidProof, err, cmpopts.EquateErrors())
	assert.Equal(t, "state", Failed, impostor.State())

	if _, err := Authenticate(ctx, v, honest); err != nil {
		t.Fatal(err)
	}
}

func TestAuthenticate_Unregistered(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	v := newTestVerifier(DemoParams(), &fakeIssuer{})

	_, err := Authenticate(ctx, v, NewProver(DemoParams()))
	assert.Equal(t, "idle prover", ErrProtocolViolation, err, cmpopts.EquateErrors())

	p := NewProver(DemoParams())
	if _, _, err := p.Register("alice", big.NewInt(42)); err != nil {
		t.Fatal(err)
	}

	_, err = Authenticate(ctx, v, p)
	assert.Equal(t, "unknown user", ErrUserNotFound, err, cmpopts.EquateErrors())
	assert.Equal(t, "state", Registered, p.State())
}

func TestAuthenticate_IssuanceFailure(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	v := newTestVerifier(DemoParams(), &fakeIssuer{fail: true})
	p := NewProver(DemoParams())

	if err := Enroll(ctx, v, p, "alice", big.NewInt(42)); err != nil {
		t.Fatal(err)
	}

	_, err := Authenticate(ctx, v, p)
	assert.Equal(t, "error", ErrCredentialIssuance, err, cmpopts.EquateErrors())
	assert.Equal(t, "state", Authenticated, p.State())
}

func TestEnroll_Duplicate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	v := newTestVerifier(DemoParams(), &fakeIssuer{})

	if err := Enroll(ctx, v, NewProver(DemoParams()), "alice", big.NewInt(42)); err != nil {
		t.Fatal(err)
	}

	err := Enroll(ctx, v, NewProver(DemoParams()), "alice", big.NewInt(42))
	assert.Equal(t, "error", ErrDuplicateUser, err, cmpopts.EquateErrors())
}
