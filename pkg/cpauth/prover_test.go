package cpauth

import (
	"errors"
	"math/big"
	"testing"
	"testing/iotest"

	"github.com/codahale/gubbins/assert"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestProver_Register(t *testing.T) {
	t.Parallel()

	p := NewProver(DemoParams())
	assert.Equal(t, "state", Idle, p.State())

	y1, y2, err := p.register("alice", big.NewInt(42), big.NewInt(17))
	if err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, "y1", big.NewInt(32711), y1, equateBigInts)
	assert.Equal(t, "y2", big.NewInt(24594), y2, equateBigInts)
	assert.Equal(t, "state", Registered, p.State())
	assert.Equal(t, "username", "alice", p.Username())

	c1, c2 := p.Commitments()
	assert.Equal(t, "commitment y1", y1, c1, equateBigInts)
	assert.Equal(t, "commitment y2", y2, c2, equateBigInts)
}

func TestProver_RegisterRejectsBadSecrets(t *testing.T) {
	t.Parallel()

	p := NewProver(DemoParams())

	for _, x := range []*big.Int{nil, big.NewInt(0), big.NewInt(-1), big.NewInt(53238), big.NewInt(53239)} {
		_, _, err := p.Register("alice", x)
		assert.Equal(t, "error", ErrInvalidArgument, err, cmpopts.EquateErrors())
	}

	_, _, err := p.Register("", big.NewInt(42))
	assert.Equal(t, "empty username", ErrInvalidArgument, err, cmpopts.EquateErrors())
	assert.Equal(t, "state", Idle, p.State())
}

func TestProver_RegisterDrawsFreshNonces(t *testing.T) {
	t.Parallel()

	p := NewProver(RFC3526Group14())

	_, first, err := p.Register("alice", big.NewInt(42))
	if err != nil {
		t.Fatal(err)
	}

	_, second, err := p.Register("alice", big.NewInt(42))
	if err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, "distinct nonce commitments", false, first.Cmp(second) == 0)
}

func TestProver_WithNonceSource(t *testing.T) {
	t.Parallel()

	errEntropy := errors.New("entropy exhausted")
	p := NewProver(DemoParams(), WithNonceSource(iotest.ErrReader(errEntropy)))

	_, _, err := p.Register("alice", big.NewInt(42))
	assert.Equal(t, "error", errEntropy, err, cmpopts.EquateErrors())
	assert.Equal(t, "state", Idle, p.State())
}

func TestProver_Answer(t *testing.T) {
	t.Parallel()

	p := NewProver(DemoParams())

	if _, _, err := p.register("alice", big.NewInt(42), big.NewInt(17)); err != nil {
		t.Fatal(err)
	}

	s, err := p.Answer(big.NewInt(10))
	if err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, "response", big.NewInt(437), s, equateBigInts)
	assert.Equal(t, "state", Challenged, p.State())
}

func TestProver_AnswerIsNotReduced(t *testing.T) {
	t.Parallel()

	p := NewProver(DemoParams())

	if _, _, err := p.register("alice", big.NewInt(53237), big.NewInt(53237)); err != nil {
		t.Fatal(err)
	}

	c := new(big.Int).Lsh(big.NewInt(1), 200)

	s, err := p.Answer(c)
	if err != nil {
		t.Fatal(err)
	}

	want := new(big.Int).Mul(c, big.NewInt(53237))
	want.Add(want, big.NewInt(53237))

	assert.Equal(t, "response", want, s, equateBigInts)
}

func TestProver_AnswerBeforeRegister(t *testing.T) {
	t.Parallel()

	p := NewProver(DemoParams())

	_, err := p.Answer(big.NewInt(10))
	assert.Equal(t, "error", ErrProtocolViolation, err, cmpopts.EquateErrors())
	assert.Equal(t, "state", Idle, p.State())
}

func TestProver_AnswerRejectsBadChallenges(t *testing.T) {
	t.Parallel()

	p := NewProver(DemoParams())

	for _, c := range []*big.Int{nil, big.NewInt(-1)} {
		_, err := p.Answer(c)
		assert.Equal(t, "error", ErrInvalidArgument, err, cmpopts.EquateErrors())
	}
}

func TestProver_Close(t *testing.T) {
	t.Parallel()

	p := NewProver(DemoParams())

	if _, _, err := p.Register("alice", big.NewInt(42)); err != nil {
		t.Fatal(err)
	}

	if err := p.Close(); err != nil {
		t.Fatal(err)
	}

	y1, y2 := p.Commitments()

	assert.Equal(t, "state", Idle, p.State())
	assert.Equal(t, "username", "", p.Username())
	assert.Equal(t, "y1", (*big.Int)(nil), y1, equateBigInts)
	assert.Equal(t, "y2", (*big.Int)(nil), y2, equateBigInts)

	_, err := p.Answer(big.NewInt(10))
	assert.Equal(t, "answer", ErrProtocolViolation, err, cmpopts.EquateErrors())
}

func TestState_String(t *testing.T) {
	t.Parallel()

	for s, want := range map[State]string{
		Idle:          "idle",
		Registered:    "registered",
		Challenged:    "challenged",
		Authenticated: "authenticated",
		Failed:        "failed",
		State(99):     "unknown",
	} {
		assert.Equal(t, want, want, s.String())
	}
}
