package cpauth

import (
	"fmt"
	"io"
	"math/big"
	"sync"

	"github.com/codahale/cpauth/pkg/cpauth/internal/group"
)

// State is the prover-side state of an authentication attempt.
type State int

const (
	Idle State = iota
	Registered
	Challenged
	Authenticated
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Registered:
		return "registered"
	case Challenged:
		return "challenged"
	case Authenticated:
		return "authenticated"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// A Prover holds a secret and a nonce, derives commitments from them, and answers challenges. The
// secret and nonce never leave the Prover.
type Prover struct {
	params *Params
	rand   io.Reader

	mu       sync.Mutex
	state    State
	username string
	x, k     *big.Int
	y1, y2   *big.Int
}

// ProverOption configures a Prover.
type ProverOption func(*Prover)

// WithNonceSource sets the source of randomness for nonces. The default is a STROBE-hardened
// wrapper around crypto/rand.
func WithNonceSource(r io.Reader) ProverOption {
	return func(p *Prover) {
		p.rand = r
	}
}

// NewProver returns an idle Prover using the given parameters.
func NewProver(params *Params, opts ...ProverOption) *Prover {
	p := &Prover{params: params}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Register draws a fresh nonce k and returns the commitments y1 = g^secret mod p and y2 = g^k mod
// p for the given username. The secret and nonce are retained until the Prover is registered again
// or closed. The secret must be in [1, p-1).
func (p *Prover) Register(username string, secret *big.Int) (y1, y2 *big.Int, err error) {
	if username == "" {
		return nil, nil, fmt.Errorf("%w: empty username", ErrInvalidArgument)
	}

	if !group.InScalarRange(secret, p.params.p) {
		return nil, nil, fmt.Errorf("%w: secret out of range", ErrInvalidArgument)
	}

	k, err := group.RandomScalar(p.rand, p.params.p)
	if err != nil {
		return nil, nil, fmt.Errorf("cpauth: drawing nonce: %w", err)
	}

	return p.register(username, secret, k)
}

func (p *Prover) register(username string, secret, k *big.Int) (y1, y2 *big.Int, err error) {
	x, k := new(big.Int).Set(secret), new(big.Int).Set(k)
	y1, y2 = p.params.exp(x), p.params.exp(k)

	p.mu.Lock()
	defer p.mu.Unlock()

	p.wipe()
	p.username = username
	p.x, p.k = x, k
	p.y1, p.y2 = y1, y2
	p.state = Registered

	return new(big.Int).Set(y1), new(big.Int).Set(y2), nil
}

// Answer returns the response s = k + cx to the challenge c. The response is not reduced: the
// verifier's check is modular, the response itself is not.
//
// Answer returns ErrProtocolViolation if the Prover has not registered.
func (p *Prover) Answer(c *big.Int) (*big.Int, error) {
	if c == nil || c.Sign() < 0 {
		return nil, fmt.Errorf("%w: challenge must be non-negative", ErrInvalidArgument)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == Idle {
		return nil, fmt.Errorf("%w: answering a challenge before registering", ErrProtocolViolation)
	}

	s := new(big.Int).Mul(c, p.x)
	s.Add(s, p.k)

	p.state = Challenged

	return s, nil
}

// State returns the current state of the Prover.
func (p *Prover) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.state
}

// Username returns the username the Prover registered, if any.
func (p *Prover) Username() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.username
}

// Commitments returns copies of the registered commitments, or nils if the Prover is idle.
func (p *Prover) Commitments() (y1, y2 *big.Int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == Idle {
		return nil, nil
	}

	return new(big.Int).Set(p.y1), new(big.Int).Set(p.y2)
}

// Close wipes the secret and nonce and returns the Prover to Idle.
func (p *Prover) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.wipe()
	p.state = Idle
	p.username = ""
	p.y1, p.y2 = nil, nil

	return nil
}

func (p *Prover) finish(ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == Idle {
		return
	}

	if ok {
		p.state = Authenticated
	} else {
		p.state = Failed
	}
}

func (p *Prover) wipe() {
	for _, n := range []*big.Int{p.x, p.k} {
		if n == nil {
			continue
		}

		words := n.Bits()
		for i := range words {
			words[i] = 0
		}

		n.SetInt64(0)
	}

	p.x, p.k = nil, nil
}
