package cpauth

import (
	"context"
	"errors"
	"fmt"
	"math/big"
)

// Enroll registers the prover with the given username and secret, then sends the resulting
// commitments over the transport.
func Enroll(ctx context.Context, t Transport, p *Prover, username string, secret *big.Int) error {
	y1, y2, err := p.Register(username, secret)
	if err != nil {
		return err
	}

	return t.Register(ctx, username, y1, y2)
}

// Authenticate requests a challenge for the prover's username, answers it, and returns the session
// issued for the answer. The prover ends up Authenticated if the proof was accepted and Failed if it
// was rejected. Transport errors before a verdict leave the prover's state as it was.
func Authenticate(ctx context.Context, t Transport, p *Prover) (*Session, error) {
	username := p.Username()
	if username == "" {
		return nil, fmt.Errorf("%w: authenticating before registering", ErrProtocolViolation)
	}

	c, err := t.CreateChallenge(ctx, username)
	if err != nil {
		return nil, err
	}

	s, err := p.Answer(c)
	if err != nil {
		return nil, err
	}

	sess, err := t.Verify(ctx, username, s)

	switch {
	case err == nil, errors.Is(err, ErrCredentialIssuance):
		p.finish(true)
	case errors.Is(err, ErrInvalidProof):
		p.finish(false)
	}

	return sess, err
}
