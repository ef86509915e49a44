// Package cpauth provides password-free authentication via the Chaum–Pedersen zero-knowledge proof
// of knowledge of a discrete logarithm.
//
// A prover holding a secret x registers the commitments y1 = g^x mod p and y2 = g^k mod p, where k
// is a fresh random nonce. To authenticate, the verifier issues a random challenge c, the prover
// answers with s = k + cx, and the verifier accepts iff g^s = y2·y1^c mod p. The verifier never
// learns x, and a challenge is only ever good for a single answer.
//
// Every group element and scalar is an arbitrary-precision integer, in memory and on the wire.
package cpauth

import (
	"errors"
)

var (
	// ErrDuplicateUser is returned when registering a username which is already registered.
	ErrDuplicateUser = errors.New("cpauth: duplicate user")

	// ErrUserNotFound is returned when challenging or verifying an unknown username.
	ErrUserNotFound = errors.New("cpauth: user not found")

	// ErrProtocolViolation is returned when an operation is called out of order, e.g. verifying
	// without a pending challenge or answering a challenge without having registered.
	ErrProtocolViolation = errors.New("cpauth: protocol violation")

	// ErrInvalidProof is returned when a response does not satisfy the verification equation.
	ErrInvalidProof = errors.New("cpauth: invalid proof")

	// ErrCredentialIssuance is returned when a proof was valid but no session could be issued.
	ErrCredentialIssuance = errors.New("cpauth: credential issuance failed")

	// ErrInvalidArgument is returned when a value is missing or outside of its valid range.
	ErrInvalidArgument = errors.New("cpauth: invalid argument")
)
