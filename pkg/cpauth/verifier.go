package cpauth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"time"

	"github.com/codahale/cpauth/pkg/cpauth/internal/group"
	"github.com/codahale/cpauth/pkg/cpauth/internal/registry"
)

// Status is the verifier-side state of a user's authentication.
type Status = registry.Status

const (
	StatusRegistered = registry.Registered
	StatusChallenged = registry.Challenged
	StatusVerified   = registry.Verified
	StatusFailed     = registry.Failed
)

// DefaultChallengeTTL is how long a challenge stays answerable unless WithChallengeTTL says
// otherwise.
const DefaultChallengeTTL = 2 * time.Minute

// A Verifier stores users' commitments, issues challenges, and checks responses. It is safe for
// concurrent use, and operations on different usernames do not contend with each other.
type Verifier struct {
	params *Params
	issuer Issuer
	log    *slog.Logger
	ttl    time.Duration
	now    func() time.Time
	rand   io.Reader
	shards int
	reg    *registry.Registry
}

// VerifierOption configures a Verifier.
type VerifierOption func(*Verifier)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) VerifierOption {
	return func(v *Verifier) {
		v.log = l
	}
}

// WithChallengeTTL sets how long a challenge may be answered after it is issued. A non-positive
// TTL disables expiry.
func WithChallengeTTL(d time.Duration) VerifierOption {
	return func(v *Verifier) {
		v.ttl = d
	}
}

// WithClock sets the source of the current time.
func WithClock(now func() time.Time) VerifierOption {
	return func(v *Verifier) {
		v.now = now
	}
}

// WithChallengeSource sets the source of randomness for challenges.
func WithChallengeSource(r io.Reader) VerifierOption {
	return func(v *Verifier) {
		v.rand = r
	}
}

// WithShards sets the number of registry shards.
func WithShards(n int) VerifierOption {
	return func(v *Verifier) {
		v.shards = n
	}
}

// NewVerifier returns a Verifier with no registered users which asks the given Issuer for a
// session after every successful proof.
func NewVerifier(params *Params, issuer Issuer, opts ...VerifierOption) *Verifier {
	v := &Verifier{
		params: params,
		issuer: issuer,
		ttl:    DefaultChallengeTTL,
		now:    time.Now,
		shards: registry.DefaultShards,
	}

	for _, opt := range opts {
		opt(v)
	}

	if v.log == nil {
		v.log = slog.Default()
	}

	v.reg = registry.New(v.shards)

	return v
}

var _ Transport = (*Verifier)(nil)

// Register stores the commitments y1 and y2 for the username. It returns ErrDuplicateUser if the
// username is already registered.
func (v *Verifier) Register(ctx context.Context, username string, y1, y2 *big.Int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if username == "" {
		return fmt.Errorf("%w: empty username", ErrInvalidArgument)
	}

	if !group.InGroup(y1, v.params.p) || !group.InGroup(y2, v.params.p) {
		return fmt.Errorf("%w: commitment out of range", ErrInvalidArgument)
	}

	if _, err := v.reg.Insert(username, y1, y2); err != nil {
		if errors.Is(err, registry.ErrExists) {
			return fmt.Errorf("%w: %q", ErrDuplicateUser, username)
		}

		return err
	}

	v.log.DebugContext(ctx, "registered", "username", username)

	return nil
}

// CreateChallenge issues a random challenge in [1, p-1) for the username. Any earlier challenge
// which has not been answered can no longer be.
func (v *Verifier) CreateChallenge(ctx context.Context, username string) (*big.Int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if username == "" {
		return nil, fmt.Errorf("%w: empty username", ErrInvalidArgument)
	}

	c, err := group.RandomScalar(v.rand, v.params.p)
	if err != nil {
		return nil, fmt.Errorf("cpauth: drawing challenge: %w", err)
	}

	return v.challenge(ctx, username, c)
}

func (v *Verifier) challenge(ctx context.Context, username string, c *big.Int) (*big.Int, error) {
	rec, err := v.reg.IssueChallenge(username, c, v.now())
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return nil, fmt.Errorf("%w: %q", ErrUserNotFound, username)
		}

		return nil, err
	}

	v.log.DebugContext(ctx, "challenge issued", "username", username, "generation", rec.Generation)

	return new(big.Int).Set(rec.Challenge), nil
}

// Verify consumes the username's pending challenge c and checks that g^s = y2·y1^c mod p. If so, it
// returns a session from the Issuer.
//
// The pending challenge is consumed whatever the outcome, so a second call with the same response
// returns ErrProtocolViolation. A mismatch returns ErrInvalidProof; a proof which checks out but for
// which no session can be issued returns ErrCredentialIssuance.
func (v *Verifier) Verify(ctx context.Context, username string, s *big.Int) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if username == "" {
		return nil, fmt.Errorf("%w: empty username", ErrInvalidArgument)
	}

	if s == nil || s.Sign() < 0 {
		return nil, fmt.Errorf("%w: response must be non-negative", ErrInvalidArgument)
	}

	rec, err := v.reg.ConsumeChallenge(username)
	switch {
	case errors.Is(err, registry.ErrNotFound):
		return nil, fmt.Errorf("%w: %q", ErrUserNotFound, username)
	case errors.Is(err, registry.ErrNoChallenge):
		return nil, fmt.Errorf("%w: no pending challenge for %q", ErrProtocolViolation, username)
	case err != nil:
		return nil, err
	}

	if v.ttl > 0 && v.now().Sub(rec.ChallengedAt) > v.ttl {
		v.settle(ctx, rec, StatusRegistered)

		return nil, fmt.Errorf("%w: challenge for %q expired", ErrProtocolViolation, username)
	}

	// g^s = y2·y1^c mod p
	left := v.params.exp(s)
	right := group.Mul(rec.Y2, group.Exp(rec.Y1, rec.Challenge, v.params.p), v.params.p)

	if left.Cmp(right) != 0 {
		v.settle(ctx, rec, StatusFailed)
		v.log.InfoContext(ctx, "invalid proof", "username", username)

		return nil, fmt.Errorf("%w: %q", ErrInvalidProof, username)
	}

	v.settle(ctx, rec, StatusVerified)

	sess, err := v.issuer.Issue(ctx, username)
	if err != nil {
		v.log.WarnContext(ctx, "session issuance failed", "username", username, "err", err)

		return nil, fmt.Errorf("%w: %w", ErrCredentialIssuance, err)
	}

	if sess == nil {
		v.log.WarnContext(ctx, "session issuance returned no session", "username", username)

		return nil, fmt.Errorf("%w: no session", ErrCredentialIssuance)
	}

	v.log.InfoContext(ctx, "verified", "username", username, "session", sess)

	return sess, nil
}

// Status returns the verifier-side status of the username.
func (v *Verifier) Status(username string) (Status, error) {
	rec, err := v.reg.Lookup(username)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return 0, fmt.Errorf("%w: %q", ErrUserNotFound, username)
		}

		return 0, err
	}

	return rec.Status, nil
}

// Users returns the number of registered users.
func (v *Verifier) Users() int {
	return v.reg.Len()
}

func (v *Verifier) settle(ctx context.Context, rec registry.Record, status Status) {
	if !v.reg.Settle(rec.Username, rec.Generation, status) {
		v.log.DebugContext(ctx, "status superseded", "username", rec.Username, "status", status)
	}
}
