package cpauth

import (
	"context"
	"log/slog"
	"math/big"
	"time"
)

// A Session is a credential issued to a subject after a successful proof.
type Session struct {
	Subject   string    `json:"subject"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Token     string    `json:"session_token"`
}

// LogValue implements slog.LogValuer. The token is never logged.
func (s *Session) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("subject", s.Subject),
		slog.Time("issued_at", s.IssuedAt),
		slog.Time("expires_at", s.ExpiresAt),
		slog.String("token", "[redacted]"),
	)
}

// An Issuer converts a successful verification into a session credential.
type Issuer interface {
	Issue(ctx context.Context, subject string) (*Session, error)
}

// IssuerFunc adapts a function to the Issuer interface.
type IssuerFunc func(ctx context.Context, subject string) (*Session, error)

// Issue calls f(ctx, subject).
func (f IssuerFunc) Issue(ctx context.Context, subject string) (*Session, error) {
	return f(ctx, subject)
}

// A Transport carries the three protocol operations from a prover to a verifier. Implementations
// must report failures with the sentinel errors of this package so callers can use errors.Is.
type Transport interface {
	// Register stores the commitments for the username.
	Register(ctx context.Context, username string, y1, y2 *big.Int) error

	// CreateChallenge issues a new challenge for the username, invalidating any earlier one.
	CreateChallenge(ctx context.Context, username string) (*big.Int, error)

	// Verify checks the response to the username's pending challenge and returns a session.
	Verify(ctx context.Context, username string, s *big.Int) (*Session, error)
}
