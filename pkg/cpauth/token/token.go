// Package token issues and verifies signed, time-bounded session tokens.
//
// A token is the base58 encoding of:
//
//	VERSION (1) || ID (16) || LE_U64(ISSUED) || LE_U64(EXPIRES) || LE_U32(LEN(SUBJECT)) || SUBJECT ||
//	SIGNATURE (64)
//
// where ISSUED and EXPIRES are Unix times in seconds and SIGNATURE is a Schnorr signature over
// everything which precedes it. The random ID makes every token unique, even for the same subject
// in the same second.
package token

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/codahale/cpauth/pkg/cpauth"
	"github.com/codahale/cpauth/pkg/cpauth/internal/protocol"
	"github.com/codahale/cpauth/pkg/cpauth/internal/rng"
	"github.com/codahale/cpauth/pkg/cpauth/internal/schnorr"
	"github.com/mr-tron/base58"
)

const (
	// MaxSubject is the length of the longest subject a token can carry.
	MaxSubject = 1024

	// DefaultTTL is how long tokens are good for unless NewIssuer is told otherwise.
	DefaultTTL = time.Hour
)

const (
	version    = 1
	idSize     = 16
	headerSize = 1 + idSize + 8 + 8 + 4
	minSize    = headerSize + schnorr.SignatureSize
)

var (
	// ErrInvalidToken is returned when a token is malformed or its signature does not verify.
	ErrInvalidToken = errors.New("token: invalid token")

	// ErrExpiredToken is returned when a token with a valid signature has expired.
	ErrExpiredToken = errors.New("token: expired token")
)

// An Issuer signs session tokens. It implements cpauth.Issuer.
type Issuer struct {
	key  *PrivateKey
	ttl  time.Duration
	now  func() time.Time
	rand io.Reader
}

// Option configures an Issuer.
type Option func(*Issuer)

// WithClock sets the source of the current time.
func WithClock(now func() time.Time) Option {
	return func(i *Issuer) {
		i.now = now
	}
}

// WithRandom sets the source of token IDs.
func WithRandom(r io.Reader) Option {
	return func(i *Issuer) {
		i.rand = r
	}
}

// NewIssuer returns an Issuer which signs tokens good for ttl with the given key. A non-positive
// ttl means DefaultTTL.
func NewIssuer(key *PrivateKey, ttl time.Duration, opts ...Option) *Issuer {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	i := &Issuer{key: key, ttl: ttl, now: time.Now, rand: rng.Reader}

	for _, opt := range opts {
		opt(i)
	}

	return i
}

var _ cpauth.Issuer = (*Issuer)(nil)

// Issue returns a signed session for the subject.
func (i *Issuer) Issue(ctx context.Context, subject string) (*cpauth.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if subject == "" || len(subject) > MaxSubject {
		return nil, fmt.Errorf("token: subject must be 1 to %d bytes long", MaxSubject)
	}

	var id [idSize]byte
	if _, err := io.ReadFull(i.rand, id[:]); err != nil {
		return nil, fmt.Errorf("token: generating ID: %w", err)
	}

	issued := i.now().Truncate(time.Second)
	expires := issued.Add(i.ttl)

	msg := make([]byte, 0, headerSize+len(subject)+schnorr.SignatureSize)
	msg = append(msg, version)
	msg = append(msg, id[:]...)
	msg = append(msg, protocol.LittleEndianU64(uint64(issued.Unix()))...)
	msg = append(msg, protocol.LittleEndianU64(uint64(expires.Unix()))...)
	msg = append(msg, protocol.LittleEndianU32(len(subject))...)
	msg = append(msg, subject...)
	msg = append(msg, schnorr.Sign(i.key.d, i.key.q, msg)...)

	return &cpauth.Session{
		Subject:   subject,
		IssuedAt:  time.Unix(issued.Unix(), 0).UTC(),
		ExpiresAt: time.Unix(expires.Unix(), 0).UTC(),
		Token:     base58.Encode(msg),
	}, nil
}

// Verify checks the token's signature with the given public key and returns the session it carries.
// It returns ErrExpiredToken if the token has expired as of now.
func Verify(pub *PublicKey, token string, now time.Time) (*cpauth.Session, error) {
	b, err := base58.Decode(token)
	if err != nil || len(b) < minSize || b[0] != version {
		return nil, ErrInvalidToken
	}

	n := int(binary.LittleEndian.Uint32(b[headerSize-4 : headerSize]))
	if n == 0 || n > MaxSubject || len(b) != minSize+n {
		return nil, ErrInvalidToken
	}

	msg, sig := b[:headerSize+n], b[headerSize+n:]
	if !schnorr.Verify(pub.q, sig, msg) {
		return nil, ErrInvalidToken
	}

	issued := time.Unix(int64(binary.LittleEndian.Uint64(b[1+idSize:])), 0).UTC()
	expires := time.Unix(int64(binary.LittleEndian.Uint64(b[1+idSize+8:])), 0).UTC()

	if expires.Before(issued) {
		return nil, ErrInvalidToken
	}

	if !now.Before(expires) {
		return nil, ErrExpiredToken
	}

	return &cpauth.Session{
		Subject:   string(b[headerSize : headerSize+n]),
		IssuedAt:  issued,
		ExpiresAt: expires,
		Token:     token,
	}, nil
}
