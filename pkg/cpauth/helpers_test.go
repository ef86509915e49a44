package cpauth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math/big"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/go-cmp/cmp"
)

//nolint:gochecknoglobals // test options
var equateBigInts = cmp.Comparer(func(a, b *big.Int) bool {
	if a == nil || b == nil {
		return a == b
	}

	return a.Cmp(b) == 0
})

var errIssuerDown = errors.New("issuer down")

// fakeIssuer issues sessions whose tokens are the subject and a sequence number.
type fakeIssuer struct {
	n    atomic.Int64
	fail bool
}

func (f *fakeIssuer) Issue(_ context.Context, subject string) (*Session, error) {
	if f.fail {
		return nil, errIssuerDown
	}

	n := f.n.Add(1)
	issued := time.Date(2021, 4, 1, 12, 0, 0, 0, time.UTC)

	return &Session{
		Subject:   subject,
		IssuedAt:  issued,
		ExpiresAt: issued.Add(time.Hour),
		Token:     subject + "/" + strconv.FormatInt(n, 10),
	}, nil
}

func (f *fakeIssuer) issued() int64 {
	return f.n.Load()
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestVerifier(params *Params, issuer Issuer, opts ...VerifierOption) *Verifier {
	return NewVerifier(params, issuer, append([]VerifierOption{WithLogger(quietLogger())}, opts...)...)
}

// fakeClock is a settable clock.
type fakeClock struct {
	t atomic.Int64
}

func newFakeClock() *fakeClock {
	c := &fakeClock{}
	c.t.Store(time.Date(2021, 4, 1, 12, 0, 0, 0, time.UTC).UnixNano())

	return c
}

func (c *fakeClock) Now() time.Time {
	return time.Unix(0, c.t.Load()).UTC()
}

func (c *fakeClock) Advance(d time.Duration) {
	c.t.Add(int64(d))
}
