package cpauth_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"time"

	"github.com/codahale/cpauth/pkg/cpauth"
	"github.com/codahale/cpauth/pkg/cpauth/token"
)

func Example() {
	ctx := context.Background()
	params := cpauth.RFC3526Group14()

	// The server generates a key for signing session tokens and starts a verifier.
	key, err := token.GenerateKey()
	if err != nil {
		panic(err)
	}

	verifier := cpauth.NewVerifier(params, token.NewIssuer(key, time.Hour),
		cpauth.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

	// Alice turns her passphrase into a secret and registers her commitments. The verifier is used
	// directly here; over a network, a wire.Client takes its place.
	secret, err := cpauth.DeriveSecret(params, "alice", []byte("correct horse battery staple"), nil)
	if err != nil {
		panic(err)
	}

	alice := cpauth.NewProver(params)
	defer func() { _ = alice.Close() }()

	if err := cpauth.Enroll(ctx, verifier, alice, "alice", secret); err != nil {
		panic(err)
	}

	// Alice asks for a challenge, answers it, and gets a session.
	sess, err := cpauth.Authenticate(ctx, verifier, alice)
	if err != nil {
		panic(err)
	}

	// Anyone with the server's public key can check the session token.
	checked, err := token.Verify(key.PublicKey(), sess.Token, time.Now())
	if err != nil {
		panic(err)
	}

	fmt.Println(checked.Subject, alice.State())
	// Output:
	// alice authenticated
}

func ExampleVerifier_Verify() {
	ctx := context.Background()
	params := cpauth.DemoParams()
	issuer := cpauth.IssuerFunc(func(_ context.Context, subject string) (*cpauth.Session, error) {
		return &cpauth.Session{Subject: subject, Token: "opaque"}, nil
	})
	verifier := cpauth.NewVerifier(params, issuer, cpauth.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

	prover := cpauth.NewProver(params)
	if err := cpauth.Enroll(ctx, verifier, prover, "alice", big.NewInt(42)); err != nil {
		panic(err)
	}

	c, err := verifier.CreateChallenge(ctx, "alice")
	if err != nil {
		panic(err)
	}

	s, err := prover.Answer(c)
	if err != nil {
		panic(err)
	}

	if _, err := verifier.Verify(ctx, "alice", s); err != nil {
		panic(err)
	}

	// The challenge was consumed, so the same response is refused.
	_, err = verifier.Verify(ctx, "alice", s)
	fmt.Println(err)
	// Output:
	// cpauth: protocol violation: no pending challenge for "alice"
}
