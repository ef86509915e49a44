package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/codahale/cpauth/pkg/cpauth"
	"github.com/codahale/cpauth/pkg/cpauth/wire"
)

type loginCmd struct {
	Server   string        `env:"CPAUTH_SERVER" default:"http://[::1]:50051" help:"The base URL of the server."`
	Params   string        `env:"CPAUTH_PARAMS" default:"rfc3526-2048" help:"The protocol parameters: rfc3526-2048, demo, or <modulus>:<generator>."`
	Timeout  time.Duration `env:"CPAUTH_TIMEOUT" default:"30s" help:"The timeout for each request."`
	KDFSpace uint32        `env:"CPAUTH_KDF_SPACE" default:"1024" help:"The balloon hashing space parameter."`
	KDFTime  uint32        `env:"CPAUTH_KDF_TIME" default:"8" help:"The balloon hashing time parameter."`
	Username string        `arg:"" help:"The username to authenticate as."`
}

func (cmd *loginCmd) Run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	params, err := cpauth.ParseParams(cmd.Params)
	if err != nil {
		return err
	}

	passphrase, err := askPassphrase("Enter passphrase: ")
	if err != nil {
		return err
	}

	sess, err := cmd.login(ctx, wire.NewClient(cmd.Server, wire.WithHTTPClient(&http.Client{Timeout: cmd.Timeout})),
		params, passphrase)
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "authenticated", "session", sess)

	_, err = fmt.Println(sess.Token)

	return err
}

func (cmd *loginCmd) login(
	ctx context.Context, t cpauth.Transport, params *cpauth.Params, passphrase []byte,
) (*cpauth.Session, error) {
	x, err := cpauth.DeriveSecret(params, cmd.Username, passphrase,
		&cpauth.KDFParams{Space: cmd.KDFSpace, Time: cmd.KDFTime})
	if err != nil {
		return nil, err
	}

	p := cpauth.NewProver(params)
	defer func() { _ = p.Close() }()

	if err := cpauth.Enroll(ctx, t, p, cmd.Username, x); err != nil {
		return nil, err
	}

	return cpauth.Authenticate(ctx, t, p)
}
