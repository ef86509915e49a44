package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/codahale/cpauth/pkg/cpauth"
	"github.com/codahale/cpauth/pkg/cpauth/token"
	"github.com/codahale/cpauth/pkg/cpauth/wire"
	"golang.org/x/sync/errgroup"
)

type serverCmd struct {
	Listen          string        `env:"CPAUTH_LISTEN" default:"[::1]:50051" help:"The address to listen on."`
	Params          string        `env:"CPAUTH_PARAMS" default:"rfc3526-2048" help:"The protocol parameters: rfc3526-2048, demo, or <modulus>:<generator>."`
	IssuerKey       string        `env:"CPAUTH_ISSUER_KEY" type:"path" help:"The path to the session token signing key. A temporary key is generated if absent."`
	TokenTTL        time.Duration `env:"CPAUTH_TOKEN_TTL" default:"1h" help:"How long session tokens are good for."`
	ChallengeTTL    time.Duration `env:"CPAUTH_CHALLENGE_TTL" default:"2m" help:"How long a challenge may be answered."`
	Shards          int           `env:"CPAUTH_SHARDS" default:"64" help:"The number of user registry shards."`
	ShutdownTimeout time.Duration `env:"CPAUTH_SHUTDOWN_TIMEOUT" default:"10s" help:"How long to wait for requests to finish on shutdown."`
}

func (cmd *serverCmd) Run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	lis, err := net.Listen("tcp", cmd.Listen)
	if err != nil {
		return err
	}

	srv, err := cmd.newServer(logger)
	if err != nil {
		_ = lis.Close()

		return err
	}

	logger.InfoContext(ctx, "listening", "addr", lis.Addr().String())

	return serve(ctx, srv, lis, cmd.ShutdownTimeout)
}

func (cmd *serverCmd) newServer(logger *slog.Logger) (*http.Server, error) {
	params, err := cpauth.ParseParams(cmd.Params)
	if err != nil {
		return nil, err
	}

	key, err := cmd.loadKey(logger)
	if err != nil {
		return nil, err
	}

	v := cpauth.NewVerifier(params, token.NewIssuer(key, cmd.TokenTTL),
		cpauth.WithLogger(logger),
		cpauth.WithChallengeTTL(cmd.ChallengeTTL),
		cpauth.WithShards(cmd.Shards),
	)

	logger.Info("verifier ready",
		"modulus_bits", params.Modulus().BitLen(),
		"generator", params.Generator().String(),
		"issuer_key", key.PublicKey().String(),
	)

	return &http.Server{
		Handler:           wire.NewHandler(v, logger),
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}, nil
}

func (cmd *serverCmd) loadKey(logger *slog.Logger) (*token.PrivateKey, error) {
	if cmd.IssuerKey != "" {
		return readPrivateKey(cmd.IssuerKey)
	}

	logger.Warn("no issuer key configured; tokens will not survive a restart")

	return token.GenerateKey()
}

// serve runs srv on lis until ctx is done, then shuts it down, waiting up to timeout for requests
// in flight.
func serve(ctx context.Context, srv *http.Server, lis net.Listener, timeout time.Duration) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Serve(lis); !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
