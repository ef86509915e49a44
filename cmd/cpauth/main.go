package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/codahale/cpauth/pkg/cpauth/token"
	"golang.org/x/term"
)

type cli struct {
	LogLevel  string `env:"CPAUTH_LOG_LEVEL" enum:"debug,info,warn,error" default:"info" help:"The minimum level of logged messages."`
	LogFormat string `env:"CPAUTH_LOG_FORMAT" enum:"text,json" default:"text" help:"The format of logged messages."`

	Server      serverCmd      `cmd:"" help:"Run a verifier server."`
	Login       loginCmd       `cmd:"" help:"Register with a server and authenticate."`
	IssuerKey   issuerKeyCmd   `cmd:"" help:"Generate a new session token signing key."`
	VerifyToken verifyTokenCmd `cmd:"" help:"Verify a session token."`
	Params      paramsCmd      `cmd:"" help:"Print protocol parameters."`
}

func main() {
	var cli cli

	ctx := kong.Parse(&cli,
		kong.Description("Password-free authentication with Chaum-Pedersen zero-knowledge proofs."),
		kong.Configuration(kong.JSON, "/etc/cpauth.json", "~/.cpauth.json"),
	)
	err := ctx.Run(newLogger(os.Stderr, cli.LogLevel, cli.LogFormat))
	ctx.FatalIfErrorf(err)
}

func newLogger(w io.Writer, level, format string) *slog.Logger {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		l = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: l}

	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}

	return slog.New(slog.NewTextHandler(w, opts))
}

func decodePublicKey(pathOrKey string) (*token.PublicKey, error) {
	// Try decoding the key directly.
	var pk token.PublicKey
	if err := pk.UnmarshalText([]byte(pathOrKey)); err == nil {
		return &pk, nil
	}

	// Otherwise, try reading the contents of it as a file.
	b, err := os.ReadFile(pathOrKey)
	if err != nil {
		return nil, err
	}

	if err := pk.UnmarshalText([]byte(strings.TrimSpace(string(b)))); err != nil {
		return nil, err
	}

	return &pk, nil
}

func readPrivateKey(path string) (*token.PrivateKey, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sk token.PrivateKey
	if err := sk.UnmarshalText([]byte(strings.TrimSpace(string(b)))); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &sk, nil
}

func askPassphrase(prompt string) ([]byte, error) {
	defer func() { _, _ = fmt.Fprintln(os.Stderr) }()

	_, _ = fmt.Fprint(os.Stderr, prompt)

	return term.ReadPassword(int(os.Stdin.Fd()))
}

func openOutput(path string) (io.WriteCloser, error) {
	if path == "-" {
		return nopCloser{os.Stdout}, nil
	}

	return os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error {
	return nil
}
