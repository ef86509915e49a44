package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/codahale/cpauth/pkg/cpauth/token"
)

type issuerKeyCmd struct {
	Output string `arg:"" type:"path" default:"-" help:"The output path for the signing key."`
}

func (cmd *issuerKeyCmd) Run(_ *kong.Context) error {
	sk, err := token.GenerateKey()
	if err != nil {
		return err
	}

	text, err := sk.MarshalText()
	if err != nil {
		return err
	}

	dst, err := openOutput(cmd.Output)
	if err != nil {
		return err
	}

	defer func() { _ = dst.Close() }()

	if _, err := fmt.Fprintln(dst, string(text)); err != nil {
		return err
	}

	// The public key goes to stderr so the key file can be piped.
	_, err = fmt.Fprintln(os.Stderr, sk.PublicKey().String())

	return err
}
