package main

import (
	"encoding/json"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/codahale/cpauth/pkg/cpauth/token"
)

type verifyTokenCmd struct {
	PublicKey string `arg:"" help:"The issuer's public key, or the path to it."`
	Token     string `arg:"" help:"The session token."`
}

func (cmd *verifyTokenCmd) Run(_ *kong.Context) error {
	pk, err := decodePublicKey(cmd.PublicKey)
	if err != nil {
		return err
	}

	sess, err := token.Verify(pk, cmd.Token, time.Now())
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	return enc.Encode(sess)
}
