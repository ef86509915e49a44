package main

import (
	"fmt"

	"github.com/alecthomas/kong"
	"github.com/codahale/cpauth/pkg/cpauth"
)

type paramsCmd struct {
	Params string `arg:"" default:"rfc3526-2048" help:"The protocol parameters: rfc3526-2048, demo, or <modulus>:<generator>."`
}

func (cmd *paramsCmd) Run(_ *kong.Context) error {
	params, err := cpauth.ParseParams(cmd.Params)
	if err != nil {
		return err
	}

	_, err = fmt.Printf("bits: %d\nmodulus: %s\ngenerator: %s\n",
		params.Modulus().BitLen(), params.Modulus(), params.Generator())

	return err
}
