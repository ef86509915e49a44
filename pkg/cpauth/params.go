package cpauth

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/codahale/cpauth/pkg/cpauth/internal/group"
)

// Params are the public protocol parameters: a prime modulus p and a generator g. Params are
// immutable and safe to share between any number of provers and verifiers.
type Params struct {
	p, g *big.Int
}

// NewParams returns protocol parameters for the given modulus and generator. The modulus must be a
// prime greater than 3 and the generator must be in (1, p).
func NewParams(modulus, generator *big.Int) (*Params, error) {
	if modulus == nil || generator == nil {
		return nil, fmt.Errorf("%w: missing modulus or generator", ErrInvalidArgument)
	}

	if modulus.Cmp(big.NewInt(3)) <= 0 {
		return nil, fmt.Errorf("%w: modulus must be greater than 3", ErrInvalidArgument)
	}

	if generator.Cmp(big.NewInt(1)) <= 0 || generator.Cmp(modulus) >= 0 {
		return nil, fmt.Errorf("%w: generator must be in (1, modulus)", ErrInvalidArgument)
	}

	if !modulus.ProbablyPrime(20) {
		return nil, fmt.Errorf("%w: modulus is not prime", ErrInvalidArgument)
	}

	return &Params{p: new(big.Int).Set(modulus), g: new(big.Int).Set(generator)}, nil
}

// RFC3526Group14 returns the 2048-bit MODP group from RFC 3526 with generator 2. These are the
// default parameters.
func RFC3526Group14() *Params {
	return rfc3526Group14
}

// DemoParams returns the toy parameters p = 53239, g = 2. They are only suitable for testing.
func DemoParams() *Params {
	return demoParams
}

// ParseParams parses parameters in the form produced by Params.String, or one of the names
// "rfc3526-2048" and "demo".
func ParseParams(s string) (*Params, error) {
	switch s {
	case "rfc3526-2048", "":
		return RFC3526Group14(), nil
	case "demo":
		return DemoParams(), nil
	}

	ps, gs, ok := strings.Cut(s, ":")
	if !ok {
		return nil, fmt.Errorf("%w: parameters must be <modulus>:<generator>", ErrInvalidArgument)
	}

	p, ok := new(big.Int).SetString(ps, 10)
	if !ok {
		return nil, fmt.Errorf("%w: bad modulus", ErrInvalidArgument)
	}

	g, ok := new(big.Int).SetString(gs, 10)
	if !ok {
		return nil, fmt.Errorf("%w: bad generator", ErrInvalidArgument)
	}

	return NewParams(p, g)
}

// Modulus returns a copy of the prime modulus p.
func (pp *Params) Modulus() *big.Int {
	return new(big.Int).Set(pp.p)
}

// Generator returns a copy of the generator g.
func (pp *Params) Generator() *big.Int {
	return new(big.Int).Set(pp.g)
}

// String returns the parameters as <modulus>:<generator> in decimal.
func (pp *Params) String() string {
	return pp.p.String() + ":" + pp.g.String()
}

// Equal returns true if the given Params are equal to the receiver.
func (pp *Params) Equal(other *Params) bool {
	return pp.p.Cmp(other.p) == 0 && pp.g.Cmp(other.g) == 0
}

// exp returns g^x mod p.
func (pp *Params) exp(x *big.Int) *big.Int {
	return group.Exp(pp.g, x, pp.p)
}

func knownParams(p string, base, g int) *Params {
	n, ok := new(big.Int).SetString(p, base)
	if !ok {
		panic("cpauth: bad modulus " + p)
	}

	return &Params{p: n, g: big.NewInt(int64(g))}
}

//nolint:gochecknoglobals // constants
var (
	rfc3526Group14 = knownParams(
		"FFFFFFFFFFFFFFFFC90FDAA22168C234C4C6628B80DC1CD129024E088A67CC74020BBEA63B139B22514A08798E3404DD"+
			"EF9519B3CD3A431B302B0A6DF25F14374FE1356D6D51C245E485B576625E7EC6F44C42E9A637ED6B0BFF5CB6F406B7ED"+
			"EE386BFB5A899FA5AE9F24117C4B1FE649286651ECE45B3DC2007CB8A163BF0598DA48361C55D39A69163FA8FD24CF5F"+
			"83655D23DCA3AD961C62F356208552BB9ED529077096966D670C354E4ABC9804F1746C08CA18217C32905E462E36CE3B"+
			"E39E772C180E86039B2783A2EC07A28FB5C55DF06F4C52C9DE2BCBF6955817183995497CEA956AE515D2261898FA0510"+
			"15728E5A8AACAA68FFFFFFFFFFFFFFFF",
		16, 2)
	demoParams = knownParams("53239", 10, 2)
)
