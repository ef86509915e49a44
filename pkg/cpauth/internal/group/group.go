// Package group implements arithmetic in the multiplicative group of integers modulo a prime.
//
// Every value stays a *big.Int from end to end. Nothing here narrows a result to a machine word,
// and nothing here does I/O beyond reading randomness.
package group

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/codahale/cpauth/pkg/cpauth/internal/rng"
)

// MinUniformPadding is the number of bytes beyond the modulus length a uniform bytestring must have
// for ScalarFromUniformBytes to produce a negligibly biased result.
const MinUniformPadding = 16

//nolint:gochecknoglobals // constants
var (
	one = big.NewInt(1)
	two = big.NewInt(2)
)

// Exp returns base^exp mod mod, computed by square-and-multiply.
//
// It panics if mod <= 1 or exp < 0. Both are programmer errors: callers validate values received
// from the network before they reach this function.
func Exp(base, exp, mod *big.Int) *big.Int {
	if mod.Cmp(one) <= 0 {
		panic(fmt.Sprintf("group: modulus must be greater than 1, was %s", mod))
	}

	if exp.Sign() < 0 {
		panic("group: negative exponent")
	}

	return new(big.Int).Exp(base, exp, mod)
}

// Mul returns a*b mod mod.
func Mul(a, b, mod *big.Int) *big.Int {
	z := new(big.Int).Mul(a, b)

	return z.Mod(z, mod)
}

// RandomScalar returns a value selected uniformly from [1, mod-1) using the given source of
// randomness, or rng.Reader if r is nil. The modulus must be greater than 2.
func RandomScalar(r io.Reader, mod *big.Int) (*big.Int, error) {
	if mod.Cmp(two) <= 0 {
		return nil, errors.New("group: modulus must be greater than 2")
	}

	if r == nil {
		r = rng.Reader
	}

	// [0, mod-2) + 1 = [1, mod-1)
	n, err := rand.Int(r, new(big.Int).Sub(mod, two))
	if err != nil {
		return nil, err
	}

	return n.Add(n, one), nil
}

// ScalarFromUniformBytes maps a uniform bytestring to a value in [1, mod-1). The bytestring must be
// at least MinUniformPadding bytes longer than the modulus.
func ScalarFromUniformBytes(b []byte, mod *big.Int) (*big.Int, error) {
	if mod.Cmp(two) <= 0 {
		return nil, errors.New("group: modulus must be greater than 2")
	}

	if len(b) < UniformBytestringSize(mod) {
		return nil, fmt.Errorf("group: need %d uniform bytes, got %d", UniformBytestringSize(mod), len(b))
	}

	n := new(big.Int).SetBytes(b)
	n.Mod(n, new(big.Int).Sub(mod, two))

	return n.Add(n, one), nil
}

// UniformBytestringSize returns the length of a bytestring suitable for ScalarFromUniformBytes.
func UniformBytestringSize(mod *big.Int) int {
	return (mod.BitLen()+7)/8 + MinUniformPadding
}

// InGroup returns true if 1 <= x < mod.
func InGroup(x, mod *big.Int) bool {
	return x != nil && x.Sign() > 0 && x.Cmp(mod) < 0
}

// InScalarRange returns true if 1 <= x < mod-1.
func InScalarRange(x, mod *big.Int) bool {
	return x != nil && x.Sign() > 0 && x.Cmp(new(big.Int).Sub(mod, one)) < 0
}
