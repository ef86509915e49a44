package cpauth

import (
	"math/big"
	"testing"

	"github.com/codahale/gubbins/assert"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestNewParams(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		p, g *big.Int
		err  error
	}{
		{"demo", big.NewInt(53239), big.NewInt(2), nil},
		{"mersenne", mersenne127(), big.NewInt(3), nil},
		{"nil modulus", nil, big.NewInt(2), ErrInvalidArgument},
		{"nil generator", big.NewInt(53239), nil, ErrInvalidArgument},
		{"tiny modulus", big.NewInt(3), big.NewInt(2), ErrInvalidArgument},
		{"composite modulus", big.NewInt(53241), big.NewInt(2), ErrInvalidArgument},
		{"generator of one", big.NewInt(53239), big.NewInt(1), ErrInvalidArgument},
		{"generator equal to modulus", big.NewInt(53239), big.NewInt(53239), ErrInvalidArgument},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewParams(tt.p, tt.g)
			assert.Equal(t, "error", tt.err, err, cmpopts.EquateErrors())
		})
	}
}

func TestNewParams_Copies(t *testing.T) {
	t.Parallel()

	p, g := big.NewInt(53239), big.NewInt(2)

	params, err := NewParams(p, g)
	if err != nil {
		t.Fatal(err)
	}

	p.SetInt64(7)
	params.Generator().SetInt64(5)

	assert.Equal(t, "params", "53239:2", params.String())
}

func TestParseParams(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"", "rfc3526-2048"} {
		params, err := ParseParams(s)
		if err != nil {
			t.Fatal(err)
		}

		assert.Equal(t, "modulus bits", 2048, params.Modulus().BitLen())
		assert.Equal(t, "default", true, params.Equal(RFC3526Group14()))
	}

	demo, err := ParseParams("demo")
	if err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, "demo", "53239:2", demo.String())

	custom, err := ParseParams("53239:2")
	if err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, "custom", true, custom.Equal(DemoParams()))

	for _, s := range []string{"53239", "x:2", "53239:y", "53241:2"} {
		_, err := ParseParams(s)
		assert.Equal(t, s, ErrInvalidArgument, err, cmpopts.EquateErrors())
	}
}

func TestRFC3526Group14(t *testing.T) {
	t.Parallel()

	params := RFC3526Group14()
	p := params.Modulus()

	assert.Equal(t, "prime", true, p.ProbablyPrime(20))
	assert.Equal(t, "generator", "2", params.Generator().String())

	// p = 2^2048 - 2^1984 - 1 + 2^64 * ( [2^1918 pi] + 124476 )
	assert.Equal(t, "low word", "ffffffffffffffff", new(big.Int).And(p, lowWord()).Text(16))
}

func TestParams_RoundTrip(t *testing.T) {
	t.Parallel()

	params := RFC3526Group14()

	parsed, err := ParseParams(params.String())
	if err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, "params", true, parsed.Equal(params))
}

// mersenne127 returns 2^127-1, a prime well outside of 64 bits.
func mersenne127() *big.Int {
	p := new(big.Int).Lsh(big.NewInt(1), 127)

	return p.Sub(p, big.NewInt(1))
}

func lowWord() *big.Int {
	w := new(big.Int).Lsh(big.NewInt(1), 64)

	return w.Sub(w, big.NewInt(1))
}
