package cpauth

import (
	"fmt"
	"math/big"

	"github.com/codahale/cpauth/pkg/cpauth/internal/balloonkdf"
	"github.com/codahale/cpauth/pkg/cpauth/internal/group"
)

// KDFParams contains the parameters of the balloon hashing passphrase KDF.
type KDFParams struct {
	Space, Time uint32 // The space and time balloon hashing parameters.
}

// DeriveSecret returns the long-term secret for the given username and passphrase, uniformly
// distributed in [1, p-1). The username is used as the salt, so the same passphrase yields
// unrelated secrets for different users. If kdf is nil, default parameters are used.
func DeriveSecret(params *Params, username string, passphrase []byte, kdf *KDFParams) (*big.Int, error) {
	if username == "" {
		return nil, fmt.Errorf("%w: empty username", ErrInvalidArgument)
	}

	if kdf == nil {
		kdf = &KDFParams{Space: 1024, Time: 8}
	}

	if kdf.Space == 0 || kdf.Time == 0 {
		return nil, fmt.Errorf("%w: KDF parameters must be positive", ErrInvalidArgument)
	}

	n := group.UniformBytestringSize(params.p)
	b := balloonkdf.DeriveKey(passphrase, []byte(username), kdf.Space, kdf.Time, n)

	x, err := group.ScalarFromUniformBytes(b, params.p)
	if err != nil {
		return nil, fmt.Errorf("cpauth: deriving secret: %w", err)
	}

	return x, nil
}
