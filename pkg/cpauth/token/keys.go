package token

import (
	"encoding"
	"errors"
	"fmt"

	"github.com/codahale/cpauth/pkg/cpauth/internal/protocol"
	"github.com/codahale/cpauth/pkg/cpauth/internal/rng"
	"github.com/codahale/cpauth/pkg/cpauth/internal/schnorr"
	"github.com/gtank/ristretto255"
	"github.com/mr-tron/base58"
)

// ErrInvalidKey is returned when a key cannot be decoded.
var ErrInvalidKey = errors.New("token: invalid key")

// PrivateKey is the key an Issuer signs session tokens with.
//
// It can be marshalled and unmarshalled as a base58 string for storage.
type PrivateKey struct {
	d *ristretto255.Scalar
	q *ristretto255.Element
}

// GenerateKey returns a new random PrivateKey.
func GenerateKey() (*PrivateKey, error) {
	var buf [protocol.UniformBytestringSize]byte

	if _, err := rng.Read(buf[:]); err != nil {
		return nil, err
	}

	return newPrivateKey(ristretto255.NewScalar().FromUniformBytes(buf[:])), nil
}

func newPrivateKey(d *ristretto255.Scalar) *PrivateKey {
	return &PrivateKey{d: d, q: ristretto255.NewElement().ScalarBaseMult(d)}
}

// PublicKey returns the PublicKey which verifies tokens signed by the receiver.
func (pk *PrivateKey) PublicKey() *PublicKey {
	return &PublicKey{q: pk.q}
}

// MarshalBinary encodes the private key into a 32-byte slice.
func (pk *PrivateKey) MarshalBinary() (data []byte, err error) {
	return pk.d.Encode(nil), nil
}

// UnmarshalBinary decodes the private key from a 32-byte slice.
func (pk *PrivateKey) UnmarshalBinary(data []byte) error {
	if len(data) != schnorr.ScalarSize {
		return ErrInvalidKey
	}

	d := ristretto255.NewScalar()
	if err := d.Decode(data); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}

	*pk = *newPrivateKey(d)

	return nil
}

// MarshalText encodes the private key into base58 text and returns the result.
func (pk *PrivateKey) MarshalText() (text []byte, err error) {
	return []byte(base58.Encode(pk.d.Encode(nil))), nil
}

// UnmarshalText decodes the results of MarshalText and updates the receiver to contain the decoded
// private key.
func (pk *PrivateKey) UnmarshalText(text []byte) error {
	data, err := base58.Decode(string(text))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}

	return pk.UnmarshalBinary(data)
}

// PublicKey verifies session tokens.
//
// It can be marshalled and unmarshalled as a base58 string for human consumption.
type PublicKey struct {
	q *ristretto255.Element
}

// String returns the public key as base58 text.
func (pk *PublicKey) String() string {
	text, err := pk.MarshalText()
	if err != nil {
		panic(err)
	}

	return string(text)
}

// MarshalBinary encodes the public key into a 32-byte slice.
func (pk *PublicKey) MarshalBinary() (data []byte, err error) {
	return pk.q.Encode(nil), nil
}

// UnmarshalBinary decodes the public key from a 32-byte slice.
func (pk *PublicKey) UnmarshalBinary(data []byte) error {
	if len(data) != schnorr.ElementSize {
		return ErrInvalidKey
	}

	q := ristretto255.NewElement()
	if err := q.Decode(data); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}

	pk.q = q

	return nil
}

// MarshalText encodes the public key into base58 text and returns the result.
func (pk *PublicKey) MarshalText() (text []byte, err error) {
	return []byte(base58.Encode(pk.q.Encode(nil))), nil
}

// UnmarshalText decodes the results of MarshalText and updates the receiver to contain the decoded
// public key.
func (pk *PublicKey) UnmarshalText(text []byte) error {
	data, err := base58.Decode(string(text))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}

	return pk.UnmarshalBinary(data)
}

var (
	_ encoding.BinaryMarshaler   = &PrivateKey{}
	_ encoding.BinaryUnmarshaler = &PrivateKey{}
	_ encoding.TextMarshaler     = &PrivateKey{}
	_ encoding.TextUnmarshaler   = &PrivateKey{}
	_ encoding.BinaryMarshaler   = &PublicKey{}
	_ encoding.BinaryUnmarshaler = &PublicKey{}
	_ encoding.TextMarshaler     = &PublicKey{}
	_ encoding.TextUnmarshaler   = &PublicKey{}
	_ fmt.Stringer               = &PublicKey{}
)
