// Package wire carries the cpauth protocol over HTTP with JSON bodies.
//
// Every operation is a POST of a JSON object:
//
//	/v1/register   {"username": "alice", "y1": "32711", "y2": "24594"} -> {}
//	/v1/challenge  {"username": "alice"} -> {"challenge": "10"}
//	/v1/verify     {"username": "alice", "s": "437"} -> {"subject": ..., "session_token": ...}
//
// Group elements and scalars are decimal strings of any length. Failures are reported as
// {"code": ..., "message": ...} with a status code matching the code.
package wire

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strconv"

	"github.com/codahale/cpauth/pkg/cpauth"
)

// Error codes.
const (
	CodeDuplicateUser      = "duplicate_user"
	CodeUserNotFound       = "user_not_found"
	CodeProtocolViolation  = "protocol_violation"
	CodeInvalidProof       = "invalid_proof"
	CodeCredentialIssuance = "credential_issuance"
	CodeInvalidArgument    = "invalid_argument"
	CodeInternal           = "internal"
)

//nolint:gochecknoglobals // constants
var codes = []struct {
	err    error
	code   string
	status int
}{
	{cpauth.ErrDuplicateUser, CodeDuplicateUser, http.StatusConflict},
	{cpauth.ErrUserNotFound, CodeUserNotFound, http.StatusNotFound},
	{cpauth.ErrProtocolViolation, CodeProtocolViolation, http.StatusPreconditionFailed},
	{cpauth.ErrInvalidProof, CodeInvalidProof, http.StatusUnauthorized},
	{cpauth.ErrCredentialIssuance, CodeCredentialIssuance, http.StatusServiceUnavailable},
	{cpauth.ErrInvalidArgument, CodeInvalidArgument, http.StatusBadRequest},
}

// Error is a failure reported by a server.
type Error struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("wire: %s (%d): %s", e.Code, e.StatusCode, e.Message)
}

// Unwrap returns the cpauth error matching the code, so errors.Is works on both sides of the wire.
func (e *Error) Unwrap() error {
	for _, c := range codes {
		if c.code == e.Code {
			return c.err
		}
	}

	return nil
}

func classify(err error) (code string, status int) {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code, c.status
		}
	}

	return CodeInternal, http.StatusInternalServerError
}

// decimal is a big integer carried as a JSON string in base 10.
type decimal struct {
	*big.Int
}

func (d decimal) MarshalJSON() ([]byte, error) {
	if d.Int == nil {
		return []byte("null"), nil
	}

	return strconv.AppendQuote(nil, d.Int.String()), nil
}

func (d *decimal) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		d.Int = nil

		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return errors.New("integers must be decimal strings")
	}

	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return fmt.Errorf("%q is not a decimal integer", s)
	}

	d.Int = n

	return nil
}

type registerRequest struct {
	Username string  `json:"username"`
	Y1       decimal `json:"y1"`
	Y2       decimal `json:"y2"`
}

type registerResponse struct{}

type challengeRequest struct {
	Username string `json:"username"`
}

type challengeResponse struct {
	Challenge decimal `json:"challenge"`
}

type verifyRequest struct {
	Username string  `json:"username"`
	S        decimal `json:"s"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
