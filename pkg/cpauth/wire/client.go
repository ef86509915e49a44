package wire

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/codahale/cpauth/pkg/cpauth"
)

// DefaultTimeout bounds each request made by a Client using its default HTTP client.
const DefaultTimeout = 30 * time.Second

// A Client carries protocol operations to a server. It implements cpauth.Transport.
type Client struct {
	base string
	hc   *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.hc = hc
	}
}

// NewClient returns a Client for the server at the given base URL, e.g. "http://[::1]:50051".
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		base: strings.TrimSuffix(baseURL, "/"),
		hc:   &http.Client{Timeout: DefaultTimeout},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

var _ cpauth.Transport = (*Client)(nil)

// Register sends the commitments for the username to the server.
func (c *Client) Register(ctx context.Context, username string, y1, y2 *big.Int) error {
	var resp registerResponse

	return c.call(ctx, "/v1/register", registerRequest{
		Username: username,
		Y1:       decimal{y1},
		Y2:       decimal{y2},
	}, &resp)
}

// CreateChallenge asks the server for a challenge for the username.
func (c *Client) CreateChallenge(ctx context.Context, username string) (*big.Int, error) {
	var resp challengeResponse
	if err := c.call(ctx, "/v1/challenge", challengeRequest{Username: username}, &resp); err != nil {
		return nil, err
	}

	if resp.Challenge.Int == nil {
		return nil, fmt.Errorf("%w: server sent no challenge", cpauth.ErrProtocolViolation)
	}

	return resp.Challenge.Int, nil
}

// Verify sends the response to the username's challenge and returns the session the server issued.
func (c *Client) Verify(ctx context.Context, username string, s *big.Int) (*cpauth.Session, error) {
	var sess cpauth.Session
	if err := c.call(ctx, "/v1/verify", verifyRequest{Username: username, S: decimal{s}}, &sess); err != nil {
		return nil, err
	}

	if sess.Token == "" {
		return nil, fmt.Errorf("%w: server sent no session token", cpauth.ErrCredentialIssuance)
	}

	return &sess, nil
}

func (c *Client) call(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(body))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}

	defer func() { _ = resp.Body.Close() }()

	b, err := io.ReadAll(io.LimitReader(resp.Body, MaxRequestSize))
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		var e errorResponse
		if err := json.Unmarshal(b, &e); err != nil || e.Code == "" {
			return &Error{StatusCode: resp.StatusCode, Code: CodeInternal, Message: http.StatusText(resp.StatusCode)}
		}

		return &Error{StatusCode: resp.StatusCode, Code: e.Code, Message: e.Message}
	}

	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("wire: decoding %s response: %w", path, err)
	}

	return nil
}

// IsRemote returns true if the error was reported by a server, rather than by the client or network.
func IsRemote(err error) bool {
	var e *Error

	return errors.As(err, &e)
}
