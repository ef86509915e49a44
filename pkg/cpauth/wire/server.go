package wire

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/codahale/cpauth/pkg/cpauth"
)

// MaxRequestSize is the largest request body a handler will read.
const MaxRequestSize = 64 * 1024

type handler struct {
	t   cpauth.Transport
	log *slog.Logger
}

// NewHandler returns an http.Handler which serves the protocol operations of t, which is usually a
// *cpauth.Verifier. A nil logger means slog.Default().
func NewHandler(t cpauth.Transport, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}

	h := &handler{t: t, log: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/register", h.register)
	mux.HandleFunc("POST /v1/challenge", h.challenge)
	mux.HandleFunc("POST /v1/verify", h.verify)

	return mux
}

func (h *handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.t.Register(r.Context(), req.Username, req.Y1.Int, req.Y2.Int); err != nil {
		h.fail(w, r, err)

		return
	}

	h.respond(w, r, registerResponse{})
}

func (h *handler) challenge(w http.ResponseWriter, r *http.Request) {
	var req challengeRequest
	if !h.decode(w, r, &req) {
		return
	}

	c, err := h.t.CreateChallenge(r.Context(), req.Username)
	if err != nil {
		h.fail(w, r, err)

		return
	}

	h.respond(w, r, challengeResponse{Challenge: decimal{c}})
}

func (h *handler) verify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if !h.decode(w, r, &req) {
		return
	}

	sess, err := h.t.Verify(r.Context(), req.Username, req.S.Int)
	if err != nil {
		h.fail(w, r, err)

		return
	}

	h.respond(w, r, sess)
}

func (h *handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxRequestSize))
	if err := dec.Decode(v); err != nil {
		h.fail(w, r, fmt.Errorf("%w: %v", cpauth.ErrInvalidArgument, err))

		return false
	}

	return true
}

func (h *handler) respond(w http.ResponseWriter, r *http.Request, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.WarnContext(r.Context(), "writing response", "path", r.URL.Path, "err", err)
	}
}

func (h *handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	code, status := classify(err)

	if status >= http.StatusInternalServerError {
		h.log.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "code", code, "err", err)
	} else {
		h.log.DebugContext(r.Context(), "request rejected", "path", r.URL.Path, "code", code, "err", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(errorResponse{Code: code, Message: err.Error()}); err != nil {
		h.log.WarnContext(r.Context(), "writing error", "path", r.URL.Path, "err", err)
	}
}
