package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/setlist/internal/shared"
)

// MaxBodyBytes caps JSON request bodies.
const MaxBodyBytes = 1 << 20

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

type errorMapping struct {
	err    error
	status int
	detail string
}

// errorStatuses is checked in order. An empty detail shows the message following the sentinel.
var errorStatuses = []errorMapping{
	{shared.ErrDuplicateUsername, http.StatusBadRequest, "Username already registered"},
	{shared.ErrInvalidInput, http.StatusBadRequest, ""},
	{shared.ErrInvalidCredentials, http.StatusUnauthorized, "Incorrect username or password"},
	{shared.ErrUnauthorized, http.StatusUnauthorized, "Could not validate credentials"},
	{shared.ErrArtistNotFound, http.StatusNotFound, "Artist not found"},
	{shared.ErrNotFound, http.StatusNotFound, "Not found"},
	{shared.ErrRateLimited, http.StatusTooManyRequests, "Too many requests"},
	{shared.ErrServiceUnavailable, http.StatusServiceUnavailable, "Service unavailable"},
}

// statusFor maps err to an HTTP status and a client-safe message.
func statusFor(err error) (int, string) {
	for _, m := range errorStatuses {
		if errors.Is(err, m.err) {
			if m.detail == "" {
				return m.status, detailAfter(err, m.err)
			}
			return m.status, m.detail
		}
	}
	return http.StatusInternalServerError, "Internal server error"
}

// detailAfter drops the wrapping context in front of sentinel and the sentinel itself,
// so "validation failed: invalid input: name is required" becomes "name is required".
func detailAfter(err, sentinel error) string {
	msg := err.Error()
	prefix := sentinel.Error() + ": "
	if i := strings.LastIndex(msg, prefix); i >= 0 {
		return msg[i+len(prefix):]
	}
	return sentinel.Error()
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError replies with the status mapped from err. Unmapped errors are logged with their cause.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, detail := statusFor(err)
	logger := LoggerFromContext(r.Context())

	switch {
	case status >= http.StatusInternalServerError:
		logger.Error("request failed", "error", err)
	case status == http.StatusUnauthorized:
		w.Header().Set("WWW-Authenticate", "Bearer")
		fallthrough
	default:
		logger.Debug("request rejected", "status", status, "error", err)
	}

	writeJSON(w, status, ErrorResponse{Detail: detail})
}

// decodeJSON reads a single JSON object from the request body into dest.
// Unknown fields are ignored.
func decodeJSON(w http.ResponseWriter, r *http.Request, dest any) error {
	if r.Body == nil {
		return fmt.Errorf("%w: request body is required", shared.ErrInvalidInput)
	}

	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err := decoder.Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: request body is required", shared.ErrInvalidInput)
		}
		return fmt.Errorf("%w: malformed JSON body: %v", shared.ErrInvalidInput, err)
	}
	if decoder.More() {
		return fmt.Errorf("%w: request body must contain a single JSON object", shared.ErrInvalidInput)
	}
	return nil
}

// routeTable maps mux patterns to the handler serving them, letting a [Handler] dispatch on [http.Request.Pattern].
type routeTable map[string]http.Handler

func (t routeTable) patterns() []string {
	patterns := make([]string, 0, len(t))
	for pattern := range t {
		patterns = append(patterns, pattern)
	}
	sort.Strings(patterns)
	return patterns
}

func (t routeTable) serve(w http.ResponseWriter, r *http.Request) {
	if h, ok := t[r.Pattern]; ok {
		h.ServeHTTP(w, r)
		return
	}
	writeError(w, r, fmt.Errorf("%w: %s %s", shared.ErrNotFound, r.Method, r.URL.Path))
}

var discardLogger = log.New(io.Discard)
