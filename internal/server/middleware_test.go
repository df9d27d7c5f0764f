package server

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/desertthunder/setlist/internal/shared"
)

func TestRouter(t *testing.T) {
	t.Run("Middleware Order", func(t *testing.T) {
		var order []string
		mark := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		router := NewBasicRouter()
		router.Use(mark("first"), mark("second"))
		router.Handle(http.MethodGet, "/ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "handler")
		}))

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping", nil))

		if got := strings.Join(order, ","); got != "first,second,handler" {
			t.Errorf("unexpected order %s", got)
		}
	})

	t.Run("Method Patterns", func(t *testing.T) {
		router := NewBasicRouter()
		router.Handle("get", "/thing", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("get"))
		}))
		router.Handle(http.MethodPost, "/thing", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("post"))
		}))

		for _, method := range []string{http.MethodGet, http.MethodPost} {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(method, "/thing", nil))
			if rec.Body.String() != strings.ToLower(method) {
				t.Errorf("%s /thing served %q", method, rec.Body.String())
			}
		}

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/thing", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}

		if got := strings.Join(router.Routes(), ","); got != "GET /thing,POST /thing" {
			t.Errorf("unexpected registered routes %s", got)
		}
	})

	t.Run("Registered Routes", func(t *testing.T) {
		router := NewAPI(Dependencies{Logger: discardLogger})
		want := []string{
			"GET /api/artists", "POST /api/artists",
			"POST /api/login",
			"GET /api/me",
			"GET /api/playlists", "POST /api/playlists",
			"POST /api/signup",
			"GET /api/songs", "POST /api/songs",
			"GET /health",
		}
		if got := router.Routes(); strings.Join(got, ",") != strings.Join(want, ",") {
			t.Errorf("unexpected routes %v", got)
		}
	})

	t.Run("Handler Routes", func(t *testing.T) {
		h := NewCatalogHandler(nil, nil, nil, nil)
		want := []string{
			"GET /api/artists", "GET /api/playlists", "GET /api/songs",
			"POST /api/artists", "POST /api/playlists", "POST /api/songs",
		}
		if got := h.Routes(); strings.Join(got, ",") != strings.Join(want, ",") {
			t.Errorf("unexpected routes %v", got)
		}
	})
}

func TestRequestID(t *testing.T) {
	var logs bytes.Buffer
	logger := shared.NewLogger(&logs)

	var seen string
	handler := RequestID(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
		LoggerFromContext(r.Context()).Info("inside")
	}))

	t.Run("Generated", func(t *testing.T) {
		logs.Reset()
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		if !shared.IsID(seen) {
			t.Errorf("expected a generated ID, got %q", seen)
		}
		if rec.Header().Get(RequestIDHeader) != seen {
			t.Errorf("expected response header %q, got %q", seen, rec.Header().Get(RequestIDHeader))
		}
		if !strings.Contains(logs.String(), seen) {
			t.Errorf("expected log line to carry the request id, got %q", logs.String())
		}
	})

	t.Run("Propagated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "abc-123")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if seen != "abc-123" {
			t.Errorf("expected caller's id, got %q", seen)
		}
		if rec.Header().Get(RequestIDHeader) != "abc-123" {
			t.Errorf("expected echoed header, got %q", rec.Header().Get(RequestIDHeader))
		}
	})
}

func TestLoggingAndRecover(t *testing.T) {
	var logs bytes.Buffer
	logger := shared.NewLogger(&logs)

	router := NewBasicRouter()
	router.Use(RequestID(logger), Logging(), Recover())
	router.Handle(http.MethodGet, "/teapot", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	router.Handle(http.MethodGet, "/panic", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	router.Handle(http.MethodGet, "/late-panic", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, MessageResponse{Message: "partial"})
		panic("late boom")
	}))

	t.Run("Status Logged", func(t *testing.T) {
		logs.Reset()
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/teapot", nil))

		if rec.Code != http.StatusTeapot {
			t.Fatalf("expected 418, got %d", rec.Code)
		}
		out := logs.String()
		if !strings.Contains(out, "status=418") || !strings.Contains(out, "path=/teapot") {
			t.Errorf("unexpected request log %q", out)
		}
	})

	t.Run("Panic Becomes 500", func(t *testing.T) {
		logs.Reset()
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panic", nil))

		expectError(t, rec, http.StatusInternalServerError)
		if !strings.Contains(logs.String(), "boom") {
			t.Errorf("expected panic to be logged, got %q", logs.String())
		}
		if !strings.Contains(logs.String(), "status=500") {
			t.Errorf("expected 500 in request log, got %q", logs.String())
		}
	})

	t.Run("Panic After Write Aborts", func(t *testing.T) {
		logs.Reset()
		rec := httptest.NewRecorder()

		func() {
			defer func() {
				if r := recover(); r != http.ErrAbortHandler {
					t.Errorf("expected http.ErrAbortHandler, got %v", r)
				}
			}()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/late-panic", nil))
		}()

		if rec.Code != http.StatusOK {
			t.Errorf("expected the committed 200 to stand, got %d", rec.Code)
		}
		if strings.Contains(rec.Body.String(), "Internal server error") {
			t.Errorf("second reply appended to body: %q", rec.Body.String())
		}
		if !strings.Contains(logs.String(), "late boom") {
			t.Errorf("expected panic to be logged, got %q", logs.String())
		}
	})
}

func TestStatusFor(t *testing.T) {
	tc := []struct {
		err    error
		status int
	}{
		{shared.ErrDuplicateUsername, http.StatusBadRequest},
		{shared.ErrInvalidInput, http.StatusBadRequest},
		{shared.ErrInvalidCredentials, http.StatusUnauthorized},
		{shared.ErrUnauthorized, http.StatusUnauthorized},
		{shared.ErrArtistNotFound, http.StatusNotFound},
		{shared.ErrNotFound, http.StatusNotFound},
		{shared.ErrRateLimited, http.StatusTooManyRequests},
		{shared.ErrServiceUnavailable, http.StatusServiceUnavailable},
		{shared.ErrInvalidConfig, http.StatusInternalServerError},
	}

	for _, tt := range tc {
		t.Run(tt.err.Error(), func(t *testing.T) {
			status, detail := statusFor(tt.err)
			if status != tt.status {
				t.Errorf("expected %d, got %d", tt.status, status)
			}
			if detail == "" {
				t.Error("expected a detail")
			}
		})
	}

	t.Run("Invalid Input Detail Drops Wrapping", func(t *testing.T) {
		tc := []struct {
			err  error
			want string
		}{
			{fmt.Errorf("validation failed: %w: username is required", shared.ErrInvalidInput), "username is required"},
			{fmt.Errorf("%w: malformed JSON body: unexpected EOF", shared.ErrInvalidInput), "malformed JSON body: unexpected EOF"},
			{fmt.Errorf("create artist: %w", shared.ErrInvalidInput), "invalid input"},
			{shared.ErrInvalidInput, "invalid input"},
		}

		for _, tt := range tc {
			status, detail := statusFor(tt.err)
			if status != http.StatusBadRequest {
				t.Errorf("%v: expected 400, got %d", tt.err, status)
			}
			if detail != tt.want {
				t.Errorf("%v: expected detail %q, got %q", tt.err, tt.want, detail)
			}
		}
	})

	t.Run("Internal Errors Hide Cause", func(t *testing.T) {
		_, detail := statusFor(shared.ErrMissingConfig)
		if strings.Contains(detail, "configuration") {
			t.Errorf("internal error leaked: %q", detail)
		}
	})
}
