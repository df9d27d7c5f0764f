package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/setlist/internal/auth"
	"github.com/desertthunder/setlist/internal/repositories"
	"github.com/desertthunder/setlist/internal/shared"
	tu "github.com/desertthunder/setlist/internal/testing"
	"golang.org/x/crypto/bcrypt"
)

var epoch = time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)

type testAPI struct {
	handler http.Handler
	clock   *tu.Clock
	users   *repositories.UserRepository
	logs    *bytes.Buffer
}

func newTestAPI(t *testing.T, limiter *RateLimiter) *testAPI {
	t.Helper()

	db := tu.MustOpenDatabase(t)
	clock := tu.NewClock(epoch)
	var logs bytes.Buffer
	logger := shared.NewLogger(&logs)

	users := repositories.NewUserRepository(db)
	tokens, err := auth.NewTokenIssuer(shared.AuthConfig{SecretKey: tu.TestSecret}, auth.WithClock(clock.Now))
	if err != nil {
		t.Fatalf("NewTokenIssuer() error = %v", err)
	}
	accounts, err := auth.NewAccounts(users, auth.NewHasher(bcrypt.MinCost), tokens, logger)
	if err != nil {
		t.Fatalf("NewAccounts() error = %v", err)
	}

	api := NewAPI(Dependencies{
		Accounts:    accounts,
		Sessions:    auth.NewResolver(tokens, users, logger),
		Artists:     repositories.NewArtistRepository(db),
		Songs:       repositories.NewSongRepository(db),
		Playlists:   repositories.NewPlaylistRepository(db),
		DB:          db,
		Logger:      logger,
		AuthLimiter: limiter,
	})

	return &testAPI{handler: api, clock: clock, users: users, logs: &logs}
}

func (a *testAPI) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) login(t *testing.T, username, password string) string {
	t.Helper()

	if rec := a.do(t, http.MethodPost, "/api/signup", "", CredentialsRequest{Username: username, Password: password}); rec.Code != http.StatusOK {
		t.Fatalf("signup status = %d, body = %s", rec.Code, rec.Body.String())
	}
	rec := a.do(t, http.MethodPost, "/api/login", "", CredentialsRequest{Username: username, Password: password})
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, body = %s", rec.Code, rec.Body.String())
	}
	return decode[TokenResponse](t, rec).AccessToken
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
	return v
}

func expectError(t *testing.T, rec *httptest.ResponseRecorder, status int) ErrorResponse {
	t.Helper()

	if rec.Code != status {
		t.Fatalf("expected status %d, got %d: %s", status, rec.Code, rec.Body.String())
	}
	body := decode[ErrorResponse](t, rec)
	if body.Detail == "" {
		t.Error("expected a detail message")
	}
	return body
}

func TestScenario(t *testing.T) {
	api := newTestAPI(t, nil)

	rec := api.do(t, http.MethodPost, "/api/signup", "", CredentialsRequest{Username: "alice", Password: "secret"})
	if rec.Code != http.StatusOK {
		t.Fatalf("signup status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if msg := decode[MessageResponse](t, rec); msg.Message != "User created successfully" {
		t.Errorf("unexpected signup message %q", msg.Message)
	}

	rec = api.do(t, http.MethodPost, "/api/login", "", CredentialsRequest{Username: "alice", Password: "secret"})
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, body = %s", rec.Code, rec.Body.String())
	}
	session := decode[TokenResponse](t, rec)
	if session.AccessToken == "" || session.TokenType != "bearer" {
		t.Fatalf("unexpected login response %+v", session)
	}
	if !session.ExpiresAt.Equal(epoch.Add(shared.DefaultTokenTTL)) {
		t.Errorf("expected expires_at %v, got %v", epoch.Add(shared.DefaultTokenTTL), session.ExpiresAt)
	}
	token := session.AccessToken

	rec = api.do(t, http.MethodGet, "/api/me", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("me status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if me := decode[UserResponse](t, rec); me.Username != "alice" || me.ID == "" {
		t.Errorf("unexpected identity %+v", me)
	}

	rec = api.do(t, http.MethodPost, "/api/artists", token, ArtistRequest{Name: "Artist A"})
	if rec.Code != http.StatusOK {
		t.Fatalf("create artist status = %d, body = %s", rec.Code, rec.Body.String())
	}
	artist := decode[ArtistResponse](t, rec)
	if artist.ID == "" || artist.Name != "Artist A" {
		t.Fatalf("unexpected artist %+v", artist)
	}

	rec = api.do(t, http.MethodPost, "/api/songs", token, SongRequest{Title: "Song A", ArtistID: shared.GenerateID()})
	if body := expectError(t, rec, http.StatusNotFound); body.Detail != "Artist not found" {
		t.Errorf("unexpected detail %q", body.Detail)
	}

	rec = api.do(t, http.MethodGet, "/api/songs", "", nil)
	if songs := decode[[]SongResponse](t, rec); len(songs) != 0 {
		t.Fatalf("song with a bad artist was inserted: %+v", songs)
	}

	rec = api.do(t, http.MethodPost, "/api/songs", token, SongRequest{Title: "Song A", ArtistID: artist.ID})
	if rec.Code != http.StatusOK {
		t.Fatalf("create song status = %d, body = %s", rec.Code, rec.Body.String())
	}
	song := decode[SongResponse](t, rec)
	if song.ID == "" || song.Title != "Song A" || song.ArtistID != artist.ID {
		t.Errorf("unexpected song %+v", song)
	}
}

func TestAuthEndpoints(t *testing.T) {
	t.Run("Duplicate Signup", func(t *testing.T) {
		api := newTestAPI(t, nil)
		creds := CredentialsRequest{Username: "alice", Password: "secret"}

		if rec := api.do(t, http.MethodPost, "/api/signup", "", creds); rec.Code != http.StatusOK {
			t.Fatalf("signup status = %d", rec.Code)
		}
		body := expectError(t, api.do(t, http.MethodPost, "/api/signup", "", creds), http.StatusBadRequest)
		if body.Detail != "Username already registered" {
			t.Errorf("unexpected detail %q", body.Detail)
		}
	})

	t.Run("Bad Signup Input", func(t *testing.T) {
		api := newTestAPI(t, nil)

		tc := []struct {
			name string
			body any
		}{
			{name: "empty body", body: nil},
			{name: "malformed json", body: `{"username":`},
			{name: "trailing data", body: `{"username":"a","password":"b"} {}`},
			{name: "missing password", body: CredentialsRequest{Username: "bob"}},
			{name: "missing username", body: CredentialsRequest{Password: "secret"}},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				expectError(t, api.do(t, http.MethodPost, "/api/signup", "", tt.body), http.StatusBadRequest)
			})
		}
	})

	t.Run("Invalid Credentials", func(t *testing.T) {
		api := newTestAPI(t, nil)
		api.login(t, "alice", "secret")

		for _, creds := range []CredentialsRequest{
			{Username: "alice", Password: "wrong"},
			{Username: "nobody", Password: "secret"},
		} {
			rec := api.do(t, http.MethodPost, "/api/login", "", creds)
			body := expectError(t, rec, http.StatusUnauthorized)
			if body.Detail != "Incorrect username or password" {
				t.Errorf("unexpected detail %q", body.Detail)
			}
		}
	})

	t.Run("Me Requires Token", func(t *testing.T) {
		api := newTestAPI(t, nil)

		rec := api.do(t, http.MethodGet, "/api/me", "", nil)
		expectError(t, rec, http.StatusUnauthorized)
		if got := rec.Header().Get("WWW-Authenticate"); got != "Bearer" {
			t.Errorf("expected WWW-Authenticate Bearer, got %q", got)
		}
	})

	t.Run("Expired Token", func(t *testing.T) {
		api := newTestAPI(t, nil)
		token := api.login(t, "alice", "secret")

		api.clock.Advance(shared.DefaultTokenTTL)

		body := expectError(t, api.do(t, http.MethodGet, "/api/me", token, nil), http.StatusUnauthorized)
		if body.Detail != "Could not validate credentials" {
			t.Errorf("unexpected detail %q", body.Detail)
		}
	})

	t.Run("Deleted User Token", func(t *testing.T) {
		api := newTestAPI(t, nil)
		token := api.login(t, "alice", "secret")

		user, err := api.users.GetByUsername(context.Background(), "alice")
		if err != nil {
			t.Fatalf("GetByUsername() error = %v", err)
		}
		if err := api.users.Delete(context.Background(), user.ID()); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}

		expectError(t, api.do(t, http.MethodGet, "/api/me", token, nil), http.StatusUnauthorized)
		expectError(t, api.do(t, http.MethodPost, "/api/artists", token, ArtistRequest{Name: "X"}), http.StatusUnauthorized)
	})
}

func TestCatalogEndpoints(t *testing.T) {
	t.Run("Writes Require Auth", func(t *testing.T) {
		api := newTestAPI(t, nil)

		tc := []struct {
			path string
			body any
		}{
			{path: "/api/artists", body: ArtistRequest{Name: "A"}},
			{path: "/api/songs", body: SongRequest{Title: "S", ArtistID: shared.GenerateID()}},
			{path: "/api/playlists", body: PlaylistRequest{Name: "P"}},
		}

		for _, tt := range tc {
			t.Run(tt.path, func(t *testing.T) {
				expectError(t, api.do(t, http.MethodPost, tt.path, "", tt.body), http.StatusUnauthorized)
				expectError(t, api.do(t, http.MethodPost, tt.path, "not-a-token", tt.body), http.StatusUnauthorized)
			})
		}
	})

	t.Run("Lists Are Public And Ordered", func(t *testing.T) {
		api := newTestAPI(t, nil)
		token := api.login(t, "alice", "secret")

		rec := api.do(t, http.MethodGet, "/api/artists", "", nil)
		if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "[]" {
			t.Fatalf("expected empty list, got %d %s", rec.Code, rec.Body.String())
		}

		for _, name := range []string{"Zeta", "Alpha", "Mu"} {
			if rec := api.do(t, http.MethodPost, "/api/artists", token, ArtistRequest{Name: name}); rec.Code != http.StatusOK {
				t.Fatalf("create artist status = %d", rec.Code)
			}
		}

		artists := decode[[]ArtistResponse](t, api.do(t, http.MethodGet, "/api/artists", "", nil))
		if len(artists) != 3 {
			t.Fatalf("expected 3 artists, got %d", len(artists))
		}
		for i, name := range []string{"Zeta", "Alpha", "Mu"} {
			if artists[i].Name != name {
				t.Errorf("artist %d: expected %s, got %s", i, name, artists[i].Name)
			}
		}
	})

	t.Run("Blank Artist Name", func(t *testing.T) {
		api := newTestAPI(t, nil)
		token := api.login(t, "alice", "secret")

		body := expectError(t, api.do(t, http.MethodPost, "/api/artists", token, ArtistRequest{Name: "  "}), http.StatusBadRequest)
		if body.Detail != "artist name is required" {
			t.Errorf("unexpected detail %q", body.Detail)
		}
	})

	t.Run("Playlist Owner", func(t *testing.T) {
		api := newTestAPI(t, nil)
		token := api.login(t, "alice", "secret")
		me := decode[UserResponse](t, api.do(t, http.MethodGet, "/api/me", token, nil))

		rec := api.do(t, http.MethodPost, "/api/playlists", token, PlaylistRequest{Name: "Road Trip"})
		if rec.Code != http.StatusOK {
			t.Fatalf("create playlist status = %d, body = %s", rec.Code, rec.Body.String())
		}
		playlist := decode[PlaylistResponse](t, rec)
		if playlist.Name != "Road Trip" || playlist.OwnerID == nil || *playlist.OwnerID != me.ID {
			t.Errorf("unexpected playlist %+v", playlist)
		}

		playlists := decode[[]PlaylistResponse](t, api.do(t, http.MethodGet, "/api/playlists", "", nil))
		if len(playlists) != 1 || playlists[0].ID != playlist.ID {
			t.Errorf("unexpected playlists %+v", playlists)
		}
	})

	t.Run("Method Not Allowed", func(t *testing.T) {
		api := newTestAPI(t, nil)

		if rec := api.do(t, http.MethodDelete, "/api/artists", "", nil); rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}
	})
}

func TestHealth(t *testing.T) {
	t.Run("OK", func(t *testing.T) {
		api := newTestAPI(t, nil)

		rec := api.do(t, http.MethodGet, "/health", "", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if body := decode[map[string]string](t, rec); body["status"] != "ok" {
			t.Errorf("unexpected body %v", body)
		}
	})

	t.Run("Database Down", func(t *testing.T) {
		h := NewHealthHandler(pingerFunc(func(context.Context) error { return errors.New("closed") }))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		expectError(t, rec, http.StatusServiceUnavailable)
	})
}

type pingerFunc func(context.Context) error

func (f pingerFunc) PingContext(ctx context.Context) error { return f(ctx) }

func TestServer(t *testing.T) {
	t.Run("Serves Until Cancelled", func(t *testing.T) {
		config := shared.DefaultConfig().Server
		router := NewBasicRouter()
		router.Handler(NewHealthHandler(nil))

		srv, err := New(config, router, shared.NewLogger(&bytes.Buffer{}))
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatalf("failed to listen: %v", err)
		}

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- srv.Serve(ctx, listener) }()

		resp, err := http.Get("http://" + listener.Addr().String() + "/health")
		if err != nil {
			t.Fatalf("GET /health error = %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("expected 200, got %d", resp.StatusCode)
		}

		cancel()
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("Serve() error = %v", err)
			}
		case <-time.After(5 * time.Second):
			t.Fatal("server did not shut down")
		}
	})

	t.Run("Bad Timeouts", func(t *testing.T) {
		config := shared.DefaultConfig().Server
		config.ReadTimeout = "soon"

		if _, err := New(config, NewBasicRouter(), nil); !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}
