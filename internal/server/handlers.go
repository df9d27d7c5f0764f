package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/desertthunder/setlist/internal/auth"
	"github.com/desertthunder/setlist/internal/models"
	"github.com/desertthunder/setlist/internal/shared"
)

// AccountService performs signup and login.
type AccountService interface {
	Signup(ctx context.Context, username, password string) (*models.User, error)
	Login(ctx context.Context, username, password string) (*auth.Session, error)
}

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// CredentialsRequest is the body of signup and login.
type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// TokenResponse is returned by a successful login.
type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type UserResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type ArtistRequest struct {
	Name string `json:"name"`
}

type ArtistResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type SongRequest struct {
	Title    string `json:"title"`
	ArtistID string `json:"artist_id"`
}

type SongResponse struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	ArtistID string `json:"artist_id"`
}

type PlaylistRequest struct {
	Name string `json:"name"`
}

// PlaylistResponse describes a playlist. OwnerID is null for playlists without an owner.
type PlaylistResponse struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	OwnerID *string `json:"owner_id"`
}

// AuthHandler serves signup, login and the current user.
type AuthHandler struct {
	accounts AccountService
	routes   routeTable
}

// NewAuthHandler creates an [AuthHandler]. Signup and login are rate limited by limiter, which may be nil.
func NewAuthHandler(accounts AccountService, sessions SessionResolver, limiter *RateLimiter) *AuthHandler {
	h := &AuthHandler{accounts: accounts}
	h.routes = routeTable{
		"POST /api/signup": limiter.Limit(http.HandlerFunc(h.signup)),
		"POST /api/login":  limiter.Limit(http.HandlerFunc(h.login)),
		"GET /api/me":      RequireAuth(sessions)(http.HandlerFunc(h.me)),
	}
	return h
}

func (h *AuthHandler) Routes() []string { return h.routes.patterns() }

func (h *AuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) { h.routes.serve(w, r) }

func (h *AuthHandler) signup(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	if _, err := h.accounts.Signup(r.Context(), req.Username, req.Password); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "User created successfully"})
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	session, err := h.accounts.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, TokenResponse{
		AccessToken: session.AccessToken,
		TokenType:   session.TokenType,
		ExpiresAt:   session.ExpiresAt.UTC(),
	})
}

func (h *AuthHandler) me(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, r, shared.ErrUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, UserResponse{ID: user.ID(), Username: user.Username()})
}

// CatalogHandler serves artists, songs and playlists. Listing is public; creating requires a session.
type CatalogHandler struct {
	artists   models.ArtistStore
	songs     models.SongStore
	playlists models.PlaylistStore
	routes    routeTable
}

// NewCatalogHandler creates a [CatalogHandler] over the given stores.
func NewCatalogHandler(artists models.ArtistStore, songs models.SongStore, playlists models.PlaylistStore, sessions SessionResolver) *CatalogHandler {
	h := &CatalogHandler{artists: artists, songs: songs, playlists: playlists}
	authenticated := RequireAuth(sessions)
	h.routes = routeTable{
		"GET /api/artists":    http.HandlerFunc(h.listArtists),
		"POST /api/artists":   authenticated(http.HandlerFunc(h.createArtist)),
		"GET /api/songs":      http.HandlerFunc(h.listSongs),
		"POST /api/songs":     authenticated(http.HandlerFunc(h.createSong)),
		"GET /api/playlists":  http.HandlerFunc(h.listPlaylists),
		"POST /api/playlists": authenticated(http.HandlerFunc(h.createPlaylist)),
	}
	return h
}

func (h *CatalogHandler) Routes() []string { return h.routes.patterns() }

func (h *CatalogHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) { h.routes.serve(w, r) }

func (h *CatalogHandler) listArtists(w http.ResponseWriter, r *http.Request) {
	artists, err := h.artists.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := make([]ArtistResponse, 0, len(artists))
	for _, a := range artists {
		resp = append(resp, artistResponse(a))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *CatalogHandler) createArtist(w http.ResponseWriter, r *http.Request) {
	var req ArtistRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	artist := models.NewArtist(req.Name)
	if err := h.artists.Create(r.Context(), artist); err != nil {
		writeError(w, r, err)
		return
	}

	LoggerFromContext(r.Context()).Info("artist created", "artist_id", artist.ID())
	writeJSON(w, http.StatusOK, artistResponse(artist))
}

func (h *CatalogHandler) listSongs(w http.ResponseWriter, r *http.Request) {
	songs, err := h.songs.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := make([]SongResponse, 0, len(songs))
	for _, s := range songs {
		resp = append(resp, songResponse(s))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *CatalogHandler) createSong(w http.ResponseWriter, r *http.Request) {
	var req SongRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	song := models.NewSong(req.Title, req.ArtistID)
	if err := h.songs.Create(r.Context(), song); err != nil {
		writeError(w, r, err)
		return
	}

	LoggerFromContext(r.Context()).Info("song created", "song_id", song.ID(), "artist_id", song.ArtistID())
	writeJSON(w, http.StatusOK, songResponse(song))
}

func (h *CatalogHandler) listPlaylists(w http.ResponseWriter, r *http.Request) {
	playlists, err := h.playlists.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := make([]PlaylistResponse, 0, len(playlists))
	for _, p := range playlists {
		resp = append(resp, playlistResponse(p))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *CatalogHandler) createPlaylist(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, r, shared.ErrUnauthorized)
		return
	}

	var req PlaylistRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	playlist := models.NewPlaylist(req.Name, user.ID())
	if err := h.playlists.Create(r.Context(), playlist); err != nil {
		writeError(w, r, err)
		return
	}

	LoggerFromContext(r.Context()).Info("playlist created", "playlist_id", playlist.ID(), "owner_id", user.ID())
	writeJSON(w, http.StatusOK, playlistResponse(playlist))
}

// HealthHandler reports whether the service can reach its database.
type HealthHandler struct {
	db Pinger
}

func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

func (h *HealthHandler) Routes() []string { return []string{"GET /health"} }

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := h.db.PingContext(ctx); err != nil {
			writeError(w, r, fmt.Errorf("%w: database: %v", shared.ErrServiceUnavailable, err))
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func artistResponse(a *models.Artist) ArtistResponse {
	return ArtistResponse{ID: a.ID(), Name: a.Name()}
}

func songResponse(s *models.Song) SongResponse {
	return SongResponse{ID: s.ID(), Title: s.Title(), ArtistID: s.ArtistID()}
}

func playlistResponse(p *models.Playlist) PlaylistResponse {
	resp := PlaylistResponse{ID: p.ID(), Name: p.Name()}
	if p.HasOwner() {
		owner := p.OwnerID()
		resp.OwnerID = &owner
	}
	return resp
}
