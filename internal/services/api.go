// API service for making HTTP requests to the setlist server
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/desertthunder/setlist/internal/shared"
	"golang.org/x/oauth2"
)

// DefaultBaseURL is the address of a locally running server.
const DefaultBaseURL = "http://127.0.0.1:3000"

// APIService provides methods for calling the setlist HTTP API.
type APIService struct {
	baseURL    string
	httpClient *http.Client
	token      *oauth2.Token
}

// NewAPIService creates a new API service instance for the server at baseURL.
func NewAPIService(baseURL string, client *http.Client) *APIService {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &APIService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
	}
}

// SetToken sets the bearer token sent with every subsequent request. A nil token sends none.
func (a *APIService) SetToken(token *oauth2.Token) { a.token = token }

// Token returns the current bearer token, if any.
func (a *APIService) Token() *oauth2.Token { return a.token }

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
	JSONData   any
}

// OK reports whether the status is 2xx.
func (r *APIResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// APIError is a non-2xx reply from the server.
type APIError struct {
	StatusCode int
	Detail     string
	err        error
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%v: status %d", e.err, e.StatusCode)
	}
	return fmt.Sprintf("%v: status %d: %s", e.err, e.StatusCode, e.Detail)
}

func (e *APIError) Unwrap() error { return e.err }

// newAPIError maps a status and detail back onto the sentinel the server raised.
func newAPIError(resp *APIResponse) *APIError {
	var body struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		body.Detail = strings.TrimSpace(string(resp.Body))
	}

	var sentinel error
	switch resp.StatusCode {
	case http.StatusBadRequest:
		sentinel = shared.ErrInvalidInput
		if strings.Contains(strings.ToLower(body.Detail), "already registered") {
			sentinel = shared.ErrDuplicateUsername
		}
	case http.StatusUnauthorized:
		sentinel = shared.ErrUnauthorized
		if strings.Contains(strings.ToLower(body.Detail), "incorrect username or password") {
			sentinel = shared.ErrInvalidCredentials
		}
	case http.StatusNotFound:
		sentinel = shared.ErrNotFound
		if strings.EqualFold(body.Detail, "artist not found") {
			sentinel = shared.ErrArtistNotFound
		}
	case http.StatusTooManyRequests:
		sentinel = shared.ErrRateLimited
	case http.StatusServiceUnavailable:
		sentinel = shared.ErrServiceUnavailable
	default:
		sentinel = shared.ErrAPIRequest
	}

	return &APIError{StatusCode: resp.StatusCode, Detail: body.Detail, err: sentinel}
}

// client returns the HTTP client to use, wrapped with the bearer token when one is set.
func (a *APIService) client(ctx context.Context) *http.Client {
	if a.token == nil {
		return a.httpClient
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, a.httpClient)
	return oauth2.NewClient(ctx, oauth2.StaticTokenSource(a.token))
}

func (a *APIService) do(ctx context.Context, method, path string, body io.Reader) (*APIResponse, error) {
	fullURL := a.baseURL + path

	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.client(ctx).Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	apiResp := &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       data,
	}

	var jsonData any
	if err := json.Unmarshal(data, &jsonData); err == nil {
		apiResp.IsJSON = true
		apiResp.JSONData = jsonData
	}

	return apiResp, nil
}

// Get performs a GET request to the specified path and returns the raw response.
func (a *APIService) Get(ctx context.Context, path string) (*APIResponse, error) {
	return a.do(ctx, http.MethodGet, path, nil)
}

// Post performs a POST request with the given JSON data and returns the raw response.
func (a *APIService) Post(ctx context.Context, path string, data []byte) (*APIResponse, error) {
	return a.do(ctx, http.MethodPost, path, bytes.NewReader(data))
}

// call sends in as JSON (when non-nil) and decodes a successful reply into out (when non-nil).
func (a *APIService) call(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	resp, err := a.do(ctx, method, path, body)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	if !resp.OK() {
		return newAPIError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("%w: failed to decode response from %s: %v", shared.ErrAPIRequest, path, err)
	}
	return nil
}

// Health checks the /health endpoint.
func (a *APIService) Health(ctx context.Context) error {
	err := a.call(ctx, http.MethodGet, "/health", nil, nil)
	if errors.Is(err, shared.ErrAPIRequest) {
		return fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
	return err
}

// Signup registers username with password.
func (a *APIService) Signup(ctx context.Context, username, password string) error {
	return a.call(ctx, http.MethodPost, "/api/signup", credentials{Username: username, Password: password}, nil)
}

// Login exchanges credentials for a bearer token. The token is not stored on the service; see [APIService.SetToken].
func (a *APIService) Login(ctx context.Context, username, password string) (*oauth2.Token, error) {
	var resp tokenResponse
	if err := a.call(ctx, http.MethodPost, "/api/login", credentials{Username: username, Password: password}, &resp); err != nil {
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, fmt.Errorf("%w: login response has no access token", shared.ErrAPIRequest)
	}

	return &oauth2.Token{
		AccessToken: resp.AccessToken,
		TokenType:   resp.TokenType,
		Expiry:      resp.ExpiresAt,
	}, nil
}

func (a *APIService) Me(ctx context.Context) (*User, error) {
	var user User
	if err := a.call(ctx, http.MethodGet, "/api/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (a *APIService) Artists(ctx context.Context) ([]Artist, error) {
	var artists []Artist
	if err := a.call(ctx, http.MethodGet, "/api/artists", nil, &artists); err != nil {
		return nil, err
	}
	return artists, nil
}

func (a *APIService) CreateArtist(ctx context.Context, name string) (*Artist, error) {
	var artist Artist
	if err := a.call(ctx, http.MethodPost, "/api/artists", map[string]string{"name": name}, &artist); err != nil {
		return nil, err
	}
	return &artist, nil
}

func (a *APIService) Songs(ctx context.Context) ([]Song, error) {
	var songs []Song
	if err := a.call(ctx, http.MethodGet, "/api/songs", nil, &songs); err != nil {
		return nil, err
	}
	return songs, nil
}

func (a *APIService) CreateSong(ctx context.Context, title, artistID string) (*Song, error) {
	var song Song
	req := map[string]string{"title": title, "artist_id": artistID}
	if err := a.call(ctx, http.MethodPost, "/api/songs", req, &song); err != nil {
		return nil, err
	}
	return &song, nil
}

func (a *APIService) Playlists(ctx context.Context) ([]Playlist, error) {
	var playlists []Playlist
	if err := a.call(ctx, http.MethodGet, "/api/playlists", nil, &playlists); err != nil {
		return nil, err
	}
	return playlists, nil
}

func (a *APIService) CreatePlaylist(ctx context.Context, name string) (*Playlist, error) {
	var playlist Playlist
	if err := a.call(ctx, http.MethodPost, "/api/playlists", map[string]string{"name": name}, &playlist); err != nil {
		return nil, err
	}
	return &playlist, nil
}
