// package services defines interface Service for talking to the setlist API over HTTP
package services

import (
	"context"
	"time"

	"golang.org/x/oauth2"
)

// Service defines the operations a setlist API client offers.
type Service interface {
	// Health checks the server and its database are reachable.
	Health(ctx context.Context) error

	// Signup registers a new account.
	Signup(ctx context.Context, username, password string) error

	// Login exchanges credentials for an access token.
	Login(ctx context.Context, username, password string) (*oauth2.Token, error)

	// Me returns the account the current token belongs to.
	Me(ctx context.Context) (*User, error)

	Artists(ctx context.Context) ([]Artist, error)
	CreateArtist(ctx context.Context, name string) (*Artist, error)
	Songs(ctx context.Context) ([]Song, error)
	CreateSong(ctx context.Context, title, artistID string) (*Song, error)
	Playlists(ctx context.Context) ([]Playlist, error)
	CreatePlaylist(ctx context.Context, name string) (*Playlist, error)
}

// User is the identity returned by /api/me
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Artist is a catalog artist
type Artist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Song is a catalog song
type Song struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	ArtistID string `json:"artist_id"`
}

// Playlist is a catalog playlist; OwnerID is empty when the playlist has no owner
type Playlist struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	OwnerID string `json:"owner_id"`
}

// credentials is the signup and login request body
type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// tokenResponse is the login response body
type tokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

var _ Service = (*APIService)(nil)
