package models

import (
	"fmt"
	"strings"

	"github.com/desertthunder/setlist/internal/shared"
)

// Artist is a catalog artist. Artist names are not unique.
type Artist struct {
	Record
	name string
}

// NewArtist creates an artist with the given name.
func NewArtist(name string) *Artist {
	return &Artist{Record: newRecord(), name: strings.TrimSpace(name)}
}

func (a *Artist) Name() string { return a.name }

func (a *Artist) Validate() error {
	if a.name == "" {
		return fmt.Errorf("%w: artist name is required", shared.ErrInvalidInput)
	}
	return nil
}

// Song belongs to exactly one artist.
type Song struct {
	Record
	title    string
	artistID string
}

// NewSong creates a song by the given artist.
func NewSong(title, artistID string) *Song {
	return &Song{Record: newRecord(), title: strings.TrimSpace(title), artistID: strings.TrimSpace(artistID)}
}

func (s *Song) Title() string    { return s.title }
func (s *Song) ArtistID() string { return s.artistID }

func (s *Song) Validate() error {
	if s.title == "" {
		return fmt.Errorf("%w: song title is required", shared.ErrInvalidInput)
	}
	if s.artistID == "" {
		return fmt.Errorf("%w: artist_id is required", shared.ErrInvalidInput)
	}
	return nil
}

// Playlist is a named playlist. OwnerID is empty for playlists created without an authenticated owner.
type Playlist struct {
	Record
	name    string
	ownerID string
}

// NewPlaylist creates a playlist owned by ownerID, which may be empty.
func NewPlaylist(name, ownerID string) *Playlist {
	return &Playlist{Record: newRecord(), name: strings.TrimSpace(name), ownerID: ownerID}
}

func (p *Playlist) Name() string    { return p.name }
func (p *Playlist) OwnerID() string { return p.ownerID }

// HasOwner reports whether the playlist is bound to a user.
func (p *Playlist) HasOwner() bool { return p.ownerID != "" }

func (p *Playlist) Validate() error {
	if p.name == "" {
		return fmt.Errorf("%w: playlist name is required", shared.ErrInvalidInput)
	}
	return nil
}
