// package models defines the data model for the setlist catalog service
package models

import (
	"context"
	"time"
)

// Model defines the base interface for all persistent models.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// UserStore is the credential store: persistence for user identity and password hash.
type UserStore interface {
	Create(ctx context.Context, user *User) error                      // Create inserts a user, failing on a taken username
	Get(ctx context.Context, id string) (*User, error)                 // Get retrieves a user by ID
	GetByUsername(ctx context.Context, username string) (*User, error) // GetByUsername retrieves a user by username
}

// ArtistStore persists catalog artists.
type ArtistStore interface {
	Create(ctx context.Context, artist *Artist) error    // Create inserts a new artist
	Get(ctx context.Context, id string) (*Artist, error) // Get retrieves an artist by ID
	List(ctx context.Context) ([]*Artist, error)         // List returns all artists in insertion order
}

// SongStore persists songs.
type SongStore interface {
	Create(ctx context.Context, song *Song) error // Create inserts a song after checking its artist exists
	List(ctx context.Context) ([]*Song, error)    // List returns all songs in insertion order
}

// PlaylistStore persists playlists.
type PlaylistStore interface {
	Create(ctx context.Context, playlist *Playlist) error // Create inserts a new playlist
	List(ctx context.Context) ([]*Playlist, error)        // List returns all playlists in insertion order
}

// Record holds the identity and bookkeeping fields shared by every persistent entity.
type Record struct {
	id        string
	sequence  int
	createdAt time.Time
	updatedAt time.Time
	deletedAt *time.Time
}

func newRecord() Record {
	now := time.Now().UTC()
	return Record{createdAt: now, updatedAt: now}
}

func (r *Record) ID() string            { return r.id }
func (r *Record) Sequence() int         { return r.sequence }
func (r *Record) CreatedAt() time.Time  { return r.createdAt }
func (r *Record) UpdatedAt() time.Time  { return r.updatedAt }
func (r *Record) DeletedAt() *time.Time { return r.deletedAt }

func (r *Record) SetID(id string)           { r.id = id }
func (r *Record) SetSequence(sequence int)  { r.sequence = sequence }
func (r *Record) SetCreatedAt(t time.Time)  { r.createdAt = t }
func (r *Record) SetUpdatedAt(t time.Time)  { r.updatedAt = t }
func (r *Record) SetDeletedAt(t *time.Time) { r.deletedAt = t }

// IsDeleted reports whether the record has been soft-deleted.
func (r *Record) IsDeleted() bool { return r.deletedAt != nil }
