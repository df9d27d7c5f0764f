package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/setlist/internal/models"
	"github.com/desertthunder/setlist/internal/shared"
)

const songColumns = "id, sequence, title, artist_id, created_at, updated_at"

// SongRepository implements [models.SongStore].
type SongRepository struct {
	db *sql.DB
}

// NewSongRepository creates a new SongRepository with the given database connection
func NewSongRepository(db *sql.DB) *SongRepository {
	return &SongRepository{db: db}
}

// Create inserts a new song after confirming its artist exists.
//
// The lookup and the insert share one transaction. A missing artist yields [shared.ErrArtistNotFound]
// and nothing is written.
func (r *SongRepository) Create(ctx context.Context, song *models.Song) error {
	if err := song.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		var exists bool
		err := tx.QueryRowContext(ctx,
			"SELECT EXISTS(SELECT 1 FROM artists WHERE id = ? AND deleted_at IS NULL)", song.ArtistID(),
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to look up artist: %w", err)
		}
		if !exists {
			return fmt.Errorf("%w: %s", shared.ErrArtistNotFound, song.ArtistID())
		}

		sequence, err := NextSequence(ctx, tx, "songs")
		if err != nil {
			return fmt.Errorf("failed to generate sequence: %w", err)
		}

		id := shared.GenerateID()

		query := `
			INSERT INTO songs (id, sequence, title, artist_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)
		`

		_, err = tx.ExecContext(ctx, query, id, sequence, song.Title(), song.ArtistID(), song.CreatedAt(), song.UpdatedAt())
		if shared.IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: %s", shared.ErrArtistNotFound, song.ArtistID())
		}
		if err != nil {
			return fmt.Errorf("failed to insert song: %w", err)
		}

		song.SetID(id)
		song.SetSequence(sequence)
		return nil
	})
}

// List retrieves all songs in insertion order
func (r *SongRepository) List(ctx context.Context) ([]*models.Song, error) {
	query := `SELECT ` + songColumns + ` FROM songs WHERE deleted_at IS NULL ORDER BY sequence ASC`
	return r.list(ctx, query)
}

// ListByArtist retrieves the songs of one artist in insertion order
func (r *SongRepository) ListByArtist(ctx context.Context, artistID string) ([]*models.Song, error) {
	query := `SELECT ` + songColumns + ` FROM songs WHERE artist_id = ? AND deleted_at IS NULL ORDER BY sequence ASC`
	return r.list(ctx, query, artistID)
}

func (r *SongRepository) list(ctx context.Context, query string, args ...any) ([]*models.Song, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query songs: %w", err)
	}
	defer rows.Close()

	songs := []*models.Song{}
	for rows.Next() {
		var (
			id        string
			sequence  int
			title     string
			artistID  string
			createdAt time.Time
			updatedAt time.Time
		)

		if err := rows.Scan(&id, &sequence, &title, &artistID, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan song: %w", err)
		}

		song := models.NewSong(title, artistID)
		song.SetID(id)
		song.SetSequence(sequence)
		song.SetCreatedAt(createdAt)
		song.SetUpdatedAt(updatedAt)
		songs = append(songs, song)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return songs, nil
}
