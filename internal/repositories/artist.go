package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/setlist/internal/models"
	"github.com/desertthunder/setlist/internal/shared"
)

const artistColumns = "id, sequence, name, created_at, updated_at"

// ArtistRepository implements [models.ArtistStore].
type ArtistRepository struct {
	db *sql.DB
}

// NewArtistRepository creates a new ArtistRepository with the given database connection
func NewArtistRepository(db *sql.DB) *ArtistRepository {
	return &ArtistRepository{db: db}
}

// Create inserts a new artist with generated ID and sequence
func (r *ArtistRepository) Create(ctx context.Context, artist *models.Artist) error {
	if err := artist.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		sequence, err := NextSequence(ctx, tx, "artists")
		if err != nil {
			return fmt.Errorf("failed to generate sequence: %w", err)
		}

		id := shared.GenerateID()

		query := `
			INSERT INTO artists (id, sequence, name, created_at, updated_at) VALUES (?, ?, ?, ?, ?)
		`

		if _, err := tx.ExecContext(ctx, query, id, sequence, artist.Name(), artist.CreatedAt(), artist.UpdatedAt()); err != nil {
			return fmt.Errorf("failed to insert artist: %w", err)
		}

		artist.SetID(id)
		artist.SetSequence(sequence)
		return nil
	})
}

// Get retrieves an artist by ID
func (r *ArtistRepository) Get(ctx context.Context, id string) (*models.Artist, error) {
	query := `SELECT ` + artistColumns + ` FROM artists WHERE id = ? AND deleted_at IS NULL`

	artist, err := scanArtist(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrArtistNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query artist: %w", err)
	}
	return artist, nil
}

// List retrieves all artists in insertion order
func (r *ArtistRepository) List(ctx context.Context) ([]*models.Artist, error) {
	query := `SELECT ` + artistColumns + ` FROM artists WHERE deleted_at IS NULL ORDER BY sequence ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query artists: %w", err)
	}
	defer rows.Close()

	artists := []*models.Artist{}
	for rows.Next() {
		artist, err := scanArtist(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan artist: %w", err)
		}
		artists = append(artists, artist)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return artists, nil
}

func scanArtist(row scanner) (*models.Artist, error) {
	var (
		id        string
		sequence  int
		name      string
		createdAt time.Time
		updatedAt time.Time
	)

	if err := row.Scan(&id, &sequence, &name, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	artist := models.NewArtist(name)
	artist.SetID(id)
	artist.SetSequence(sequence)
	artist.SetCreatedAt(createdAt)
	artist.SetUpdatedAt(updatedAt)
	return artist, nil
}
