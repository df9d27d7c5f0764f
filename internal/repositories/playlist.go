package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/setlist/internal/models"
	"github.com/desertthunder/setlist/internal/shared"
)

const playlistColumns = "id, sequence, name, owner_id, created_at, updated_at"

// PlaylistRepository implements [models.PlaylistStore].
//
// Owners are optional; an empty owner ID is stored as NULL.
type PlaylistRepository struct {
	db *sql.DB
}

// NewPlaylistRepository creates a new PlaylistRepository with the given database connection
func NewPlaylistRepository(db *sql.DB) *PlaylistRepository {
	return &PlaylistRepository{db: db}
}

// Create inserts a new playlist with generated ID and sequence.
//
// A non-empty owner must reference an existing user or the insert fails with [shared.ErrNotFound].
func (r *PlaylistRepository) Create(ctx context.Context, playlist *models.Playlist) error {
	if err := playlist.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	var owner sql.NullString
	if playlist.HasOwner() {
		owner = sql.NullString{String: playlist.OwnerID(), Valid: true}
	}

	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		sequence, err := NextSequence(ctx, tx, "playlists")
		if err != nil {
			return fmt.Errorf("failed to generate sequence: %w", err)
		}

		id := shared.GenerateID()

		query := `
			INSERT INTO playlists (id, sequence, name, owner_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)
		`

		_, err = tx.ExecContext(ctx, query, id, sequence, playlist.Name(), owner, playlist.CreatedAt(), playlist.UpdatedAt())
		if shared.IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: owner %s", shared.ErrNotFound, playlist.OwnerID())
		}
		if err != nil {
			return fmt.Errorf("failed to insert playlist: %w", err)
		}

		playlist.SetID(id)
		playlist.SetSequence(sequence)
		return nil
	})
}

// List retrieves all playlists in insertion order
func (r *PlaylistRepository) List(ctx context.Context) ([]*models.Playlist, error) {
	query := `SELECT ` + playlistColumns + ` FROM playlists WHERE deleted_at IS NULL ORDER BY sequence ASC`
	return r.list(ctx, query)
}

// ListByOwner retrieves the playlists owned by a user in insertion order
func (r *PlaylistRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.Playlist, error) {
	query := `SELECT ` + playlistColumns + ` FROM playlists WHERE owner_id = ? AND deleted_at IS NULL ORDER BY sequence ASC`
	return r.list(ctx, query, ownerID)
}

func (r *PlaylistRepository) list(ctx context.Context, query string, args ...any) ([]*models.Playlist, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlists: %w", err)
	}
	defer rows.Close()

	playlists := []*models.Playlist{}
	for rows.Next() {
		var (
			id        string
			sequence  int
			name      string
			ownerID   sql.NullString
			createdAt time.Time
			updatedAt time.Time
		)

		if err := rows.Scan(&id, &sequence, &name, &ownerID, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan playlist: %w", err)
		}

		playlist := models.NewPlaylist(name, ownerID.String)
		playlist.SetID(id)
		playlist.SetSequence(sequence)
		playlist.SetCreatedAt(createdAt)
		playlist.SetUpdatedAt(updatedAt)
		playlists = append(playlists, playlist)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return playlists, nil
}
