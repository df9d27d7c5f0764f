package repositories

import (
	"context"
	"errors"
	"testing"

	"github.com/desertthunder/setlist/internal/models"
	"github.com/desertthunder/setlist/internal/shared"
)

func TestUserRepositoryErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("Create", func(t *testing.T) {
		t.Run("ValidationError", func(t *testing.T) {
			repo := NewUserRepository(setupTestDB(t))

			err := repo.Create(ctx, models.NewUser("", "hash"))
			if !errors.Is(err, shared.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput for empty username, got %v", err)
			}
		})

		t.Run("DuplicateUsername", func(t *testing.T) {
			repo := NewUserRepository(setupTestDB(t))

			if err := repo.Create(ctx, models.NewUser("alice", "hash1")); err != nil {
				t.Fatalf("failed to create first user: %v", err)
			}

			err := repo.Create(ctx, models.NewUser("alice", "hash2"))
			if !errors.Is(err, shared.ErrDuplicateUsername) {
				t.Fatalf("expected ErrDuplicateUsername, got %v", err)
			}
		})

		t.Run("DuplicateOfDeletedUsername", func(t *testing.T) {
			repo := NewUserRepository(setupTestDB(t))
			user := models.NewUser("alice", "hash")

			if err := repo.Create(ctx, user); err != nil {
				t.Fatalf("failed to create user: %v", err)
			}
			if err := repo.Delete(ctx, user.ID()); err != nil {
				t.Fatalf("failed to delete user: %v", err)
			}

			err := repo.Create(ctx, models.NewUser("alice", "hash"))
			if !errors.Is(err, shared.ErrDuplicateUsername) {
				t.Fatalf("expected ErrDuplicateUsername for a deleted account's name, got %v", err)
			}
		})

		t.Run("FailedInsertDoesNotConsumeSequence", func(t *testing.T) {
			repo := NewUserRepository(setupTestDB(t))

			if err := repo.Create(ctx, models.NewUser("alice", "hash")); err != nil {
				t.Fatalf("failed to create user: %v", err)
			}
			_ = repo.Create(ctx, models.NewUser("alice", "hash"))

			bob := models.NewUser("bob", "hash")
			if err := repo.Create(ctx, bob); err != nil {
				t.Fatalf("failed to create user: %v", err)
			}
			if bob.Sequence() != 2 {
				t.Errorf("expected rolled back sequence to be reused, got %d", bob.Sequence())
			}
		})
	})

	t.Run("Get", func(t *testing.T) {
		t.Run("NotFound", func(t *testing.T) {
			repo := NewUserRepository(setupTestDB(t))

			if _, err := repo.Get(ctx, "nonexistent-id"); !errors.Is(err, shared.ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
			if _, err := repo.GetByUsername(ctx, "nobody"); !errors.Is(err, shared.ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
		})
	})

	t.Run("Delete", func(t *testing.T) {
		t.Run("NotFound", func(t *testing.T) {
			repo := NewUserRepository(setupTestDB(t))

			if err := repo.Delete(ctx, "nonexistent-id"); !errors.Is(err, shared.ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
		})

		t.Run("AlreadyDeleted", func(t *testing.T) {
			repo := NewUserRepository(setupTestDB(t))
			user := models.NewUser("alice", "hash")

			if err := repo.Create(ctx, user); err != nil {
				t.Fatalf("failed to create user: %v", err)
			}
			if err := repo.Delete(ctx, user.ID()); err != nil {
				t.Fatalf("failed to delete user: %v", err)
			}
			if err := repo.Delete(ctx, user.ID()); !errors.Is(err, shared.ErrNotFound) {
				t.Fatalf("expected ErrNotFound deleting twice, got %v", err)
			}
		})
	})
}

func TestCatalogRepositoryErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("Song With Unknown Artist", func(t *testing.T) {
		db := setupTestDB(t)
		songs := NewSongRepository(db)

		song := models.NewSong("Song A", shared.GenerateID())
		err := songs.Create(ctx, song)
		if !errors.Is(err, shared.ErrArtistNotFound) {
			t.Fatalf("expected ErrArtistNotFound, got %v", err)
		}
		if song.ID() != "" {
			t.Error("song ID should not be set when creation fails")
		}

		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM songs").Scan(&count); err != nil {
			t.Fatalf("failed to count songs: %v", err)
		}
		if count != 0 {
			t.Errorf("expected no songs to be inserted, got %d", count)
		}
	})

	t.Run("Song Validation", func(t *testing.T) {
		songs := NewSongRepository(setupTestDB(t))

		if err := songs.Create(ctx, models.NewSong("", "artist")); !errors.Is(err, shared.ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("Artist NotFound", func(t *testing.T) {
		artists := NewArtistRepository(setupTestDB(t))

		if _, err := artists.Get(ctx, "missing"); !errors.Is(err, shared.ErrArtistNotFound) {
			t.Fatalf("expected ErrArtistNotFound, got %v", err)
		}
	})

	t.Run("Artist Validation", func(t *testing.T) {
		artists := NewArtistRepository(setupTestDB(t))

		if err := artists.Create(ctx, models.NewArtist("  ")); !errors.Is(err, shared.ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("Playlist With Unknown Owner", func(t *testing.T) {
		playlists := NewPlaylistRepository(setupTestDB(t))

		err := playlists.Create(ctx, models.NewPlaylist("Mix", shared.GenerateID()))
		if !errors.Is(err, shared.ErrNotFound) {
			t.Fatalf("expected ErrNotFound for unknown owner, got %v", err)
		}
	})

	t.Run("NextSequence Unknown Table", func(t *testing.T) {
		db := setupTestDB(t)

		tx, err := db.Begin()
		if err != nil {
			t.Fatalf("failed to begin: %v", err)
		}
		defer tx.Rollback()

		if _, err := NextSequence(ctx, tx, "users; DROP TABLE users"); err == nil {
			t.Fatal("expected error for table without a sequence")
		}
	})
}
