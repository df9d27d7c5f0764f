package main

import (
	"context"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/desertthunder/setlist/internal/formatter"
	"github.com/desertthunder/setlist/internal/models"
	"github.com/desertthunder/setlist/internal/repositories"
	"github.com/desertthunder/setlist/internal/shared"
	"github.com/desertthunder/setlist/internal/ui"
	"github.com/urfave/cli/v3"
)

// SeedFile is the TOML layout read by catalog seed.
//
//	[[artists]]
//	name = "Artist A"
//	songs = ["Song A", "Song B"]
//
//	[[playlists]]
//	name = "Favorites"
//	owner = "alice"
type SeedFile struct {
	Artists   []SeedArtist   `toml:"artists"`
	Playlists []SeedPlaylist `toml:"playlists"`
}

type SeedArtist struct {
	Name  string   `toml:"name"`
	Songs []string `toml:"songs"`
}

// SeedPlaylist names its owner by username. An empty owner creates an unowned playlist.
type SeedPlaylist struct {
	Name  string `toml:"name"`
	Owner string `toml:"owner"`
}

// SeedResult counts what a seed created.
type SeedResult struct {
	Artists   int `json:"artists"`
	Songs     int `json:"songs"`
	Playlists int `json:"playlists"`
}

// LoadSeedFile parses a seed file.
func LoadSeedFile(path string) (*SeedFile, error) {
	var seed SeedFile
	if _, err := toml.DecodeFile(path, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse seed file %s: %w", path, err)
	}
	return &seed, nil
}

// CatalogSeed loads artists, songs and playlists from a TOML file.
func (r *Runner) CatalogSeed(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: path", shared.ErrMissingArgument)
	}

	seed, err := LoadSeedFile(path)
	if err != nil {
		return err
	}

	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	db, err := r.openDatabase(ctx, config)
	if err != nil {
		return err
	}
	defer db.Close()

	result, err := seedCatalog(ctx, seed,
		repositories.NewUserRepository(db),
		repositories.NewArtistRepository(db),
		repositories.NewSongRepository(db),
		repositories.NewPlaylistRepository(db),
	)
	if err != nil {
		return err
	}

	r.logger.Info("catalog seeded", "artists", result.Artists, "songs", result.Songs, "playlists", result.Playlists)
	return r.writePlainln("%s", ui.Styles.OK(fmt.Sprintf("Seeded %d artists, %d songs, %d playlists", result.Artists, result.Songs, result.Playlists)))
}

func seedCatalog(ctx context.Context, seed *SeedFile, users models.UserStore, artists models.ArtistStore, songs models.SongStore, playlists models.PlaylistStore) (SeedResult, error) {
	var result SeedResult

	for _, a := range seed.Artists {
		artist := models.NewArtist(a.Name)
		if err := artists.Create(ctx, artist); err != nil {
			return result, fmt.Errorf("artist %q: %w", a.Name, err)
		}
		result.Artists++

		for _, title := range a.Songs {
			if err := songs.Create(ctx, models.NewSong(title, artist.ID())); err != nil {
				return result, fmt.Errorf("song %q by %q: %w", title, a.Name, err)
			}
			result.Songs++
		}
	}

	for _, p := range seed.Playlists {
		var ownerID string
		if p.Owner != "" {
			owner, err := users.GetByUsername(ctx, p.Owner)
			if err != nil {
				return result, fmt.Errorf("playlist %q owner: %w", p.Name, err)
			}
			ownerID = owner.ID()
		}

		if err := playlists.Create(ctx, models.NewPlaylist(p.Name, ownerID)); err != nil {
			return result, fmt.Errorf("playlist %q: %w", p.Name, err)
		}
		result.Playlists++
	}

	return result, nil
}

// CatalogExport writes the catalog to a file, or to stdout when --output is "-".
func (r *Runner) CatalogExport(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	db, err := r.openDatabase(ctx, config)
	if err != nil {
		return err
	}
	defer db.Close()

	export, err := buildExport(ctx,
		repositories.NewUserRepository(db),
		repositories.NewArtistRepository(db),
		repositories.NewSongRepository(db),
		repositories.NewPlaylistRepository(db),
	)
	if err != nil {
		return err
	}

	if output := cmd.String("output"); output == "-" {
		data, err := formatter.Export(export, format)
		if err != nil {
			return err
		}
		return r.writePlain("%s", data)
	}

	path, err := formatter.WriteExport(export, format, cmd.String("output"))
	if err != nil {
		return err
	}

	r.logger.Info("catalog exported", "path", path, "format", format)
	return r.writePlainln("%s", ui.Styles.OK(fmt.Sprintf("Exported %d artists, %d songs, %d playlists to %s",
		len(export.Artists), export.SongCount(), len(export.Playlists), path)))
}

type userLister interface {
	List(ctx context.Context) ([]*models.User, error)
}

func buildExport(ctx context.Context, users userLister, artists models.ArtistStore, songs models.SongStore, playlists models.PlaylistStore) (*formatter.CatalogExport, error) {
	allArtists, err := artists.List(ctx)
	if err != nil {
		return nil, err
	}
	allSongs, err := songs.List(ctx)
	if err != nil {
		return nil, err
	}
	allPlaylists, err := playlists.List(ctx)
	if err != nil {
		return nil, err
	}
	allUsers, err := users.List(ctx)
	if err != nil {
		return nil, err
	}

	owners := make(map[string]string, len(allUsers))
	for _, u := range allUsers {
		owners[u.ID()] = u.Username()
	}

	return formatter.NewCatalogExport(allArtists, allSongs, allPlaylists, owners), nil
}
