package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/desertthunder/setlist/internal/services"
	"github.com/desertthunder/setlist/internal/shared"
	"github.com/desertthunder/setlist/internal/ui"
	"github.com/urfave/cli/v3"
)

// apiFor returns the API client for cmd, honoring --url.
func (r *Runner) apiFor(cmd *cli.Command) *services.APIService {
	if url := cmd.String("url"); url != "" {
		return services.NewAPIService(url, r.httpClient)
	}
	return r.api
}

func (r *Runner) tokenFile(cmd *cli.Command) string {
	if path := cmd.String("token-file"); path != "" {
		return path
	}
	return r.tokenPath
}

// authenticated returns the API client for cmd carrying the stored token.
func (r *Runner) authenticated(cmd *cli.Command) (*services.APIService, error) {
	token, err := services.LoadToken(r.tokenFile(cmd))
	if err != nil {
		return nil, fmt.Errorf("%w (run: setlist client login)", err)
	}

	api := r.apiFor(cmd)
	api.SetToken(token)
	return api, nil
}

// ClientHealth checks the server's /health endpoint.
func (r *Runner) ClientHealth(ctx context.Context, cmd *cli.Command) error {
	if err := r.apiFor(cmd).Health(ctx); err != nil {
		return err
	}
	return r.writePlainln("%s", ui.Styles.OK("Service is healthy"))
}

// ClientSignup creates an account.
func (r *Runner) ClientSignup(ctx context.Context, cmd *cli.Command) error {
	username := cmd.String("username")
	if err := r.apiFor(cmd).Signup(ctx, username, cmd.String("password")); err != nil {
		return err
	}
	return r.writePlainln("%s", ui.Styles.OK(fmt.Sprintf("Created account %s", username)))
}

// ClientLogin logs in and stores the access token.
func (r *Runner) ClientLogin(ctx context.Context, cmd *cli.Command) error {
	token, err := r.apiFor(cmd).Login(ctx, cmd.String("username"), cmd.String("password"))
	if err != nil {
		return err
	}

	path := r.tokenFile(cmd)
	if err := services.SaveToken(path, token); err != nil {
		return err
	}

	r.logger.Info("token saved", "path", path, "expires", token.Expiry)
	return r.writePlainln("%s", ui.Styles.OK(fmt.Sprintf("Logged in, token expires %s", token.Expiry.Local().Format("15:04:05"))))
}

// ClientLogout removes the stored token.
func (r *Runner) ClientLogout(ctx context.Context, cmd *cli.Command) error {
	path := r.tokenFile(cmd)
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove token: %w", err)
	}
	return r.writePlainln("%s", ui.Styles.OK("Logged out"))
}

// ClientMe shows the account the stored token belongs to.
func (r *Runner) ClientMe(ctx context.Context, cmd *cli.Command) error {
	api, err := r.authenticated(cmd)
	if err != nil {
		return err
	}

	user, err := api.Me(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(user, true)
	}
	return r.writePlainln("%s (%s)", ui.Styles.Title(user.Username), user.ID)
}

// ClientArtists lists artists, or creates one when --add is given.
func (r *Runner) ClientArtists(ctx context.Context, cmd *cli.Command) error {
	if name := cmd.String("add"); name != "" {
		api, err := r.authenticated(cmd)
		if err != nil {
			return err
		}
		artist, err := api.CreateArtist(ctx, name)
		if err != nil {
			return err
		}
		return r.printArtists(cmd, []services.Artist{*artist})
	}

	artists, err := r.apiFor(cmd).Artists(ctx)
	if err != nil {
		return err
	}
	return r.printArtists(cmd, artists)
}

func (r *Runner) printArtists(cmd *cli.Command, artists []services.Artist) error {
	if cmd.Bool("json") {
		return r.writeJSON(artists, true)
	}

	rows := make([][]string, 0, len(artists))
	for _, a := range artists {
		rows = append(rows, []string{a.ID, a.Name})
	}
	return r.writePlainln("%s", ui.Table([]string{"ID", "Name"}, rows))
}

// ClientSongs lists songs, or creates one when --add is given.
func (r *Runner) ClientSongs(ctx context.Context, cmd *cli.Command) error {
	if title := cmd.String("add"); title != "" {
		artistID := cmd.String("artist")
		if artistID == "" {
			return fmt.Errorf("%w: --artist is required with --add", shared.ErrMissingArgument)
		}

		api, err := r.authenticated(cmd)
		if err != nil {
			return err
		}
		song, err := api.CreateSong(ctx, title, artistID)
		if err != nil {
			return err
		}
		return r.printSongs(cmd, []services.Song{*song})
	}

	songs, err := r.apiFor(cmd).Songs(ctx)
	if err != nil {
		return err
	}
	return r.printSongs(cmd, songs)
}

func (r *Runner) printSongs(cmd *cli.Command, songs []services.Song) error {
	if cmd.Bool("json") {
		return r.writeJSON(songs, true)
	}

	rows := make([][]string, 0, len(songs))
	for _, s := range songs {
		rows = append(rows, []string{s.ID, s.Title, s.ArtistID})
	}
	return r.writePlainln("%s", ui.Table([]string{"ID", "Title", "Artist"}, rows))
}

// ClientPlaylists lists playlists, or creates one owned by the logged in user when --add is given.
func (r *Runner) ClientPlaylists(ctx context.Context, cmd *cli.Command) error {
	if name := cmd.String("add"); name != "" {
		api, err := r.authenticated(cmd)
		if err != nil {
			return err
		}
		playlist, err := api.CreatePlaylist(ctx, name)
		if err != nil {
			return err
		}
		return r.printPlaylists(cmd, []services.Playlist{*playlist})
	}

	playlists, err := r.apiFor(cmd).Playlists(ctx)
	if err != nil {
		return err
	}
	return r.printPlaylists(cmd, playlists)
}

func (r *Runner) printPlaylists(cmd *cli.Command, playlists []services.Playlist) error {
	if cmd.Bool("json") {
		return r.writeJSON(playlists, true)
	}

	rows := make([][]string, 0, len(playlists))
	for _, p := range playlists {
		owner := p.OwnerID
		if owner == "" {
			owner = "-"
		}
		rows = append(rows, []string{p.ID, p.Name, owner})
	}
	return r.writePlainln("%s", ui.Table([]string{"ID", "Name", "Owner"}, rows))
}
