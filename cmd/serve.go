package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/setlist/internal/auth"
	"github.com/desertthunder/setlist/internal/repositories"
	"github.com/desertthunder/setlist/internal/server"
	"github.com/desertthunder/setlist/internal/shared"
	"github.com/urfave/cli/v3"
)

// insecureSecret is the placeholder key shipped in the example config.
const insecureSecret = "change-me"

// Serve runs the HTTP API until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	if cmd.IsSet("host") {
		config.Server.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		config.Server.Port = int(cmd.Int("port"))
	}

	if err := config.Validate(); err != nil {
		return err
	}
	if config.Auth.SecretKey == insecureSecret {
		r.logger.Warn("auth.secret_key is the example placeholder; tokens can be forged")
	}

	db, err := r.openDatabase(ctx, config)
	if err != nil {
		return err
	}
	defer db.Close()

	api, err := r.buildAPI(db, config)
	if err != nil {
		return err
	}

	srv, err := server.New(config.Server, api, r.logger)
	if err != nil {
		return err
	}

	for _, route := range api.Routes() {
		r.logger.Debug("route registered", "route", route)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.ListenAndServe(ctx)
}

// buildAPI wires stores, auth and handlers over db.
func (r *Runner) buildAPI(db *sql.DB, config *shared.Config) (*server.BasicRouter, error) {
	tokens, err := auth.NewTokenIssuer(config.Auth)
	if err != nil {
		return nil, err
	}

	hasher := auth.NewHasher(config.Auth.BcryptCost)
	if hasher.Cost() != config.Auth.BcryptCost {
		r.logger.Warn("bcrypt cost out of range, using default", "configured", config.Auth.BcryptCost, "cost", hasher.Cost())
	}

	users := repositories.NewUserRepository(db)
	authLogger := shared.WithLogger(r.logger, "component", "auth")

	accounts, err := auth.NewAccounts(users, hasher, tokens, authLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to set up accounts: %w", err)
	}

	return server.NewAPI(server.Dependencies{
		Accounts:        accounts,
		Sessions:        auth.NewResolver(tokens, users, authLogger),
		Artists:         repositories.NewArtistRepository(db),
		Songs:           repositories.NewSongRepository(db),
		Playlists:       repositories.NewPlaylistRepository(db),
		DB:              db,
		Logger:          shared.WithLogger(r.logger, "component", "http"),
		AuthLimiter:     server.NewRateLimiter(config.Server.AuthRateLimit, config.Server.AuthRateBurst),
		GlobalRateLimit: config.Server.GlobalRateLimit,
	}), nil
}
