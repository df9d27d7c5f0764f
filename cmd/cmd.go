// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   defaultConfigPath,
	}
}

func jsonFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "json",
		Usage: "Output raw JSON",
	}
}

// setupCommand handles database setup operations.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Create the config file if missing, initialize the database and run migrations",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupDatabase,
			},
			{
				Name:   "rollback",
				Usage:  "Roll back the most recent migration",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupRollback,
			},
		},
	}
}

// serveCommand runs the HTTP API.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API server",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:  "host",
				Usage: "Listen host (overrides server.host)",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Listen port (overrides server.port)",
			},
		},
		Action: r.Serve,
	}
}

// usersCommand handles account administration directly against the database.
func usersCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "users",
		Usage: "Account administration",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List active users",
				Flags:  []cli.Flag{configFlag(), jsonFlag()},
				Action: r.UsersList,
			},
			{
				Name:  "delete",
				Usage: "Delete a user; their outstanding tokens stop working immediately",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "username",
					},
				},
				Flags:  []cli.Flag{configFlag()},
				Action: r.UsersDelete,
			},
		},
	}
}

// catalogCommand handles catalog maintenance directly against the database.
func catalogCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "catalog",
		Usage: "Catalog maintenance",
		Commands: []*cli.Command{
			{
				Name:  "seed",
				Usage: "Load artists, songs and playlists from a TOML file",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags:  []cli.Flag{configFlag()},
				Action: r.CatalogSeed,
			},
			{
				Name:  "export",
				Usage: "Export the catalog as CSV, Markdown or plain text",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format: csv, md or txt",
						Value:   "csv",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "File to write; \"-\" writes to stdout (default: catalog_export_{epoch}.{format})",
					},
				},
				Action: r.CatalogExport,
			},
		},
	}
}

// clientCommand calls a running server over HTTP.
func clientCommand(r *Runner) *cli.Command {
	clientFlags := func(extra ...cli.Flag) []cli.Flag {
		return append([]cli.Flag{
			&cli.StringFlag{
				Name:  "url",
				Usage: "Server base URL (overrides client.base_url)",
			},
			&cli.StringFlag{
				Name:  "token-file",
				Usage: "Where the access token is stored (default: ~/.setlist/token.json)",
			},
		}, extra...)
	}
	credentialFlags := func() []cli.Flag {
		return []cli.Flag{
			&cli.StringFlag{
				Name:     "username",
				Aliases:  []string{"u"},
				Usage:    "Account username",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "password",
				Usage:    "Account password",
				Sources:  cli.EnvVars("SETLIST_PASSWORD"),
				Required: true,
			},
		}
	}

	return &cli.Command{
		Name:    "client",
		Aliases: []string{"api"},
		Usage:   "Call a running setlist server",
		Commands: []*cli.Command{
			{
				Name:   "health",
				Usage:  "Check the server is up",
				Flags:  clientFlags(),
				Action: r.ClientHealth,
			},
			{
				Name:   "signup",
				Usage:  "Create an account",
				Flags:  clientFlags(credentialFlags()...),
				Action: r.ClientSignup,
			},
			{
				Name:   "login",
				Usage:  "Log in and store the access token",
				Flags:  clientFlags(credentialFlags()...),
				Action: r.ClientLogin,
			},
			{
				Name:   "logout",
				Usage:  "Forget the stored access token",
				Flags:  clientFlags(),
				Action: r.ClientLogout,
			},
			{
				Name:   "me",
				Usage:  "Show the logged in account",
				Flags:  clientFlags(jsonFlag()),
				Action: r.ClientMe,
			},
			{
				Name:  "artists",
				Usage: "List artists, or add one with --add",
				Flags: clientFlags(jsonFlag(), &cli.StringFlag{
					Name:  "add",
					Usage: "Name of an artist to create",
				}),
				Action: r.ClientArtists,
			},
			{
				Name:  "songs",
				Usage: "List songs, or add one with --add and --artist",
				Flags: clientFlags(jsonFlag(),
					&cli.StringFlag{
						Name:  "add",
						Usage: "Title of a song to create",
					},
					&cli.StringFlag{
						Name:  "artist",
						Usage: "Artist ID of the song to create",
					},
				),
				Action: r.ClientSongs,
			},
			{
				Name:  "playlists",
				Usage: "List playlists, or add one with --add",
				Flags: clientFlags(jsonFlag(), &cli.StringFlag{
					Name:  "add",
					Usage: "Name of a playlist to create",
				}),
				Action: r.ClientPlaylists,
			},
		},
	}
}
