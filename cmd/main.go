package main

import (
	"context"
	"os"

	"github.com/desertthunder/setlist/internal/services"
	"github.com/desertthunder/setlist/internal/shared"
	"github.com/urfave/cli/v3"
)

const defaultConfigPath = "config.toml"

func main() {
	logger := shared.NewLogger(nil)

	config, err := loadConfigFile(defaultConfigPath)
	if err != nil {
		logger.Fatal("failed to load config", "path", defaultConfigPath, "error", err)
	}

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: defaultConfigPath,
		API:        services.NewAPIService(config.Client.BaseURL, nil),
		Logger:     logger,
	})

	app := &cli.Command{
		Name:    "setlist",
		Usage:   "Music catalog API with bearer-token auth",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("SETLIST_LOG_LEVEL"),
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			shared.SetLogLevel(logger, shared.ParseLogLevel(cmd.String("log-level")))
			return ctx, nil
		},
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
