package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/kailas-cloud/stylesearch/internal/config"
	"github.com/kailas-cloud/stylesearch/internal/usecase/ingest"
	"github.com/kailas-cloud/stylesearch/internal/version"
)

func main() {
	app := &cli.App{
		Name:    "stylesearch",
		Usage:   "Hybrid product search for fashion catalogs",
		Version: version.String(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "env",
				Aliases: []string{"e"},
				Usage:   "Config environment (local, dev, prod)",
				EnvVars: []string{"ENV"},
				Value:   "local",
			},
		},
		// Running without a subcommand starts the API server.
		Action: serveCommand,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Start the search API server",
				Action: serveCommand,
			},
			{
				Name:   "seed",
				Usage:  "Embed and import an Amazon Fashion metadata dump into the catalog",
				Action: seedCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "Path to the JSON dump ({\"data\": [...]})",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "chunk-size",
						Usage: "Products embedded and written per round-trip",
						Value: ingest.DefaultChunkSize,
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Chunks processed concurrently",
						Value: ingest.DefaultWorkers,
					},
					&cli.BoolFlag{
						Name:  "reset",
						Usage: "Remove existing products before importing",
					},
				},
			},
			{
				Name:   "delete",
				Usage:  "Soft-delete products listed in a file, one ID per line",
				Action: deleteCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "Path to the ID list",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "chunk-size",
						Usage: "IDs marked deleted per round-trip",
						Value: ingest.DefaultDeleteChunkSize,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig resolves the environment from the global flag.
func loadConfig(c *cli.Context) (string, config.Config, error) {
	env := c.String("env")
	if env == "" {
		env = config.GetEnv()
	}
	cfg, err := config.Load(env)
	if err != nil {
		return "", config.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	return env, cfg, nil
}
