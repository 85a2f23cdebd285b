// submodule cmd contains command definitions
package main

import (
	"time"

	"github.com/urfave/cli/v3"
)

func tokenFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "token",
		Usage:   "Provider access token; defaults to the stored credential",
		Sources: cli.EnvVars("MOODMIX_TOKEN"),
	}
}

func limitFlag() cli.Flag {
	return &cli.IntFlag{
		Name:    "limit",
		Aliases: []string{"n"},
		Usage:   "Number of tracks; zero uses the configured default",
	}
}

func gatewayFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "gateway",
		Usage: "Gateway base URL; defaults to the configured server address",
	}
}

// outputFlags are shared by every generate subcommand.
func outputFlags() []cli.Flag {
	return []cli.Flag{
		tokenFlag(),
		limitFlag(),
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Output format: text, markdown, csv or json",
			Value:   "text",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Write the export to this directory instead of stdout",
		},
		&cli.StringFlag{
			Name:  "save",
			Usage: "Save the mix as a playlist with this name",
		},
		&cli.BoolFlag{
			Name:  "open",
			Usage: "Open the saved playlist in the browser",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print JSON output",
			Value: true,
		},
	}
}

// serveCommand runs the HTTP gateway.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP gateway",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address; defaults to server.host:server.port",
			},
			&cli.StringFlag{
				Name:  "static",
				Usage: "Serve a built front end from this directory",
			},
			&cli.StringFlag{
				Name:  "frontend-url",
				Usage: "Browser origin for CORS and the OAuth redirect",
			},
		},
		Action: r.Serve,
	}
}

// setupCommand handles setup operations for configuration and the credential store.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "config",
				Usage: "Write a config.toml from the built-in template",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupConfig,
			},
			{
				Name:  "database",
				Usage: "Initialize the credential store and run migrations",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "rollback",
						Usage: "Revert the most recent migration instead",
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}

// authCommand manages the stored provider credential.
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage Spotify authentication",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Authorize with Spotify in the browser and store the tokens",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "redirect-uri",
						Usage: "Loopback callback URL; defaults to credentials.spotify.redirect_uri",
					},
					&cli.BoolFlag{
						Name:  "no-browser",
						Usage: "Print the consent URL instead of opening it",
					},
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "How long to wait for the callback",
						Value: 5 * time.Minute,
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:  "status",
				Usage: "Show the stored credential",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "check",
						Usage: "Verify the token against the provider",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.AuthStatus,
			},
			{
				Name:   "refresh",
				Usage:  "Exchange the stored refresh token for a new access token",
				Action: r.AuthRefresh,
			},
			{
				Name:   "logout",
				Usage:  "Delete the stored credential",
				Action: r.AuthLogout,
			},
		},
	}
}

// moodsCommand lists the built-in mood presets.
func moodsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "moods",
		Usage: "List mood presets",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Moods,
	}
}

// generateCommand builds mixes in-process against the provider.
func generateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "generate",
		Aliases: []string{"gen"},
		Usage:   "Generate a mix",
		Commands: []*cli.Command{
			{
				Name:  "mood",
				Usage: "Generate from a mood preset",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "preset"},
				},
				Flags: append(outputFlags(),
					&cli.BoolFlag{
						Name:  "personalized",
						Usage: "Seed with your top artists",
					},
				),
				Action: r.GenerateMood,
			},
			{
				Name:  "artists",
				Usage: "Generate tracks similar to up to five artists",
				Flags: append(outputFlags(),
					&cli.StringSliceFlag{
						Name:  "id",
						Usage: "Seed artist id (repeatable)",
					},
					&cli.StringSliceFlag{
						Name:  "name",
						Usage: "Seed artist name, resolved with a search (repeatable)",
					},
				),
				Action: r.GenerateArtists,
			},
			{
				Name:      "search",
				Usage:     "Generate from a free-text prompt",
				ArgsUsage: "<prompt>",
				Flags:     outputFlags(),
				Action:    r.GenerateSearch,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for interactive mixing.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive terminal client against a running gateway",
		Flags: []cli.Flag{
			gatewayFlag(),
			tokenFlag(),
			limitFlag(),
			&cli.StringFlag{
				Name:  "mood",
				Usage: "Start generating this preset immediately",
			},
		},
		Action: r.TUI,
	}
}
