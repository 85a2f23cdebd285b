package main

import (
	"context"
	"errors"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/moodmix/internal/server"
	"github.com/desertthunder/moodmix/internal/services"
	"github.com/desertthunder/moodmix/internal/shared"
	"github.com/desertthunder/moodmix/internal/tasks"
)

const configFile = "config.toml"

func main() {
	logger := shared.NewLogger(nil)

	if err := shared.LoadEnvFile(".env"); err != nil {
		logger.Warn("ignoring env file", "error", err)
	}

	config := shared.DefaultConfig()
	if _, err := os.Stat(configFile); err == nil {
		if loaded, err := shared.LoadConfig(configFile); err == nil {
			config = loaded
		} else {
			logger.Warn("failed to load config, using defaults", "error", err)
		}
	}
	if err := config.ApplyEnv(); err != nil {
		logger.Fatalf("invalid environment: %v", err)
	}
	shared.SetLogLevel(logger, config.Log.Level)

	httpClient := http.DefaultClient
	engine := tasks.NewEngine(
		services.NewSpotifyFactory(services.SpotifyOptions{BaseURL: config.Upstream.APIBaseURL, HTTPClient: httpClient}),
		tasks.OptionsFromConfig(config.Generation),
		logger.WithPrefix("engine"),
	)

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: configFile,
		Engine:     engine,
		Auth:       newAuthenticator(config, httpClient, logger),
		HTTPClient: httpClient,
		Logger:     logger,
	})
	defer runner.Close()

	app := &cli.Command{
		Name:     "moodmix",
		Usage:    "Mood-driven playlist gateway and client",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		}
		runner.Close()
		logger.Fatalf("application error: %v", err)
	}
}

// newAuthenticator returns nil when the provider credentials are not configured, which
// leaves the gateway's /auth routes and the login command disabled.
func newAuthenticator(c *shared.Config, httpClient *http.Client, logger *log.Logger) server.TokenExchanger {
	s := c.Credentials.Spotify
	auth, err := services.NewAuthenticator(services.AuthOptions{
		ClientID:     s.ClientID,
		ClientSecret: s.ClientSecret,
		RedirectURI:  s.RedirectURI,
		AuthURL:      c.Upstream.AuthURL,
		TokenURL:     c.Upstream.TokenURL,
		HTTPClient:   httpClient,
	})
	if err != nil {
		logger.Debug("authenticator disabled", "error", err)
		return nil
	}
	return auth
}
