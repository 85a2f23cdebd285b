package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/moodmix/internal/models"
	"github.com/desertthunder/moodmix/internal/server"
	"github.com/desertthunder/moodmix/internal/services"
	"github.com/desertthunder/moodmix/internal/shared"
)

// AuthStatusView is the JSON shape of 'auth status'.
type AuthStatusView struct {
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name"`
	Expiry      time.Time `json:"expiry"`
	Expired     bool      `json:"expired"`
	Refreshable bool      `json:"refreshable"`
	Verified    *bool     `json:"verified,omitempty"`
}

// AuthLogin runs the authorization-code flow on a loopback server and stores the tokens.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if r.auth == nil {
		return fmt.Errorf("%w: set credentials.spotify in %s or CLIENT_ID/CLIENT_SECRET", shared.ErrMissingCredentials, r.configPath)
	}

	auth := r.auth
	redirect := cmd.String("redirect-uri")
	if a, ok := r.auth.(*services.Authenticator); ok {
		if redirect != "" {
			auth = a.WithRedirectURI(redirect)
		} else {
			redirect = a.RedirectURI()
		}
	}
	if redirect == "" {
		redirect = r.config.Credentials.Spotify.RedirectURI
	}

	open := r.open
	if cmd.Bool("no-browser") {
		open = nil
	}

	r.logger.Info("waiting for authorization", "redirect", redirect)
	tok, err := server.Authorize(ctx, auth, server.LoopbackOptions{
		RedirectURI: redirect,
		Open:        open,
		Timeout:     cmd.Duration("timeout"),
		Logger:      r.logger,
	})
	if err != nil {
		return err
	}

	user, err := r.engine.Me(ctx, tok.AccessToken)
	if err != nil {
		return fmt.Errorf("failed to fetch profile: %w", err)
	}

	repo, err := r.credentials()
	if err != nil {
		return err
	}
	if err := repo.Save(models.NewCredential(user.ID, user.DisplayName, tok)); err != nil {
		return fmt.Errorf("failed to store credential: %w", err)
	}

	r.writePlainln("✓ Authorization successful")
	r.writePlain("✓ Logged in as %s (%s)\n\n", user.DisplayName, user.ID)
	r.writePlain("You can now use: moodmix generate mood chill\n")
	return nil
}

// AuthStatus prints the stored credential, optionally verifying it upstream.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	repo, err := r.credentials()
	if err != nil {
		return err
	}
	cred, err := repo.Latest()
	if errors.Is(err, shared.ErrCredentialNotFound) {
		if cmd.Bool("json") {
			return r.writeJSON(map[string]bool{"authenticated": false}, true)
		}
		return r.writePlain("✗ Not authenticated\n")
	}
	if err != nil {
		return err
	}

	view := AuthStatusView{
		UserID:      cred.UserID(),
		DisplayName: cred.DisplayName(),
		Expiry:      cred.Expiry(),
		Expired:     cred.Expired(0),
		Refreshable: cred.RefreshToken() != "",
	}

	if cmd.Bool("check") {
		cred, err = r.storedCredential(ctx)
		if err != nil {
			return err
		}
		_, err = r.engine.Me(ctx, cred.AccessToken())
		ok := err == nil
		view.Verified = &ok
		view.Expiry, view.Expired = cred.Expiry(), cred.Expired(0)
		if err != nil {
			r.logger.Warn("token rejected", "error", err)
		}
	}

	if cmd.Bool("json") {
		return r.writeJSON(view, true)
	}

	r.writePlainHeader("Spotify account")
	r.writePlain("User:    %s (%s)\n", view.DisplayName, view.UserID)
	switch {
	case view.Expiry.IsZero():
		r.writePlain("Expires: unknown\n")
	case view.Expired:
		r.writePlain("Expires: expired %s\n", view.Expiry.Local().Format(time.RFC1123))
	default:
		r.writePlain("Expires: %s\n", view.Expiry.Local().Format(time.RFC1123))
	}
	if view.Verified != nil {
		if *view.Verified {
			r.writePlain("Token:   ✓ accepted\n")
		} else {
			r.writePlain("Token:   ✗ rejected\n")
		}
	}
	return nil
}

// AuthRefresh refreshes the stored access token regardless of its expiry.
func (r *Runner) AuthRefresh(ctx context.Context, cmd *cli.Command) error {
	repo, err := r.credentials()
	if err != nil {
		return err
	}
	cred, err := repo.Latest()
	if errors.Is(err, shared.ErrCredentialNotFound) {
		return fmt.Errorf("%w: run 'moodmix auth login' first", shared.ErrNotAuthenticated)
	}
	if err != nil {
		return err
	}

	if err := r.refresh(ctx, repo, cred); err != nil {
		return err
	}
	r.logger.Info("token refreshed", "user", cred.UserID(), "expiry", cred.Expiry())
	return r.writePlain("✓ Token refreshed for %s\n", cred.DisplayName())
}

// AuthLogout deletes the stored credential.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	repo, err := r.credentials()
	if err != nil {
		return err
	}
	cred, err := repo.Latest()
	if errors.Is(err, shared.ErrCredentialNotFound) {
		return r.writePlain("Not logged in\n")
	}
	if err != nil {
		return err
	}

	if err := repo.Delete(cred.ID()); err != nil {
		return err
	}
	return r.writePlain("✓ Logged out %s\n", cred.DisplayName())
}
