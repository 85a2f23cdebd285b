package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"

	"github.com/desertthunder/moodmix/internal/shared"
)

// Scopes requested at login.
var Scopes = []string{
	spotifyauth.ScopeUserReadPrivate,
	spotifyauth.ScopeUserReadEmail,
	spotifyauth.ScopePlaylistModifyPublic,
	spotifyauth.ScopePlaylistModifyPrivate,
	spotifyauth.ScopeUserTopRead,
}

// Authenticator runs the provider's authorization-code flow.
type Authenticator struct {
	config     *oauth2.Config
	httpClient *http.Client
}

// AuthOptions configures an [Authenticator]. Empty URLs use the provider defaults.
type AuthOptions struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	AuthURL      string
	TokenURL     string
	HTTPClient   *http.Client
}

// NewAuthenticator validates credentials and builds an [Authenticator].
func NewAuthenticator(opts AuthOptions) (*Authenticator, error) {
	if opts.ClientID == "" || opts.ClientSecret == "" {
		return nil, fmt.Errorf("%w: client id and secret are required", shared.ErrMissingCredentials)
	}
	if opts.RedirectURI == "" {
		return nil, fmt.Errorf("%w: redirect uri is required", shared.ErrInvalidConfig)
	}

	endpoint := oauth2.Endpoint{
		AuthURL:   spotifyauth.AuthURL,
		TokenURL:  spotifyauth.TokenURL,
		AuthStyle: oauth2.AuthStyleInHeader,
	}
	if opts.AuthURL != "" {
		endpoint.AuthURL = opts.AuthURL
	}
	if opts.TokenURL != "" {
		endpoint.TokenURL = opts.TokenURL
	}

	return &Authenticator{
		config: &oauth2.Config{
			ClientID:     opts.ClientID,
			ClientSecret: opts.ClientSecret,
			RedirectURL:  opts.RedirectURI,
			Scopes:       Scopes,
			Endpoint:     endpoint,
		},
		httpClient: opts.HTTPClient,
	}, nil
}

// WithRedirectURI returns a copy of a using a different redirect URI.
func (a *Authenticator) WithRedirectURI(uri string) *Authenticator {
	cfg := *a.config
	cfg.RedirectURL = uri
	return &Authenticator{config: &cfg, httpClient: a.httpClient}
}

// RedirectURI returns the configured callback URL.
func (a *Authenticator) RedirectURI() string {
	return a.config.RedirectURL
}

// AuthURL returns the provider consent URL for state.
func (a *Authenticator) AuthURL(state string) string {
	return a.config.AuthCodeURL(state)
}

// Exchange trades an authorization code for a token pair.
func (a *Authenticator) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	if code == "" {
		return nil, fmt.Errorf("%w: missing authorization code", shared.ErrAuthFailed)
	}
	tok, err := a.config.Exchange(a.context(ctx), code)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrAuthFailed, err)
	}
	return tok, nil
}

// Refresh obtains a new access token from refreshToken.
func (a *Authenticator) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	if refreshToken == "" {
		return nil, shared.ErrNoRefreshToken
	}
	src := a.config.TokenSource(a.context(ctx), &oauth2.Token{RefreshToken: refreshToken})
	tok, err := src.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrRefreshFailed, err)
	}
	return tok, nil
}

func (a *Authenticator) context(ctx context.Context) context.Context {
	if a.httpClient == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, a.httpClient)
}

// ExpiresIn returns the whole seconds until tok expires, or 0 if it has no expiry.
func ExpiresIn(tok *oauth2.Token) int {
	if tok == nil || tok.Expiry.IsZero() {
		return 0
	}
	return max(int(time.Until(tok.Expiry).Round(time.Second).Seconds()), 0)
}

// IsOAuthError reports whether err came back from the token endpoint.
func IsOAuthError(err error) bool {
	var re *oauth2.RetrieveError
	return errors.As(err, &re)
}
