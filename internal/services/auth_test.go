package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/desertthunder/moodmix/internal/shared"
)

func newTokenServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "id" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error": "invalid_client"}`))
			return
		}
		r.ParseForm()

		w.Header().Set("Content-Type", "application/json")
		switch r.Form.Get("grant_type") {
		case "authorization_code":
			if r.Form.Get("code") != "good-code" {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(`{"error": "invalid_grant"}`))
				return
			}
			w.Write([]byte(`{"access_token": "at-1", "refresh_token": "rt-1", "token_type": "Bearer", "expires_in": 3600}`))
		case "refresh_token":
			if r.Form.Get("refresh_token") != "rt-1" {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(`{"error": "invalid_grant", "error_description": "Invalid refresh token"}`))
				return
			}
			w.Write([]byte(`{"access_token": "at-2", "token_type": "Bearer", "expires_in": 3600}`))
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestAuthenticator(t *testing.T, tokenURL string) *Authenticator {
	t.Helper()
	a, err := NewAuthenticator(AuthOptions{
		ClientID:     "id",
		ClientSecret: "secret",
		RedirectURI:  "http://localhost:5000/auth/callback",
		AuthURL:      "https://accounts.example.com/authorize",
		TokenURL:     tokenURL,
	})
	if err != nil {
		t.Fatalf("NewAuthenticator() error = %v", err)
	}
	return a
}

func TestAuthenticator(t *testing.T) {
	ctx := context.Background()

	t.Run("NewAuthenticator requires credentials", func(t *testing.T) {
		_, err := NewAuthenticator(AuthOptions{ClientID: "id", RedirectURI: "http://x"})
		if !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}

		_, err = NewAuthenticator(AuthOptions{ClientID: "id", ClientSecret: "s"})
		if !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("AuthURL", func(t *testing.T) {
		a := newTestAuthenticator(t, "http://unused")

		u, err := url.Parse(a.AuthURL("state-123"))
		if err != nil {
			t.Fatalf("invalid auth url: %v", err)
		}
		q := u.Query()
		if q.Get("state") != "state-123" || q.Get("client_id") != "id" || q.Get("response_type") != "code" {
			t.Errorf("unexpected query %v", q)
		}
		if !strings.Contains(q.Get("scope"), "user-top-read") || !strings.Contains(q.Get("scope"), "playlist-modify-public") {
			t.Errorf("missing scopes in %q", q.Get("scope"))
		}
		if q.Get("redirect_uri") != "http://localhost:5000/auth/callback" {
			t.Errorf("unexpected redirect uri %q", q.Get("redirect_uri"))
		}
	})

	t.Run("WithRedirectURI copies", func(t *testing.T) {
		a := newTestAuthenticator(t, "http://unused")
		b := a.WithRedirectURI("http://127.0.0.1:8888/callback")

		if a.RedirectURI() == b.RedirectURI() {
			t.Error("expected redirect uri to differ on the copy")
		}
	})

	t.Run("Exchange", func(t *testing.T) {
		srv := newTokenServer(t)
		a := newTestAuthenticator(t, srv.URL)

		tok, err := a.Exchange(ctx, "good-code")
		if err != nil {
			t.Fatalf("Exchange() error = %v", err)
		}
		if tok.AccessToken != "at-1" || tok.RefreshToken != "rt-1" {
			t.Errorf("unexpected token %+v", tok)
		}
		if got := ExpiresIn(tok); got < 3590 || got > 3600 {
			t.Errorf("ExpiresIn() = %d, want about 3600", got)
		}

		if _, err := a.Exchange(ctx, "bad-code"); !errors.Is(err, shared.ErrAuthFailed) {
			t.Errorf("expected ErrAuthFailed, got %v", err)
		}
		if _, err := a.Exchange(ctx, ""); !errors.Is(err, shared.ErrAuthFailed) {
			t.Errorf("expected ErrAuthFailed for empty code, got %v", err)
		}
	})

	t.Run("Refresh", func(t *testing.T) {
		srv := newTokenServer(t)
		a := newTestAuthenticator(t, srv.URL)

		tok, err := a.Refresh(ctx, "rt-1")
		if err != nil {
			t.Fatalf("Refresh() error = %v", err)
		}
		if tok.AccessToken != "at-2" {
			t.Errorf("expected at-2, got %s", tok.AccessToken)
		}

		_, err = a.Refresh(ctx, "stale")
		if !errors.Is(err, shared.ErrRefreshFailed) || !IsOAuthError(err) {
			t.Errorf("expected ErrRefreshFailed wrapping a token endpoint error, got %v", err)
		}
		if _, err := a.Refresh(ctx, ""); !errors.Is(err, shared.ErrNoRefreshToken) {
			t.Errorf("expected ErrNoRefreshToken, got %v", err)
		}
	})
}

func TestExpiresIn(t *testing.T) {
	if ExpiresIn(nil) != 0 {
		t.Error("nil token should report 0")
	}
}
