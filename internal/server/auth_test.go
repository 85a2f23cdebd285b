package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"

	"github.com/desertthunder/moodmix/internal/shared"
	"github.com/desertthunder/moodmix/internal/tasks"
	tu "github.com/desertthunder/moodmix/internal/testing"
)

// fakeExchanger accepts code "good-code" and refresh token "rt-1".
type fakeExchanger struct {
	states []string
}

func (f *fakeExchanger) AuthURL(state string) string {
	f.states = append(f.states, state)
	return "https://accounts.example/authorize?state=" + state
}

func (f *fakeExchanger) Exchange(_ context.Context, code string) (*oauth2.Token, error) {
	if code != "good-code" {
		return nil, shared.ErrAuthFailed
	}
	return &oauth2.Token{AccessToken: "at-1", RefreshToken: "rt-1", Expiry: time.Now().Add(time.Hour)}, nil
}

func (f *fakeExchanger) Refresh(_ context.Context, refreshToken string) (*oauth2.Token, error) {
	switch refreshToken {
	case "":
		return nil, shared.ErrNoRefreshToken
	case "rt-1":
		return &oauth2.Token{AccessToken: "at-2", Expiry: time.Now().Add(time.Hour)}, nil
	default:
		return nil, shared.ErrRefreshFailed
	}
}

func newAuthGateway(f *fakeExchanger) *Gateway {
	engine := tasks.NewEngine(tu.MockFactory(&tu.MockProvider{}, nil), tasks.DefaultOptions(), nil)
	return NewGateway(Options{Engine: engine, Auth: f, FrontendURL: "http://localhost:3000"})
}

func TestAuthHandler(t *testing.T) {
	t.Run("login returns a consent url with fresh state", func(t *testing.T) {
		f := &fakeExchanger{}
		g := newAuthGateway(f)

		first := decodeBody[map[string]string](t, do(t, g, http.MethodGet, "/auth/login", ""))
		do(t, g, http.MethodGet, "/auth/login", "")

		if !strings.HasPrefix(first["url"], "https://accounts.example/authorize") {
			t.Errorf("unexpected url %q", first["url"])
		}
		if len(f.states) != 2 || f.states[0] == f.states[1] || f.states[0] == "" {
			t.Errorf("expected two distinct states, got %v", f.states)
		}
	})

	t.Run("callback redirects with tokens", func(t *testing.T) {
		rec := do(t, newAuthGateway(&fakeExchanger{}), http.MethodGet, "/auth/callback?code=good-code", "")

		if rec.Code != http.StatusFound {
			t.Fatalf("expected 302, got %d", rec.Code)
		}
		loc, err := url.Parse(rec.Header().Get("Location"))
		if err != nil {
			t.Fatalf("bad location: %v", err)
		}
		if loc.Host != "localhost:3000" {
			t.Errorf("unexpected host %q", loc.Host)
		}
		q := loc.Query()
		if q.Get("access_token") != "at-1" || q.Get("refresh_token") != "rt-1" {
			t.Errorf("unexpected query %v", q)
		}
		if q.Get("expires_in") == "" || q.Get("expires_in") == "0" {
			t.Errorf("expected expires_in, got %q", q.Get("expires_in"))
		}
	})

	t.Run("callback failure redirects with error", func(t *testing.T) {
		for _, path := range []string{"/auth/callback?code=bad", "/auth/callback?error=access_denied", "/auth/callback"} {
			rec := do(t, newAuthGateway(&fakeExchanger{}), http.MethodGet, path, "")
			loc, _ := url.Parse(rec.Header().Get("Location"))
			if rec.Code != http.StatusFound || loc.Query().Get("error") != ReasonAuthFailed {
				t.Errorf("%s: unexpected redirect %d %q", path, rec.Code, rec.Header().Get("Location"))
			}
			if loc.Query().Has("access_token") {
				t.Errorf("%s: leaked access token", path)
			}
		}
	})

	t.Run("refresh", func(t *testing.T) {
		g := newAuthGateway(&fakeExchanger{})

		rec := do(t, g, http.MethodPost, "/auth/refresh", `{"refresh_token":"rt-1"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		body := decodeBody[refreshResponse](t, rec)
		if body.AccessToken != "at-2" || body.ExpiresIn <= 0 {
			t.Errorf("unexpected body %+v", body)
		}

		for _, payload := range []string{`{"refresh_token":"stale"}`, `{}`} {
			rec := do(t, g, http.MethodPost, "/auth/refresh", payload)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("%s: expected 400, got %d", payload, rec.Code)
			}
			if body := decodeBody[ErrorBody](t, rec); body.Error != ReasonRefreshFailed {
				t.Errorf("%s: expected %q, got %q", payload, ReasonRefreshFailed, body.Error)
			}
		}
	})

	t.Run("auth routes are absent without an authenticator", func(t *testing.T) {
		rec := do(t, newTestGateway(&tu.MockProvider{}), http.MethodGet, "/auth/login", "")
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
	})
}

func TestOAuthHandler(t *testing.T) {
	t.Run("delivers the token once", func(t *testing.T) {
		h := NewOAuthHandler(&fakeExchanger{}, "", "st-1")
		r := NewBasicRouter()
		r.Handler(h)

		rec := do(t, r, http.MethodGet, "/auth/callback?state=st-1&code=good-code", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		res := <-h.Result()
		if res.Error() != nil || res.Token.AccessToken != "at-1" {
			t.Errorf("unexpected result %+v", res)
		}

		rec = do(t, r, http.MethodGet, "/auth/callback?state=st-1&code=good-code", "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected replay to be rejected, got %d", rec.Code)
		}
	})

	t.Run("rejects a mismatched state", func(t *testing.T) {
		h := NewOAuthHandler(&fakeExchanger{}, "/cb", "st-1")
		r := NewBasicRouter()
		r.Handler(h)

		rec := do(t, r, http.MethodGet, "/cb?state=other&code=good-code", "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
		if res := <-h.Result(); !errors.Is(res.Error(), shared.ErrAuthFailed) {
			t.Errorf("expected ErrAuthFailed, got %v", res.Error())
		}
	})

	t.Run("Authorize times out", func(t *testing.T) {
		_, err := Authorize(context.Background(), &fakeExchanger{}, LoopbackOptions{
			RedirectURI: "http://127.0.0.1:0/auth/callback",
			Timeout:     20 * time.Millisecond,
			Logger:      log.New(io.Discard),
		})
		if !errors.Is(err, shared.ErrTimeout) {
			t.Errorf("expected ErrTimeout, got %v", err)
		}
	})

	t.Run("Authorize rejects a bad redirect", func(t *testing.T) {
		_, err := Authorize(context.Background(), &fakeExchanger{}, LoopbackOptions{RedirectURI: "not a url"})
		if !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}
