package server

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/moodmix/internal/services"
	"github.com/desertthunder/moodmix/internal/shared"
)

// AuthHandler serves the browser-facing half of the OAuth flow.
//
// Tokens are never stored server-side; the callback hands them to the front end in the
// redirect query string.
type AuthHandler struct {
	auth        TokenExchanger
	frontendURL string
	logger      *log.Logger
	mux         *http.ServeMux
}

// NewAuthHandler creates an [AuthHandler] redirecting to frontendURL after consent.
func NewAuthHandler(auth TokenExchanger, frontendURL string, logger *log.Logger) *AuthHandler {
	h := &AuthHandler{auth: auth, frontendURL: frontendURL, logger: logger, mux: http.NewServeMux()}
	h.mux.HandleFunc("GET /auth/login", h.login)
	h.mux.HandleFunc("GET /auth/callback", h.callback)
	h.mux.HandleFunc("POST /auth/refresh", h.refresh)
	return h
}

// Routes returns the HTTP routes this handler serves.
func (h *AuthHandler) Routes() []string {
	return []string{"GET /auth/login", "GET /auth/callback", "POST /auth/refresh"}
}

func (h *AuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	state, err := shared.GenerateState()
	if err != nil {
		writeError(w, http.StatusInternalServerError, ReasonUpstream, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": h.auth.AuthURL(state)})
}

func (h *AuthHandler) callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if e := q.Get("error"); e != "" {
		h.logger.Warn("authorization denied", "error", e)
		h.redirect(w, r, url.Values{"error": {ReasonAuthFailed}})
		return
	}

	tok, err := h.auth.Exchange(r.Context(), q.Get("code"))
	if err != nil {
		h.logger.Error("token exchange failed", "err", err)
		h.redirect(w, r, url.Values{"error": {ReasonAuthFailed}})
		return
	}

	h.redirect(w, r, url.Values{
		"access_token":  {tok.AccessToken},
		"refresh_token": {tok.RefreshToken},
		"expires_in":    {strconv.Itoa(services.ExpiresIn(tok))},
	})
}

func (h *AuthHandler) redirect(w http.ResponseWriter, r *http.Request, params url.Values) {
	target, err := url.Parse(h.frontendURL)
	if err != nil || h.frontendURL == "" {
		target = &url.URL{Path: "/"}
	}
	q := target.Query()
	for k, v := range params {
		q[k] = v
	}
	target.RawQuery = q.Encode()
	http.Redirect(w, r, target.String(), http.StatusFound)
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type refreshResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

func (h *AuthHandler) refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, ReasonInvalidRequest, err.Error())
		return
	}

	tok, err := h.auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		h.logger.Warn("refresh failed", "err", err)
		writeError(w, http.StatusBadRequest, ReasonRefreshFailed, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, refreshResponse{AccessToken: tok.AccessToken, ExpiresIn: services.ExpiresIn(tok)})
}
