package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/moodmix/internal/models"
	"github.com/desertthunder/moodmix/internal/shared"
	"github.com/desertthunder/moodmix/internal/tasks"
)

// Replacement outcomes recorded by [Metrics.ObserveReplacement].
const (
	OutcomeFound     = "found"
	OutcomeExhausted = "exhausted"
	OutcomeFailed    = "failed"
)

// RequestConfig is the generation config a front end sends. Zero fields take defaults.
type RequestConfig struct {
	Limit   int      `json:"limit,omitempty"`
	Genres  []string `json:"genres,omitempty"`
	Energy  float64  `json:"energy,omitempty"`
	Valence float64  `json:"valence,omitempty"`
	Tempo   float64  `json:"tempo,omitempty"`
}

// Targets returns the audio targets with defaults applied.
func (c RequestConfig) Targets() models.AudioTargets {
	return models.AudioTargets{Energy: c.Energy, Valence: c.Valence, Tempo: c.Tempo}.WithDefaults()
}

// APIRequest is the union of every relay request body.
type APIRequest struct {
	AccessToken     string        `json:"access_token"`
	Prompt          string        `json:"prompt,omitempty"`
	Query           string        `json:"query,omitempty"`
	Genres          []string      `json:"genres,omitempty"`
	ArtistIDs       []string      `json:"artistIds,omitempty"`
	ExcludeTrackIDs []string      `json:"excludeTrackIds,omitempty"`
	Config          RequestConfig `json:"config"`
	Name            string        `json:"name,omitempty"`
	Description     string        `json:"description,omitempty"`
	Tracks          []string      `json:"tracks,omitempty"`
}

// genres returns the request genres, preferring the top-level field over config.genres.
func (r APIRequest) genres() []string {
	if len(r.Genres) > 0 {
		return r.Genres
	}
	return r.Config.Genres
}

// generation builds the [models.GenerationConfig] the request describes. Artist ids select
// artist mode; anything else is a mood request. Limit and genre defaults are left to the engine.
func (r APIRequest) generation() models.GenerationConfig {
	if len(r.ArtistIDs) > 0 {
		return models.GenerationConfig{
			Mode:      models.ModeArtists,
			ArtistIDs: r.ArtistIDs,
			Targets:   models.ArtistTargets(),
			Limit:     r.Config.Limit,
		}
	}
	return models.GenerationConfig{
		Mode:    models.ModeMood,
		Genres:  r.genres(),
		Targets: r.Config.Targets(),
		Limit:   r.Config.Limit,
	}
}

// TracksResponse wraps a track batch.
type TracksResponse struct {
	Tracks []models.Track `json:"tracks"`
}

// ArtistsResponse wraps an artist search.
type ArtistsResponse struct {
	Artists []models.Artist `json:"artists"`
}

// TrackResponse wraps a single replacement track.
type TrackResponse struct {
	Track models.Track `json:"track"`
}

// MoodsResponse lists the mood presets.
type MoodsResponse struct {
	Moods []models.MoodPreset `json:"moods"`
}

// APIHandler relays the /api endpoints to a [tasks.Engine].
type APIHandler struct {
	engine  *tasks.Engine
	metrics *Metrics
	logger  *log.Logger
	mux     *http.ServeMux
}

// NewAPIHandler creates an [APIHandler]. metrics may be nil.
func NewAPIHandler(engine *tasks.Engine, metrics *Metrics, logger *log.Logger) *APIHandler {
	h := &APIHandler{engine: engine, metrics: metrics, logger: logger, mux: http.NewServeMux()}
	h.mux.HandleFunc("POST /api/search-songs", h.searchSongs)
	h.mux.HandleFunc("POST /api/recommendations", h.recommendations)
	h.mux.HandleFunc("POST /api/personalized-recommendations", h.personalized)
	h.mux.HandleFunc("POST /api/search-artists", h.searchArtists)
	h.mux.HandleFunc("POST /api/similar-to-artists", h.similarToArtists)
	h.mux.HandleFunc("POST /api/get-replacement-track", h.replacement)
	h.mux.HandleFunc("POST /api/create-playlist", h.createPlaylist)
	h.mux.HandleFunc("GET /api/me", h.me)
	h.mux.HandleFunc("GET /api/moods", h.moods)
	return h
}

// Routes returns the HTTP routes this handler serves.
func (h *APIHandler) Routes() []string {
	return []string{
		"POST /api/search-songs",
		"POST /api/recommendations",
		"POST /api/personalized-recommendations",
		"POST /api/search-artists",
		"POST /api/similar-to-artists",
		"POST /api/get-replacement-track",
		"POST /api/create-playlist",
		"GET /api/me",
		"GET /api/moods",
	}
}

func (h *APIHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// decode reads the body and checks for a token before any upstream work happens.
func (h *APIHandler) decode(w http.ResponseWriter, r *http.Request) (APIRequest, bool) {
	var req APIRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, ReasonInvalidRequest, err.Error())
		return req, false
	}
	if req.AccessToken == "" {
		req.AccessToken = bearerToken(r)
	}
	if strings.TrimSpace(req.AccessToken) == "" {
		writeError(w, http.StatusUnauthorized, ReasonMissingToken, shared.ErrMissingToken.Error())
		return req, false
	}
	return req, true
}

func (h *APIHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, _ := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("relay failed", "path", r.URL.Path, "err", err)
	}
	writeErr(w, err)
}

func (h *APIHandler) searchSongs(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	tracks, err := h.engine.SearchSongs(r.Context(), req.AccessToken, req.Prompt, req.Config.Limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, TracksResponse{Tracks: tracks})
}

func (h *APIHandler) recommendations(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	tracks, err := h.engine.Recommend(r.Context(), req.AccessToken, req.generation())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, TracksResponse{Tracks: tracks})
}

func (h *APIHandler) personalized(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	req.ArtistIDs = nil
	tracks, err := h.engine.Personalized(r.Context(), req.AccessToken, req.generation(), nil)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, TracksResponse{Tracks: tracks})
}

func (h *APIHandler) searchArtists(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	artists, err := h.engine.SearchArtists(r.Context(), req.AccessToken, req.Query)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ArtistsResponse{Artists: artists})
}

func (h *APIHandler) similarToArtists(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	tracks, err := h.engine.SimilarToArtists(r.Context(), req.AccessToken, req.ArtistIDs, req.Config.Limit, nil)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, TracksResponse{Tracks: tracks})
}

func (h *APIHandler) replacement(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	track, err := h.engine.Replacement(r.Context(), req.AccessToken, req.generation(), req.ExcludeTrackIDs)
	switch {
	case errors.Is(err, shared.ErrNoCandidates):
		h.metrics.ObserveReplacement(OutcomeExhausted)
		h.logger.Info("replacement exhausted", "excluded", len(req.ExcludeTrackIDs))
		writeErr(w, err)
	case err != nil:
		h.metrics.ObserveReplacement(OutcomeFailed)
		h.fail(w, r, err)
	default:
		h.metrics.ObserveReplacement(OutcomeFound)
		writeJSON(w, http.StatusOK, TrackResponse{Track: track})
	}
}

func (h *APIHandler) createPlaylist(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	ref, err := h.engine.CreatePlaylist(r.Context(), req.AccessToken, tasks.PlaylistRequest{
		Name:        req.Name,
		Description: req.Description,
		Tracks:      req.Tracks,
	}, nil)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ref)
}

func (h *APIHandler) me(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("access_token")
	if token == "" {
		token = bearerToken(r)
	}
	if token == "" {
		writeError(w, http.StatusUnauthorized, ReasonMissingToken, shared.ErrMissingToken.Error())
		return
	}
	user, err := h.engine.Me(r.Context(), token)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *APIHandler) moods(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, MoodsResponse{Moods: models.MoodPresets()})
}

func bearerToken(r *http.Request) string {
	v := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(v, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}
