package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/desertthunder/moodmix/internal/models"
	"github.com/desertthunder/moodmix/internal/shared"
)

// DefaultBaseURL is where `moodmix serve` listens with the stock config.
const DefaultBaseURL = "http://127.0.0.1:5000"

// Client calls a moodmix gateway.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a [Client]. An empty baseURL uses [DefaultBaseURL]; a nil client uses [http.DefaultClient].
func New(baseURL string, client *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
	}
}

// BaseURL returns the gateway root.
func (c *Client) BaseURL() string { return c.baseURL }

// Response represents a raw gateway response with status and body.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// OK reports whether the status is 2xx.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// APIError is a non-2xx gateway response.
//
// It matches the shared sentinel for its reason with [errors.Is], so callers can test for
// [shared.ErrNoCandidates] or [shared.ErrMissingToken] without inspecting status codes.
type APIError struct {
	StatusCode int
	Reason     string `json:"error"`
	Details    string `json:"details"`
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("gateway returned %d %s: %s", e.StatusCode, e.Reason, e.Details)
	}
	return fmt.Sprintf("gateway returned %d %s", e.StatusCode, e.Reason)
}

func (e *APIError) Is(target error) bool {
	switch e.Reason {
	case "missing_token":
		return target == shared.ErrMissingToken
	case "no_candidates":
		return target == shared.ErrNoCandidates
	case "refresh_failed":
		return target == shared.ErrRefreshFailed
	case "invalid_request":
		return target == shared.ErrInvalidInput
	default:
		return target == shared.ErrAPIRequest
	}
}

// Get performs a GET request to the specified path and returns the raw response.
func (c *Client) Get(ctx context.Context, path string) (*Response, error) {
	return c.send(ctx, http.MethodGet, path, nil)
}

// Post performs a POST request with the given JSON data and returns the raw response.
func (c *Client) Post(ctx context.Context, path string, data []byte) (*Response, error) {
	return c.send(ctx, http.MethodPost, path, data)
}

func (c *Client) send(ctx context.Context, method, path string, data []byte) (*Response, error) {
	var body io.Reader
	if data != nil {
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if data != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: request failed: %w", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return &Response{StatusCode: resp.StatusCode, Headers: resp.Header, Body: raw}, nil
}

// call sends in as JSON (nil for GET) and decodes a 2xx body into out.
func (c *Client) call(ctx context.Context, method, path string, in, out any) error {
	var data []byte
	if in != nil {
		var err error
		if data, err = json.Marshal(in); err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
	}

	resp, err := c.send(ctx, method, path, data)
	if err != nil {
		return err
	}
	if !resp.OK() {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("%w: invalid response body: %w", shared.ErrAPIRequest, err)
	}
	return nil
}

func decodeError(resp *Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	if err := json.Unmarshal(resp.Body, apiErr); err != nil || apiErr.Reason == "" {
		apiErr.Reason = http.StatusText(resp.StatusCode)
		apiErr.Details = strings.TrimSpace(string(resp.Body))
	}
	return apiErr
}

// Config is the generation config sent to the gateway.
type Config struct {
	Limit   int      `json:"limit,omitempty"`
	Genres  []string `json:"genres,omitempty"`
	Energy  float64  `json:"energy,omitempty"`
	Valence float64  `json:"valence,omitempty"`
	Tempo   float64  `json:"tempo,omitempty"`
}

// ConfigFrom converts a [models.GenerationConfig] to its wire form.
func ConfigFrom(cfg models.GenerationConfig) Config {
	return Config{
		Limit:   cfg.Limit,
		Genres:  cfg.Genres,
		Energy:  cfg.Targets.Energy,
		Valence: cfg.Targets.Valence,
		Tempo:   cfg.Targets.Tempo,
	}
}

type request struct {
	AccessToken     string   `json:"access_token"`
	Prompt          string   `json:"prompt,omitempty"`
	Query           string   `json:"query,omitempty"`
	Genres          []string `json:"genres,omitempty"`
	ArtistIDs       []string `json:"artistIds,omitempty"`
	ExcludeTrackIDs []string `json:"excludeTrackIds,omitempty"`
	Config          Config   `json:"config"`
	Name            string   `json:"name,omitempty"`
	Description     string   `json:"description,omitempty"`
	Tracks          []string `json:"tracks,omitempty"`
}

// generationRequest carries cfg as the gateway expects: artist ids select artist mode.
func generationRequest(token string, cfg models.GenerationConfig) request {
	req := request{AccessToken: token, Config: ConfigFrom(cfg)}
	if cfg.Mode == models.ModeArtists {
		req.ArtistIDs = cfg.ArtistIDs
		req.Config.Genres = nil
	} else {
		req.Genres = cfg.Genres
	}
	return req
}

type tracksResponse struct {
	Tracks []models.Track `json:"tracks"`
}

// TokenResponse is a refreshed access token.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// Health checks /healthz.
func (c *Client) Health(ctx context.Context) error {
	var body struct {
		Status string `json:"status"`
	}
	if err := c.call(ctx, http.MethodGet, "/healthz", nil, &body); err != nil {
		return err
	}
	if body.Status != "ok" {
		return fmt.Errorf("%w: unexpected health status %q", shared.ErrAPIRequest, body.Status)
	}
	return nil
}

// LoginURL returns the provider consent URL.
func (c *Client) LoginURL(ctx context.Context) (string, error) {
	var body struct {
		URL string `json:"url"`
	}
	err := c.call(ctx, http.MethodGet, "/auth/login", nil, &body)
	return body.URL, err
}

// Refresh trades a refresh token for a new access token.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	var out TokenResponse
	in := map[string]string{"refresh_token": refreshToken}
	if err := c.call(ctx, http.MethodPost, "/auth/refresh", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SearchSongs runs a free-text search.
func (c *Client) SearchSongs(ctx context.Context, token, prompt string, limit int) ([]models.Track, error) {
	var out tracksResponse
	in := request{AccessToken: token, Prompt: prompt, Config: Config{Limit: limit}}
	err := c.call(ctx, http.MethodPost, "/api/search-songs", in, &out)
	return out.Tracks, err
}

// Recommendations fetches genre-seeded recommendations.
func (c *Client) Recommendations(ctx context.Context, token string, cfg models.GenerationConfig) ([]models.Track, error) {
	var out tracksResponse
	err := c.call(ctx, http.MethodPost, "/api/recommendations", generationRequest(token, cfg), &out)
	return out.Tracks, err
}

// Personalized fetches recommendations seeded by the user's top artists and cfg's genres.
func (c *Client) Personalized(ctx context.Context, token string, cfg models.GenerationConfig) ([]models.Track, error) {
	var out tracksResponse
	err := c.call(ctx, http.MethodPost, "/api/personalized-recommendations", generationRequest(token, cfg), &out)
	return out.Tracks, err
}

// SearchArtists looks artists up by name.
func (c *Client) SearchArtists(ctx context.Context, token, query string) ([]models.Artist, error) {
	var out struct {
		Artists []models.Artist `json:"artists"`
	}
	err := c.call(ctx, http.MethodPost, "/api/search-artists", request{AccessToken: token, Query: query}, &out)
	return out.Artists, err
}

// SimilarToArtists fetches tracks similar to the seed artists.
func (c *Client) SimilarToArtists(ctx context.Context, token string, artistIDs []string, limit int) ([]models.Track, error) {
	var out tracksResponse
	in := request{AccessToken: token, ArtistIDs: artistIDs, Config: Config{Limit: limit}}
	err := c.call(ctx, http.MethodPost, "/api/similar-to-artists", in, &out)
	return out.Tracks, err
}

// Generate dispatches cfg to the matching generation endpoint.
func (c *Client) Generate(ctx context.Context, token string, cfg models.GenerationConfig) ([]models.Track, error) {
	if cfg.Mode == models.ModeArtists {
		return c.SimilarToArtists(ctx, token, cfg.ArtistIDs, cfg.Limit)
	}
	return c.Personalized(ctx, token, cfg)
}

// Replacement asks for one track of cfg's class outside exclude.
//
// An exhausted candidate set is reported as [shared.ErrNoCandidates].
func (c *Client) Replacement(ctx context.Context, token string, cfg models.GenerationConfig, exclude []string) (models.Track, error) {
	var out struct {
		Track models.Track `json:"track"`
	}
	in := generationRequest(token, cfg)
	in.ExcludeTrackIDs = exclude
	if err := c.call(ctx, http.MethodPost, "/api/get-replacement-track", in, &out); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return models.Track{}, fmt.Errorf("%w: %s", shared.ErrNoCandidates, apiErr.Details)
		}
		return models.Track{}, err
	}
	return out.Track, nil
}

// CreatePlaylist saves tracks (URIs or ids) to a new playlist.
func (c *Client) CreatePlaylist(ctx context.Context, token, name, description string, tracks []string) (*models.PlaylistRef, error) {
	var out models.PlaylistRef
	in := request{AccessToken: token, Name: name, Description: description, Tracks: tracks}
	if err := c.call(ctx, http.MethodPost, "/api/create-playlist", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Me returns the token owner's profile.
func (c *Client) Me(ctx context.Context, token string) (*models.User, error) {
	var out models.User
	path := "/api/me?" + url.Values{"access_token": {token}}.Encode()
	if err := c.call(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Moods lists the gateway's mood presets.
func (c *Client) Moods(ctx context.Context) ([]models.MoodPreset, error) {
	var out struct {
		Moods []models.MoodPreset `json:"moods"`
	}
	err := c.call(ctx, http.MethodGet, "/api/moods", nil, &out)
	return out.Moods, err
}

// Bound is a [Client] with a fixed access token.
//
// It satisfies [session.ReplacementFetcher].
type Bound struct {
	*Client
	token string
}

// Bind returns c bound to token.
func (c *Client) Bind(token string) *Bound {
	return &Bound{Client: c, token: token}
}

// Token returns the bound access token.
func (b *Bound) Token() string { return b.token }

// Replacement asks for one track of cfg's class outside exclude.
func (b *Bound) Replacement(ctx context.Context, cfg models.GenerationConfig, exclude []string) (models.Track, error) {
	return b.Client.Replacement(ctx, b.token, cfg, exclude)
}

// Generate dispatches cfg to the matching generation endpoint.
func (b *Bound) Generate(ctx context.Context, cfg models.GenerationConfig) ([]models.Track, error) {
	return b.Client.Generate(ctx, b.token, cfg)
}

// CreatePlaylist saves tracks to a new playlist.
func (b *Bound) CreatePlaylist(ctx context.Context, name, description string, tracks []string) (*models.PlaylistRef, error) {
	return b.Client.CreatePlaylist(ctx, b.token, name, description, tracks)
}
