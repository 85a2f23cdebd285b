package tasks

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/samber/lo"

	"github.com/desertthunder/moodmix/internal/models"
	"github.com/desertthunder/moodmix/internal/services"
	"github.com/desertthunder/moodmix/internal/shared"
)

const (
	defaultPlaylistName        = "moodmix playlist"
	defaultPlaylistDescription = "Created with moodmix"
	artistSearchLimit          = 10
	topArtistSeeds             = 2
)

// Options tunes an [Engine].
type Options struct {
	DefaultLimit        int      // Tracks per generation when the request omits a limit
	ReplacementPageSize int      // Candidates fetched per replacement; larger than DefaultLimit
	MaxArtists          int      // Seed artists considered for similarity
	MaxGenres           int      // Genre tags combined into the similarity query
	LookupConcurrency   int      // Parallel artist lookups
	FallbackGenres      []string // Genres used when nothing else is known
}

// DefaultOptions returns the stock tuning.
func DefaultOptions() Options {
	return Options{
		DefaultLimit:        models.DefaultLimit,
		ReplacementPageSize: 50,
		MaxArtists:          5,
		MaxGenres:           3,
		LookupConcurrency:   5,
		FallbackGenres:      slices.Clone(models.FallbackGenres),
	}
}

// OptionsFromConfig builds [Options] from the [generation] config section. Zero values keep defaults.
func OptionsFromConfig(c shared.GenerationConfig) Options {
	o := DefaultOptions()
	if c.DefaultLimit > 0 {
		o.DefaultLimit = c.DefaultLimit
	}
	if c.ReplacementPageSize > 0 {
		o.ReplacementPageSize = c.ReplacementPageSize
	}
	if c.MaxArtists > 0 {
		o.MaxArtists = c.MaxArtists
	}
	if c.MaxGenres > 0 {
		o.MaxGenres = c.MaxGenres
	}
	if c.LookupConcurrency > 0 {
		o.LookupConcurrency = c.LookupConcurrency
	}
	if len(c.FallbackGenres) > 0 {
		o.FallbackGenres = slices.Clone(c.FallbackGenres)
	}
	return o
}

// PlaylistRequest describes a playlist to create.
type PlaylistRequest struct {
	Name        string
	Description string
	Tracks      []string // provider URIs or bare ids
}

// Engine relays generation requests to a provider built per access token.
//
// Engine holds no per-request state and is safe for concurrent use.
type Engine struct {
	providers services.Factory
	opts      Options
	logger    *log.Logger
}

// NewEngine creates an [Engine]. A nil logger discards output.
func NewEngine(providers services.Factory, opts Options, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Engine{providers: providers, opts: opts, logger: logger}
}

// Options returns the engine's tuning.
func (e *Engine) Options() Options { return e.opts }

func (e *Engine) provider(token string) (services.Provider, error) {
	if strings.TrimSpace(token) == "" {
		return nil, shared.ErrMissingToken
	}
	return e.providers(token), nil
}

// normalize fills config defaults using the engine's tuning rather than the package defaults.
func (e *Engine) normalize(cfg models.GenerationConfig) models.GenerationConfig {
	if cfg.Limit <= 0 {
		cfg.Limit = e.opts.DefaultLimit
	}
	if cfg.Mode != models.ModeArtists && len(cfg.ArtistIDs) == 0 && len(cfg.Genres) == 0 {
		cfg.Genres = slices.Clone(e.opts.FallbackGenres)
	}
	return cfg.Normalize()
}

// SearchSongs runs a free-text track search. An empty prompt searches the fallback genres.
func (e *Engine) SearchSongs(ctx context.Context, token, prompt string, limit int) ([]models.Track, error) {
	p, err := e.provider(token)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = e.opts.DefaultLimit
	}

	query := strings.TrimSpace(prompt)
	if query == "" {
		query = MoodQuery(e.opts.FallbackGenres)
	}

	tracks, err := p.SearchTracks(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	return PartitionByPreview(tracks), nil
}

// Recommend fetches recommendations seeded by the config's genres and steered by its targets.
func (e *Engine) Recommend(ctx context.Context, token string, cfg models.GenerationConfig) ([]models.Track, error) {
	p, err := e.provider(token)
	if err != nil {
		return nil, err
	}
	cfg = e.normalize(cfg)

	tracks, err := p.Recommendations(ctx, services.Seeds{Genres: cfg.Genres}, cfg.Targets, cfg.Limit)
	if err != nil {
		return nil, err
	}
	return PartitionByPreview(tracks), nil
}

// Personalized seeds recommendations with the user's top artists plus the mood genres.
//
// This fallback chain is provisional. When the recommendation call is rejected with 400 or
// 404 it searches the mood genres instead, and when that is rejected too it searches the
// fallback genres. Missing top-read permission degrades to genre-only seeds.
func (e *Engine) Personalized(
	ctx context.Context,
	token string,
	cfg models.GenerationConfig,
	progress chan<- ProgressUpdate,
) ([]models.Track, error) {
	p, err := e.provider(token)
	if err != nil {
		return nil, err
	}
	cfg = e.normalize(cfg)

	send(progress, topArtistsUpdate())
	top, err := p.TopArtists(ctx, topArtistSeeds)
	if err != nil {
		if !services.IsAuthError(err) {
			return nil, err
		}
		e.logger.Debug("top artists unavailable, using genre seeds only", "error", err)
		top = nil
	}

	seeds := services.Seeds{ArtistIDs: lo.Map(top, func(a models.Artist, _ int) string { return a.ID })}
	seeds.Genres = lo.Slice(cfg.Genres, 0, services.MaxSeeds-len(seeds.ArtistIDs))

	send(progress, recommendationsUpdate(seeds.Count()))
	tracks, err := p.Recommendations(ctx, seeds, cfg.Targets, cfg.Limit)
	if err == nil {
		return PartitionByPreview(tracks), nil
	}
	if !services.IsStatus(err, http.StatusBadRequest, http.StatusNotFound) {
		return nil, err
	}
	e.logger.Warn("recommendations rejected, falling back to search", "error", err)

	for step, genres := range [][]string{cfg.Genres, e.opts.FallbackGenres} {
		send(progress, fallbackUpdate(step+1, genres))
		tracks, err = p.SearchTracks(ctx, MoodQuery(genres), cfg.Limit)
		if err == nil {
			return PartitionByPreview(tracks), nil
		}
		if !services.IsStatus(err, http.StatusBadRequest, http.StatusNotFound) {
			return nil, err
		}
		e.logger.Warn("fallback search rejected", "genres", genres, "error", err)
	}
	return nil, err
}

// SearchArtists looks artists up by name. An empty query returns no artists without calling upstream.
func (e *Engine) SearchArtists(ctx context.Context, token, query string) ([]models.Artist, error) {
	p, err := e.provider(token)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(query) == "" {
		return []models.Artist{}, nil
	}
	return p.SearchArtists(ctx, strings.TrimSpace(query), artistSearchLimit)
}

// SimilarToArtists returns tracks sharing the seed artists' most common genres, excluding tracks
// by the seed artists themselves.
func (e *Engine) SimilarToArtists(
	ctx context.Context,
	token string,
	artistIDs []string,
	limit int,
	progress chan<- ProgressUpdate,
) ([]models.Track, error) {
	p, err := e.provider(token)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = e.opts.DefaultLimit
	}

	ids := e.seedArtists(artistIDs)
	candidates, err := e.similarCandidates(ctx, p, ids, max(limit, e.opts.ReplacementPageSize), progress)
	if err != nil {
		return nil, err
	}
	return lo.Slice(PartitionByPreview(candidates), 0, limit), nil
}

// Replacement returns one track of the same class as cfg that is not in exclude.
//
// It fetches a page of candidates larger than a generation, drops every excluded id and
// picks the first remaining track in preview-first order. It returns
// [shared.ErrNoCandidates] when nothing is left.
func (e *Engine) Replacement(
	ctx context.Context,
	token string,
	cfg models.GenerationConfig,
	exclude []string,
) (models.Track, error) {
	p, err := e.provider(token)
	if err != nil {
		return models.Track{}, err
	}
	cfg = e.normalize(cfg)

	var candidates []models.Track
	switch cfg.Mode {
	case models.ModeArtists:
		candidates, err = e.similarCandidates(ctx, p, e.seedArtists(cfg.ArtistIDs), e.opts.ReplacementPageSize, nil)
	default:
		candidates, err = p.SearchTracks(ctx, MoodQuery(cfg.Genres), e.opts.ReplacementPageSize)
	}
	if err != nil {
		return models.Track{}, err
	}

	remaining := PartitionByPreview(ExcludeTracks(candidates, exclude))
	if len(remaining) == 0 {
		return models.Track{}, fmt.Errorf("%w: %d candidates, all excluded", shared.ErrNoCandidates, len(candidates))
	}
	return remaining[0], nil
}

// CreatePlaylist creates a public playlist for the token owner and adds the tracks.
func (e *Engine) CreatePlaylist(
	ctx context.Context,
	token string,
	req PlaylistRequest,
	progress chan<- ProgressUpdate,
) (*models.PlaylistRef, error) {
	p, err := e.provider(token)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Name) == "" {
		req.Name = defaultPlaylistName
	}
	if strings.TrimSpace(req.Description) == "" {
		req.Description = defaultPlaylistDescription
	}

	send(progress, playlistUpdate(FetchProfile, 1, "Fetching profile..."))
	user, err := p.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}

	send(progress, playlistUpdate(CreatePlaylist, 2, fmt.Sprintf("Creating playlist %q...", req.Name)))
	ref, err := p.CreatePlaylist(ctx, user.ID, req.Name, req.Description, true)
	if err != nil {
		return nil, err
	}

	if len(req.Tracks) > 0 {
		send(progress, playlistUpdate(AddTracks, 3, fmt.Sprintf("Adding %d tracks...", len(req.Tracks))))
		if err := p.AddTracks(ctx, ref.ID, req.Tracks); err != nil {
			return nil, err
		}
	}
	return ref, nil
}

// Me returns the token owner's profile.
func (e *Engine) Me(ctx context.Context, token string) (*models.User, error) {
	p, err := e.provider(token)
	if err != nil {
		return nil, err
	}
	return p.CurrentUser(ctx)
}

// seedArtists dedupes ids, drops blanks and caps them at MaxArtists.
func (e *Engine) seedArtists(ids []string) []string {
	ids = lo.Uniq(lo.Compact(lo.Map(ids, func(id string, _ int) string { return strings.TrimSpace(id) })))
	return lo.Slice(ids, 0, e.opts.MaxArtists)
}

// similarCandidates resolves the seed artists, searches their most common genres and drops
// tracks by the seeds. Without seeds or genres it searches the fallback genres.
func (e *Engine) similarCandidates(
	ctx context.Context,
	p services.Provider,
	ids []string,
	fetch int,
	progress chan<- ProgressUpdate,
) ([]models.Track, error) {
	var genres []string
	if len(ids) > 0 {
		artists, err := ResolveArtists(ctx, p, ids, e.opts.LookupConcurrency, progress)
		if err != nil {
			return nil, err
		}
		genres = TopGenres(artists, e.opts.MaxGenres)
	}

	query := GenreQuery(genres)
	if len(genres) == 0 {
		query = MoodQuery(e.opts.FallbackGenres)
		e.logger.Debug("seed artists carry no genres, using fallback", "artists", len(ids))
	}

	send(progress, searchCandidatesUpdate(query))
	tracks, err := p.SearchTracks(ctx, query, fetch)
	if err != nil {
		return nil, err
	}
	return ExcludeArtists(tracks, ids), nil
}
