// Spotify Web API implementation of [Provider]
//
// Built on github.com/zmb3/spotify/v2. Responses are reduced to [models.Track] and [models.Artist].
package services

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/samber/lo"
	"github.com/zmb3/spotify/v2"
	"golang.org/x/oauth2"

	"github.com/desertthunder/moodmix/internal/models"
)

const (
	// maxPageSize is the largest page the search and top-items endpoints accept.
	maxPageSize = 50
	// maxPlaylistBatch is the largest number of items per add-to-playlist call.
	maxPlaylistBatch = 100
)

// SpotifyOptions configures how [SpotifyService] instances reach the API.
type SpotifyOptions struct {
	// BaseURL overrides the API root, e.g. for a local test server. Empty uses the public API.
	BaseURL string
	// HTTPClient is the transport the OAuth client wraps. Nil uses [http.DefaultClient].
	HTTPClient *http.Client
}

// SpotifyService implements [Provider] for one access token.
type SpotifyService struct {
	client *spotify.Client
}

// NewSpotifyService creates a [SpotifyService] that authenticates every call with accessToken.
func NewSpotifyService(accessToken string, opts SpotifyOptions) *SpotifyService {
	ctx := context.Background()
	if opts.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, opts.HTTPClient)
	}
	httpClient := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	}))

	var clientOpts []spotify.ClientOption
	if opts.BaseURL != "" {
		base := opts.BaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		clientOpts = append(clientOpts, spotify.WithBaseURL(base))
	}

	return &SpotifyService{client: spotify.New(httpClient, clientOpts...)}
}

// NewSpotifyFactory returns a [Factory] producing [SpotifyService] values sharing opts.
func NewSpotifyFactory(opts SpotifyOptions) Factory {
	return func(accessToken string) Provider {
		return NewSpotifyService(accessToken, opts)
	}
}

// SearchTracks runs a track search.
func (s *SpotifyService) SearchTracks(ctx context.Context, query string, limit int) ([]models.Track, error) {
	res, err := s.client.Search(ctx, query, spotify.SearchTypeTrack, spotify.Limit(clampPage(limit)))
	if err != nil {
		return nil, upstream("search tracks", err)
	}
	if res.Tracks == nil {
		return []models.Track{}, nil
	}
	return lo.Map(res.Tracks.Tracks, func(ft spotify.FullTrack, _ int) models.Track {
		return toTrack(ft.SimpleTrack, ft.Album)
	}), nil
}

// SearchArtists runs an artist search.
func (s *SpotifyService) SearchArtists(ctx context.Context, query string, limit int) ([]models.Artist, error) {
	res, err := s.client.Search(ctx, query, spotify.SearchTypeArtist, spotify.Limit(clampPage(limit)))
	if err != nil {
		return nil, upstream("search artists", err)
	}
	if res.Artists == nil {
		return []models.Artist{}, nil
	}
	return lo.Map(res.Artists.Artists, func(fa spotify.FullArtist, _ int) models.Artist {
		return toArtist(fa)
	}), nil
}

// Artist fetches a single artist.
func (s *SpotifyService) Artist(ctx context.Context, id string) (*models.Artist, error) {
	fa, err := s.client.GetArtist(ctx, spotify.ID(id))
	if err != nil {
		return nil, upstream("get artist", err)
	}
	a := toArtist(*fa)
	return &a, nil
}

// TopArtists returns the user's top artists. Requires the user-top-read scope.
func (s *SpotifyService) TopArtists(ctx context.Context, limit int) ([]models.Artist, error) {
	page, err := s.client.CurrentUsersTopArtists(ctx, spotify.Limit(clampPage(limit)))
	if err != nil {
		return nil, upstream("top artists", err)
	}
	return lo.Map(page.Artists, func(fa spotify.FullArtist, _ int) models.Artist {
		return toArtist(fa)
	}), nil
}

// Recommendations fetches seeded recommendations. Seeds beyond [MaxSeeds] are dropped,
// artists first.
func (s *SpotifyService) Recommendations(ctx context.Context, seeds Seeds, targets models.AudioTargets, limit int) ([]models.Track, error) {
	artistIDs := lo.Slice(seeds.ArtistIDs, 0, MaxSeeds)
	genres := lo.Slice(seeds.Genres, 0, MaxSeeds-len(artistIDs))

	attrs := spotify.NewTrackAttributes().
		TargetEnergy(targets.Energy).
		TargetValence(targets.Valence).
		TargetTempo(targets.Tempo)

	recs, err := s.client.GetRecommendations(ctx, spotify.Seeds{
		Artists: lo.Map(artistIDs, func(id string, _ int) spotify.ID { return spotify.ID(id) }),
		Genres:  genres,
	}, attrs, spotify.Limit(clampRecommendations(limit)))
	if err != nil {
		return nil, upstream("recommendations", err)
	}
	return lo.Map(recs.Tracks, func(st spotify.SimpleTrack, _ int) models.Track {
		return toTrack(st, st.Album)
	}), nil
}

// CurrentUser returns the token owner's profile.
func (s *SpotifyService) CurrentUser(ctx context.Context) (*models.User, error) {
	u, err := s.client.CurrentUser(ctx)
	if err != nil {
		return nil, upstream("current user", err)
	}
	return &models.User{
		ID:          u.ID,
		DisplayName: u.DisplayName,
		Email:       u.Email,
		Images:      lo.Map(u.Images, func(img spotify.Image, _ int) models.Image { return toImage(img) }),
	}, nil
}

// CreatePlaylist creates an empty, non-collaborative playlist.
func (s *SpotifyService) CreatePlaylist(ctx context.Context, userID, name, description string, public bool) (*models.PlaylistRef, error) {
	pl, err := s.client.CreatePlaylistForUser(ctx, userID, name, description, public, false)
	if err != nil {
		return nil, upstream("create playlist", err)
	}
	return &models.PlaylistRef{
		ID:   string(pl.ID),
		URL:  pl.ExternalURLs["spotify"],
		Name: pl.Name,
	}, nil
}

// AddTracks adds tracks in batches of 100. trackIDs may be bare ids or spotify:track URIs.
func (s *SpotifyService) AddTracks(ctx context.Context, playlistID string, trackIDs []string) error {
	ids := lo.Map(trackIDs, func(v string, _ int) spotify.ID { return spotify.ID(TrackIDFromURI(v)) })
	for _, batch := range lo.Chunk(ids, maxPlaylistBatch) {
		if _, err := s.client.AddTracksToPlaylist(ctx, spotify.ID(playlistID), batch...); err != nil {
			return upstream("add tracks", err)
		}
	}
	return nil
}

// TrackIDFromURI extracts the id from a spotify:track:<id> URI. Other values are returned unchanged.
func TrackIDFromURI(v string) string {
	if rest, ok := strings.CutPrefix(v, "spotify:track:"); ok {
		return rest
	}
	return v
}

func toTrack(st spotify.SimpleTrack, album spotify.SimpleAlbum) models.Track {
	t := models.Track{
		ID:         string(st.ID),
		URI:        string(st.URI),
		Name:       st.Name,
		Album:      album.Name,
		PreviewURL: st.PreviewURL,
	}
	if len(st.Artists) > 0 {
		t.Artist = st.Artists[0].Name
		t.ArtistID = string(st.Artists[0].ID)
	}
	if len(album.Images) > 0 {
		t.Image = album.Images[0].URL
	}
	return t
}

func toArtist(fa spotify.FullArtist) models.Artist {
	a := models.Artist{
		ID:         string(fa.ID),
		Name:       fa.Name,
		Genres:     fa.Genres,
		Popularity: int(fa.Popularity),
	}
	if a.Genres == nil {
		a.Genres = []string{}
	}
	if len(fa.Images) > 0 {
		a.Image = fa.Images[0].URL
	}
	return a
}

func toImage(img spotify.Image) models.Image {
	return models.Image{URL: img.URL, Height: int(img.Height), Width: int(img.Width)}
}

// upstream converts a client error into an [UpstreamError], keeping the provider status.
func upstream(op string, err error) error {
	var se spotify.Error
	if errors.As(err, &se) {
		return &UpstreamError{Op: op, Status: se.Status, Message: se.Message, Err: err}
	}
	var re *oauth2.RetrieveError
	if errors.As(err, &re) && re.Response != nil {
		return &UpstreamError{Op: op, Status: re.Response.StatusCode, Message: re.Error(), Err: err}
	}
	return &UpstreamError{Op: op, Message: err.Error(), Err: err}
}

func clampPage(limit int) int {
	return min(max(limit, 1), maxPageSize)
}

func clampRecommendations(limit int) int {
	return min(max(limit, 1), 100)
}
