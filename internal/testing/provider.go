package testing

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/desertthunder/moodmix/internal/models"
	"github.com/desertthunder/moodmix/internal/services"
)

// MockProvider is a test double for [services.Provider].
//
// Zero values return empty results. Set the Err fields to fail an operation, or SearchFunc
// to script search responses per call.
type MockProvider struct {
	SearchResults []models.Track
	SearchFunc    func(call int, query string, limit int) ([]models.Track, error)
	Recs          []models.Track
	ArtistIndex   map[string]models.Artist
	ArtistResults []models.Artist
	Top           []models.Artist
	User          *models.User
	Playlist      *models.PlaylistRef
	ArtistDelay   time.Duration

	SearchErr error
	RecsErr   error
	ArtistErr error
	TopErr    error
	UserErr   error
	CreateErr error
	AddErr    error

	mu          sync.Mutex
	calls       map[string]int
	Queries     []string
	Limits      []int
	Seeds       []services.Seeds
	Targets     []models.AudioTargets
	Added       []string
	inflight    int
	MaxInflight int
}

var _ services.Provider = (*MockProvider)(nil)

func (m *MockProvider) record(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[op]++
	return m.calls[op]
}

// Calls returns how many times op was invoked.
func (m *MockProvider) Calls(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

// TotalCalls returns the number of calls across all operations.
func (m *MockProvider) TotalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		n += c
	}
	return n
}

func (m *MockProvider) SearchTracks(ctx context.Context, query string, limit int) ([]models.Track, error) {
	call := m.record("search_tracks")
	m.mu.Lock()
	m.Queries = append(m.Queries, query)
	m.Limits = append(m.Limits, limit)
	m.mu.Unlock()

	if m.SearchFunc != nil {
		return m.SearchFunc(call, query, limit)
	}
	if m.SearchErr != nil {
		return nil, m.SearchErr
	}
	return truncate(m.SearchResults, limit), nil
}

func (m *MockProvider) SearchArtists(ctx context.Context, query string, limit int) ([]models.Artist, error) {
	m.record("search_artists")
	m.mu.Lock()
	m.Queries = append(m.Queries, query)
	m.mu.Unlock()
	if m.SearchErr != nil {
		return nil, m.SearchErr
	}
	return truncate(m.ArtistResults, limit), nil
}

func (m *MockProvider) Artist(ctx context.Context, id string) (*models.Artist, error) {
	m.record("artist")

	m.mu.Lock()
	m.inflight++
	m.MaxInflight = max(m.MaxInflight, m.inflight)
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		m.inflight--
		m.mu.Unlock()
	}()

	if m.ArtistDelay > 0 {
		select {
		case <-time.After(m.ArtistDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.ArtistErr != nil {
		return nil, m.ArtistErr
	}
	a, ok := m.ArtistIndex[id]
	if !ok {
		return nil, &services.UpstreamError{Op: "get artist", Status: 404, Message: fmt.Sprintf("no artist %s", id)}
	}
	return &a, nil
}

func (m *MockProvider) TopArtists(ctx context.Context, limit int) ([]models.Artist, error) {
	m.record("top_artists")
	if m.TopErr != nil {
		return nil, m.TopErr
	}
	return truncate(m.Top, limit), nil
}

func (m *MockProvider) Recommendations(ctx context.Context, seeds services.Seeds, targets models.AudioTargets, limit int) ([]models.Track, error) {
	m.record("recommendations")
	m.mu.Lock()
	m.Seeds = append(m.Seeds, seeds)
	m.Targets = append(m.Targets, targets)
	m.Limits = append(m.Limits, limit)
	m.mu.Unlock()
	if m.RecsErr != nil {
		return nil, m.RecsErr
	}
	return truncate(m.Recs, limit), nil
}

func (m *MockProvider) CurrentUser(ctx context.Context) (*models.User, error) {
	m.record("current_user")
	if m.UserErr != nil {
		return nil, m.UserErr
	}
	if m.User == nil {
		return &models.User{ID: "user-1", DisplayName: "Test User", Images: []models.Image{}}, nil
	}
	return m.User, nil
}

func (m *MockProvider) CreatePlaylist(ctx context.Context, userID, name, description string, public bool) (*models.PlaylistRef, error) {
	m.record("create_playlist")
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	if m.Playlist != nil {
		return m.Playlist, nil
	}
	return &models.PlaylistRef{ID: "pl-1", URL: "https://open.spotify.com/playlist/pl-1", Name: name}, nil
}

func (m *MockProvider) AddTracks(ctx context.Context, playlistID string, trackIDs []string) error {
	m.record("add_tracks")
	if m.AddErr != nil {
		return m.AddErr
	}
	m.mu.Lock()
	m.Added = append(m.Added, trackIDs...)
	m.mu.Unlock()
	return nil
}

// MockFactory returns a [services.Factory] that always yields p and records the tokens it saw.
func MockFactory(p *MockProvider, tokens *[]string) services.Factory {
	var mu sync.Mutex
	return func(accessToken string) services.Provider {
		if tokens != nil {
			mu.Lock()
			*tokens = append(*tokens, accessToken)
			mu.Unlock()
		}
		return p
	}
}

// MakeTracks builds n tracks named id-0..id-(n-1). Tracks at indices in withPreview carry a preview.
func MakeTracks(prefix string, n int, withPreview ...int) []models.Track {
	tracks := make([]models.Track, n)
	for i := range tracks {
		id := fmt.Sprintf("%s-%d", prefix, i)
		tracks[i] = models.Track{
			ID:       id,
			URI:      "spotify:track:" + id,
			Name:     "Track " + id,
			Artist:   "Artist " + prefix,
			ArtistID: "artist-" + prefix,
			Album:    "Album",
		}
		if slices.Contains(withPreview, i) {
			tracks[i].PreviewURL = "https://p/" + id
		}
	}
	return tracks
}

func truncate[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return slices.Clone(items[:limit])
	}
	return slices.Clone(items)
}
