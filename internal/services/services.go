// package services defines the upstream music provider interface and its Spotify implementation
package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/desertthunder/moodmix/internal/models"
	"github.com/desertthunder/moodmix/internal/shared"
)

// Provider is the subset of the music provider's API the gateway relays.
//
// A Provider is bound to a single access token for the lifetime of one request.
type Provider interface {
	// SearchTracks runs a free-text track search.
	SearchTracks(ctx context.Context, query string, limit int) ([]models.Track, error)

	// SearchArtists runs a free-text artist search.
	SearchArtists(ctx context.Context, query string, limit int) ([]models.Artist, error)

	// Artist fetches one artist, including its genre tags.
	Artist(ctx context.Context, id string) (*models.Artist, error)

	// TopArtists returns the current user's most listened artists.
	TopArtists(ctx context.Context, limit int) ([]models.Artist, error)

	// Recommendations returns tracks seeded by artists and genres, steered by targets.
	Recommendations(ctx context.Context, seeds Seeds, targets models.AudioTargets, limit int) ([]models.Track, error)

	// CurrentUser returns the profile that owns the access token.
	CurrentUser(ctx context.Context) (*models.User, error)

	// CreatePlaylist creates an empty playlist owned by userID.
	CreatePlaylist(ctx context.Context, userID, name, description string, public bool) (*models.PlaylistRef, error)

	// AddTracks appends track ids to a playlist, batching as the provider requires.
	AddTracks(ctx context.Context, playlistID string, trackIDs []string) error
}

// Factory builds a [Provider] bound to one access token.
type Factory func(accessToken string) Provider

// Seeds are recommendation seeds. The provider accepts at most [MaxSeeds] in total.
type Seeds struct {
	ArtistIDs []string
	Genres    []string
}

// MaxSeeds is the provider's limit on combined recommendation seeds.
const MaxSeeds = 5

// Count returns the total number of seeds.
func (s Seeds) Count() int {
	return len(s.ArtistIDs) + len(s.Genres)
}

// UpstreamError is a failed provider call. It matches [shared.ErrAPIRequest] with [errors.Is].
type UpstreamError struct {
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *UpstreamError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s: %s (status %d): %s", shared.ErrAPIRequest, e.Op, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", shared.ErrAPIRequest, e.Op, e.Message)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

func (e *UpstreamError) Is(target error) bool { return target == shared.ErrAPIRequest }

// StatusOf returns the provider status code carried by err, or 0.
func StatusOf(err error) int {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue.Status
	}
	return 0
}

// IsStatus reports whether err is an [UpstreamError] with one of the given statuses.
func IsStatus(err error, statuses ...int) bool {
	status := StatusOf(err)
	if status == 0 {
		return false
	}
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

// IsAuthError reports whether the provider rejected the credential or its scopes.
func IsAuthError(err error) bool {
	return IsStatus(err, http.StatusUnauthorized, http.StatusForbidden)
}
