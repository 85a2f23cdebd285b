package session

import (
	"context"
	"fmt"
	"slices"

	"github.com/desertthunder/moodmix/internal/models"
	"github.com/desertthunder/moodmix/internal/shared"
)

// ReplacementFetcher fetches one track of the same class as cfg, avoiding every id in exclude.
//
// Implementations return an error wrapping shared.ErrNoCandidates when nothing is left.
type ReplacementFetcher interface {
	Replacement(ctx context.Context, cfg models.GenerationConfig, exclude []string) (models.Track, error)
}

// Session is the state of one generated playlist: its config, current tracks and every
// track the user removed.
//
// Sessions are values. Every action returns a new Session and leaves the receiver untouched.
type Session struct {
	Config  models.GenerationConfig
	Tracks  []models.Track
	Removed ExclusionSet
}

// Start begins a session from a fresh generation. The exclusion set starts empty.
func Start(cfg models.GenerationConfig, tracks []models.Track) Session {
	return Session{Config: cfg, Tracks: slices.Clone(tracks)}
}

// Len returns the number of tracks currently in the list.
func (s Session) Len() int {
	return len(s.Tracks)
}

// Index returns the position of the track with id, or -1.
func (s Session) Index(id string) int {
	return slices.IndexFunc(s.Tracks, func(t models.Track) bool { return t.ID == id })
}

// Remove drops the track with id from the list and records it as removed.
//
// Removing an id that is not in the list still records it, so it can never come back.
func (s Session) Remove(id string) Session {
	next := Session{Config: s.Config, Removed: s.Removed.Add(id)}
	next.Tracks = slices.DeleteFunc(slices.Clone(s.Tracks), func(t models.Track) bool { return t.ID == id })
	return next
}

// ExcludeIDs returns removed ∪ current track ids, computed from this session's state.
func (s Session) ExcludeIDs() []string {
	return s.Removed.Union(models.TrackIDs(s.Tracks)...)
}

// Append adds a replacement at the end of the list.
//
// It refuses tracks that were removed or are already present.
func (s Session) Append(t models.Track) (Session, error) {
	if s.Removed.Has(t.ID) {
		return s, fmt.Errorf("%w: track %s was removed", shared.ErrInvalidInput, t.ID)
	}
	if s.Index(t.ID) >= 0 {
		return s, fmt.Errorf("%w: track %s already in list", shared.ErrInvalidInput, t.ID)
	}
	next := s
	next.Tracks = append(slices.Clone(s.Tracks), t)
	return next, nil
}

// RemoveAndReplace removes id, then asks f for one replacement using the session's config and
// exclusion set.
//
// On failure the returned session is the one with id removed (one track short) along with the
// error, so callers can keep going.
func (s Session) RemoveAndReplace(ctx context.Context, f ReplacementFetcher, id string) (Session, *models.Track, error) {
	removed := s.Remove(id)

	track, err := f.Replacement(ctx, removed.Config, removed.ExcludeIDs())
	if err != nil {
		return removed, nil, err
	}

	next, err := removed.Append(track)
	if err != nil {
		return removed, nil, err
	}
	return next, &track, nil
}
