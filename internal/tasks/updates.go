package tasks

import (
	"fmt"
)

// ProgressUpdate represents a progress event during a multi-step generation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Operation phase enumeration
type Phase int

const (
	FetchTopArtists Phase = iota
	FetchRecommendations
	SearchFallback
	LookupArtists
	SearchCandidates
	FetchProfile
	CreatePlaylist
	AddTracks
)

func (p Phase) String() string {
	switch p {
	case FetchTopArtists:
		return "fetch_top_artists"
	case FetchRecommendations:
		return "fetch_recommendations"
	case SearchFallback:
		return "search_fallback"
	case LookupArtists:
		return "lookup_artists"
	case SearchCandidates:
		return "search_candidates"
	case FetchProfile:
		return "fetch_profile"
	case CreatePlaylist:
		return "create_playlist"
	case AddTracks:
		return "add_tracks"
	default:
		return ""
	}
}

// send delivers u without blocking. A nil channel drops every update.
func send(progress chan<- ProgressUpdate, u ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- u:
	default:
	}
}

func topArtistsUpdate() ProgressUpdate {
	return ProgressUpdate{Phase: FetchTopArtists, Step: 1, Total: 1, Message: "Fetching your top artists..."}
}

func recommendationsUpdate(seeds int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchRecommendations,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Requesting recommendations from %d seeds...", seeds),
	}
}

func fallbackUpdate(step int, genres []string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SearchFallback,
		Step:    step,
		Total:   2,
		Message: fmt.Sprintf("Recommendations unavailable, searching %v...", genres),
		Data:    genres,
	}
}

func resolveArtistUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   LookupArtists,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Resolved artist %s", name),
	}
}

func searchCandidatesUpdate(query string) ProgressUpdate {
	return ProgressUpdate{Phase: SearchCandidates, Step: 1, Total: 1, Message: "Searching " + query, Data: query}
}

func playlistUpdate(phase Phase, step int, message string) ProgressUpdate {
	return ProgressUpdate{Phase: phase, Step: step, Total: 3, Message: message}
}
