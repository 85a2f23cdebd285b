package tasks

import (
	"github.com/samber/lo"

	"github.com/desertthunder/moodmix/internal/models"
)

// PartitionByPreview returns tracks with a preview first, then the rest.
//
// The partition is stable: relative order inside each group is unchanged.
// Applying it twice yields the same order.
func PartitionByPreview(tracks []models.Track) []models.Track {
	out := make([]models.Track, 0, len(tracks))
	for _, t := range tracks {
		if t.HasPreview() {
			out = append(out, t)
		}
	}
	for _, t := range tracks {
		if !t.HasPreview() {
			out = append(out, t)
		}
	}
	return out
}

// ExcludeTracks drops tracks whose id is in excluded, keeping order.
func ExcludeTracks(tracks []models.Track, excluded []string) []models.Track {
	set := lo.Keyify(excluded)
	return lo.Reject(tracks, func(t models.Track, _ int) bool {
		_, skip := set[t.ID]
		return skip
	})
}

// ExcludeArtists drops tracks whose primary artist is in artistIDs.
func ExcludeArtists(tracks []models.Track, artistIDs []string) []models.Track {
	return lo.Reject(tracks, func(t models.Track, _ int) bool {
		return lo.Contains(artistIDs, t.ArtistID)
	})
}
