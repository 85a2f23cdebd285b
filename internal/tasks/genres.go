package tasks

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/desertthunder/moodmix/internal/models"
)

// searchTerms maps mood genre tags to free-text search qualifiers.
var searchTerms = map[string]string{
	"hip-hop":   "hip hop",
	"edm":       "edm electronic",
	"metal":     "metal",
	"indie":     "indie",
	"ambient":   "ambient",
	"acoustic":  "acoustic",
	"latin":     "latin",
	"dance":     "dance",
	"reggaeton": "reggaeton",
	"sad":       "sad songs",
	"emo":       "emo",
	"classical": "classical",
	"study":     "study focus",
	"r-n-b":     "r&b",
	"soul":      "soul",
	"jazz":      "jazz",
	"pop":       "pop",
	"rock":      "rock",
	"chill":     "chill",
}

// SearchTerm returns the search qualifier for a mood tag. Unknown tags pass through unchanged.
func SearchTerm(tag string) string {
	key := strings.ToLower(strings.TrimSpace(tag))
	if term, ok := searchTerms[key]; ok {
		return term
	}
	return strings.TrimSpace(tag)
}

// MoodQuery builds a search query matching any of the mood tags.
func MoodQuery(genres []string) string {
	terms := make([]string, 0, len(genres))
	for _, g := range genres {
		if term := SearchTerm(g); term != "" && !slices.Contains(terms, term) {
			terms = append(terms, term)
		}
	}
	return strings.Join(terms, " OR ")
}

// GenreQuery builds a search query restricted to any of the provider genre tags.
func GenreQuery(genres []string) string {
	parts := make([]string, 0, len(genres))
	for _, g := range genres {
		parts = append(parts, fmt.Sprintf("genre:%q", g))
	}
	return strings.Join(parts, " OR ")
}

// TopGenres returns up to n genre tags ordered by how many artists carry them.
// Ties keep first-seen order.
func TopGenres(artists []models.Artist, n int) []string {
	type tally struct {
		genre string
		count int
		first int
	}

	seen := make(map[string]*tally)
	var order []*tally
	for _, a := range artists {
		for _, g := range a.Genres {
			g = strings.ToLower(strings.TrimSpace(g))
			if g == "" {
				continue
			}
			if t, ok := seen[g]; ok {
				t.count++
				continue
			}
			t := &tally{genre: g, count: 1, first: len(order)}
			seen[g] = t
			order = append(order, t)
		}
	}

	slices.SortStableFunc(order, func(a, b *tally) int {
		return cmp.Or(cmp.Compare(b.count, a.count), cmp.Compare(a.first, b.first))
	})

	out := make([]string, 0, min(n, len(order)))
	for _, t := range order[:min(n, len(order))] {
		out = append(out, t.genre)
	}
	return out
}
