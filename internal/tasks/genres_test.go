package tasks

import (
	"slices"
	"strings"
	"testing"

	"github.com/desertthunder/moodmix/internal/models"
)

func TestSearchTerm(t *testing.T) {
	tc := []struct{ tag, want string }{
		{"hip-hop", "hip hop"},
		{"R-N-B", "r&b"},
		{"jazz", "jazz"},
		{"  study ", "study focus"},
		{"shoegaze", "shoegaze"},
	}

	for _, tt := range tc {
		t.Run(tt.tag, func(t *testing.T) {
			if got := SearchTerm(tt.tag); got != tt.want {
				t.Errorf("SearchTerm(%q) = %q, want %q", tt.tag, got, tt.want)
			}
		})
	}
}

func TestMoodQuery(t *testing.T) {
	t.Run("joins mapped terms", func(t *testing.T) {
		got := MoodQuery([]string{"r-n-b", "soul", "jazz"})
		if got != "r&b OR soul OR jazz" {
			t.Errorf("MoodQuery() = %q", got)
		}
	})

	t.Run("dedupes and skips blanks", func(t *testing.T) {
		got := MoodQuery([]string{"pop", "", "pop"})
		if got != "pop" {
			t.Errorf("MoodQuery() = %q", got)
		}
	})
}

func TestGenreQuery(t *testing.T) {
	got := GenreQuery([]string{"indie rock", "shoegaze"})
	if got != `genre:"indie rock" OR genre:"shoegaze"` {
		t.Errorf("GenreQuery() = %q", got)
	}
	if GenreQuery(nil) != "" {
		t.Error("expected empty query for no genres")
	}
}

func TestTopGenres(t *testing.T) {
	artists := []models.Artist{
		{ID: "1", Genres: []string{"indie", "dream pop"}},
		{ID: "2", Genres: []string{"shoegaze", "dream pop"}},
		{ID: "3", Genres: []string{"Shoegaze", "noise pop", "dream pop"}},
		{ID: "4", Genres: []string{"indie"}},
		{ID: "5"},
	}

	t.Run("most common first, ties by first appearance", func(t *testing.T) {
		got := TopGenres(artists, 3)
		want := []string{"dream pop", "indie", "shoegaze"}
		if !slices.Equal(got, want) {
			t.Errorf("TopGenres() = %v, want %v", got, want)
		}
	})

	t.Run("never more than n", func(t *testing.T) {
		if got := TopGenres(artists, 1); len(got) != 1 {
			t.Errorf("expected 1 genre, got %v", got)
		}
		if got := TopGenres(artists, 10); len(got) != 4 {
			t.Errorf("expected all 4 distinct genres, got %v", got)
		}
	})

	t.Run("no genres", func(t *testing.T) {
		if got := TopGenres([]models.Artist{{ID: "x"}}, 3); len(got) != 0 {
			t.Errorf("expected none, got %v", got)
		}
	})

	t.Run("query never exceeds three tags", func(t *testing.T) {
		q := GenreQuery(TopGenres(artists, 3))
		if n := strings.Count(q, "genre:"); n > 3 {
			t.Errorf("query %q has %d genre clauses", q, n)
		}
	})
}
