package tasks

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/desertthunder/moodmix/internal/models"
	"github.com/desertthunder/moodmix/internal/shared"
	tu "github.com/desertthunder/moodmix/internal/testing"
)

func artistIndex(n int) map[string]models.Artist {
	idx := make(map[string]models.Artist, n)
	for i := range n {
		id := fmt.Sprintf("ar-%d", i)
		idx[id] = models.Artist{ID: id, Name: "Artist " + id, Genres: []string{"genre-" + id, "shared"}}
	}
	return idx
}

func TestResolveArtists(t *testing.T) {
	ctx := context.Background()

	t.Run("keeps order and joins every lookup", func(t *testing.T) {
		p := &tu.MockProvider{ArtistIndex: artistIndex(5), ArtistDelay: 5 * time.Millisecond}
		ids := []string{"ar-4", "ar-0", "ar-2", "ar-1", "ar-3"}

		artists, err := ResolveArtists(ctx, p, ids, 5, nil)
		if err != nil {
			t.Fatalf("ResolveArtists() error = %v", err)
		}
		for i, a := range artists {
			if a.ID != ids[i] {
				t.Errorf("artists[%d] = %s, want %s", i, a.ID, ids[i])
			}
		}
		if p.Calls("artist") != 5 {
			t.Errorf("expected 5 lookups, got %d", p.Calls("artist"))
		}
	})

	t.Run("respects concurrency cap", func(t *testing.T) {
		p := &tu.MockProvider{ArtistIndex: artistIndex(5), ArtistDelay: 10 * time.Millisecond}
		ids := []string{"ar-0", "ar-1", "ar-2", "ar-3", "ar-4"}

		if _, err := ResolveArtists(ctx, p, ids, 2, nil); err != nil {
			t.Fatalf("ResolveArtists() error = %v", err)
		}
		if p.MaxInflight > 2 {
			t.Errorf("expected at most 2 concurrent lookups, saw %d", p.MaxInflight)
		}
	})

	t.Run("failure fails the whole gather", func(t *testing.T) {
		p := &tu.MockProvider{ArtistIndex: artistIndex(2)}

		_, err := ResolveArtists(ctx, p, []string{"ar-0", "missing", "ar-1"}, 5, nil)
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected upstream error, got %v", err)
		}
	})

	t.Run("reports progress without blocking", func(t *testing.T) {
		p := &tu.MockProvider{ArtistIndex: artistIndex(3)}
		progress := make(chan ProgressUpdate, 1)

		if _, err := ResolveArtists(ctx, p, []string{"ar-0", "ar-1", "ar-2"}, 3, progress); err != nil {
			t.Fatalf("ResolveArtists() error = %v", err)
		}
		u := <-progress
		if u.Phase != LookupArtists || u.Total != 3 {
			t.Errorf("unexpected update %+v", u)
		}
	})
}
