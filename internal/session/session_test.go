package session

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"testing"

	"github.com/desertthunder/moodmix/internal/models"
	"github.com/desertthunder/moodmix/internal/shared"
	tu "github.com/desertthunder/moodmix/internal/testing"
)

// poolFetcher serves the first pool track not in the exclusion set.
type poolFetcher struct {
	pool     []models.Track
	excludes [][]string
	configs  []models.GenerationConfig
	err      error
}

func (f *poolFetcher) Replacement(ctx context.Context, cfg models.GenerationConfig, exclude []string) (models.Track, error) {
	f.excludes = append(f.excludes, exclude)
	f.configs = append(f.configs, cfg)
	if f.err != nil {
		return models.Track{}, f.err
	}
	for _, t := range f.pool {
		if !slices.Contains(exclude, t.ID) {
			return t, nil
		}
	}
	return models.Track{}, fmt.Errorf("%w: pool exhausted", shared.ErrNoCandidates)
}

func jazzConfig() models.GenerationConfig {
	return models.MoodConfig([]string{"jazz"}, models.DefaultTargets(), 20)
}

func TestSession(t *testing.T) {
	ctx := context.Background()

	t.Run("Start", func(t *testing.T) {
		tracks := tu.MakeTracks("t", 3)
		s := Start(jazzConfig(), tracks)

		if s.Len() != 3 || s.Removed.Len() != 0 {
			t.Errorf("unexpected session %+v", s)
		}
		tracks[0].Name = "changed"
		if s.Tracks[0].Name == "changed" {
			t.Error("session should own a copy of the tracks")
		}
	})

	t.Run("Remove leaves receiver untouched", func(t *testing.T) {
		s := Start(jazzConfig(), tu.MakeTracks("t", 3))
		next := s.Remove("t-1")

		if s.Len() != 3 || s.Removed.Len() != 0 {
			t.Error("receiver was modified")
		}
		if next.Len() != 2 || !next.Removed.Has("t-1") || next.Index("t-1") != -1 {
			t.Errorf("unexpected session after remove %+v", next)
		}
	})

	t.Run("ExcludeIDs is removed plus current", func(t *testing.T) {
		s := Start(jazzConfig(), tu.MakeTracks("t", 3)).Remove("t-0")

		got := s.ExcludeIDs()
		want := []string{"t-0", "t-1", "t-2"}
		if !slices.Equal(got, want) {
			t.Errorf("ExcludeIDs() = %v, want %v", got, want)
		}
	})

	t.Run("Append refuses removed and duplicate tracks", func(t *testing.T) {
		tracks := tu.MakeTracks("t", 2)
		s := Start(jazzConfig(), tracks).Remove("t-0")

		if _, err := s.Append(tracks[0]); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected removed track to be refused, got %v", err)
		}
		if _, err := s.Append(tracks[1]); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected duplicate to be refused, got %v", err)
		}
	})

	t.Run("N removals with replacements", func(t *testing.T) {
		initial := tu.MakeTracks("t", 20)
		fetcher := &poolFetcher{pool: append(slices.Clone(initial), tu.MakeTracks("new", 10)...)}
		s := Start(jazzConfig(), initial)

		removed := []string{"t-3", "t-7", "t-11", "new-0"}
		for i, id := range removed {
			var err error
			before := s.Removed.Len()
			s, _, err = s.RemoveAndReplace(ctx, fetcher, id)
			if err != nil {
				t.Fatalf("RemoveAndReplace(%s) error = %v", id, err)
			}
			if s.Removed.Len() != before+1 {
				t.Errorf("step %d: exclusion set should grow by one", i)
			}
			if s.Len() != 20 {
				t.Errorf("step %d: expected 20 tracks, got %d", i, s.Len())
			}
		}

		for _, id := range removed {
			if s.Index(id) >= 0 {
				t.Errorf("removed track %s reappeared", id)
			}
		}
		for i, exclude := range fetcher.excludes {
			if !slices.Contains(exclude, removed[i]) {
				t.Errorf("call %d exclusion %v missing just-removed %s", i, exclude, removed[i])
			}
			if len(exclude) != 19+i+1 {
				t.Errorf("call %d: expected %d excluded ids, got %d", i, 19+i+1, len(exclude))
			}
		}
		for _, cfg := range fetcher.configs {
			if cfg.Mode != models.ModeMood || !slices.Equal(cfg.Genres, []string{"jazz"}) {
				t.Errorf("replacement used a different config: %+v", cfg)
			}
		}
	})

	t.Run("twenty track removal scenario", func(t *testing.T) {
		initial := tu.MakeTracks("t", 20)
		replacement := tu.MakeTracks("r", 1)[0]
		fetcher := &poolFetcher{pool: append(slices.Clone(initial), replacement)}
		s := Start(jazzConfig(), initial)

		s, got, err := s.RemoveAndReplace(ctx, fetcher, "t-5")
		if err != nil {
			t.Fatalf("RemoveAndReplace() error = %v", err)
		}
		if got.ID != "r-0" {
			t.Errorf("expected replacement r-0, got %s", got.ID)
		}
		if s.Tracks[s.Len()-1].ID != "r-0" {
			t.Error("replacement should be appended at the end")
		}
		if len(fetcher.excludes[0]) != 20 {
			t.Errorf("exclusion should be 19 current + 1 removed, got %d", len(fetcher.excludes[0]))
		}
	})

	t.Run("no candidates leaves list one short", func(t *testing.T) {
		initial := tu.MakeTracks("t", 5)
		fetcher := &poolFetcher{pool: initial}
		s := Start(jazzConfig(), initial)

		next, got, err := s.RemoveAndReplace(ctx, fetcher, "t-2")
		if !errors.Is(err, shared.ErrNoCandidates) {
			t.Fatalf("expected ErrNoCandidates, got %v", err)
		}
		if got != nil || next.Len() != 4 || !next.Removed.Has("t-2") {
			t.Errorf("expected shortened session, got %d tracks", next.Len())
		}
	})

	t.Run("upstream failure leaves list one short", func(t *testing.T) {
		fetcher := &poolFetcher{err: errors.New("boom")}
		s := Start(jazzConfig(), tu.MakeTracks("t", 3))

		next, _, err := s.RemoveAndReplace(ctx, fetcher, "t-0")
		if err == nil || next.Len() != 2 {
			t.Errorf("expected error and 2 tracks, got %v and %d", err, next.Len())
		}
	})
}

func TestExclusionSet(t *testing.T) {
	t.Run("insertion order and dedupe", func(t *testing.T) {
		s := NewExclusionSet("b", "a", "b", "")

		if !slices.Equal(s.IDs(), []string{"b", "a"}) {
			t.Errorf("IDs() = %v", s.IDs())
		}
	})

	t.Run("Add does not alias", func(t *testing.T) {
		base := NewExclusionSet("a")
		x := base.Add("x")
		y := base.Add("y")

		if base.Len() != 1 || x.Has("y") || y.Has("x") {
			t.Errorf("sets share storage: base=%v x=%v y=%v", base.IDs(), x.IDs(), y.IDs())
		}
	})

	t.Run("Union", func(t *testing.T) {
		s := NewExclusionSet("a", "b")
		got := s.Union("b", "c", "")
		if !slices.Equal(got, []string{"a", "b", "c"}) {
			t.Errorf("Union() = %v", got)
		}
	})
}
