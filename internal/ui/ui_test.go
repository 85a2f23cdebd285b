package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/moodmix/internal/models"
	"github.com/desertthunder/moodmix/internal/shared"
	tu "github.com/desertthunder/moodmix/internal/testing"
)

type fakeBackend struct {
	tracks       []models.Track
	generateErr  error
	replacements []models.Track
	replaceErr   error
	saveErr      error

	configs  []models.GenerationConfig
	excludes [][]string
	saved    []string
	name     string
}

func (f *fakeBackend) Generate(_ context.Context, cfg models.GenerationConfig) ([]models.Track, error) {
	f.configs = append(f.configs, cfg)
	return f.tracks, f.generateErr
}

func (f *fakeBackend) Replacement(_ context.Context, cfg models.GenerationConfig, exclude []string) (models.Track, error) {
	f.excludes = append(f.excludes, exclude)
	if f.replaceErr != nil {
		return models.Track{}, f.replaceErr
	}
	if len(f.replacements) == 0 {
		return models.Track{}, shared.ErrNoCandidates
	}
	next := f.replacements[0]
	f.replacements = f.replacements[1:]
	return next, nil
}

func (f *fakeBackend) CreatePlaylist(_ context.Context, name, _ string, tracks []string) (*models.PlaylistRef, error) {
	f.name = name
	f.saved = tracks
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	return &models.PlaylistRef{ID: "pl-1", URL: "https://open.spotify.com/playlist/pl-1", Name: name}, nil
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var keyEnter = tea.KeyMsg{Type: tea.KeyEnter}

// run executes cmd and any batched commands, returning the app messages they produce.
func run(cmd tea.Cmd) []Msg {
	if cmd == nil {
		return nil
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		var out []Msg
		for _, c := range msg {
			out = append(out, run(c)...)
		}
		return out
	case Msg:
		return []Msg{msg}
	default:
		return nil
	}
}

// feed runs cmd and delivers its messages back to m.
func feed(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	for _, msg := range run(cmd) {
		_, next := m.Update(msg)
		feed(t, m, next)
	}
}

func newTestModel(b *fakeBackend) *Model {
	m := NewModel(context.Background(), Options{Backend: b, Limit: 20, Open: func(string) error { return nil }})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 60})
	return m
}

// generated returns a model showing 20 tracks for the first mood.
func generated(t *testing.T, b *fakeBackend) *Model {
	t.Helper()
	m := newTestModel(b)
	_, cmd := m.Update(keyEnter)
	feed(t, m, cmd)
	if m.ViewState() != TrackListView {
		t.Fatalf("expected track list, got %d (err %v)", m.ViewState(), m.err)
	}
	return m
}

func TestModel(t *testing.T) {
	t.Run("starts on the mood list", func(t *testing.T) {
		m := newTestModel(&fakeBackend{})
		if m.ViewState() != MoodListView || m.Init() != nil {
			t.Errorf("unexpected initial state %d", m.ViewState())
		}
		if !strings.Contains(m.View(), models.MoodPresets()[0].Name) {
			t.Errorf("mood list missing first preset:\n%s", m.View())
		}
	})

	t.Run("enter generates the selected mood", func(t *testing.T) {
		b := &fakeBackend{tracks: tu.MakeTracks("s", 20)}
		m := newTestModel(b)

		_, cmd := m.Update(keyEnter)
		if m.ViewState() != GeneratingView || !m.Pending() {
			t.Fatalf("expected pending generation, got view %d", m.ViewState())
		}
		feed(t, m, cmd)

		if m.ViewState() != TrackListView || m.Pending() {
			t.Fatalf("expected track list, got view %d", m.ViewState())
		}
		if m.Session().Len() != 20 {
			t.Errorf("expected 20 tracks, got %d", m.Session().Len())
		}
		first := models.MoodPresets()[0]
		if len(b.configs) != 1 || b.configs[0].Limit != 20 || b.configs[0].Genres[0] != first.Genres[0] {
			t.Errorf("unexpected configs %+v", b.configs)
		}
	})

	t.Run("generation failure returns to the mood list", func(t *testing.T) {
		b := &fakeBackend{generateErr: errors.New("gateway down")}
		m := newTestModel(b)
		_, cmd := m.Update(keyEnter)
		feed(t, m, cmd)

		if m.ViewState() != MoodListView || !strings.Contains(m.View(), "gateway down") {
			t.Errorf("expected error on mood list, got view %d:\n%s", m.ViewState(), m.View())
		}
	})

	t.Run("initial config generates immediately", func(t *testing.T) {
		b := &fakeBackend{tracks: tu.MakeTracks("a", 5)}
		cfg := models.ArtistConfig([]string{"a1"}, 5)
		m := NewModel(context.Background(), Options{Backend: b, Initial: &cfg})

		feed(t, m, m.Init())
		if m.ViewState() != TrackListView || m.Session().Config.Mode != models.ModeArtists {
			t.Errorf("unexpected state %d %+v", m.ViewState(), m.Session().Config)
		}
	})

	t.Run("remove and replace", func(t *testing.T) {
		t.Run("replacement is appended", func(t *testing.T) {
			b := &fakeBackend{tracks: tu.MakeTracks("s", 20), replacements: tu.MakeTracks("r", 1)}
			m := generated(t, b)

			_, cmd := m.Update(keyRunes("d"))
			if !m.Pending() || m.Session().Len() != 19 {
				t.Fatalf("expected immediate removal, got %d pending=%v", m.Session().Len(), m.Pending())
			}
			feed(t, m, cmd)

			s := m.Session()
			if s.Len() != 20 || s.Tracks[19].ID != "r-0" {
				t.Errorf("expected r-0 appended, got %d tracks", s.Len())
			}
			if !s.Removed.Has("s-0") {
				t.Error("expected s-0 in the exclusion set")
			}
			if len(b.excludes) != 1 || len(b.excludes[0]) != 20 {
				t.Errorf("expected 19 kept ids plus the removed one, got %v", b.excludes)
			}
			if !strings.Contains(m.View(), "Replaced") {
				t.Errorf("expected a status line, got:\n%s", m.View())
			}
		})

		t.Run("only one request at a time", func(t *testing.T) {
			b := &fakeBackend{tracks: tu.MakeTracks("s", 20), replacements: tu.MakeTracks("r", 2)}
			m := generated(t, b)

			_, first := m.Update(keyRunes("d"))
			_, second := m.Update(keyRunes("d"))
			_, save := m.Update(keyRunes("s"))
			if second != nil || save != nil {
				t.Error("expected keys to be ignored while a replacement is pending")
			}
			if m.Session().Len() != 19 {
				t.Errorf("expected exactly one removal, got %d tracks", m.Session().Len())
			}
			feed(t, m, first)
			if len(b.excludes) != 1 {
				t.Errorf("expected one replacement request, got %d", len(b.excludes))
			}
		})

		t.Run("exhaustion leaves the list short", func(t *testing.T) {
			b := &fakeBackend{tracks: tu.MakeTracks("s", 20)}
			m := generated(t, b)

			_, cmd := m.Update(keyRunes("d"))
			feed(t, m, cmd)

			if m.Session().Len() != 19 || m.Pending() {
				t.Errorf("expected 19 tracks and no pending request, got %d", m.Session().Len())
			}
			if !strings.Contains(m.View(), "no more tracks") {
				t.Errorf("expected exhaustion status, got:\n%s", m.View())
			}
		})

		t.Run("failure leaves the list short", func(t *testing.T) {
			b := &fakeBackend{tracks: tu.MakeTracks("s", 20), replaceErr: fmt.Errorf("%w: 500", shared.ErrAPIRequest)}
			m := generated(t, b)

			_, cmd := m.Update(keyRunes("d"))
			feed(t, m, cmd)

			if m.Session().Len() != 19 || m.ViewState() != TrackListView {
				t.Errorf("expected to stay on a 19 track list, got %d tracks view %d", m.Session().Len(), m.ViewState())
			}
			if !strings.Contains(m.View(), "replacement failed") {
				t.Errorf("expected failure status, got:\n%s", m.View())
			}
		})

		t.Run("repeated removals grow the exclusion set", func(t *testing.T) {
			b := &fakeBackend{tracks: tu.MakeTracks("s", 20), replacements: tu.MakeTracks("r", 3)}
			m := generated(t, b)

			for range 3 {
				_, cmd := m.Update(keyRunes("d"))
				feed(t, m, cmd)
			}
			if m.Session().Len() != 20 || m.Session().Removed.Len() != 3 {
				t.Errorf("expected 20 tracks and 3 removed, got %d/%d", m.Session().Len(), m.Session().Removed.Len())
			}
		})
	})

	t.Run("save", func(t *testing.T) {
		t.Run("creates the playlist and opens it", func(t *testing.T) {
			var opened string
			b := &fakeBackend{tracks: tu.MakeTracks("s", 20)}
			m := generated(t, b)
			m.open = func(url string) error { opened = url; return nil }

			_, cmd := m.Update(keyRunes("s"))
			if m.ViewState() != SavingView {
				t.Fatalf("expected saving view, got %d", m.ViewState())
			}
			feed(t, m, cmd)

			if m.ViewState() != ResultView || !strings.Contains(m.View(), "Playlist saved") {
				t.Fatalf("expected result view, got %d:\n%s", m.ViewState(), m.View())
			}
			if len(b.saved) != 20 || b.saved[0] != "spotify:track:s-0" {
				t.Errorf("unexpected saved uris %v", b.saved)
			}
			if !strings.HasSuffix(b.name, " mix") {
				t.Errorf("unexpected playlist name %q", b.name)
			}

			_, cmd = m.Update(keyRunes("o"))
			feed(t, m, cmd)
			if opened != "https://open.spotify.com/playlist/pl-1" {
				t.Errorf("unexpected opened url %q", opened)
			}
		})

		t.Run("failure can go back to the list", func(t *testing.T) {
			b := &fakeBackend{tracks: tu.MakeTracks("s", 20), saveErr: errors.New("forbidden")}
			m := generated(t, b)

			_, cmd := m.Update(keyRunes("s"))
			feed(t, m, cmd)
			if !strings.Contains(m.View(), "Saving failed") {
				t.Fatalf("expected failure, got:\n%s", m.View())
			}

			m.Update(tea.KeyMsg{Type: tea.KeyEsc})
			if m.ViewState() != TrackListView || m.Session().Len() != 20 {
				t.Errorf("expected the list back, got view %d", m.ViewState())
			}
		})

		t.Run("restart clears the mix", func(t *testing.T) {
			b := &fakeBackend{tracks: tu.MakeTracks("s", 20)}
			m := generated(t, b)
			_, cmd := m.Update(keyRunes("s"))
			feed(t, m, cmd)

			m.Update(keyRunes("r"))
			if m.ViewState() != MoodListView || m.Session().Len() != 0 {
				t.Errorf("expected a fresh mood list, got view %d", m.ViewState())
			}
		})
	})

	t.Run("spinner ticks stop when idle", func(t *testing.T) {
		m := newTestModel(&fakeBackend{})
		if _, cmd := m.Update(spinner.TickMsg{}); cmd != nil {
			t.Error("expected no tick while idle")
		}
	})

	t.Run("quit", func(t *testing.T) {
		m := newTestModel(&fakeBackend{})
		_, cmd := m.Update(keyRunes("q"))
		if cmd == nil {
			t.Fatal("expected a quit command")
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Error("expected tea.QuitMsg")
		}
	})
}
