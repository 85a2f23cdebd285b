package models

import (
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestGenerationConfig(t *testing.T) {
	t.Run("Normalize", func(t *testing.T) {
		t.Run("fills mood defaults", func(t *testing.T) {
			c := GenerationConfig{}.Normalize()
			if c.Mode != ModeMood || c.Limit != DefaultLimit {
				t.Errorf("unexpected defaults %+v", c)
			}
			if len(c.Genres) != 2 || c.Genres[0] != "pop" {
				t.Errorf("expected fallback genres, got %v", c.Genres)
			}
			if c.Targets != DefaultTargets() {
				t.Errorf("expected default targets, got %+v", c.Targets)
			}
		})

		t.Run("infers artist mode", func(t *testing.T) {
			c := GenerationConfig{ArtistIDs: []string{"a1"}}.Normalize()
			if c.Mode != ModeArtists || len(c.Genres) != 0 {
				t.Errorf("expected artist mode without genres, got %+v", c)
			}
		})

		t.Run("keeps explicit targets", func(t *testing.T) {
			c := GenerationConfig{Targets: AudioTargets{Energy: 0.2}}.Normalize()
			if c.Targets.Energy != 0.2 || c.Targets.Tempo != DefaultTempo {
				t.Errorf("unexpected targets %+v", c.Targets)
			}
		})
	})

	t.Run("Validate", func(t *testing.T) {
		if err := MoodConfig(nil, AudioTargets{}, 0).Validate(); err != nil {
			t.Errorf("expected mood config to be valid, got %v", err)
		}
		if err := (GenerationConfig{Mode: ModeArtists}).Validate(); err == nil {
			t.Error("expected artist mode without ids to fail")
		}
		if err := (GenerationConfig{Mode: "radio"}).Validate(); err == nil {
			t.Error("expected unknown mode to fail")
		}
	})

	t.Run("ArtistConfig uses fixed targets", func(t *testing.T) {
		c := ArtistConfig([]string{"a1", "a2"}, 10)
		if c.Targets != ArtistTargets() || c.Limit != 10 {
			t.Errorf("unexpected config %+v", c)
		}
		if c.String() != "artists: 2 seeds" {
			t.Errorf("unexpected label %q", c.String())
		}
	})

	t.Run("MoodConfig copies genres", func(t *testing.T) {
		genres := []string{"indie"}
		c := MoodConfig(genres, AudioTargets{}, 5)
		genres[0] = "changed"
		if c.Genres[0] != "indie" || c.String() != "mood: indie" {
			t.Errorf("expected an independent copy, got %v", c.Genres)
		}
	})
}

func TestMoods(t *testing.T) {
	t.Run("presets are copies", func(t *testing.T) {
		first := MoodPresets()
		first[0].Genres[0] = "changed"
		if MoodPresets()[0].Genres[0] == "changed" {
			t.Error("expected presets to be immutable")
		}
	})

	t.Run("FindMood is case-insensitive", func(t *testing.T) {
		m, ok := FindMood(" Chill ")
		if !ok || m.Name != "Chill" {
			t.Errorf("expected chill, got %+v %v", m, ok)
		}
		if _, ok := FindMood("polka"); ok {
			t.Error("expected unknown mood to miss")
		}
	})

	t.Run("Config carries the preset", func(t *testing.T) {
		m, _ := FindMood("workout")
		c := m.Config(0)
		if c.Mode != ModeMood || c.Targets.Tempo != 140 || c.Limit != DefaultLimit {
			t.Errorf("unexpected config %+v", c)
		}
	})
}

func TestTracks(t *testing.T) {
	tracks := []Track{
		{ID: "t1", URI: "spotify:track:t1", PreviewURL: "https://p/t1"},
		{ID: "t2", URI: "spotify:track:t2"},
	}

	if ids := TrackIDs(tracks); ids[0] != "t1" || ids[1] != "t2" {
		t.Errorf("unexpected ids %v", ids)
	}
	if uris := TrackURIs(tracks); uris[1] != "spotify:track:t2" {
		t.Errorf("unexpected uris %v", uris)
	}
	if !tracks[0].HasPreview() || tracks[1].HasPreview() {
		t.Error("unexpected preview flags")
	}
}

func TestCredential(t *testing.T) {
	t.Run("SetToken keeps the refresh token when omitted", func(t *testing.T) {
		c := NewCredential("u1", "User", &oauth2.Token{AccessToken: "a1", RefreshToken: "r1"})
		c.SetToken(&oauth2.Token{AccessToken: "a2"})

		if c.AccessToken() != "a2" || c.RefreshToken() != "r1" || c.TokenType() != "Bearer" {
			t.Errorf("unexpected token %+v", c.Token())
		}
	})

	t.Run("Expired", func(t *testing.T) {
		c := NewCredential("u1", "User", &oauth2.Token{AccessToken: "a", Expiry: time.Now().Add(30 * time.Second)})
		if c.Expired(0) {
			t.Error("expected token to be valid now")
		}
		if !c.Expired(time.Minute) {
			t.Error("expected token to expire within a minute")
		}
		if NewCredential("u1", "", &oauth2.Token{AccessToken: "a"}).Expired(time.Hour) {
			t.Error("expected a token without expiry to never expire")
		}
	})

	t.Run("Validate", func(t *testing.T) {
		c := NewCredential("u1", "User", &oauth2.Token{AccessToken: "a"})
		if err := c.Validate(); err == nil {
			t.Error("expected missing id to fail")
		}
		c.SetID("id-1")
		if err := c.Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}
