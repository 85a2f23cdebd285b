package models

import (
	"fmt"
	"slices"
	"strings"
)

// Mode discriminates how a playlist was generated.
type Mode string

const (
	ModeMood    Mode = "mood"
	ModeArtists Mode = "artists"
)

const (
	DefaultLimit   = 20
	DefaultEnergy  = 0.7
	DefaultValence = 0.5
	DefaultTempo   = 120.0
)

// FallbackGenres seed generation when a request names none.
var FallbackGenres = []string{"pop", "rock"}

// AudioTargets are target audio features for recommendation seeding.
type AudioTargets struct {
	Energy  float64 `json:"energy"`
	Valence float64 `json:"valence"`
	Tempo   float64 `json:"tempo"`
}

// DefaultTargets returns the targets applied when a request omits them.
func DefaultTargets() AudioTargets {
	return AudioTargets{Energy: DefaultEnergy, Valence: DefaultValence, Tempo: DefaultTempo}
}

// ArtistTargets are the fixed targets used for artist-similarity generation.
func ArtistTargets() AudioTargets {
	return AudioTargets{Energy: 0.7, Valence: 0.6, Tempo: 120}
}

// WithDefaults fills zero fields from DefaultTargets.
func (a AudioTargets) WithDefaults() AudioTargets {
	d := DefaultTargets()
	if a.Energy == 0 {
		a.Energy = d.Energy
	}
	if a.Valence == 0 {
		a.Valence = d.Valence
	}
	if a.Tempo == 0 {
		a.Tempo = d.Tempo
	}
	return a
}

// GenerationConfig captures the parameters of one generation action. It is reused
// unchanged for every replacement requested in the same session.
type GenerationConfig struct {
	Mode      Mode         `json:"mode"`
	Genres    []string     `json:"genres,omitempty"`
	ArtistIDs []string     `json:"artist_ids,omitempty"`
	Targets   AudioTargets `json:"targets"`
	Limit     int          `json:"limit"`
}

// MoodConfig builds a mood-mode configuration.
func MoodConfig(genres []string, targets AudioTargets, limit int) GenerationConfig {
	return GenerationConfig{
		Mode:    ModeMood,
		Genres:  slices.Clone(genres),
		Targets: targets,
		Limit:   limit,
	}.Normalize()
}

// ArtistConfig builds an artist-similarity configuration.
func ArtistConfig(artistIDs []string, limit int) GenerationConfig {
	return GenerationConfig{
		Mode:      ModeArtists,
		ArtistIDs: slices.Clone(artistIDs),
		Targets:   ArtistTargets(),
		Limit:     limit,
	}.Normalize()
}

// Normalize applies defaults for absent fields. Mode is inferred from ArtistIDs when unset.
func (c GenerationConfig) Normalize() GenerationConfig {
	if c.Mode == "" {
		c.Mode = ModeMood
		if len(c.ArtistIDs) > 0 {
			c.Mode = ModeArtists
		}
	}
	if c.Limit <= 0 {
		c.Limit = DefaultLimit
	}
	if c.Mode == ModeMood && len(c.Genres) == 0 {
		c.Genres = slices.Clone(FallbackGenres)
	}
	c.Targets = c.Targets.WithDefaults()
	return c
}

// Validate checks the mode discriminant against its payload.
func (c GenerationConfig) Validate() error {
	switch c.Mode {
	case ModeMood:
		return nil
	case ModeArtists:
		if len(c.ArtistIDs) == 0 {
			return fmt.Errorf("artist mode requires at least one artist id")
		}
		return nil
	default:
		return fmt.Errorf("unknown generation mode %q", c.Mode)
	}
}

// String renders a short human label, e.g. "mood: indie, ambient".
func (c GenerationConfig) String() string {
	switch c.Mode {
	case ModeArtists:
		return fmt.Sprintf("artists: %d seeds", len(c.ArtistIDs))
	default:
		return "mood: " + strings.Join(c.Genres, ", ")
	}
}
