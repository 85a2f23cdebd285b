package models

import (
	"slices"
	"strings"
)

// MoodPreset is a named bundle of genres and audio targets.
type MoodPreset struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Genres      []string     `json:"genres"`
	Targets     AudioTargets `json:"targets"`
}

// Config builds the generation config for this preset.
func (m MoodPreset) Config(limit int) GenerationConfig {
	return MoodConfig(m.Genres, m.Targets, limit)
}

var moodPresets = []MoodPreset{
	{
		ID: "workout", Name: "Workout", Description: "High energy to push through",
		Genres:  []string{"hip-hop", "edm", "metal"},
		Targets: AudioTargets{Energy: 0.9, Valence: 0.7, Tempo: 140},
	},
	{
		ID: "chill", Name: "Chill", Description: "Relaxed and easygoing",
		Genres:  []string{"indie", "ambient", "acoustic"},
		Targets: AudioTargets{Energy: 0.3, Valence: 0.6, Tempo: 90},
	},
	{
		ID: "party", Name: "Party", Description: "Dance all night",
		Genres:  []string{"latin", "dance", "reggaeton"},
		Targets: AudioTargets{Energy: 0.85, Valence: 0.85, Tempo: 120},
	},
	{
		ID: "sad", Name: "Melancholy", Description: "For the heavy days",
		Genres:  []string{"indie", "sad", "emo"},
		Targets: AudioTargets{Energy: 0.3, Valence: 0.2, Tempo: 80},
	},
	{
		ID: "focus", Name: "Focus", Description: "Concentration and study",
		Genres:  []string{"classical", "ambient", "study"},
		Targets: AudioTargets{Energy: 0.4, Valence: 0.5, Tempo: 95},
	},
	{
		ID: "latenight", Name: "Late Night", Description: "After hours",
		Genres:  []string{"r-n-b", "soul", "jazz"},
		Targets: AudioTargets{Energy: 0.5, Valence: 0.4, Tempo: 85},
	},
}

// MoodPresets returns a copy of the built-in presets in display order.
func MoodPresets() []MoodPreset {
	out := make([]MoodPreset, len(moodPresets))
	for i, m := range moodPresets {
		m.Genres = slices.Clone(m.Genres)
		out[i] = m
	}
	return out
}

// FindMood looks a preset up by id, case-insensitively.
func FindMood(id string) (MoodPreset, bool) {
	for _, m := range MoodPresets() {
		if strings.EqualFold(m.ID, strings.TrimSpace(id)) {
			return m, true
		}
	}
	return MoodPreset{}, false
}
