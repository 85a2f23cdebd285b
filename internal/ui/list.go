package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"

	"github.com/desertthunder/moodmix/internal/models"
)

var (
	_ list.Item = moodItem{}
	_ list.Item = trackItem{}
)

// moodItem wraps [models.MoodPreset] to implement [list.Item].
type moodItem struct {
	mood models.MoodPreset
}

func (i moodItem) FilterValue() string { return i.mood.Name }
func (i moodItem) Title() string       { return i.mood.Name }
func (i moodItem) Description() string {
	return fmt.Sprintf("%s • %s", i.mood.Description, strings.Join(i.mood.Genres, ", "))
}

// trackItem wraps [models.Track] to implement [list.Item].
type trackItem struct {
	track models.Track
}

func (i trackItem) FilterValue() string { return i.track.Name + " " + i.track.Artist }
func (i trackItem) Title() string {
	if i.track.HasPreview() {
		return "♪ " + i.track.Name
	}
	return i.track.Name
}
func (i trackItem) Description() string {
	desc := i.track.Artist
	if i.track.Album != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.track.Album)
	}
	return desc
}

func moodItems(moods []models.MoodPreset) []list.Item {
	items := make([]list.Item, len(moods))
	for i, m := range moods {
		items[i] = moodItem{mood: m}
	}
	return items
}

func trackItems(tracks []models.Track) []list.Item {
	items := make([]list.Item, len(tracks))
	for i, t := range tracks {
		items[i] = trackItem{track: t}
	}
	return items
}
