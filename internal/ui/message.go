package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/moodmix/internal/models"
	"github.com/desertthunder/moodmix/internal/session"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgTracksGenerated MsgKind = iota
	MsgTrackReplaced
	MsgPlaylistSaved
	MsgBrowserOpened
)

type generatedData struct {
	cfg    models.GenerationConfig
	tracks []models.Track
	err    error
}

type replacedData struct {
	session     session.Session
	replacement *models.Track
	removed     models.Track
	err         error
}

type savedData struct {
	playlist *models.PlaylistRef
	err      error
}

// tracksGeneratedMsg is the constructor for [MsgTracksGenerated]
func tracksGeneratedMsg(cfg models.GenerationConfig, tracks []models.Track, err error) Msg {
	return Msg{kind: MsgTracksGenerated, data: generatedData{cfg, tracks, err}}
}

// trackReplacedMsg is the constructor for [MsgTrackReplaced]
func trackReplacedMsg(s session.Session, replacement *models.Track, removed models.Track, err error) Msg {
	return Msg{kind: MsgTrackReplaced, data: replacedData{s, replacement, removed, err}}
}

// playlistSavedMsg is the constructor for [MsgPlaylistSaved]
func playlistSavedMsg(playlist *models.PlaylistRef, err error) Msg {
	return Msg{kind: MsgPlaylistSaved, data: savedData{playlist, err}}
}

// browserOpenedMsg is the constructor for [MsgBrowserOpened]
func browserOpenedMsg(err error) Msg {
	return Msg{kind: MsgBrowserOpened, data: err}
}
