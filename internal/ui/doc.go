// Package ui implements the interactive terminal client using bubbletea's Elm architecture.
//
// The TUI walks through one mix:
//  1. [MoodListView] : pick a mood preset
//  2. [GeneratingView] : wait for the gateway
//  3. [TrackListView] : review tracks; d removes the selected one and appends a replacement,
//     s saves the list as a playlist
//  4. [SavingView] : wait for the playlist
//  5. [ResultView] : show the saved playlist, open it in a browser or start over
//
// The [Model] talks to the gateway through a [Backend] and keeps the list in a
// session.Session value. Requests run as tea.Cmds and report back through the Msg union
// type; while one is pending, keys that would start another are ignored. A failed or
// exhausted replacement leaves the list one track short and shows a status line.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
