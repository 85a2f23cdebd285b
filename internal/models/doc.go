// Package models defines the domain types exchanged between the gateway, its clients and the
// credential store.
//
// Data transfer objects (immutable once fetched from the provider):
//   - [Track] : reduced track projection with an optional preview clip
//   - [Artist] : reduced artist projection with genre tags
//   - [User], [PlaylistRef] : account profile and created playlist reference
//
// Generation parameters:
//   - [GenerationConfig] : mood or artist mode plus [AudioTargets] and a limit
//   - [MoodPreset] : the built-in mood bundles returned by [MoodPresets]
//
// Persistent entities implement [Model]; [Credential] is the only one.
package models
