// Package session models the client side of a generated playlist.
//
// A [Session] carries the [models.GenerationConfig] captured at generation time, the current
// track list and an [ExclusionSet] of removed ids. Actions ([Start], [Session.Remove],
// [Session.Append], [Session.RemoveAndReplace]) take a session and return a new one.
//
// The exclusion set only grows within a session. [Session.ExcludeIDs] combines it with the
// ids currently in the list at call time, so a replacement can never be a removed track or a
// duplicate.
package session
