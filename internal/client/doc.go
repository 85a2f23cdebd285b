// Package client is a typed client for the moodmix gateway, used by the CLI and the terminal UI.
//
// Non-2xx responses decode into [APIError]. A 404 from /api/get-replacement-track is reported
// as shared.ErrNoCandidates so callers can keep the shortened list and move on.
package client
