// Package services talks to the upstream music provider.
//
// [Provider] is the narrow surface the gateway relays: track and artist search, artist lookup,
// the user's top artists, seeded recommendations, profile and playlist creation.
// [SpotifyService] implements it on top of github.com/zmb3/spotify/v2, bound to a single access
// token. A [Factory] builds one per request so no credential is shared between requests.
//
// [Authenticator] wraps golang.org/x/oauth2 for the authorization-code and refresh flows.
//
// Provider failures are reported as [*UpstreamError], which keeps the provider's HTTP status
// so callers can branch on it (see [IsStatus]) and matches shared.ErrAPIRequest.
package services
