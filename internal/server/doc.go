// Package server is the HTTP relay between a front end and the music provider.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support. [BasicRouter] uses
// [http.ServeMux] method patterns, and its [Middleware] wraps the whole mux in registration
// order, so CORS preflights and unmatched paths pass through the same stack.
//
// Custom handlers implement [Handler], which wraps the stdlib handler interface and adds routes,
// so each handler owns its route definitions.
//
// # Gateway
//
// [NewGateway] assembles the relay:
//   - [AuthHandler]: /auth/login, /auth/callback and /auth/refresh. Tokens are handed to the
//     front end and never stored.
//   - [APIHandler]: the /api endpoints, each a thin adapter over [tasks.Engine].
//   - /healthz and /metrics ([Metrics], a private Prometheus registry).
//   - [SPAHandler] when a static directory is configured.
//
// Every /api request is checked for an access token before any upstream call. Errors use one
// JSON shape, {"error": reason, "details": message}: 401 missing_token, 400 invalid_request,
// 404 no_candidates when a replacement search is exhausted, 500 upstream_error otherwise.
//
// # Terminal Login
//
// [Authorize] runs the authorization-code flow for the CLI: it binds the redirect URI's
// host on localhost, opens the consent page and waits on an [OAuthHandler], which verifies
// state and only processes one callback.
package server
