// Package tasks turns gateway requests into provider calls and reshapes the results.
//
// # Engine
//
// [Engine] builds a [services.Provider] per access token and exposes one method per relay
// operation: [Engine.SearchSongs], [Engine.Recommend], [Engine.Personalized],
// [Engine.SearchArtists], [Engine.SimilarToArtists], [Engine.Replacement],
// [Engine.CreatePlaylist] and [Engine.Me]. Every batch it returns is ordered with
// [PartitionByPreview].
//
// # Replacement
//
// [Engine.Replacement] fetches one page of same-class candidates (ReplacementPageSize, larger
// than a generation), removes the caller's exclusion set and returns the first preview-first
// survivor, or shared.ErrNoCandidates. It never retries and has no side effects.
//
// # Artist similarity
//
// [ResolveArtists] fans artist lookups out with an errgroup capped at LookupConcurrency and
// joins them before [TopGenres] picks the most common tags for a single [GenreQuery] search.
//
// # Progress Reporting
//
// Multi-step operations accept an optional progress channel. Updates use select with default
// so a slow or absent reader never blocks the request; the HTTP handlers pass nil.
package tasks
