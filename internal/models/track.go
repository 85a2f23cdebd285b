package models

// Track is the reduced projection of a provider track returned to clients.
//
// Tracks are immutable once fetched.
type Track struct {
	ID         string `json:"id"`
	URI        string `json:"uri"`
	Name       string `json:"name"`
	Artist     string `json:"artist"`
	ArtistID   string `json:"artist_id"`
	Album      string `json:"album"`
	Image      string `json:"image,omitempty"`
	PreviewURL string `json:"preview_url,omitempty"`
}

// HasPreview reports whether the track carries a preview clip.
func (t Track) HasPreview() bool {
	return t.PreviewURL != ""
}

// Artist is the reduced projection of a provider artist.
type Artist struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Genres     []string `json:"genres"`
	Image      string   `json:"image,omitempty"`
	Popularity int      `json:"popularity"`
}

// Image is a profile or cover image reference.
type Image struct {
	URL    string `json:"url"`
	Height int    `json:"height,omitempty"`
	Width  int    `json:"width,omitempty"`
}

// User is the authenticated provider account.
type User struct {
	ID          string  `json:"id"`
	DisplayName string  `json:"display_name"`
	Email       string  `json:"email,omitempty"`
	Images      []Image `json:"images"`
}

// PlaylistRef identifies a playlist created on the provider.
type PlaylistRef struct {
	ID   string `json:"id"`
	URL  string `json:"url"`
	Name string `json:"name"`
}

// TrackIDs returns the identifiers of tracks in order.
func TrackIDs(tracks []Track) []string {
	ids := make([]string, len(tracks))
	for i, t := range tracks {
		ids[i] = t.ID
	}
	return ids
}

// TrackURIs returns the provider URIs of tracks in order.
func TrackURIs(tracks []Track) []string {
	uris := make([]string, len(tracks))
	for i, t := range tracks {
		uris[i] = t.URI
	}
	return uris
}
