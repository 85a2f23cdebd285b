package server

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path"
	"strings"
)

// SPAHandler serves a built front end from dir. Paths that do not name a file fall back to
// index.html so client-side routes resolve.
type SPAHandler struct {
	root  fs.FS
	files http.Handler
}

// NewSPAHandler creates an [SPAHandler] rooted at dir.
func NewSPAHandler(dir string) *SPAHandler {
	root := os.DirFS(dir)
	return &SPAHandler{root: root, files: http.FileServerFS(root)}
}

// Routes returns the HTTP routes this handler serves.
func (h *SPAHandler) Routes() []string {
	return []string{"GET /"}
}

func (h *SPAHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
	if name == "" {
		name = "."
	}

	info, err := fs.Stat(h.root, name)
	switch {
	case err == nil && !info.IsDir():
		h.files.ServeHTTP(w, r)
	case err == nil || errors.Is(err, fs.ErrNotExist):
		http.ServeFileFS(w, r, h.root, "index.html")
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
