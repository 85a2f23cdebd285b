package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/desertthunder/moodmix/internal/shared"
)

// Machine-readable error reasons returned in the "error" field.
const (
	ReasonMissingToken   = "missing_token"
	ReasonInvalidRequest = "invalid_request"
	ReasonUpstream       = "upstream_error"
	ReasonNoCandidates   = "no_candidates"
	ReasonRefreshFailed  = "refresh_failed"
	ReasonAuthFailed     = "auth_failed"
	ReasonNotFound       = "not_found"
)

// maxBodyBytes caps request bodies; playlists of a few hundred URIs fit comfortably.
const maxBodyBytes = 1 << 20

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, reason, details string) {
	writeJSON(w, status, ErrorBody{Error: reason, Details: details})
}

// statusFor maps an error to its HTTP status and reason.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, shared.ErrMissingToken):
		return http.StatusUnauthorized, ReasonMissingToken
	case errors.Is(err, shared.ErrNoCandidates):
		return http.StatusNotFound, ReasonNoCandidates
	case errors.Is(err, shared.ErrInvalidInput):
		return http.StatusBadRequest, ReasonInvalidRequest
	default:
		return http.StatusInternalServerError, ReasonUpstream
	}
}

func writeErr(w http.ResponseWriter, err error) {
	status, reason := statusFor(err)
	writeError(w, status, reason, err.Error())
}

// decodeJSON decodes the request body into v. An empty body leaves v untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	return nil
}
