package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/akyairhashvil/roadmap/internal/apperr"
)

const maxBodyBytes = 4 << 20

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeCommandError maps a store or exchange error to its HTTP status.
func writeCommandError(w http.ResponseWriter, err error) {
	status, kind := statusFor(err)
	writeJSON(w, status, errorResponse{Error: err.Error(), Kind: kind, Field: apperr.Field(err)})
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, apperr.ErrDuplicateName):
		return http.StatusConflict, "duplicate_name"
	case errors.Is(err, apperr.ErrRange):
		return http.StatusUnprocessableEntity, "range"
	case errors.Is(err, apperr.ErrRequiredField):
		return http.StatusBadRequest, "required_field"
	case errors.Is(err, apperr.ErrFormat):
		return http.StatusBadRequest, "format"
	}
	return http.StatusInternalServerError, ""
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
