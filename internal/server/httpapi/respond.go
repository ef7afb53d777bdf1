// Package httpapi exposes the note and auth services over a JSON HTTP API.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/monotes/monotes/internal/common"
)

type errorPayload struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeErrorMsg(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorPayload{Error: msg})
}

// writeError maps the service error taxonomy onto HTTP statuses. The expired
// token case carries a machine-readable code so clients refresh instead of
// re-authenticating.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, common.ErrTokenExpired):
		writeJSON(w, http.StatusUnauthorized, errorPayload{Error: err.Error(), Code: common.TokenExpiredCode})
	case errors.Is(err, common.ErrUnauthenticated), errors.Is(err, common.ErrInvalidToken):
		writeJSON(w, http.StatusUnauthorized, errorPayload{Error: err.Error()})
	case errors.Is(err, common.ErrRefreshTokenExpired):
		writeJSON(w, http.StatusUnauthorized, errorPayload{Error: err.Error()})
	case errors.Is(err, common.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorPayload{Error: err.Error()})
	case errors.Is(err, common.ErrAlreadyExists):
		writeJSON(w, http.StatusConflict, errorPayload{Error: err.Error()})
	case errors.Is(err, common.ErrValidation):
		writeJSON(w, http.StatusBadRequest, errorPayload{Error: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errorPayload{Error: "internal error"})
	}
}
