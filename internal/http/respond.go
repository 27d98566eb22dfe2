package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/shuttle-league/internal/apperr"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to encode response", "error", err)
	}
}

func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation, apperr.KindInvalidInput:
		return http.StatusBadRequest
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	}
	return http.StatusServiceUnavailable
}

// writeError maps err to a status code by its kind.
func writeError(w http.ResponseWriter, err error) {
	kind := apperr.KindOf(err)
	resp := errorResponse{Error: err.Error(), Kind: string(kind)}
	var e *apperr.Error
	if errors.As(err, &e) {
		resp.Field = e.Field
	}
	writeJSON(w, statusFor(kind), resp)
}

// decode reads a JSON body into v. A malformed body is a validation error.
func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.Field("body", "request body is not valid JSON")
	}
	return nil
}
