package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shelfmark/shelfmark-go/internal/apperr"
	"github.com/shelfmark/shelfmark-go/internal/model"
)

const maxBodyBytes = 1 << 20 // 1MB

// decodeJSON reads a size-capped JSON body into v. It writes the error
// response itself and reports whether the handler should continue.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse("request body too large"))
			return false
		}
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid request body"))
		return false
	}
	return true
}

// writeError maps a service error to its status code. Errors without a
// client-safe kind are reported as a generic 500.
func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(apperr.KindOf(err)), errorResponse(apperr.Message(err)))
}

func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindAuth:
		return http.StatusUnauthorized
	case apperr.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func errorResponse(msg string) model.MessageResponse {
	return model.MessageResponse{Message: msg}
}
