package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"gitlab.com/timkado/api/game-catalog-service/internal/domain"
)

// maxBodyBytes caps request payloads.
const maxBodyBytes = 1 << 20

// MessageResponse is a plain acknowledgement body.
type MessageResponse struct {
	Message string `json:"message"`
}

func writeJSON(ctx context.Context, w http.ResponseWriter, logger domain.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error(ctx, "Failed to encode response", "error", err.Error())
		// Hard to do much if response writing itself fails
	}
}

// decodeJSON reads a single JSON object into dst and writes a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, logger domain.Logger, dst any) bool {
	defer r.Body.Close()

	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		logger.Warn(r.Context(), "Failed to decode request payload", "path", r.URL.Path, "error", err.Error())
		domain.NewErrorResponse(domain.ErrBadRequest, "Invalid request payload", err.Error()).WriteJSON(w, http.StatusBadRequest)
		return false
	}
	return true
}

// pathID parses the {id} wildcard and writes a 400 when it is not a positive integer.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		domain.NewErrorResponse(domain.ErrBadRequest, "Invalid id", "id must be a positive integer").WriteJSON(w, http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// writeServiceError maps catalog errors; anything unknown becomes a 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger domain.Logger, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		domain.NewErrorResponse(domain.ErrRecordNotFound, "Game not found", "").WriteJSON(w, http.StatusNotFound)
		return
	}
	if errors.Is(err, domain.ErrDuplicate) {
		domain.NewErrorResponse(domain.ErrConflict, "A game with this name already exists", "").WriteJSON(w, http.StatusConflict)
		return
	}
	logger.Error(r.Context(), "Request failed", "path", r.URL.Path, "method", r.Method, "error", err.Error())
	domain.NewErrorResponse(domain.ErrInternal, "An unexpected error occurred.", "Internal server error.").WriteJSON(w, http.StatusInternalServerError)
}
