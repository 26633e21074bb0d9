package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ImadGanwa/AcademyAi-sub003/internal/booking"
)

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// writeError maps domain errors onto HTTP statuses. Anything unrecognized is
// a 500 with a generic body; the detail goes to the log, not the client.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var ve *booking.ValidationError
	if errors.As(err, &ve) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: ve.Message, Field: ve.Field})
		return
	}
	var nf *booking.NotFoundError
	if errors.As(err, &nf) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: nf.Error()})
		return
	}
	var ce *booking.ConflictError
	if errors.As(err, &ce) {
		writeJSON(w, http.StatusConflict, errorResponse{Error: ce.Message})
		return
	}
	var ste *booking.StateTransitionError
	if errors.As(err, &ste) {
		writeJSON(w, http.StatusConflict, errorResponse{Error: ste.Error()})
		return
	}
	var ede *booking.ExternalDependencyError
	if errors.As(err, &ede) {
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: ede.Error()})
		return
	}
	logger.Error("request failed", "err", err)
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// identityFrom trusts the user headers set by the upstream gateway after
// token verification. An empty user id means the request never passed the
// auth gate.
func identityFrom(r *http.Request) (booking.Identity, bool) {
	id := booking.Identity{
		UserID: strings.TrimSpace(r.Header.Get("X-User-Id")),
		Role:   strings.TrimSpace(r.Header.Get("X-User-Role")),
	}
	if id.UserID == "" {
		return booking.Identity{}, false
	}
	return id, true
}

func requireIdentity(w http.ResponseWriter, r *http.Request) (booking.Identity, bool) {
	id, ok := identityFrom(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication required"})
	}
	return id, ok
}
