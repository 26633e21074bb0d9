package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ImadGanwa/AcademyAi-sub003/internal/booking"
	"github.com/ImadGanwa/AcademyAi-sub003/internal/model"
)

type AvailabilityHandler struct {
	svc    *booking.Service
	logger *slog.Logger
}

func NewAvailabilityHandler(svc *booking.Service, logger *slog.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{svc: svc, logger: logger}
}

type setAvailabilityRequest struct {
	Slots []model.AvailabilitySlot `json:"slots"`
}

type availabilityResponse struct {
	Slots []model.AvailabilitySlot `json:"slots"`
}

// Availability serves the mentor's own schedule: PUT replaces it wholesale,
// GET returns the current set.
func (h *AvailabilityHandler) Availability(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if caller.Role != "mentor" {
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "mentor role required"})
		return
	}

	switch r.Method {
	case http.MethodPut:
		var req setAvailabilityRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid json body"})
			return
		}
		slots, err := h.svc.SetAvailability(r.Context(), caller.UserID, req.Slots)
		if err != nil {
			writeError(w, h.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, availabilityResponse{Slots: slots})
	case http.MethodGet:
		slots, err := h.svc.GetAvailability(r.Context(), caller.UserID)
		if err != nil {
			writeError(w, h.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, availabilityResponse{Slots: slots})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

type publicSlotsResponse struct {
	Date  string   `json:"date"`
	Slots []string `json:"slots"`
}

// PublicSlots lists the bookable start times for a mentor on a given date.
// Path: /api/v1/public/mentors/{mentorId}/slots?date=YYYY-MM-DD
func (h *AvailabilityHandler) PublicSlots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/public/mentors/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] != "slots" {
		http.NotFound(w, r)
		return
	}
	mentorID := parts[0]

	date := strings.TrimSpace(r.URL.Query().Get("date"))
	if date == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "date is required", Field: "date"})
		return
	}

	slots, err := h.svc.AvailableSlots(r.Context(), mentorID, date)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, publicSlotsResponse{Date: date, Slots: slots})
}
