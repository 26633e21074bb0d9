package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/ImadGanwa/AcademyAi-sub003/internal/booking"
	"github.com/ImadGanwa/AcademyAi-sub003/internal/model"
)

type BookingHandler struct {
	svc    *booking.Service
	logger *slog.Logger
}

func NewBookingHandler(svc *booking.Service, logger *slog.Logger) *BookingHandler {
	return &BookingHandler{svc: svc, logger: logger}
}

type createBookingRequest struct {
	MentorID  string `json:"mentorId"`
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Topic     string `json:"topic"`
	Message   string `json:"message"`
}

type cancelBookingRequest struct {
	Reason string `json:"reason"`
}

type feedbackRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

type notesRequest struct {
	MentorNotes *string `json:"mentorNotes"`
	MenteeNotes *string `json:"menteeNotes"`
	SharedNotes *string `json:"sharedNotes"`
}

type completeRequest struct {
	Notes *notesRequest `json:"notes"`
}

type listBookingsResponse struct {
	Bookings []model.Booking `json:"bookings"`
}

// Collection serves /api/v1/bookings: POST creates, GET lists the caller's
// bookings.
func (h *BookingHandler) Collection(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodPost:
		var req createBookingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid json body"})
			return
		}
		b, err := h.svc.Create(r.Context(), booking.CreateInput{
			MentorID:  strings.TrimSpace(req.MentorID),
			MenteeID:  caller.UserID,
			Date:      strings.TrimSpace(req.Date),
			StartTime: strings.TrimSpace(req.StartTime),
			EndTime:   strings.TrimSpace(req.EndTime),
			Topic:     strings.TrimSpace(req.Topic),
			Message:   strings.TrimSpace(req.Message),
		})
		if err != nil {
			writeError(w, h.logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, b)
	case http.MethodGet:
		limit := 50
		if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
			if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 200 {
				limit = n
			}
		}
		items, err := h.svc.ListBookings(r.Context(), caller, limit)
		if err != nil {
			writeError(w, h.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, listBookingsResponse{Bookings: items})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// Item serves /api/v1/bookings/{id} and the lifecycle actions nested under
// it: confirm, cancel, complete, no-show, feedback and notes.
func (h *BookingHandler) Item(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/bookings/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		http.NotFound(w, r)
		return
	}
	id := parts[0]

	if len(parts) == 1 {
		switch r.Method {
		case http.MethodGet:
			b, err := h.svc.GetBooking(r.Context(), id, caller)
			if err != nil {
				writeError(w, h.logger, err)
				return
			}
			writeJSON(w, http.StatusOK, b)
		case http.MethodPatch:
			h.notes(w, r, id, caller)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	if len(parts) != 2 {
		http.NotFound(w, r)
		return
	}
	action := parts[1]

	if action == "notes" {
		if r.Method != http.MethodPatch && r.Method != http.MethodPut {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.notes(w, r, id, caller)
		return
	}

	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var (
		b   model.Booking
		err error
	)
	switch action {
	case "confirm":
		b, err = h.svc.Confirm(r.Context(), id, caller)
	case "cancel":
		var req cancelBookingRequest
		if decodeErr := json.NewDecoder(r.Body).Decode(&req); decodeErr != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid json body"})
			return
		}
		b, err = h.svc.Cancel(r.Context(), id, caller, strings.TrimSpace(req.Reason))
	case "complete":
		var req completeRequest
		if r.ContentLength != 0 {
			if decodeErr := json.NewDecoder(r.Body).Decode(&req); decodeErr != nil {
				writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid json body"})
				return
			}
		}
		var notes *booking.NotesInput
		if req.Notes != nil {
			notes = &booking.NotesInput{
				MentorNotes: req.Notes.MentorNotes,
				MenteeNotes: req.Notes.MenteeNotes,
				SharedNotes: req.Notes.SharedNotes,
			}
		}
		b, err = h.svc.Complete(r.Context(), id, caller, notes)
	case "no-show":
		b, err = h.svc.MarkNoShow(r.Context(), id, caller)
	case "feedback":
		var req feedbackRequest
		if decodeErr := json.NewDecoder(r.Body).Decode(&req); decodeErr != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid json body"})
			return
		}
		b, err = h.svc.AttachFeedback(r.Context(), id, caller, req.Rating, strings.TrimSpace(req.Comment))
	default:
		http.NotFound(w, r)
		return
	}
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *BookingHandler) notes(w http.ResponseWriter, r *http.Request, id string, caller booking.Identity) {
	var req notesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid json body"})
		return
	}
	b, err := h.svc.UpdateNotes(r.Context(), id, caller, booking.NotesInput{
		MentorNotes: req.MentorNotes,
		MenteeNotes: req.MenteeNotes,
		SharedNotes: req.SharedNotes,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}
