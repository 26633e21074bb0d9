package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ImadGanwa/AcademyAi-sub003/internal/meeting"
	"github.com/ImadGanwa/AcademyAi-sub003/internal/model"
	"github.com/ImadGanwa/AcademyAi-sub003/internal/schedule"
)

const (
	// MinDurationMinutes is the shortest bookable session.
	MinDurationMinutes = 15
	// CancelLeadTime is how far ahead of the start a scheduled booking can
	// still be cancelled.
	CancelLeadTime = 24 * time.Hour
	// conflictQueryPadding bounds the conflict query window around the
	// candidate interval without relying on exact interval indexing.
	conflictQueryPadding = 2 * time.Hour

	provisionTimeout = 10 * time.Second
)

// AvailabilityStore persists a mentor's declared windows wholesale.
type AvailabilityStore interface {
	Replace(ctx context.Context, mentorID string, slots []model.AvailabilitySlot) error
	Get(ctx context.Context, mentorID string) ([]model.AvailabilitySlot, error)
}

// BookingStore persists bookings. Insert must enforce non-overlap for
// blocking statuses atomically and return ErrSlotTaken (wrapped is fine) when
// the interval is already held. Get returns a *NotFoundError when no such
// booking exists. The transition methods are compare-and-swap: they return
// false, without error, when the booking was not in the expected current
// status.
type BookingStore interface {
	Insert(ctx context.Context, b *model.Booking) error
	Get(ctx context.Context, id string) (model.Booking, error)
	ListBlockingBetween(ctx context.Context, mentorID string, from, to time.Time, excludeID string) ([]model.Booking, error)
	ListForUser(ctx context.Context, userID string, limit int) ([]model.Booking, error)
	Confirm(ctx context.Context, id, meetingLink, externalMeetingID string) (bool, error)
	Cancel(ctx context.Context, id string, from model.BookingStatus, reason string) (bool, error)
	Complete(ctx context.Context, id string) (bool, error)
	MarkNoShow(ctx context.Context, id string) (bool, error)
	SetFeedback(ctx context.Context, id string, fb model.Feedback) (bool, error)
	UpdateNotes(ctx context.Context, id string, notes model.Notes) error
}

// ProfileStore is the local read model of user profiles.
type ProfileStore interface {
	Get(ctx context.Context, userID string) (model.Profile, bool, error)
	IncrementSessions(ctx context.Context, mentorID string) error
	RecomputeRating(ctx context.Context, mentorID string) error
}

// Notifier delivers booking events to interested parties. Fire-and-forget:
// implementations log failures and never report them back.
type Notifier interface {
	BookingEvent(ctx context.Context, kind string, b model.Booking)
}

// Identity is the caller as asserted by the upstream auth gate.
type Identity struct {
	UserID string
	Role   string // "mentor", "mentee" or "admin"
}

func (id Identity) Admin() bool { return id.Role == "admin" }

type Service struct {
	availability AvailabilityStore
	bookings     BookingStore
	profiles     ProfileStore
	provisioner  meeting.Provisioner
	notifier     Notifier
	logger       *slog.Logger
	granularity  time.Duration
	clock        func() time.Time
}

func NewService(
	availability AvailabilityStore,
	bookings BookingStore,
	profiles ProfileStore,
	provisioner meeting.Provisioner,
	notifier Notifier,
	logger *slog.Logger,
) *Service {
	return &Service{
		availability: availability,
		bookings:     bookings,
		profiles:     profiles,
		provisioner:  provisioner,
		notifier:     notifier,
		logger:       logger,
		granularity:  schedule.DefaultGranularity,
		clock:        time.Now,
	}
}

// SetAvailability validates and normalizes the submitted set and replaces the
// mentor's availability wholesale. Either the whole set is accepted or none
// of it.
func (s *Service) SetAvailability(ctx context.Context, mentorID string, input []model.AvailabilitySlot) ([]model.AvailabilitySlot, error) {
	slots, warnings, err := schedule.NormalizeSlots(input)
	if err != nil {
		var slotErr *schedule.SlotError
		if errors.As(err, &slotErr) {
			return nil, &ValidationError{
				Field:   fmt.Sprintf("slots[%d].%s", slotErr.Index, slotErr.Field),
				Message: slotErr.Reason,
			}
		}
		return nil, err
	}
	for _, w := range warnings {
		s.logger.Warn("availability week key corrected", "mentor_id", mentorID, "detail", w)
	}
	if err := s.availability.Replace(ctx, mentorID, slots); err != nil {
		return nil, err
	}
	return slots, nil
}

func (s *Service) GetAvailability(ctx context.Context, mentorID string) ([]model.AvailabilitySlot, error) {
	return s.availability.Get(ctx, mentorID)
}

// AvailableSlots returns the bookable HH:MM start times for a mentor on one
// calendar date: the declared windows for that date minus everything held by
// a blocking booking. An empty day is an empty list, not an error.
func (s *Service) AvailableSlots(ctx context.Context, mentorID string, date string) ([]string, error) {
	day, err := schedule.ParseDate(date)
	if err != nil {
		return nil, &ValidationError{Field: "date", Message: err.Error()}
	}

	slots, err := s.availability.Get(ctx, mentorID)
	if err != nil {
		return nil, err
	}

	dayStart := day
	dayEnd := day.AddDate(0, 0, 1)
	active, err := s.bookings.ListBlockingBetween(ctx, mentorID, dayStart, dayEnd, "")
	if err != nil {
		return nil, err
	}
	busy := make([]schedule.Interval, 0, len(active))
	for _, b := range active {
		busy = append(busy, schedule.Interval{Start: b.ScheduledAt, End: b.End()})
	}

	out := schedule.GenerateSlots(slots, day, s.granularity, busy)
	if out == nil {
		out = []string{}
	}
	return out, nil
}

// HasConflict reports whether the candidate interval overlaps any blocking
// booking for the mentor. excludeID skips one booking, for reschedule checks.
func (s *Service) HasConflict(ctx context.Context, mentorID string, start time.Time, durationMinutes int, excludeID string) (bool, error) {
	end := start.Add(time.Duration(durationMinutes) * time.Minute)
	nearby, err := s.bookings.ListBlockingBetween(ctx, mentorID,
		start.Add(-conflictQueryPadding), end.Add(conflictQueryPadding), excludeID)
	if err != nil {
		return false, err
	}
	for _, b := range nearby {
		if schedule.Overlaps(start, end, b.ScheduledAt, b.End()) {
			return true, nil
		}
	}
	return false, nil
}

// CreateInput is a booking request as received on the wire.
type CreateInput struct {
	MentorID  string
	MenteeID  string
	Date      string
	StartTime string
	EndTime   string
	Topic     string
	Message   string
}

// Create validates the request, prices it against the mentor's hourly rate,
// and inserts the booking in pending status. The storage-level overlap
// constraint is the authoritative gate: of two concurrent requests for
// overlapping intervals exactly one insert succeeds.
func (s *Service) Create(ctx context.Context, in CreateInput) (model.Booking, error) {
	if in.MentorID == "" {
		return model.Booking{}, validationf("mentorId", "is required")
	}
	if in.Topic == "" {
		return model.Booking{}, validationf("topic", "is required")
	}
	day, err := schedule.ParseDate(in.Date)
	if err != nil {
		return model.Booking{}, &ValidationError{Field: "date", Message: err.Error()}
	}
	if !schedule.ValidTime(in.StartTime) {
		return model.Booking{}, validationf("startTime", "%q is not a valid HH:MM time", in.StartTime)
	}
	if !schedule.ValidTime(in.EndTime) {
		return model.Booking{}, validationf("endTime", "%q is not a valid HH:MM time", in.EndTime)
	}
	if in.StartTime >= in.EndTime {
		return model.Booking{}, validationf("startTime", "%s must be before endTime %s", in.StartTime, in.EndTime)
	}

	start := schedule.CombineDateTime(day, in.StartTime)
	end := schedule.CombineDateTime(day, in.EndTime)
	durationMinutes := int(end.Sub(start) / time.Minute)
	if durationMinutes < MinDurationMinutes {
		return model.Booking{}, validationf("endTime", "session must be at least %d minutes", MinDurationMinutes)
	}
	if !start.After(s.clock()) {
		return model.Booking{}, validationf("startTime", "session start must be in the future")
	}

	mentor, ok, err := s.profiles.Get(ctx, in.MentorID)
	if err != nil {
		return model.Booking{}, err
	}
	if !ok {
		return model.Booking{}, &NotFoundError{Resource: "mentor"}
	}
	if _, ok, err = s.profiles.Get(ctx, in.MenteeID); err != nil {
		return model.Booking{}, err
	} else if !ok {
		return model.Booking{}, &NotFoundError{Resource: "mentee"}
	}

	availabilityID, err := s.containingWindow(ctx, in.MentorID, day, in.StartTime, in.EndTime)
	if err != nil {
		return model.Booking{}, err
	}

	conflict, err := s.HasConflict(ctx, in.MentorID, start, durationMinutes, "")
	if err != nil {
		return model.Booking{}, err
	}
	if conflict {
		return model.Booking{}, &ConflictError{Message: "requested time overlaps an existing booking"}
	}

	now := s.clock().UTC()
	b := model.Booking{
		ID:                   uuid.NewString(),
		MentorID:             in.MentorID,
		MenteeID:             in.MenteeID,
		ScheduledAt:          start,
		DurationMinutes:      durationMinutes,
		Status:               model.BookingStatusPending,
		Topic:                in.Topic,
		Notes:                model.Notes{MenteeNotes: in.Message},
		PriceCents:           mentor.HourlyRateCents * int64(durationMinutes) / 60,
		MentorAvailabilityID: availabilityID,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	if err := s.bookings.Insert(ctx, &b); err != nil {
		if errors.Is(err, ErrSlotTaken) {
			return model.Booking{}, &ConflictError{Message: "requested time overlaps an existing booking"}
		}
		return model.Booking{}, err
	}

	s.notifier.BookingEvent(ctx, "booking.created.v1", b)
	return b, nil
}

// containingWindow finds the declared window the requested interval fits in
// and returns its id for the booking's back-reference.
func (s *Service) containingWindow(ctx context.Context, mentorID string, day time.Time, startTime, endTime string) (string, error) {
	slots, err := s.availability.Get(ctx, mentorID)
	if err != nil {
		return "", err
	}
	for _, win := range schedule.WindowsForDate(slots, day) {
		if win.StartTime <= startTime && endTime <= win.EndTime {
			return win.ID, nil
		}
	}
	return "", &ConflictError{Message: "requested time is outside the mentor's availability"}
}

// Confirm drives pending -> scheduled. Mentor only. A meeting is provisioned
// exactly once: when no link exists yet, the collaborator is called
// synchronously and the status change commits together with the link. On
// provisioning failure the booking stays pending.
func (s *Service) Confirm(ctx context.Context, bookingID string, caller Identity) (model.Booking, error) {
	b, err := s.getFor(ctx, bookingID, caller)
	if err != nil {
		return model.Booking{}, err
	}
	if caller.UserID != b.MentorID {
		return model.Booking{}, &NotFoundError{Resource: "booking"}
	}
	if b.Status != model.BookingStatusPending {
		return model.Booking{}, &StateTransitionError{Current: b.Status, Requested: model.BookingStatusScheduled}
	}

	link := b.MeetingLink
	externalID := b.ExternalMeetingID
	provisioned := false
	if link == "" {
		mentor, _, err := s.profiles.Get(ctx, b.MentorID)
		if err != nil {
			return model.Booking{}, err
		}
		mentee, _, err := s.profiles.Get(ctx, b.MenteeID)
		if err != nil {
			return model.Booking{}, err
		}

		provCtx, cancel := context.WithTimeout(ctx, provisionTimeout)
		m, err := s.provisioner.Create(provCtx, meeting.Request{
			Topic:           b.Topic,
			Start:           b.ScheduledAt,
			DurationMinutes: b.DurationMinutes,
			MentorEmail:     mentor.Email,
			MenteeEmail:     mentee.Email,
		})
		cancel()
		if err != nil {
			return model.Booking{}, &ExternalDependencyError{Dependency: "meeting provisioning", Err: err}
		}
		link = m.JoinURL
		externalID = m.ID
		provisioned = true
	}

	ok, err := s.bookings.Confirm(ctx, b.ID, link, externalID)
	if err != nil {
		return model.Booking{}, err
	}
	if !ok {
		// Lost a race. Release the room we just created so it isn't orphaned.
		if provisioned {
			if delErr := s.provisioner.Delete(ctx, externalID); delErr != nil {
				s.logger.Warn("orphaned meeting cleanup failed", "booking_id", b.ID, "external_meeting_id", externalID, "err", delErr)
			}
		}
		return model.Booking{}, s.transitionLost(ctx, b.ID, model.BookingStatusScheduled)
	}

	confirmed, err := s.bookings.Get(ctx, b.ID)
	if err != nil {
		return model.Booking{}, err
	}
	s.notifier.BookingEvent(ctx, "booking.confirmed.v1", confirmed)
	return confirmed, nil
}

// Cancel drives pending|scheduled -> cancelled. A pending booking can be
// cancelled by either party at any time; a scheduled one only while at least
// CancelLeadTime remains before the start.
func (s *Service) Cancel(ctx context.Context, bookingID string, caller Identity, reason string) (model.Booking, error) {
	b, err := s.getFor(ctx, bookingID, caller)
	if err != nil {
		return model.Booking{}, err
	}
	if reason == "" {
		return model.Booking{}, validationf("reason", "is required")
	}

	switch b.Status {
	case model.BookingStatusPending:
		// Cancellable unconditionally.
	case model.BookingStatusScheduled:
		remaining := b.ScheduledAt.Sub(s.clock())
		if remaining < CancelLeadTime {
			return model.Booking{}, validationf("", "scheduled sessions can only be cancelled %v in advance; %s remain",
				CancelLeadTime, remaining.Round(time.Minute))
		}
	default:
		return model.Booking{}, &StateTransitionError{Current: b.Status, Requested: model.BookingStatusCancelled}
	}

	ok, err := s.bookings.Cancel(ctx, b.ID, b.Status, reason)
	if err != nil {
		return model.Booking{}, err
	}
	if !ok {
		return model.Booking{}, s.transitionLost(ctx, b.ID, model.BookingStatusCancelled)
	}

	cancelled, err := s.bookings.Get(ctx, b.ID)
	if err != nil {
		return model.Booking{}, err
	}
	s.notifier.BookingEvent(ctx, "booking.cancelled.v1", cancelled)
	return cancelled, nil
}

// Complete drives scheduled -> completed. Mentor only. Optionally updates
// notes in the same call and bumps the mentor's session counter.
func (s *Service) Complete(ctx context.Context, bookingID string, caller Identity, notes *NotesInput) (model.Booking, error) {
	b, err := s.getFor(ctx, bookingID, caller)
	if err != nil {
		return model.Booking{}, err
	}
	if caller.UserID != b.MentorID {
		return model.Booking{}, &NotFoundError{Resource: "booking"}
	}
	if b.Status != model.BookingStatusScheduled {
		return model.Booking{}, &StateTransitionError{Current: b.Status, Requested: model.BookingStatusCompleted}
	}

	ok, err := s.bookings.Complete(ctx, b.ID)
	if err != nil {
		return model.Booking{}, err
	}
	if !ok {
		return model.Booking{}, s.transitionLost(ctx, b.ID, model.BookingStatusCompleted)
	}

	if notes != nil {
		if _, err := s.UpdateNotes(ctx, b.ID, caller, *notes); err != nil {
			s.logger.Warn("completion notes update failed", "booking_id", b.ID, "err", err)
		}
	}
	if err := s.profiles.IncrementSessions(ctx, b.MentorID); err != nil {
		s.logger.Error("session counter increment failed", "mentor_id", b.MentorID, "err", err)
	}

	completed, err := s.bookings.Get(ctx, b.ID)
	if err != nil {
		return model.Booking{}, err
	}
	s.notifier.BookingEvent(ctx, "booking.completed.v1", completed)
	return completed, nil
}

// MarkNoShow drives scheduled -> no-show. Administrative only: terminal like
// completed for scheduling purposes, distinct for reporting.
func (s *Service) MarkNoShow(ctx context.Context, bookingID string, caller Identity) (model.Booking, error) {
	if !caller.Admin() {
		return model.Booking{}, &NotFoundError{Resource: "booking"}
	}
	b, err := s.bookings.Get(ctx, bookingID)
	if err != nil {
		return model.Booking{}, err
	}
	if b.Status != model.BookingStatusScheduled {
		return model.Booking{}, &StateTransitionError{Current: b.Status, Requested: model.BookingStatusNoShow}
	}

	ok, err := s.bookings.MarkNoShow(ctx, b.ID)
	if err != nil {
		return model.Booking{}, err
	}
	if !ok {
		return model.Booking{}, s.transitionLost(ctx, b.ID, model.BookingStatusNoShow)
	}
	return s.bookings.Get(ctx, b.ID)
}

// AttachFeedback lets the mentee rate a completed booking exactly once and
// folds the rating into the mentor's aggregate.
func (s *Service) AttachFeedback(ctx context.Context, bookingID string, caller Identity, rating int, comment string) (model.Booking, error) {
	b, err := s.getFor(ctx, bookingID, caller)
	if err != nil {
		return model.Booking{}, err
	}
	if caller.UserID != b.MenteeID {
		return model.Booking{}, &NotFoundError{Resource: "booking"}
	}
	if b.Status != model.BookingStatusCompleted {
		return model.Booking{}, validationf("", "feedback can only be left on a completed session (status is %s)", b.Status)
	}
	if rating < 1 || rating > 5 {
		return model.Booking{}, validationf("rating", "must be between 1 and 5")
	}

	ok, err := s.bookings.SetFeedback(ctx, b.ID, model.Feedback{
		Rating:      rating,
		Comment:     comment,
		SubmittedAt: s.clock().UTC(),
	})
	if err != nil {
		return model.Booking{}, err
	}
	if !ok {
		return model.Booking{}, validationf("", "feedback has already been submitted for this session")
	}

	if err := s.profiles.RecomputeRating(ctx, b.MentorID); err != nil {
		s.logger.Error("rating aggregate recompute failed", "mentor_id", b.MentorID, "err", err)
	}

	rated, err := s.bookings.Get(ctx, b.ID)
	if err != nil {
		return model.Booking{}, err
	}
	s.notifier.BookingEvent(ctx, "booking.feedback.v1", rated)
	return rated, nil
}

// NotesInput carries the note fields the caller wants to change; nil fields
// are left untouched.
type NotesInput struct {
	MentorNotes *string
	MenteeNotes *string
	SharedNotes *string
}

// UpdateNotes sets the caller's own notes and/or the shared notes on a
// booking. Mentors may not touch mentee notes and vice versa.
func (s *Service) UpdateNotes(ctx context.Context, bookingID string, caller Identity, in NotesInput) (model.Booking, error) {
	b, err := s.getFor(ctx, bookingID, caller)
	if err != nil {
		return model.Booking{}, err
	}
	if b.Status == model.BookingStatusCancelled || b.Status == model.BookingStatusNoShow {
		return model.Booking{}, validationf("", "notes cannot be changed on a %s booking", b.Status)
	}
	if in.MentorNotes != nil && caller.UserID != b.MentorID {
		return model.Booking{}, validationf("mentorNotes", "only the mentor can set mentor notes")
	}
	if in.MenteeNotes != nil && caller.UserID != b.MenteeID {
		return model.Booking{}, validationf("menteeNotes", "only the mentee can set mentee notes")
	}

	notes := b.Notes
	if in.MentorNotes != nil {
		notes.MentorNotes = *in.MentorNotes
	}
	if in.MenteeNotes != nil {
		notes.MenteeNotes = *in.MenteeNotes
	}
	if in.SharedNotes != nil {
		notes.SharedNotes = *in.SharedNotes
	}
	if err := s.bookings.UpdateNotes(ctx, b.ID, notes); err != nil {
		return model.Booking{}, err
	}
	return s.bookings.Get(ctx, b.ID)
}

// ListBookings returns the caller's bookings, as mentor or mentee.
func (s *Service) ListBookings(ctx context.Context, caller Identity, limit int) ([]model.Booking, error) {
	return s.bookings.ListForUser(ctx, caller.UserID, limit)
}

// GetBooking returns one booking the caller is a party to.
func (s *Service) GetBooking(ctx context.Context, bookingID string, caller Identity) (model.Booking, error) {
	return s.getFor(ctx, bookingID, caller)
}

// getFor loads a booking and hides it from callers who are not a party to it.
func (s *Service) getFor(ctx context.Context, bookingID string, caller Identity) (model.Booking, error) {
	b, err := s.bookings.Get(ctx, bookingID)
	if err != nil {
		return model.Booking{}, err
	}
	if caller.UserID != b.MentorID && caller.UserID != b.MenteeID && !caller.Admin() {
		return model.Booking{}, &NotFoundError{Resource: "booking"}
	}
	return b, nil
}

// transitionLost re-reads the booking after a compare-and-swap returned no
// rows, so the error names the status the booking actually has now.
func (s *Service) transitionLost(ctx context.Context, bookingID string, requested model.BookingStatus) error {
	current, err := s.bookings.Get(ctx, bookingID)
	if err != nil {
		return err
	}
	return &StateTransitionError{Current: current.Status, Requested: requested}
}
