package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ImadGanwa/AcademyAi-sub003/internal/booking"
	"github.com/ImadGanwa/AcademyAi-sub003/internal/db"
	"github.com/ImadGanwa/AcademyAi-sub003/internal/model"
)

const bookingColumns = `
	id::text, mentor_id::text, mentee_id::text, scheduled_at, duration_minutes,
	status, topic, notes_mentor, notes_mentee, notes_shared,
	feedback_rating, COALESCE(feedback_comment, ''), feedback_submitted_at,
	COALESCE(meeting_link, ''), COALESCE(external_meeting_id, ''),
	price_cents, COALESCE(mentor_availability_id, ''),
	COALESCE(cancel_reason, ''), cancelled_at, created_at, updated_at`

type BookingRepository struct {
	pool *db.Pool
}

func NewBookingRepository(pool *db.Pool) *BookingRepository {
	return &BookingRepository{pool: pool}
}

// Insert creates a pending booking. The bookings_no_overlap exclusion
// constraint is the authoritative conflict gate: concurrent inserts for
// overlapping intervals cannot both commit, and the loser surfaces as
// booking.ErrSlotTaken.
func (r *BookingRepository) Insert(ctx context.Context, b *model.Booking) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO bookings
			(id, mentor_id, mentee_id, scheduled_at, duration_minutes, status, topic,
			 notes_mentor, notes_mentee, notes_shared, price_cents, mentor_availability_id,
			 created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NULLIF($12, ''), $13, $14)
	`, b.ID, b.MentorID, b.MenteeID, b.ScheduledAt, b.DurationMinutes, b.Status, b.Topic,
		b.Notes.MentorNotes, b.Notes.MenteeNotes, b.Notes.SharedNotes, b.PriceCents,
		b.MentorAvailabilityID, b.CreatedAt, b.UpdatedAt)
	if err != nil {
		if IsExclusionViolation(err) {
			return fmt.Errorf("%w: mentor %s at %s", booking.ErrSlotTaken, b.MentorID, b.ScheduledAt.Format(time.RFC3339))
		}
		return err
	}
	return nil
}

func (r *BookingRepository) Get(ctx context.Context, id string) (model.Booking, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE id = $1
	`, id)
	b, err := scanBooking(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Booking{}, &booking.NotFoundError{Resource: "booking"}
	}
	return b, err
}

// ListBlockingBetween returns the mentor's pending and scheduled bookings
// whose interval intersects [from, to), optionally skipping one booking id.
func (r *BookingRepository) ListBlockingBetween(ctx context.Context, mentorID string, from, to time.Time, excludeID string) ([]model.Booking, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE mentor_id = $1
			AND status IN ('pending', 'scheduled')
			AND scheduled_at < $3
			AND scheduled_at + make_interval(mins => duration_minutes) > $2
			AND ($4 = '' OR id::text <> $4)
		ORDER BY scheduled_at ASC
	`, mentorID, from, to, excludeID)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

func (r *BookingRepository) ListForUser(ctx context.Context, userID string, limit int) ([]model.Booking, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE mentor_id = $1 OR mentee_id = $1
		ORDER BY scheduled_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

// Confirm commits pending -> scheduled together with the meeting link in one
// conditional update. Zero rows means the booking was no longer pending.
func (r *BookingRepository) Confirm(ctx context.Context, id, meetingLink, externalMeetingID string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE bookings
		SET status = 'scheduled',
			meeting_link = $2,
			external_meeting_id = $3,
			updated_at = now()
		WHERE id = $1 AND status = 'pending'
	`, id, meetingLink, externalMeetingID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Cancel commits a cancellation keyed on the status the caller observed.
func (r *BookingRepository) Cancel(ctx context.Context, id string, from model.BookingStatus, reason string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE bookings
		SET status = 'cancelled',
			cancel_reason = $3,
			cancelled_at = now(),
			updated_at = now()
		WHERE id = $1 AND status = $2
	`, id, from, reason)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *BookingRepository) Complete(ctx context.Context, id string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE bookings
		SET status = 'completed',
			updated_at = now()
		WHERE id = $1 AND status = 'scheduled'
	`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *BookingRepository) MarkNoShow(ctx context.Context, id string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE bookings
		SET status = 'no-show',
			updated_at = now()
		WHERE id = $1 AND status = 'scheduled'
	`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// SetFeedback attaches feedback only if none exists yet, so two concurrent
// submissions cannot both win.
func (r *BookingRepository) SetFeedback(ctx context.Context, id string, fb model.Feedback) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE bookings
		SET feedback_rating = $2,
			feedback_comment = $3,
			feedback_submitted_at = $4,
			updated_at = now()
		WHERE id = $1 AND feedback_rating IS NULL
	`, id, fb.Rating, fb.Comment, fb.SubmittedAt)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *BookingRepository) UpdateNotes(ctx context.Context, id string, notes model.Notes) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE bookings
		SET notes_mentor = $2,
			notes_mentee = $3,
			notes_shared = $4,
			updated_at = now()
		WHERE id = $1
	`, id, notes.MentorNotes, notes.MenteeNotes, notes.SharedNotes)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return &booking.NotFoundError{Resource: "booking"}
	}
	return nil
}

// IsExclusionViolation reports whether err is a Postgres exclusion constraint
// violation (the overlap gate firing).
func IsExclusionViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23P01"
}

func scanBooking(row pgx.Row) (model.Booking, error) {
	var b model.Booking
	var rating *int
	var comment string
	var submittedAt *time.Time
	err := row.Scan(
		&b.ID,
		&b.MentorID,
		&b.MenteeID,
		&b.ScheduledAt,
		&b.DurationMinutes,
		&b.Status,
		&b.Topic,
		&b.Notes.MentorNotes,
		&b.Notes.MenteeNotes,
		&b.Notes.SharedNotes,
		&rating,
		&comment,
		&submittedAt,
		&b.MeetingLink,
		&b.ExternalMeetingID,
		&b.PriceCents,
		&b.MentorAvailabilityID,
		&b.CancelReason,
		&b.CancelledAt,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return model.Booking{}, err
	}
	if rating != nil && submittedAt != nil {
		b.Feedback = &model.Feedback{Rating: *rating, Comment: comment, SubmittedAt: *submittedAt}
	}
	return b, nil
}

func collectBookings(rows pgx.Rows) ([]model.Booking, error) {
	defer rows.Close()
	var out []model.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}
