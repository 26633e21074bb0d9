package outbox

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/ImadGanwa/AcademyAi-sub003/internal/db"
	"github.com/ImadGanwa/AcademyAi-sub003/internal/model"
)

// Notifier records booking lifecycle events in the outbox for asynchronous
// delivery. A delivery failure never fails the booking operation that
// triggered it; it is logged and the event stays unpublished until the
// publisher retries.
type Notifier struct {
	pool   *db.Pool
	repo   *Repository
	logger *slog.Logger
}

func NewNotifier(pool *db.Pool, repo *Repository, logger *slog.Logger) *Notifier {
	return &Notifier{pool: pool, repo: repo, logger: logger}
}

type bookingEventPayload struct {
	BookingID   string    `json:"bookingId"`
	MentorID    string    `json:"mentorId"`
	MenteeID    string    `json:"menteeId"`
	Status      string    `json:"status"`
	ScheduledAt time.Time `json:"scheduledAt"`
	DurationMin int       `json:"durationMinutes"`
	Topic       string    `json:"topic,omitempty"`
	OccurredAt  time.Time `json:"occurredAt"`
}

func (n *Notifier) BookingEvent(ctx context.Context, kind string, b model.Booking) {
	payload, err := json.Marshal(bookingEventPayload{
		BookingID:   b.ID,
		MentorID:    b.MentorID,
		MenteeID:    b.MenteeID,
		Status:      string(b.Status),
		ScheduledAt: b.ScheduledAt,
		DurationMin: b.DurationMinutes,
		Topic:       b.Topic,
		OccurredAt:  time.Now().UTC(),
	})
	if err != nil {
		n.logger.Error("notification payload marshal failed", "event", kind, "booking_id", b.ID, "err", err)
		return
	}

	tx, err := n.pool.Begin(ctx)
	if err != nil {
		n.logger.Error("notification enqueue failed", "event", kind, "booking_id", b.ID, "err", err)
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	evt := Event{
		AggregateType: "booking",
		AggregateID:   b.ID,
		EventType:     kind,
		Payload:       payload,
	}
	if err := n.repo.Insert(ctx, tx, evt); err != nil {
		n.logger.Error("notification enqueue failed", "event", kind, "booking_id", b.ID, "err", err)
		return
	}
	if err := tx.Commit(ctx); err != nil {
		n.logger.Error("notification enqueue failed", "event", kind, "booking_id", b.ID, "err", err)
	}
}
