package model

import "time"

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusScheduled BookingStatus = "scheduled"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusNoShow    BookingStatus = "no-show"
)

// BlockingStatuses are the statuses that occupy a mentor's calendar. A pending
// booking reserves its slot the moment it is created; the same set gates both
// slot generation and conflict detection.
var BlockingStatuses = []BookingStatus{BookingStatusPending, BookingStatusScheduled}

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusPending, BookingStatusScheduled, BookingStatusCompleted,
		BookingStatusCancelled, BookingStatusNoShow:
		return true
	}
	return false
}

func (s BookingStatus) Terminal() bool {
	switch s {
	case BookingStatusCompleted, BookingStatusCancelled, BookingStatusNoShow:
		return true
	}
	return false
}

func (s BookingStatus) Blocking() bool {
	return s == BookingStatusPending || s == BookingStatusScheduled
}

type Notes struct {
	MentorNotes string `json:"mentorNotes"`
	MenteeNotes string `json:"menteeNotes"`
	SharedNotes string `json:"sharedNotes"`
}

type Feedback struct {
	Rating      int       `json:"rating"`
	Comment     string    `json:"comment"`
	SubmittedAt time.Time `json:"submittedAt"`
}

type Booking struct {
	ID                   string        `json:"id"`
	MentorID             string        `json:"mentorId"`
	MenteeID             string        `json:"menteeId"`
	ScheduledAt          time.Time     `json:"scheduledAt"`
	DurationMinutes      int           `json:"durationMinutes"`
	Status               BookingStatus `json:"status"`
	Topic                string        `json:"topic"`
	Notes                Notes         `json:"notes"`
	Feedback             *Feedback     `json:"feedback,omitempty"`
	MeetingLink          string        `json:"meetingLink,omitempty"`
	ExternalMeetingID    string        `json:"externalMeetingId,omitempty"`
	PriceCents           int64         `json:"price"`
	MentorAvailabilityID string        `json:"mentorAvailabilityId,omitempty"`
	CancelReason         string        `json:"cancelReason,omitempty"`
	CancelledAt          *time.Time    `json:"cancelledAt,omitempty"`
	CreatedAt            time.Time     `json:"createdAt"`
	UpdatedAt            time.Time     `json:"updatedAt"`
}

// End is the exclusive end of the booked interval.
func (b *Booking) End() time.Time {
	return b.ScheduledAt.Add(time.Duration(b.DurationMinutes) * time.Minute)
}
