package storage

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/ImadGanwa/AcademyAi-sub003/internal/db"
	"github.com/ImadGanwa/AcademyAi-sub003/internal/model"
)

type ProfileRepository struct {
	pool *db.Pool
}

func NewProfileRepository(pool *db.Pool) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

func (r *ProfileRepository) Get(ctx context.Context, userID string) (model.Profile, bool, error) {
	var p model.Profile
	err := r.pool.QueryRow(ctx, `
		SELECT user_id::text, email, display_name, role, hourly_rate_cents,
			sessions_completed, avg_rating, review_count, updated_at
		FROM profiles
		WHERE user_id = $1
	`, userID).Scan(
		&p.UserID,
		&p.Email,
		&p.DisplayName,
		&p.Role,
		&p.HourlyRateCents,
		&p.SessionsCompleted,
		&p.AvgRating,
		&p.ReviewCount,
		&p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Profile{}, false, nil
	}
	if err != nil {
		return model.Profile{}, false, err
	}
	return p, true, nil
}

// Upsert refreshes the read model from a profile.updated.v1 event.
func (r *ProfileRepository) Upsert(ctx context.Context, p model.Profile) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO profiles (user_id, email, display_name, role, hourly_rate_cents, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (user_id) DO UPDATE
		SET email = EXCLUDED.email,
			display_name = EXCLUDED.display_name,
			role = EXCLUDED.role,
			hourly_rate_cents = EXCLUDED.hourly_rate_cents,
			updated_at = now()
	`, p.UserID, p.Email, p.DisplayName, p.Role, p.HourlyRateCents)
	return err
}

func (r *ProfileRepository) IncrementSessions(ctx context.Context, mentorID string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE profiles
		SET sessions_completed = sessions_completed + 1,
			updated_at = now()
		WHERE user_id = $1
	`, mentorID)
	return err
}

// RecomputeRating recalculates the mentor's mean rating and review count from
// all rated bookings, so concurrent feedback submissions converge on the same
// aggregate regardless of ordering.
func (r *ProfileRepository) RecomputeRating(ctx context.Context, mentorID string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE profiles
		SET avg_rating = COALESCE((
				SELECT AVG(feedback_rating)::numeric(3,2)
				FROM bookings
				WHERE mentor_id = $1 AND feedback_rating IS NOT NULL
			), 0),
			review_count = (
				SELECT COUNT(*)
				FROM bookings
				WHERE mentor_id = $1 AND feedback_rating IS NOT NULL
			),
			updated_at = now()
		WHERE user_id = $1
	`, mentorID)
	return err
}
