package storage

import (
	"context"

	"github.com/ImadGanwa/AcademyAi-sub003/internal/db"
	"github.com/ImadGanwa/AcademyAi-sub003/internal/model"
)

type AvailabilityRepository struct {
	pool *db.Pool
}

func NewAvailabilityRepository(pool *db.Pool) *AvailabilityRepository {
	return &AvailabilityRepository{pool: pool}
}

// Replace swaps the mentor's whole availability set in one transaction.
// A re-submission is last-write-wins; there is no partial update path.
func (r *AvailabilityRepository) Replace(ctx context.Context, mentorID string, slots []model.AvailabilitySlot) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `
		DELETE FROM mentor_availability
		WHERE mentor_id = $1
	`, mentorID); err != nil {
		return err
	}

	for _, slot := range slots {
		weekKey := any(nil)
		if slot.WeekKey != "" {
			weekKey = slot.WeekKey
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO mentor_availability (mentor_id, slot_id, day, start_time, end_time, week_key)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, mentorID, slot.ID, slot.Day, slot.StartTime, slot.EndTime, weekKey); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *AvailabilityRepository) Get(ctx context.Context, mentorID string) ([]model.AvailabilitySlot, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT slot_id, day, start_time, end_time, COALESCE(week_key, '')
		FROM mentor_availability
		WHERE mentor_id = $1
		ORDER BY COALESCE(week_key, ''), day, start_time
	`, mentorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slots []model.AvailabilitySlot
	for rows.Next() {
		var s model.AvailabilitySlot
		if err := rows.Scan(&s.ID, &s.Day, &s.StartTime, &s.EndTime, &s.WeekKey); err != nil {
			return nil, err
		}
		slots = append(slots, s)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return slots, nil
}
