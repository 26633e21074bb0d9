package model

import "time"

// Profile is the local read model of a user profile, kept in sync from
// profile.updated.v1 events. The booking service never writes identity data;
// it only consumes what it needs for pricing and notifications.
type Profile struct {
	UserID            string    `json:"userId"`
	Email             string    `json:"email"`
	DisplayName       string    `json:"displayName"`
	Role              string    `json:"role"` // "mentor" or "mentee"
	HourlyRateCents   int64     `json:"hourlyRateCents"`
	SessionsCompleted int       `json:"sessionsCompleted"`
	AvgRating         float64   `json:"avgRating"`
	ReviewCount       int       `json:"reviewCount"`
	UpdatedAt         time.Time `json:"updatedAt"`
}
