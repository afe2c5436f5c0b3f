package model

import (
	"time"

	"github.com/google/uuid"
)

// Capacity is a finite-slot resource tied to a scheduled occurrence.
// AvailableUnits is only ever mutated through the conditional statements in
// the capacity repository, so it can never go negative.
type Capacity struct {
	ID             int       `json:"id" db:"id"`
	CapacityID     uuid.UUID `json:"capacity_id" db:"capacity_id"`
	Name           string    `json:"name" db:"name"`
	ScheduledAt    time.Time `json:"scheduled_at" db:"scheduled_at"`
	TotalUnits     int       `json:"total_units" db:"total_units"`
	AvailableUnits int       `json:"available_units" db:"available_units"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// HasStarted reports whether the occurrence date has passed.
func (c *Capacity) HasStarted(now time.Time) bool {
	return c.ScheduledAt.Before(now)
}

// Reservation is the granted claim returned by a successful reserve call.
type Reservation struct {
	CapacityID int       `json:"capacity_id"`
	Units      int       `json:"units"`
	Remaining  int       `json:"remaining"`
	ReservedAt time.Time `json:"reserved_at"`
}
