package domain

import (
	"time"

	"github.com/google/uuid"
)

// Trip represents one traveler's planned visit to a destination.
// A trip is the top-level aggregate; day plans belong to a trip and are only
// ever written as a complete set inside one transaction.
type Trip struct {
	ID            uuid.UUID `json:"id"`
	OwnerID       uuid.UUID `json:"-"`
	Destination   string    `json:"destination"`
	DaysCount     int       `json:"days_count"`
	BudgetCeiling *int      `json:"budget_ceiling,omitempty"` // nil when the traveler set no ceiling
	Interests     string    `json:"interests,omitempty"`      // raw comma-separated string as entered

	// RegenLockUntil is nil when no regeneration is in flight. A future
	// timestamp means some request currently owns regeneration for this trip;
	// a past timestamp counts as unlocked (the holder died or hung).
	RegenLockUntil *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Days is populated when the trip is loaded together with its plan.
	Days []DayPlan `json:"days,omitempty"`
}
