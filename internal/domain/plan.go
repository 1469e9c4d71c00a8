package domain

import (
	"time"

	"github.com/google/uuid"
)

// DayPlan is the persisted list of activities assigned to one day of a trip.
// Day numbers are 1-based and contiguous from 1 to the trip's DaysCount.
// Day plans are created and destroyed only as part of a full-trip
// (re)generation transaction, never individually.
type DayPlan struct {
	ID         uuid.UUID         `json:"id"`
	TripID     uuid.UUID         `json:"-"`
	DayNumber  int               `json:"day_number"`
	Activities []PlannedActivity `json:"activities"`
	CreatedAt  time.Time         `json:"created_at"`
}

// PlannedActivity is one slot in a day plan. OrderIndex is 1-based and unique
// within its day plan; regeneration always deletes and recreates the full
// set, so rows are never renumbered in place.
type PlannedActivity struct {
	ID         uuid.UUID `json:"id"`
	DayPlanID  uuid.UUID `json:"-"`
	OrderIndex int       `json:"order_index"`
	Activity   Activity  `json:"activity"`
}

// ItineraryPlan is the planner's output: one ordered activity list per day
// (index 0 is day 1) plus an optional non-fatal warning. Days may be empty
// when the pool cannot fill them.
type ItineraryPlan struct {
	Days    [][]Activity
	Warning string
}

// EmptyPlan returns a plan with daysCount empty days and the given warning.
// Used when a destination has no catalog activities at all, so the planner
// itself never has to be invoked.
func EmptyPlan(daysCount int, warning string) ItineraryPlan {
	return ItineraryPlan{Days: make([][]Activity, daysCount), Warning: warning}
}
