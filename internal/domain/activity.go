// Package domain contains the core data types for the TripWeaver API.
// This package has zero external dependencies beyond uuid and is imported by
// every other internal package (planner, repo, service, handler).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Activity is one bookable thing to do at a destination.
// The planner treats activities as immutable input; only the catalog
// endpoints ever write them. (destination, name) is unique in the catalog.
type Activity struct {
	ID            uuid.UUID `json:"id"`
	Destination   string    `json:"destination"`
	Name          string    `json:"name"`
	Category      string    `json:"category"` // free-form tag: "culture", "nature", ...
	DurationHours float64   `json:"duration_hours"`
	PriceLevel    int       `json:"price_level"` // 1 (cheap) .. 5 (expensive)
	Lat           *float64  `json:"lat,omitempty"`
	Lon           *float64  `json:"lon,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
