package domain

// ExportRow is one flat line of a trip's itinerary export: one planned
// activity per row, identified by day number and order index. Empty days
// contribute one row with empty activity fields so the export still shows
// the full day range.
type ExportRow struct {
	DayNumber     int     `json:"day_number"`
	OrderIndex    int     `json:"order_index,omitempty"`
	ActivityName  string  `json:"activity_name,omitempty"`
	Category      string  `json:"category,omitempty"`
	DurationHours float64 `json:"duration_hours,omitempty"`
	PriceLevel    int     `json:"price_level,omitempty"`
}
