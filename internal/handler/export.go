// Package handler — export.go implements GET /trips/{id}/export.
// Returns the trip's itinerary as a flat table, one row per planned activity.
// Supports content negotiation via ?format=csv (CSV) or default (JSON).
package handler

import (
	"encoding/csv"
	"net/http"
	"strconv"

	"github.com/avelis/tripweaver/backend/internal/domain"
	"github.com/avelis/tripweaver/backend/internal/middleware"
)

// csvHeaders defines the column names written as the first row of any CSV export.
var csvHeaders = []string{
	"day_number", "order_index", "activity_name", "category",
	"duration_hours", "price_level",
}

// ExportTrip handles GET /trips/{id}/export.
// Use ?format=csv to receive CSV; default is JSON.
func (s *Server) ExportTrip(w http.ResponseWriter, r *http.Request) {
	callerID, ok := middleware.UserID(r.Context())
	if !ok {
		respondError(w, r, domain.ErrForbidden)
		return
	}
	id, err := pathID(r)
	if err != nil {
		badRequest(w, "invalid trip id")
		return
	}

	rows, err := s.export.Export(r.Context(), id, callerID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	if r.URL.Query().Get("format") == "csv" {
		writeCSV(w, rows)
		return
	}
	respondJSON(w, http.StatusOK, rows)
}

// writeCSV streams the export rows as text/csv.
func writeCSV(w http.ResponseWriter, rows []domain.ExportRow) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="itinerary.csv"`)

	cw := csv.NewWriter(w)
	//nolint:errcheck — errors surface on the final Flush
	cw.Write(csvHeaders)
	for _, row := range rows {
		//nolint:errcheck
		cw.Write(exportRowToCSVRecord(row))
	}
	cw.Flush()
}

// exportRowToCSVRecord encodes one export row as a flat string slice.
// Placeholder rows for empty days leave the activity columns blank.
func exportRowToCSVRecord(r domain.ExportRow) []string {
	if r.ActivityName == "" {
		return []string{strconv.Itoa(r.DayNumber), "", "", "", "", ""}
	}
	return []string{
		strconv.Itoa(r.DayNumber),
		strconv.Itoa(r.OrderIndex),
		r.ActivityName,
		r.Category,
		strconv.FormatFloat(r.DurationHours, 'f', -1, 64),
		strconv.Itoa(r.PriceLevel),
	}
}
