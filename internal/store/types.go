package store

import (
	"time"

	"filament-station/internal/model"
)

// LogParams carries the fields for one append-only action log entry.
// Optional fields are nil when they do not apply to the action.
type LogParams struct {
	SpoolID     int64
	Action      model.Action
	At          time.Time
	WeightGrams *float64
	Location    *string
	Note        *string
}
