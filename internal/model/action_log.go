package model

import "time"

// Action identifies the kind of an action log entry.
type Action string

const (
	ActionScan  Action = "scan"
	ActionWeigh Action = "weigh"
	ActionMove  Action = "move"
)

// ActionLog is an append-only record of something that happened to a spool.
// Rows are never updated or deleted by the application.
type ActionLog struct {
	ID          int64     `gorm:"autoIncrement;primaryKey" json:"id"`
	EventID     string    `gorm:"uniqueIndex;size:36;not null" json:"eventId"`
	SpoolID     int64     `gorm:"index;not null" json:"spoolId"`
	Timestamp   time.Time `gorm:"not null;index" json:"timestamp"`
	Action      Action    `gorm:"size:32;not null" json:"action"`
	WeightGrams *float64  `json:"weightGrams,omitempty"`
	Location    *string   `gorm:"size:128" json:"location,omitempty"`
	Note        *string   `gorm:"size:512" json:"note,omitempty"`

	// Associations
	Spool Spool `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
