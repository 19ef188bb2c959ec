package model

import "time"

// Spool represents one physical filament spool tracked by the station.
// URL is the raw QR payload and acts as the spool's identity.
type Spool struct {
	ID              int64      `gorm:"primaryKey" json:"id"`
	URL             string     `gorm:"uniqueIndex;size:512;not null" json:"url"`
	Name            string     `gorm:"size:256" json:"name"`
	Material        string     `gorm:"size:64" json:"material"`
	Color           string     `gorm:"size:64" json:"color"`
	Location        *string    `gorm:"size:128" json:"location"`
	LastWeightGrams *float64   `json:"lastWeightGrams"`
	LastUpdated     *time.Time `json:"lastUpdated"`
	CreatedAt       time.Time  `json:"-"`
	UpdatedAt       time.Time  `json:"-"`

	// Associations
	Logs []ActionLog `gorm:"foreignKey:SpoolID" json:"-"`
}
