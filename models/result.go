package models

import (
	"time"
)

// Result represents one draw result observed from the upstream API.
// The period identifier is assigned by the source and is globally unique;
// a row is written once by the ingestion cycle and never updated.
// Table: results
// Unique index: period
type Result struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	Period string `gorm:"size:20;not null;uniqueIndex:idx_results_period" json:"period"`
	Number string `gorm:"size:10;not null" json:"number"`
	Color  string `gorm:"size:10;not null" json:"color"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
}

func (Result) TableName() string { return "results" }

// ResultFilter provides filter fields for repository queries
type ResultFilter struct {
	ID            *uint
	Period        *string
	Color         *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
