package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// District represents a district-level allotment.
// AllottedBudget is a soft ceiling: entries may push recorded totals past it,
// and the handlers surface that as a warning, never as a rejection.
type District struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	Name           string          `gorm:"size:128;uniqueIndex;not null" json:"name"`
	PresidentName  string          `gorm:"size:128" json:"president_name"`
	MobileNumber   string          `gorm:"size:16" json:"mobile_number"`
	AllottedBudget decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"allotted_budget"`

	// Application number assigned on the district's first aid submission and
	// reused by every later save-or-replace for the same district.
	ApplicationNumber string `gorm:"size:32;index" json:"application_number"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
