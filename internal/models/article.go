package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item types for articles in the catalog.
const (
	ItemTypeArticle = "Article"
	ItemTypeAid     = "Aid"
	ItemTypeProject = "Project"
)

// Article is one row in the distributable-articles catalog.
// Articles are never hard-deleted: historical entries and fund requests
// keep referencing them, so removal only clears IsActive.
type Article struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Name        string          `gorm:"size:128;index;not null" json:"name"`
	CostPerUnit decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"cost_per_unit"`
	ItemType    string          `gorm:"size:16;index;not null" json:"item_type"` // Article / Aid / Project
	Category    string          `gorm:"size:64" json:"category"`
	IsActive    bool            `gorm:"index;not null;default:true" json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
