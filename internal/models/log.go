package models

import "time"

// AuditLog records state-changing operations for auditing. Payload carries a
// JSON snapshot of what changed (for replace saves, the rows that were
// deleted), so a reviewer can reconstruct what a save overwrote.
type AuditLog struct {
	ID         uint   `gorm:"primaryKey"`
	UserID     *uint  `gorm:"index"`
	Action     string `gorm:"size:64;index"` // e.g. "district_entries.replace"
	EntityType string `gorm:"size:32;index"`
	EntityID   string `gorm:"size:64"`
	Method     string `gorm:"size:16"`
	Path       string `gorm:"size:255"`
	Payload    string `gorm:"type:text"`
	IP         string `gorm:"size:64"`
	UserAgent  string `gorm:"size:255"`
	CreatedAt  time.Time
}
