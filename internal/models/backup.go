package models

import "time"

// Backup records one database backup file on disk.
type Backup struct {
	ID        string    `gorm:"primaryKey;size:64"` // UUID
	FileName  string    `gorm:"size:255;not null"`
	SizeBytes int64     `gorm:"not null"`
	CreatedBy uint      `gorm:"index"`
	CreatedAt time.Time
}
