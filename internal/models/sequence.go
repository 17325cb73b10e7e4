package models

// Sequence is a per-beneficiary-type counter backing application-number
// issuance. Rows are bumped inside the save transaction, so two concurrent
// first-time saves for the same type cannot draw the same number.
type Sequence struct {
	Type      string `gorm:"primaryKey;size:16"`
	LastValue int64  `gorm:"not null"`
}
