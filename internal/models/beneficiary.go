package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Beneficiary types used across entries and fund-request recipients.
const (
	BeneficiaryDistrict     = "District"
	BeneficiaryPublic       = "Public"
	BeneficiaryInstitutions = "Institutions"
	BeneficiaryOthers       = "Others"
)

// DistrictEntry is one (district, article) aid line. All lines sharing an
// ApplicationNumber belong to one submission and are replaced atomically.
type DistrictEntry struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	ApplicationNumber string          `gorm:"size:32;index;not null" json:"application_number"`
	DistrictID        uint            `gorm:"index;not null" json:"district_id"`
	ArticleID         uint            `gorm:"index;not null" json:"article_id"`
	Quantity          int             `gorm:"not null" json:"quantity"`
	CostPerUnit       decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"cost_per_unit"`
	TotalAmount       decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"total_amount"`
	Notes             string          `gorm:"size:255" json:"notes"`
	Status            string          `gorm:"size:16;default:active" json:"status"`
	CreatedAt         time.Time       `json:"created_at"`

	District District `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Article  Article  `json:"-"`
}

// PublicEntry is an individual applicant's aid line. One row per beneficiary
// per article; the form enforces a single article per public applicant, so
// the grouped views treat these rows one-to-one.
type PublicEntry struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	ApplicationNumber string          `gorm:"size:32;index;not null" json:"application_number"`
	ApplicantName     string          `gorm:"size:128;not null" json:"applicant_name"`
	AadharNumber      string          `gorm:"size:12;index" json:"aadhar_number"` // digits only
	Address           string          `gorm:"size:255" json:"address"`
	Phone             string          `gorm:"size:16" json:"phone"`
	ArticleID         uint            `gorm:"index;not null" json:"article_id"`
	Quantity          int             `gorm:"not null" json:"quantity"`
	CostPerUnit       decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"cost_per_unit"`
	TotalAmount       decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"total_amount"`
	Notes             string          `gorm:"size:255" json:"notes"`
	Status            string          `gorm:"size:16;default:active" json:"status"`
	CreatedAt         time.Time       `json:"created_at"`

	Article Article `json:"-"`
}

// InstitutionEntry is one (institution, article) aid line, grouped by
// application number the same way district entries are.
type InstitutionEntry struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	ApplicationNumber string          `gorm:"size:32;index;not null" json:"application_number"`
	InstitutionName   string          `gorm:"size:128;index;not null" json:"institution_name"`
	ContactPerson     string          `gorm:"size:128" json:"contact_person"`
	Phone             string          `gorm:"size:16" json:"phone"`
	Address           string          `gorm:"size:255" json:"address"`
	ArticleID         uint            `gorm:"index;not null" json:"article_id"`
	Quantity          int             `gorm:"not null" json:"quantity"`
	CostPerUnit       decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"cost_per_unit"`
	TotalAmount       decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"total_amount"`
	Notes             string          `gorm:"size:255" json:"notes"`
	Status            string          `gorm:"size:16;default:active" json:"status"`
	CreatedAt         time.Time       `json:"created_at"`

	Article Article `json:"-"`
}
