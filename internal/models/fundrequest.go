package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Fund request types and statuses.
const (
	FundRequestAid     = "Aid"
	FundRequestArticle = "Article"

	FundRequestStatusDraft = "draft"
)

// FundRequest is a batched disbursement (Aid) or purchase (Article) request.
// TotalAmount is always recomputed from the child rows on save; the stored
// value is for listing only and never trusted during edits.
type FundRequest struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Type        string          `gorm:"size:16;index;not null" json:"type"` // Aid / Article
	Number      string          `gorm:"size:32;uniqueIndex;not null" json:"number"`
	Status      string          `gorm:"size:16;index;not null;default:draft" json:"status"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"total_amount"`

	// Aid requests only.
	AidType string `gorm:"size:64" json:"aid_type"`

	// Article requests only: supplier details.
	SupplierName    string `gorm:"size:128" json:"supplier_name"`
	SupplierAddress string `gorm:"size:255" json:"supplier_address"`
	SupplierCity    string `gorm:"size:64" json:"supplier_city"`
	SupplierState   string `gorm:"size:64" json:"supplier_state"`
	SupplierPincode string `gorm:"size:8" json:"supplier_pincode"`
	GSTNumber       string `gorm:"size:16" json:"gst_number"`

	Notes     string    `gorm:"size:255" json:"notes"`
	CreatedBy uint      `gorm:"index" json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Recipients []FundRequestRecipient `gorm:"constraint:OnDelete:CASCADE" json:"recipients,omitempty"`
	Articles   []FundRequestArticleRow `gorm:"constraint:OnDelete:CASCADE" json:"articles,omitempty"`
}

// FundRequestRecipient is one payee line of an Aid request. The structured
// (ApplicationNumber, BeneficiaryType) pair is authoritative for exclusion
// checks; Beneficiary keeps the legacy display string for older rows.
type FundRequestRecipient struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	FundRequestID     uint            `gorm:"index;not null" json:"fund_request_id"`
	BeneficiaryType   string          `gorm:"size:16;not null" json:"beneficiary_type"`
	Beneficiary       string          `gorm:"size:255" json:"beneficiary"` // "<app_no> - <name> - ₹ <amount>"
	ApplicationNumber string          `gorm:"size:32;index" json:"application_number"`
	NameOfBeneficiary string          `gorm:"size:128" json:"name_of_beneficiary"`
	NameOfInstitution string          `gorm:"size:128" json:"name_of_institution"`
	FundRequested     decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"fund_requested"`
	AadharNumber      string          `gorm:"size:12" json:"aadhar_number"`
	ChequeInFavour    string          `gorm:"size:128" json:"cheque_in_favour"`
	ChequeNo          string          `gorm:"size:32" json:"cheque_no"`
	Notes             string          `gorm:"size:255" json:"notes"`
	DistrictName      string          `gorm:"size:128" json:"district_name"`
}

// FundRequestArticleRow is one purchase line of an Article request.
type FundRequestArticleRow struct {
	ID                  uint            `gorm:"primaryKey" json:"id"`
	FundRequestID       uint            `gorm:"index;not null" json:"fund_request_id"`
	ArticleID           uint            `gorm:"index;not null" json:"article_id"`
	SlNo                int             `json:"sl_no"`
	ArticleName         string          `gorm:"size:128" json:"article_name"`
	Quantity            int             `gorm:"not null" json:"quantity"`
	UnitPrice           decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"unit_price"`
	PriceIncludingGST   decimal.Decimal `gorm:"type:decimal(14,2)" json:"price_including_gst"`
	Value               decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"value"`
	SupplierArticleName string          `gorm:"size:128" json:"supplier_article_name"`
	ChequeInFavour      string          `gorm:"size:128" json:"cheque_in_favour"`
	ChequeNo            string          `gorm:"size:32" json:"cheque_no"`
}

// DraftSnapshot holds the debounced form state of a not-yet-saved fund
// request, one per (user, request type). Saved requests never touch it.
type DraftSnapshot struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"uniqueIndex:idx_draft_user_type;not null" json:"user_id"`
	RequestType string    `gorm:"size:16;uniqueIndex:idx_draft_user_type;not null" json:"request_type"`
	Payload     string    `gorm:"type:text" json:"payload"`
	UpdatedAt   time.Time `json:"updated_at"`
}
