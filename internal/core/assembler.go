package core

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// AidRecipientInput is one payee line of an Aid request form.
type AidRecipientInput struct {
	BeneficiaryType   string          `json:"beneficiary_type"`
	Beneficiary       string          `json:"beneficiary"`
	ApplicationNumber string          `json:"application_number"`
	NameOfBeneficiary string          `json:"name_of_beneficiary"`
	NameOfInstitution string          `json:"name_of_institution"`
	FundRequested     decimal.Decimal `json:"fund_requested"`
	AadharNumber      string          `json:"aadhar_number"`
	ChequeInFavour    string          `json:"cheque_in_favour"`
	ChequeNo          string          `json:"cheque_no"`
	Notes             string          `json:"notes"`
	DistrictName      string          `json:"district_name"`
}

// AidRequestInput is the form state of an Aid-type fund request.
type AidRequestInput struct {
	AidType    string              `json:"aid_type"`
	Notes      string              `json:"notes"`
	Recipients []AidRecipientInput `json:"recipients"`
}

// ArticleLineInput is one purchase line of an Article request form.
// ArticleRef is either a numeric catalog id or a "split::<name>" virtual id.
type ArticleLineInput struct {
	ArticleRef          string          `json:"article_ref"`
	ArticleName         string          `json:"article_name"`
	Quantity            int             `json:"quantity"`
	UnitPrice           decimal.Decimal `json:"unit_price"`
	PriceIncludingGST   decimal.Decimal `json:"price_including_gst"`
	SupplierArticleName string          `json:"supplier_article_name"`
	ChequeInFavour      string          `json:"cheque_in_favour"`
	ChequeNo            string          `json:"cheque_no"`
}

// ArticleRequestInput is the form state of an Article-type fund request.
type ArticleRequestInput struct {
	SupplierName    string             `json:"supplier_name"`
	SupplierAddress string             `json:"supplier_address"`
	SupplierCity    string             `json:"supplier_city"`
	SupplierState   string             `json:"supplier_state"`
	SupplierPincode string             `json:"supplier_pincode"`
	GSTNumber       string             `json:"gst_number"`
	Notes           string             `json:"notes"`
	Lines           []ArticleLineInput `json:"lines"`
}

// ValidateAidRequest checks an Aid request and returns every problem at once
// as a field→message map, so the form can mark all offending fields in a
// single round trip. An empty map means valid.
func ValidateAidRequest(req AidRequestInput) map[string]string {
	errs := make(map[string]string)

	if len(req.Recipients) == 0 {
		errs["recipients"] = "at least one recipient is required"
		return errs
	}

	for i, r := range req.Recipients {
		key := func(f string) string { return fmt.Sprintf("recipients[%d].%s", i, f) }

		if strings.TrimSpace(r.BeneficiaryType) == "" {
			errs[key("beneficiary_type")] = "beneficiary type is required"
		}
		if strings.TrimSpace(r.NameOfBeneficiary) == "" {
			errs[key("name_of_beneficiary")] = "beneficiary name is required"
		}
		if strings.TrimSpace(r.NameOfInstitution) == "" {
			errs[key("name_of_institution")] = "institution name is required"
		}
		if !r.FundRequested.IsPositive() {
			errs[key("fund_requested")] = "fund requested must be greater than zero"
		}
		if len(NormalizeAadhaar(r.AadharNumber)) != 12 {
			errs[key("aadhar_number")] = "aadhar number must have 12 digits"
		}
		if strings.TrimSpace(r.Notes) == "" {
			errs[key("notes")] = "details are required"
		}
	}

	return errs
}

// ValidateArticleRequest checks an Article request the same way. A zero unit
// price passes (a line may be pending supplier quotation and defaults to 0);
// a negative one does not.
func ValidateArticleRequest(req ArticleRequestInput) map[string]string {
	errs := make(map[string]string)

	supplier := map[string]string{
		"supplier_name":    req.SupplierName,
		"supplier_address": req.SupplierAddress,
		"supplier_city":    req.SupplierCity,
		"supplier_state":   req.SupplierState,
		"supplier_pincode": req.SupplierPincode,
		"gst_number":       req.GSTNumber,
	}
	for field, v := range supplier {
		if strings.TrimSpace(v) == "" {
			errs[field] = strings.ReplaceAll(field, "_", " ") + " is required"
		}
	}

	if len(req.Lines) == 0 {
		errs["lines"] = "at least one article line is required"
		return errs
	}

	for i, l := range req.Lines {
		key := func(f string) string { return fmt.Sprintf("lines[%d].%s", i, f) }

		if strings.TrimSpace(l.ArticleRef) == "" && strings.TrimSpace(l.ArticleName) == "" {
			errs[key("article_ref")] = "article is required"
		}
		if l.Quantity <= 0 {
			errs[key("quantity")] = "quantity must be greater than zero"
		}
		if l.UnitPrice.IsNegative() {
			errs[key("unit_price")] = "unit price cannot be negative"
		}
	}

	return errs
}

// DuplicateLineWarnings flags article lines naming the same article more
// than once. Duplicates are informational, not blocking: the suggestion to
// the user is to merge the quantities, but a save with duplicates proceeds.
func DuplicateLineWarnings(lines []ArticleLineInput) []string {
	seen := make(map[string]int)
	var warnings []string
	for _, l := range lines {
		name := l.ArticleName
		if IsSplitID(l.ArticleRef) {
			name = SplitName(l.ArticleRef)
		}
		norm := NormalizeArticleName(name)
		if norm == "" {
			continue
		}
		seen[norm]++
		if seen[norm] == 2 {
			warnings = append(warnings,
				fmt.Sprintf("article %q appears on more than one line; consider combining quantities", strings.TrimSpace(name)))
		}
	}
	return warnings
}

// RecomputeArticleValues recalculates every line's value as quantity × unit
// price and returns the grand total. Stored values are never trusted: a
// stale value from a previous edit must not survive a save.
func RecomputeArticleValues(lines []ArticleLineInput) ([]decimal.Decimal, decimal.Decimal) {
	values := make([]decimal.Decimal, len(lines))
	total := decimal.Zero
	for i, l := range lines {
		values[i] = LineTotal(l.Quantity, l.UnitPrice)
		total = total.Add(values[i])
	}
	return values, total
}

// AidGrandTotal sums the recipients' requested funds.
func AidGrandTotal(recipients []AidRecipientInput) decimal.Decimal {
	total := decimal.Zero
	for _, r := range recipients {
		total = total.Add(r.FundRequested)
	}
	return total
}
