package core

import (
	"strings"
	"testing"
)

func validRecipient() AidRecipientInput {
	return AidRecipientInput{
		BeneficiaryType:   "Public",
		NameOfBeneficiary: "Ravi Kumar",
		NameOfInstitution: "Govt Hospital",
		FundRequested:     dec("5000"),
		AadharNumber:      "1234 5678 9012",
		Notes:             "medical aid",
	}
}

func TestValidateAidRequest_CollectsAllErrors(t *testing.T) {
	req := AidRequestInput{
		AidType: "Medical",
		Recipients: []AidRecipientInput{
			{
				// everything missing on purpose
				FundRequested: dec("0"),
				AadharNumber:  "12345",
			},
		},
	}

	errs := ValidateAidRequest(req)

	wantFields := []string{
		"recipients[0].beneficiary_type",
		"recipients[0].name_of_beneficiary",
		"recipients[0].name_of_institution",
		"recipients[0].fund_requested",
		"recipients[0].aadhar_number",
		"recipients[0].notes",
	}
	for _, f := range wantFields {
		if _, ok := errs[f]; !ok {
			t.Errorf("missing error for %s; got %v", f, errs)
		}
	}
}

func TestValidateAidRequest_ValidPasses(t *testing.T) {
	req := AidRequestInput{AidType: "Medical", Recipients: []AidRecipientInput{validRecipient()}}
	if errs := ValidateAidRequest(req); len(errs) != 0 {
		t.Errorf("valid request rejected: %v", errs)
	}
}

func TestValidateAidRequest_NoRecipients(t *testing.T) {
	errs := ValidateAidRequest(AidRequestInput{AidType: "Medical"})
	if _, ok := errs["recipients"]; !ok {
		t.Errorf("empty recipient list not flagged: %v", errs)
	}
}

func TestValidateArticleRequest(t *testing.T) {
	req := ArticleRequestInput{
		SupplierName:    "Sri Traders",
		SupplierAddress: "12 Main Rd",
		SupplierCity:    "Chennai",
		SupplierState:   "Tamil Nadu",
		SupplierPincode: "600001",
		GSTNumber:       "33AAAAA0000A1Z5",
		Lines: []ArticleLineInput{
			{ArticleRef: "3", Quantity: 2, UnitPrice: dec("150")},
			{ArticleRef: "split::Note Book", Quantity: 10, UnitPrice: dec("0")},
		},
	}
	if errs := ValidateArticleRequest(req); len(errs) != 0 {
		t.Errorf("valid request rejected: %v", errs)
	}

	// zero price is allowed, negative is not
	req.Lines[1].UnitPrice = dec("-1")
	errs := ValidateArticleRequest(req)
	if _, ok := errs["lines[1].unit_price"]; !ok {
		t.Errorf("negative unit price not flagged: %v", errs)
	}

	// missing supplier fields are all reported together
	errs = ValidateArticleRequest(ArticleRequestInput{
		Lines: []ArticleLineInput{{ArticleRef: "3", Quantity: 1}},
	})
	for _, f := range []string{"supplier_name", "supplier_address", "supplier_city", "supplier_state", "supplier_pincode", "gst_number"} {
		if _, ok := errs[f]; !ok {
			t.Errorf("missing error for %s; got %v", f, errs)
		}
	}
}

func TestDuplicateLineWarnings(t *testing.T) {
	lines := []ArticleLineInput{
		{ArticleRef: "3", ArticleName: "Note Book"},
		{ArticleRef: "split::note  book"},
		{ArticleRef: "5", ArticleName: "Pen"},
	}

	warnings := DuplicateLineWarnings(lines)
	if len(warnings) != 1 {
		t.Fatalf("got %d warnings, want 1: %v", len(warnings), warnings)
	}
	if !strings.Contains(warnings[0], "more than one line") {
		t.Errorf("warning text unexpected: %s", warnings[0])
	}

	// a third occurrence does not repeat the warning
	lines = append(lines, ArticleLineInput{ArticleRef: "3", ArticleName: "NOTE BOOK"})
	if got := DuplicateLineWarnings(lines); len(got) != 1 {
		t.Errorf("got %d warnings after third duplicate, want still 1", len(got))
	}

	if got := DuplicateLineWarnings(lines[2:3]); got != nil {
		t.Errorf("unique lines produced warnings: %v", got)
	}
}

func TestRecomputeArticleValues(t *testing.T) {
	lines := []ArticleLineInput{
		{Quantity: 3, UnitPrice: dec("150.50")},
		{Quantity: 10, UnitPrice: dec("0")},
	}

	values, total := RecomputeArticleValues(lines)
	if !values[0].Equal(dec("451.50")) {
		t.Errorf("values[0] = %s, want 451.50", values[0])
	}
	if !values[1].Equal(dec("0")) {
		t.Errorf("values[1] = %s, want 0", values[1])
	}
	if !total.Equal(dec("451.50")) {
		t.Errorf("total = %s, want 451.50", total)
	}
}

func TestAidGrandTotal(t *testing.T) {
	recipients := []AidRecipientInput{
		{FundRequested: dec("5000")},
		{FundRequested: dec("2500.25")},
	}
	if got := AidGrandTotal(recipients); !got.Equal(dec("7500.25")) {
		t.Errorf("AidGrandTotal = %s, want 7500.25", got)
	}
	if got := AidGrandTotal(nil); !got.Equal(dec("0")) {
		t.Errorf("AidGrandTotal(nil) = %s, want 0", got)
	}
}
