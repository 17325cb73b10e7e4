// Package core holds the fund-request consolidation and beneficiary
// deduplication logic: identity keys, usage exclusion sets, entry grouping,
// application-number allocation, money math and fund-request assembly.
// Nothing in here touches gin or gorm; handlers feed it already-fetched rows.
package core

import "strings"

// NormalizeAadhaar strips every non-digit character from a free-form
// identity string. The result may legitimately be shorter than 12 digits
// when the source is malformed; callers treat that as "no match" rather
// than an error.
func NormalizeAadhaar(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ExtractApplicationNumber returns the first field of a
// "<app_number> - <name> - ₹ <amount>" display string, trimmed. Fields are
// separated by " - " (space, hyphen, space), so an application number that
// itself contains hyphens (every issued number does: "PUB-00042") survives
// the parse intact. Kept for legacy display strings; new recipient rows carry
// the application number as a structured column.
func ExtractApplicationNumber(displayText string) string {
	idx := strings.Index(displayText, " - ")
	if idx < 0 {
		return strings.TrimSpace(displayText)
	}
	return strings.TrimSpace(displayText[:idx])
}

// RecipientKey computes the uniqueness key a recipient occupies for
// exclusion purposes. District rows key on the whole display string, because
// several aid lines under one district can share an application number while
// representing different aid types and amounts. Every other type keys on the
// extracted application number. An empty key means the row holds nothing and
// is not tracked.
func RecipientKey(beneficiaryType, display string) string {
	display = strings.TrimSpace(display)
	if display == "" {
		return ""
	}
	if beneficiaryType == "District" {
		return display
	}
	return ExtractApplicationNumber(display)
}
