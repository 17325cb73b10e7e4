package util

import (
	"fmt"
	"regexp"

	"aidtrack/internal/core"

	"github.com/shopspring/decimal"
)

var mobileRe = regexp.MustCompile(`^[0-9]{10}$`)

// ValidateAadhaar checks a free-form identity string normalizes to exactly
// 12 digits.
func ValidateAadhaar(raw string) error {
	n := core.NormalizeAadhaar(raw)
	if len(n) != 12 {
		return fmt.Errorf("aadhar number must have 12 digits, got %d", len(n))
	}
	return nil
}

// ValidateMobile checks a 10-digit mobile number.
func ValidateMobile(raw string) error {
	if raw == "" {
		return nil // optional everywhere it appears
	}
	if !mobileRe.MatchString(raw) {
		return fmt.Errorf("mobile number must have 10 digits")
	}
	return nil
}

// ValidatePositiveAmount checks a money value is strictly positive.
func ValidatePositiveAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("amount must be positive, got %s", amount)
	}
	return nil
}

// ValidateQuantity checks an article quantity.
func ValidateQuantity(q int) error {
	if q <= 0 {
		return fmt.Errorf("quantity must be positive, got %d", q)
	}
	return nil
}
