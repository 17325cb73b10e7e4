package database

import (
	"fmt"

	"aidtrack/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Prefixes used when formatting application numbers per beneficiary type.
var sequencePrefixes = map[string]string{
	models.BeneficiaryDistrict:     "DST",
	models.BeneficiaryPublic:       "PUB",
	models.BeneficiaryInstitutions: "INS",
	models.BeneficiaryOthers:       "OTH",
}

// NextApplicationNumber bumps the per-type counter and formats the next
// number, e.g. "PUB-00042". Call it with the transaction the save runs in so
// the bump commits or rolls back together with the inserted rows.
func NextApplicationNumber(tx *gorm.DB, beneficiaryType string) (string, error) {
	prefix, ok := sequencePrefixes[beneficiaryType]
	if !ok {
		return "", fmt.Errorf("unknown beneficiary type %q", beneficiaryType)
	}

	var seq models.Sequence
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where(models.Sequence{Type: beneficiaryType}).
		FirstOrCreate(&seq).Error; err != nil {
		return "", fmt.Errorf("load sequence %s: %w", beneficiaryType, err)
	}

	seq.LastValue++
	if err := tx.Save(&seq).Error; err != nil {
		return "", fmt.Errorf("bump sequence %s: %w", beneficiaryType, err)
	}

	return fmt.Sprintf("%s-%05d", prefix, seq.LastValue), nil
}

// SequenceSource adapts NextApplicationNumber to the core allocator's
// NumberSource interface.
type SequenceSource struct {
	Tx *gorm.DB
}

func (s SequenceSource) Next(beneficiaryType string) (string, error) {
	return NextApplicationNumber(s.Tx, beneficiaryType)
}
