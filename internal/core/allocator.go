package core

// NumberSource issues application numbers. The single contract required of
// an implementation: numbers are unique per beneficiary type and sortable as
// strings (the UI sorts and displays them as text).
type NumberSource interface {
	Next(beneficiaryType string) (string, error)
}

// Resolution says how an application number was obtained.
type Resolution int

const (
	// ResolvedEdit reuses the number of the record being edited; prior rows
	// under it must be replaced.
	ResolvedEdit Resolution = iota
	// ResolvedAnchor reuses a number previously assigned to the anchor
	// entity (a district row, an Aadhaar-matched applicant); prior rows are
	// replaced the same way.
	ResolvedAnchor
	// ResolvedNew issued a fresh number; the caller persists it onto the
	// anchor for future reuse.
	ResolvedNew
)

// Allocator implements create-or-replace application-number semantics.
type Allocator struct {
	Source NumberSource
}

// Allocate resolves the application number for a save, trying in order:
// the number already on the record being edited, the number carried by the
// anchor entity, and finally a freshly issued one. The first two paths mean
// "replace": the caller must delete prior rows under the number and insert
// the new set as one dependent sequence (in practice, one transaction).
func (a *Allocator) Allocate(beneficiaryType, editingNumber, anchorNumber string) (string, Resolution, error) {
	if editingNumber != "" {
		return editingNumber, ResolvedEdit, nil
	}
	if anchorNumber != "" {
		return anchorNumber, ResolvedAnchor, nil
	}
	n, err := a.Source.Next(beneficiaryType)
	if err != nil {
		return "", ResolvedNew, err
	}
	return n, ResolvedNew, nil
}

// IsReplace reports whether a resolution requires deleting prior rows before
// inserting the new set.
func (r Resolution) IsReplace() bool {
	return r == ResolvedEdit || r == ResolvedAnchor
}
