package core

import "strings"

// SplitPrefix marks a virtual article id: an order-consolidation line not
// yet backed by a catalog row. It materializes into a real, inactive article
// only when the fund request holding it is saved.
const SplitPrefix = "split::"

// IsSplitID reports whether an article reference is a virtual split id.
func IsSplitID(id string) bool {
	return strings.HasPrefix(id, SplitPrefix)
}

// SplitName returns the article name carried by a split id.
func SplitName(id string) string {
	return strings.TrimPrefix(id, SplitPrefix)
}

// NormalizeArticleName folds case and interior whitespace so "Note Book",
// "notebook" and " NOTEBOOK " resolve to the same catalog row.
func NormalizeArticleName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// SplitResolver resolves virtual split article names to real article ids,
// creating missing ones on demand. The name→id cache lives for one form
// session, so two lines naming the same new article share one created row.
type SplitResolver struct {
	cache map[string]uint
}

func NewSplitResolver() *SplitResolver {
	return &SplitResolver{cache: make(map[string]uint)}
}

// Resolve maps an article name to a real id. lookup consults the catalog by
// normalized name; create inserts a new inactive article (hidden from
// pickers, existing solely to be referenced by the fund request) and returns
// its id. Either way the mapping is cached for subsequent lines.
func (r *SplitResolver) Resolve(
	name string,
	lookup func(normalized string) (uint, bool, error),
	create func(name string) (uint, error),
) (uint, error) {
	norm := NormalizeArticleName(name)
	if id, ok := r.cache[norm]; ok {
		return id, nil
	}

	id, found, err := lookup(norm)
	if err != nil {
		return 0, err
	}
	if !found {
		id, err = create(strings.TrimSpace(name))
		if err != nil {
			return 0, err
		}
	}

	r.cache[norm] = id
	return id, nil
}
