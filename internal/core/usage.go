package core

// Tracker owns the beneficiary exclusion state for one user's fund-request
// form: the identities consumed by saved fund requests, plus the ones picked
// in this session's recipient rows. The handler keeps one per user so the
// candidate cache survives across dropdown loads; data-entry saves clear it.
type Tracker struct {
	used    map[string]struct{}
	session map[string]struct{}

	// candidate lists per beneficiary type, cached only for unfiltered
	// queries (filtered result sets are not safe to reuse across filters)
	candidates map[string][]Candidate
}

// Candidate is one dropdown option: the display string doubles as the value.
type Candidate struct {
	Display string `json:"display"`
	Key     string `json:"key"`
}

func NewTracker() *Tracker {
	return &Tracker{
		used:       make(map[string]struct{}),
		session:    make(map[string]struct{}),
		candidates: make(map[string][]Candidate),
	}
}

// LoadUsed replaces the persisted-usage set. Callers pass the keys of every
// recipient across all saved fund requests, already excluding the request
// being edited (if any).
func (t *Tracker) LoadUsed(keys []string) {
	t.used = make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if k != "" {
			t.used[k] = struct{}{}
		}
	}
}

// Select marks a key as chosen by a recipient row in this session.
func (t *Tracker) Select(key string) {
	if key != "" {
		t.session[key] = struct{}{}
	}
}

// Deselect removes a key when a row changes away from it.
func (t *Tracker) Deselect(key string) {
	delete(t.session, key)
}

// InUse reports whether a key is consumed by a saved request or this session.
func (t *Tracker) InUse(key string) bool {
	if _, ok := t.used[key]; ok {
		return true
	}
	_, ok := t.session[key]
	return ok
}

// Available filters candidates down to those not in use anywhere, except
// that the row's own current value always stays visible so the user can see
// (and keep) what the row already holds.
func (t *Tracker) Available(candidates []Candidate, current string) []Candidate {
	out := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Key == current || !t.InUse(c.Key) {
			out = append(out, c)
		}
	}
	return out
}

// CachedCandidates returns the unfiltered candidate list for a beneficiary
// type, if one was stored.
func (t *Tracker) CachedCandidates(beneficiaryType string) ([]Candidate, bool) {
	c, ok := t.candidates[beneficiaryType]
	return c, ok
}

// CacheCandidates stores an unfiltered candidate list. Filtered queries must
// not be cached; callers skip this call when any filter was applied.
func (t *Tracker) CacheCandidates(beneficiaryType string, c []Candidate) {
	t.candidates[beneficiaryType] = c
}

// ClearCandidates drops every cached candidate list. Called when the
// underlying beneficiary entries change, so the next load re-queries.
func (t *Tracker) ClearCandidates() {
	t.candidates = make(map[string][]Candidate)
}
