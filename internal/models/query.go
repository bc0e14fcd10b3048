// internal/models/query.go
package models

// DefaultLimit is the result-count limit applied when a query does not
// specify one.
const DefaultLimit = 10

// BrandPreference narrows a brand match to particular models. Models lists
// required substrings (at least one must appear in the canonical model);
// Exclude lists substrings that must not appear. Both matches are
// case-insensitive.
type BrandPreference struct {
	Models  []string `json:"models,omitempty"`
	Exclude []string `json:"exclude,omitempty"`
}

// Query describes one recommendation request. Queries are stateless and
// constructed fresh per call.
type Query struct {
	Gender           string                     `json:"gender"`
	Size             float64                    `json:"size"`
	Width            string                     `json:"width,omitempty"`
	BrandPreferences map[string]BrandPreference `json:"brandPreferences,omitempty"`
	ColorPreferences []string                   `json:"colorPreferences,omitempty"`
	Limit            int                        `json:"limit,omitempty"`
}

// EffectiveLimit returns the query limit, falling back to DefaultLimit when
// none was set.
func (q Query) EffectiveLimit() int {
	if q.Limit == 0 {
		return DefaultLimit
	}
	return q.Limit
}
