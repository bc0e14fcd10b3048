// internal/pipeline/matcher/matcher.go

// Package matcher applies the filter-and-score pipeline to a normalized
// product batch. Recommend is pure and deterministic: it never mutates the
// shared batch, all per-query derived fields live in ScoredProduct copies,
// and an emptied working set at any stage yields an empty result rather than
// an error.
package matcher

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"shoe-recommender/internal/common/errors"
	"shoe-recommender/internal/common/logger"
	"shoe-recommender/internal/models"
)

// Scoring weights. The ratios and thresholds are fixed; exact size beats a
// range hit, a required-model match doubles the brand points, and each step
// down the color preference list costs 1.25 points with no floor.
const (
	scoreSizeRange   = 18.75
	scoreSizeExact   = 31.25
	scoreSizeHalfOff = 21.875

	scoreWidthExact      = 12.5
	scoreWidthCompatible = 6.25

	scoreBrandMatch = 25.0
	scoreModelMatch = 25.0

	scoreColorBase = 6.25
	scoreColorStep = 1.25
)

// sizeExactTolerance absorbs float parsing noise in the exact-size check.
const sizeExactTolerance = 0.01

type Matcher struct {
	logger logger.Logger
}

func New(log logger.Logger) *Matcher {
	return &Matcher{
		logger: log.WithFields(map[string]interface{}{"component": "matcher"}),
	}
}

// Recommend filters, scores, sorts and truncates the normalized batch for a
// single query. Caller misuse (a non-finite target size, a negative limit)
// returns a typed INVALID_QUERY error; every other empty outcome returns an
// empty, correctly shaped slice.
func (m *Matcher) Recommend(products []models.NormalizedProduct, query models.Query) ([]models.ScoredProduct, error) {
	if math.IsNaN(query.Size) || math.IsInf(query.Size, 0) {
		return nil, errors.NewInvalidQueryError(fmt.Sprintf("target size is not a number: %v", query.Size))
	}
	if query.Limit < 0 {
		return nil, errors.NewInvalidQueryError(fmt.Sprintf("result limit must be positive: %d", query.Limit))
	}

	empty := []models.ScoredProduct{}

	// 1. Gender filter. A batch with no derived-gender data at all is a
	// schema mismatch, not a zero-match query.
	working := m.filterByGender(products, query.Gender)
	if working == nil {
		m.logger.Warn("gender attribute missing from batch", map[string]interface{}{
			"batchSize": len(products),
		})
		return empty, nil
	}
	if len(working) == 0 {
		return empty, nil
	}

	// 2. Size parse and filter.
	scored := filterBySize(working, query.Size)
	if len(scored) == 0 {
		return empty, nil
	}

	// 3. Width filter, strict on unrecognized target widths.
	if query.Width != "" {
		scored = filterByWidth(scored, query.Width)
		if len(scored) == 0 {
			return empty, nil
		}
	}

	// 4. Brand/model filter.
	if len(query.BrandPreferences) > 0 {
		scored = filterByBrand(scored, query.BrandPreferences)
		if len(scored) == 0 {
			return empty, nil
		}
	}

	// 5. Score, sort, truncate.
	for i := range scored {
		scored[i].Score = computeScore(&scored[i], query)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Quantity > scored[j].Quantity
	})

	limit := query.EffectiveLimit()
	if len(scored) > limit {
		scored = scored[:limit]
	}

	return scored, nil
}

// filterByGender keeps rows whose derived gender equals the target,
// case-insensitive. Returns nil when no row in the batch carries gender data
// at all, distinguishing schema mismatch from zero matches.
func (m *Matcher) filterByGender(products []models.NormalizedProduct, gender string) []models.NormalizedProduct {
	if len(products) == 0 {
		return []models.NormalizedProduct{}
	}

	present := false
	target := strings.ToLower(gender)
	kept := make([]models.NormalizedProduct, 0, len(products))
	for _, p := range products {
		if p.GenderFromName != "" {
			present = true
		}
		if strings.ToLower(p.GenderFromName) == target {
			kept = append(kept, p)
		}
	}
	if !present {
		return nil
	}
	return kept
}

// filterBySize parses each row's canonical size string once per query and
// keeps rows whose interval contains the target size. Rows with a missing or
// unparsable size never match.
func filterBySize(products []models.NormalizedProduct, targetSize float64) []models.ScoredProduct {
	kept := make([]models.ScoredProduct, 0, len(products))
	for _, p := range products {
		if p.MetaSize == nil {
			continue
		}
		bounds, ok := parseSize(*p.MetaSize)
		if !ok {
			continue
		}
		if bounds.min <= targetSize && targetSize <= bounds.max {
			kept = append(kept, models.ScoredProduct{
				NormalizedProduct: p,
				SizeMin:           bounds.min,
				SizeMax:           bounds.max,
				IsRange:           bounds.isRange,
			})
		}
	}
	return kept
}

// filterByWidth keeps rows whose canonical width is in the union of the
// target width's exact and compatible sets. An unrecognized target width
// eliminates all rows.
func filterByWidth(products []models.ScoredProduct, targetWidth string) []models.ScoredProduct {
	rule, ok := lookupWidth(targetWidth)
	if !ok {
		return []models.ScoredProduct{}
	}

	kept := make([]models.ScoredProduct, 0, len(products))
	for _, p := range products {
		width := strings.ToLower(deref(p.MetaWidth))
		if containsWidth(rule.exact, width) || containsWidth(rule.compatible, width) {
			kept = append(kept, p)
		}
	}
	return kept
}

// filterByBrand keeps rows whose vendor matches a preference key and whose
// canonical model satisfies that preference's required and excluded
// substrings. Rows matching no preference key are dropped.
func filterByBrand(products []models.ScoredProduct, prefs map[string]models.BrandPreference) []models.ScoredProduct {
	kept := make([]models.ScoredProduct, 0, len(products))
	for _, p := range products {
		if brandAllowed(&p, prefs) {
			kept = append(kept, p)
		}
	}
	return kept
}

func brandAllowed(p *models.ScoredProduct, prefs map[string]models.BrandPreference) bool {
	vendor := strings.ToLower(p.Vendor)
	model := strings.ToLower(deref(p.MetaModel))

	for brand, pref := range prefs {
		if strings.ToLower(brand) != vendor {
			continue
		}
		if len(pref.Models) > 0 && !containsAnySubstring(model, pref.Models) {
			return false
		}
		if len(pref.Exclude) > 0 && containsAnySubstring(model, pref.Exclude) {
			return false
		}
		return true
	}
	return false
}

// computeScore sums the four independent match components. Additive, not
// gated: a row can score on color alone.
func computeScore(p *models.ScoredProduct, query models.Query) float64 {
	score := 0.0
	vendor := strings.ToLower(p.Vendor)
	model := strings.ToLower(deref(p.MetaModel))
	width := strings.ToLower(deref(p.MetaWidth))

	// Size component.
	if p.IsRange {
		if p.SizeMin <= query.Size && query.Size <= p.SizeMax {
			score += scoreSizeRange
		}
	} else {
		sizeVal := p.SizeMin + 0.5
		diff := math.Abs(sizeVal - query.Size)
		if diff < sizeExactTolerance {
			score += scoreSizeExact
		} else if diff == 0.5 {
			score += scoreSizeHalfOff
		}
	}

	// Width component.
	if query.Width != "" {
		if rule, ok := lookupWidth(query.Width); ok {
			if containsWidth(rule.exact, width) {
				score += scoreWidthExact
			} else if containsWidth(rule.compatible, width) {
				score += scoreWidthCompatible
			}
		}
	}

	// Brand/model component.
	for brand, pref := range query.BrandPreferences {
		if strings.ToLower(brand) == vendor {
			score += scoreBrandMatch
			if len(pref.Models) > 0 && containsAnySubstring(model, pref.Models) {
				score += scoreModelMatch
			}
			break
		}
	}

	// Color component: first matching preference rank only. The per-rank
	// step has no floor, so ranks past four contribute negative points.
	if len(query.ColorPreferences) > 0 && p.MetaColor != nil {
		colors := splitColors(*p.MetaColor)
		for i, want := range query.ColorPreferences {
			if containsString(colors, strings.ToLower(want)) {
				score += scoreColorBase - scoreColorStep*float64(i)
				break
			}
		}
	}

	return score
}

// splitColors breaks a canonical color like "Blue/Grey" into trimmed,
// lower-cased parts.
func splitColors(color string) []string {
	pieces := strings.Split(color, "/")
	out := make([]string, 0, len(pieces))
	for _, c := range pieces {
		out = append(out, strings.ToLower(strings.TrimSpace(c)))
	}
	return out
}

func containsAnySubstring(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, strings.ToLower(sub)) {
			return true
		}
	}
	return false
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
