// internal/pipeline/matcher/sizes.go
package matcher

import (
	"strconv"
	"strings"
)

// sizeBounds is the per-query parsed form of a canonical size string.
type sizeBounds struct {
	min     float64
	max     float64
	isRange bool
}

// parseSize parses a canonical size string into an inclusive interval.
//
// A hyphenated string like "9-10" is a range: each side has interior dots
// stripped, a trailing dot denotes a half size ("9." means 9.5), and the
// interval is widened by half a size on both ends. A single value gets the
// same trailing-dot convention and an interval of value ± 0.5. Anything
// unparsable yields ok=false and the row never matches.
func parseSize(raw string) (sizeBounds, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return sizeBounds{}, false
	}

	if strings.Contains(s, "-") {
		parts := strings.Split(s, "-")
		if len(parts) != 2 {
			return sizeBounds{}, false
		}
		low, ok := parseRangePart(parts[0])
		if !ok {
			return sizeBounds{}, false
		}
		high, ok := parseRangePart(parts[1])
		if !ok {
			return sizeBounds{}, false
		}
		return sizeBounds{min: low - 0.5, max: high + 0.5, isRange: true}, true
	}

	var val float64
	if strings.HasSuffix(s, ".") {
		stripped := strings.ReplaceAll(s, ".", "")
		f, err := strconv.ParseFloat(stripped, 64)
		if err != nil {
			return sizeBounds{}, false
		}
		val = f + 0.5
	} else {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return sizeBounds{}, false
		}
		val = f
	}
	return sizeBounds{min: val - 0.5, max: val + 0.5, isRange: false}, true
}

// parseRangePart parses one side of a hyphenated size range.
func parseRangePart(part string) (float64, bool) {
	trimmed := strings.TrimSpace(part)
	stripped := strings.ReplaceAll(trimmed, ".", "")
	f, err := strconv.ParseFloat(stripped, 64)
	if err != nil {
		return 0, false
	}
	if strings.HasSuffix(trimmed, ".") {
		f += 0.5
	}
	return f, true
}
