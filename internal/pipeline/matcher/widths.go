// internal/pipeline/matcher/widths.go
package matcher

import "strings"

// widthRule lists the widths accepted for a given target width. Exact widths
// score higher than compatible fallbacks.
type widthRule struct {
	exact      []string
	compatible []string
}

// widthCompatibility is the fixed width lookup table, keyed by lower-cased
// target width. Built once at process start and never mutated.
var widthCompatibility = map[string]widthRule{
	"narrow": {
		exact:      []string{"narrow"},
		compatible: []string{"medium (regular)", "regular"},
	},
	"medium": {
		exact:      []string{"medium (regular)", "regular"},
		compatible: []string{},
	},
	"wide": {
		exact:      []string{"wide"},
		compatible: []string{"medium (regular)", "extra wide"},
	},
	"extra wide": {
		exact:      []string{"extra wide"},
		compatible: []string{"wide"},
	},
}

// lookupWidth resolves the rule for a target width. An unrecognized width
// returns ok=false, which eliminates all rows (strict policy).
func lookupWidth(target string) (widthRule, bool) {
	rule, ok := widthCompatibility[strings.ToLower(target)]
	return rule, ok
}

func containsWidth(list []string, width string) bool {
	for _, w := range list {
		if w == width {
			return true
		}
	}
	return false
}
