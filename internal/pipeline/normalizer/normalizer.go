// internal/pipeline/normalizer/normalizer.go

// Package normalizer turns raw catalog rows into the flat attribute schema
// consumed by the matcher. Normalization is deterministic and never drops a
// row: malformed blobs or unparsable name segments degrade to empty or nil
// values for that row only.
package normalizer

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"shoe-recommender/internal/common/logger"
	"shoe-recommender/internal/common/metrics"
	"shoe-recommender/internal/models"
)

// Metadata keys projected into the canonical attribute fields.
const (
	metaKeyColor  = "custom.color"
	metaKeyModel  = "custom.model"
	metaKeyGender = "google.gender"
	metaKeySize   = "my_fields.size"
	metaKeyWidth  = "my_fields.width"
)

// GenderUnknown is assigned when no gender token appears in the product name.
const GenderUnknown = "Unknown"

// genderPattern matches the exact department tokens as whole words. First
// (leftmost) match wins.
var genderPattern = regexp.MustCompile(`\b(Women's|Men's|Unisex|Kids')\b`)

// standardRenames disambiguates options-derived columns that would otherwise
// collide with the canonical metadata projections.
var standardRenames = map[string]string{
	"Size":       "size_from_options",
	"Color":      "color_from_options",
	"Width":      "width_from_options",
	"Model":      "model_from_options",
	"first_word": "first_word_from_name",
	"Department": "gender_from_name",
}

type Normalizer struct {
	logger logger.Logger
}

func New(log logger.Logger) *Normalizer {
	return &Normalizer{
		logger: log.WithFields(map[string]interface{}{"component": "normalizer"}),
	}
}

// Normalize produces one NormalizedProduct per RawProduct. The output count
// always equals the input count.
func (n *Normalizer) Normalize(raw []models.RawProduct) []models.NormalizedProduct {
	out := make([]models.NormalizedProduct, 0, len(raw))
	for i := range raw {
		out = append(out, n.normalizeRow(&raw[i]))
	}
	return out
}

// normalizeRow applies the per-row steps in order. Color and gender
// extraction read the raw name before any rename could shadow it; options
// and metadata expansion run before column standardization since
// standardization only renames options-derived columns.
func (n *Normalizer) normalizeRow(raw *models.RawProduct) models.NormalizedProduct {
	p := models.NormalizedProduct{
		ProductID:   raw.ProductID,
		ProductName: raw.ProductName,
		PartnerID:   raw.PartnerID,
		Category:    raw.Category,
		Size:        raw.Size,
		Color:       raw.Color,
		Quantity:    raw.Quantity,
		Vendor:      raw.Vendor,
	}

	p.ColorsFromName = colorsFromName(raw.ProductName)

	opts, err := parseBlob(raw.Options)
	if err != nil {
		n.logger.Warn("options parse error", map[string]interface{}{
			"productId": raw.ProductID,
			"error":     err.Error(),
		})
		metrics.NormalizationWarnings.WithLabelValues("options").Inc()
		opts = map[string]interface{}{}
	}
	n.applyOptions(&p, opts)

	meta, err := parseBlob(raw.Metadata)
	if err != nil {
		n.logger.Warn("metadata parse error", map[string]interface{}{
			"productId": raw.ProductID,
			"error":     err.Error(),
		})
		metrics.NormalizationWarnings.WithLabelValues("metadata").Inc()
		meta = nil
	}
	p.MetaColor = stringify(meta[metaKeyColor])
	p.MetaModel = stringify(meta[metaKeyModel])
	p.MetaGender = stringify(meta[metaKeyGender])
	p.MetaSize = stringify(meta[metaKeySize])
	p.MetaWidth = stringify(meta[metaKeyWidth])

	p.GenderFromName = genderFromName(raw.ProductName)

	standardizeColumns(&p)

	return p
}

// colorsFromName extracts the color list from the second comma-separated
// segment of the product name. Names with fewer than three segments carry no
// color information.
func colorsFromName(name string) []string {
	parts := strings.Split(name, ",")
	if len(parts) < 3 {
		return []string{}
	}
	colorStr := strings.TrimSpace(parts[1])
	pieces := strings.Split(colorStr, "/")
	colors := make([]string, 0, len(pieces))
	for _, c := range pieces {
		colors = append(colors, strings.TrimSpace(c))
	}
	return colors
}

// genderFromName scans the product name for a department token.
func genderFromName(name string) string {
	match := genderPattern.FindStringSubmatch(name)
	if match == nil {
		return GenderUnknown
	}
	return match[1]
}

// parseBlob resolves a blob field that may arrive as a JSON object, as a JSON
// string that itself contains JSON, or empty. An empty or missing blob yields
// an empty map; anything unparsable yields an error so the caller can log a
// row-level warning.
func parseBlob(raw json.RawMessage) (map[string]interface{}, error) {
	if len(raw) == 0 {
		return map[string]interface{}{}, nil
	}

	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("invalid blob: %w", err)
	}

	switch val := v.(type) {
	case nil:
		return map[string]interface{}{}, nil
	case map[string]interface{}:
		return val, nil
	case string:
		if strings.TrimSpace(val) == "" {
			return map[string]interface{}{}, nil
		}
		var inner map[string]interface{}
		if err := json.Unmarshal([]byte(val), &inner); err != nil {
			return nil, fmt.Errorf("invalid nested blob: %w", err)
		}
		return inner, nil
	default:
		return map[string]interface{}{}, nil
	}
}

// rawColumnSetters maps raw column names to the typed fields an options key
// of the same name shadows. Options win over the original column value.
var rawColumnSetters = map[string]func(*models.NormalizedProduct, interface{}){
	"product_name": func(p *models.NormalizedProduct, v interface{}) {
		if s, ok := v.(string); ok {
			p.ProductName = s
		}
	},
	"category": func(p *models.NormalizedProduct, v interface{}) {
		if s, ok := v.(string); ok {
			p.Category = s
		}
	},
	"size": func(p *models.NormalizedProduct, v interface{}) {
		if s, ok := v.(string); ok {
			p.Size = s
		}
	},
	"color": func(p *models.NormalizedProduct, v interface{}) {
		if s, ok := v.(string); ok {
			p.Color = s
		}
	},
	"vendor": func(p *models.NormalizedProduct, v interface{}) {
		if s, ok := v.(string); ok {
			p.Vendor = s
		}
	},
	"quantity": func(p *models.NormalizedProduct, v interface{}) {
		if f, ok := v.(float64); ok {
			p.Quantity = int(f)
		}
	},
}

// applyOptions flattens the options blob. Keys matching a raw column shadow
// the carried value; everything else lands in the options attribute map.
func (n *Normalizer) applyOptions(p *models.NormalizedProduct, opts map[string]interface{}) {
	if len(opts) == 0 {
		return
	}
	p.Options = make(map[string]interface{}, len(opts))
	for k, v := range opts {
		if set, ok := rawColumnSetters[k]; ok {
			set(p, v)
			continue
		}
		p.Options[k] = v
	}
	if len(p.Options) == 0 {
		p.Options = nil
	}
}

// standardizeColumns renames ambiguous options-derived keys. Applied only if
// present; never errors if absent.
func standardizeColumns(p *models.NormalizedProduct) {
	for old, renamed := range standardRenames {
		if v, ok := p.Options[old]; ok {
			delete(p.Options, old)
			p.Options[renamed] = v
		}
	}
}

// stringify converts a projected metadata value into its canonical string
// form. Nil stays nil so missing keys remain distinguishable from empty
// strings.
func stringify(v interface{}) *string {
	if v == nil {
		return nil
	}
	var s string
	switch val := v.(type) {
	case string:
		s = val
	case float64:
		s = strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		s = strconv.FormatBool(val)
	default:
		s = fmt.Sprintf("%v", val)
	}
	return &s
}
