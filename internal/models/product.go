// internal/models/product.go
package models

import "encoding/json"

// RawProduct is one catalog row as supplied by the acquisition layer. The
// options and metadata blobs stay unparsed until normalization; everything
// downstream of the normalizer works with NormalizedProduct only.
type RawProduct struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	PartnerID   int             `json:"partnerId"`
	Category    string          `json:"category"`
	Size        string          `json:"size"`
	Color       string          `json:"color"`
	Quantity    int             `json:"quantity"`
	Options     json.RawMessage `json:"options,omitempty"`
	Vendor      string          `json:"vendor"`
	Metadata    json.RawMessage `json:"metadata,omitempty"`
}

// NormalizedProduct is the flat, uniformly typed view of a RawProduct. One
// NormalizedProduct is produced per RawProduct; rows are never dropped during
// normalization.
type NormalizedProduct struct {
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
	PartnerID   int    `json:"partnerId"`
	Category    string `json:"category"`
	Size        string `json:"size"`
	Color       string `json:"color"`
	Quantity    int    `json:"quantity"`
	Vendor      string `json:"vendor"`

	// Derived from the product name.
	GenderFromName string   `json:"genderFromName"`
	ColorsFromName []string `json:"colorsFromName"`

	// Flattened options blob. Ambiguous keys (Size, Color, Width, Model,
	// first_word, Department) are renamed with a _from_options/_from_name
	// suffix so they never collide with the metadata projections below.
	Options map[string]interface{} `json:"options,omitempty"`

	// Canonical metadata projections. Nil when the metadata blob was missing,
	// unparsable, or did not carry the key.
	MetaColor  *string `json:"metaColor,omitempty"`
	MetaModel  *string `json:"metaModel,omitempty"`
	MetaGender *string `json:"metaGender,omitempty"`
	MetaSize   *string `json:"metaSize,omitempty"`
	MetaWidth  *string `json:"metaWidth,omitempty"`
}

// ScoredProduct is a NormalizedProduct with the per-query derived fields. It
// is created during matching and discarded once the caller consumes the
// result list; the derived fields are never written back into the shared
// normalized batch.
type ScoredProduct struct {
	NormalizedProduct

	SizeMin float64 `json:"sizeMin"`
	SizeMax float64 `json:"sizeMax"`
	IsRange bool    `json:"isRange"`
	Score   float64 `json:"score"`
}
