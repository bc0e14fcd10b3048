// internal/pipeline/matcher/matcher_test.go
package matcher

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shoe-recommender/internal/common/errors"
	"shoe-recommender/internal/common/logger"
	"shoe-recommender/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

func newTestMatcher(t *testing.T) *Matcher {
	return New(logger.NewTestLogger(t))
}

func strPtr(s string) *string {
	return &s
}

type productSpec struct {
	id       string
	gender   string
	size     string
	width    string
	vendor   string
	model    string
	color    string
	quantity int
}

func normProduct(spec productSpec) models.NormalizedProduct {
	p := models.NormalizedProduct{
		ProductID:      spec.id,
		ProductName:    spec.id,
		GenderFromName: spec.gender,
		Vendor:         spec.vendor,
		Quantity:       spec.quantity,
	}
	if spec.size != "" {
		p.MetaSize = strPtr(spec.size)
	}
	if spec.width != "" {
		p.MetaWidth = strPtr(spec.width)
	}
	if spec.model != "" {
		p.MetaModel = strPtr(spec.model)
	}
	if spec.color != "" {
		p.MetaColor = strPtr(spec.color)
	}
	return p
}

func mensShoe(id, size string) models.NormalizedProduct {
	return normProduct(productSpec{id: id, gender: "Men's", size: size, quantity: 5})
}

// ==========================
// Query Validation
// ==========================

func TestRecommend_InvalidQuery(t *testing.T) {
	m := newTestMatcher(t)
	products := []models.NormalizedProduct{mensShoe("p1", "9")}

	tests := []struct {
		name  string
		query models.Query
	}{
		{"NaN target size", models.Query{Gender: "Men's", Size: math.NaN()}},
		{"infinite target size", models.Query{Gender: "Men's", Size: math.Inf(1)}},
		{"negative limit", models.Query{Gender: "Men's", Size: 9, Limit: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := m.Recommend(products, tt.query)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidQuery))
			assert.Nil(t, results)
		})
	}
}

// ==========================
// Filter Stages
// ==========================

func TestRecommend_GenderFilter(t *testing.T) {
	m := newTestMatcher(t)
	products := []models.NormalizedProduct{
		normProduct(productSpec{id: "m1", gender: "Men's", size: "9", quantity: 1}),
		normProduct(productSpec{id: "w1", gender: "Women's", size: "9", quantity: 1}),
		normProduct(productSpec{id: "u1", gender: "Unknown", size: "9", quantity: 1}),
	}

	results, err := m.Recommend(products, models.Query{Gender: "men's", Size: 9})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "m1", results[0].ProductID)
}

func TestRecommend_GenderDataAbsent(t *testing.T) {
	m := newTestMatcher(t)

	// A batch where no row carries derived gender data is a schema mismatch:
	// empty result, not an error.
	products := []models.NormalizedProduct{
		{ProductID: "p1", MetaSize: strPtr("9")},
		{ProductID: "p2", MetaSize: strPtr("9")},
	}

	results, err := m.Recommend(products, models.Query{Gender: "Men's", Size: 9})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestRecommend_EmptyBatch(t *testing.T) {
	m := newTestMatcher(t)
	results, err := m.Recommend(nil, models.Query{Gender: "Men's", Size: 9})
	require.NoError(t, err)
	require.NotNil(t, results)
	assert.Empty(t, results)
}

func TestRecommend_SizeFilter(t *testing.T) {
	m := newTestMatcher(t)
	products := []models.NormalizedProduct{
		mensShoe("in-range", "9-10"),
		mensShoe("exact", "9.5"),
		mensShoe("too-small", "7"),
		mensShoe("unparsable", "large"),
		normProduct(productSpec{id: "no-size", gender: "Men's", quantity: 5}),
	}

	results, err := m.Recommend(products, models.Query{Gender: "Men's", Size: 9.5})
	require.NoError(t, err)

	ids := make([]string, 0, len(results))
	for _, r := range results {
		ids = append(ids, r.ProductID)
	}
	assert.ElementsMatch(t, []string{"in-range", "exact"}, ids)
}

func TestRecommend_BrandFilter(t *testing.T) {
	m := newTestMatcher(t)
	products := []models.NormalizedProduct{
		normProduct(productSpec{id: "kayano", gender: "Men's", size: "9", vendor: "Asics", model: "Gel-Kayano 30", quantity: 2}),
		normProduct(productSpec{id: "nimbus", gender: "Men's", size: "9", vendor: "Asics", model: "Gel-Nimbus 26", quantity: 2}),
		normProduct(productSpec{id: "ghost", gender: "Men's", size: "9", vendor: "Brooks", model: "Ghost 15", quantity: 2}),
	}

	tests := []struct {
		name    string
		prefs   map[string]models.BrandPreference
		wantIDs []string
	}{
		{
			name:    "required model substring",
			prefs:   map[string]models.BrandPreference{"Asics": {Models: []string{"Gel-Kayano"}}},
			wantIDs: []string{"kayano"},
		},
		{
			name:    "excluded model substring",
			prefs:   map[string]models.BrandPreference{"Asics": {Exclude: []string{"Nimbus"}}},
			wantIDs: []string{"kayano"},
		},
		{
			name:    "brand only keeps all models of that vendor",
			prefs:   map[string]models.BrandPreference{"asics": {}},
			wantIDs: []string{"kayano", "nimbus"},
		},
		{
			name:    "vendor outside preferences dropped",
			prefs:   map[string]models.BrandPreference{"New Balance": {}},
			wantIDs: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := m.Recommend(products, models.Query{
				Gender: "Men's", Size: 9, BrandPreferences: tt.prefs,
			})
			require.NoError(t, err)
			ids := make([]string, 0, len(results))
			for _, r := range results {
				ids = append(ids, r.ProductID)
			}
			assert.ElementsMatch(t, tt.wantIDs, ids)
		})
	}
}

// ==========================
// Scoring Scenarios
// ==========================

func TestRecommend_ScenarioA_SizeRange(t *testing.T) {
	m := newTestMatcher(t)
	products := []models.NormalizedProduct{mensShoe("p1", "9-10")}

	results, err := m.Recommend(products, models.Query{Gender: "Men's", Size: 9.5})
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.True(t, results[0].IsRange)
	assert.InDelta(t, 18.75, results[0].Score, 1e-9)
}

func TestRecommend_ScenarioB_TrailingDotExact(t *testing.T) {
	m := newTestMatcher(t)
	products := []models.NormalizedProduct{mensShoe("p1", "9.")}

	results, err := m.Recommend(products, models.Query{Gender: "Men's", Size: 9.5})
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.False(t, results[0].IsRange)
	assert.InDelta(t, 9.0, results[0].SizeMin, 1e-9)
	assert.InDelta(t, 10.0, results[0].SizeMax, 1e-9)
	assert.InDelta(t, 31.25, results[0].Score, 1e-9)
}

func TestRecommend_SizeOffByHalf(t *testing.T) {
	m := newTestMatcher(t)
	products := []models.NormalizedProduct{mensShoe("p1", "9")}

	results, err := m.Recommend(products, models.Query{Gender: "Men's", Size: 9.5})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.InDelta(t, 21.875, results[0].Score, 1e-9)
}

func TestRecommend_ScenarioC_CompatibleWidth(t *testing.T) {
	m := newTestMatcher(t)
	products := []models.NormalizedProduct{
		normProduct(productSpec{id: "p1", gender: "Men's", size: "9-10", width: "extra wide", quantity: 1}),
	}

	results, err := m.Recommend(products, models.Query{Gender: "Men's", Size: 9.5, Width: "wide"})
	require.NoError(t, err)
	require.Len(t, results, 1)

	// 18.75 size range + 6.25 compatible width
	assert.InDelta(t, 25.0, results[0].Score, 1e-9)
}

func TestRecommend_ExactWidth(t *testing.T) {
	m := newTestMatcher(t)
	products := []models.NormalizedProduct{
		normProduct(productSpec{id: "p1", gender: "Men's", size: "9-10", width: "Wide", quantity: 1}),
	}

	results, err := m.Recommend(products, models.Query{Gender: "Men's", Size: 9.5, Width: "wide"})
	require.NoError(t, err)
	require.Len(t, results, 1)

	// 18.75 size range + 12.5 exact width
	assert.InDelta(t, 31.25, results[0].Score, 1e-9)
}

func TestRecommend_ScenarioD_BrandAndModel(t *testing.T) {
	m := newTestMatcher(t)
	products := []models.NormalizedProduct{
		normProduct(productSpec{id: "p1", gender: "Men's", size: "9-10", vendor: "Asics", model: "Gel-Kayano 30", quantity: 1}),
	}

	results, err := m.Recommend(products, models.Query{
		Gender: "Men's", Size: 9.5,
		BrandPreferences: map[string]models.BrandPreference{
			"Asics": {Models: []string{"Gel-Kayano"}},
		},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)

	// 18.75 size range + 25 brand + 25 required model
	assert.InDelta(t, 68.75, results[0].Score, 1e-9)
}

func TestRecommend_ScenarioE_ColorRank(t *testing.T) {
	m := newTestMatcher(t)
	products := []models.NormalizedProduct{
		normProduct(productSpec{id: "p1", gender: "Men's", size: "9-10", color: "Blue/Grey", quantity: 1}),
	}

	results, err := m.Recommend(products, models.Query{
		Gender: "Men's", Size: 9.5,
		ColorPreferences: []string{"White", "Blue"},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)

	// 18.75 size range + (6.25 - 1.25) for a rank-1 color match
	assert.InDelta(t, 23.75, results[0].Score, 1e-9)
}

func TestRecommend_ColorFirstMatchingRankOnly(t *testing.T) {
	m := newTestMatcher(t)
	products := []models.NormalizedProduct{
		normProduct(productSpec{id: "p1", gender: "Men's", size: "9-10", color: "White/Blue", quantity: 1}),
	}

	results, err := m.Recommend(products, models.Query{
		Gender: "Men's", Size: 9.5,
		ColorPreferences: []string{"White", "Blue"},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)

	// Rank 0 matches first; rank 1 must not also contribute.
	assert.InDelta(t, 18.75+6.25, results[0].Score, 1e-9)
}

func TestRecommend_ColorRankBeyondFourGoesNegative(t *testing.T) {
	m := newTestMatcher(t)
	products := []models.NormalizedProduct{
		normProduct(productSpec{id: "p1", gender: "Men's", size: "9-10", color: "Teal", quantity: 1}),
	}

	prefs := []string{"White", "Blue", "Red", "Black", "Green", "Teal"}
	results, err := m.Recommend(products, models.Query{
		Gender: "Men's", Size: 9.5,
		ColorPreferences: prefs,
	})
	require.NoError(t, err)
	require.Len(t, results, 1)

	// Rank 5: 6.25 - 1.25*5 = 0 per-component, and rank 6+ would subtract.
	assert.InDelta(t, 18.75+0.0, results[0].Score, 1e-9)
}

func TestRecommend_ScenarioF_UnrecognizedWidth(t *testing.T) {
	m := newTestMatcher(t)
	products := []models.NormalizedProduct{
		normProduct(productSpec{id: "p1", gender: "Men's", size: "9-10", width: "wide", quantity: 1}),
	}

	results, err := m.Recommend(products, models.Query{Gender: "Men's", Size: 9.5, Width: "green"})
	require.NoError(t, err)
	require.NotNil(t, results)
	assert.Empty(t, results)
}

// ==========================
// Ranking Properties
// ==========================

func TestRecommend_OrderingAndLimit(t *testing.T) {
	m := newTestMatcher(t)
	products := []models.NormalizedProduct{
		normProduct(productSpec{id: "range", gender: "Men's", size: "9-10", quantity: 3}),
		normProduct(productSpec{id: "exact", gender: "Men's", size: "9.5", quantity: 1}),
		normProduct(productSpec{id: "range-high-qty", gender: "Men's", size: "8-11", quantity: 9}),
		normProduct(productSpec{id: "half-off", gender: "Men's", size: "9", quantity: 4}),
	}

	results, err := m.Recommend(products, models.Query{Gender: "Men's", Size: 9.5, Limit: 3})
	require.NoError(t, err)
	require.Len(t, results, 3)

	// Scores non-increasing; ties broken by non-increasing quantity.
	for i := 1; i < len(results); i++ {
		if results[i-1].Score == results[i].Score {
			assert.GreaterOrEqual(t, results[i-1].Quantity, results[i].Quantity)
		} else {
			assert.Greater(t, results[i-1].Score, results[i].Score)
		}
	}

	// Exact size beats half-off beats range; range tie resolved by quantity.
	assert.Equal(t, "exact", results[0].ProductID)
	assert.Equal(t, "half-off", results[1].ProductID)
	assert.Equal(t, "range-high-qty", results[2].ProductID)
}

func TestRecommend_DefaultLimit(t *testing.T) {
	m := newTestMatcher(t)

	products := make([]models.NormalizedProduct, 0, 15)
	for i := 0; i < 15; i++ {
		p := mensShoe("p", "9-10")
		p.ProductID = p.ProductID + strings.Repeat("x", i)
		products = append(products, p)
	}

	results, err := m.Recommend(products, models.Query{Gender: "Men's", Size: 9.5})
	require.NoError(t, err)
	assert.Len(t, results, models.DefaultLimit)
}

func TestRecommend_ResultsSatisfyAllFilters(t *testing.T) {
	m := newTestMatcher(t)

	products := []models.NormalizedProduct{
		normProduct(productSpec{id: "p1", gender: "Men's", size: "9-10", width: "wide", vendor: "Asics", model: "Gel-Kayano 30", color: "Blue/Grey", quantity: 5}),
		normProduct(productSpec{id: "p2", gender: "Men's", size: "9-10", width: "narrow", vendor: "Asics", model: "Gel-Kayano 30", quantity: 5}),
		normProduct(productSpec{id: "p3", gender: "Women's", size: "9-10", width: "wide", vendor: "Asics", model: "Gel-Kayano 30", quantity: 5}),
		normProduct(productSpec{id: "p4", gender: "Men's", size: "5", width: "wide", vendor: "Asics", model: "Gel-Kayano 30", quantity: 5}),
		normProduct(productSpec{id: "p5", gender: "Men's", size: "9-10", width: "wide", vendor: "Brooks", model: "Ghost 15", quantity: 5}),
	}

	query := models.Query{
		Gender: "Men's",
		Size:   9.5,
		Width:  "wide",
		BrandPreferences: map[string]models.BrandPreference{
			"Asics": {Models: []string{"Gel-Kayano"}},
		},
	}

	results, err := m.Recommend(products, query)
	require.NoError(t, err)
	require.Len(t, results, 1)

	// Post-hoc re-check of every filter against the surviving row.
	for _, r := range results {
		assert.Equal(t, "men's", strings.ToLower(r.GenderFromName))
		assert.LessOrEqual(t, r.SizeMin, query.Size)
		assert.GreaterOrEqual(t, r.SizeMax, query.Size)
		require.NotNil(t, r.MetaWidth)
		assert.Equal(t, "wide", strings.ToLower(*r.MetaWidth))
		assert.Equal(t, "asics", strings.ToLower(r.Vendor))
		require.NotNil(t, r.MetaModel)
		assert.Contains(t, strings.ToLower(*r.MetaModel), "gel-kayano")
	}
}

func TestRecommend_DoesNotMutateInput(t *testing.T) {
	m := newTestMatcher(t)

	products := []models.NormalizedProduct{
		normProduct(productSpec{id: "p1", gender: "Men's", size: "9-10", quantity: 5}),
	}
	original := make([]models.NormalizedProduct, len(products))
	copy(original, products)

	_, err := m.Recommend(products, models.Query{Gender: "Men's", Size: 9.5})
	require.NoError(t, err)
	assert.Equal(t, original, products, "the shared normalized batch must stay read-only")
}
