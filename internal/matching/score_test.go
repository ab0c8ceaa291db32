package matching

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/circulate/internal/factors"
)

func price(v float64) *float64 { return &v }

func steelListing() WasteListing {
	return WasteListing{
		ID:           "w-1",
		CompanyID:    "acme",
		Category:     factors.MaterialSteel,
		SubType:      "hms1",
		Quantity:     1000,
		Unit:         factors.UnitKg,
		Grade:        factors.GradeIndustrial,
		PricePerUnit: price(0.30),
	}
}

func steelNeed() NeedListing {
	return NeedListing{
		ID:               "n-1",
		CompanyID:        "foundry",
		Category:         factors.MaterialSteel,
		AcceptedSubTypes: []string{"hms1", "hms2"},
		MinGrade:         factors.GradeCommercial,
		MinQuantity:      500,
		MaxQuantity:      1500,
		Unit:             factors.UnitKg,
		MaxBudgetPerUnit: 0.30,
		MaxDistanceKm:    200,
	}
}

func TestScoreMatchScenario(t *testing.T) {
	e := NewEngine(factors.Default())

	s, err := e.ScoreMatch(steelListing(), steelNeed(), KnownDistance(50))
	require.NoError(t, err)

	assert.InDelta(t, 100.0, s.MaterialCompatibility, 0)
	assert.InDelta(t, 100.0, s.QuantityFit, 0)
	assert.InDelta(t, 90.0, s.PriceCompatibility, 0)
	assert.InDelta(t, 100.0, s.DistanceScore, 0)
	assert.InDelta(t, 50.0, s.ReliabilityScore, 0)
	assert.InDelta(t, 93.0, s.Composite, 0)
	assert.GreaterOrEqual(t, s.Composite, float64(MinScore))
}

func TestMaterialCompatibility(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*WasteListing, *NeedListing)
		want   float64
	}{
		{name: "accepted sub-type and grade", mutate: func(*WasteListing, *NeedListing) {}, want: 100},
		{
			name:   "different category gates to zero",
			mutate: func(w *WasteListing, _ *NeedListing) { w.Category = factors.MaterialCopper },
			want:   0,
		},
		{
			name:   "no sub-type restriction",
			mutate: func(_ *WasteListing, n *NeedListing) { n.AcceptedSubTypes = nil },
			want:   90,
		},
		{
			name:   "sub-type not in accepted set",
			mutate: func(w *WasteListing, _ *NeedListing) { w.SubType = "shredded" },
			want:   70,
		},
		{
			name:   "grade below minimum",
			mutate: func(w *WasteListing, _ *NeedListing) { w.Grade = factors.GradeMixed },
			want:   90,
		},
		{
			name:   "hazardous not accepted",
			mutate: func(w *WasteListing, _ *NeedListing) { w.Hazardous = true },
			want:   0,
		},
		{
			name: "hazardous accepted",
			mutate: func(w *WasteListing, n *NeedListing) {
				w.Hazardous = true
				n.AcceptsHazardous = true
			},
			want: 100,
		},
		{
			name:   "excluded sub-type overrides everything",
			mutate: func(_ *WasteListing, n *NeedListing) { n.ExcludedSubTypes = []string{"HMS1"} },
			want:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, n := steelListing(), steelNeed()
			tt.mutate(&w, &n)
			assert.InDelta(t, tt.want, materialCompatibility(w, n), 0)
		})
	}
}

func TestQuantityFit(t *testing.T) {
	n := steelNeed() // [500, 1500] kg

	tests := []struct {
		name string
		kg   float64
		want float64
	}{
		{name: "inside range", kg: 1000, want: 100},
		{name: "at max", kg: 1500, want: 100},
		{name: "excess within 1.5x", kg: 2250, want: 80},
		{name: "beyond 1.5x max", kg: 2251, want: 60},
		{name: "partial fill", kg: 250, want: 50},
		{name: "well below min", kg: 249, want: 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, quantityFit(tt.kg, 1, n), 0)
		})
	}

	t.Run("units normalised", func(t *testing.T) {
		e := NewEngine(factors.Default())
		w := steelListing()
		w.Quantity = 1
		w.Unit = factors.UnitTon
		s, err := e.ScoreMatch(w, n, Distance{})
		require.NoError(t, err)
		assert.InDelta(t, 100.0, s.QuantityFit, 0)
	})

	t.Run("no maximum", func(t *testing.T) {
		open := n
		open.MaxQuantity = 0
		assert.InDelta(t, 100.0, quantityFit(1e9, 1, open), 0)
	})
}

func TestPriceCompatibility(t *testing.T) {
	tests := []struct {
		name   string
		price  *float64
		budget float64
		want   float64
	}{
		{name: "unpriced", price: nil, budget: 10, want: 100},
		{name: "free", price: price(0), budget: 10, want: 100},
		{name: "no budget ceiling", price: price(50), budget: 0, want: 100},
		{name: "well under budget", price: price(8), budget: 10, want: 100},
		{name: "at budget", price: price(10), budget: 10, want: 90},
		{name: "ten percent over", price: price(11), budget: 10, want: 70},
		{name: "twenty percent over", price: price(12), budget: 10, want: 50},
		{name: "far over", price: price(20), budget: 10, want: 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := steelListing()
			w.PricePerUnit = tt.price
			n := steelNeed()
			n.MaxBudgetPerUnit = tt.budget
			assert.InDelta(t, tt.want, priceCompatibility(w, n), 0)
		})
	}
}

func TestDistanceScore(t *testing.T) {
	tests := []struct {
		name string
		d    Distance
		max  float64
		want float64
	}{
		{name: "close", d: KnownDistance(30), max: 100, want: 100},
		{name: "half", d: KnownDistance(50), max: 100, want: 90},
		{name: "eighty percent", d: KnownDistance(80), max: 100, want: 75},
		{name: "at max", d: KnownDistance(100), max: 100, want: 60},
		{name: "slightly beyond", d: KnownDistance(120), max: 100, want: 40},
		{name: "far beyond", d: KnownDistance(500), max: 100, want: 20},
		{name: "no max declared", d: KnownDistance(10), max: 0, want: 50},
		{name: "unknown distance", d: Distance{}, max: 100, want: 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, distanceScore(tt.d, tt.max), 0)
		})
	}
}

func TestReliabilityScore(t *testing.T) {
	w, n := steelListing(), steelNeed()
	assert.InDelta(t, 50.0, reliabilityScore(w, n), 0, "both unrated")

	w.Seller = Rated(5)
	assert.InDelta(t, 50.0, reliabilityScore(w, n), 0, "buyer unrated")

	n.Buyer = Rated(4)
	assert.InDelta(t, 90.0, reliabilityScore(w, n), 0)

	n.CompanyID = ""
	assert.InDelta(t, 50.0, reliabilityScore(w, n), 0, "missing identifier")

	avg, ok := Rated(2.5).Average()
	assert.True(t, ok)
	assert.InDelta(t, 2.5, avg, 0)
	_, ok = Unrated.Average()
	assert.False(t, ok)
	assert.NotEqual(t, Unrated, Rated(2.5), "a genuine 2.5 rating is not the unrated state")
}

func TestScoreBoundsAndCrossCategory(t *testing.T) {
	e := NewEngine(factors.Default())
	materials := []factors.Material{factors.MaterialSteel, factors.MaterialPlastic, factors.MaterialOther}
	quantities := []float64{1, 400, 1000, 5000}
	prices := []*float64{nil, price(0.1), price(100)}

	for _, wm := range materials {
		for _, nm := range materials {
			for _, q := range quantities {
				for _, p := range prices {
					w := steelListing()
					w.Category, w.Quantity, w.PricePerUnit = wm, q, p
					w.Seller = Rated(5)
					n := steelNeed()
					n.Category = nm
					n.Buyer = Rated(5)

					s, err := e.ScoreMatch(w, n, KnownDistance(10))
					require.NoError(t, err)
					assert.GreaterOrEqual(t, s.Composite, 0.0)
					assert.LessOrEqual(t, s.Composite, 100.0)
					if wm != nm {
						assert.InDelta(t, 0.0, s.MaterialCompatibility, 0)
						assert.Less(t, s.Composite, float64(MinScore))
					}
				}
			}
		}
	}
}

func TestScoreMatchRejectsInvalidListings(t *testing.T) {
	e := NewEngine(factors.Default())

	tests := []struct {
		name   string
		mutate func(*WasteListing, *NeedListing)
		field  string
	}{
		{name: "zero quantity", mutate: func(w *WasteListing, _ *NeedListing) { w.Quantity = 0 }, field: "quantity"},
		{name: "NaN price", mutate: func(w *WasteListing, _ *NeedListing) { w.PricePerUnit = price(math.NaN()) }, field: "price_per_unit"},
		{name: "inverted range", mutate: func(_ *WasteListing, n *NeedListing) { n.MinQuantity = 2000 }, field: "quantity_range"},
		{name: "bad coordinates", mutate: func(w *WasteListing, _ *NeedListing) { w.Location = &Point{200, 10} }, field: "location"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, n := steelListing(), steelNeed()
			tt.mutate(&w, &n)
			_, err := e.ScoreMatch(w, n, Distance{})
			require.ErrorIs(t, err, ErrInvalidListing)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}
