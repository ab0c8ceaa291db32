package matching

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/circulate/internal/factors"
)

func TestHaversine(t *testing.T) {
	london := Point{-0.1278, 51.5074}
	paris := Point{2.3522, 48.8566}

	assert.InDelta(t, 343.5, Haversine(london, paris), 1.5)
	assert.InDelta(t, 0.0, Haversine(london, london), 1e-9)
	assert.InDelta(t, math.Pi*EarthRadiusKm, Haversine(Point{0, 0}, Point{180, 0}), 1e-6)
}

func TestDistanceBetween(t *testing.T) {
	w, n := steelListing(), steelNeed()
	assert.False(t, DistanceBetween(w, n).Known)

	w.Location = &Point{4.90, 52.37}
	n.Location = &Point{4.48, 51.92}
	d := DistanceBetween(w, n)
	assert.True(t, d.Known)
	assert.Greater(t, d.Km, 50.0)
	assert.Less(t, d.Km, 70.0)
}

func pool(n int) []NeedListing {
	needs := make([]NeedListing, n)
	for i := range needs {
		needs[i] = steelNeed()
		needs[i].ID = fmt.Sprintf("n-%02d", i)
		needs[i].CompanyID = fmt.Sprintf("buyer-%02d", i)
	}
	return needs
}

func TestRankMatchesProperties(t *testing.T) {
	e := NewEngine(factors.Default())
	w := steelListing()

	needs := pool(14)
	needs[3].Category = factors.MaterialPlastic // cross-category, discarded
	needs[5].MaxBudgetPerUnit = 1               // ratio 0.3: price 100, scores higher
	needs[9].AcceptedSubTypes = []string{"other"}
	needs[9].MinGrade = factors.GradeIndustrial
	needs[9].MaxBudgetPerUnit = 0.1 // material 70, price 30: composite 64

	r := e.RankMatches(w, needs)

	assert.Equal(t, 14, r.Evaluated)
	assert.Empty(t, r.Failures)
	assert.Equal(t, 2, r.BelowThreshold)
	require.Len(t, r.Matches, MaxResults)

	for i, m := range r.Matches {
		assert.GreaterOrEqual(t, m.Score.Composite, float64(MinScore))
		if i > 0 {
			assert.LessOrEqual(t, m.Score.Composite, r.Matches[i-1].Score.Composite)
		}
		assert.NotEmpty(t, m.ID)
		assert.Greater(t, m.PredictedImpact.CO2SavedKg, 0.0)
	}

	assert.Equal(t, "n-05", r.Matches[0].NeedListingID, "highest score first")
	// Ties keep candidate order.
	var tied []int
	for _, m := range r.Matches[1:] {
		tied = append(tied, m.CandidateIndex)
	}
	assert.Equal(t, []int{0, 1, 2, 4, 6, 7, 8, 10, 11}, tied)
}

func TestRankMatchesIsolatesFailures(t *testing.T) {
	e := NewEngine(factors.Default())
	needs := pool(3)
	needs[1].MaxDistanceKm = math.NaN()

	r := e.RankMatches(steelListing(), needs)

	require.Len(t, r.Failures, 1)
	assert.Equal(t, 1, r.Failures[0].CandidateIndex)
	assert.Equal(t, "n-01", r.Failures[0].NeedListingID)
	assert.Len(t, r.Matches, 2)
}

func TestRankMatchesAttachesImpact(t *testing.T) {
	e := NewEngine(factors.Default())
	w := steelListing()
	w.Quantity = 1
	w.Unit = factors.UnitTon
	w.Location = &Point{0, 0}

	n := steelNeed()
	n.Location = &Point{0, 0.45} // about 50 km north
	n.Transport = factors.TransportRail

	r := e.RankMatches(w, []NeedListing{n})
	require.Len(t, r.Matches, 1)

	m := r.Matches[0]
	require.True(t, m.Distance.Known)
	want := e.impact.ExchangeImpact(factors.MaterialSteel, 1000, m.Distance.Km, factors.TransportRail)
	assert.Equal(t, want, m.PredictedImpact)
	assert.InDelta(t, m.PredictedImpact.CO2SavedKg-m.PredictedImpact.TransportEmissionsKg,
		m.PredictedImpact.NetCO2SavedKg, 1e-9)
}

func TestRankMatchesDeterministic(t *testing.T) {
	e := NewEngine(factors.Default())
	w := steelListing()
	needs := pool(12)

	a := e.RankMatches(w, needs)
	b := NewEngine(factors.Default()).RankMatches(w, needs)

	assert.Equal(t, a, b)
}

func TestRankMatchesEmptyPool(t *testing.T) {
	r := NewEngine(factors.Default()).RankMatches(steelListing(), nil)
	assert.Empty(t, r.Matches)
	assert.Zero(t, r.Evaluated)
}
