package impact

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rshade/circulate/internal/factors"
)

func TestExchangeImpact(t *testing.T) {
	c := New(factors.Default())

	got := c.ExchangeImpact(factors.MaterialSteel, 1000, 50, factors.TransportRoad)

	assert.InDelta(t, 1460.00, got.CO2SavedKg, 1e-9)
	assert.InDelta(t, 40000.00, got.WaterSavedLiters, 1e-9)
	assert.InDelta(t, 4000.00, got.EnergySavedKWh, 1e-9)
	assert.InDelta(t, 1.50, got.LandfillAvoidedM3, 1e-9)
	assert.InDelta(t, 5.25, got.TransportEmissionsKg, 1e-9) // 50 km × 1 t × 0.105
	assert.InDelta(t, 1454.75, got.NetCO2SavedKg, 1e-9)
	assert.False(t, got.DefaultsUsed)
}

func TestExchangeImpactNetMayBeNegative(t *testing.T) {
	c := New(factors.Default())

	// Glass flown a long way: transport dominates the recycling credit.
	got := c.ExchangeImpact(factors.MaterialGlass, 1000, 5000, factors.TransportAir)

	assert.Less(t, got.NetCO2SavedKg, 0.0)
	assert.InDelta(t, got.CO2SavedKg-got.TransportEmissionsKg, got.NetCO2SavedKg, 1e-9)
}

func TestExchangeImpactFallsBack(t *testing.T) {
	c := New(factors.Default())
	def := factors.Default()

	got := c.ExchangeImpact(factors.MaterialOther, 1000, 20, factors.TransportOther)

	assert.True(t, got.DefaultsUsed)
	assert.InDelta(t, 1000*def.DefaultMaterial.RecyclingCreditKg, got.CO2SavedKg, 1e-9)
	assert.InDelta(t, 20*def.DefaultTransport, got.TransportEmissionsKg, 1e-9)
}

func TestExchangeImpactDegenerateInputs(t *testing.T) {
	c := New(factors.Default())

	assert.Equal(t, Result{}, c.ExchangeImpact(factors.MaterialSteel, 0, 10, factors.TransportRoad))
	assert.Equal(t, Result{}, c.ExchangeImpact(factors.MaterialSteel, math.NaN(), 10, factors.TransportRoad))

	noTransport := c.ExchangeImpact(factors.MaterialSteel, 100, -40, factors.TransportRoad)
	assert.InDelta(t, 0.0, noTransport.TransportEmissionsKg, 0)
	assert.InDelta(t, noTransport.CO2SavedKg, noTransport.NetCO2SavedKg, 0)
}

func TestNetInvariant(t *testing.T) {
	c := New(factors.Default())
	materials := []factors.Material{factors.MaterialSteel, factors.MaterialPlastic, factors.MaterialOrganic, factors.MaterialOther}
	modes := []factors.TransportMode{factors.TransportRoad, factors.TransportRail, factors.TransportSea, factors.TransportAir}

	for _, m := range materials {
		for _, mode := range modes {
			r := c.ExchangeImpact(m, 1234.5, 321.7, mode)
			assert.InDelta(t, r.CO2SavedKg-r.TransportEmissionsKg, r.NetCO2SavedKg, 1e-9, "%s by %s", m, mode)
		}
	}
}

func TestCircularityRate(t *testing.T) {
	tests := []struct {
		name                           string
		generated, exchanged, recycled float64
		want                           float64
	}{
		{name: "nothing generated", generated: 0, exchanged: 10, recycled: 10, want: 0},
		{name: "half circular", generated: 200, exchanged: 50, recycled: 50, want: 50},
		{name: "rounded to two decimals", generated: 3, exchanged: 1, recycled: 0, want: 33.33},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CircularityRate(tt.generated, tt.exchanged, tt.recycled), 1e-9)
		})
	}
}

func TestNormalizeToKg(t *testing.T) {
	c := New(factors.Default())

	assert.InDelta(t, 2000.0, c.NormalizeToKg(2, factors.UnitTon), 0)
	assert.InDelta(t, 3000.0, c.NormalizeToKg(3, factors.UnitCubicMeter), 0)
	assert.InDelta(t, 5.0, c.NormalizeToKg(5, factors.UnitLiter), 0)
	assert.InDelta(t, 7.0, c.NormalizeToKg(7, factors.UnitOther), 0, "unknown units pass through")
}
