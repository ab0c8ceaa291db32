// Package impact quantifies the environmental and economic effect of a
// waste exchange: avoided emissions, water and energy savings, landfill
// volume avoided and the emissions of moving the material.
//
// Nothing here fails. Unknown materials and transport modes degrade to the
// table's default constants so a scoring pass never aborts on one bad
// category.
package impact

import (
	"math"

	"github.com/rshade/circulate/internal/factors"
	"github.com/rshade/circulate/internal/rounding"
)

// Result is the predicted impact of one exchange.
// NetCO2SavedKg equals CO2SavedKg − TransportEmissionsKg and may be negative.
type Result struct {
	CO2SavedKg           float64 `json:"co2_saved_kg" yaml:"co2_saved_kg"`
	WaterSavedLiters     float64 `json:"water_saved_liters" yaml:"water_saved_liters"`
	EnergySavedKWh       float64 `json:"energy_saved_kwh" yaml:"energy_saved_kwh"`
	LandfillAvoidedM3    float64 `json:"landfill_avoided_m3" yaml:"landfill_avoided_m3"`
	TransportEmissionsKg float64 `json:"transport_emissions_kg" yaml:"transport_emissions_kg"`
	NetCO2SavedKg        float64 `json:"net_co2_saved_kg" yaml:"net_co2_saved_kg"`
	// DefaultsUsed is true when the material or transport mode fell back
	// to default constants.
	DefaultsUsed bool `json:"defaults_used" yaml:"defaults_used"`
}

// Calculator evaluates exchanges against one factor table.
type Calculator struct {
	table factors.Table
}

// New returns a Calculator bound to table.
func New(table factors.Table) *Calculator {
	return &Calculator{table: table}
}

// ExchangeImpact computes the impact of moving quantityKg of material over
// distanceKm by mode. A non-positive or non-finite quantity yields a zero
// result; a negative or non-finite distance is treated as zero.
func (c *Calculator) ExchangeImpact(
	material factors.Material,
	quantityKg float64,
	distanceKm float64,
	mode factors.TransportMode,
) Result {
	profile, materialKnown := c.table.Material(material)
	modeFactor, modeKnown := c.table.TransportFactor(mode)
	defaults := !materialKnown || !modeKnown

	if !usable(quantityKg) {
		return Result{DefaultsUsed: defaults}
	}
	if !usable(distanceKm) {
		distanceKm = 0
	}

	credit := quantityKg * profile.RecyclingCreditKg
	transport := distanceKm * (quantityKg / c.table.ToKg(factors.UnitTon)) * modeFactor

	saved := rounding.Round2(credit)
	transportKg := rounding.Round2(transport)
	return Result{
		CO2SavedKg:           saved,
		WaterSavedLiters:     rounding.Round2(quantityKg * profile.WaterLiters),
		EnergySavedKWh:       rounding.Round2(quantityKg * profile.EnergyKWh),
		LandfillAvoidedM3:    rounding.Round2(quantityKg * profile.LandfillM3),
		TransportEmissionsKg: transportKg,
		NetCO2SavedKg:        rounding.Round2(saved - transportKg),
		DefaultsUsed:         defaults,
	}
}

// CircularityRate returns 100 × (exchanged + recycled) / generated, or 0
// when generated is not positive.
func CircularityRate(generated, exchanged, recycled float64) float64 {
	if generated <= 0 || math.IsNaN(generated) {
		return 0
	}
	return rounding.Round2(100 * (exchanged + recycled) / generated)
}

// NormalizeToKg converts value in unit to kilograms. Unknown units pass
// through unconverted.
func (c *Calculator) NormalizeToKg(value float64, unit factors.Unit) float64 {
	return value * c.table.ToKg(unit)
}

func usable(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
