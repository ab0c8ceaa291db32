// Package emissions converts raw facility inputs into scope 1, 2 and 3
// CO2-equivalent emissions using the fixed factors of a factors.Table.
//
// Every function is pure: inputs are validated at the boundary and reported
// as *InvalidInputError, never clamped. Results are rounded to two decimals
// using round-half-up.
package emissions

import "github.com/rshade/circulate/internal/factors"

// Scope is a GHG Protocol emissions scope.
type Scope int

const (
	// Scope1 is direct combustion.
	Scope1 Scope = 1
	// Scope2 is purchased electricity.
	Scope2 Scope = 2
	// Scope3 is supply chain and other indirect emissions, including waste disposal.
	Scope3 Scope = 3
)

// FuelUse is one metered fuel quantity. Liquid fuels are in liters (or
// cubic meters); natural gas and coal are in kg or tons.
type FuelUse struct {
	Type     factors.FuelType `json:"type" yaml:"type"`
	Quantity float64          `json:"quantity" yaml:"quantity"`
	Unit     factors.Unit     `json:"unit,omitempty" yaml:"unit,omitempty"`
}

// WasteStream is a disposed waste quantity. Landfilled streams emit methane
// in proportion to OrganicFraction; incinerated streams emit by WasteType,
// reduced by EnergyRecovery.
type WasteStream struct {
	Name            string            `json:"name" yaml:"name"`
	Type            factors.WasteType `json:"type" yaml:"type"`
	Quantity        float64           `json:"quantity" yaml:"quantity"`
	Unit            factors.Unit      `json:"unit,omitempty" yaml:"unit,omitempty"`
	Disposal        factors.Disposal  `json:"disposal" yaml:"disposal"`
	OrganicFraction float64           `json:"organic_fraction,omitempty" yaml:"organic_fraction,omitempty"`
	EnergyRecovery  float64           `json:"energy_recovery,omitempty" yaml:"energy_recovery,omitempty"`
}

// Profile is the immutable input snapshot for TotalCarbon.
type Profile struct {
	ElectricityKWh float64              `json:"electricity_kwh" yaml:"electricity_kwh"`
	Grid           factors.GridCategory `json:"grid" yaml:"grid"`
	Fuels          []FuelUse            `json:"fuels,omitempty" yaml:"fuels,omitempty"`
	Waste          []WasteStream        `json:"waste,omitempty" yaml:"waste,omitempty"`
	SupplyChainKg  float64              `json:"supply_chain_kg,omitempty" yaml:"supply_chain_kg,omitempty"`
}

// Term is one contributing line of the audit trail.
type Term struct {
	Source  string  `json:"source" yaml:"source"`
	Scope   Scope   `json:"scope" yaml:"scope"`
	Formula string  `json:"formula" yaml:"formula"`
	KgCO2e  float64 `json:"kg_co2e" yaml:"kg_co2e"`
}

// Result is the total-carbon aggregate. TotalCO2e equals
// Scope1 + Scope2 + Scope3.
type Result struct {
	Scope1         float64            `json:"scope1" yaml:"scope1"`
	Scope2         float64            `json:"scope2" yaml:"scope2"`
	Scope3         float64            `json:"scope3" yaml:"scope3"`
	TotalCO2e      float64            `json:"total_co2e" yaml:"total_co2e"`
	Breakdown      map[string]float64 `json:"breakdown" yaml:"breakdown"`
	Trace          []Term             `json:"trace" yaml:"trace"`
	FactorsVersion string             `json:"factors_version" yaml:"factors_version"`
}

// Methane is the output of the landfill model.
type Methane struct {
	CH4Kg  float64 `json:"ch4_kg" yaml:"ch4_kg"`
	CO2eKg float64 `json:"co2e_kg" yaml:"co2e_kg"`
}
