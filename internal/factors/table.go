// Package factors is the versioned constants table behind every calculator:
// grid and fuel emission factors, IPCC landfill constants, incineration and
// material recycling factors, transport factors, unit conversions and the
// statistical constants used for forecasting.
//
// Tables are plain values. Default returns a fresh copy on every call so
// calculators never share mutable state.
package factors

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// DefaultVersion is the version of the factor set returned by Default.
const DefaultVersion = "2.1.0"

// Landfill holds the IPCC first-order-decay parameters used for landfill methane.
type Landfill struct {
	DOC                float64 // degradable organic carbon fraction
	DOCf               float64 // fraction of DOC that decomposes
	MethaneFraction    float64 // CH4 fraction of landfill gas (F)
	StoichiometricRate float64 // CH4/C mass ratio, 16/12
	MCF                float64 // methane correction factor
	Recovery           float64 // fraction of CH4 recovered
	GWP                float64 // CH4 global warming potential
	Oxidation          float64 // fraction oxidised in cover soil
}

// MaterialProfile is the per-kg benefit of recycling or reusing a material.
type MaterialProfile struct {
	RecyclingCreditKg float64 `json:"recycling_credit_kg" yaml:"recycling_credit_kg"` // kg CO2e avoided per kg
	WaterLiters       float64 `json:"water_liters" yaml:"water_liters"`               // liters saved per kg
	EnergyKWh         float64 `json:"energy_kwh" yaml:"energy_kwh"`                   // kWh saved per kg
	LandfillM3        float64 `json:"landfill_m3" yaml:"landfill_m3"`                 // landfill volume per kg
}

// Stats holds the constants of the forecasting module.
type Stats struct {
	Z                   float64 // two-sided 95% z-score
	LargeSampleN        int     // n at or above which Z is used unadjusted
	VolatilityThreshold float64 // volatility above which the volatile alpha applies
	VolatileAlpha       float64
	StableAlpha         float64
	TrendThreshold      float64 // slope threshold as a fraction of the series mean
	ReliableR2          float64
	MonthsPerYear       float64
}

// Table is a complete, versioned set of factors.
type Table struct {
	Version *semver.Version

	Grid             map[GridCategory]float64 // kg CO2 per kWh
	LiquidFuel       map[FuelType]float64     // kg CO2 per liter
	MassFuel         map[FuelType]float64     // kg CO2 per kg
	CoalPerTon       float64                  // kg CO2 per ton of coal
	Landfill         Landfill
	Incineration     map[WasteType]float64 // kg CO2 per kg burned
	Materials        map[Material]MaterialProfile
	DefaultMaterial  MaterialProfile
	Transport        map[TransportMode]float64 // kg CO2 per tonne-km
	DefaultTransport float64
	UnitToKg         map[Unit]float64
	Stats            Stats
}

// Default returns the built-in factor table.
func Default() Table {
	return Table{
		Version: semver.MustParse(DefaultVersion),
		Grid: map[GridCategory]float64{
			GridCoalHeavy:      0.95,
			GridMixed:          0.71,
			GridRenewableHeavy: 0.25,
			GridGlobalAverage:  0.475,
			GridUnknown:        0.71,
		},
		LiquidFuel: map[FuelType]float64{
			FuelDiesel: 2.68,
			FuelPetrol: 2.31,
			FuelLPG:    1.51,
		},
		MassFuel: map[FuelType]float64{
			FuelNaturalGas: 2.75,
			FuelCoal:       2.86,
		},
		CoalPerTon: 2860,
		Landfill: Landfill{
			DOC:                0.15,
			DOCf:               0.5,
			MethaneFraction:    0.5,
			StoichiometricRate: 16.0 / 12.0,
			MCF:                1.0,
			Recovery:           0.1,
			GWP:                25,
			Oxidation:          0.1,
		},
		Incineration: map[WasteType]float64{
			WasteMixed:   0.70,
			WastePlastic: 2.70,
			WastePaper:   0.04,
			WasteTextile: 1.50,
			WasteRubber:  2.40,
			WasteWood:    0.02,
			WasteOrganic: 0.01,
		},
		Materials: map[Material]MaterialProfile{
			MaterialSteel:       {RecyclingCreditKg: 1.46, WaterLiters: 40, EnergyKWh: 4.0, LandfillM3: 0.0015},
			MaterialAluminum:    {RecyclingCreditKg: 9.0, WaterLiters: 50, EnergyKWh: 14.0, LandfillM3: 0.004},
			MaterialCopper:      {RecyclingCreditKg: 3.5, WaterLiters: 30, EnergyKWh: 10.0, LandfillM3: 0.0012},
			MaterialPlastic:     {RecyclingCreditKg: 1.5, WaterLiters: 20, EnergyKWh: 5.7, LandfillM3: 0.006},
			MaterialPaper:       {RecyclingCreditKg: 0.9, WaterLiters: 26, EnergyKWh: 4.0, LandfillM3: 0.003},
			MaterialGlass:       {RecyclingCreditKg: 0.3, WaterLiters: 2, EnergyKWh: 0.7, LandfillM3: 0.0008},
			MaterialWood:        {RecyclingCreditKg: 0.5, WaterLiters: 5, EnergyKWh: 1.0, LandfillM3: 0.004},
			MaterialTextile:     {RecyclingCreditKg: 3.0, WaterLiters: 60, EnergyKWh: 9.0, LandfillM3: 0.005},
			MaterialRubber:      {RecyclingCreditKg: 1.3, WaterLiters: 10, EnergyKWh: 3.0, LandfillM3: 0.003},
			MaterialOrganic:     {RecyclingCreditKg: 0.25, WaterLiters: 1, EnergyKWh: 0.2, LandfillM3: 0.0015},
			MaterialElectronics: {RecyclingCreditKg: 2.5, WaterLiters: 30, EnergyKWh: 8.0, LandfillM3: 0.003},
			MaterialChemical:    {RecyclingCreditKg: 1.0, WaterLiters: 10, EnergyKWh: 2.0, LandfillM3: 0.001},
		},
		DefaultMaterial: MaterialProfile{RecyclingCreditKg: 0.5, WaterLiters: 5, EnergyKWh: 1.0, LandfillM3: 0.002},
		Transport: map[TransportMode]float64{
			TransportRoad: 0.105,
			TransportRail: 0.028,
			TransportSea:  0.015,
			TransportAir:  0.602,
		},
		DefaultTransport: 0.105,
		UnitToKg: map[Unit]float64{
			UnitKg:         1,
			UnitTon:        1000,
			UnitLiter:      1,
			UnitCubicMeter: 1000,
		},
		Stats: Stats{
			Z:                   1.96,
			LargeSampleN:        30,
			VolatilityThreshold: 0.3,
			VolatileAlpha:       0.7,
			StableAlpha:         0.3,
			TrendThreshold:      0.02,
			ReliableR2:          0.5,
			MonthsPerYear:       12,
		},
	}
}

// Material returns the profile for m and whether it was found. Missing
// categories get DefaultMaterial.
func (t Table) Material(m Material) (MaterialProfile, bool) {
	if p, ok := t.Materials[m]; ok {
		return p, true
	}
	return t.DefaultMaterial, false
}

// TransportFactor returns the kg CO2 per tonne-km for mode, falling back to
// DefaultTransport.
func (t Table) TransportFactor(mode TransportMode) (float64, bool) {
	if f, ok := t.Transport[mode]; ok {
		return f, true
	}
	return t.DefaultTransport, false
}

// IncinerationFactor returns the factor for w, falling back to WasteMixed.
func (t Table) IncinerationFactor(w WasteType) float64 {
	if f, ok := t.Incineration[w]; ok {
		return f
	}
	return t.Incineration[WasteMixed]
}

// ToKg returns the kg multiplier for u; unknown units convert with factor 1.
func (t Table) ToKg(u Unit) float64 {
	if f, ok := t.UnitToKg[u]; ok {
		return f
	}
	return 1
}

// VersionString returns the table version, or "unversioned".
func (t Table) VersionString() string {
	if t.Version == nil {
		return "unversioned"
	}
	return t.Version.String()
}

// Satisfies reports whether the table version meets a semver constraint
// such as "^2.0" or ">= 2.1, < 3". An empty constraint always passes.
func (t Table) Satisfies(constraint string) (bool, error) {
	if constraint == "" {
		return true, nil
	}
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return false, fmt.Errorf("%w: constraint %q: %w", ErrInvalidVersion, constraint, err)
	}
	if t.Version == nil {
		return false, nil
	}
	return c.Check(t.Version), nil
}
