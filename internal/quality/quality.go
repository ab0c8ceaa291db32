// Package quality scores how far reported company inputs can be trusted.
//
// Each input group gets a fuzzy confidence in [0, 100] built from
// memberships for presence, data source, plausibility and recognised keys.
// The overall confidence widens or narrows forecast intervals downstream.
package quality

import (
	"math"
	"sort"

	"github.com/rshade/circulate/internal/emissions"
	"github.com/rshade/circulate/internal/factors"
	"github.com/rshade/circulate/internal/rounding"
)

// Weights of the sub-confidences in the overall confidence.
const (
	ElectricityWeight = 0.45
	FuelWeight        = 0.35
	WasteWeight       = 0.20
)

// Scores used when a group is absent.
const (
	missingElectricityScore = 20.0
	missingGroupScore       = 40.0
	declaredNoFuelScore     = 100.0
)

// Monthly kWh per employee: below a or above d is implausible, [b, c] is
// fully plausible.
var electricityIntensity = trapezoid{a: 50, b: 200, c: 3000, d: 10000}

// Flag explains a reduced confidence.
type Flag string

const (
	FlagElectricityMissing     Flag = "electricity_missing"
	FlagElectricityEstimated   Flag = "electricity_estimated"
	FlagElectricityImplausible Flag = "electricity_implausible"
	FlagEmployeesMissing       Flag = "employees_missing"
	FlagGridUnknown            Flag = "grid_unknown"
	FlagFuelMissing            Flag = "fuel_missing"
	FlagFuelEstimated          Flag = "fuel_estimated"
	FlagFuelUnknownType        Flag = "fuel_unknown_type"
	FlagFuelInvalidQuantity    Flag = "fuel_invalid_quantity"
	FlagFuelUnitMissing        Flag = "fuel_unit_missing"
	FlagWasteMissing           Flag = "waste_missing"
	FlagWasteEstimated         Flag = "waste_estimated"
	FlagWasteInvalidQuantity   Flag = "waste_invalid_quantity"
	FlagWasteDisposalUnknown   Flag = "waste_disposal_unknown"
	FlagWasteUnitMissing       Flag = "waste_unit_missing"
	FlagOrganicFractionMissing Flag = "organic_fraction_missing"
)

// Inputs are the raw company figures for one month.
type Inputs struct {
	Profile           emissions.Profile `json:"profile" yaml:"profile"`
	Employees         int               `json:"employees,omitempty" yaml:"employees,omitempty"`
	ElectricitySource Source            `json:"electricity_source,omitempty" yaml:"electricity_source,omitempty"`
	FuelSource        Source            `json:"fuel_source,omitempty" yaml:"fuel_source,omitempty"`
	WasteSource       Source            `json:"waste_source,omitempty" yaml:"waste_source,omitempty"`
	// NoFuelUse declares that an empty fuel list is complete.
	NoFuelUse bool `json:"no_fuel_use,omitempty" yaml:"no_fuel_use,omitempty"`
}

// Assessment is the data quality of one set of Inputs.
type Assessment struct {
	Electricity float64 `json:"electricity" yaml:"electricity"`
	Fuel        float64 `json:"fuel" yaml:"fuel"`
	Waste       float64 `json:"waste" yaml:"waste"`
	Overall     float64 `json:"overall" yaml:"overall"`
	Flags       []Flag  `json:"flags" yaml:"flags"`
}

// HasFlag reports whether f was raised.
func (a Assessment) HasFlag(f Flag) bool {
	i := sort.Search(len(a.Flags), func(i int) bool { return a.Flags[i] >= f })
	return i < len(a.Flags) && a.Flags[i] == f
}

// Assess scores in. It never fails: bad data lowers the score and raises a
// flag instead.
func Assess(in Inputs) Assessment {
	flags := flagSet{}

	elec := electricityScore(in, flags)
	fuel := fuelScore(in, flags)
	waste := wasteScore(in, flags)

	overall := ElectricityWeight*elec + FuelWeight*fuel + WasteWeight*waste
	return Assessment{
		Electricity: rounding.Round2(elec),
		Fuel:        rounding.Round2(fuel),
		Waste:       rounding.Round2(waste),
		Overall:     rounding.Round2(rounding.Clamp(overall, 0, 100)),
		Flags:       flags.sorted(),
	}
}

func electricityScore(in Inputs, flags flagSet) float64 {
	kwh := in.Profile.ElectricityKWh
	if !(kwh > 0) || math.IsInf(kwh, 0) {
		flags.add(FlagElectricityMissing)
		return missingElectricityScore
	}

	source := in.ElectricitySource.membership()
	if in.ElectricitySource < SourceInvoiced {
		flags.add(FlagElectricityEstimated)
	}

	plausible := 0.7
	if in.Employees > 0 {
		plausible = electricityIntensity.membership(kwh / float64(in.Employees))
		if plausible < 0.5 {
			flags.add(FlagElectricityImplausible)
		}
	} else {
		flags.add(FlagEmployeesMissing)
	}

	grid := 1.0
	if !in.Profile.Grid.Valid() || in.Profile.Grid == factors.GridUnknown {
		grid = 0.8
		flags.add(FlagGridUnknown)
	}

	return 100 * (0.5*source + 0.3*plausible + 0.2*grid)
}

func fuelScore(in Inputs, flags flagSet) float64 {
	if len(in.Profile.Fuels) == 0 {
		if in.NoFuelUse {
			return declaredNoFuelScore
		}
		flags.add(FlagFuelMissing)
		return missingGroupScore
	}

	var sum float64
	for _, f := range in.Profile.Fuels {
		m := 1.0
		if !f.Type.Valid() {
			m = 0
			flags.add(FlagFuelUnknownType)
		}
		if !(f.Quantity > 0) || math.IsInf(f.Quantity, 0) {
			m = 0
			flags.add(FlagFuelInvalidQuantity)
		}
		if f.Unit == factors.UnitUnspecified {
			m *= 0.8
			flags.add(FlagFuelUnitMissing)
		}
		sum += m
	}
	if in.FuelSource < SourceInvoiced {
		flags.add(FlagFuelEstimated)
	}

	mean := sum / float64(len(in.Profile.Fuels))
	return 100 * (0.6*mean + 0.4*in.FuelSource.membership())
}

func wasteScore(in Inputs, flags flagSet) float64 {
	if len(in.Profile.Waste) == 0 {
		flags.add(FlagWasteMissing)
		return missingGroupScore
	}

	var sum float64
	for _, w := range in.Profile.Waste {
		m := 1.0
		if !(w.Quantity > 0) || math.IsInf(w.Quantity, 0) {
			m = 0
			flags.add(FlagWasteInvalidQuantity)
		}
		if w.Disposal == factors.DisposalOther {
			m *= 0.6
			flags.add(FlagWasteDisposalUnknown)
		}
		if w.Unit == factors.UnitUnspecified {
			m *= 0.8
			flags.add(FlagWasteUnitMissing)
		}
		if w.Disposal == factors.DisposalLandfill && w.OrganicFraction <= 0 {
			m *= 0.8
			flags.add(FlagOrganicFractionMissing)
		}
		sum += m
	}
	if in.WasteSource < SourceInvoiced {
		flags.add(FlagWasteEstimated)
	}

	mean := sum / float64(len(in.Profile.Waste))
	return 100 * (0.6*mean + 0.4*in.WasteSource.membership())
}

// trapezoid is a fuzzy membership rising over [a, b], flat at 1 over
// [b, c] and falling over [c, d].
type trapezoid struct {
	a, b, c, d float64
}

func (t trapezoid) membership(x float64) float64 {
	switch {
	case math.IsNaN(x) || x <= t.a || x >= t.d:
		return 0
	case x < t.b:
		return (x - t.a) / (t.b - t.a)
	case x <= t.c:
		return 1
	default:
		return (t.d - x) / (t.d - t.c)
	}
}

type flagSet map[Flag]struct{}

func (s flagSet) add(f Flag) { s[f] = struct{}{} }

func (s flagSet) sorted() []Flag {
	out := make([]Flag, 0, len(s))
	for f := range s {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
