package report

import (
	"fmt"
	"math"
)

// EPA greenhouse gas equivalency factors, kg CO2e per unit of activity.
// An equivalency is kg CO2e divided by the factor.
const (
	MilesDrivenKg      = 0.192
	SmartphoneChargeKg = 0.00822
	TreeSeedlingKg     = 60.0
	HomeDayKg          = 18.3

	// MinEquivalencyKg is the smallest mass worth translating.
	MinEquivalencyKg = 1.0
)

// EquivalencyType is a category of relatable activity.
type EquivalencyType int

const (
	EquivalencyMilesDriven EquivalencyType = iota
	EquivalencySmartphonesCharged
	EquivalencyTreeSeedlings
	EquivalencyHomeDays
)

func (e EquivalencyType) String() string {
	switch e {
	case EquivalencyMilesDriven:
		return "MilesDriven"
	case EquivalencySmartphonesCharged:
		return "SmartphonesCharged"
	case EquivalencyTreeSeedlings:
		return "TreeSeedlings"
	case EquivalencyHomeDays:
		return "HomeDays"
	default:
		return fmt.Sprintf("EquivalencyType(%d)", int(e))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (e EquivalencyType) MarshalText() ([]byte, error) { return []byte(e.String()), nil }

// Equivalency is one translated amount.
type Equivalency struct {
	Type      EquivalencyType `json:"type" yaml:"type"`
	Value     float64         `json:"value" yaml:"value"`
	Formatted string          `json:"formatted" yaml:"formatted"`
	Label     string          `json:"label" yaml:"label"`
}

// Equivalencies translates a CO2e mass into everyday activities.
type Equivalencies struct {
	InputKg     float64       `json:"input_kg" yaml:"input_kg"`
	Results     []Equivalency `json:"results,omitempty" yaml:"results,omitempty"`
	DisplayText string        `json:"display_text,omitempty" yaml:"display_text,omitempty"`
	CompactText string        `json:"compact_text,omitempty" yaml:"compact_text,omitempty"`
}

// Empty reports whether nothing was translated.
func (e Equivalencies) Empty() bool { return len(e.Results) == 0 }

var equivalencyFactors = []struct {
	typ    EquivalencyType
	factor float64
	label  string
}{
	{EquivalencyMilesDriven, MilesDrivenKg, "miles driven"},
	{EquivalencySmartphonesCharged, SmartphoneChargeKg, "smartphones charged"},
	{EquivalencyTreeSeedlings, TreeSeedlingKg, "tree seedlings grown for 10 years"},
	{EquivalencyHomeDays, HomeDayKg, "days of home electricity"},
}

// Equivalent translates kg CO2e. Masses below MinEquivalencyKg, negative
// masses and non-finite values give an empty result.
func Equivalent(kg float64) Equivalencies {
	if math.IsNaN(kg) || math.IsInf(kg, 0) || kg < MinEquivalencyKg {
		return Equivalencies{InputKg: kg}
	}

	out := Equivalencies{InputKg: kg, Results: make([]Equivalency, len(equivalencyFactors))}
	for i, f := range equivalencyFactors {
		v := kg / f.factor
		out.Results[i] = Equivalency{Type: f.typ, Value: v, Formatted: formatEquivalency(v), Label: f.label}
	}

	miles, phones := out.Results[0].Formatted, out.Results[1].Formatted
	out.DisplayText = fmt.Sprintf("Equivalent to driving ~%s miles or charging ~%s smartphones", miles, phones)
	out.CompactText = fmt.Sprintf("(≈ %s mi, %s phones)", miles, phones)
	return out
}

func formatEquivalency(v float64) string {
	if v >= LargeNumberThreshold {
		return FormatLarge(v)
	}
	return FormatNumber(int64(math.Round(v)))
}
