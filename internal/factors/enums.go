package factors

import (
	"fmt"
	"strings"
)

// GridCategory classifies the electricity grid a facility draws from.
// The zero value is not a valid category.
type GridCategory int

const (
	gridUnset GridCategory = iota
	// GridCoalHeavy is a grid dominated by coal generation.
	GridCoalHeavy
	// GridMixed is a grid with a mixed fossil and renewable supply.
	GridMixed
	// GridRenewableHeavy is a grid dominated by renewable generation.
	GridRenewableHeavy
	// GridGlobalAverage uses the global average grid intensity.
	GridGlobalAverage
	// GridUnknown is an explicitly declared unknown grid.
	GridUnknown
)

var gridNames = map[GridCategory]string{
	GridCoalHeavy:      "coal_heavy",
	GridMixed:          "mixed",
	GridRenewableHeavy: "renewable_heavy",
	GridGlobalAverage:  "global_average",
	GridUnknown:        "unknown",
}

// String returns the wire name of the category.
func (g GridCategory) String() string {
	if s, ok := gridNames[g]; ok {
		return s
	}
	return fmt.Sprintf("GridCategory(%d)", int(g))
}

// Valid reports whether g is one of the enumerated categories.
func (g GridCategory) Valid() bool {
	_, ok := gridNames[g]
	return ok
}

// ParseGridCategory parses a grid category name. Unknown names are an error.
func ParseGridCategory(s string) (GridCategory, error) {
	key := normalizeKey(s)
	for g, name := range gridNames {
		if name == key {
			return g, nil
		}
	}
	return gridUnset, fmt.Errorf("%w: grid category %q", ErrUnknownKey, s)
}

// MarshalText implements encoding.TextMarshaler.
func (g GridCategory) MarshalText() ([]byte, error) { return []byte(g.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (g *GridCategory) UnmarshalText(b []byte) error {
	v, err := ParseGridCategory(string(b))
	if err != nil {
		return err
	}
	*g = v
	return nil
}

// FuelType identifies a combustion fuel. The zero value is not a valid fuel.
type FuelType int

const (
	fuelUnset FuelType = iota
	// FuelDiesel is diesel, measured in liters.
	FuelDiesel
	// FuelPetrol is petrol/gasoline, measured in liters.
	FuelPetrol
	// FuelLPG is liquefied petroleum gas, measured in liters.
	FuelLPG
	// FuelNaturalGas is natural gas, measured by mass.
	FuelNaturalGas
	// FuelCoal is coal, measured by mass.
	FuelCoal
)

var fuelNames = map[FuelType]string{
	FuelDiesel:     "diesel",
	FuelPetrol:     "petrol",
	FuelLPG:        "lpg",
	FuelNaturalGas: "natural_gas",
	FuelCoal:       "coal",
}

var fuelAliases = map[string]FuelType{
	"gasoline": FuelPetrol,
	"gas":      FuelNaturalGas,
	"lng":      FuelNaturalGas,
}

// String returns the wire name of the fuel.
func (f FuelType) String() string {
	if s, ok := fuelNames[f]; ok {
		return s
	}
	return fmt.Sprintf("FuelType(%d)", int(f))
}

// Valid reports whether f is one of the enumerated fuels.
func (f FuelType) Valid() bool {
	_, ok := fuelNames[f]
	return ok
}

// IsLiquid reports whether the fuel is metered by volume.
func (f FuelType) IsLiquid() bool {
	return f == FuelDiesel || f == FuelPetrol || f == FuelLPG
}

// ParseFuelType parses a fuel name. Unknown names are an error.
func ParseFuelType(s string) (FuelType, error) {
	key := normalizeKey(s)
	for f, name := range fuelNames {
		if name == key {
			return f, nil
		}
	}
	if f, ok := fuelAliases[key]; ok {
		return f, nil
	}
	return fuelUnset, fmt.Errorf("%w: fuel type %q", ErrUnknownKey, s)
}

// MarshalText implements encoding.TextMarshaler.
func (f FuelType) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *FuelType) UnmarshalText(b []byte) error {
	v, err := ParseFuelType(string(b))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// WasteType selects an incineration factor. Unrecognised names fall back to
// WasteMixed, which is also the zero value.
type WasteType int

const (
	// WasteMixed is unsorted mixed waste.
	WasteMixed WasteType = iota
	// WastePlastic is plastic waste.
	WastePlastic
	// WastePaper is paper and cardboard.
	WastePaper
	// WasteTextile is textile waste.
	WasteTextile
	// WasteRubber is rubber and tyres.
	WasteRubber
	// WasteWood is wood waste.
	WasteWood
	// WasteOrganic is food and garden waste.
	WasteOrganic
)

var wasteNames = map[WasteType]string{
	WasteMixed:   "mixed",
	WastePlastic: "plastic",
	WastePaper:   "paper",
	WasteTextile: "textile",
	WasteRubber:  "rubber",
	WasteWood:    "wood",
	WasteOrganic: "organic",
}

func (w WasteType) String() string {
	if s, ok := wasteNames[w]; ok {
		return s
	}
	return fmt.Sprintf("WasteType(%d)", int(w))
}

// ParseWasteType parses a waste type name, falling back to WasteMixed.
func ParseWasteType(s string) WasteType {
	key := normalizeKey(s)
	for w, name := range wasteNames {
		if name == key {
			return w
		}
	}
	return WasteMixed
}

// MarshalText implements encoding.TextMarshaler.
func (w WasteType) MarshalText() ([]byte, error) { return []byte(w.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (w *WasteType) UnmarshalText(b []byte) error {
	*w = ParseWasteType(string(b))
	return nil
}

// Material is a circular-economy material category. MaterialOther covers
// every category without its own constants.
type Material int

const (
	// MaterialOther is any unrecognised category.
	MaterialOther Material = iota
	MaterialSteel
	MaterialAluminum
	MaterialCopper
	MaterialPlastic
	MaterialPaper
	MaterialGlass
	MaterialWood
	MaterialTextile
	MaterialRubber
	MaterialOrganic
	MaterialElectronics
	MaterialChemical
)

var materialNames = map[Material]string{
	MaterialOther:       "other",
	MaterialSteel:       "steel",
	MaterialAluminum:    "aluminum",
	MaterialCopper:      "copper",
	MaterialPlastic:     "plastic",
	MaterialPaper:       "paper",
	MaterialGlass:       "glass",
	MaterialWood:        "wood",
	MaterialTextile:     "textile",
	MaterialRubber:      "rubber",
	MaterialOrganic:     "organic",
	MaterialElectronics: "electronics",
	MaterialChemical:    "chemical",
}

var materialAliases = map[string]Material{
	"aluminium": MaterialAluminum,
	"metal":     MaterialSteel,
	"iron":      MaterialSteel,
	"cardboard": MaterialPaper,
	"textiles":  MaterialTextile,
	"e_waste":   MaterialElectronics,
	"chemicals": MaterialChemical,
	"food":      MaterialOrganic,
}

func (m Material) String() string {
	if s, ok := materialNames[m]; ok {
		return s
	}
	return fmt.Sprintf("Material(%d)", int(m))
}

// ParseMaterial parses a material category, falling back to MaterialOther.
func ParseMaterial(s string) Material {
	key := normalizeKey(s)
	for m, name := range materialNames {
		if name == key {
			return m
		}
	}
	if m, ok := materialAliases[key]; ok {
		return m
	}
	return MaterialOther
}

// MarshalText implements encoding.TextMarshaler.
func (m Material) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Material) UnmarshalText(b []byte) error {
	*m = ParseMaterial(string(b))
	return nil
}

// TransportMode is how an exchanged material travels. TransportOther uses
// the road factor.
type TransportMode int

const (
	// TransportOther is any unrecognised mode.
	TransportOther TransportMode = iota
	TransportRoad
	TransportRail
	TransportSea
	TransportAir
)

var transportNames = map[TransportMode]string{
	TransportOther: "other",
	TransportRoad:  "road",
	TransportRail:  "rail",
	TransportSea:   "sea",
	TransportAir:   "air",
}

var transportAliases = map[string]TransportMode{
	"truck": TransportRoad,
	"train": TransportRail,
	"ship":  TransportSea,
}

func (t TransportMode) String() string {
	if s, ok := transportNames[t]; ok {
		return s
	}
	return fmt.Sprintf("TransportMode(%d)", int(t))
}

// ParseTransportMode parses a transport mode, falling back to TransportOther.
func ParseTransportMode(s string) TransportMode {
	key := normalizeKey(s)
	for t, name := range transportNames {
		if name == key {
			return t
		}
	}
	if t, ok := transportAliases[key]; ok {
		return t
	}
	return TransportOther
}

// MarshalText implements encoding.TextMarshaler.
func (t TransportMode) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *TransportMode) UnmarshalText(b []byte) error {
	*t = ParseTransportMode(string(b))
	return nil
}

// Unit is a quantity unit. The zero value means no unit was given;
// unrecognised units parse to UnitOther. Both convert with factor 1.
type Unit int

const (
	UnitUnspecified Unit = iota
	UnitKg
	UnitTon
	UnitLiter
	UnitCubicMeter
	UnitOther
)

var unitNames = map[Unit]string{
	UnitUnspecified: "",
	UnitKg:          "kg",
	UnitTon:         "ton",
	UnitLiter:       "liter",
	UnitCubicMeter:  "cubic_meter",
	UnitOther:       "other",
}

var unitAliases = map[string]Unit{
	"kgs":       UnitKg,
	"kilogram":  UnitKg,
	"kilograms": UnitKg,
	"t":         UnitTon,
	"tons":      UnitTon,
	"tonne":     UnitTon,
	"tonnes":    UnitTon,
	"l":         UnitLiter,
	"liters":    UnitLiter,
	"litre":     UnitLiter,
	"litres":    UnitLiter,
	"m3":        UnitCubicMeter,
}

func (u Unit) String() string {
	if u == UnitUnspecified {
		return "unspecified"
	}
	if s, ok := unitNames[u]; ok {
		return s
	}
	return fmt.Sprintf("Unit(%d)", int(u))
}

// ParseUnit parses a unit name, falling back to UnitOther.
func ParseUnit(s string) Unit {
	key := normalizeKey(s)
	for u, name := range unitNames {
		if name == key {
			return u
		}
	}
	if u, ok := unitAliases[key]; ok {
		return u
	}
	return UnitOther
}

// MarshalText implements encoding.TextMarshaler.
func (u Unit) MarshalText() ([]byte, error) { return []byte(unitNames[u]), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (u *Unit) UnmarshalText(b []byte) error {
	*u = ParseUnit(string(b))
	return nil
}

// Grade is the ordinal quality grade of a material:
// industrial > commercial > mixed > any.
type Grade int

const (
	GradeAny Grade = iota
	GradeMixed
	GradeCommercial
	GradeIndustrial
)

var gradeNames = map[Grade]string{
	GradeAny:        "any",
	GradeMixed:      "mixed",
	GradeCommercial: "commercial",
	GradeIndustrial: "industrial",
}

func (g Grade) String() string {
	if s, ok := gradeNames[g]; ok {
		return s
	}
	return fmt.Sprintf("Grade(%d)", int(g))
}

// Meets reports whether g is at least min on the ordinal scale.
func (g Grade) Meets(minimum Grade) bool { return g >= minimum }

// ParseGrade parses a grade, falling back to GradeAny.
func ParseGrade(s string) Grade {
	key := normalizeKey(s)
	for g, name := range gradeNames {
		if name == key {
			return g
		}
	}
	return GradeAny
}

// MarshalText implements encoding.TextMarshaler.
func (g Grade) MarshalText() ([]byte, error) { return []byte(g.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (g *Grade) UnmarshalText(b []byte) error {
	*g = ParseGrade(string(b))
	return nil
}

// Disposal is the end-of-life route of a waste stream.
type Disposal int

const (
	DisposalOther Disposal = iota
	DisposalLandfill
	DisposalIncineration
	DisposalRecycling
)

var disposalNames = map[Disposal]string{
	DisposalOther:        "other",
	DisposalLandfill:     "landfill",
	DisposalIncineration: "incineration",
	DisposalRecycling:    "recycling",
}

func (d Disposal) String() string {
	if s, ok := disposalNames[d]; ok {
		return s
	}
	return fmt.Sprintf("Disposal(%d)", int(d))
}

// ParseDisposal parses a disposal method, falling back to DisposalOther.
func ParseDisposal(s string) Disposal {
	key := normalizeKey(s)
	for d, name := range disposalNames {
		if name == key {
			return d
		}
	}
	return DisposalOther
}

// MarshalText implements encoding.TextMarshaler.
func (d Disposal) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Disposal) UnmarshalText(b []byte) error {
	*d = ParseDisposal(string(b))
	return nil
}

// normalizeKey lowercases s and maps spaces and dashes to underscores.
func normalizeKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(s)
}
