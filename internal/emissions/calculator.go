package emissions

import (
	"math"

	"github.com/rshade/circulate/internal/factors"
	"github.com/rshade/circulate/internal/rounding"
)

// Calculator evaluates emissions against one factor table.
type Calculator struct {
	table factors.Table
}

// New returns a Calculator bound to table.
func New(table factors.Table) *Calculator {
	return &Calculator{table: table}
}

// Table returns the factor table in use.
func (c *Calculator) Table() factors.Table { return c.table }

// Electricity returns kWh × grid factor.
func (c *Calculator) Electricity(kWh float64, grid factors.GridCategory) (float64, error) {
	if err := positive("electricity_kwh", kWh); err != nil {
		return 0, err
	}
	factor, ok := c.table.Grid[grid]
	if !ok || !grid.Valid() {
		return 0, invalid("grid", grid.String(), "must be one of coal_heavy, mixed, renewable_heavy, global_average, unknown")
	}
	return rounding.Round2(kWh * factor), nil
}

// LiquidFuel returns liters × fuel factor for diesel, petrol and LPG.
func (c *Calculator) LiquidFuel(liters float64, fuel factors.FuelType) (float64, error) {
	if err := positive("liters", liters); err != nil {
		return 0, err
	}
	factor, ok := c.table.LiquidFuel[fuel]
	if !ok {
		return 0, invalid("fuel_type", fuel.String(), "not a liquid fuel")
	}
	return rounding.Round2(liters * factor), nil
}

// GaseousOrSolidFuel returns massKg × fuel factor for natural gas and coal.
func (c *Calculator) GaseousOrSolidFuel(massKg float64, fuel factors.FuelType) (float64, error) {
	if err := positive("mass_kg", massKg); err != nil {
		return 0, err
	}
	factor, ok := c.table.MassFuel[fuel]
	if !ok {
		return 0, invalid("fuel_type", fuel.String(), "not a gaseous or solid fuel")
	}
	return rounding.Round2(massKg * factor), nil
}

// Coal returns tons × the per-ton coal factor.
func (c *Calculator) Coal(tons float64) (float64, error) {
	if err := positive("tons", tons); err != nil {
		return 0, err
	}
	return rounding.Round2(tons * c.table.CoalPerTon), nil
}

// LandfillMethane applies the IPCC first-order-decay constants to wasteKg of
// landfilled waste and converts the methane to CO2e.
func (c *Calculator) LandfillMethane(wasteKg, organicFraction float64) (Methane, error) {
	if err := positive("waste_kg", wasteKg); err != nil {
		return Methane{}, err
	}
	if !finite(organicFraction) || organicFraction <= 0 || organicFraction > 1 {
		return Methane{}, invalid("organic_fraction", organicFraction, "must be in (0, 1]")
	}
	ch4, co2e := c.landfill(wasteKg, organicFraction)
	return Methane{CH4Kg: rounding.Round2(ch4), CO2eKg: rounding.Round2(co2e)}, nil
}

func (c *Calculator) landfill(wasteKg, organicFraction float64) (ch4, co2e float64) {
	lf := c.table.Landfill
	ch4 = wasteKg * organicFraction * lf.DOC * lf.DOCf * lf.MCF * lf.MethaneFraction *
		lf.StoichiometricRate * (1 - lf.Recovery)
	co2e = ch4 * lf.GWP * (1 - lf.Oxidation)
	return ch4, co2e
}

// Incineration returns wasteKg × incineration factor × (1 − energyRecovery).
// Unrecognised waste types use the mixed factor.
func (c *Calculator) Incineration(wasteKg float64, wasteType factors.WasteType, energyRecovery float64) (float64, error) {
	if err := positive("waste_kg", wasteKg); err != nil {
		return 0, err
	}
	if !finite(energyRecovery) || energyRecovery < 0 || energyRecovery > 1 {
		return 0, invalid("energy_recovery", energyRecovery, "must be in [0, 1]")
	}
	return rounding.Round2(wasteKg * c.table.IncinerationFactor(wasteType) * (1 - energyRecovery)), nil
}

func positive(field string, v float64) error {
	if !finite(v) {
		return invalid(field, v, "must be a finite number")
	}
	if v <= 0 {
		return invalid(field, v, "must be greater than zero")
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
