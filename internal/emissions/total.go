package emissions

import (
	"fmt"
	"strconv"

	"github.com/rshade/circulate/internal/factors"
	"github.com/rshade/circulate/internal/rounding"
)

// TotalCarbon aggregates every applicable term of p into scopes:
// fuels into scope 1, electricity into scope 2, and the supply chain
// estimate (floored at 0) plus waste disposal into scope 3.
//
// A zero electricity or fuel quantity means the term does not apply. Any
// negative, non-finite or unrecognised input fails the whole call.
func (c *Calculator) TotalCarbon(p Profile) (Result, error) {
	res := Result{
		Breakdown:      make(map[string]float64),
		FactorsVersion: c.table.VersionString(),
	}

	var scope1, scope2, scope3 float64
	add := func(scope Scope, source, formula string, kg float64) {
		res.Trace = append(res.Trace, Term{Source: source, Scope: scope, Formula: formula, KgCO2e: kg})
		res.Breakdown[source] = rounding.Round2(res.Breakdown[source] + kg)
		switch scope {
		case Scope1:
			scope1 += kg
		case Scope2:
			scope2 += kg
		case Scope3:
			scope3 += kg
		}
	}

	if p.ElectricityKWh != 0 {
		kg, err := c.Electricity(p.ElectricityKWh, p.Grid)
		if err != nil {
			return Result{}, err
		}
		add(Scope2, "electricity", fmt.Sprintf("%s kWh × %s kg/kWh (%s grid)",
			num(p.ElectricityKWh), num(c.table.Grid[p.Grid]), p.Grid), kg)
	}

	for i, fu := range p.Fuels {
		if fu.Quantity == 0 {
			continue
		}
		kg, formula, err := c.fuelTerm(fu)
		if err != nil {
			return Result{}, fmt.Errorf("fuels[%d]: %w", i, err)
		}
		add(Scope1, "fuel:"+fu.Type.String(), formula, kg)
	}

	for i, ws := range p.Waste {
		kg, formula, applies, err := c.wasteTerm(ws)
		if err != nil {
			return Result{}, fmt.Errorf("waste[%d]: %w", i, err)
		}
		if applies {
			add(Scope3, wasteSource(ws), formula, kg)
		}
	}

	if !finite(p.SupplyChainKg) {
		return Result{}, invalid("supply_chain_kg", p.SupplyChainKg, "must be a finite number")
	}
	if supply := rounding.Round2(rounding.FloorZero(p.SupplyChainKg)); supply > 0 {
		add(Scope3, "supply_chain", fmt.Sprintf("%s kg CO2e supply chain estimate", num(supply)), supply)
	}

	res.Scope1 = rounding.Round2(scope1)
	res.Scope2 = rounding.Round2(scope2)
	res.Scope3 = rounding.Round2(scope3)
	res.TotalCO2e = rounding.Round2(res.Scope1 + res.Scope2 + res.Scope3)
	return res, nil
}

func (c *Calculator) fuelTerm(fu FuelUse) (float64, string, error) {
	if !fu.Type.Valid() {
		return 0, "", invalid("fuel_type", fu.Type.String(), "unknown fuel type")
	}

	if fu.Type.IsLiquid() {
		liters := fu.Quantity
		switch fu.Unit {
		case factors.UnitUnspecified, factors.UnitLiter:
		case factors.UnitCubicMeter:
			liters *= c.table.ToKg(factors.UnitCubicMeter)
		default:
			return 0, "", invalid("unit", fu.Unit.String(), "liquid fuels are metered in liters")
		}
		kg, err := c.LiquidFuel(liters, fu.Type)
		if err != nil {
			return 0, "", err
		}
		return kg, fmt.Sprintf("%s L × %s kg/L (%s)", num(liters), num(c.table.LiquidFuel[fu.Type]), fu.Type), nil
	}

	switch fu.Unit {
	case factors.UnitUnspecified, factors.UnitKg:
		kg, err := c.GaseousOrSolidFuel(fu.Quantity, fu.Type)
		if err != nil {
			return 0, "", err
		}
		return kg, fmt.Sprintf("%s kg × %s kg/kg (%s)", num(fu.Quantity), num(c.table.MassFuel[fu.Type]), fu.Type), nil
	case factors.UnitTon:
		if fu.Type == factors.FuelCoal {
			kg, err := c.Coal(fu.Quantity)
			if err != nil {
				return 0, "", err
			}
			return kg, fmt.Sprintf("%s t × %s kg/t (coal)", num(fu.Quantity), num(c.table.CoalPerTon)), nil
		}
		massKg := fu.Quantity * c.table.ToKg(factors.UnitTon)
		kg, err := c.GaseousOrSolidFuel(massKg, fu.Type)
		if err != nil {
			return 0, "", err
		}
		return kg, fmt.Sprintf("%s kg × %s kg/kg (%s)", num(massKg), num(c.table.MassFuel[fu.Type]), fu.Type), nil
	default:
		return 0, "", invalid("unit", fu.Unit.String(), "gaseous and solid fuels are metered in kg or tons")
	}
}

// wasteTerm returns the disposal emissions of ws. applies is false for
// routes that carry no disposal emissions here (recycling, inert landfill).
func (c *Calculator) wasteTerm(ws WasteStream) (kg float64, formula string, applies bool, err error) {
	if ws.Disposal != factors.DisposalLandfill && ws.Disposal != factors.DisposalIncineration {
		return 0, "", false, nil
	}
	if err := positive("quantity", ws.Quantity); err != nil {
		return 0, "", false, err
	}
	wasteKg := ws.Quantity * c.table.ToKg(ws.Unit)

	if ws.Disposal == factors.DisposalLandfill {
		if ws.OrganicFraction == 0 {
			return 0, "", false, nil
		}
		m, err := c.LandfillMethane(wasteKg, ws.OrganicFraction)
		if err != nil {
			return 0, "", false, err
		}
		lf := c.table.Landfill
		return m.CO2eKg, fmt.Sprintf("%s kg × %s organic → %s kg CH4 × GWP %s × (1 − %s oxidation)",
			num(wasteKg), num(ws.OrganicFraction), num(m.CH4Kg), num(lf.GWP), num(lf.Oxidation)), true, nil
	}

	kg, err = c.Incineration(wasteKg, ws.Type, ws.EnergyRecovery)
	if err != nil {
		return 0, "", false, err
	}
	return kg, fmt.Sprintf("%s kg × %s kg/kg (%s) × (1 − %s recovery)",
		num(wasteKg), num(c.table.IncinerationFactor(ws.Type)), ws.Type, num(ws.EnergyRecovery)), true, nil
}

func wasteSource(ws WasteStream) string {
	name := ws.Name
	if name == "" {
		name = ws.Type.String()
	}
	return ws.Disposal.String() + ":" + name
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
