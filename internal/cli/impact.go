package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/rshade/circulate/internal/factors"
	"github.com/rshade/circulate/internal/impact"
	"github.com/rshade/circulate/internal/logging"
	"github.com/rshade/circulate/internal/report"
)

// impactParams holds the parameters for the impact command.
type impactParams struct {
	material  string
	quantity  float64
	unit      string
	distance  float64
	mode      string
	generated float64
	exchanged float64
	recycled  float64
	output    string
}

// NewImpactCmd creates the "impact" command that quantifies one exchange.
//
// Registered flags:
//   - --material, --quantity, --unit: what is exchanged
//   - --distance, --mode: how far and by what transport
//   - --generated, --exchanged, --recycled: optional totals for the circularity rate
//   - --output: output format
func NewImpactCmd() *cobra.Command {
	var params impactParams

	cmd := &cobra.Command{
		Use:   "impact",
		Short: "Quantify the impact of a waste exchange",
		Long: `Estimate the CO2, water, energy and landfill volume saved by diverting
material to a buyer, less the emissions of transporting it. Unknown
materials and transport modes fall back to conservative defaults.`,
		Example: impactExample,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return executeImpact(cmd, params)
		},
	}

	cmd.Flags().StringVar(&params.material, "material", "", "material category, e.g. steel or paper")
	cmd.Flags().Float64Var(&params.quantity, "quantity", 0, "quantity exchanged")
	cmd.Flags().StringVar(&params.unit, "unit", "kg", "unit of --quantity: kg, ton, liter or cubic_meter")
	cmd.Flags().Float64Var(&params.distance, "distance", 0, "transport distance in km")
	cmd.Flags().StringVar(&params.mode, "mode", "road", "transport mode: road, rail, sea or air")
	cmd.Flags().Float64Var(&params.generated, "generated", 0, "total waste generated, for the circularity rate")
	cmd.Flags().Float64Var(&params.exchanged, "exchanged", 0, "waste exchanged, for the circularity rate")
	cmd.Flags().Float64Var(&params.recycled, "recycled", 0, "waste recycled, for the circularity rate")
	registerOutputFlag(cmd, &params.output)
	_ = cmd.MarkFlagRequired("material")
	_ = cmd.MarkFlagRequired("quantity")

	return cmd
}

const impactExample = `  # Two tonnes of steel, 120 km by road
  circulate impact --material steel --quantity 2 --unit ton --distance 120

  # Include the circularity rate of the producer
  circulate impact --material paper --quantity 500 --generated 2000 --exchanged 500 --recycled 300`

func executeImpact(cmd *cobra.Command, params impactParams) error {
	ctx := cmd.Context()
	log := logging.FromContext(ctx)

	if params.quantity <= 0 {
		return errors.New("--quantity must be positive")
	}
	r, err := newRenderer(cmd, params.output)
	if err != nil {
		return err
	}
	table, err := factorTable()
	if err != nil {
		return err
	}

	calc := impact.New(table)
	material := factors.ParseMaterial(params.material)
	mode := factors.ParseTransportMode(params.mode)
	kg := calc.NormalizeToKg(params.quantity, factors.ParseUnit(params.unit))

	rep := report.ImpactReport{Impact: calc.ExchangeImpact(material, kg, params.distance, mode)}
	if cmd.Flags().Changed("generated") {
		rate := impact.CircularityRate(params.generated, params.exchanged, params.recycled)
		rep.CircularityPercent = &rate
	}

	log.Info().Str("operation", "impact").Str("material", material.String()).
		Float64("quantity_kg", kg).Float64("net_co2_saved_kg", rep.Impact.NetCO2SavedKg).
		Bool("defaults_used", rep.Impact.DefaultsUsed).Msg("impact calculated")

	return r.Impact(rep)
}
