package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rshade/circulate/internal/emissions"
	"github.com/rshade/circulate/internal/logging"
)

// emissionsParams holds the parameters for the emissions command.
type emissionsParams struct {
	inputParams
	output string
}

// NewEmissionsCmd creates the "emissions" command that reports the scope 1, 2
// and 3 emissions of one company with its audit trail.
func NewEmissionsCmd() *cobra.Command {
	var params emissionsParams

	cmd := &cobra.Command{
		Use:   "emissions",
		Short: "Calculate scope 1-3 emissions for a company",
		Long: `Calculate scope 1, 2 and 3 CO2-equivalent emissions from electricity,
fuel, supply-chain and waste-disposal figures. Every contributing term is
listed with its formula.`,
		Example: emissionsExample,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return executeEmissions(cmd, params)
		},
	}

	params.register(cmd)
	registerOutputFlag(cmd, &params.output)

	return cmd
}

const emissionsExample = `  # From a company file
  circulate emissions --input acme.yaml

  # From a dataset
  circulate emissions --dataset companies.yaml --company acme

  # As JSON
  circulate emissions --input acme.yaml --output json`

func executeEmissions(cmd *cobra.Command, params emissionsParams) error {
	ctx := cmd.Context()
	log := logging.FromContext(ctx)

	r, err := newRenderer(cmd, params.output)
	if err != nil {
		return err
	}
	table, err := factorTable()
	if err != nil {
		return err
	}
	in, _, err := resolveCompany(params.inputParams, table)
	if err != nil {
		return err
	}

	res, err := emissions.New(table).TotalCarbon(in.Inputs.Profile)
	if err != nil {
		log.Error().Err(err).Str("company_id", in.CompanyID).Msg("emissions calculation failed")
		return fmt.Errorf("calculating emissions: %w", err)
	}
	log.Info().Str("operation", "emissions").Str("company_id", in.CompanyID).
		Float64("total_co2e", res.TotalCO2e).Msg("emissions calculated")

	return r.Emissions(res)
}
