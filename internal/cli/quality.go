package cli

import (
	"github.com/spf13/cobra"

	"github.com/rshade/circulate/internal/logging"
	"github.com/rshade/circulate/internal/quality"
)

// qualityParams holds the parameters for the quality command.
type qualityParams struct {
	inputParams
	output string
}

// NewQualityCmd creates the "quality" command that scores how trustworthy a
// company's inputs are.
func NewQualityCmd() *cobra.Command {
	var params qualityParams

	cmd := &cobra.Command{
		Use:   "quality",
		Short: "Assess the data quality of a company's inputs",
		Long: `Score the electricity, fuel and waste figures of a company from 0 to 100
and list the gaps found. The overall score weights electricity 45%, fuel 35%
and waste 20%.`,
		Example: `  # From a company file
  circulate quality --input acme.yaml

  # From a dataset
  circulate quality --dataset companies.yaml --company northmill --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return executeQuality(cmd, params)
		},
	}

	params.register(cmd)
	registerOutputFlag(cmd, &params.output)

	return cmd
}

func executeQuality(cmd *cobra.Command, params qualityParams) error {
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

	a := quality.Assess(in.Inputs)
	logging.FromContext(cmd.Context()).Info().Str("operation", "quality").
		Str("company_id", in.CompanyID).Float64("overall", a.Overall).
		Int("flags", len(a.Flags)).Msg("quality assessed")

	return r.Quality(a)
}
