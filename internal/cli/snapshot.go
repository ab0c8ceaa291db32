package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rshade/circulate/internal/config"
	"github.com/rshade/circulate/internal/dataset"
	"github.com/rshade/circulate/internal/engine"
	"github.com/rshade/circulate/internal/logging"
)

// snapshotParams holds the parameters for the snapshot command.
type snapshotParams struct {
	dataset   string
	companies []string
	steps     int
	output    string
}

// NewSnapshotCmd creates the "snapshot" command that runs the full pipeline
// (quality, emissions and forecast) for dataset companies.
func NewSnapshotCmd() *cobra.Command {
	var params snapshotParams

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Assess, calculate and forecast dataset companies",
		Long: `Run the data-quality assessment, the emissions calculation and the
forecasts for each company in a dataset. Companies without history are
forecast from a synthetic cold-start series.`,
		Example: `  # Every company
  circulate snapshot --dataset companies.yaml

  # One company as YAML
  circulate snapshot --dataset companies.yaml --company acme --output yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return executeSnapshot(cmd, params)
		},
	}

	registerDatasetFlag(cmd, &params.dataset)
	cmd.Flags().StringSliceVar(&params.companies, "company", nil, "company ID to include (repeatable)")
	cmd.Flags().IntVar(&params.steps, "steps", 0, "months ahead (0 = forecast.steps_ahead from configuration)")
	registerOutputFlag(cmd, &params.output)

	return cmd
}

func executeSnapshot(cmd *cobra.Command, params snapshotParams) error {
	ctx := cmd.Context()
	log := logging.FromContext(ctx)
	start := time.Now()

	if params.steps < 0 {
		return fmt.Errorf("--steps must be >= 0, got %d", params.steps)
	}
	r, err := newRenderer(cmd, params.output)
	if err != nil {
		return err
	}
	table, err := factorTable()
	if err != nil {
		return err
	}
	ds, err := loadDataset(params.dataset, table)
	if err != nil {
		return err
	}
	companies, err := selectCompanies(ds, params.companies)
	if err != nil {
		return err
	}

	steps := params.steps
	if steps == 0 {
		steps = config.GetGlobalConfig().Forecast.StepsAhead
	}
	eng := engine.New(table, engine.WithHistory(ds), engine.WithStepsAhead(steps))

	inputs := make([]engine.CompanyInputs, len(companies))
	for i, c := range companies {
		inputs[i] = c.CompanyInputs
	}
	snaps, err := eng.SnapshotAll(ctx, inputs, config.GetMatchConcurrency())
	if err != nil {
		log.Error().Err(err).Msg("snapshot failed")
		return err
	}
	log.Info().Str("operation", "snapshot").Int("companies", len(snaps)).
		Dur("duration_ms", time.Since(start)).Msg("snapshots complete")

	return r.Snapshots(snaps)
}

// selectCompanies returns the companies named by ids, or all of them.
func selectCompanies(ds *dataset.Dataset, ids []string) ([]dataset.Company, error) {
	if len(ids) == 0 {
		return ds.Companies, nil
	}
	out := make([]dataset.Company, 0, len(ids))
	for _, id := range ids {
		c, ok := ds.Company(id)
		if !ok {
			return nil, fmt.Errorf("%w: %q", dataset.ErrUnknownCompany, id)
		}
		out = append(out, c)
	}
	return out, nil
}
