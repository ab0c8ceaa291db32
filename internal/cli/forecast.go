package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rshade/circulate/internal/config"
	"github.com/rshade/circulate/internal/engine"
	"github.com/rshade/circulate/internal/logging"
	"github.com/rshade/circulate/internal/report"
)

// forecastParams holds the parameters for the forecast command.
type forecastParams struct {
	series     []float64
	dataset    string
	company    string
	steps      int
	alpha      float64
	confidence float64
	output     string
}

// NewForecastCmd creates the "forecast" command that projects a monthly
// emissions series forward.
//
// The series comes from --series, or from the history of a dataset company.
// Companies without history get a synthetic cold-start series.
func NewForecastCmd() *cobra.Command {
	var params forecastParams

	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Forecast a monthly emissions series",
		Long: `Project a monthly emissions series with exponential smoothing, a
confidence interval on the mean, a linear trend and an annual projection.
Projections that need more points than the series has are reported as
skipped.`,
		Example: forecastExample,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return executeForecast(cmd, params)
		},
	}

	cmd.Flags().Float64SliceVar(&params.series, "series", nil, "comma-separated monthly values, oldest first")
	registerDatasetFlag(cmd, &params.dataset)
	cmd.Flags().StringVar(&params.company, "company", "", "forecast the history of this dataset company")
	cmd.Flags().IntVar(&params.steps, "steps", 0, "months ahead (0 = forecast.steps_ahead from configuration)")
	cmd.Flags().Float64Var(&params.alpha, "alpha", 0, "fixed smoothing factor in (0, 1) (default derived from volatility)")
	cmd.Flags().Float64Var(&params.confidence, "confidence", 100,
		"overall data confidence 0-100; lower values widen the annual margin")
	registerOutputFlag(cmd, &params.output)

	return cmd
}

const forecastExample = `  # Three months ahead
  circulate forecast --series 100,110,105,120,115,125

  # Six months with a fixed smoothing factor
  circulate forecast --series 100,110,105,120,115,125 --steps 6 --alpha 0.5

  # History of a dataset company
  circulate forecast --dataset companies.yaml --company acme --output yaml`

func executeForecast(cmd *cobra.Command, params forecastParams) error {
	ctx := cmd.Context()
	log := logging.FromContext(ctx)

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

	series := params.series
	switch {
	case len(series) > 0:
	case params.company != "":
		ds, loadErr := loadDataset(params.dataset, table)
		if loadErr != nil {
			return loadErr
		}
		if series, err = ds.MonthlyHistory(ctx, params.company); err != nil {
			return fmt.Errorf("loading history: %w", err)
		}
	default:
		return errors.New("either --series or --company is required")
	}

	steps := params.steps
	if steps == 0 {
		steps = config.GetGlobalConfig().Forecast.StepsAhead
	}
	opts := []engine.Option{engine.WithStepsAhead(steps)}
	if cmd.Flags().Changed("alpha") {
		opts = append(opts, engine.WithAlpha(params.alpha))
	}

	proj, skipped, err := engine.New(table, opts...).Project(series, params.confidence)
	if err != nil {
		return fmt.Errorf("forecasting: %w", err)
	}

	rep := report.ForecastReport{Series: series, Skipped: skipped}
	if proj != nil {
		rep.Smoothing = &proj.Smoothing
		rep.Interval = proj.Interval
		rep.Regression = proj.Regression
		rep.Annual = &proj.Annual
	}
	log.Info().Str("operation", "forecast").Int("points", len(series)).Int("steps", steps).
		Strs("skipped", skipped).Msg("forecast complete")

	return r.Forecast(rep)
}
