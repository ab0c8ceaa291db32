// Package engine runs the per-company snapshot pipeline: data quality and
// current emissions first, then projections over the monthly history.
package engine

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/rshade/circulate/internal/emissions"
	"github.com/rshade/circulate/internal/factors"
	"github.com/rshade/circulate/internal/forecast"
	"github.com/rshade/circulate/internal/logging"
	"github.com/rshade/circulate/internal/quality"
)

// DefaultStepsAhead is the default forecast horizon in months.
const DefaultStepsAhead = 3

// HistorySource supplies a monthly emissions series for a company, oldest
// first. Sources may return a synthetic series when no history exists.
type HistorySource interface {
	MonthlyHistory(ctx context.Context, companyID string) ([]float64, error)
}

// CompanyInputs are the raw figures of one company for the current month.
type CompanyInputs struct {
	CompanyID string         `json:"company_id" yaml:"company_id"`
	Name      string         `json:"name,omitempty" yaml:"name,omitempty"`
	Inputs    quality.Inputs `json:"inputs" yaml:",inline"`
}

// Projection holds the forecasts that could be computed from the history.
// Interval and Regression are nil when the series is too short for them.
type Projection struct {
	Smoothing  forecast.Result      `json:"smoothing" yaml:"smoothing"`
	Interval   *forecast.Interval   `json:"interval,omitempty" yaml:"interval,omitempty"`
	Regression *forecast.Regression `json:"regression,omitempty" yaml:"regression,omitempty"`
	Annual     forecast.Annual      `json:"annual" yaml:"annual"`
}

// Snapshot is the result of one pipeline run.
type Snapshot struct {
	CompanyID     string             `json:"company_id" yaml:"company_id"`
	Quality       quality.Assessment `json:"quality" yaml:"quality"`
	Emissions     emissions.Result   `json:"emissions" yaml:"emissions"`
	HistoryLength int                `json:"history_length" yaml:"history_length"`
	Projection    *Projection        `json:"projection,omitempty" yaml:"projection,omitempty"`
	// ForecastSkipped lists the projections that were not computed and why.
	ForecastSkipped []string `json:"forecast_skipped,omitempty" yaml:"forecast_skipped,omitempty"`
}

// Engine wires the calculators to one factor table.
type Engine struct {
	emissions  *emissions.Calculator
	forecaster *forecast.Forecaster
	history    HistorySource
	steps      int
	alpha      *float64
}

// Option configures an Engine.
type Option func(*Engine)

// WithHistory sets the source used by SnapshotCompany.
func WithHistory(src HistorySource) Option {
	return func(e *Engine) { e.history = src }
}

// WithStepsAhead sets the forecast horizon. Values below 1 are ignored.
func WithStepsAhead(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.steps = n
		}
	}
}

// WithAlpha fixes the smoothing factor instead of deriving it.
func WithAlpha(alpha float64) Option {
	return func(e *Engine) { e.alpha = &alpha }
}

// New returns an Engine over table.
func New(table factors.Table, opts ...Option) *Engine {
	e := &Engine{
		emissions:  emissions.New(table),
		forecaster: forecast.New(table),
		steps:      DefaultStepsAhead,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Snapshot assesses in, computes its current emissions and projects
// history forward. Invalid inputs fail the snapshot; a history too short to
// forecast only skips the projections concerned.
func (e *Engine) Snapshot(ctx context.Context, in CompanyInputs, history []float64) (Snapshot, error) {
	log := logging.FromContext(ctx).With().
		Str("component", "engine").
		Str("operation", "Snapshot").
		Str("company_id", in.CompanyID).
		Logger()

	snap := Snapshot{
		CompanyID:     in.CompanyID,
		Quality:       quality.Assess(in.Inputs),
		HistoryLength: len(history),
	}
	log.Debug().
		Float64("overall_confidence", snap.Quality.Overall).
		Int("flags", len(snap.Quality.Flags)).
		Msg("assessed data quality")

	result, err := e.emissions.TotalCarbon(in.Inputs.Profile)
	if err != nil {
		return Snapshot{}, fmt.Errorf("emissions for %s: %w", in.CompanyID, err)
	}
	snap.Emissions = result
	log.Debug().Float64("total_co2e", result.TotalCO2e).Msg("calculated emissions")

	proj, skipped, err := e.Project(history, snap.Quality.Overall)
	if err != nil {
		return Snapshot{}, fmt.Errorf("forecast for %s: %w", in.CompanyID, err)
	}
	snap.Projection = proj
	snap.ForecastSkipped = skipped
	for _, reason := range skipped {
		log.Info().Str("reason", reason).Msg("forecast skipped")
	}
	return snap, nil
}

// SnapshotCompany loads the history of in.CompanyID from the configured
// HistorySource and runs Snapshot.
func (e *Engine) SnapshotCompany(ctx context.Context, in CompanyInputs) (Snapshot, error) {
	if e.history == nil {
		return e.Snapshot(ctx, in, nil)
	}
	history, err := e.history.MonthlyHistory(ctx, in.CompanyID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("loading history for %s: %w", in.CompanyID, err)
	}
	return e.Snapshot(ctx, in, history)
}

// SnapshotAll runs SnapshotCompany for every company with at most
// concurrency in flight, or one per CPU when concurrency is below 1.
// Snapshots are returned in input order. The first failure cancels the
// remaining companies and is returned.
func (e *Engine) SnapshotAll(ctx context.Context, companies []CompanyInputs, concurrency int) ([]Snapshot, error) {
	if concurrency < 1 {
		concurrency = runtime.NumCPU()
	}
	out := make([]Snapshot, len(companies))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, in := range companies {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			snap, err := e.SnapshotCompany(gCtx, in)
			if err != nil {
				return err
			}
			out[i] = snap
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Project forecasts history with every method the series is long enough
// for. Projections that need more points are listed in the returned skip
// reasons; a nil Projection means not even smoothing was possible.
// confidence is the overall data-quality score that widens the annual
// margin.
func (e *Engine) Project(history []float64, confidence float64) (*Projection, []string, error) {
	var skipped []string
	skip := func(what string, err error) error {
		if errors.Is(err, forecast.ErrInsufficientData) && !errors.Is(err, forecast.ErrInvalidAlpha) {
			skipped = append(skipped, fmt.Sprintf("%s: %v", what, err))
			return nil
		}
		return err
	}

	smoothing, err := e.forecaster.Smooth(history, e.steps, e.alpha)
	if err != nil {
		// Without a smoothing forecast there is nothing to project.
		if err = skip("smoothing", err); err != nil {
			return nil, nil, err
		}
		return nil, skipped, nil
	}
	proj := &Projection{Smoothing: smoothing}

	if proj.Annual, err = e.forecaster.AnnualProjection(history, confidence); err != nil {
		return nil, nil, err
	}

	interval, err := e.forecaster.ConfidenceInterval(history)
	if err == nil {
		proj.Interval = &interval
	} else if err = skip("confidence interval", err); err != nil {
		return nil, nil, err
	}

	regression, err := e.forecaster.Regress(history, e.steps)
	if err == nil {
		proj.Regression = &regression
	} else if err = skip("regression", err); err != nil {
		return nil, nil, err
	}

	return proj, skipped, nil
}
