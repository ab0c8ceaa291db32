// Package forecast projects emissions from a short, equally spaced series
// of observations, oldest first.
//
// The statistics are deliberately simple and must stay that way: the
// multi-step smoothing forecast is flat, and small samples widen the z-score
// by (1 + 1/(4n)) rather than using a Student-t table.
package forecast

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/rshade/circulate/internal/factors"
	"github.com/rshade/circulate/internal/rounding"
)

// Minimum series lengths.
const (
	MinSmoothingPoints  = 2
	MinRegressionPoints = 3
)

// Trend classifies a regression slope relative to the series mean.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendWorsening Trend = "worsening"
	TrendStable    Trend = "stable"
)

// Point is one forecast period. Period counts steps ahead from 1.
type Point struct {
	Period int     `json:"period" yaml:"period"`
	Value  float64 `json:"value" yaml:"value"`
	Lower  float64 `json:"lower" yaml:"lower"`
	Upper  float64 `json:"upper" yaml:"upper"`
}

// Result is a smoothing forecast.
type Result struct {
	Points       []Point   `json:"points" yaml:"points"`
	Smoothed     []float64 `json:"smoothed" yaml:"smoothed"`
	Alpha        float64   `json:"alpha" yaml:"alpha"`
	AlphaDerived bool      `json:"alpha_derived" yaml:"alpha_derived"`
	Volatility   float64   `json:"volatility" yaml:"volatility"`
	Margin       float64   `json:"margin" yaml:"margin"`
}

// Interval is a confidence interval around the series mean.
type Interval struct {
	N      int     `json:"n" yaml:"n"`
	Mean   float64 `json:"mean" yaml:"mean"`
	StdDev float64 `json:"std_dev" yaml:"std_dev"`
	Z      float64 `json:"z" yaml:"z"`
	Lower  float64 `json:"lower" yaml:"lower"`
	Upper  float64 `json:"upper" yaml:"upper"`
}

// Regression is an ordinary least squares fit against the period index.
type Regression struct {
	Slope       float64 `json:"slope" yaml:"slope"`
	Intercept   float64 `json:"intercept" yaml:"intercept"`
	R2          float64 `json:"r2" yaml:"r2"`
	Trend       Trend   `json:"trend" yaml:"trend"`
	Reliable    bool    `json:"reliable" yaml:"reliable"`
	Predictions []Point `json:"predictions" yaml:"predictions"`
}

// Annual is a twelve-month projection widened by data confidence.
type Annual struct {
	MonthlyAverage        float64 `json:"monthly_average" yaml:"monthly_average"`
	Projected             float64 `json:"projected" yaml:"projected"`
	Margin                float64 `json:"margin" yaml:"margin"`
	UncertaintyMultiplier float64 `json:"uncertainty_multiplier" yaml:"uncertainty_multiplier"`
	Lower                 float64 `json:"lower" yaml:"lower"`
	Upper                 float64 `json:"upper" yaml:"upper"`
}

// Forecaster evaluates series against one set of statistical constants.
type Forecaster struct {
	stats factors.Stats
}

// New returns a Forecaster using the statistical constants of table.
func New(table factors.Table) *Forecaster {
	return &Forecaster{stats: table.Stats}
}

// Smooth runs simple exponential smoothing and continues the final
// smoothed level flat for stepsAhead periods. A nil alpha is derived from
// the volatility of the series.
func (f *Forecaster) Smooth(series []float64, stepsAhead int, alpha *float64) (Result, error) {
	if stepsAhead < 0 {
		return Result{}, fmt.Errorf("%w: %d", ErrInvalidHorizon, stepsAhead)
	}
	fit, err := f.smooth(series, alpha)
	if err != nil {
		return Result{}, err
	}

	value := rounding.FloorZero(rounding.Round2(fit.level))
	lower := rounding.FloorZero(rounding.Round2(fit.level - fit.margin))
	upper := rounding.FloorZero(rounding.Round2(fit.level + fit.margin))

	res := Result{
		Points:       make([]Point, stepsAhead),
		Smoothed:     make([]float64, len(fit.smoothed)),
		Alpha:        fit.alpha,
		AlphaDerived: alpha == nil,
		Volatility:   rounding.Round2(fit.volatility),
		Margin:       rounding.Round2(fit.margin),
	}
	for i := range res.Points {
		res.Points[i] = Point{Period: i + 1, Value: value, Lower: lower, Upper: upper}
	}
	for i, s := range fit.smoothed {
		res.Smoothed[i] = rounding.Round2(s)
	}
	return res, nil
}

type smoothFit struct {
	alpha      float64
	volatility float64
	smoothed   []float64 // S_0..S_n; S_n is the forecast level
	level      float64
	margin     float64
}

func (f *Forecaster) smooth(series []float64, alpha *float64) (smoothFit, error) {
	if err := check(series, MinSmoothingPoints); err != nil {
		return smoothFit{}, err
	}

	fit := smoothFit{volatility: volatility(series)}
	switch {
	case alpha != nil:
		if !(*alpha > 0 && *alpha < 1) {
			return smoothFit{}, fmt.Errorf("%w: %w: %v", ErrInsufficientData, ErrInvalidAlpha, *alpha)
		}
		fit.alpha = *alpha
	case fit.volatility > f.stats.VolatilityThreshold:
		fit.alpha = f.stats.VolatileAlpha
	default:
		fit.alpha = f.stats.StableAlpha
	}

	fit.smoothed = make([]float64, len(series)+1)
	fit.smoothed[0] = series[0]
	for t := 1; t <= len(series); t++ {
		fit.smoothed[t] = fit.alpha*series[t-1] + (1-fit.alpha)*fit.smoothed[t-1]
	}
	fit.level = fit.smoothed[len(series)]

	if len(series) >= MinRegressionPoints {
		fit.margin = f.z(len(series)) * stat.StdDev(series, nil)
	}
	return fit, nil
}

// volatility is the standard deviation of the successive absolute
// differences divided by the mean level of the series.
func volatility(series []float64) float64 {
	diffs := make([]float64, len(series)-1)
	for i := 1; i < len(series); i++ {
		diffs[i-1] = math.Abs(series[i] - series[i-1])
	}
	if len(diffs) < 2 {
		return 0
	}

	spread := stat.StdDev(diffs, nil)
	level := math.Abs(stat.Mean(series, nil))
	if level == 0 {
		// No level to compare against; treat the spread as absolute.
		return spread
	}
	return spread / level
}

// z returns the two-sided z-score for a sample of n, widened by
// (1 + 1/(4n)) below the large-sample threshold.
func (f *Forecaster) z(n int) float64 {
	if n >= f.stats.LargeSampleN {
		return f.stats.Z
	}
	return f.stats.Z * (1 + 1/(4*float64(n)))
}

// ConfidenceInterval returns mean ± z·s using the sample standard deviation.
func (f *Forecaster) ConfidenceInterval(series []float64) (Interval, error) {
	if err := check(series, MinRegressionPoints); err != nil {
		return Interval{}, err
	}

	mean, sd := stat.MeanStdDev(series, nil)
	z := f.z(len(series))
	return Interval{
		N:      len(series),
		Mean:   rounding.Round2(mean),
		StdDev: rounding.Round2(sd),
		Z:      z,
		Lower:  rounding.FloorZero(rounding.Round2(mean - z*sd)),
		Upper:  rounding.FloorZero(rounding.Round2(mean + z*sd)),
	}, nil
}

// Regress fits y = intercept + slope·x over x = 0..n-1 and projects
// stepsAhead further periods. R² is advisory; Reliable never suppresses
// the predictions.
func (f *Forecaster) Regress(series []float64, stepsAhead int) (Regression, error) {
	if stepsAhead < 0 {
		return Regression{}, fmt.Errorf("%w: %d", ErrInvalidHorizon, stepsAhead)
	}
	if err := check(series, MinRegressionPoints); err != nil {
		return Regression{}, err
	}

	xs := make([]float64, len(series))
	for i := range xs {
		xs[i] = float64(i)
	}
	intercept, slope := stat.LinearRegression(xs, series, nil, false)
	r2 := stat.RSquared(xs, series, nil, intercept, slope)
	if math.IsNaN(r2) {
		// A constant series has no variance to explain.
		r2 = 0
	}

	threshold := f.stats.TrendThreshold * math.Abs(stat.Mean(series, nil))
	trend := TrendStable
	switch {
	case slope < -threshold:
		trend = TrendImproving
	case slope > threshold:
		trend = TrendWorsening
	}

	reg := Regression{
		Slope:       rounding.Round2(slope),
		Intercept:   rounding.Round2(intercept),
		R2:          rounding.Round2(r2),
		Trend:       trend,
		Reliable:    r2 > f.stats.ReliableR2,
		Predictions: make([]Point, stepsAhead),
	}
	last := float64(len(series) - 1)
	for k := 1; k <= stepsAhead; k++ {
		v := rounding.FloorZero(rounding.Round2(intercept + slope*(last+float64(k))))
		reg.Predictions[k-1] = Point{Period: k, Value: v, Lower: v, Upper: v}
	}
	return reg, nil
}

// AnnualProjection scales the smoothed monthly level to a year. The margin
// is the smoothing margin × √12 × ((100 − confidence)/50 + 1), so lower
// data confidence widens the interval.
func (f *Forecaster) AnnualProjection(series []float64, overallConfidence float64) (Annual, error) {
	fit, err := f.smooth(series, nil)
	if err != nil {
		return Annual{}, err
	}

	confidence := overallConfidence
	if math.IsNaN(confidence) {
		confidence = 0
	}
	confidence = rounding.Clamp(confidence, 0, 100)
	multiplier := (100-confidence)/50 + 1

	months := f.stats.MonthsPerYear
	projected := fit.level * months
	margin := fit.margin * math.Sqrt(months) * multiplier

	return Annual{
		MonthlyAverage:        rounding.FloorZero(rounding.Round2(fit.level)),
		Projected:             rounding.FloorZero(rounding.Round2(projected)),
		Margin:                rounding.Round2(margin),
		UncertaintyMultiplier: rounding.Round2(multiplier),
		Lower:                 rounding.FloorZero(rounding.Round2(projected - margin)),
		Upper:                 rounding.FloorZero(rounding.Round2(projected + margin)),
	}, nil
}

func check(series []float64, minimum int) error {
	if len(series) < minimum {
		return fmt.Errorf("%w: need at least %d observations, got %d", ErrInsufficientData, minimum, len(series))
	}
	for i, v := range series {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: observation %d", ErrInvalidSeries, i)
		}
	}
	return nil
}
