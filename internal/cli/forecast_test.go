package cli_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/rshade/circulate/internal/cli"
	"github.com/rshade/circulate/internal/engine"
	"github.com/rshade/circulate/internal/forecast"
	"github.com/rshade/circulate/internal/report"
)

func decodeForecast(t *testing.T, out string) report.ForecastReport {
	t.Helper()
	var rep report.ForecastReport
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	return rep
}

func TestForecastCmdSeries(t *testing.T) {
	out, err := runCLI(t, "forecast", "--series", "100,110,105,120,115,130", "--output", "json")
	require.NoError(t, err)

	rep := decodeForecast(t, out)
	require.NotNil(t, rep.Smoothing)
	require.Len(t, rep.Smoothing.Points, engine.DefaultStepsAhead)
	assert.InDelta(t, 116.32, rep.Smoothing.Points[0].Value, 1e-9)
	assert.InDelta(t, 0.3, rep.Smoothing.Alpha, 1e-12)

	require.NotNil(t, rep.Interval)
	assert.InDelta(t, 113.33, rep.Interval.Mean, 1e-9)
	require.NotNil(t, rep.Regression)
	assert.Equal(t, forecast.TrendWorsening, rep.Regression.Trend)
	require.NotNil(t, rep.Annual)
	assert.InDelta(t, 1395.9, rep.Annual.Projected, 1e-9)
	assert.Empty(t, rep.Skipped)
}

func TestForecastCmdOptions(t *testing.T) {
	out, err := runCLI(t, "forecast", "--series", "10,20", "--steps", "5", "--alpha", "0.5", "--output", "json")
	require.NoError(t, err)

	rep := decodeForecast(t, out)
	require.NotNil(t, rep.Smoothing)
	assert.Len(t, rep.Smoothing.Points, 5)
	assert.InDelta(t, 15.0, rep.Smoothing.Points[0].Value, 1e-9)
	assert.False(t, rep.Smoothing.AlphaDerived)
	assert.Nil(t, rep.Interval)
	assert.Nil(t, rep.Regression)
	assert.Len(t, rep.Skipped, 2, "interval and regression need three points")
}

func TestForecastCmdSinglePoint(t *testing.T) {
	out, err := runCLI(t, "forecast", "--series", "42", "--output", "json")
	require.NoError(t, err)

	rep := decodeForecast(t, out)
	assert.Nil(t, rep.Smoothing)
	require.Len(t, rep.Skipped, 1)
	assert.Contains(t, rep.Skipped[0], "smoothing")
}

func TestForecastCmdCompanyHistory(t *testing.T) {
	out, err := runCLI(t, "forecast", "--dataset", sampleDataset, "--company", "acme", "--output", "yaml")
	require.NoError(t, err)

	var rep struct {
		Series []float64 `yaml:"series"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &rep))
	assert.Equal(t, []float64{9800, 10100, 9950, 10400, 10250, 10600}, rep.Series)
}

func TestForecastCmdColdStart(t *testing.T) {
	out, err := runCLI(t, "forecast", "--dataset", sampleDataset, "--company", "brightworks", "--output", "json")
	require.NoError(t, err)

	rep := decodeForecast(t, out)
	assert.Len(t, rep.Series, 12, "default cold-start length")
	require.NotNil(t, rep.Smoothing)
}

func TestForecastCmdTable(t *testing.T) {
	out, err := runCLI(t, "forecast", "--series", "100,110,105,120,115,130")
	require.NoError(t, err)
	assert.Contains(t, out, "PERIOD")
	assert.Contains(t, out, "Annual projection")
}

func TestForecastCmdErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr error
		wantMsg string
	}{
		{name: "no series", args: []string{}, wantMsg: "either --series or --company"},
		{name: "invalid alpha", args: []string{"--series", "1,2,3", "--alpha", "1.5"}, wantErr: forecast.ErrInvalidAlpha},
		{name: "alpha of one", args: []string{"--series", "1,2,3", "--alpha", "1"}, wantErr: forecast.ErrInvalidAlpha},
		{name: "negative steps", args: []string{"--series", "1,2,3", "--steps", "-1"}, wantMsg: "--steps"},
		{name: "bad number", args: []string{"--series", "1,abc"}, wantMsg: "invalid argument"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, append([]string{"forecast"}, tt.args...)...)
			require.Error(t, err)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			}
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestForecastCmdAlphaUsage(t *testing.T) {
	flag := cli.NewForecastCmd().Flags().Lookup("alpha")
	require.NotNil(t, flag)
	assert.Contains(t, flag.Usage, "(0, 1)")
}
