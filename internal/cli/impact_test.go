package cli_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/circulate/internal/report"
)

func TestImpactCmd(t *testing.T) {
	out, err := runCLI(t, "impact",
		"--material", "steel", "--quantity", "2", "--unit", "ton", "--distance", "120",
		"--generated", "2000", "--exchanged", "500", "--recycled", "300",
		"--output", "json")
	require.NoError(t, err)

	var got report.ImpactReport
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.InDelta(t, 2920.0, got.Impact.CO2SavedKg, 1e-9, "2000 kg × 1.46")
	assert.Greater(t, got.Impact.TransportEmissionsKg, 0.0)
	assert.InDelta(t, got.Impact.CO2SavedKg-got.Impact.TransportEmissionsKg, got.Impact.NetCO2SavedKg, 0.005)
	assert.False(t, got.Impact.DefaultsUsed)
	require.NotNil(t, got.CircularityPercent)
	assert.InDelta(t, 40.0, *got.CircularityPercent, 1e-9)
}

func TestImpactCmdTable(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		contains    []string
		notContains []string
	}{
		{
			name:        "known material without circularity",
			args:        []string{"--material", "paper", "--quantity", "500"},
			contains:    []string{"EXCHANGE IMPACT", "Net CO2 saved"},
			notContains: []string{"Circularity rate", "default factors"},
		},
		{
			name:     "unknown material falls back",
			args:     []string{"--material", "unobtainium", "--quantity", "10", "--mode", "hovercraft"},
			contains: []string{"default factors were used"},
		},
		{
			name:     "circularity rate",
			args:     []string{"--material", "glass", "--quantity", "1", "--generated", "10", "--exchanged", "2"},
			contains: []string{"Circularity rate", "20.00 %"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runCLI(t, append([]string{"impact"}, tt.args...)...)
			require.NoError(t, err)
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.notContains {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func TestImpactCmdValidation(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantMsg string
	}{
		{name: "missing material", args: []string{"--quantity", "1"}, wantMsg: "material"},
		{name: "zero quantity", args: []string{"--material", "steel", "--quantity", "0"}, wantMsg: "--quantity"},
		{name: "negative quantity", args: []string{"--material", "steel", "--quantity", "-3"}, wantMsg: "--quantity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, append([]string{"impact"}, tt.args...)...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}
