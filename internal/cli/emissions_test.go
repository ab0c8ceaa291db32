package cli_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/circulate/internal/dataset"
	"github.com/rshade/circulate/internal/emissions"
	"github.com/rshade/circulate/internal/quality"
)

const companyFile = `company_id: solo
name: Solo Works
employees: 10
electricity_source: invoiced
no_fuel_use: true
profile:
  electricity_kwh: 10000
  grid: renewable_heavy
`

func writeCompany(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "company.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestEmissionsFromDataset(t *testing.T) {
	out, err := runCLI(t, "emissions", "--dataset", sampleDataset, "--company", "acme", "--output", "json")
	require.NoError(t, err)

	var got struct {
		Emissions emissions.Result `json:"emissions"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.InDelta(t, 1340.0, got.Emissions.Scope1, 1e-9, "500 L diesel")
	assert.InDelta(t, 8520.0, got.Emissions.Scope2, 1e-9, "12000 kWh on a mixed grid")
	assert.InDelta(t,
		got.Emissions.Scope1+got.Emissions.Scope2+got.Emissions.Scope3, got.Emissions.TotalCO2e, 1e-9)
	assert.NotEmpty(t, got.Emissions.Trace)
}

func TestEmissionsFromInputFile(t *testing.T) {
	out, err := runCLI(t, "emissions", "--input", writeCompany(t, companyFile))
	require.NoError(t, err)

	assert.Contains(t, out, "EMISSIONS (kg CO2e)")
	assert.Contains(t, out, "2,500.00", "10000 kWh at 0.25")
	assert.Contains(t, out, "Factors version:")
}

func TestEmissionsErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr error
		wantMsg string
	}{
		{
			name:    "no input",
			args:    []string{"emissions"},
			wantMsg: "either --input or --dataset",
		},
		{
			name:    "unknown company",
			args:    []string{"emissions", "--dataset", sampleDataset, "--company", "nobody"},
			wantErr: dataset.ErrUnknownCompany,
		},
		{
			name:    "missing dataset file",
			args:    []string{"emissions", "--dataset", "testdata/missing.yaml", "--company", "acme"},
			wantErr: os.ErrNotExist,
		},
		{
			name:    "company without dataset",
			args:    []string{"emissions", "--company", "acme"},
			wantMsg: "no dataset",
		},
		{
			name:    "invalid profile",
			args:    []string{"emissions", "--input", "testdata/negative.yaml"},
			wantErr: emissions.ErrInvalidInput,
		},
		{
			name:    "unknown field",
			args:    []string{"emissions", "--input", "testdata/unknown_field.yaml"},
			wantMsg: "decoding input",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, tt.args...)
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

func TestQualityCmd(t *testing.T) {
	out, err := runCLI(t, "quality", "--dataset", sampleDataset, "--company", "northmill", "--output", "json")
	require.NoError(t, err)

	var a quality.Assessment
	require.NoError(t, json.Unmarshal([]byte(out), &a))
	assert.True(t, a.HasFlag(quality.FlagWasteMissing))
	assert.True(t, a.HasFlag(quality.FlagElectricityEstimated))
	assert.Greater(t, a.Overall, 0.0)
	assert.Less(t, a.Overall, 100.0)
}

func TestQualityCmdTable(t *testing.T) {
	out, err := runCLI(t, "quality", "--input", writeCompany(t, companyFile))
	require.NoError(t, err)
	assert.Contains(t, out, "DATA QUALITY")
}
