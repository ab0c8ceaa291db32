package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rshade/circulate/internal/config"
	"github.com/rshade/circulate/internal/dataset"
	"github.com/rshade/circulate/internal/engine"
	"github.com/rshade/circulate/internal/factors"
	"github.com/rshade/circulate/internal/report"
)

// errNoInput is returned when a command has neither an input file nor a
// dataset company to work on.
var errNoInput = errors.New("either --input or --dataset with --company is required")

// inputParams selects a company either from a standalone YAML file or from
// a dataset.
type inputParams struct {
	input   string
	dataset string
	company string
}

func (p *inputParams) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&p.input, "input", "", "YAML file with one company's inputs")
	registerDatasetFlag(cmd, &p.dataset)
	cmd.Flags().StringVar(&p.company, "company", "", "company ID in the dataset")
}

func registerDatasetFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVar(target, "dataset", "", "dataset YAML file (default dataset.path from configuration)")
}

func registerOutputFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVar(target, "output", "",
		"Output format: table, json, ndjson, or yaml (default output.default_format from configuration)")
}

// newRenderer returns a renderer for format writing to the command output.
// An empty format selects the configured default.
func newRenderer(cmd *cobra.Command, format string) (*report.Renderer, error) {
	if format == "" {
		format = config.GetDefaultOutputFormat()
	}
	f, err := report.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	return report.New(cmd.OutOrStdout(), f), nil
}

// factorTable returns the configured factor table.
func factorTable() (factors.Table, error) {
	table, err := config.GetGlobalConfig().FactorTable()
	if err != nil {
		return factors.Table{}, fmt.Errorf("selecting factor table: %w", err)
	}
	return table, nil
}

// loadDataset opens path, falling back to the configured dataset.
func loadDataset(path string, table factors.Table) (*dataset.Dataset, error) {
	cfg := config.GetGlobalConfig()
	if path == "" {
		path = cfg.Dataset.Path
	}
	if path == "" {
		return nil, errors.New("no dataset: pass --dataset or set dataset.path")
	}
	ds, err := dataset.Load(path,
		dataset.WithTable(table),
		dataset.WithColdStartMonths(cfg.Forecast.ColdStartMonths),
	)
	if err != nil {
		return nil, fmt.Errorf("loading dataset: %w", err)
	}
	return ds, nil
}

// resolveCompany returns the company selected by p. The dataset is returned
// too when one was loaded.
func resolveCompany(p inputParams, table factors.Table) (engine.CompanyInputs, *dataset.Dataset, error) {
	if p.input != "" {
		in, err := readCompanyInputs(p.input)
		return in, nil, err
	}
	if p.company == "" {
		return engine.CompanyInputs{}, nil, errNoInput
	}
	ds, err := loadDataset(p.dataset, table)
	if err != nil {
		return engine.CompanyInputs{}, nil, err
	}
	c, ok := ds.Company(p.company)
	if !ok {
		return engine.CompanyInputs{}, nil, fmt.Errorf("%w: %q", dataset.ErrUnknownCompany, p.company)
	}
	return c.CompanyInputs, ds, nil
}

// readCompanyInputs decodes one company in the dataset company layout.
func readCompanyInputs(path string) (engine.CompanyInputs, error) {
	f, err := os.Open(path)
	if err != nil {
		return engine.CompanyInputs{}, fmt.Errorf("opening input: %w", err)
	}
	defer f.Close()

	var in engine.CompanyInputs
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&in); err != nil && !errors.Is(err, io.EOF) {
		return engine.CompanyInputs{}, fmt.Errorf("decoding input %s: %w", path, err)
	}
	return in, nil
}
