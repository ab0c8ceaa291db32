// Package dataset loads companies, listings and monthly histories from a
// YAML file and serves them to the matching service and snapshot engine.
//
// A Dataset is read-only after Load, so one value may back concurrent
// rankings.
package dataset

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/rshade/circulate/internal/emissions"
	"github.com/rshade/circulate/internal/engine"
	"github.com/rshade/circulate/internal/factors"
	"github.com/rshade/circulate/internal/matching"
)

// constError is an immutable error type for sentinel errors.
type constError string

func (e constError) Error() string { return string(e) }

var (
	// ErrInvalidDataset indicates a dataset file that cannot be used.
	ErrInvalidDataset = constError("invalid dataset")

	// ErrUnknownCompany indicates a company ID absent from the dataset.
	ErrUnknownCompany = constError("unknown company")
)

// Company is one company record.
type Company struct {
	engine.CompanyInputs `yaml:",inline"`

	Location *matching.Point `yaml:"location,omitempty"`
	// Rating is the 1–5 average of completed deals; nil means unrated.
	Rating *float64 `yaml:"rating,omitempty"`
	// History is the monthly emissions series in kg CO2e, oldest first.
	History []float64 `yaml:"history,omitempty"`
}

// Dataset is the content of one dataset file.
type Dataset struct {
	Companies     []Company               `yaml:"companies"`
	WasteListings []matching.WasteListing `yaml:"waste_listings"`
	NeedListings  []matching.NeedListing  `yaml:"need_listings"`

	byID      map[string]int
	emissions *emissions.Calculator
	coldStart int
}

// Option configures a Dataset.
type Option func(*Dataset)

// WithTable sets the factor table used to derive cold-start baselines.
func WithTable(table factors.Table) Option {
	return func(d *Dataset) { d.emissions = emissions.New(table) }
}

// WithColdStartMonths sets the length of synthetic histories.
func WithColdStartMonths(n int) Option {
	return func(d *Dataset) {
		if n > 0 {
			d.coldStart = n
		}
	}
}

// Load reads and validates the dataset at path.
func Load(path string, opts ...Option) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dataset: %w", err)
	}
	defer f.Close()

	d, err := Decode(f, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// Parse decodes a dataset from YAML bytes.
func Parse(data []byte, opts ...Option) (*Dataset, error) {
	return Decode(bytes.NewReader(data), opts...)
}

// Decode reads a dataset from r. Unknown fields are rejected.
func Decode(r io.Reader, opts ...Option) (*Dataset, error) {
	d := &Dataset{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(d); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDataset, err)
	}

	d.emissions = emissions.New(factors.Default())
	d.coldStart = DefaultColdStartMonths
	for _, opt := range opts {
		opt(d)
	}
	if err := d.index(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Dataset) index() error {
	d.byID = make(map[string]int, len(d.Companies))
	for i, c := range d.Companies {
		if c.CompanyID == "" {
			return fmt.Errorf("%w: companies[%d] has no company_id", ErrInvalidDataset, i)
		}
		if _, dup := d.byID[c.CompanyID]; dup {
			return fmt.Errorf("%w: duplicate company %q", ErrInvalidDataset, c.CompanyID)
		}
		if c.Rating != nil && (*c.Rating < 1 || *c.Rating > 5) {
			return fmt.Errorf("%w: company %q rating %v outside 1-5", ErrInvalidDataset, c.CompanyID, *c.Rating)
		}
		d.byID[c.CompanyID] = i
	}

	seen := map[string]struct{}{}
	for i, w := range d.WasteListings {
		if err := uniqueID(seen, "waste_listings", i, w.ID); err != nil {
			return err
		}
		if err := d.knownOwner(w.ID, w.CompanyID); err != nil {
			return err
		}
	}
	for i, n := range d.NeedListings {
		if err := uniqueID(seen, "need_listings", i, n.ID); err != nil {
			return err
		}
		if err := d.knownOwner(n.ID, n.CompanyID); err != nil {
			return err
		}
	}
	return nil
}

// knownOwner rejects a listing whose company is not in the dataset.
func (d *Dataset) knownOwner(listingID, companyID string) error {
	if _, ok := d.byID[companyID]; !ok {
		return fmt.Errorf("%w: listing %q references unknown company %q", ErrInvalidDataset, listingID, companyID)
	}
	return nil
}

func uniqueID(seen map[string]struct{}, section string, i int, id string) error {
	if id == "" {
		return fmt.Errorf("%w: %s[%d] has no id", ErrInvalidDataset, section, i)
	}
	if _, dup := seen[id]; dup {
		return fmt.Errorf("%w: duplicate listing %q", ErrInvalidDataset, id)
	}
	seen[id] = struct{}{}
	return nil
}

// Company returns the company with the given ID.
func (d *Dataset) Company(id string) (Company, bool) {
	i, ok := d.byID[id]
	if !ok {
		return Company{}, false
	}
	return d.Companies[i], true
}

// WasteListing returns the waste listing with the given ID.
func (d *Dataset) WasteListing(id string) (matching.WasteListing, bool) {
	for _, w := range d.WasteListings {
		if w.ID == id {
			return w, true
		}
	}
	return matching.WasteListing{}, false
}

// CandidateNeeds implements matching.ListingRepository.
func (d *Dataset) CandidateNeeds(
	ctx context.Context,
	category factors.Material,
	excludeCompanyID string,
) ([]matching.NeedListing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []matching.NeedListing
	for _, n := range d.NeedListings {
		if n.Category != category || n.CompanyID == excludeCompanyID {
			continue
		}
		n.AcceptedSubTypes = slices.Clone(n.AcceptedSubTypes)
		n.ExcludedSubTypes = slices.Clone(n.ExcludedSubTypes)
		out = append(out, n)
	}
	return out, nil
}

// Location implements matching.LocationLookup.
func (d *Dataset) Location(ctx context.Context, companyID string) (matching.Point, bool, error) {
	if err := ctx.Err(); err != nil {
		return matching.Point{}, false, err
	}
	c, ok := d.Company(companyID)
	if !ok || c.Location == nil {
		return matching.Point{}, false, nil
	}
	return *c.Location, true, nil
}

// Rating implements matching.RatingLookup. Unknown companies are unrated.
func (d *Dataset) Rating(ctx context.Context, companyID string) (matching.Rating, error) {
	if err := ctx.Err(); err != nil {
		return matching.Unrated, err
	}
	c, ok := d.Company(companyID)
	if !ok || c.Rating == nil {
		return matching.Unrated, nil
	}
	return matching.Rated(*c.Rating), nil
}

// MonthlyHistory implements engine.HistorySource. A company without
// recorded history gets a synthetic series around its current emissions.
func (d *Dataset) MonthlyHistory(ctx context.Context, companyID string) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c, ok := d.Company(companyID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCompany, companyID)
	}
	if len(c.History) > 0 {
		return slices.Clone(c.History), nil
	}

	current, err := d.emissions.TotalCarbon(c.Inputs.Profile)
	if err != nil {
		return nil, fmt.Errorf("cold-start baseline for %s: %w", companyID, err)
	}
	return ColdStart(current.TotalCO2e, d.coldStart, companyID), nil
}
