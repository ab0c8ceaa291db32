package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/rshade/circulate/internal/emissions"
	"github.com/rshade/circulate/internal/engine"
	"github.com/rshade/circulate/internal/forecast"
	"github.com/rshade/circulate/internal/impact"
	"github.com/rshade/circulate/internal/matching"
	"github.com/rshade/circulate/internal/quality"
)

// Format is an output format.
type Format string

const (
	FormatTable  Format = "table"
	FormatJSON   Format = "json"
	FormatNDJSON Format = "ndjson"
	FormatYAML   Format = "yaml"
)

// ParseFormat parses an output format name. The empty string is table.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatTable, nil
	case FormatTable, FormatJSON, FormatNDJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// tabwriterPadding is the minimum padding between table columns.
const tabwriterPadding = 2

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

// Renderer writes results to one writer in one format.
type Renderer struct {
	w      io.Writer
	format Format
	styled bool
}

// New returns a Renderer. Table headings are styled only when w is a
// terminal.
func New(w io.Writer, format Format) *Renderer {
	return &Renderer{w: w, format: format, styled: isTerminal(w)}
}

// WithStyle forces heading styling on or off.
func (r *Renderer) WithStyle(on bool) *Renderer {
	r.styled = on
	return r
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	if _, noColor := os.LookupEnv("NO_COLOR"); noColor {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

func (r *Renderer) heading(title string) error {
	if r.styled {
		title = headingStyle.Render(title)
	}
	_, err := fmt.Fprintln(r.w, title)
	return err
}

func (r *Renderer) warn(msg string) string {
	if r.styled {
		return warnStyle.Render(msg)
	}
	return msg
}

// encode writes v in a structured format. It reports false for table.
func (r *Renderer) encode(v any) (bool, error) {
	switch r.format {
	case FormatJSON:
		enc := json.NewEncoder(r.w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return true, fmt.Errorf("encoding JSON: %w", err)
		}
		return true, nil
	case FormatNDJSON:
		if err := json.NewEncoder(r.w).Encode(v); err != nil {
			return true, fmt.Errorf("encoding NDJSON: %w", err)
		}
		return true, nil
	case FormatYAML:
		enc := yaml.NewEncoder(r.w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return true, fmt.Errorf("encoding YAML: %w", err)
		}
		return true, enc.Close()
	default:
		return false, nil
	}
}

// EmissionsReport is an emissions result with its equivalencies.
type EmissionsReport struct {
	Emissions     emissions.Result `json:"emissions" yaml:"emissions"`
	Equivalencies Equivalencies    `json:"equivalencies" yaml:"equivalencies"`
}

// Emissions renders a scope breakdown and the formula trace.
func (r *Renderer) Emissions(res emissions.Result) error {
	rep := EmissionsReport{Emissions: res, Equivalencies: Equivalent(res.TotalCO2e)}
	if done, err := r.encode(rep); done {
		return err
	}

	if err := r.heading("EMISSIONS (kg CO2e)"); err != nil {
		return err
	}
	tw := tabwriter.NewWriter(r.w, 0, 0, tabwriterPadding, ' ', 0)
	rows := [][2]string{
		{"Scope 1 (fuel combustion)", FormatFloat(res.Scope1, 2)},
		{"Scope 2 (electricity)", FormatFloat(res.Scope2, 2)},
		{"Scope 3 (waste, supply chain)", FormatFloat(res.Scope3, 2)},
		{"Total", FormatFloat(res.TotalCO2e, 2)},
	}
	for _, row := range rows {
		if _, err := fmt.Fprintf(tw, "%s\t%s\n", row[0], row[1]); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(res.Trace) > 0 {
		if _, err := fmt.Fprintln(r.w); err != nil {
			return err
		}
		if err := r.heading("TRACE"); err != nil {
			return err
		}
		tw = tabwriter.NewWriter(r.w, 0, 0, tabwriterPadding, ' ', 0)
		if _, err := fmt.Fprintf(tw, "SOURCE\tSCOPE\tKG CO2E\tFORMULA\n"); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
		for _, t := range res.Trace {
			if _, err := fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n",
				t.Source, int(t.Scope), FormatFloat(t.KgCO2e, 2), t.Formula); err != nil {
				return fmt.Errorf("writing row: %w", err)
			}
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	if !rep.Equivalencies.Empty() {
		if _, err := fmt.Fprintf(r.w, "\n%s\n", rep.Equivalencies.DisplayText); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(r.w, "Factors version: %s\n", res.FactorsVersion)
	return err
}

// ImpactReport is an exchange impact with an optional circularity rate.
type ImpactReport struct {
	Impact             impact.Result `json:"impact" yaml:"impact"`
	CircularityPercent *float64      `json:"circularity_percent,omitempty" yaml:"circularity_percent,omitempty"`
}

// Impact renders the predicted impact of one exchange.
func (r *Renderer) Impact(rep ImpactReport) error {
	if done, err := r.encode(rep); done {
		return err
	}
	if err := r.heading("EXCHANGE IMPACT"); err != nil {
		return err
	}

	res := rep.Impact
	tw := tabwriter.NewWriter(r.w, 0, 0, tabwriterPadding, ' ', 0)
	rows := [][2]string{
		{"CO2 saved", FormatKg(res.CO2SavedKg)},
		{"Transport emissions", FormatKg(res.TransportEmissionsKg)},
		{"Net CO2 saved", FormatKg(res.NetCO2SavedKg)},
		{"Water saved", FormatFloat(res.WaterSavedLiters, 2) + " L"},
		{"Energy saved", FormatFloat(res.EnergySavedKWh, 2) + " kWh"},
		{"Landfill avoided", FormatFloat(res.LandfillAvoidedM3, 2) + " m³"},
	}
	if rep.CircularityPercent != nil {
		rows = append(rows, [2]string{"Circularity rate", FormatFloat(*rep.CircularityPercent, 2) + " %"})
	}
	for _, row := range rows {
		if _, err := fmt.Fprintf(tw, "%s\t%s\n", row[0], row[1]); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if res.DefaultsUsed {
		_, err := fmt.Fprintln(r.w, r.warn("Note: default factors were used for an unrecognised material or transport mode"))
		return err
	}
	return nil
}

// ListingReport is the ranking of one waste listing, or why it failed.
type ListingReport struct {
	WasteListingID string            `json:"waste_listing_id" yaml:"waste_listing_id"`
	Ranking        *matching.Ranking `json:"ranking,omitempty" yaml:"ranking,omitempty"`
	Error          string            `json:"error,omitempty" yaml:"error,omitempty"`
}

// ListingReports pairs RankAll results with their listings.
func ListingReports(listings []matching.WasteListing, results []matching.ListingResult) []ListingReport {
	out := make([]ListingReport, len(results))
	for i, res := range results {
		out[i].WasteListingID = listings[i].ID
		if res.Err != nil {
			out[i].Error = res.Err.Error()
			continue
		}
		ranking := res.Ranking
		out[i].Ranking = &ranking
	}
	return out
}

// Rankings renders match rankings. NDJSON writes one line per listing.
func (r *Renderer) Rankings(reports []ListingReport) error {
	if r.format == FormatNDJSON {
		for _, rep := range reports {
			if _, err := r.encode(rep); err != nil {
				return err
			}
		}
		return nil
	}
	if done, err := r.encode(reports); done {
		return err
	}

	for i, rep := range reports {
		if i > 0 {
			if _, err := fmt.Fprintln(r.w); err != nil {
				return err
			}
		}
		if err := r.heading("MATCHES FOR " + rep.WasteListingID); err != nil {
			return err
		}
		if rep.Error != "" {
			if _, err := fmt.Fprintln(r.w, r.warn("error: "+rep.Error)); err != nil {
				return err
			}
			continue
		}
		if err := r.rankingTable(*rep.Ranking); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) rankingTable(rk matching.Ranking) error {
	if len(rk.Matches) == 0 {
		if _, err := fmt.Fprintf(r.w, "No matches (%d evaluated, %d below threshold)\n",
			rk.Evaluated, rk.BelowThreshold); err != nil {
			return err
		}
	} else {
		tw := tabwriter.NewWriter(r.w, 0, 0, tabwriterPadding, ' ', 0)
		if _, err := fmt.Fprintf(tw, "RANK\tNEED\tBUYER\tSCORE\tMAT\tQTY\tPRICE\tDIST\tREL\tKM\tNET CO2 SAVED\n"); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
		for i, m := range rk.Matches {
			km := "-"
			if m.Distance.Known {
				km = FormatFloat(m.Distance.Km, 1)
			}
			s := m.Score
			if _, err := fmt.Fprintf(tw, "%d\t%s\t%s\t%.0f\t%.0f\t%.0f\t%.0f\t%.0f\t%.0f\t%s\t%s\n",
				i+1, m.NeedListingID, m.BuyerCompanyID, s.Composite,
				s.MaterialCompatibility, s.QuantityFit, s.PriceCompatibility, s.DistanceScore, s.ReliabilityScore,
				km, FormatKg(m.PredictedImpact.NetCO2SavedKg)); err != nil {
				return fmt.Errorf("writing row: %w", err)
			}
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(r.w, "%d evaluated, %d below threshold\n", rk.Evaluated, rk.BelowThreshold); err != nil {
			return err
		}
	}
	for _, f := range rk.Failures {
		msg := fmt.Sprintf("skipped candidate %d (%s): %s", f.CandidateIndex, f.NeedListingID, f.Reason)
		if _, err := fmt.Fprintln(r.w, r.warn(msg)); err != nil {
			return err
		}
	}
	return nil
}

// ForecastReport gathers the projections of one series.
type ForecastReport struct {
	Series     []float64            `json:"series" yaml:"series"`
	Smoothing  *forecast.Result     `json:"smoothing,omitempty" yaml:"smoothing,omitempty"`
	Interval   *forecast.Interval   `json:"interval,omitempty" yaml:"interval,omitempty"`
	Regression *forecast.Regression `json:"regression,omitempty" yaml:"regression,omitempty"`
	Annual     *forecast.Annual     `json:"annual,omitempty" yaml:"annual,omitempty"`
	Skipped    []string             `json:"skipped,omitempty" yaml:"skipped,omitempty"`
}

// Forecast renders projections.
func (r *Renderer) Forecast(rep ForecastReport) error {
	if done, err := r.encode(rep); done {
		return err
	}
	return r.forecastTables(rep)
}

func (r *Renderer) forecastTables(rep ForecastReport) error {
	if rep.Smoothing != nil {
		title := fmt.Sprintf("SMOOTHING FORECAST (alpha %.2f, volatility %.2f)", rep.Smoothing.Alpha, rep.Smoothing.Volatility)
		if err := r.pointsTable(title, rep.Smoothing.Points); err != nil {
			return err
		}
	}
	if rep.Regression != nil {
		reg := rep.Regression
		title := fmt.Sprintf("REGRESSION (slope %s, R² %.2f, %s)", FormatFloat(reg.Slope, 2), reg.R2, reg.Trend)
		if err := r.pointsTable(title, reg.Predictions); err != nil {
			return err
		}
		if !reg.Reliable {
			if _, err := fmt.Fprintln(r.w, r.warn("Low R²: regression predictions are indicative only")); err != nil {
				return err
			}
		}
	}
	if rep.Interval != nil {
		iv := rep.Interval
		if _, err := fmt.Fprintf(r.w, "\nMean %s ± %s (z %.3f, n %d): [%s, %s]\n",
			FormatFloat(iv.Mean, 2), FormatFloat(iv.StdDev, 2), iv.Z, iv.N,
			FormatFloat(iv.Lower, 2), FormatFloat(iv.Upper, 2)); err != nil {
			return err
		}
	}
	if rep.Annual != nil {
		a := rep.Annual
		if _, err := fmt.Fprintf(r.w, "Annual projection %s [%s, %s] (uncertainty ×%.2f)\n",
			FormatKg(a.Projected), FormatFloat(a.Lower, 2), FormatFloat(a.Upper, 2), a.UncertaintyMultiplier); err != nil {
			return err
		}
	}
	for _, s := range rep.Skipped {
		if _, err := fmt.Fprintln(r.w, r.warn("skipped "+s)); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) pointsTable(title string, points []forecast.Point) error {
	if _, err := fmt.Fprintln(r.w); err != nil {
		return err
	}
	if err := r.heading(title); err != nil {
		return err
	}
	tw := tabwriter.NewWriter(r.w, 0, 0, tabwriterPadding, ' ', 0)
	if _, err := fmt.Fprintf(tw, "PERIOD\tVALUE\tLOWER\tUPPER\n"); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, p := range points {
		if _, err := fmt.Fprintf(tw, "+%d\t%s\t%s\t%s\n", p.Period,
			FormatFloat(p.Value, 2), FormatFloat(p.Lower, 2), FormatFloat(p.Upper, 2)); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}
	return tw.Flush()
}

// Quality renders a data-quality assessment.
func (r *Renderer) Quality(a quality.Assessment) error {
	if done, err := r.encode(a); done {
		return err
	}
	return r.qualityTable(a)
}

func (r *Renderer) qualityTable(a quality.Assessment) error {
	if err := r.heading("DATA QUALITY"); err != nil {
		return err
	}
	tw := tabwriter.NewWriter(r.w, 0, 0, tabwriterPadding, ' ', 0)
	rows := [][2]string{
		{"Electricity", FormatFloat(a.Electricity, 2)},
		{"Fuel", FormatFloat(a.Fuel, 2)},
		{"Waste", FormatFloat(a.Waste, 2)},
		{"Overall", FormatFloat(a.Overall, 2)},
	}
	for _, row := range rows {
		if _, err := fmt.Fprintf(tw, "%s\t%s\n", row[0], row[1]); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if len(a.Flags) > 0 {
		flags := make([]string, len(a.Flags))
		for i, f := range a.Flags {
			flags[i] = string(f)
		}
		if _, err := fmt.Fprintln(r.w, r.warn("Flags: "+strings.Join(flags, ", "))); err != nil {
			return err
		}
	}
	return nil
}

// SnapshotReport is a snapshot with equivalencies of its total.
type SnapshotReport struct {
	Snapshot      engine.Snapshot `json:"snapshot" yaml:"snapshot"`
	Equivalencies Equivalencies   `json:"equivalencies" yaml:"equivalencies"`
}

// Snapshots renders company snapshots. NDJSON writes one line per company.
func (r *Renderer) Snapshots(snaps []engine.Snapshot) error {
	reports := make([]SnapshotReport, len(snaps))
	for i, s := range snaps {
		reports[i] = SnapshotReport{Snapshot: s, Equivalencies: Equivalent(s.Emissions.TotalCO2e)}
	}
	if r.format == FormatNDJSON {
		for _, rep := range reports {
			if _, err := r.encode(rep); err != nil {
				return err
			}
		}
		return nil
	}
	if done, err := r.encode(reports); done {
		return err
	}

	for i, s := range snaps {
		if i > 0 {
			if _, err := fmt.Fprintln(r.w); err != nil {
				return err
			}
		}
		if err := r.heading("== " + s.CompanyID + " =="); err != nil {
			return err
		}
		if err := r.snapshotSummary(s); err != nil {
			return err
		}
		if err := r.qualityTable(s.Quality); err != nil {
			return err
		}
		rep := ForecastReport{Skipped: s.ForecastSkipped}
		if p := s.Projection; p != nil {
			rep.Smoothing, rep.Interval, rep.Regression, rep.Annual = &p.Smoothing, p.Interval, p.Regression, &p.Annual
		}
		if err := r.forecastTables(rep); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) snapshotSummary(s engine.Snapshot) error {
	res := s.Emissions
	if _, err := fmt.Fprintf(r.w, "Total %s (scope 1 %s, scope 2 %s, scope 3 %s)\n",
		FormatKg(res.TotalCO2e), FormatFloat(res.Scope1, 2), FormatFloat(res.Scope2, 2),
		FormatFloat(res.Scope3, 2)); err != nil {
		return err
	}

	sources := make([]string, 0, len(res.Breakdown))
	for k := range res.Breakdown {
		sources = append(sources, k)
	}
	sort.Strings(sources)
	for _, k := range sources {
		if _, err := fmt.Fprintf(r.w, "  %s: %s\n", k, FormatFloat(res.Breakdown[k], 2)); err != nil {
			return err
		}
	}
	if eq := Equivalent(res.TotalCO2e); !eq.Empty() {
		if _, err := fmt.Fprintln(r.w, eq.DisplayText); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(r.w, "History: %d months\n", s.HistoryLength)
	return err
}

// Value renders any value in a structured format. Table falls back to YAML.
func (r *Renderer) Value(v any) error {
	if done, err := r.encode(v); done {
		return err
	}
	return (&Renderer{w: r.w, format: FormatYAML}).Value(v)
}
