package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rshade/circulate/internal/config"
	"github.com/rshade/circulate/internal/dataset"
	"github.com/rshade/circulate/internal/logging"
	"github.com/rshade/circulate/internal/matching"
	"github.com/rshade/circulate/internal/report"
)

// errNoListings is returned when the dataset has nothing to rank.
var errNoListings = errors.New("dataset has no waste listings")

// matchParams holds the parameters for the match command.
type matchParams struct {
	dataset     string
	listings    []string
	concurrency int
	output      string
}

// NewMatchCmd creates the "match" command that ranks waste listings against
// the need listings of other companies.
func NewMatchCmd() *cobra.Command {
	var params matchParams

	cmd := &cobra.Command{
		Use:   "match",
		Short: "Rank buyers for waste listings",
		Long: `Score every open need listing of the same material category against a
waste listing and print the best candidates. Without --listing every waste
listing in the dataset is ranked, concurrently.`,
		Example: matchExample,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return executeMatch(cmd, params)
		},
	}

	registerDatasetFlag(cmd, &params.dataset)
	cmd.Flags().StringSliceVar(&params.listings, "listing", nil, "waste listing ID to rank (repeatable)")
	cmd.Flags().IntVar(&params.concurrency, "concurrency", 0,
		"listings ranked in parallel (0 = matching.concurrency from configuration)")
	registerOutputFlag(cmd, &params.output)

	return cmd
}

const matchExample = `  # Rank every waste listing
  circulate match --dataset companies.yaml

  # One listing as JSON
  circulate match --dataset companies.yaml --listing w-steel-01 --output json

  # One JSON line per listing
  circulate match --dataset companies.yaml --output ndjson`

func executeMatch(cmd *cobra.Command, params matchParams) error {
	ctx := cmd.Context()
	log := logging.FromContext(ctx)
	start := time.Now()

	if params.concurrency < 0 {
		return fmt.Errorf("--concurrency must be >= 0, got %d", params.concurrency)
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
	listings, err := selectListings(ds, params.listings)
	if err != nil {
		return err
	}

	concurrency := params.concurrency
	if concurrency == 0 {
		concurrency = config.GetMatchConcurrency()
	}
	svc := matching.NewService(matching.NewEngine(table), ds,
		matching.WithLocations(ds),
		matching.WithRatings(ds),
		matching.WithConcurrency(concurrency),
	)

	results, err := svc.RankAll(ctx, listings)
	if err != nil {
		log.Error().Err(err).Msg("ranking failed")
		return fmt.Errorf("ranking listings: %w", err)
	}

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
		}
	}
	log.Info().Str("operation", "match").Int("listings", len(listings)).Int("failed", failed).
		Dur("duration_ms", time.Since(start)).Msg("ranking complete")

	return r.Rankings(report.ListingReports(listings, results))
}

// selectListings returns the listings named by ids, or all of them.
func selectListings(ds *dataset.Dataset, ids []string) ([]matching.WasteListing, error) {
	if len(ids) == 0 {
		if len(ds.WasteListings) == 0 {
			return nil, errNoListings
		}
		return ds.WasteListings, nil
	}
	out := make([]matching.WasteListing, 0, len(ids))
	for _, id := range ids {
		w, ok := ds.WasteListing(id)
		if !ok {
			return nil, fmt.Errorf("unknown waste listing %q", id)
		}
		out = append(out, w)
	}
	return out, nil
}
