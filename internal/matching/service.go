package matching

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/rshade/circulate/internal/factors"
	"github.com/rshade/circulate/internal/logging"
)

// ListingRepository returns need listings for a category, excluding those
// owned by excludeCompanyID.
type ListingRepository interface {
	CandidateNeeds(ctx context.Context, category factors.Material, excludeCompanyID string) ([]NeedListing, error)
}

// LocationLookup resolves a company's coordinates. ok is false when the
// company has no known location.
type LocationLookup interface {
	Location(ctx context.Context, companyID string) (p Point, ok bool, err error)
}

// RatingLookup resolves a company's historical deal rating.
type RatingLookup interface {
	Rating(ctx context.Context, companyID string) (Rating, error)
}

// Service feeds the Engine from the consumed collaborators. Lookups happen
// before scoring; scoring itself is pure.
type Service struct {
	engine      *Engine
	listings    ListingRepository
	locations   LocationLookup
	ratings     RatingLookup
	concurrency int
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLocations sets the location lookup used for listings without coordinates.
func WithLocations(l LocationLookup) ServiceOption {
	return func(s *Service) { s.locations = l }
}

// WithRatings sets the rating lookup.
func WithRatings(r RatingLookup) ServiceOption {
	return func(s *Service) { s.ratings = r }
}

// WithConcurrency bounds the number of listings ranked at once by RankAll.
// Values below 1 use runtime.NumCPU().
func WithConcurrency(n int) ServiceOption {
	return func(s *Service) { s.concurrency = n }
}

// NewService returns a Service over engine and listings.
func NewService(engine *Engine, listings ListingRepository, opts ...ServiceOption) *Service {
	s := &Service{engine: engine, listings: listings}
	for _, opt := range opts {
		opt(s)
	}
	if s.concurrency < 1 {
		s.concurrency = runtime.NumCPU()
	}
	return s
}

// Rank looks up the candidate pool for w, fills in missing locations and
// ratings, and ranks the pool.
func (s *Service) Rank(ctx context.Context, w WasteListing) (Ranking, error) {
	log := logging.FromContext(ctx).With().
		Str("component", "matching").
		Str("waste_listing_id", w.ID).
		Logger()

	needs, err := s.listings.CandidateNeeds(ctx, w.Category, w.CompanyID)
	if err != nil {
		return Ranking{}, fmt.Errorf("loading candidate needs for %s: %w", w.ID, err)
	}

	w, err = s.enrichWaste(ctx, w)
	if err != nil {
		return Ranking{}, err
	}
	pool := make([]NeedListing, len(needs))
	for i, n := range needs {
		if pool[i], err = s.enrichNeed(ctx, n); err != nil {
			return Ranking{}, err
		}
	}

	r := s.engine.RankMatches(w, pool)
	for _, f := range r.Failures {
		log.Warn().Str("need_listing_id", f.NeedListingID).Str("reason", f.Reason).Msg("candidate skipped")
	}
	log.Debug().
		Int("evaluated", r.Evaluated).
		Int("below_threshold", r.BelowThreshold).
		Int("matches", len(r.Matches)).
		Msg("ranked candidates")
	return r, nil
}

// ListingResult is the outcome of ranking one listing within RankAll.
type ListingResult struct {
	Ranking Ranking
	Err     error
}

// RankAll ranks every listing concurrently. Results are in input order and
// identical to ranking each listing sequentially. A failing listing is
// reported in its own result without stopping the others; only context
// cancellation aborts the run.
func (s *Service) RankAll(ctx context.Context, listings []WasteListing) ([]ListingResult, error) {
	results := make([]ListingResult, len(listings))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, w := range listings {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			r, err := s.Rank(gCtx, w)
			results[i] = ListingResult{Ranking: r, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) enrichWaste(ctx context.Context, w WasteListing) (WasteListing, error) {
	if w.Location == nil {
		p, err := s.lookupLocation(ctx, w.CompanyID)
		if err != nil {
			return w, err
		}
		w.Location = p
	}
	rating, err := s.lookupRating(ctx, w.CompanyID, w.Seller)
	if err != nil {
		return w, err
	}
	w.Seller = rating
	return w, nil
}

func (s *Service) enrichNeed(ctx context.Context, n NeedListing) (NeedListing, error) {
	if n.Location == nil {
		p, err := s.lookupLocation(ctx, n.CompanyID)
		if err != nil {
			return n, err
		}
		n.Location = p
	}
	rating, err := s.lookupRating(ctx, n.CompanyID, n.Buyer)
	if err != nil {
		return n, err
	}
	n.Buyer = rating
	return n, nil
}

func (s *Service) lookupLocation(ctx context.Context, companyID string) (*Point, error) {
	if s.locations == nil || companyID == "" {
		return nil, nil
	}
	p, ok, err := s.locations.Location(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("looking up location of %s: %w", companyID, err)
	}
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// lookupRating returns the looked-up rating, or current when no lookup applies.
func (s *Service) lookupRating(ctx context.Context, companyID string, current Rating) (Rating, error) {
	if s.ratings == nil || companyID == "" {
		return current, nil
	}
	r, err := s.ratings.Rating(ctx, companyID)
	if err != nil {
		return current, fmt.Errorf("looking up rating of %s: %w", companyID, err)
	}
	return r, nil
}
