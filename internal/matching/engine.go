package matching

import (
	"sort"
	"strconv"

	"github.com/google/uuid"

	"github.com/rshade/circulate/internal/factors"
	"github.com/rshade/circulate/internal/impact"
)

// matchNamespace seeds deterministic match IDs.
var matchNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://circulate.dev/match"))

// Engine scores and ranks candidates against one factor table. It holds
// no mutable state and is safe for concurrent use.
type Engine struct {
	table  factors.Table
	impact *impact.Calculator
}

// NewEngine returns an Engine bound to table.
func NewEngine(table factors.Table) *Engine {
	return &Engine{table: table, impact: impact.New(table)}
}

// DistanceBetween returns the haversine distance between the two listings,
// or an unknown distance if either location is missing or invalid.
func DistanceBetween(w WasteListing, n NeedListing) Distance {
	if w.Location == nil || n.Location == nil || !validPoint(*w.Location) || !validPoint(*n.Location) {
		return Distance{}
	}
	return KnownDistance(Haversine(*w.Location, *n.Location))
}

// RankMatches scores every candidate, keeps those scoring at least
// MinScore and returns the best MaxResults, highest first. Equal scores
// keep candidate order. A candidate that cannot be scored is recorded in
// Failures and the rest of the pool is still ranked.
func (e *Engine) RankMatches(w WasteListing, candidates []NeedListing) Ranking {
	r := Ranking{WasteListingID: w.ID, Evaluated: len(candidates)}

	accepted := make([]Match, 0, len(candidates))
	for i, n := range candidates {
		d := DistanceBetween(w, n)
		score, err := e.ScoreMatch(w, n, d)
		if err != nil {
			r.Failures = append(r.Failures, CandidateFailure{
				CandidateIndex: i,
				NeedListingID:  n.ID,
				Reason:         err.Error(),
			})
			continue
		}
		if score.Composite < MinScore {
			r.BelowThreshold++
			continue
		}
		accepted = append(accepted, Match{
			WasteListingID: w.ID,
			NeedListingID:  n.ID,
			BuyerCompanyID: n.CompanyID,
			CandidateIndex: i,
			Score:          score,
			Distance:       d,
		})
	}

	sort.SliceStable(accepted, func(a, b int) bool {
		return accepted[a].Score.Composite > accepted[b].Score.Composite
	})
	if len(accepted) > MaxResults {
		accepted = accepted[:MaxResults]
	}

	quantityKg := w.Quantity * e.table.ToKg(w.Unit)
	for i := range accepted {
		m := &accepted[i]
		n := candidates[m.CandidateIndex]
		m.ID = matchID(w, n, m.CandidateIndex)
		m.PredictedImpact = e.impact.ExchangeImpact(w.Category, quantityKg, m.Distance.Km, n.Transport)
	}

	r.Matches = accepted
	return r
}

func matchID(w WasteListing, n NeedListing, index int) string {
	key := w.ID + "|" + n.ID
	if w.ID == "" || n.ID == "" {
		key += "|" + strconv.Itoa(index)
	}
	return uuid.NewSHA1(matchNamespace, []byte(key)).String()
}
