package matching

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/circulate/internal/factors"
)

type fakeRepo struct {
	needs []NeedListing
	err   error
}

func (f fakeRepo) CandidateNeeds(_ context.Context, category factors.Material, exclude string) ([]NeedListing, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []NeedListing
	for _, n := range f.needs {
		if n.Category == category && n.CompanyID != exclude {
			out = append(out, n)
		}
	}
	return out, nil
}

type fakeLocations map[string]Point

func (f fakeLocations) Location(_ context.Context, id string) (Point, bool, error) {
	p, ok := f[id]
	return p, ok, nil
}

type fakeRatings map[string]float64

func (f fakeRatings) Rating(_ context.Context, id string) (Rating, error) {
	if id == "broken" {
		return Unrated, errors.New("ratings store down")
	}
	if r, ok := f[id]; ok {
		return Rated(r), nil
	}
	return Unrated, nil
}

func TestServiceRankEnrichesFromCollaborators(t *testing.T) {
	n := steelNeed()
	n.CompanyID = "foundry"
	repo := fakeRepo{needs: []NeedListing{n}}
	locs := fakeLocations{"acme": {0, 0}, "foundry": {0, 0.45}}
	ratings := fakeRatings{"acme": 5, "foundry": 4}

	svc := NewService(NewEngine(factors.Default()), repo, WithLocations(locs), WithRatings(ratings))
	r, err := svc.Rank(context.Background(), steelListing())
	require.NoError(t, err)
	require.Len(t, r.Matches, 1)

	m := r.Matches[0]
	assert.True(t, m.Distance.Known)
	assert.InDelta(t, 100.0, m.Score.DistanceScore, 0)
	assert.InDelta(t, 90.0, m.Score.ReliabilityScore, 0)
}

func TestServiceRankExcludesOwnCompany(t *testing.T) {
	own := steelNeed()
	own.CompanyID = "acme"
	svc := NewService(NewEngine(factors.Default()), fakeRepo{needs: []NeedListing{own}})

	r, err := svc.Rank(context.Background(), steelListing())
	require.NoError(t, err)
	assert.Zero(t, r.Evaluated)
}

func TestServiceRankRepositoryError(t *testing.T) {
	svc := NewService(NewEngine(factors.Default()), fakeRepo{err: errors.New("db offline")})

	_, err := svc.Rank(context.Background(), steelListing())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db offline")
}

func TestServiceRankAllMatchesSequential(t *testing.T) {
	needs := pool(12)
	for i := range needs {
		needs[i].Location = &Point{float64(i) * 0.1, 0}
	}
	svc := NewService(NewEngine(factors.Default()), fakeRepo{needs: needs}, WithConcurrency(4))

	listings := make([]WasteListing, 20)
	for i := range listings {
		listings[i] = steelListing()
		listings[i].ID = fmt.Sprintf("w-%02d", i)
		listings[i].Quantity = float64(200 + i*100)
		listings[i].Location = &Point{0, float64(i) * 0.05}
	}

	concurrent, err := svc.RankAll(context.Background(), listings)
	require.NoError(t, err)
	require.Len(t, concurrent, len(listings))

	for i, w := range listings {
		sequential, err := svc.Rank(context.Background(), w)
		require.NoError(t, err)
		require.NoError(t, concurrent[i].Err)
		assert.Equal(t, sequential, concurrent[i].Ranking, "listing %s", w.ID)
	}
}

func TestServiceRankAllIsolatesListingErrors(t *testing.T) {
	svc := NewService(NewEngine(factors.Default()), fakeRepo{needs: pool(2)}, WithRatings(fakeRatings{}))

	good := steelListing()
	bad := steelListing()
	bad.ID = "w-bad"
	bad.CompanyID = "broken"

	results, err := svc.RankAll(context.Background(), []WasteListing{bad, good})
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Error(t, results[0].Err)
	assert.Contains(t, results[0].Err.Error(), "ratings store down")
	require.NoError(t, results[1].Err)
	assert.Len(t, results[1].Ranking.Matches, 2)
}

func TestServiceRankAllCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := NewService(NewEngine(factors.Default()), fakeRepo{needs: pool(2)})
	_, err := svc.RankAll(ctx, []WasteListing{steelListing()})
	require.ErrorIs(t, err, context.Canceled)
}
