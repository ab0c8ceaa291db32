package matching

import (
	"math"
	"strings"

	"github.com/rshade/circulate/internal/rounding"
)

// Composite weights.
const (
	WeightMaterial    = 0.40
	WeightQuantity    = 0.20
	WeightPrice       = 0.20
	WeightDistance    = 0.10
	WeightReliability = 0.10
)

// MinScore is the composite a candidate must reach to be kept.
const MinScore = 70

// MaxResults caps the number of ranked matches.
const MaxResults = 10

// neutralScore is used when a factor cannot be judged.
const neutralScore = 50

// ScoreMatch scores one pair at a known or unknown distance.
func (e *Engine) ScoreMatch(w WasteListing, n NeedListing, d Distance) (Score, error) {
	if err := e.validate(w, n); err != nil {
		return Score{}, err
	}

	s := Score{
		MaterialCompatibility: materialCompatibility(w, n),
		QuantityFit:           quantityFit(e.table.ToKg(w.Unit)*w.Quantity, e.table.ToKg(n.Unit), n),
		PriceCompatibility:    priceCompatibility(w, n),
		DistanceScore:         distanceScore(d, n.MaxDistanceKm),
		ReliabilityScore:      reliabilityScore(w, n),
	}
	composite := s.MaterialCompatibility*WeightMaterial +
		s.QuantityFit*WeightQuantity +
		s.PriceCompatibility*WeightPrice +
		s.DistanceScore*WeightDistance +
		s.ReliabilityScore*WeightReliability
	s.Composite = rounding.Clamp(rounding.Int(composite), 0, 100)
	return s, nil
}

func (e *Engine) validate(w WasteListing, n NeedListing) error {
	switch {
	case !finite(w.Quantity) || w.Quantity <= 0:
		return &ListingError{Listing: w.ID, Field: "quantity", Value: w.Quantity}
	case w.PricePerUnit != nil && !finite(*w.PricePerUnit):
		return &ListingError{Listing: w.ID, Field: "price_per_unit", Value: *w.PricePerUnit}
	case w.Location != nil && !validPoint(*w.Location):
		return &ListingError{Listing: w.ID, Field: "location", Value: *w.Location}
	case !finite(n.MinQuantity) || !finite(n.MaxQuantity) || n.MinQuantity < 0:
		return &ListingError{Listing: n.ID, Field: "quantity_range", Value: [2]float64{n.MinQuantity, n.MaxQuantity}}
	case n.MaxQuantity > 0 && n.MaxQuantity < n.MinQuantity:
		return &ListingError{Listing: n.ID, Field: "quantity_range", Value: [2]float64{n.MinQuantity, n.MaxQuantity}}
	case !finite(n.MaxBudgetPerUnit):
		return &ListingError{Listing: n.ID, Field: "max_budget_per_unit", Value: n.MaxBudgetPerUnit}
	case !finite(n.MaxDistanceKm):
		return &ListingError{Listing: n.ID, Field: "max_distance_km", Value: n.MaxDistanceKm}
	case n.Location != nil && !validPoint(*n.Location):
		return &ListingError{Listing: n.ID, Field: "location", Value: *n.Location}
	}
	return nil
}

// materialCompatibility gates on category, hazard tolerance and explicit
// exclusion, then awards 60 base points, 30 for an accepted sub-type (or
// 20 when the need accepts any sub-type) and 10 for meeting the grade.
func materialCompatibility(w WasteListing, n NeedListing) float64 {
	if w.Category != n.Category {
		return 0
	}
	if w.Hazardous && !n.AcceptsHazardous {
		return 0
	}
	if containsFold(n.ExcludedSubTypes, w.SubType) {
		return 0
	}

	points := 60.0
	switch {
	case len(n.AcceptedSubTypes) == 0:
		points += 20
	case containsFold(n.AcceptedSubTypes, w.SubType):
		points += 30
	}
	if w.Grade.Meets(n.MinGrade) {
		points += 10
	}
	return points
}

// quantityFit compares the listing quantity (kg) to the need range.
func quantityFit(quantityKg, needUnitToKg float64, n NeedListing) float64 {
	lo := n.MinQuantity * needUnitToKg
	hi := math.Inf(1)
	if n.MaxQuantity > 0 {
		hi = n.MaxQuantity * needUnitToKg
	}

	switch {
	case quantityKg >= lo && quantityKg <= hi:
		return 100
	case quantityKg > hi && quantityKg <= 1.5*hi:
		return 80
	case quantityKg < lo && quantityKg >= 0.5*lo:
		return 50
	case quantityKg < 0.5*lo:
		return 30
	default:
		return 60
	}
}

func priceCompatibility(w WasteListing, n NeedListing) float64 {
	if w.PricePerUnit == nil || *w.PricePerUnit <= 0 {
		return 100
	}
	if n.MaxBudgetPerUnit <= 0 {
		return 100
	}

	ratio := *w.PricePerUnit / n.MaxBudgetPerUnit
	switch {
	case ratio <= 0.8:
		return 100
	case ratio <= 1.0:
		return 90
	case ratio <= 1.1:
		return 70
	case ratio <= 1.2:
		return 50
	default:
		return 30
	}
}

func distanceScore(d Distance, maxKm float64) float64 {
	if maxKm <= 0 || !d.Known {
		return neutralScore
	}

	ratio := d.Km / maxKm
	switch {
	case ratio <= 0.3:
		return 100
	case ratio <= 0.5:
		return 90
	case ratio <= 0.8:
		return 75
	case ratio <= 1.0:
		return 60
	case ratio <= 1.2:
		return 40
	default:
		return 20
	}
}

// reliabilityScore maps the mean of both 1–5 ratings onto 20–100. Either
// party unrated or unidentified yields the neutral score.
func reliabilityScore(w WasteListing, n NeedListing) float64 {
	if w.CompanyID == "" || n.CompanyID == "" {
		return neutralScore
	}
	seller, sellerRated := w.Seller.Average()
	buyer, buyerRated := n.Buyer.Average()
	if !sellerRated || !buyerRated {
		return neutralScore
	}
	return rounding.Clamp((seller+buyer)/2*20, 0, 100)
}

func containsFold(set []string, v string) bool {
	if v == "" {
		return false
	}
	for _, s := range set {
		if strings.EqualFold(strings.TrimSpace(s), strings.TrimSpace(v)) {
			return true
		}
	}
	return false
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
