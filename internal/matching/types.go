// Package matching scores how well a waste listing fits the need listings
// of other companies and ranks the candidates.
//
// Scoring is a pure function of the pair. The five sub-scores are weighted
// 0.40 material, 0.20 quantity, 0.20 price, 0.10 distance and 0.10
// reliability; pairs below MinScore are discarded and at most MaxResults
// survivors are returned, highest first, ties kept in candidate order.
package matching

import (
	"github.com/rshade/circulate/internal/factors"
	"github.com/rshade/circulate/internal/impact"
)

// Point is a [longitude, latitude] pair in degrees.
type Point [2]float64

// Lon returns the longitude.
func (p Point) Lon() float64 { return p[0] }

// Lat returns the latitude.
func (p Point) Lat() float64 { return p[1] }

// Rating is a company's historical completed-deal rating on a 1–5 scale.
// The zero value is Unrated, which is kept distinct from a genuine rating
// even where both score the same.
type Rating struct {
	rated   bool
	average float64
}

// Unrated is the rating of a company with no completed deals.
var Unrated = Rating{}

// Rated returns a rating with the given 1–5 average.
func Rated(average float64) Rating {
	return Rating{rated: true, average: average}
}

// Average returns the rating and whether the company has any history.
func (r Rating) Average() (float64, bool) {
	return r.average, r.rated
}

// WasteListing is material offered by a producer.
type WasteListing struct {
	ID        string           `json:"id" yaml:"id"`
	CompanyID string           `json:"company_id" yaml:"company_id"`
	Category  factors.Material `json:"category" yaml:"category"`
	SubType   string           `json:"sub_type,omitempty" yaml:"sub_type,omitempty"`
	Quantity  float64          `json:"quantity" yaml:"quantity"`
	Unit      factors.Unit     `json:"unit" yaml:"unit"`
	Grade     factors.Grade    `json:"grade" yaml:"grade"`
	Hazardous bool             `json:"hazardous" yaml:"hazardous"`
	// PricePerUnit is nil when unpriced; zero means free.
	PricePerUnit *float64 `json:"price_per_unit,omitempty" yaml:"price_per_unit,omitempty"`
	Location     *Point   `json:"location,omitempty" yaml:"location,omitempty"`
	Seller       Rating   `json:"-" yaml:"-"`
}

// NeedListing is material sought by a buyer.
type NeedListing struct {
	ID               string           `json:"id" yaml:"id"`
	CompanyID        string           `json:"company_id" yaml:"company_id"`
	Category         factors.Material `json:"category" yaml:"category"`
	AcceptedSubTypes []string         `json:"accepted_sub_types,omitempty" yaml:"accepted_sub_types,omitempty"`
	ExcludedSubTypes []string         `json:"excluded_sub_types,omitempty" yaml:"excluded_sub_types,omitempty"`
	MinGrade         factors.Grade    `json:"min_grade" yaml:"min_grade"`
	MinQuantity      float64          `json:"min_quantity" yaml:"min_quantity"`
	// MaxQuantity of zero or less means no upper bound.
	MaxQuantity float64      `json:"max_quantity" yaml:"max_quantity"`
	Unit        factors.Unit `json:"unit" yaml:"unit"`
	// MaxBudgetPerUnit of zero or less means no budget ceiling.
	MaxBudgetPerUnit float64 `json:"max_budget_per_unit,omitempty" yaml:"max_budget_per_unit,omitempty"`
	// MaxDistanceKm of zero or less means no distance preference.
	MaxDistanceKm    float64               `json:"max_distance_km,omitempty" yaml:"max_distance_km,omitempty"`
	AcceptsHazardous bool                  `json:"accepts_hazardous" yaml:"accepts_hazardous"`
	Transport        factors.TransportMode `json:"transport" yaml:"transport"`
	Location         *Point                `json:"location,omitempty" yaml:"location,omitempty"`
	Buyer            Rating                `json:"-" yaml:"-"`
}

// Distance is a great-circle distance that may be unknown.
type Distance struct {
	Km    float64 `json:"km" yaml:"km"`
	Known bool    `json:"known" yaml:"known"`
}

// KnownDistance returns a known distance of km.
func KnownDistance(km float64) Distance { return Distance{Km: km, Known: true} }

// Score holds the five sub-scores and the weighted composite, all in [0, 100].
type Score struct {
	MaterialCompatibility float64 `json:"material_compatibility" yaml:"material_compatibility"`
	QuantityFit           float64 `json:"quantity_fit" yaml:"quantity_fit"`
	PriceCompatibility    float64 `json:"price_compatibility" yaml:"price_compatibility"`
	DistanceScore         float64 `json:"distance_score" yaml:"distance_score"`
	ReliabilityScore      float64 `json:"reliability_score" yaml:"reliability_score"`
	Composite             float64 `json:"composite" yaml:"composite"`
}

// Match is an accepted candidate with its predicted impact.
type Match struct {
	ID              string        `json:"id" yaml:"id"`
	WasteListingID  string        `json:"waste_listing_id" yaml:"waste_listing_id"`
	NeedListingID   string        `json:"need_listing_id" yaml:"need_listing_id"`
	BuyerCompanyID  string        `json:"buyer_company_id" yaml:"buyer_company_id"`
	CandidateIndex  int           `json:"candidate_index" yaml:"candidate_index"`
	Score           Score         `json:"score" yaml:"score"`
	Distance        Distance      `json:"distance" yaml:"distance"`
	PredictedImpact impact.Result `json:"predicted_impact" yaml:"predicted_impact"`
}

// Ranking is the outcome of ranking one waste listing against a pool.
type Ranking struct {
	WasteListingID string             `json:"waste_listing_id" yaml:"waste_listing_id"`
	Matches        []Match            `json:"matches" yaml:"matches"`
	Evaluated      int                `json:"evaluated" yaml:"evaluated"`
	BelowThreshold int                `json:"below_threshold" yaml:"below_threshold"`
	Failures       []CandidateFailure `json:"failures,omitempty" yaml:"failures,omitempty"`
}

// CandidateFailure records a candidate that could not be scored.
type CandidateFailure struct {
	CandidateIndex int    `json:"candidate_index" yaml:"candidate_index"`
	NeedListingID  string `json:"need_listing_id" yaml:"need_listing_id"`
	Reason         string `json:"reason" yaml:"reason"`
}
