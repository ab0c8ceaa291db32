package dataset

import (
	"hash/fnv"
	"math"
	"math/rand/v2"

	"github.com/rshade/circulate/internal/rounding"
)

// DefaultColdStartMonths is the length of a synthetic history.
const DefaultColdStartMonths = 12

const (
	seasonalAmplitude = 0.08
	noiseAmplitude    = 0.05
	monthlyDrift      = 0.005
)

// ColdStart returns months synthetic monthly observations ending near
// baseline: a yearly seasonal swing, a slight downward drift towards the
// present and bounded noise. The same seed always yields the same series.
func ColdStart(baseline float64, months int, seed string) []float64 {
	if months <= 0 {
		return nil
	}
	if !(baseline > 0) || math.IsInf(baseline, 0) {
		return make([]float64, months)
	}

	h := fnv.New64a()
	_, _ = h.Write([]byte(seed))
	rng := rand.New(rand.NewPCG(h.Sum64(), uint64(months)))

	series := make([]float64, months)
	for i := range series {
		age := float64(months - 1 - i)
		season := seasonalAmplitude * math.Sin(2*math.Pi*float64(i)/12)
		noise := noiseAmplitude * (2*rng.Float64() - 1)
		v := baseline * (1 + monthlyDrift*age) * (1 + season + noise)
		series[i] = rounding.FloorZero(rounding.Round2(v))
	}
	return series
}
