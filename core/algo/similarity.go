package algo

import (
	"errors"
	"fmt"
	"math"

	"github.com/huangsam/lakerisk/schema"
)

// similarityDecay is the distance scale of the exponential similarity kernel.
// Components are compared in raw units, so turbidity dominates the distance.
const similarityDecay = 10.0

// Risk band boundaries on the adjusted score.
const (
	mediumRiskFloor = 0.34
	highRiskFloor   = 0.67
)

// FarDistanceThreshold is the nearest-lake distance beyond which inputs are flagged as unreliable.
// It is the distance at which similarity falls to 0.05.
var FarDistanceThreshold = similarityDecay * math.Log(20)

// ErrNonFinite is returned when a vector component is NaN or infinite.
var ErrNonFinite = errors.New("non-finite environment value")

// Distance returns the Euclidean distance between two environment vectors.
func Distance(a, b schema.EnvironmentVector) (float64, error) {
	if err := a.Validate(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrNonFinite, err)
	}
	if err := b.Validate(); err != nil {
		return 0, fmt.Errorf("%w: baseline %v", ErrNonFinite, err)
	}
	as, bs := a.Slice(), b.Slice()
	var sum float64
	for i := range as {
		d := as[i] - bs[i]
		sum += d * d
	}
	return math.Sqrt(sum), nil
}

// SimilarityFromDistance maps a distance to a similarity in (0, 1].
// exp underflows to 0 past a distance of about 7450, so the result is floored
// at the smallest positive float64.
func SimilarityFromDistance(d float64) float64 {
	return math.Max(math.Exp(-d/similarityDecay), math.SmallestNonzeroFloat64)
}

// Similarity returns exp(-distance/10) for the user vector against a lake baseline.
// Identical vectors give exactly 1.
func Similarity(user, baseline schema.EnvironmentVector) (float64, error) {
	d, err := Distance(user, baseline)
	if err != nil {
		return 0, err
	}
	return SimilarityFromDistance(d), nil
}

// Categorize maps an adjusted score to its risk band.
func Categorize(score float64) schema.RiskLevel {
	switch {
	case score >= highRiskFloor:
		return schema.HighRisk
	case score >= mediumRiskFloor:
		return schema.MediumRisk
	default:
		return schema.LowRisk
	}
}
