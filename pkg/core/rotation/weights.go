package rotation

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/jakechorley/duty-rota/pkg/core/model"
)

// Weight model constants
const (
	// InitialWeight is given to every available person at the start of a run
	InitialWeight = 1.0

	// JitterMin and JitterMax bound the per-week multiplicative noise applied to each weight
	JitterMin = 0.8
	JitterMax = 1.2

	// HistoryFactorStep is the per-assignment increment of the history adjustment factor (1 + step*count)
	HistoryFactorStep = 0.1
)

// AdjustmentDirection controls how assignment history moves a person's weight
type AdjustmentDirection string

const (
	// AdjustDampen divides by the history factor so frequently assigned people are picked less
	AdjustDampen AdjustmentDirection = "dampen"

	// AdjustBoost multiplies by the history factor, favouring frequently assigned people
	AdjustBoost AdjustmentDirection = "boost"
)

// IsValid reports whether d is a known direction
func (d AdjustmentDirection) IsValid() bool {
	return d == AdjustDampen || d == AdjustBoost
}

// WeightState maps a person's name to a positive selection weight
type WeightState map[string]float64

// Clone returns a copy of the weights
func (w WeightState) Clone() WeightState {
	clone := make(WeightState, len(w))
	for name, weight := range w {
		clone[name] = weight
	}
	return clone
}

// Names returns the weighted names in sorted order.
// Every iteration that consumes randomness goes through this so seeded runs are reproducible.
func (w WeightState) Names() []string {
	names := make([]string, 0, len(w))
	for name := range w {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Sum returns the total weight
func (w WeightState) Sum() float64 {
	total := 0.0
	for _, name := range w.Names() {
		total += w[name]
	}
	return total
}

// Initialize assigns InitialWeight to every available person
func Initialize(roster []model.Person) (WeightState, error) {
	weights := make(WeightState)
	for _, person := range roster {
		if person.Available {
			weights[person.Name] = InitialWeight
		}
	}

	if len(weights) == 0 {
		return nil, ErrEmptyRoster
	}

	return weights, nil
}

// TargetExpectedAssignments is the number of assignments each person would get over the
// schedule if duty were spread perfectly evenly. It is a normalization target, not a cap.
func TargetExpectedAssignments(totalWeeks, availableCount int) float64 {
	if availableCount <= 0 {
		return 0
	}
	return float64(totalWeeks) / float64(availableCount)
}

// Normalize rescales the weights so they sum to target.
// The result is used as relative sampling weights, not a probability simplex.
func Normalize(weights WeightState, target float64) (WeightState, error) {
	total := weights.Sum()
	if total <= 0 || math.IsNaN(total) || math.IsInf(total, 0) {
		return nil, fmt.Errorf("%w (sum=%v)", ErrDegenerateWeights, total)
	}

	normalized := make(WeightState, len(weights))
	for name, weight := range weights {
		normalized[name] = weight / total * target
	}
	return normalized, nil
}

// Jitter multiplies every weight by an independent factor drawn from [JitterMin, JitterMax]
func Jitter(weights WeightState, rng *rand.Rand) WeightState {
	jittered := make(WeightState, len(weights))
	for _, name := range weights.Names() {
		factor := JitterMin + rng.Float64()*(JitterMax-JitterMin)
		jittered[name] = weights[name] * factor
	}
	return jittered
}

// AdjustForHistory scales each weight by 1 + HistoryFactorStep*count using the given direction
func AdjustForHistory(weights WeightState, history History, direction AdjustmentDirection) WeightState {
	adjusted := make(WeightState, len(weights))
	for name, weight := range weights {
		factor := 1.0 + HistoryFactorStep*float64(history.Count(name))
		if direction == AdjustBoost {
			adjusted[name] = weight * factor
		} else {
			adjusted[name] = weight / factor
		}
	}
	return adjusted
}

// uniformWeights resets every name to InitialWeight
func uniformWeights(names []string) WeightState {
	weights := make(WeightState, len(names))
	for _, name := range names {
		weights[name] = InitialWeight
	}
	return weights
}
