package ranking

import "math"

// Softmax converts raw scores to probabilities with temperature scaling.
// Lower temperature sharpens the gap between the top candidate and the rest;
// the floor keeps the division bounded. The max score (at least 0) is
// subtracted before exponentiation for numerical stability. Output sums to 1
// and is entrywise non-negative; an empty input yields nil.
func Softmax(scores []float64, temperature, floor float64) []float64 {
	if len(scores) == 0 {
		return nil
	}
	t := math.Max(floor, temperature)

	maxScore := 0.0
	for _, s := range scores {
		if s > maxScore {
			maxScore = s
		}
	}

	exps := make([]float64, len(scores))
	var sum float64
	for i, s := range scores {
		exps[i] = math.Exp((s - maxScore) / t)
		sum += exps[i]
	}
	if sum == 0 {
		sum = 1
	}
	for i := range exps {
		exps[i] /= sum
	}
	return exps
}
