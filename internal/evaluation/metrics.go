package evaluation

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// PrecisionAtK is the fraction of the top-k recommendations that are
// relevant. A k of zero scores 0.
func PrecisionAtK(recommended []int64, relevant map[int64]bool, k int) float64 {
	if k == 0 {
		return 0
	}
	return float64(hitsAtK(recommended, relevant, k)) / float64(k)
}

// RecallAtK is the fraction of relevant items captured in the top-k.
// An empty relevant set scores 0.
func RecallAtK(recommended []int64, relevant map[int64]bool, k int) float64 {
	if len(relevant) == 0 {
		return 0
	}
	return float64(hitsAtK(recommended, relevant, k)) / float64(len(relevant))
}

// F1ScoreAtK is the harmonic mean of precision and recall at k, 0 when
// both are 0.
func F1ScoreAtK(recommended []int64, relevant map[int64]bool, k int) float64 {
	precision := PrecisionAtK(recommended, relevant, k)
	recall := RecallAtK(recommended, relevant, k)
	if precision+recall == 0 {
		return 0
	}
	return 2 * precision * recall / (precision + recall)
}

func hitsAtK(recommended []int64, relevant map[int64]bool, k int) int {
	if k > len(recommended) {
		k = len(recommended)
	}
	hits := 0
	for _, productID := range recommended[:k] {
		if relevant[productID] {
			hits++
		}
	}
	return hits
}

// CalculateRMSE is the root mean squared error over paired sequences.
func CalculateRMSE(actual, predicted []float64) (float64, error) {
	if len(actual) != len(predicted) {
		return 0, fmt.Errorf("mismatched lengths: %d actual, %d predicted", len(actual), len(predicted))
	}
	if len(actual) == 0 {
		return 0, nil
	}
	squared := make([]float64, len(actual))
	for i := range actual {
		diff := actual[i] - predicted[i]
		squared[i] = diff * diff
	}
	return math.Sqrt(stat.Mean(squared, nil)), nil
}

// CalculateMAE is the mean absolute error over paired sequences.
func CalculateMAE(actual, predicted []float64) (float64, error) {
	if len(actual) != len(predicted) {
		return 0, fmt.Errorf("mismatched lengths: %d actual, %d predicted", len(actual), len(predicted))
	}
	if len(actual) == 0 {
		return 0, nil
	}
	abs := make([]float64, len(actual))
	for i := range actual {
		abs[i] = math.Abs(actual[i] - predicted[i])
	}
	return stat.Mean(abs, nil), nil
}
