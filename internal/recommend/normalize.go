package recommend

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/rateworks/recsys/pkg/models"
)

// NormalizationMethod selects how per-user rating bias is removed before
// similarity computation.
type NormalizationMethod int

const (
	// MeanCenter subtracts the user's mean rating.
	MeanCenter NormalizationMethod = iota
	// ZScore divides the mean-centered rating by the user's std dev.
	ZScore
	// MinMax rescales the user's ratings into [0, 1].
	MinMax
)

func (m NormalizationMethod) String() string {
	switch m {
	case MeanCenter:
		return "mean_center"
	case ZScore:
		return "z_score"
	case MinMax:
		return "min_max"
	}
	return fmt.Sprintf("normalization_method(%d)", int(m))
}

// ParseNormalizationMethod maps a configured method name onto the enum.
// Unsupported names fail here, at the boundary, so downstream switches
// never see an invalid method.
func ParseNormalizationMethod(s string) (NormalizationMethod, error) {
	switch s {
	case "mean_center":
		return MeanCenter, nil
	case "z_score":
		return ZScore, nil
	case "min_max":
		return MinMax, nil
	}
	return 0, fmt.Errorf("%w: unknown normalization method %q", models.ErrInvalidConfiguration, s)
}

// ComputeUserStats aggregates per-user rating statistics. StdRating is
// the sample standard deviation; users with a single rating get 0.
func ComputeUserStats(records []models.RatingRecord) map[int64]models.UserStats {
	byUser := make(map[int64][]float64)
	for _, r := range records {
		byUser[r.UserID] = append(byUser[r.UserID], r.Rating)
	}

	stats := make(map[int64]models.UserStats, len(byUser))
	for userID, ratings := range byUser {
		std := 0.0
		if len(ratings) > 1 {
			std = stat.StdDev(ratings, nil)
		}
		stats[userID] = models.UserStats{
			UserID:      userID,
			MeanRating:  stat.Mean(ratings, nil),
			StdRating:   std,
			MinRating:   floats.Min(ratings),
			MaxRating:   floats.Max(ratings),
			RatingCount: len(ratings),
		}
	}
	return stats
}

// Normalize computes the normalized rating field for every record, using
// that record's user statistics. The returned slice aligns with records
// and feeds BuildUserItemMatrix.
func Normalize(records []models.RatingRecord, method NormalizationMethod) ([]float64, error) {
	if len(records) == 0 {
		return nil, models.ErrEmptyTable
	}

	stats := ComputeUserStats(records)
	out := make([]float64, len(records))
	for i, r := range records {
		us := stats[r.UserID]
		switch method {
		case MeanCenter:
			out[i] = r.Rating - us.MeanRating
		case ZScore:
			out[i] = (r.Rating - us.MeanRating) / safeStd(us.StdRating)
		case MinMax:
			span := us.MaxRating - us.MinRating
			if span == 0 {
				span = 1
			}
			out[i] = (r.Rating - us.MinRating) / span
		default:
			return nil, fmt.Errorf("%w: normalization method %v", models.ErrInvalidConfiguration, method)
		}
	}
	return out, nil
}

// Denormalize maps a normalized value back to the rating scale.
// MinMax is returned unchanged: inverting it needs the user's minimum
// and range, which this signature does not carry. Callers that need an
// exact min-max inversion must rescale themselves.
func Denormalize(value, userMean, userStd float64, method NormalizationMethod) float64 {
	switch method {
	case MeanCenter:
		return value + userMean
	case ZScore:
		return value*safeStd(userStd) + userMean
	}
	return value
}

// safeStd guards the z-score division for users with constant ratings.
func safeStd(std float64) float64 {
	if std == 0 {
		return 1
	}
	return std
}
