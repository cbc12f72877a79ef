// Package trending implements the recency-windowed top-N aggregate: mean
// rating per product over a trailing window, with a minimum rating count
// floor. It is a sibling of the collaborative-filtering engine and does
// not consult similarity at all.
package trending

import (
	"sort"
	"time"

	"github.com/rateworks/recsys/pkg/models"
)

// TopProducts ranks products rated in the last `days` days by mean
// rating, keeping only those with at least minRatings ratings inside the
// window, and returns the top n.
func TopProducts(records []models.RatingRecord, days, n, minRatings int) []models.TrendingProduct {
	cutoff := time.Now().AddDate(0, 0, -days)
	return TopProductsSince(records, cutoff, n, minRatings)
}

// TopProductsSince is TopProducts with an explicit window start.
func TopProductsSince(records []models.RatingRecord, cutoff time.Time, n, minRatings int) []models.TrendingProduct {
	sums := make(map[int64]float64)
	counts := make(map[int64]int)
	for _, r := range records {
		if r.Timestamp.Before(cutoff) {
			continue
		}
		sums[r.ProductID] += r.Rating
		counts[r.ProductID]++
	}

	ids := make([]int64, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(a, b int) bool { return ids[a] < ids[b] })

	top := make([]models.TrendingProduct, 0, len(ids))
	for _, id := range ids {
		if counts[id] < minRatings {
			continue
		}
		top = append(top, models.TrendingProduct{
			ProductID:   id,
			AvgRating:   sums[id] / float64(counts[id]),
			RatingCount: counts[id],
		})
	}

	sort.SliceStable(top, func(a, b int) bool {
		return top[a].AvgRating > top[b].AvgRating
	})

	if n >= 0 && len(top) > n {
		top = top[:n]
	}
	return top
}
