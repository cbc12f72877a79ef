package recommend

import (
	"sort"

	"github.com/rateworks/recsys/pkg/models"
)

// PopularItems ranks products by mean rating, keeping only those with at
// least minRatings ratings, and returns the top n. This is the cold-start
// fallback. Aggregation walks products in ascending id order and the sort
// is stable, so equal means keep ascending product id order.
func PopularItems(records []models.RatingRecord, n, minRatings int) []models.ScoredProduct {
	sums := make(map[int64]float64)
	counts := make(map[int64]int)
	for _, r := range records {
		sums[r.ProductID] += r.Rating
		counts[r.ProductID]++
	}

	ids := make([]int64, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(a, b int) bool { return ids[a] < ids[b] })

	popular := make([]models.ScoredProduct, 0, len(ids))
	for _, id := range ids {
		if counts[id] < minRatings {
			continue
		}
		mean := sums[id] / float64(counts[id])
		popular = append(popular, models.ScoredProduct{
			ProductID:       id,
			Score:           mean,
			EstimatedRating: mean,
		})
	}

	sort.SliceStable(popular, func(a, b int) bool {
		return popular[a].Score > popular[b].Score
	})

	if n >= 0 && len(popular) > n {
		popular = popular[:n]
	}
	return popular
}
