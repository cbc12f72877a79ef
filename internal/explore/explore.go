// Package explore provides read-only dataset statistics for a rating
// table: sparsity, rating distribution, and the most active users and
// products. It consumes the table; the engine never calls it.
package explore

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/rateworks/recsys/pkg/models"
)

// Sparsity reports how full the user-item matrix would be.
func Sparsity(records []models.RatingRecord) models.SparsityReport {
	users := make(map[int64]struct{})
	products := make(map[int64]struct{})
	for _, r := range records {
		users[r.UserID] = struct{}{}
		products[r.ProductID] = struct{}{}
	}

	report := models.SparsityReport{
		Users:    len(users),
		Products: len(products),
		Ratings:  len(records),
	}
	report.PossibleRatings = report.Users * report.Products
	if report.PossibleRatings > 0 {
		report.Density = float64(report.Ratings) / float64(report.PossibleRatings)
		report.Sparsity = 1 - report.Density
	}
	if report.Users > 0 {
		report.AvgRatingsPerUser = float64(report.Ratings) / float64(report.Users)
	}
	if report.Products > 0 {
		report.AvgRatingsPerItem = float64(report.Ratings) / float64(report.Products)
	}
	return report
}

// DatasetStats builds the full exploration summary. topN bounds the
// most-active user and product lists.
func DatasetStats(records []models.RatingRecord, topN int) (models.DatasetStats, error) {
	if len(records) == 0 {
		return models.DatasetStats{}, models.ErrEmptyTable
	}

	ratings := make([]float64, len(records))
	distribution := make(map[string]int)
	earliest, latest := records[0].Timestamp, records[0].Timestamp
	for i, r := range records {
		ratings[i] = r.Rating
		distribution[fmt.Sprintf("%.1f", r.Rating)]++
		if r.Timestamp.Before(earliest) {
			earliest = r.Timestamp
		}
		if r.Timestamp.After(latest) {
			latest = r.Timestamp
		}
	}

	sorted := append([]float64(nil), ratings...)
	sort.Float64s(sorted)

	return models.DatasetStats{
		Sparsity:           Sparsity(records),
		MeanRating:         stat.Mean(ratings, nil),
		MedianRating:       stat.Quantile(0.5, stat.Empirical, sorted, nil),
		StdRating:          stat.StdDev(ratings, nil),
		RatingDistribution: distribution,
		EarliestRating:     earliest,
		LatestRating:       latest,
		TopUsers:           topUsers(records, topN),
		TopProducts:        topProducts(records, topN),
	}, nil
}

func topUsers(records []models.RatingRecord, n int) []models.UserActivity {
	sums := make(map[int64]float64)
	counts := make(map[int64]int)
	for _, r := range records {
		sums[r.UserID] += r.Rating
		counts[r.UserID]++
	}

	users := make([]models.UserActivity, 0, len(counts))
	for userID, count := range counts {
		users = append(users, models.UserActivity{
			UserID:     userID,
			Count:      count,
			MeanRating: sums[userID] / float64(count),
		})
	}
	sort.Slice(users, func(a, b int) bool {
		if users[a].Count != users[b].Count {
			return users[a].Count > users[b].Count
		}
		return users[a].UserID < users[b].UserID
	})
	if len(users) > n {
		users = users[:n]
	}
	return users
}

func topProducts(records []models.RatingRecord, n int) []models.ProductActivity {
	sums := make(map[int64]float64)
	counts := make(map[int64]int)
	for _, r := range records {
		sums[r.ProductID] += r.Rating
		counts[r.ProductID]++
	}

	products := make([]models.ProductActivity, 0, len(counts))
	for productID, count := range counts {
		products = append(products, models.ProductActivity{
			ProductID:  productID,
			Count:      count,
			MeanRating: sums[productID] / float64(count),
		})
	}
	sort.Slice(products, func(a, b int) bool {
		if products[a].Count != products[b].Count {
			return products[a].Count > products[b].Count
		}
		return products[a].ProductID < products[b].ProductID
	})
	if len(products) > n {
		products = products[:n]
	}
	return products
}
