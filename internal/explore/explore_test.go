package explore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rateworks/recsys/pkg/models"
)

func TestSparsity(t *testing.T) {
	ts := time.Now()
	records := []models.RatingRecord{
		{UserID: 1, ProductID: 101, Rating: 5.0, Timestamp: ts},
		{UserID: 1, ProductID: 102, Rating: 4.0, Timestamp: ts},
		{UserID: 2, ProductID: 101, Rating: 3.0, Timestamp: ts},
	}

	report := Sparsity(records)
	assert.Equal(t, 2, report.Users)
	assert.Equal(t, 2, report.Products)
	assert.Equal(t, 3, report.Ratings)
	assert.Equal(t, 4, report.PossibleRatings)
	assert.InDelta(t, 0.75, report.Density, 1e-12)
	assert.InDelta(t, 0.25, report.Sparsity, 1e-12)
	assert.InDelta(t, 1.5, report.AvgRatingsPerUser, 1e-12)

	t.Run("empty table", func(t *testing.T) {
		report := Sparsity(nil)
		assert.Zero(t, report.Ratings)
		assert.Zero(t, report.Sparsity)
	})
}

func TestDatasetStats(t *testing.T) {
	early := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	late := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	records := []models.RatingRecord{
		{UserID: 1, ProductID: 101, Rating: 5.0, Timestamp: early},
		{UserID: 1, ProductID: 102, Rating: 4.0, Timestamp: late},
		{UserID: 1, ProductID: 103, Rating: 4.0, Timestamp: late},
		{UserID: 2, ProductID: 101, Rating: 3.0, Timestamp: late},
	}

	stats, err := DatasetStats(records, 5)
	require.NoError(t, err)

	assert.InDelta(t, 4.0, stats.MeanRating, 1e-12)
	assert.Equal(t, early, stats.EarliestRating)
	assert.Equal(t, late, stats.LatestRating)
	assert.Equal(t, 2, stats.RatingDistribution["4.0"])
	assert.Equal(t, 1, stats.RatingDistribution["5.0"])

	require.NotEmpty(t, stats.TopUsers)
	assert.Equal(t, int64(1), stats.TopUsers[0].UserID)
	assert.Equal(t, 3, stats.TopUsers[0].Count)

	require.NotEmpty(t, stats.TopProducts)
	assert.Equal(t, int64(101), stats.TopProducts[0].ProductID)

	t.Run("empty table", func(t *testing.T) {
		_, err := DatasetStats(nil, 5)
		assert.ErrorIs(t, err, models.ErrEmptyTable)
	})
}
