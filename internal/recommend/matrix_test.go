package recommend

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rateworks/recsys/pkg/models"
)

func ratingFixture() []models.RatingRecord {
	ts := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	return []models.RatingRecord{
		{UserID: 1, ProductID: 101, Rating: 5.0, Timestamp: ts},
		{UserID: 1, ProductID: 102, Rating: 4.0, Timestamp: ts},
		{UserID: 2, ProductID: 101, Rating: 5.0, Timestamp: ts},
		{UserID: 2, ProductID: 103, Rating: 3.0, Timestamp: ts},
		{UserID: 3, ProductID: 102, Rating: 4.5, Timestamp: ts},
		{UserID: 3, ProductID: 103, Rating: 4.0, Timestamp: ts},
		{UserID: 4, ProductID: 101, Rating: 5.0, Timestamp: ts},
		{UserID: 4, ProductID: 104, Rating: 2.0, Timestamp: ts},
	}
}

func TestBuildUserItemMatrix(t *testing.T) {
	matrix, err := BuildUserItemMatrix(ratingFixture(), nil)
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 2, 3, 4}, matrix.Users())
	assert.Equal(t, []int64{101, 102, 103, 104}, matrix.Items())

	t.Run("row holds ratings with zero fill", func(t *testing.T) {
		row, err := matrix.Row(1)
		require.NoError(t, err)
		assert.Equal(t, []float64{5.0, 4.0, 0, 0}, row)
	})

	t.Run("column ordered by users", func(t *testing.T) {
		col, err := matrix.Column(101)
		require.NoError(t, err)
		assert.Equal(t, []float64{5.0, 5.0, 0, 5.0}, col)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := matrix.Row(99)
		assert.ErrorIs(t, err, models.ErrUnknownUser)
	})

	t.Run("unknown product", func(t *testing.T) {
		_, err := matrix.Column(999)
		assert.ErrorIs(t, err, models.ErrUnknownProduct)
	})
}

func TestBuildUserItemMatrix_Errors(t *testing.T) {
	_, err := BuildUserItemMatrix(nil, nil)
	assert.ErrorIs(t, err, models.ErrEmptyTable)

	_, err = BuildUserItemMatrix(ratingFixture(), []float64{1, 2})
	assert.ErrorIs(t, err, models.ErrInvalidConfiguration)
}

func TestBuildUserItemMatrix_NormalizedValues(t *testing.T) {
	records := ratingFixture()
	values, err := Normalize(records, MeanCenter)
	require.NoError(t, err)

	matrix, err := BuildUserItemMatrix(records, values)
	require.NoError(t, err)

	// User 1 rated 5.0 and 4.0, mean 4.5.
	row, err := matrix.Row(1)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, row[0], 1e-12)
	assert.InDelta(t, -0.5, row[1], 1e-12)
	assert.Zero(t, row[2])
	assert.Zero(t, row[3])
}
