package recommend

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rateworks/recsys/pkg/models"
)

func TestComputeItemSimilarity(t *testing.T) {
	matrix, err := BuildUserItemMatrix(ratingFixture(), nil)
	require.NoError(t, err)

	sim, err := ComputeItemSimilarity(context.Background(), matrix, 2)
	require.NoError(t, err)

	t.Run("symmetric and bounded", func(t *testing.T) {
		items := sim.Items()
		for _, a := range items {
			for _, b := range items {
				ab, ok := sim.Similarity(a, b)
				require.True(t, ok)
				ba, _ := sim.Similarity(b, a)
				assert.Equal(t, ab, ba)
				assert.GreaterOrEqual(t, ab, -1.0)
				assert.LessOrEqual(t, ab, 1.0+1e-12)
			}
		}
	})

	t.Run("identical columns have similarity one", func(t *testing.T) {
		records := []models.RatingRecord{
			{UserID: 1, ProductID: 101, Rating: 4.0},
			{UserID: 1, ProductID: 102, Rating: 4.0},
			{UserID: 2, ProductID: 101, Rating: 2.0},
			{UserID: 2, ProductID: 102, Rating: 2.0},
		}
		m, err := BuildUserItemMatrix(records, nil)
		require.NoError(t, err)
		s, err := ComputeItemSimilarity(context.Background(), m, 1)
		require.NoError(t, err)
		v, ok := s.Similarity(101, 102)
		require.True(t, ok)
		assert.InDelta(t, 1.0, v, 1e-12)
	})

	t.Run("disjoint raters have similarity zero", func(t *testing.T) {
		records := []models.RatingRecord{
			{UserID: 1, ProductID: 101, Rating: 4.0},
			{UserID: 2, ProductID: 102, Rating: 5.0},
		}
		m, err := BuildUserItemMatrix(records, nil)
		require.NoError(t, err)
		s, err := ComputeItemSimilarity(context.Background(), m, 1)
		require.NoError(t, err)
		v, ok := s.Similarity(101, 102)
		require.True(t, ok)
		assert.Zero(t, v)
	})

	t.Run("unknown product", func(t *testing.T) {
		_, ok := sim.Similarity(101, 999)
		assert.False(t, ok)
	})
}

func TestComputeItemSimilarity_Cancelled(t *testing.T) {
	matrix, err := BuildUserItemMatrix(ratingFixture(), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = ComputeItemSimilarity(ctx, matrix, 1)
	assert.ErrorIs(t, err, context.Canceled)
}
