package evaluation

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rateworks/recsys/pkg/models"
)

func splitFixture() []models.RatingRecord {
	ts := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	var records []models.RatingRecord
	// Three users with 6 ratings each, one user with only 2.
	for _, userID := range []int64{1, 2, 3} {
		for p := int64(0); p < 6; p++ {
			records = append(records, models.RatingRecord{
				UserID:    userID,
				ProductID: 100 + p,
				Rating:    float64(1 + p%5),
				Timestamp: ts,
			})
		}
	}
	records = append(records,
		models.RatingRecord{UserID: 4, ProductID: 100, Rating: 3.0, Timestamp: ts},
		models.RatingRecord{UserID: 4, ProductID: 101, Rating: 4.0, Timestamp: ts},
	)
	return records
}

func recordKey(r models.RatingRecord) string {
	return fmt.Sprintf("%d:%d", r.UserID, r.ProductID)
}

func TestSplitTrainTest(t *testing.T) {
	records := splitFixture()
	split := SplitTrainTest(records, 0.2, 5, 42)

	t.Run("filters users below minimum", func(t *testing.T) {
		for _, r := range append(append([]models.RatingRecord(nil), split.Train...), split.Test...) {
			assert.NotEqual(t, int64(4), r.UserID)
		}
	})

	t.Run("train and test are disjoint and complete", func(t *testing.T) {
		seen := make(map[string]int)
		for _, r := range split.Train {
			seen[recordKey(r)]++
		}
		for _, r := range split.Test {
			seen[recordKey(r)]++
		}
		for _, r := range records {
			if r.UserID == 4 {
				continue
			}
			assert.Equalf(t, 1, seen[recordKey(r)], "record %s must appear exactly once", recordKey(r))
		}
		assert.Len(t, seen, 18)
	})

	t.Run("every retained user is on both sides", func(t *testing.T) {
		trainUsers := make(map[int64]bool)
		testUsers := make(map[int64]bool)
		for _, r := range split.Train {
			trainUsers[r.UserID] = true
		}
		for _, r := range split.Test {
			testUsers[r.UserID] = true
		}
		for _, userID := range []int64{1, 2, 3} {
			assert.True(t, trainUsers[userID])
			assert.True(t, testUsers[userID])
		}
	})

	t.Run("deterministic for a fixed seed", func(t *testing.T) {
		again := SplitTrainTest(records, 0.2, 5, 42)
		assert.Equal(t, split.Train, again.Train)
		assert.Equal(t, split.Test, again.Test)
	})

	t.Run("different seed reshuffles", func(t *testing.T) {
		other := SplitTrainTest(records, 0.5, 5, 7)
		assert.Len(t, other.Test, 9)
	})
}

func TestSplitTrainTest_SmallUsers(t *testing.T) {
	records := []models.RatingRecord{
		{UserID: 1, ProductID: 100, Rating: 3.0},
		{UserID: 1, ProductID: 101, Rating: 4.0},
	}
	split := SplitTrainTest(records, 0.2, 2, 1)

	// A 20% share of 2 records rounds to zero, but both sides still get
	// one record when the count allows it.
	require.Len(t, split.Train, 1)
	require.Len(t, split.Test, 1)
}
