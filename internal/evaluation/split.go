package evaluation

import (
	"math/rand"
	"sort"

	"github.com/rateworks/recsys/pkg/models"
)

// SplitTrainTest partitions a rating table per user into train and test
// sets. Users with fewer than minRatingsPerUser records are excluded
// from both sides. Each retained user's records are shuffled with the
// seeded source and split by testSize; whenever the user's count allows
// it, both sides get at least one record. The same seed always produces
// the same split.
func SplitTrainTest(records []models.RatingRecord, testSize float64, minRatingsPerUser int, seed int64) models.EvaluationSplit {
	byUser := make(map[int64][]models.RatingRecord)
	for _, r := range records {
		byUser[r.UserID] = append(byUser[r.UserID], r)
	}

	users := make([]int64, 0, len(byUser))
	for userID, userRecords := range byUser {
		if len(userRecords) >= minRatingsPerUser {
			users = append(users, userID)
		}
	}
	sort.Slice(users, func(a, b int) bool { return users[a] < users[b] })

	rng := rand.New(rand.NewSource(seed))
	split := models.EvaluationSplit{}
	for _, userID := range users {
		userRecords := append([]models.RatingRecord(nil), byUser[userID]...)
		rng.Shuffle(len(userRecords), func(i, j int) {
			userRecords[i], userRecords[j] = userRecords[j], userRecords[i]
		})

		nTest := int(float64(len(userRecords)) * testSize)
		if nTest == 0 && testSize > 0 && len(userRecords) > 1 {
			nTest = 1
		}
		if nTest >= len(userRecords) {
			nTest = len(userRecords) - 1
		}

		split.Test = append(split.Test, userRecords[:nTest]...)
		split.Train = append(split.Train, userRecords[nTest:]...)
	}

	return split
}
