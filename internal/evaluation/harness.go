package evaluation

import (
	"context"
	"sort"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/rateworks/recsys/pkg/models"
)

// RecommendFunc produces a ranked candidate list for one user from
// training data only.
type RecommendFunc func(ctx context.Context, train []models.RatingRecord, userID int64, n int) ([]models.ScoredProduct, error)

// PredictFunc estimates a single user-product rating from training data.
type PredictFunc func(ctx context.Context, train []models.RatingRecord, userID, productID int64) (float64, error)

// Harness drives a recommender against held-out data. Users are
// independent, so evaluation fans out over workers; a failure for one
// user skips that user and never aborts the run. Only context
// cancellation stops the whole evaluation.
type Harness struct {
	logger  *logrus.Logger
	workers int
}

func NewHarness(logger *logrus.Logger, workers int) *Harness {
	if workers <= 0 {
		workers = 1
	}
	return &Harness{logger: logger, workers: workers}
}

type userRanking struct {
	evaluated bool
	perK      map[int]models.RankingMetrics
}

// EvaluateRecommendations computes precision/recall/F1 at each requested
// K, averaged over test users. A user's relevant items are their test
// records rated at or above relevanceThreshold; users with none are
// skipped. One candidate list of max(kValues) items is fetched per user
// and truncated for each K.
func (h *Harness) EvaluateRecommendations(ctx context.Context, train, test []models.RatingRecord, recommend RecommendFunc, kValues []int, relevanceThreshold float64) (*models.RankingSummary, error) {
	testByUser := groupByUser(test)
	users := sortedUsers(testByUser)

	maxK := 0
	for _, k := range kValues {
		if k > maxK {
			maxK = k
		}
	}

	rows := make([]userRanking, len(users))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(h.workers)
	for i, userID := range users {
		i, userID := i, userID
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			relevant := make(map[int64]bool)
			for _, r := range testByUser[userID] {
				if r.Rating >= relevanceThreshold {
					relevant[r.ProductID] = true
				}
			}
			if len(relevant) == 0 {
				return nil
			}

			recommended, err := recommend(gctx, train, userID, maxK)
			if err != nil {
				h.logger.WithError(err).WithField("user_id", userID).
					Debug("Skipping user: recommendation failed")
				return nil
			}
			if len(recommended) == 0 {
				return nil
			}

			ids := make([]int64, len(recommended))
			for j, p := range recommended {
				ids[j] = p.ProductID
			}

			perK := make(map[int]models.RankingMetrics, len(kValues))
			for _, k := range kValues {
				perK[k] = models.RankingMetrics{
					Precision: PrecisionAtK(ids, relevant, k),
					Recall:    RecallAtK(ids, relevant, k),
					F1:        F1ScoreAtK(ids, relevant, k),
				}
			}
			rows[i] = userRanking{evaluated: true, perK: perK}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := &models.RankingSummary{PerK: make(map[int]models.RankingMetrics, len(kValues))}
	for _, k := range kValues {
		var precisions, recalls, f1s []float64
		for _, row := range rows {
			if !row.evaluated {
				continue
			}
			precisions = append(precisions, row.perK[k].Precision)
			recalls = append(recalls, row.perK[k].Recall)
			f1s = append(f1s, row.perK[k].F1)
		}
		if len(precisions) == 0 {
			continue
		}
		summary.PerK[k] = models.RankingMetrics{
			Precision: stat.Mean(precisions, nil),
			Recall:    stat.Mean(recalls, nil),
			F1:        stat.Mean(f1s, nil),
		}
	}
	for _, row := range rows {
		if row.evaluated {
			summary.EvaluatedUsers++
		}
	}

	h.logger.WithFields(logrus.Fields{
		"evaluated_users":     summary.EvaluatedUsers,
		"relevance_threshold": relevanceThreshold,
	}).Info("Recommendation evaluation complete")

	return summary, nil
}

// EvaluateRatingPrediction computes RMSE and MAE over every test record
// the predictor can score. Individual prediction failures skip that
// record. Zero successful predictions is a valid empty summary.
func (h *Harness) EvaluateRatingPrediction(ctx context.Context, train, test []models.RatingRecord, predict PredictFunc) (*models.PredictionSummary, error) {
	type prediction struct {
		ok        bool
		actual    float64
		predicted float64
	}

	rows := make([]prediction, len(test))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(h.workers)
	for i, record := range test {
		i, record := i, record
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			predicted, err := predict(gctx, train, record.UserID, record.ProductID)
			if err != nil {
				h.logger.WithError(err).WithFields(logrus.Fields{
					"user_id":    record.UserID,
					"product_id": record.ProductID,
				}).Debug("Skipping record: prediction failed")
				return nil
			}
			rows[i] = prediction{ok: true, actual: record.Rating, predicted: predicted}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var actual, predicted []float64
	for _, row := range rows {
		if row.ok {
			actual = append(actual, row.actual)
			predicted = append(predicted, row.predicted)
		}
	}

	summary := &models.PredictionSummary{NPredictions: len(actual)}
	if len(actual) == 0 {
		h.logger.Warn("No rating predictions could be made")
		return summary, nil
	}

	rmse, err := CalculateRMSE(actual, predicted)
	if err != nil {
		return nil, err
	}
	mae, err := CalculateMAE(actual, predicted)
	if err != nil {
		return nil, err
	}
	summary.RMSE = rmse
	summary.MAE = mae

	h.logger.WithFields(logrus.Fields{
		"n_predictions": summary.NPredictions,
		"rmse":          summary.RMSE,
		"mae":           summary.MAE,
	}).Info("Rating prediction evaluation complete")

	return summary, nil
}

func groupByUser(records []models.RatingRecord) map[int64][]models.RatingRecord {
	byUser := make(map[int64][]models.RatingRecord)
	for _, r := range records {
		byUser[r.UserID] = append(byUser[r.UserID], r)
	}
	return byUser
}

func sortedUsers(byUser map[int64][]models.RatingRecord) []int64 {
	users := make([]int64, 0, len(byUser))
	for userID := range byUser {
		users = append(users, userID)
	}
	sort.Slice(users, func(a, b int) bool { return users[a] < users[b] })
	return users
}
