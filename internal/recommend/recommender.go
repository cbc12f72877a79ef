package recommend

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/rateworks/recsys/internal/config"
	"github.com/rateworks/recsys/pkg/models"
)

// Recommender implements item-based collaborative filtering over an
// immutable rating table. Every call rebuilds the matrix and similarity
// from the records it is given, so concurrent callers share no mutable
// state. The optional redis client adds a cache-aside layer keyed by
// user and parameters; a nil client disables caching.
type Recommender struct {
	cfg    *config.Config
	redis  *redis.Client
	logger *logrus.Logger
}

func NewRecommender(cfg *config.Config, redisClient *redis.Client, logger *logrus.Logger) *Recommender {
	return &Recommender{
		cfg:    cfg,
		redis:  redisClient,
		logger: logger,
	}
}

// Uncached returns a copy of the recommender with the cache layer
// disabled. Cache keys do not cover the rating records, so any caller
// scoring a subset of the table (the evaluation harness) must use this.
func (r *Recommender) Uncached() *Recommender {
	return &Recommender{cfg: r.cfg, logger: r.logger}
}

// Options control a single recommendation call. Zero values fall back to
// the configured defaults via (*Recommender).DefaultOptions.
type Options struct {
	Count          int
	MinSimilarity  float64
	MinCommonItems int
	UseNormalized  bool
	Method         NormalizationMethod
}

// DefaultOptions materializes the configured recommendation parameters.
func (r *Recommender) DefaultOptions() (Options, error) {
	method, err := ParseNormalizationMethod(r.cfg.Recommendation.NormalizationMethod)
	if err != nil {
		return Options{}, err
	}
	return Options{
		Count:          r.cfg.Recommendation.DefaultCount,
		MinSimilarity:  r.cfg.Recommendation.MinSimilarity,
		MinCommonItems: r.cfg.Recommendation.MinCommonItems,
		UseNormalized:  r.cfg.Recommendation.UseNormalized,
		Method:         method,
	}, nil
}

// RecommendForUser generates up to opts.Count recommendations for the
// user. Users with no usable ratings fall back to popularity ranking
// (cold start); users below the minimum rated-item count proceed with
// the LowConfidence flag set. No returned product was already rated by
// the user, and identical inputs produce identical output.
func (r *Recommender) RecommendForUser(ctx context.Context, records []models.RatingRecord, userID int64, opts Options) (*models.RecommendationResult, error) {
	cacheKey := fmt.Sprintf("recommendations:%d:%d:%.4f:%d:%t:%s",
		userID, opts.Count, opts.MinSimilarity, opts.MinCommonItems, opts.UseNormalized, opts.Method)

	if cached := r.getCachedResult(ctx, cacheKey); cached != nil {
		r.logger.WithField("user_id", userID).Debug("Recommendation cache hit")
		cached.CacheHit = true
		return cached, nil
	}

	result, err := r.scoreUser(ctx, records, userID, opts)
	if err != nil {
		return nil, err
	}

	r.cacheResult(ctx, cacheKey, result)
	return result, nil
}

func (r *Recommender) scoreUser(ctx context.Context, records []models.RatingRecord, userID int64, opts Options) (*models.RecommendationResult, error) {
	var values []float64
	if opts.UseNormalized {
		var err error
		values, err = Normalize(records, opts.Method)
		if err != nil {
			return nil, err
		}
	}

	matrix, err := BuildUserItemMatrix(records, values)
	if err != nil {
		return nil, err
	}

	userRow, err := matrix.Row(userID)
	if err != nil {
		return nil, err
	}

	rated := make([]int, 0, len(userRow))
	for j, v := range userRow {
		if v != 0 {
			rated = append(rated, j)
		}
	}

	result := &models.RecommendationResult{
		UserID:      userID,
		GeneratedAt: time.Now().UTC(),
	}

	if len(rated) == 0 {
		// Mean-centered constant raters land here too: their whole row
		// normalizes to zero.
		r.logger.WithField("user_id", userID).Warn("User has no usable ratings, falling back to popular items")
		result.ColdStart = true
		result.Products = PopularItems(records, opts.Count, r.cfg.Recommendation.PopularityMinRatings)
		return result, nil
	}

	if len(rated) < opts.MinCommonItems {
		r.logger.WithFields(logrus.Fields{
			"user_id":     userID,
			"rated_items": len(rated),
		}).Warn("User has very few ratings, recommendations may be unreliable")
		result.LowConfidence = true
	}

	similarity, err := ComputeItemSimilarity(ctx, matrix, r.cfg.Recommendation.SimilarityWorkers)
	if err != nil {
		return nil, err
	}

	scores := make(map[int]float64)
	weights := make(map[int]float64)
	for _, j := range rated {
		rating := userRow[j]
		for o := range userRow {
			if o == j || userRow[o] != 0 {
				continue
			}
			sim := similarity.sym.At(j, o)
			if sim < opts.MinSimilarity {
				continue
			}
			scores[o] += sim * rating
			weights[o] += math.Abs(sim)
		}
	}

	items := matrix.Items()
	candidates := make([]models.ScoredProduct, 0, len(scores))
	for o, score := range scores {
		if weights[o] <= 0 {
			continue
		}
		candidates = append(candidates, models.ScoredProduct{
			ProductID: items[o],
			Score:     score / weights[o],
		})
	}

	if len(candidates) == 0 {
		r.logger.WithField("user_id", userID).Warn("No recommendations found, try lowering min_similarity")
		result.Products = []models.ScoredProduct{}
		return result, nil
	}

	sort.Slice(candidates, func(a, b int) bool {
		if candidates[a].Score != candidates[b].Score {
			return candidates[a].Score > candidates[b].Score
		}
		return candidates[a].ProductID < candidates[b].ProductID
	})
	if len(candidates) > opts.Count {
		candidates = candidates[:opts.Count]
	}

	var userMean, userStd float64
	if opts.UseNormalized {
		stats := ComputeUserStats(records)[userID]
		userMean, userStd = stats.MeanRating, stats.StdRating
	}
	for i := range candidates {
		estimated := candidates[i].Score
		if opts.UseNormalized {
			estimated = Denormalize(estimated, userMean, userStd, opts.Method)
		}
		candidates[i].EstimatedRating = r.clip(estimated)
	}

	result.Products = candidates
	return result, nil
}

// PredictRating estimates the user's rating for a single product as the
// similarity-weighted average of their existing ratings. Raw ratings are
// used; the evaluation harness drives this for RMSE/MAE.
func (r *Recommender) PredictRating(ctx context.Context, records []models.RatingRecord, userID, productID int64) (float64, error) {
	matrix, err := BuildUserItemMatrix(records, nil)
	if err != nil {
		return 0, err
	}

	userRow, err := matrix.Row(userID)
	if err != nil {
		return 0, err
	}
	if !matrix.HasItem(productID) {
		return 0, fmt.Errorf("product %d: %w", productID, models.ErrUnknownProduct)
	}

	similarity, err := ComputeItemSimilarity(ctx, matrix, r.cfg.Recommendation.SimilarityWorkers)
	if err != nil {
		return 0, err
	}

	target := matrix.itemIndex[productID]
	var score, weight float64
	for j, rating := range userRow {
		if rating == 0 || j == target {
			continue
		}
		sim := similarity.sym.At(j, target)
		if sim < r.cfg.Recommendation.MinSimilarity {
			continue
		}
		score += sim * rating
		weight += math.Abs(sim)
	}

	if weight <= 0 {
		return 0, fmt.Errorf("user %d product %d: %w", userID, productID, models.ErrNoSignal)
	}
	return r.clip(score / weight), nil
}

func (r *Recommender) clip(v float64) float64 {
	if v < r.cfg.Ratings.MinValue {
		return r.cfg.Ratings.MinValue
	}
	if v > r.cfg.Ratings.MaxValue {
		return r.cfg.Ratings.MaxValue
	}
	return v
}

func (r *Recommender) getCachedResult(ctx context.Context, key string) *models.RecommendationResult {
	if r.redis == nil {
		return nil
	}
	data, err := r.redis.Get(ctx, key).Bytes()
	if err != nil {
		return nil
	}
	var result models.RecommendationResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil
	}
	return &result
}

func (r *Recommender) cacheResult(ctx context.Context, key string, result *models.RecommendationResult) {
	if r.redis == nil {
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := r.redis.Set(ctx, key, data, r.cfg.Recommendation.CacheTTL).Err(); err != nil {
		r.logger.WithError(err).Warn("Failed to cache recommendation result")
	}
}
