package models

import "time"

// ScoredProduct is one ranked recommendation row. EstimatedRating is the
// score mapped back to the valid rating range (denormalized when the
// scorer ran on normalized ratings, clipped in all cases).
type ScoredProduct struct {
	ProductID       int64   `json:"product_id"`
	Score           float64 `json:"score"`
	EstimatedRating float64 `json:"estimated_rating"`
}

// RecommendationResult is the ordered outcome of a recommendation call.
// Products is sorted by score descending, ties broken by ascending
// product id. ColdStart marks the popularity fallback for users without
// usable ratings; LowConfidence marks users below the minimum rated-item
// count. Both are conditions, not errors, and an empty Products slice is
// a legitimate outcome.
type RecommendationResult struct {
	UserID        int64           `json:"user_id"`
	Products      []ScoredProduct `json:"products"`
	ColdStart     bool            `json:"cold_start"`
	LowConfidence bool            `json:"low_confidence"`
	CacheHit      bool            `json:"cache_hit"`
	GeneratedAt   time.Time       `json:"generated_at"`
}

type RecommendationRequest struct {
	UserID        int64  `json:"user_id" validate:"min=0"`
	Count         int    `json:"count" validate:"min=1,max=100"`
	UseNormalized bool   `json:"use_normalized"`
	Method        string `json:"method,omitempty" validate:"omitempty,oneof=mean_center z_score min_max"`
}
