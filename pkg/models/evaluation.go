package models

import "github.com/google/uuid"

// EvaluationSplit holds disjoint train/test partitions of a rating table.
// Per retained user, Train plus Test equals that user's original records;
// users below the minimum rating count appear in neither side.
type EvaluationSplit struct {
	Train []RatingRecord `json:"-"`
	Test  []RatingRecord `json:"-"`
}

// RankingMetrics are precision/recall/F1 averaged over evaluated users
// for a single cutoff K.
type RankingMetrics struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
}

// RankingSummary aggregates ranking metrics per requested K.
type RankingSummary struct {
	PerK           map[int]RankingMetrics `json:"per_k"`
	EvaluatedUsers int                    `json:"evaluated_users"`
}

// PredictionSummary aggregates rating-prediction error metrics.
// NPredictions of zero is a valid empty result, not a failure.
type PredictionSummary struct {
	RMSE         float64 `json:"rmse"`
	MAE          float64 `json:"mae"`
	NPredictions int     `json:"n_predictions"`
}

type EvaluationRequest struct {
	TestSize           float64 `json:"test_size" validate:"gt=0,lt=1"`
	MinRatingsPerUser  int     `json:"min_ratings_per_user" validate:"min=1"`
	KValues            []int   `json:"k_values" validate:"min=1,dive,min=1"`
	RelevanceThreshold float64 `json:"relevance_threshold"`
	Seed               int64   `json:"seed"`
}

type EvaluationResponse struct {
	RunID      uuid.UUID          `json:"run_id"`
	Ranking    *RankingSummary    `json:"ranking,omitempty"`
	Prediction *PredictionSummary `json:"prediction,omitempty"`
	TrainSize  int                `json:"train_size"`
	TestSize   int                `json:"test_size"`
}
