package models

import "time"

// RatingRecord is a single validated rating event. The ingestion layer
// guarantees at most one record per (user, product) pair and a rating
// inside the configured valid range; the engine does not re-validate.
type RatingRecord struct {
	UserID    int64     `json:"user_id"`
	ProductID int64     `json:"product_id"`
	Rating    float64   `json:"rating"`
	Timestamp time.Time `json:"timestamp"`
}

// UserStats holds per-user rating aggregates. StdRating is the sample
// standard deviation and is 0 for users with fewer than two ratings.
type UserStats struct {
	UserID      int64   `json:"user_id"`
	MeanRating  float64 `json:"mean_rating"`
	StdRating   float64 `json:"std_rating"`
	MinRating   float64 `json:"min_rating"`
	MaxRating   float64 `json:"max_rating"`
	RatingCount int     `json:"rating_count"`
}
