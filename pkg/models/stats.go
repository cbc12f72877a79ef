package models

import "time"

// SparsityReport describes how full the user-item matrix is.
type SparsityReport struct {
	Users              int     `json:"users"`
	Products           int     `json:"products"`
	Ratings            int     `json:"ratings"`
	PossibleRatings    int     `json:"possible_ratings"`
	Sparsity           float64 `json:"sparsity"`
	Density            float64 `json:"density"`
	AvgRatingsPerUser  float64 `json:"avg_ratings_per_user"`
	AvgRatingsPerItem  float64 `json:"avg_ratings_per_item"`
}

// ProductActivity is a per-product volume row for exploration reports.
type ProductActivity struct {
	ProductID  int64   `json:"product_id"`
	Count      int     `json:"count"`
	MeanRating float64 `json:"mean_rating"`
}

// UserActivity is a per-user volume row for exploration reports.
type UserActivity struct {
	UserID     int64   `json:"user_id"`
	Count      int     `json:"count"`
	MeanRating float64 `json:"mean_rating"`
}

// DatasetStats is a read-only summary of the rating table.
type DatasetStats struct {
	Sparsity           SparsityReport    `json:"sparsity"`
	MeanRating         float64           `json:"mean_rating"`
	MedianRating       float64           `json:"median_rating"`
	StdRating          float64           `json:"std_rating"`
	RatingDistribution map[string]int    `json:"rating_distribution"`
	EarliestRating     time.Time         `json:"earliest_rating"`
	LatestRating       time.Time         `json:"latest_rating"`
	TopUsers           []UserActivity    `json:"top_users"`
	TopProducts        []ProductActivity `json:"top_products"`
}

// TrendingProduct is a recency-windowed aggregate row.
type TrendingProduct struct {
	ProductID   int64   `json:"product_id"`
	AvgRating   float64 `json:"avg_rating"`
	RatingCount int     `json:"rating_count"`
}
