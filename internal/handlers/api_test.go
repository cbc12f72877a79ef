package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rateworks/recsys/internal/config"
	"github.com/rateworks/recsys/internal/evaluation"
	"github.com/rateworks/recsys/internal/metrics"
	"github.com/rateworks/recsys/internal/recommend"
	"github.com/rateworks/recsys/internal/storage"
	"github.com/rateworks/recsys/pkg/models"
)

// Prometheus collectors register globally, so the package shares one.
var testCollector = metrics.NewCollector()

func testConfig() *config.Config {
	return &config.Config{
		Ratings: config.RatingsConfig{
			MinValue: 0.5,
			MaxValue: 5.0,
		},
		Recommendation: config.RecommendationConfig{
			DefaultCount:         10,
			MinSimilarity:        0.1,
			MinCommonItems:       2,
			PopularityMinRatings: 1,
			NormalizationMethod:  "mean_center",
			SimilarityWorkers:    2,
		},
		Evaluation: config.EvaluationConfig{
			TestSize:           0.5,
			Seed:               42,
			MinRatingsPerUser:  2,
			KValues:            []int{5},
			RelevanceThreshold: 4.0,
			Workers:            2,
		},
		Trending: config.TrendingConfig{
			DefaultDays: 30,
			MinRatings:  1,
		},
	}
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

func ratingFixture() []models.RatingRecord {
	now := time.Now().UTC()
	rate := func(userID, productID int64, rating float64) models.RatingRecord {
		return models.RatingRecord{
			UserID:    userID,
			ProductID: productID,
			Rating:    rating,
			Timestamp: now,
		}
	}
	return []models.RatingRecord{
		rate(1, 101, 5.0), rate(1, 102, 3.0),
		rate(2, 101, 4.0), rate(2, 102, 5.0), rate(2, 103, 3.0),
		rate(3, 102, 4.0), rate(3, 103, 4.5), rate(3, 104, 2.0),
		rate(4, 101, 5.0), rate(4, 103, 3.0), rate(4, 104, 2.0),
	}
}

func testRouter(records []models.RatingRecord) *gin.Engine {
	gin.SetMode(gin.TestMode)

	cfg := testConfig()
	logger := testLogger()
	store := storage.NewSnapshotStore(records)
	recommender := recommend.NewRecommender(cfg, nil, logger)
	harness := evaluation.NewHarness(logger, cfg.Evaluation.Workers)
	h := New(cfg, logger, store, recommender, harness, testCollector)

	router := gin.New()
	router.GET("/health", h.Health.Check)
	api := router.Group("/api/v1")
	{
		api.GET("/users/:userId/recommendations", h.Recommendation.Get)
		api.GET("/products/popular", h.Products.Popular)
		api.GET("/products/trending", h.Products.Trending)
		api.GET("/stats", h.Stats.Get)
		api.POST("/evaluation/run", h.Evaluation.Run)
	}
	return router
}

func doRequest(t *testing.T, router *gin.Engine, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	router := testRouter(ratingFixture())

	w := doRequest(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, float64(len(ratingFixture())), body["ratings"])
}

func TestHealthCheck_EmptyTableIsDegraded(t *testing.T) {
	router := testRouter(nil)

	w := doRequest(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body["status"])
}

func TestRecommendationGet(t *testing.T) {
	router := testRouter(ratingFixture())

	tests := []struct {
		name           string
		path           string
		expectedStatus int
	}{
		{
			name:           "known user with default parameters",
			path:           "/api/v1/users/1/recommendations",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "custom count and method",
			path:           "/api/v1/users/1/recommendations?count=2&use_normalized=true&method=z_score",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "non-numeric user id",
			path:           "/api/v1/users/abc/recommendations",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unknown user",
			path:           "/api/v1/users/999/recommendations",
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "count out of range",
			path:           "/api/v1/users/1/recommendations?count=0",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unknown normalization method",
			path:           "/api/v1/users/1/recommendations?method=sigmoid",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, router, http.MethodGet, tt.path, nil)
			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestRecommendationGet_ExcludesRatedProducts(t *testing.T) {
	router := testRouter(ratingFixture())

	w := doRequest(t, router, http.MethodGet, "/api/v1/users/1/recommendations", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var result models.RecommendationResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))

	assert.Equal(t, int64(1), result.UserID)
	assert.False(t, result.ColdStart)
	for _, p := range result.Products {
		assert.NotContains(t, []int64{101, 102}, p.ProductID)
	}
}

func TestProductsPopular(t *testing.T) {
	router := testRouter(ratingFixture())

	w := doRequest(t, router, http.MethodGet, "/api/v1/products/popular?count=2", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Products []models.ScoredProduct `json:"products"`
		Count    int                    `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	require.Len(t, body.Products, 2)
	assert.Equal(t, 2, body.Count)
	// Product 101 has the highest mean rating in the fixture.
	assert.Equal(t, int64(101), body.Products[0].ProductID)
}

func TestProductsTrending(t *testing.T) {
	router := testRouter(ratingFixture())

	w := doRequest(t, router, http.MethodGet, "/api/v1/products/trending?days=7", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Products []models.TrendingProduct `json:"products"`
		Days     int                      `json:"days"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 7, body.Days)
	assert.NotEmpty(t, body.Products)

	w = doRequest(t, router, http.MethodGet, "/api/v1/products/trending?days=-1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStatsGet(t *testing.T) {
	router := testRouter(ratingFixture())

	w := doRequest(t, router, http.MethodGet, "/api/v1/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var stats models.DatasetStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 4, stats.Sparsity.Users)
	assert.Equal(t, 4, stats.Sparsity.Products)
	assert.Equal(t, len(ratingFixture()), stats.Sparsity.Ratings)
}

func TestStatsGet_EmptyTable(t *testing.T) {
	router := testRouter(nil)

	w := doRequest(t, router, http.MethodGet, "/api/v1/stats", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEvaluationRun(t *testing.T) {
	router := testRouter(ratingFixture())

	request := models.EvaluationRequest{
		TestSize:           0.5,
		MinRatingsPerUser:  2,
		KValues:            []int{5},
		RelevanceThreshold: 4.0,
		Seed:               42,
	}
	body, err := json.Marshal(request)
	require.NoError(t, err)

	w := doRequest(t, router, http.MethodPost, "/api/v1/evaluation/run", body)
	require.Equal(t, http.StatusOK, w.Code)

	var response models.EvaluationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	assert.NotEmpty(t, response.RunID)
	assert.Greater(t, response.TrainSize, 0)
	assert.Greater(t, response.TestSize, 0)
	assert.Equal(t, len(ratingFixture()), response.TrainSize+response.TestSize)
}

func TestEvaluationRun_DefaultsFromConfig(t *testing.T) {
	router := testRouter(ratingFixture())

	w := doRequest(t, router, http.MethodPost, "/api/v1/evaluation/run", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestEvaluationRun_Validation(t *testing.T) {
	router := testRouter(ratingFixture())

	tests := []struct {
		name string
		body string
	}{
		{name: "test size out of range", body: `{"test_size": 1.5, "min_ratings_per_user": 2, "k_values": [5]}`},
		{name: "empty k values", body: `{"test_size": 0.5, "min_ratings_per_user": 2, "k_values": []}`},
		{name: "malformed json", body: `{"test_size":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, router, http.MethodPost, "/api/v1/evaluation/run", []byte(tt.body))
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestEvaluationRun_InsufficientData(t *testing.T) {
	records := []models.RatingRecord{
		{UserID: 1, ProductID: 101, Rating: 5.0, Timestamp: time.Now().UTC()},
	}
	router := testRouter(records)

	w := doRequest(t, router, http.MethodPost, "/api/v1/evaluation/run", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
