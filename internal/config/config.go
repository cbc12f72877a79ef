package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server         ServerConfig         `mapstructure:"server"`
	Database       DatabaseConfig       `mapstructure:"database"`
	Redis          RedisConfig          `mapstructure:"redis"`
	Kafka          KafkaConfig          `mapstructure:"kafka"`
	Logging        LoggingConfig        `mapstructure:"logging"`
	Ratings        RatingsConfig        `mapstructure:"ratings"`
	Recommendation RecommendationConfig `mapstructure:"recommendation"`
	Evaluation     EvaluationConfig     `mapstructure:"evaluation"`
	Trending       TrendingConfig       `mapstructure:"trending"`
	Monitoring     MonitoringConfig     `mapstructure:"monitoring"`
	Security       SecurityConfig       `mapstructure:"security"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	URL            string        `mapstructure:"url"`
	MaxConnections int           `mapstructure:"max_connections"`
	MaxIdleTime    time.Duration `mapstructure:"max_idle_time"`
	MaxLifetime    time.Duration `mapstructure:"max_lifetime"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

type RedisConfig struct {
	URL        string        `mapstructure:"url"`
	MaxRetries int           `mapstructure:"max_retries"`
	PoolSize   int           `mapstructure:"pool_size"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topics  struct {
		RatingEvents    string `mapstructure:"rating_events"`
		RatingEventsDLQ string `mapstructure:"rating_events_dlq"`
	} `mapstructure:"topics"`
	ConsumerGroup string `mapstructure:"consumer_group"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// RatingsConfig describes the rating table source and the valid rating
// range. The minimum must stay above zero: the user-item matrix uses 0
// for "no rating".
type RatingsConfig struct {
	Source   string  `mapstructure:"source"` // csv or postgres
	CSVPath  string  `mapstructure:"csv_path"`
	MinValue float64 `mapstructure:"min_value"`
	MaxValue float64 `mapstructure:"max_value"`
}

type RecommendationConfig struct {
	DefaultCount         int           `mapstructure:"default_count"`
	MinSimilarity        float64       `mapstructure:"min_similarity"`
	MinCommonItems       int           `mapstructure:"min_common_items"`
	PopularityMinRatings int           `mapstructure:"popularity_min_ratings"`
	UseNormalized        bool          `mapstructure:"use_normalized"`
	NormalizationMethod  string        `mapstructure:"normalization_method"`
	SimilarityWorkers    int           `mapstructure:"similarity_workers"`
	CacheTTL             time.Duration `mapstructure:"cache_ttl"`
}

type EvaluationConfig struct {
	TestSize           float64 `mapstructure:"test_size"`
	Seed               int64   `mapstructure:"seed"`
	MinRatingsPerUser  int     `mapstructure:"min_ratings_per_user"`
	KValues            []int   `mapstructure:"k_values"`
	RelevanceThreshold float64 `mapstructure:"relevance_threshold"`
	Workers            int     `mapstructure:"workers"`
}

type TrendingConfig struct {
	DefaultDays int `mapstructure:"default_days"`
	MinRatings  int `mapstructure:"min_ratings"`
}

type MonitoringConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	MetricsPath string `mapstructure:"metrics_path"`
}

type SecurityConfig struct {
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

func Load() (*Config, error) {
	viper.SetConfigName("app")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	setDefaults()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		// Config file is optional, continue with env vars and defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults() {
	// Server defaults
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "development")

	// Database defaults
	viper.SetDefault("database.max_connections", 25)
	viper.SetDefault("database.max_idle_time", "15m")
	viper.SetDefault("database.max_lifetime", "1h")
	viper.SetDefault("database.connect_timeout", "10s")

	// Redis defaults
	viper.SetDefault("redis.max_retries", 3)
	viper.SetDefault("redis.pool_size", 10)
	viper.SetDefault("redis.timeout", "5s")

	// Kafka defaults
	viper.SetDefault("kafka.topics.rating_events", "rating-events")
	viper.SetDefault("kafka.topics.rating_events_dlq", "rating-events-dlq")
	viper.SetDefault("kafka.consumer_group", "rating-ingesters")

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "text")

	// Rating table defaults
	viper.SetDefault("ratings.source", "csv")
	viper.SetDefault("ratings.csv_path", "./data/ratings.csv")
	viper.SetDefault("ratings.min_value", 0.5)
	viper.SetDefault("ratings.max_value", 5.0)

	// Recommendation defaults
	viper.SetDefault("recommendation.default_count", 10)
	viper.SetDefault("recommendation.min_similarity", 0.1)
	viper.SetDefault("recommendation.min_common_items", 2)
	viper.SetDefault("recommendation.popularity_min_ratings", 5)
	viper.SetDefault("recommendation.use_normalized", false)
	viper.SetDefault("recommendation.normalization_method", "mean_center")
	viper.SetDefault("recommendation.similarity_workers", 4)
	viper.SetDefault("recommendation.cache_ttl", "15m")

	// Evaluation defaults
	viper.SetDefault("evaluation.test_size", 0.2)
	viper.SetDefault("evaluation.seed", 42)
	viper.SetDefault("evaluation.min_ratings_per_user", 5)
	viper.SetDefault("evaluation.k_values", []int{5, 10, 20})
	viper.SetDefault("evaluation.relevance_threshold", 4.0)
	viper.SetDefault("evaluation.workers", 4)

	// Trending defaults
	viper.SetDefault("trending.default_days", 30)
	viper.SetDefault("trending.min_ratings", 5)

	// Monitoring defaults
	viper.SetDefault("monitoring.enabled", true)
	viper.SetDefault("monitoring.metrics_path", "/metrics")

	// Security defaults
	viper.SetDefault("security.cors.allowed_origins", []string{"*"})
	viper.SetDefault("security.cors.allowed_methods", []string{"GET", "POST", "OPTIONS"})
	viper.SetDefault("security.cors.allowed_headers", []string{"*"})
}
