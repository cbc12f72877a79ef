package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/rateworks/recsys/internal/config"
	"github.com/rateworks/recsys/internal/database"
	"github.com/rateworks/recsys/internal/evaluation"
	"github.com/rateworks/recsys/internal/handlers"
	"github.com/rateworks/recsys/internal/ingest"
	"github.com/rateworks/recsys/internal/metrics"
	"github.com/rateworks/recsys/internal/middleware"
	"github.com/rateworks/recsys/internal/recommend"
	"github.com/rateworks/recsys/internal/storage"
	"github.com/rateworks/recsys/pkg/models"
)

type App struct {
	config    *config.Config
	logger    *logrus.Logger
	db        *database.Database
	store     *storage.SnapshotStore
	collector *metrics.Collector
	handlers  *handlers.Handlers
	router    *gin.Engine

	consumer     *ingest.Consumer
	consumerStop context.CancelFunc
	consumerDone chan struct{}
}

func New(cfg *config.Config) (*App, error) {
	app := &App{
		config: cfg,
		logger: setupLogger(cfg),
	}

	db, err := database.New(cfg, app.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	records, err := loadRatings(cfg, db, app.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load rating table: %w", err)
	}
	app.store = storage.NewSnapshotStore(records)

	app.collector = metrics.NewCollector()
	app.collector.SetRatingTableSize(app.store.Len())

	recommender := recommend.NewRecommender(cfg, db.Redis, app.logger)
	harness := evaluation.NewHarness(app.logger, cfg.Evaluation.Workers)

	app.handlers = handlers.New(cfg, app.logger, app.store, recommender, harness, app.collector)

	app.setupRouter()

	if len(cfg.Kafka.Brokers) > 0 {
		if err := app.startConsumer(); err != nil {
			return nil, fmt.Errorf("failed to start rating consumer: %w", err)
		}
	}

	return app, nil
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("Shutting down application...")

	if a.consumerStop != nil {
		a.consumerStop()
		select {
		case <-a.consumerDone:
		case <-ctx.Done():
		}
		if err := a.consumer.Close(); err != nil {
			a.logger.WithError(err).Error("Error closing rating consumer")
		}
	}

	if err := a.db.Close(); err != nil {
		a.logger.WithError(err).Error("Error closing database connections")
		return err
	}

	return nil
}

func setupLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}

func loadRatings(cfg *config.Config, db *database.Database, logger *logrus.Logger) ([]models.RatingRecord, error) {
	switch cfg.Ratings.Source {
	case "csv":
		return ingest.LoadRatingsCSV(cfg.Ratings.CSVPath, cfg.Ratings, logger)
	case "postgres":
		if db.PG == nil {
			return nil, fmt.Errorf("ratings source is postgres but database.url is not configured")
		}
		repo := storage.NewRatingRepository(db.PG, logger)
		return repo.LoadRatings(context.Background(), cfg.Ratings)
	default:
		return nil, fmt.Errorf("unknown ratings source %q", cfg.Ratings.Source)
	}
}

// startConsumer streams rating events into the snapshot store so new
// ratings show up in recommendations without a restart.
func (a *App) startConsumer() error {
	consumer, err := ingest.NewConsumer(a.config, a.logger)
	if err != nil {
		return err
	}
	a.consumer = consumer

	ctx, cancel := context.WithCancel(context.Background())
	a.consumerStop = cancel
	a.consumerDone = make(chan struct{})

	go func() {
		defer close(a.consumerDone)
		if err := consumer.Run(ctx, func(record models.RatingRecord) error {
			a.store.Upsert(record)
			a.collector.SetRatingTableSize(a.store.Len())
			return nil
		}); err != nil && ctx.Err() == nil {
			a.logger.WithError(err).Error("Rating consumer stopped unexpectedly")
		}
	}()

	return nil
}

func (a *App) setupRouter() {
	if a.config.Server.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(middleware.Logger(a.logger))
	router.Use(middleware.Recovery(a.logger))
	router.Use(middleware.CORS(a.config))

	router.GET("/health", a.handlers.Health.Check)

	if a.config.Monitoring.Enabled {
		router.GET(a.config.Monitoring.MetricsPath, gin.WrapH(promhttp.Handler()))
	}

	api := router.Group("/api/v1")
	{
		users := api.Group("/users")
		{
			users.GET("/:userId/recommendations", a.handlers.Recommendation.Get)
		}

		products := api.Group("/products")
		{
			products.GET("/popular", a.handlers.Products.Popular)
			products.GET("/trending", a.handlers.Products.Trending)
		}

		api.GET("/stats", a.handlers.Stats.Get)

		eval := api.Group("/evaluation")
		{
			eval.POST("/run", a.handlers.Evaluation.Run)
		}
	}

	a.router = router
}
