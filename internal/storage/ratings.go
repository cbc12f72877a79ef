// Package storage provides the rating table's backing stores: a pgx
// repository for loading historical ratings from Postgres and an
// in-memory snapshot store that serves immutable copies to the engine.
package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"

	"github.com/rateworks/recsys/internal/config"
	"github.com/rateworks/recsys/pkg/models"
)

// Querier is the subset of pgxpool.Pool the repository needs; pgxmock
// satisfies it in tests.
type Querier interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

type RatingRepository struct {
	db     Querier
	logger *logrus.Logger
}

func NewRatingRepository(db Querier, logger *logrus.Logger) *RatingRepository {
	return &RatingRepository{db: db, logger: logger}
}

// LoadRatings reads the full ratings table, restricted to the valid
// rating range and non-negative ids. Rows arrive ordered by rated_at, so
// keeping the last row per (user, product) pair keeps the most recent.
func (r *RatingRepository) LoadRatings(ctx context.Context, cfg config.RatingsConfig) ([]models.RatingRecord, error) {
	query := `
		SELECT user_id, product_id, rating, rated_at
		FROM ratings
		WHERE rating BETWEEN $1 AND $2
			AND user_id >= 0
			AND product_id >= 0
		ORDER BY rated_at`

	rows, err := r.db.Query(ctx, query, cfg.MinValue, cfg.MaxValue)
	if err != nil {
		return nil, fmt.Errorf("failed to query ratings: %w", err)
	}
	defer rows.Close()

	type pairKey struct {
		userID    int64
		productID int64
	}
	index := make(map[pairKey]int)
	var records []models.RatingRecord
	duplicates := 0

	for rows.Next() {
		var record models.RatingRecord
		if err := rows.Scan(&record.UserID, &record.ProductID, &record.Rating, &record.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan rating row: %w", err)
		}

		key := pairKey{record.UserID, record.ProductID}
		if existing, ok := index[key]; ok {
			records[existing] = record
			duplicates++
			continue
		}
		index[key] = len(records)
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rating rows: %w", err)
	}

	if duplicates > 0 {
		r.logger.WithField("rows", duplicates).Warn("Found duplicate user-product pairs, keeping most recent")
	}
	r.logger.WithField("ratings", len(records)).Info("Loaded ratings from database")

	return records, nil
}
