// Package ingest turns raw rating data into validated RatingRecord
// collections. It owns every invariant the engine assumes: typed fields,
// ratings inside the configured range, non-negative ids, and at most one
// record per (user, product) pair with the most recent kept.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rateworks/recsys/internal/config"
	"github.com/rateworks/recsys/pkg/models"
)

type pairKey struct {
	userID    int64
	productID int64
}

// LoadRatingsCSV reads and validates a ratings CSV with columns
// user_id, product_id, rating, timestamp (unix seconds). Invalid rows
// are dropped and counted, never fatal; only a missing file, unreadable
// CSV, or missing required columns abort the load.
func LoadRatingsCSV(path string, cfg config.RatingsConfig, logger *logrus.Logger) ([]models.RatingRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ratings file not found: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("error reading CSV header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[name] = i
	}
	for _, required := range []string{"user_id", "product_id", "rating", "timestamp"} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("missing required column: %s", required)
		}
	}

	var (
		droppedMissing    int
		droppedTypes      int
		droppedRange      int
		droppedNegative   int
		droppedDuplicates int
		badTimestamps     int
	)

	index := make(map[pairKey]int)
	var records []models.RatingRecord

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV file: %w", err)
		}

		field := func(name string) string {
			i := columns[name]
			if i >= len(row) {
				return ""
			}
			return row[i]
		}

		if field("user_id") == "" || field("product_id") == "" || field("rating") == "" {
			droppedMissing++
			continue
		}

		userID, errU := strconv.ParseInt(field("user_id"), 10, 64)
		productID, errP := strconv.ParseInt(field("product_id"), 10, 64)
		rating, errR := strconv.ParseFloat(field("rating"), 64)
		if errU != nil || errP != nil || errR != nil {
			droppedTypes++
			continue
		}

		if userID < 0 || productID < 0 {
			droppedNegative++
			continue
		}
		if rating < cfg.MinValue || rating > cfg.MaxValue {
			droppedRange++
			continue
		}

		var ts time.Time
		if unix, err := strconv.ParseInt(field("timestamp"), 10, 64); err == nil {
			ts = time.Unix(unix, 0).UTC()
		} else {
			badTimestamps++
			ts = time.Now().UTC()
		}

		record := models.RatingRecord{
			UserID:    userID,
			ProductID: productID,
			Rating:    rating,
			Timestamp: ts,
		}

		key := pairKey{userID, productID}
		if existing, ok := index[key]; ok {
			droppedDuplicates++
			// Keep the most recent rating for the pair.
			if !record.Timestamp.Before(records[existing].Timestamp) {
				records[existing] = record
			}
			continue
		}
		index[key] = len(records)
		records = append(records, record)
	}

	if droppedMissing > 0 {
		logger.WithField("rows", droppedMissing).Warn("Removed rows with missing values")
	}
	if droppedTypes > 0 {
		logger.WithField("rows", droppedTypes).Warn("Removed rows with unparseable fields")
	}
	if droppedNegative > 0 {
		logger.WithField("rows", droppedNegative).Warn("Removed rows with negative ids")
	}
	if droppedRange > 0 {
		logger.WithFields(logrus.Fields{
			"rows": droppedRange,
			"min":  cfg.MinValue,
			"max":  cfg.MaxValue,
		}).Warn("Removed ratings outside valid range")
	}
	if droppedDuplicates > 0 {
		logger.WithField("rows", droppedDuplicates).Warn("Found duplicate user-product pairs, keeping most recent")
	}
	if badTimestamps > 0 {
		logger.WithField("rows", badTimestamps).Warn("Could not parse timestamps, using current time")
	}

	logger.WithFields(logrus.Fields{
		"ratings": len(records),
		"path":    path,
	}).Info("Loaded valid ratings")

	return records, nil
}
