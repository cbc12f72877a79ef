package storage

import (
	"sync"

	"github.com/rateworks/recsys/pkg/models"
)

// SnapshotStore holds the current rating table and serves copies of it.
// The engine only ever sees immutable snapshots; streamed rating events
// are folded in through Upsert, which preserves the one-record-per-pair
// invariant by keeping the most recent rating.
type SnapshotStore struct {
	mu      sync.RWMutex
	records []models.RatingRecord
	index   map[pairKey]int
}

type pairKey struct {
	userID    int64
	productID int64
}

func NewSnapshotStore(records []models.RatingRecord) *SnapshotStore {
	s := &SnapshotStore{
		records: append([]models.RatingRecord(nil), records...),
		index:   make(map[pairKey]int, len(records)),
	}
	for i, r := range s.records {
		s.index[pairKey{r.UserID, r.ProductID}] = i
	}
	return s
}

// Snapshot returns a copy of the rating table.
func (s *SnapshotStore) Snapshot() []models.RatingRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.RatingRecord(nil), s.records...)
}

// Upsert adds a rating, replacing an existing (user, product) record
// unless the existing one is more recent.
func (s *SnapshotStore) Upsert(record models.RatingRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairKey{record.UserID, record.ProductID}
	if i, ok := s.index[key]; ok {
		if record.Timestamp.Before(s.records[i].Timestamp) {
			return
		}
		s.records[i] = record
		return
	}
	s.index[key] = len(s.records)
	s.records = append(s.records, record)
}

func (s *SnapshotStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
