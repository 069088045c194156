package boltdb

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/iudanet/wordkeeper/internal/client/storage"
	"github.com/iudanet/wordkeeper/internal/models"
)

// PutConflict inserts a conflict log entry if it is absent
func (t *boltTx) PutConflict(entry *models.ConflictLog) error {
	bucket, err := t.bucket(bucketConflicts)
	if err != nil {
		return err
	}

	// Записи журнала неизменяемы
	if bucket.Get([]byte(entry.ID)) != nil {
		return storage.ErrConflictExists
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal conflict log: %w", err)
	}
	if err := bucket.Put([]byte(entry.ID), data); err != nil {
		return fmt.Errorf("failed to save conflict log: %w", err)
	}
	return nil
}

// GetConflict retrieves a conflict log entry by ID
func (t *boltTx) GetConflict(id string) (*models.ConflictLog, error) {
	bucket, err := t.bucket(bucketConflicts)
	if err != nil {
		return nil, err
	}

	data := bucket.Get([]byte(id))
	if data == nil {
		return nil, storage.ErrRecordNotFound
	}

	entry := &models.ConflictLog{}
	if err := json.Unmarshal(data, entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal conflict log: %w", err)
	}
	return entry, nil
}

// Conflicts returns all conflict log entries ordered by ReportedAt
func (t *boltTx) Conflicts() ([]*models.ConflictLog, error) {
	bucket, err := t.bucket(bucketConflicts)
	if err != nil {
		return nil, err
	}

	var entries []*models.ConflictLog
	err = bucket.ForEach(func(k, v []byte) error {
		entry := &models.ConflictLog{}
		if err := json.Unmarshal(v, entry); err != nil {
			return fmt.Errorf("failed to unmarshal conflict log %s: %w", k, err)
		}
		entries = append(entries, entry)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].ReportedAt < entries[j].ReportedAt
	})
	return entries, nil
}
