package boltdb

import (
	"encoding/json"
	"fmt"

	"github.com/iudanet/wordkeeper/internal/client/storage"
	"github.com/iudanet/wordkeeper/internal/models"
)

var referenceKey = []byte("current")

// GetRecord retrieves a record by kind and ID
func (t *boltTx) GetRecord(kind models.Kind, id string) (models.Record, error) {
	bucket, err := t.bucket(bucketFor(kind))
	if err != nil {
		return nil, err
	}

	data := bucket.Get([]byte(id))
	if data == nil {
		return nil, storage.ErrRecordNotFound
	}
	return decodeRecord(kind, data)
}

// PutRecord stores or replaces a record
func (t *boltTx) PutRecord(rec models.Record) error {
	bucket, err := t.bucket(bucketFor(rec.Kind()))
	if err != nil {
		return err
	}

	// Сериализуем запись в JSON
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", rec.Kind(), err)
	}

	if err := bucket.Put([]byte(rec.GetID()), data); err != nil {
		return fmt.Errorf("failed to save %s %s: %w", rec.Kind(), rec.GetID(), err)
	}
	return nil
}

// Records returns all records of the kind, including deleted ones
func (t *boltTx) Records(kind models.Kind) ([]models.Record, error) {
	return t.scan(kind, func(models.Record) bool { return true })
}

// Children returns records of the kind referencing the parent
func (t *boltTx) Children(kind, parentKind models.Kind, parentID string) ([]models.Record, error) {
	return t.scan(kind, func(rec models.Record) bool {
		return rec.ParentID(parentKind) == parentID
	})
}

func (t *boltTx) scan(kind models.Kind, keep func(models.Record) bool) ([]models.Record, error) {
	bucket, err := t.bucket(bucketFor(kind))
	if err != nil {
		return nil, err
	}

	var records []models.Record
	err = bucket.ForEach(func(k, v []byte) error {
		rec, err := decodeRecord(kind, v)
		if err != nil {
			return err
		}
		if keep(rec) {
			records = append(records, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Reference returns the reference data received with the last pull
func (t *boltTx) Reference() (*models.ReferenceSet, error) {
	bucket, err := t.bucket(bucketReference)
	if err != nil {
		return nil, err
	}

	set := &models.ReferenceSet{}
	data := bucket.Get(referenceKey)
	if data == nil {
		return set, nil
	}
	if err := json.Unmarshal(data, set); err != nil {
		return nil, fmt.Errorf("failed to unmarshal reference data: %w", err)
	}
	return set, nil
}

// ReplaceReference replaces the reference data as a whole
func (t *boltTx) ReplaceReference(set *models.ReferenceSet) error {
	bucket, err := t.bucket(bucketReference)
	if err != nil {
		return err
	}

	data, err := json.Marshal(set)
	if err != nil {
		return fmt.Errorf("failed to marshal reference data: %w", err)
	}
	if err := bucket.Put(referenceKey, data); err != nil {
		return fmt.Errorf("failed to save reference data: %w", err)
	}
	return nil
}

func decodeRecord(kind models.Kind, data []byte) (models.Record, error) {
	rec, err := models.NewRecord(kind)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", kind, err)
	}
	return rec, nil
}
