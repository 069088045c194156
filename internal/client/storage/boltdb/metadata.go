package boltdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/iudanet/wordkeeper/internal/client/storage"
	"github.com/iudanet/wordkeeper/internal/config"
)

var (
	keySyncState = []byte("sync_state")
	keyDevice    = []byte("device")
)

// State returns the sync state; a fresh replica starts at Epoch
func (t *boltTx) State() (*storage.SyncState, error) {
	bucket, err := t.bucket(bucketMetadata)
	if err != nil {
		return nil, err
	}

	data := bucket.Get(keySyncState)
	if data == nil {
		// Синхронизации еще не было
		return storage.NewSyncState(), nil
	}

	state := storage.NewSyncState()
	if err := json.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal sync state: %w", err)
	}
	return state, nil
}

// SaveState stores the sync state
func (t *boltTx) SaveState(state *storage.SyncState) error {
	bucket, err := t.bucket(bucketMetadata)
	if err != nil {
		return err
	}

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal sync state: %w", err)
	}
	if err := bucket.Put(keySyncState, data); err != nil {
		return fmt.Errorf("failed to save sync state: %w", err)
	}
	return nil
}

// SaveDevice stores device identity and session
func (s *Storage) SaveDevice(ctx context.Context, device config.Device) error {
	return s.Update(ctx, func(tx storage.Tx) error {
		bucket, err := tx.(*boltTx).bucket(bucketMetadata)
		if err != nil {
			return err
		}

		data, err := json.Marshal(device)
		if err != nil {
			return fmt.Errorf("failed to marshal device: %w", err)
		}
		if err := bucket.Put(keyDevice, data); err != nil {
			return fmt.Errorf("failed to save device: %w", err)
		}
		return nil
	})
}

// LoadDevice retrieves stored device identity
// Returns ErrDeviceNotFound if nothing was saved yet
func (s *Storage) LoadDevice(ctx context.Context) (config.Device, error) {
	var device config.Device

	err := s.View(ctx, func(tx storage.Tx) error {
		bucket, err := tx.(*boltTx).bucket(bucketMetadata)
		if err != nil {
			return err
		}

		data := bucket.Get(keyDevice)
		if data == nil {
			return storage.ErrDeviceNotFound
		}
		return json.Unmarshal(data, &device)
	})
	if err != nil {
		if errors.Is(err, storage.ErrDeviceNotFound) {
			return config.Device{}, err
		}
		return config.Device{}, fmt.Errorf("failed to load device: %w", err)
	}
	return device, nil
}
