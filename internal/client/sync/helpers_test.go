package sync

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iudanet/wordkeeper/internal/cascade"
	"github.com/iudanet/wordkeeper/internal/client/data"
	"github.com/iudanet/wordkeeper/internal/client/storage"
	"github.com/iudanet/wordkeeper/internal/client/storage/boltdb"
	"github.com/iudanet/wordkeeper/internal/config"
	"github.com/iudanet/wordkeeper/internal/crdt"
	"github.com/iudanet/wordkeeper/internal/models"
)

// device локальная сторона теста: реплика, часы, сервисы
type device struct {
	store *boltdb.Storage
	clock *crdt.ManualClock
	data  *data.Service
	sync  *Service
	info  config.Device
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newDevice(t *testing.T, apiClient ClientAPI, userID, clientID string) *device {
	t.Helper()

	store, err := boltdb.New(context.Background(), filepath.Join(t.TempDir(), clientID+".db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	logger := testLogger()
	clock := crdt.NewManualClock(100)
	engine := cascade.NewEngine(cascade.Default(), logger)
	info := config.Device{Username: "alice", UserID: userID, ClientID: clientID, AccessToken: "token"}

	return &device{
		store: store,
		clock: clock,
		data:  data.NewService(store, engine, clock, logger),
		sync:  NewService(apiClient, store, engine, clock, config.NewHolder(info, nil), logger),
		info:  info,
	}
}

func (d *device) put(t *testing.T, records ...models.Record) {
	t.Helper()
	require.NoError(t, d.store.Update(context.Background(), func(tx storage.Tx) error {
		for _, rec := range records {
			if err := tx.PutRecord(rec); err != nil {
				return err
			}
		}
		return nil
	}))
}

func (d *device) get(t *testing.T, kind models.Kind, id string) models.Record {
	t.Helper()
	rec, err := d.data.Get(context.Background(), kind, id)
	require.NoError(t, err)
	return rec
}

func (d *device) state(t *testing.T) *storage.SyncState {
	t.Helper()
	state, err := d.sync.State(context.Background())
	require.NoError(t, err)
	return state
}

func (d *device) setState(t *testing.T, fn func(state *storage.SyncState)) {
	t.Helper()
	require.NoError(t, d.store.Update(context.Background(), func(tx storage.Tx) error {
		state, err := tx.State()
		if err != nil {
			return err
		}
		fn(state)
		return tx.SaveState(state)
	}))
}

func (d *device) conflicts(t *testing.T) []*models.ConflictLog {
	t.Helper()
	entries, err := d.data.Conflicts(context.Background())
	require.NoError(t, err)
	return entries
}

func phrase(id, userID, text string, ts models.Timestamp) *models.Phrase {
	return &models.Phrase{ID: id, UserID: userID, PhraseText: text, PhraseLanguage: "en", Meta: models.Meta{ModifiedAt: ts}}
}
