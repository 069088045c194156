package sync

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/iudanet/wordkeeper/internal/client/storage"
	"github.com/iudanet/wordkeeper/internal/config"
	"github.com/iudanet/wordkeeper/internal/models"
	"github.com/iudanet/wordkeeper/pkg/api"
)

// push отправляет локальные изменения, сделанные после LastPush.
// Новый LastPush это локальное время начала сборки пакета: изменения,
// сделанные во время отправки, останутся ожидающими.
func (s *Service) push(ctx context.Context, dev config.Device, result *RunResult) error {
	start := s.clock.Now()

	var req api.PushRequest
	err := s.replica.View(ctx, func(tx storage.Tx) error {
		state, err := tx.State()
		if err != nil {
			return err
		}
		batch, err := collectPending(tx, state)
		if err != nil {
			return err
		}
		req = api.PushRequest{Batch: *batch, OverwriteIDs: state.Acknowledged}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to collect pending records: %w", err)
	}

	if req.Batch.Len() > 0 || len(req.OverwriteIDs) > 0 {
		resp, err := s.api.Push(ctx, dev.ClientID, req)
		if err != nil {
			return err
		}

		for id, reason := range resp.Failures {
			s.logger.Warn("record rejected by server",
				slog.String("record_id", id),
				slog.String("reason", reason))
		}
		result.Pushed += resp.Applied
		result.Stale += len(resp.Stale)
		result.Rejected += len(resp.Failures)
	}

	return s.replica.Update(ctx, func(tx storage.Tx) error {
		state, err := tx.State()
		if err != nil {
			return err
		}
		state.CompletePush(start)
		return tx.SaveState(state)
	})
}

// collectPending записи, измененные локально после последнего push.
// Версии, полученные с сервера, не отправляются обратно.
func collectPending(tx storage.Tx, state *storage.SyncState) (*models.Batch, error) {
	batch := &models.Batch{}
	for _, kind := range models.UserKinds {
		records, err := tx.Records(kind)
		if err != nil {
			return nil, err
		}
		for _, rec := range records {
			if state.Pending(rec) {
				batch.Add(rec)
			}
		}
	}
	return batch, nil
}
