package sync

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/iudanet/wordkeeper/internal/models"
	"github.com/iudanet/wordkeeper/internal/server/storage"
)

// ChangeSet результат pull
type ChangeSet struct {
	Reference  *models.ReferenceSet
	Records    models.Batch
	ServerTime models.Timestamp // время начала запроса, новый курсор LastPull
}

// ResolvePullWatermark возвращает min(серверный LastPull, заявленный клиентом).
// Клиент, чей курсор ушел вперед (например, восстановлен из старой копии),
// не пропустит ни одного зафиксированного изменения.
func ResolvePullWatermark(cursor *models.SyncCursor, claimed models.Timestamp) models.Timestamp {
	return models.MinTimestamp(cursor.LastPull, claimed)
}

// ResolvePushWatermark аналогичное правило для курсора push
func ResolvePushWatermark(cursor *models.SyncCursor, claimed models.Timestamp) models.Timestamp {
	return models.MinTimestamp(cursor.LastPush, claimed)
}

// SelectChanges возвращает все справочные данные и все записи пользователя
// с ModifiedAt > watermark, включая удаленные.
func SelectChanges(ctx context.Context, tx storage.Tx, userID string, watermark models.Timestamp) (*ChangeSet, error) {
	reference, err := tx.ReferenceData(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load reference data: %w", err)
	}

	changes := &ChangeSet{Reference: reference}
	for _, kind := range models.UserKinds {
		records, err := tx.ChangedSince(ctx, userID, kind, watermark)
		if err != nil {
			return nil, fmt.Errorf("failed to select %s changes: %w", kind, err)
		}
		for _, rec := range records {
			changes.Records.Add(rec)
		}
	}
	return changes, nil
}

// Pull выбирает изменения для устройства и сдвигает его курсор LastPull
// на время начала запроса.
func (s *Service) Pull(ctx context.Context, userID, clientID string, claimedLastPull models.Timestamp) (*ChangeSet, error) {
	start := s.clock.Now()
	timer := s.metrics.startTimer("pull")
	defer timer()

	var changes *ChangeSet
	var watermark models.Timestamp
	err := s.store.InTx(ctx, userID, func(ctx context.Context, tx storage.Tx) error {
		cursor, err := s.cursor(ctx, tx, userID, clientID)
		if err != nil {
			return err
		}

		watermark = ResolvePullWatermark(cursor, claimedLastPull)
		changes, err = SelectChanges(ctx, tx, userID, watermark)
		if err != nil {
			return err
		}

		cursor.LastPull = models.MaxTimestamp(cursor.LastPull, start)
		if err := tx.SaveCursor(ctx, cursor); err != nil {
			return fmt.Errorf("failed to advance pull cursor: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	changes.ServerTime = start
	s.metrics.pulled(changes.Records.Len())

	s.logger.InfoContext(ctx, "pull served",
		slog.String("user_id", userID),
		slog.String("client_id", clientID),
		slog.String("watermark", watermark.String()),
		slog.Int("records", changes.Records.Len()))
	return changes, nil
}
