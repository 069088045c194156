package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/iudanet/wordkeeper/internal/models"
	"github.com/iudanet/wordkeeper/internal/server/storage"
)

// PullConflicts возвращает записи журнала пользователя с ReportedAt не раньше
// min(курсор LastPush, заявленный клиентом). Курсор не меняется: повторная
// доставка безопасна, клиент отбрасывает уже известные id.
func (s *Service) PullConflicts(ctx context.Context, userID, clientID string, claimedLastPush models.Timestamp) ([]*models.ConflictLog, error) {
	var entries []*models.ConflictLog
	err := s.store.InTx(ctx, userID, func(ctx context.Context, tx storage.Tx) error {
		cursor, err := s.cursor(ctx, tx, userID, clientID)
		if err != nil {
			return err
		}

		entries, err = tx.ConflictsSince(ctx, userID, ResolvePushWatermark(cursor, claimedLastPush))
		if err != nil {
			return fmt.Errorf("failed to select conflict logs: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.DebugContext(ctx, "conflicts pulled",
		slog.String("user_id", userID),
		slog.String("client_id", clientID),
		slog.Int("entries", len(entries)))
	return entries, nil
}

// PushConflicts сохраняет записи журнала, созданные на устройстве.
// Возвращает отказы по id: чужая запись или уже сохраненная.
func (s *Service) PushConflicts(ctx context.Context, userID, clientID string, entries []*models.ConflictLog) (map[string]string, error) {
	failures := make(map[string]string)
	stored := 0

	err := s.store.InTx(ctx, userID, func(ctx context.Context, tx storage.Tx) error {
		if _, err := s.cursor(ctx, tx, userID, clientID); err != nil {
			return err
		}

		for _, entry := range entries {
			if entry.ID == "" || entry.TargetID == "" {
				failures[entry.ID] = ReasonInvalidEntry
				continue
			}
			if entry.UserID != userID || entry.ClientID != clientID {
				failures[entry.ID] = ReasonUnauthorized
				continue
			}

			err := tx.InsertConflict(ctx, entry)
			if errors.Is(err, storage.ErrConflictExists) {
				failures[entry.ID] = ReasonConflictLogged
				continue
			}
			if err != nil {
				return err
			}
			stored++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.conflictsLogged(stored)
	s.logger.InfoContext(ctx, "conflicts pushed",
		slog.String("user_id", userID),
		slog.String("client_id", clientID),
		slog.Int("stored", stored),
		slog.Int("rejected", len(failures)))
	return failures, nil
}

// ListConflicts весь журнал пользователя
func (s *Service) ListConflicts(ctx context.Context, userID string) ([]*models.ConflictLog, error) {
	var entries []*models.ConflictLog
	err := s.store.InTx(ctx, userID, func(ctx context.Context, tx storage.Tx) error {
		var err error
		entries, err = tx.ListConflicts(ctx, userID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list conflict logs: %w", err)
	}
	return entries, nil
}
