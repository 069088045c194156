package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/iudanet/wordkeeper/internal/client/storage"
	"github.com/iudanet/wordkeeper/internal/config"
	"github.com/iudanet/wordkeeper/internal/models"
)

// reasonConflictLogged ответ сервера на повторную отправку записи журнала
const reasonConflictLogged = "Conflict already logged in server."

// pullConflicts получает журнал конфликтов начиная с LastPush
// и добавляет отсутствующие записи
func (s *Service) pullConflicts(ctx context.Context, dev config.Device, result *RunResult) error {
	state, err := s.State(ctx)
	if err != nil {
		return err
	}

	entries, err := s.api.PullConflicts(ctx, dev.ClientID, state.LastPush)
	if err != nil {
		return err
	}

	added := 0
	err = s.replica.Update(ctx, func(tx storage.Tx) error {
		added = 0
		ids := make([]string, 0, len(entries))
		for _, entry := range entries {
			ids = append(ids, entry.ID)
			err := tx.PutConflict(entry)
			switch {
			case errors.Is(err, storage.ErrConflictExists):
				continue
			case err != nil:
				return err
			}
			added++
		}

		state, err := tx.State()
		if err != nil {
			return err
		}
		state.PulledConflicts = ids
		return tx.SaveState(state)
	})
	if err != nil {
		return fmt.Errorf("failed to store pulled conflicts: %w", err)
	}

	result.ConflictsPulled += added
	return nil
}

// pushConflicts отправляет записи журнала этого устройства, созданные
// не раньше LastPull и отсутствующие в последнем pull конфликтов
func (s *Service) pushConflicts(ctx context.Context, dev config.Device, result *RunResult) error {
	var outgoing []*models.ConflictLog
	err := s.replica.View(ctx, func(tx storage.Tx) error {
		state, err := tx.State()
		if err != nil {
			return err
		}
		entries, err := tx.Conflicts()
		if err != nil {
			return err
		}
		for _, entry := range entries {
			if entry.ClientID != dev.ClientID || entry.ReportedAt < state.LastPull {
				continue
			}
			if slices.Contains(state.PulledConflicts, entry.ID) {
				continue
			}
			outgoing = append(outgoing, entry)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to collect conflicts: %w", err)
	}
	if len(outgoing) == 0 {
		return nil
	}

	failures, err := s.api.PushConflicts(ctx, dev.ClientID, outgoing)
	if err != nil {
		return err
	}

	accepted := len(outgoing)
	for id, reason := range failures {
		accepted--
		if reason == reasonConflictLogged {
			continue
		}
		s.logger.Warn("conflict log entry rejected by server",
			slog.String("conflict_id", id),
			slog.String("reason", reason))
	}
	result.ConflictsPushed += accepted
	return nil
}
