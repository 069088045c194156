package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/iudanet/wordkeeper/internal/cascade"
	"github.com/iudanet/wordkeeper/internal/client/storage"
	"github.com/iudanet/wordkeeper/internal/config"
	"github.com/iudanet/wordkeeper/internal/crdt"
	"github.com/iudanet/wordkeeper/internal/models"
	"github.com/iudanet/wordkeeper/pkg/api"
)

// flip запись, у которой pull изменил DeleteFlag. root хранит ModifiedAt
// до изменения: по нему правила восстановления находят записи, удаленные вместе с ней.
type flip struct {
	root  cascade.Node
	stamp models.Timestamp
}

// pull получает изменения после LastPull и применяет их к реплике
func (s *Service) pull(ctx context.Context, dev config.Device, result *RunResult) error {
	state, err := s.State(ctx)
	if err != nil {
		return err
	}

	resp, err := s.api.Pull(ctx, dev.ClientID, state.LastPull)
	if err != nil {
		return err
	}
	return s.applyPull(ctx, dev, resp, result)
}

// applyPull сливает ответ pull с репликой в одной транзакции
func (s *Service) applyPull(ctx context.Context, dev config.Device, resp *api.PullResponse, result *RunResult) error {
	// Записи журнала, созданные при слиянии, должны быть новее нового LastPull
	s.clock.Observe(resp.ServerTime)

	batch := resp.Batch()
	var maxIncoming models.Timestamp
	var pulled, kept, discarded, cascaded int

	err := s.replica.Update(ctx, func(tx storage.Tx) error {
		pulled, kept, discarded, cascaded = 0, 0, 0, 0

		state, err := tx.State()
		if err != nil {
			return err
		}
		if err := tx.ReplaceReference(resp.Reference()); err != nil {
			return err
		}

		var flips []flip
		for _, kind := range models.UserKinds {
			for _, rec := range batch.Records(kind) {
				maxIncoming = models.MaxTimestamp(maxIncoming, rec.Modified())
				pulled++

				f, decision, err := s.mergeRecord(tx, state, dev, rec)
				if err != nil {
					return err
				}
				switch decision {
				case crdt.MergeKeepLocal:
					kept++
				case crdt.MergeDiscardLocal:
					discarded++
				}
				if f != nil {
					flips = append(flips, *f)
				}
			}
		}

		for _, f := range flips {
			n, err := s.cascadeFlip(ctx, tx, state, f)
			if err != nil {
				return err
			}
			cascaded += n
		}

		state.LastPull = models.MaxTimestamp(state.LastPull, resp.ServerTime)
		return tx.SaveState(state)
	})
	if err != nil {
		return fmt.Errorf("failed to apply pulled records: %w", err)
	}

	s.clock.Observe(maxIncoming)
	result.Pulled += pulled
	result.Kept += kept
	result.Discarded += discarded
	result.Cascaded += cascaded
	return nil
}

// mergeRecord применяет одну полученную запись
func (s *Service) mergeRecord(tx storage.Tx, state *storage.SyncState, dev config.Device, rec models.Record) (*flip, crdt.MergeDecision, error) {
	local, err := tx.GetRecord(rec.Kind(), rec.GetID())
	exists := err == nil
	if err != nil && !errors.Is(err, storage.ErrRecordNotFound) {
		return nil, 0, err
	}

	var localTS models.Timestamp
	pending := false
	if exists {
		localTS = local.Modified()
		pending = state.Pending(local)
	}

	decision := crdt.DecideMerge(exists, localTS, rec.Modified(), pending)
	// Та же версия уже в реплике: конфликта нет
	if decision == crdt.MergeDiscardLocal && localTS == rec.Modified() {
		decision = crdt.MergeOverwrite
	}

	switch decision {
	case crdt.MergeKeepLocal:
		state.Acknowledge(rec.GetID())
		s.logger.Debug("local version kept",
			slog.String("kind", rec.Kind().String()),
			slog.String("record_id", rec.GetID()))
		return nil, decision, nil
	case crdt.MergeDiscardLocal:
		if err := s.logDiscarded(tx, dev, local); err != nil {
			return nil, decision, err
		}
	}

	if err := tx.PutRecord(rec); err != nil {
		return nil, decision, err
	}
	state.RecordServerChange(rec)

	if exists && local.IsDeleted() != rec.IsDeleted() {
		root := cascade.NodeOf(local)
		root.Deleted = rec.IsDeleted()
		return &flip{root: root, stamp: rec.Modified()}, decision, nil
	}
	return nil, decision, nil
}

// logDiscarded сохраняет снимок отброшенной локальной версии в журнал конфликтов
func (s *Service) logDiscarded(tx storage.Tx, dev config.Device, local models.Record) error {
	detail, err := models.Snapshot(dev.ClientID, local)
	if err != nil {
		return err
	}
	entry := &models.ConflictLog{
		ID:         uuid.NewString(),
		UserID:     dev.UserID,
		ClientID:   dev.ClientID,
		TargetID:   local.GetID(),
		Detail:     detail,
		ReportedAt: s.clock.Now(),
	}
	if err := tx.PutConflict(entry); err != nil {
		return fmt.Errorf("failed to log discarded %s %s: %w", local.Kind(), local.GetID(), err)
	}

	s.logger.Info("local version discarded",
		slog.String("kind", local.Kind().String()),
		slog.String("record_id", local.GetID()),
		slog.String("conflict_id", entry.ID))
	return nil
}

// cascadeFlip догоняет каскад для записи, флаг которой изменен pull.
// Записи получают ModifiedAt полученной записи, но не меньше своего ModifiedAt+1.
// Записи, которые не ждали отправки, остаются неотправляемыми: сервер
// выполнил тот же каскад при получении исходной записи.
func (s *Service) cascadeFlip(ctx context.Context, tx storage.Tx, state *storage.SyncState, f flip) (int, error) {
	g := storage.NewGraph(tx)
	if _, err := s.cascade.Apply(ctx, g, f.root, cascade.DirectionFor(f.root.Deleted)); err != nil {
		return 0, err
	}

	touched := g.Touched()
	wasPending := make(map[string]bool, len(touched))
	for _, rec := range touched {
		wasPending[rec.GetID()] = state.Pending(rec)
	}

	err := g.Flush(func(rec models.Record) models.Timestamp {
		if f.stamp > rec.Modified() {
			return f.stamp
		}
		return rec.Modified() + 1
	})
	if err != nil {
		return 0, err
	}

	for _, rec := range touched {
		if !wasPending[rec.GetID()] {
			state.RecordServerChange(rec)
		}
	}
	return len(touched), nil
}
