package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/iudanet/wordkeeper/internal/cascade"
	"github.com/iudanet/wordkeeper/internal/crdt"
	"github.com/iudanet/wordkeeper/internal/models"
	"github.com/iudanet/wordkeeper/internal/server/storage"
)

// PushResult итог применения пакета
type PushResult struct {
	Failures  map[string]string // id -> причина отказа (Unauthorized, NotFound)
	Stale     []string          // id, не примененные как устаревшие
	Applied   int               // вставлено или перезаписано
	Logged    int               // записей журнала конфликтов создано
	Cascaded  int               // зависимых записей изменено каскадом
	PushStart models.Timestamp  // новый курсор LastPush
}

type pushOutcome int

const (
	outcomeApplied pushOutcome = iota
	outcomeLogged
	outcomeStale
	outcomeRejected
	outcomeFatal
)

// flip запись, чей DeleteFlag изменил пакет. root.ModifiedAt берется из версии
// до применения: правила восстановления сравнивают с моментом удаления.
// stamp новый ModifiedAt записи, им помечаются зависимые записи.
type flip struct {
	root  cascade.Node
	stamp models.Timestamp
}

// pushRun состояние одного применения пакета
type pushRun struct {
	tx           storage.Tx
	userID       string
	clientID     string
	acknowledged map[string]struct{}
	result       *PushResult
	fatal        map[string]string
	flips        []flip
	maxIncoming  models.Timestamp
	start        models.Timestamp
}

// Push применяет пакет устройства одной транзакцией.
// Виды обрабатываются в порядке зависимостей, чтобы проверка родителей
// видела записи, вставленные ранее в том же пакете. Нарушение ограничений
// хранилища откатывает весь пакет и возвращается как *PersistenceConflictError.
// Курсор LastPush сдвигается только после успешной фиксации.
func (s *Service) Push(ctx context.Context, userID, clientID string, batch *models.Batch, overwriteIDs []string) (*PushResult, error) {
	start := s.clock.Now()
	timer := s.metrics.startTimer("push")
	defer timer()

	acknowledged := make(map[string]struct{}, len(overwriteIDs))
	for _, id := range overwriteIDs {
		acknowledged[id] = struct{}{}
	}

	var run *pushRun
	err := s.store.InTx(ctx, userID, func(ctx context.Context, tx storage.Tx) error {
		cursor, err := s.cursor(ctx, tx, userID, clientID)
		if err != nil {
			return err
		}

		run = &pushRun{
			tx:           tx,
			userID:       userID,
			clientID:     clientID,
			acknowledged: acknowledged,
			start:        start,
			fatal:        make(map[string]string),
			result: &PushResult{
				Failures:  make(map[string]string),
				Stale:     make([]string, 0),
				PushStart: start,
			},
		}

		for _, kind := range models.UserKinds {
			for _, rec := range batch.Records(kind) {
				outcome, err := s.applyRecord(ctx, run, rec)
				if err != nil {
					return err
				}
				s.metrics.pushOutcome(outcome)
			}
		}

		if len(run.fatal) > 0 {
			return &PersistenceConflictError{Failures: run.fatal}
		}

		for _, f := range run.flips {
			graph := &txGraph{tx: tx, stamp: f.stamp}
			res, err := s.cascade.Apply(ctx, graph, f.root, cascade.DirectionFor(f.root.Deleted))
			if err != nil {
				return fmt.Errorf("cascade from %s %s: %w", f.root.Kind, f.root.ID, err)
			}
			run.result.Cascaded += len(res.Flipped)
		}

		cursor.LastPush = models.MaxTimestamp(cursor.LastPush, start)
		if err := tx.SaveCursor(ctx, cursor); err != nil {
			return fmt.Errorf("failed to advance push cursor: %w", err)
		}
		return nil
	})
	if err != nil {
		var pce *PersistenceConflictError
		if errors.As(err, &pce) {
			s.logger.WarnContext(ctx, "push rolled back",
				slog.String("user_id", userID),
				slog.String("client_id", clientID),
				slog.Int("failures", len(pce.Failures)))
		}
		return nil, err
	}

	s.clock.Observe(run.maxIncoming)
	s.metrics.conflictsLogged(run.result.Logged)

	s.logger.InfoContext(ctx, "push applied",
		slog.String("user_id", userID),
		slog.String("client_id", clientID),
		slog.Int("applied", run.result.Applied),
		slog.Int("stale", len(run.result.Stale)),
		slog.Int("rejected", len(run.result.Failures)),
		slog.Int("conflicts_logged", run.result.Logged),
		slog.Int("cascaded", run.result.Cascaded))
	return run.result, nil
}

func (s *Service) applyRecord(ctx context.Context, run *pushRun, rec models.Record) (pushOutcome, error) {
	id := rec.GetID()
	run.maxIncoming = models.MaxTimestamp(run.maxIncoming, rec.Modified())

	if reason, err := s.checkParents(ctx, run, rec); err != nil {
		return outcomeRejected, err
	} else if reason != "" {
		run.result.Failures[id] = reason
		return outcomeRejected, nil
	}

	existing, err := run.tx.GetRecord(ctx, rec.Kind(), id)
	if err != nil && !errors.Is(err, storage.ErrRecordNotFound) {
		return outcomeRejected, err
	}
	exists := err == nil

	// Записи без родителей принадлежат пользователю напрямую; пустой
	// владелец не совпадает ни с кем
	if len(rec.Kind().Parents()) == 0 && rec.OwnerID() != run.userID {
		run.result.Failures[id] = ReasonUnauthorized
		return outcomeRejected, nil
	}
	var serverModified models.Timestamp
	if exists {
		owner, err := run.tx.OwnerOf(ctx, rec.Kind(), id)
		if err != nil {
			return outcomeRejected, err
		}
		if owner != run.userID {
			run.result.Failures[id] = ReasonUnauthorized
			return outcomeRejected, nil
		}
		serverModified = existing.Modified()
	}

	_, acknowledged := run.acknowledged[id]
	decision := crdt.DecidePush(exists, serverModified, rec.Modified(), acknowledged)

	switch decision {
	case crdt.PushStale:
		run.result.Stale = append(run.result.Stale, id)
		return outcomeStale, nil

	case crdt.PushInsert:
		err = run.tx.InsertRecord(ctx, rec)

	case crdt.PushOverwriteLogged:
		if err := s.logDiscarded(ctx, run, existing); err != nil {
			return outcomeRejected, err
		}
		err = run.tx.UpdateRecord(ctx, rec)

	case crdt.PushOverwrite:
		err = run.tx.UpdateRecord(ctx, rec)
	}

	if err != nil {
		var ce *storage.ConstraintError
		if errors.As(err, &ce) {
			run.fatal[id] = ce.Error()
			return outcomeFatal, nil
		}
		return outcomeRejected, err
	}

	if exists && existing.IsDeleted() != rec.IsDeleted() {
		root := cascade.NodeOf(existing)
		root.Deleted = rec.IsDeleted()
		run.flips = append(run.flips, flip{root: root, stamp: rec.Modified()})
	}

	run.result.Applied++
	if decision == crdt.PushOverwriteLogged {
		return outcomeLogged, nil
	}
	return outcomeApplied, nil
}

// checkParents проверяет, что родители записи существуют и принадлежат пользователю
func (s *Service) checkParents(ctx context.Context, run *pushRun, rec models.Record) (string, error) {
	for _, parentKind := range rec.Kind().Parents() {
		owner, err := run.tx.OwnerOf(ctx, parentKind, rec.ParentID(parentKind))
		if errors.Is(err, storage.ErrRecordNotFound) {
			return ReasonParentMissing(parentKind), nil
		}
		if err != nil {
			return "", err
		}
		if owner != run.userID {
			return ReasonUnauthorized, nil
		}
	}
	return "", nil
}

// logDiscarded сохраняет снимок серверной версии, которую перезаписывает устройство
func (s *Service) logDiscarded(ctx context.Context, run *pushRun, existing models.Record) error {
	detail, err := models.Snapshot(run.clientID, existing)
	if err != nil {
		return err
	}

	entry := &models.ConflictLog{
		ID:         uuid.NewString(),
		UserID:     run.userID,
		ClientID:   run.clientID,
		TargetID:   existing.GetID(),
		Detail:     detail,
		ReportedAt: run.start,
	}
	if err := run.tx.InsertConflict(ctx, entry); err != nil {
		return fmt.Errorf("failed to log conflict for %s: %w", existing.GetID(), err)
	}
	run.result.Logged++
	return nil
}
