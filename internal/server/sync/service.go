// Package sync реализует серверную сторону протокола синхронизации:
// курсоры устройств, выборку изменений, применение push и журнал конфликтов.
package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/iudanet/wordkeeper/internal/cascade"
	"github.com/iudanet/wordkeeper/internal/crdt"
	"github.com/iudanet/wordkeeper/internal/models"
	"github.com/iudanet/wordkeeper/internal/server/storage"
)

var (
	// ErrClientUnknown устройство не зарегистрировано для пользователя
	ErrClientUnknown = errors.New("client is not registered")

	// ErrClientExists устройство уже зарегистрировано
	ErrClientExists = errors.New("client is already registered")
)

// Service серверный движок синхронизации
type Service struct {
	store   storage.Storage
	clock   crdt.Clock
	cascade *cascade.Engine
	metrics *Metrics
	logger  *slog.Logger
}

// NewService создает сервис синхронизации. metrics может быть nil.
func NewService(store storage.Storage, clock crdt.Clock, engine *cascade.Engine, metrics *Metrics, logger *slog.Logger) *Service {
	return &Service{
		store:   store,
		clock:   clock,
		cascade: engine,
		metrics: metrics,
		logger:  logger,
	}
}

// ServerTime текущее логическое время сервера
func (s *Service) ServerTime() models.Timestamp {
	return s.clock.Now()
}

// Register регистрирует устройство с курсорами в Epoch.
// Возвращает ErrClientExists, если пара (пользователь, устройство) уже есть.
func (s *Service) Register(ctx context.Context, userID, clientID string) error {
	err := s.store.InTx(ctx, userID, func(ctx context.Context, tx storage.Tx) error {
		return tx.CreateCursor(ctx, &models.SyncCursor{
			UserID:   userID,
			ClientID: clientID,
			LastPull: models.Epoch,
			LastPush: models.Epoch,
		})
	})
	if errors.Is(err, storage.ErrCursorExists) {
		return ErrClientExists
	}
	if err != nil {
		return fmt.Errorf("failed to register client: %w", err)
	}

	s.logger.InfoContext(ctx, "client registered",
		slog.String("user_id", userID),
		slog.String("client_id", clientID))
	return nil
}

// Reregister сбрасывает оба курсора в Epoch, что приводит к полной
// повторной синхронизации устройства.
func (s *Service) Reregister(ctx context.Context, userID, clientID string) error {
	err := s.store.InTx(ctx, userID, func(ctx context.Context, tx storage.Tx) error {
		cursor, err := s.cursor(ctx, tx, userID, clientID)
		if err != nil {
			return err
		}
		cursor.LastPull = models.Epoch
		cursor.LastPush = models.Epoch
		return tx.SaveCursor(ctx, cursor)
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "client re-registered",
		slog.String("user_id", userID),
		slog.String("client_id", clientID))
	return nil
}

// Status возвращает курсоры устройства
func (s *Service) Status(ctx context.Context, userID, clientID string) (*models.SyncCursor, error) {
	var cursor *models.SyncCursor
	err := s.store.InTx(ctx, userID, func(ctx context.Context, tx storage.Tx) error {
		var err error
		cursor, err = s.cursor(ctx, tx, userID, clientID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return cursor, nil
}

// cursor загружает курсор; незарегистрированное устройство дает ErrClientUnknown
func (s *Service) cursor(ctx context.Context, tx storage.Tx, userID, clientID string) (*models.SyncCursor, error) {
	cursor, err := tx.GetCursor(ctx, userID, clientID)
	if errors.Is(err, storage.ErrCursorNotFound) {
		return nil, ErrClientUnknown
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load sync cursor: %w", err)
	}
	return cursor, nil
}
