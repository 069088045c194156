package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/iudanet/wordkeeper/internal/cascade"
	httpClient "github.com/iudanet/wordkeeper/internal/client/api"
	"github.com/iudanet/wordkeeper/internal/client/storage"
	"github.com/iudanet/wordkeeper/internal/config"
	"github.com/iudanet/wordkeeper/internal/crdt"
	"github.com/iudanet/wordkeeper/internal/models"
	"github.com/iudanet/wordkeeper/pkg/api"
)

// ErrNotLoggedIn на устройстве нет сессии пользователя
var ErrNotLoggedIn = errors.New("not logged in")

//go:generate moq -out clientapi_mock_test.go . ClientAPI

// ClientAPI операции сервера, нужные синхронизации
type ClientAPI interface {
	ServerTime(ctx context.Context) (models.Timestamp, error)
	Register(ctx context.Context, clientID string) error
	Reregister(ctx context.Context, clientID string) error
	Pull(ctx context.Context, clientID string, lastPull models.Timestamp) (*api.PullResponse, error)
	Push(ctx context.Context, clientID string, req api.PushRequest) (*api.PushResponse, error)
	PullConflicts(ctx context.Context, clientID string, lastPush models.Timestamp) ([]*models.ConflictLog, error)
	PushConflicts(ctx context.Context, clientID string, entries []*models.ConflictLog) (map[string]string, error)
}

var _ ClientAPI = (*httpClient.Client)(nil)

// Service синхронизация локальной реплики с сервером
type Service struct {
	api     ClientAPI
	replica storage.Replica
	cascade *cascade.Engine
	clock   crdt.Clock
	device  *config.Holder
	logger  *slog.Logger
	now     func() time.Time
}

// NewService creates a new sync service
func NewService(apiClient ClientAPI, replica storage.Replica, engine *cascade.Engine, clock crdt.Clock, device *config.Holder, logger *slog.Logger) *Service {
	return &Service{
		api:     apiClient,
		replica: replica,
		cascade: engine,
		clock:   clock,
		device:  device,
		logger:  logger,
		now:     time.Now,
	}
}

// RunResult итог одного запуска синхронизации
type RunResult struct {
	Pulled          int // записей получено в pull
	Kept            int // локальных версий сохранено для перезаписи на сервере
	Discarded       int // локальных версий отброшено с записью в журнал
	Cascaded        int // записей изменено каскадом после pull
	Pushed          int // записей применено сервером
	Stale           int // записей отклонено как устаревшие
	Rejected        int // записей отклонено сервером
	ConflictsPulled int // записей журнала получено
	ConflictsPushed int // записей журнала отправлено
}

// Run выполняет один запуск синхронизации:
// PullConflicts, PushConflicts, Pull, Push, PullConflicts, PushConflicts.
// Ошибка сети прерывает запуск; курсоры к этому моменту сдвинуты только
// для шагов, завершившихся успешно.
func (s *Service) Run(ctx context.Context) (*RunResult, error) {
	dev := s.device.Get()
	if !dev.LoggedIn() || dev.ClientID == "" {
		return nil, ErrNotLoggedIn
	}

	result := &RunResult{}
	runErr := s.run(ctx, dev, result)

	info := storage.RunInfo{
		FinishedAt: s.now(),
		Status:     storage.RunStatusSucceeded,
		Pulled:     result.Pulled,
		Pushed:     result.Pushed,
	}
	if runErr != nil {
		info.Status = storage.RunStatusFailed
		info.Error = runErr.Error()
	}
	// Итог сохраняется и после отмены ctx
	if err := s.saveRunInfo(context.WithoutCancel(ctx), info); err != nil {
		s.logger.Warn("failed to save run info", slog.Any("error", err))
	}

	if runErr != nil {
		s.logger.Warn("sync run failed", slog.String("client_id", dev.ClientID), slog.Any("error", runErr))
		return result, runErr
	}

	s.logger.Info("sync run finished",
		slog.String("client_id", dev.ClientID),
		slog.Int("pulled", result.Pulled),
		slog.Int("pushed", result.Pushed),
		slog.Int("stale", result.Stale),
		slog.Int("discarded", result.Discarded),
		slog.Int("conflicts_pulled", result.ConflictsPulled),
		slog.Int("conflicts_pushed", result.ConflictsPushed))
	return result, nil
}

func (s *Service) run(ctx context.Context, dev config.Device, result *RunResult) error {
	if err := s.ensureRegistered(ctx, dev); err != nil {
		return err
	}
	if err := s.alignClock(ctx); err != nil {
		return err
	}

	steps := []struct {
		name string
		fn   func(context.Context, config.Device, *RunResult) error
	}{
		{"pull conflicts", s.pullConflicts},
		{"push conflicts", s.pushConflicts},
		{"pull", s.pull},
		{"push", s.push},
		{"pull conflicts", s.pullConflicts},
		{"push conflicts", s.pushConflicts},
	}
	for _, step := range steps {
		if err := step.fn(ctx, dev, result); err != nil {
			return fmt.Errorf("%s: %w", step.name, err)
		}
	}
	return nil
}

// ensureRegistered регистрирует устройство один раз; 409 означает,
// что сервер уже знает устройство.
func (s *Service) ensureRegistered(ctx context.Context, dev config.Device) error {
	state, err := s.State(ctx)
	if err != nil {
		return err
	}
	if state.Registered {
		return nil
	}

	if err := s.api.Register(ctx, dev.ClientID); err != nil && !httpClient.IsStatus(err, http.StatusConflict) {
		return fmt.Errorf("register: %w", err)
	}

	return s.replica.Update(ctx, func(tx storage.Tx) error {
		state, err := tx.State()
		if err != nil {
			return err
		}
		state.Registered = true
		return tx.SaveState(state)
	})
}

// alignClock подтягивает локальные часы к времени сервера
func (s *Service) alignClock(ctx context.Context) error {
	serverTime, err := s.api.ServerTime(ctx)
	if err != nil {
		return fmt.Errorf("server time: %w", err)
	}
	s.clock.Observe(serverTime)
	return nil
}

// Reregister сбрасывает курсоры устройства на сервере и LastPull локально:
// следующий запуск получит все данные заново.
func (s *Service) Reregister(ctx context.Context) error {
	dev := s.device.Get()
	if !dev.LoggedIn() || dev.ClientID == "" {
		return ErrNotLoggedIn
	}

	if err := s.api.Reregister(ctx, dev.ClientID); err != nil {
		return err
	}

	return s.replica.Update(ctx, func(tx storage.Tx) error {
		state, err := tx.State()
		if err != nil {
			return err
		}
		state.ResetPull()
		state.Registered = true
		return tx.SaveState(state)
	})
}

// State текущее состояние синхронизации устройства
func (s *Service) State(ctx context.Context) (*storage.SyncState, error) {
	var state *storage.SyncState
	err := s.replica.View(ctx, func(tx storage.Tx) error {
		var err error
		state, err = tx.State()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read sync state: %w", err)
	}
	return state, nil
}

// PendingCount количество записей, ожидающих отправки
func (s *Service) PendingCount(ctx context.Context) (int, error) {
	var count int
	err := s.replica.View(ctx, func(tx storage.Tx) error {
		state, err := tx.State()
		if err != nil {
			return err
		}
		batch, err := collectPending(tx, state)
		if err != nil {
			return err
		}
		count = batch.Len()
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count pending records: %w", err)
	}
	return count, nil
}

func (s *Service) saveRunInfo(ctx context.Context, info storage.RunInfo) error {
	return s.replica.Update(ctx, func(tx storage.Tx) error {
		state, err := tx.State()
		if err != nil {
			return err
		}
		state.LastRun = info
		return tx.SaveState(state)
	})
}
