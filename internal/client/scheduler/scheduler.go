// Package scheduler запускает синхронизацию устройства в фоне:
// запросы собираются в один отложенный запуск, запуски не пересекаются.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrRunInProgress запуск уже выполняется
var ErrRunInProgress = errors.New("sync run already in progress")

// State состояние планировщика
type State int

const (
	StateIdling State = iota
	StateRunning
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdling:
		return "idling"
	case StateRunning:
		return "running"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// RunFunc один запуск синхронизации
type RunFunc func(ctx context.Context) error

// Scheduler конечный автомат Idling -> Running -> Idling|Failed.
// Отложенный запуск один: повторные Trigger до его начала сдвигают
// таймер и не добавляют новых запусков.
type Scheduler struct {
	run      RunFunc
	logger   *slog.Logger
	trigger  chan struct{} // одно место: запросы схлопываются
	debounce time.Duration

	mu      sync.Mutex
	lastErr error
	state   State
	running bool
	pending bool // отложенный запуск ожидает таймера
}

// New создает планировщик
func New(run RunFunc, debounce time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		run:      run,
		logger:   logger,
		trigger:  make(chan struct{}, 1),
		debounce: debounce,
	}
}

// Trigger запрашивает отложенный запуск
func (s *Scheduler) Trigger() {
	s.mu.Lock()
	s.pending = true
	s.mu.Unlock()

	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

// CancelPending отменяет отложенный запуск, который еще не начался.
// Возвращает false, если отменять нечего.
func (s *Scheduler) CancelPending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.pending {
		return false
	}
	s.pending = false
	select {
	case <-s.trigger:
	default:
	}
	s.logger.Debug("pending sync run cancelled")
	return true
}

// RunNow выполняет запуск без задержки. Отмена ctx прерывает запуск.
// Если запуск уже идет, возвращает ErrRunInProgress.
func (s *Scheduler) RunNow(ctx context.Context) error {
	if !s.tryStart() {
		return ErrRunInProgress
	}
	return s.execute(ctx)
}

// Run обрабатывает отложенные запуски до отмены ctx
func (s *Scheduler) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.trigger:
		}

		if err := s.waitDebounce(ctx); err != nil {
			return err
		}
	}
}

// waitDebounce ждет тишины в течение debounce и выполняет запуск
func (s *Scheduler) waitDebounce(ctx context.Context) error {
	timer := time.NewTimer(s.debounce)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.trigger:
			timer.Reset(s.debounce)
		case <-timer.C:
			start, wait := s.takePending()
			if wait {
				// Идет запуск без задержки: отложенный выполнится после него
				timer.Reset(s.debounce)
				continue
			}
			if start {
				_ = s.execute(ctx)
			}
			return nil
		}
	}
}

// takePending забирает отложенный запуск. wait означает, что запуск
// сейчас невозможен и его нужно отложить еще раз.
func (s *Scheduler) takePending() (start, wait bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.pending {
		return false, false
	}
	if s.running {
		return false, true
	}
	s.pending = false
	s.running = true
	s.state = StateRunning
	return true, false
}

func (s *Scheduler) tryStart() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return false
	}
	s.running = true
	s.state = StateRunning
	return true
}

func (s *Scheduler) execute(ctx context.Context) error {
	started := time.Now()
	err := s.run(ctx)

	s.mu.Lock()
	s.running = false
	s.lastErr = err
	if err != nil {
		s.state = StateFailed
	} else {
		s.state = StateIdling
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Warn("sync run failed",
			slog.Duration("duration", time.Since(started)),
			slog.Any("error", err))
		return err
	}
	s.logger.Debug("sync run finished", slog.Duration("duration", time.Since(started)))
	return nil
}

// State текущее состояние
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LastError ошибка последнего запуска или nil
func (s *Scheduler) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Pending ожидает ли отложенный запуск
func (s *Scheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}
