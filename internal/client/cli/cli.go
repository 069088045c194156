// Package cli команды клиента WordKeeper
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/iudanet/wordkeeper/internal/cascade"
	httpClient "github.com/iudanet/wordkeeper/internal/client/api"
	"github.com/iudanet/wordkeeper/internal/client/data"
	"github.com/iudanet/wordkeeper/internal/client/iocli"
	"github.com/iudanet/wordkeeper/internal/client/storage"
	"github.com/iudanet/wordkeeper/internal/client/storage/boltdb"
	clientsync "github.com/iudanet/wordkeeper/internal/client/sync"
	"github.com/iudanet/wordkeeper/internal/config"
	"github.com/iudanet/wordkeeper/internal/crdt"
	"github.com/iudanet/wordkeeper/internal/models"
)

var errNotLoggedIn = errors.New("not logged in. Please run 'wordkeeper login' first")

// Cli состояние процесса клиента: реплика и сервисы открываются
// перед первой командой и закрываются через Close
type Cli struct {
	io     iocli.IO
	logger *slog.Logger
	clock  crdt.Clock
	cfg    config.Client

	replica *boltdb.Storage
	device  *config.Holder
	api     *httpClient.Client
	data    *data.Service
	sync    *clientsync.Service

	autoSync bool // синхронизировать после изменения данных
	changed  bool // команда изменила локальные данные
}

func New(io iocli.IO, cfg config.Client, logger *slog.Logger) *Cli {
	return &Cli{
		io:     io,
		logger: logger,
		clock:  crdt.NewHybridClock(),
		cfg:    cfg,
	}
}

// open открывает реплику и собирает сервисы; повторный вызов ничего не делает
func (c *Cli) open(ctx context.Context) error {
	if c.replica != nil {
		return nil
	}

	replica, err := boltdb.New(ctx, c.cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	device, err := loadDevice(ctx, replica)
	if err != nil {
		_ = replica.Close()
		return err
	}

	// Часы не должны отставать от курсоров, уже сохраненных в реплике
	var state *storage.SyncState
	err = replica.View(ctx, func(tx storage.Tx) error {
		state, err = tx.State()
		return err
	})
	if err != nil {
		_ = replica.Close()
		return fmt.Errorf("failed to read sync state: %w", err)
	}
	c.clock.Observe(models.MaxTimestamp(state.LastPull, state.LastPush))

	c.replica = replica
	c.device = config.NewHolder(device, func(d config.Device) error {
		return replica.SaveDevice(context.Background(), d)
	})

	engine := cascade.NewEngine(cascade.Default(), c.logger)
	c.api = httpClient.NewClient(c.cfg.ServerURL, c.cfg.RequestTimeout).
		WithTokenSource(func() string { return c.device.Get().AccessToken })
	c.data = data.NewService(replica, engine, c.clock, c.logger)
	c.data.OnChange(func() { c.changed = true })
	c.sync = clientsync.NewService(c.api, replica, engine, c.clock, c.device, c.logger)

	c.logger.Debug("client opened",
		slog.String("db", c.cfg.DBPath),
		slog.String("server", c.cfg.ServerURL),
		slog.String("client_id", device.ClientID))
	return nil
}

// loadDevice читает идентичность устройства; при первом запуске
// создает новый ClientID
func loadDevice(ctx context.Context, replica *boltdb.Storage) (config.Device, error) {
	device, err := replica.LoadDevice(ctx)
	if err == nil {
		return device, nil
	}
	if !errors.Is(err, storage.ErrDeviceNotFound) {
		return config.Device{}, fmt.Errorf("failed to load device: %w", err)
	}

	device = config.Device{ClientID: uuid.NewString()}
	if err := replica.SaveDevice(ctx, device); err != nil {
		return config.Device{}, fmt.Errorf("failed to save device: %w", err)
	}
	return device, nil
}

// Close закрывает реплику
func (c *Cli) Close() error {
	if c.replica == nil {
		return nil
	}
	err := c.replica.Close()
	c.replica = nil
	return err
}

// session возвращает устройство с действующей сессией
func (c *Cli) session() (config.Device, error) {
	device := c.device.Get()
	if !device.LoggedIn() {
		return device, errNotLoggedIn
	}
	return device, nil
}

// afterCommand запускает синхронизацию, если команда изменила данные и указан --sync
func (c *Cli) afterCommand(ctx context.Context) error {
	if !c.autoSync || !c.changed {
		return nil
	}
	c.changed = false
	c.io.Println()
	return c.runSync(ctx, false)
}
