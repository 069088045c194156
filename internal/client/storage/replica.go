package storage

import (
	"context"

	"github.com/iudanet/wordkeeper/internal/config"
	"github.com/iudanet/wordkeeper/internal/models"
)

// TxFunc функция, выполняемая внутри транзакции реплики
type TxFunc func(tx Tx) error

// Replica локальная реплика данных пользователя на устройстве.
// Все изменения внутри Update атомарны: ошибка fn откатывает их целиком.
type Replica interface {
	View(ctx context.Context, fn TxFunc) error
	Update(ctx context.Context, fn TxFunc) error
	DeviceStorage
	Close() error
}

// DeviceStorage хранит идентичность устройства и сессию
type DeviceStorage interface {
	// LoadDevice возвращает ErrDeviceNotFound, если устройство не сохранялось
	LoadDevice(ctx context.Context) (config.Device, error)
	SaveDevice(ctx context.Context, device config.Device) error
}

// Tx операции над репликой внутри транзакции
type Tx interface {
	// GetRecord возвращает ErrRecordNotFound, если записи нет
	GetRecord(kind models.Kind, id string) (models.Record, error)
	// PutRecord вставляет или перезаписывает запись целиком
	PutRecord(rec models.Record) error
	// Records все записи вида kind, включая удаленные
	Records(kind models.Kind) ([]models.Record, error)
	// Children записи вида kind, ссылающиеся на родителя parentKind/parentID
	Children(kind, parentKind models.Kind, parentID string) ([]models.Record, error)

	Reference() (*models.ReferenceSet, error)
	ReplaceReference(set *models.ReferenceSet) error

	// PutConflict добавляет запись журнала; ErrConflictExists, если id уже есть
	PutConflict(entry *models.ConflictLog) error
	GetConflict(id string) (*models.ConflictLog, error)
	Conflicts() ([]*models.ConflictLog, error)

	State() (*SyncState, error)
	SaveState(state *SyncState) error
}
