package storage

import (
	"context"

	"github.com/iudanet/wordkeeper/internal/models"
)

// TxFunc тело транзакции
type TxFunc func(ctx context.Context, tx Tx) error

// Storage хранилище сервера
type Storage interface {
	UserStorage

	// InTx выполняет fn в одной транзакции. Транзакции одного пользователя
	// выполняются строго последовательно. Если fn возвращает ошибку,
	// все изменения откатываются.
	InTx(ctx context.Context, userID string, fn TxFunc) error

	// ImportReference добавляет или обновляет справочные данные
	ImportReference(ctx context.Context, set *models.ReferenceSet) error

	// Ping проверяет доступность базы
	Ping(ctx context.Context) error
}

// Tx операции, доступные внутри транзакции
type Tx interface {
	CursorStorage
	RecordStorage
	ConflictStorage
}

// CursorStorage курсоры синхронизации устройств
type CursorStorage interface {
	// GetCursor returns ErrCursorNotFound if the client was never registered
	GetCursor(ctx context.Context, userID, clientID string) (*models.SyncCursor, error)

	// CreateCursor returns ErrCursorExists if the pair is already registered
	CreateCursor(ctx context.Context, cursor *models.SyncCursor) error

	// SaveCursor updates both watermarks of an existing cursor
	SaveCursor(ctx context.Context, cursor *models.SyncCursor) error
}

// RecordStorage пользовательские и справочные записи
type RecordStorage interface {
	// GetRecord returns ErrRecordNotFound if the id is unseen
	GetRecord(ctx context.Context, kind models.Kind, id string) (models.Record, error)

	// OwnerOf возвращает владельца записи, в том числе через родителя
	OwnerOf(ctx context.Context, kind models.Kind, id string) (string, error)

	// InsertRecord / UpdateRecord return *ConstraintError on constraint violation
	InsertRecord(ctx context.Context, rec models.Record) error
	UpdateRecord(ctx context.Context, rec models.Record) error

	// ChangedSince все записи пользователя вида kind с ModifiedAt > since, включая удаленные
	ChangedSince(ctx context.Context, userID string, kind models.Kind, since models.Timestamp) ([]models.Record, error)

	// Children записи вида kind, ссылающиеся на parentID через связь с видом parentKind
	Children(ctx context.Context, kind, parentKind models.Kind, parentID string) ([]models.Record, error)

	// ReferenceData все справочные данные
	ReferenceData(ctx context.Context) (*models.ReferenceSet, error)
}

// ConflictStorage журнал конфликтов, только вставка
type ConflictStorage interface {
	// InsertConflict returns ErrConflictExists if the id is already stored
	InsertConflict(ctx context.Context, entry *models.ConflictLog) error

	// ConflictsSince записи пользователя с ReportedAt >= since
	ConflictsSince(ctx context.Context, userID string, since models.Timestamp) ([]*models.ConflictLog, error)

	// ListConflicts все записи пользователя
	ListConflicts(ctx context.Context, userID string) ([]*models.ConflictLog, error)
}
