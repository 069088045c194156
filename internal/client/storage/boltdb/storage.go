package boltdb

import (
	"context"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/iudanet/wordkeeper/internal/client/storage"
	"github.com/iudanet/wordkeeper/internal/models"
)

var (
	// BoltDB bucket names
	bucketReference = []byte("reference")
	bucketConflicts = []byte("conflicts")
	bucketMetadata  = []byte("metadata")
)

// lockTimeout ожидание блокировки файла реплики
const lockTimeout = 2 * time.Second

var _ storage.Replica = (*Storage)(nil)

// Storage represents BoltDB storage implementation for client
type Storage struct {
	db *bbolt.DB
}

// New creates a new BoltDB storage instance
// dbPath is the path to the BoltDB database file
func New(ctx context.Context, dbPath string) (*Storage, error) {
	// Открываем BoltDB; файл занят другим процессом -> ошибка через lockTimeout
	db, err := bbolt.Open(dbPath, 0600, &bbolt.Options{Timeout: lockTimeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open boltdb: %w", err)
	}

	s := &Storage{db: db}

	// Инициализируем buckets
	if err := s.initBuckets(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize buckets: %w", err)
	}

	return s, nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// bucketFor bucket записей вида kind
func bucketFor(kind models.Kind) []byte {
	return []byte(kind.String())
}

// initBuckets создает необходимые buckets если они не существуют
func (s *Storage) initBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		names := [][]byte{bucketReference, bucketConflicts, bucketMetadata}
		for _, kind := range models.UserKinds {
			names = append(names, bucketFor(kind))
		}
		for _, name := range names {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("failed to create %s bucket: %w", name, err)
			}
		}
		return nil
	})
}

// View выполняет fn в транзакции только для чтения
func (s *Storage) View(ctx context.Context, fn storage.TxFunc) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.View(func(tx *bbolt.Tx) error {
		return fn(&boltTx{tx: tx})
	})
}

// Update выполняет fn в транзакции на запись; ошибка fn откатывает изменения
func (s *Storage) Update(ctx context.Context, fn storage.TxFunc) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return fn(&boltTx{tx: tx})
	})
}

// boltTx реализует storage.Tx поверх *bbolt.Tx
type boltTx struct {
	tx *bbolt.Tx
}

var _ storage.Tx = (*boltTx)(nil)

func (t *boltTx) bucket(name []byte) (*bbolt.Bucket, error) {
	b := t.tx.Bucket(name)
	if b == nil {
		return nil, fmt.Errorf("%s bucket not found", name)
	}
	return b, nil
}
