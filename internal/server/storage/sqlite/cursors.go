package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iudanet/wordkeeper/internal/models"
	"github.com/iudanet/wordkeeper/internal/server/storage"
)

// GetCursor возвращает курсоры устройства
func (t *txStore) GetCursor(ctx context.Context, userID, clientID string) (*models.SyncCursor, error) {
	query := `
		SELECT user_id, client_id, last_pull, last_push
		FROM sync_cursors
		WHERE user_id = ? AND client_id = ?
	`

	cursor := &models.SyncCursor{}
	var lastPull, lastPush int64
	err := t.tx.QueryRowContext(ctx, query, userID, clientID).Scan(
		&cursor.UserID,
		&cursor.ClientID,
		&lastPull,
		&lastPush,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrCursorNotFound
		}
		return nil, fmt.Errorf("failed to get sync cursor: %w", err)
	}

	cursor.LastPull = models.Timestamp(lastPull)
	cursor.LastPush = models.Timestamp(lastPush)
	return cursor, nil
}

// CreateCursor регистрирует устройство
func (t *txStore) CreateCursor(ctx context.Context, cursor *models.SyncCursor) error {
	query := `
		INSERT INTO sync_cursors (user_id, client_id, last_pull, last_push)
		VALUES (?, ?, ?, ?)
	`

	_, err := t.tx.ExecContext(ctx, query,
		cursor.UserID,
		cursor.ClientID,
		int64(cursor.LastPull),
		int64(cursor.LastPush),
	)
	if err != nil {
		if isConstraintViolation(err) {
			return storage.ErrCursorExists
		}
		return fmt.Errorf("failed to insert sync cursor: %w", err)
	}
	return nil
}

// SaveCursor обновляет оба курсора
func (t *txStore) SaveCursor(ctx context.Context, cursor *models.SyncCursor) error {
	query := `
		UPDATE sync_cursors
		SET last_pull = ?, last_push = ?
		WHERE user_id = ? AND client_id = ?
	`

	result, err := t.tx.ExecContext(ctx, query,
		int64(cursor.LastPull),
		int64(cursor.LastPush),
		cursor.UserID,
		cursor.ClientID,
	)
	if err != nil {
		return fmt.Errorf("failed to update sync cursor: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return storage.ErrCursorNotFound
	}
	return nil
}
