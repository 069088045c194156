package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iudanet/wordkeeper/internal/models"
	"github.com/iudanet/wordkeeper/internal/server/storage"
)

// GetRecord возвращает запись по id
func (t *txStore) GetRecord(ctx context.Context, kind models.Kind, id string) (models.Record, error) {
	tbl, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT %s FROM %s r WHERE r.id = ?", tbl.selectColumns(), tbl.name)
	rec, err := tbl.scan(t.tx.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get %s: %w", kind, err)
	}
	return rec, nil
}

// OwnerOf возвращает user_id владельца записи
func (t *txStore) OwnerOf(ctx context.Context, kind models.Kind, id string) (string, error) {
	tbl, err := tableFor(kind)
	if err != nil {
		return "", err
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE r.id = ?", tbl.owner, tbl.from)
	var owner string
	if err := t.tx.QueryRowContext(ctx, query, id).Scan(&owner); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", storage.ErrRecordNotFound
		}
		return "", fmt.Errorf("failed to get owner of %s: %w", kind, err)
	}
	return owner, nil
}

// InsertRecord вставляет новую запись
func (t *txStore) InsertRecord(ctx context.Context, rec models.Record) error {
	tbl, err := tableFor(rec.Kind())
	if err != nil {
		return err
	}

	if _, err := t.tx.ExecContext(ctx, tbl.insertSQL(), tbl.values(rec)...); err != nil {
		if isConstraintViolation(err) {
			return &storage.ConstraintError{Kind: rec.Kind(), ID: rec.GetID(), Err: err}
		}
		return fmt.Errorf("failed to insert %s: %w", rec.Kind(), err)
	}
	return nil
}

// UpdateRecord перезаписывает все поля существующей записи
func (t *txStore) UpdateRecord(ctx context.Context, rec models.Record) error {
	tbl, err := tableFor(rec.Kind())
	if err != nil {
		return err
	}

	result, err := t.tx.ExecContext(ctx, tbl.updateSQL(), tbl.updateArgs(rec)...)
	if err != nil {
		if isConstraintViolation(err) {
			return &storage.ConstraintError{Kind: rec.Kind(), ID: rec.GetID(), Err: err}
		}
		return fmt.Errorf("failed to update %s: %w", rec.Kind(), err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return storage.ErrRecordNotFound
	}
	return nil
}

// ChangedSince записи пользователя, измененные после since, включая удаленные
func (t *txStore) ChangedSince(ctx context.Context, userID string, kind models.Kind, since models.Timestamp) ([]models.Record, error) {
	tbl, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(
		"SELECT %s FROM %s WHERE %s = ? AND r.modified_at > ? ORDER BY r.modified_at, r.id",
		tbl.selectColumns(), tbl.from, tbl.owner,
	)
	return t.queryRecords(ctx, tbl, query, userID, int64(since))
}

// Children записи вида kind, ссылающиеся на parentID
func (t *txStore) Children(ctx context.Context, kind, parentKind models.Kind, parentID string) ([]models.Record, error) {
	tbl, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	column, ok := tbl.parents[parentKind]
	if !ok {
		return nil, fmt.Errorf("%s has no reference to %s", kind, parentKind)
	}

	query := fmt.Sprintf("SELECT %s FROM %s r WHERE r.%s = ? ORDER BY r.id", tbl.selectColumns(), tbl.name, column)
	return t.queryRecords(ctx, tbl, query, parentID)
}

func (t *txStore) queryRecords(ctx context.Context, tbl *table, query string, args ...any) ([]models.Record, error) {
	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", tbl.name, err)
	}
	defer rows.Close()

	records := make([]models.Record, 0)
	for rows.Next() {
		rec, err := tbl.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", tbl.name, err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return records, nil
}
