package sqlite

import (
	"context"
	"fmt"

	"github.com/iudanet/wordkeeper/internal/models"
	"github.com/iudanet/wordkeeper/internal/server/storage"
)

// InsertConflict добавляет запись журнала конфликтов
func (t *txStore) InsertConflict(ctx context.Context, entry *models.ConflictLog) error {
	query := `
		INSERT INTO conflict_logs (id, user_id, client_id, target_id, detail, reported_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING
	`

	result, err := t.tx.ExecContext(ctx, query,
		entry.ID,
		entry.UserID,
		entry.ClientID,
		entry.TargetID,
		entry.Detail,
		int64(entry.ReportedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert conflict log: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return storage.ErrConflictExists
	}
	return nil
}

// ConflictsSince записи с reported_at >= since
func (t *txStore) ConflictsSince(ctx context.Context, userID string, since models.Timestamp) ([]*models.ConflictLog, error) {
	query := `
		SELECT id, user_id, client_id, target_id, detail, reported_at
		FROM conflict_logs
		WHERE user_id = ? AND reported_at >= ?
		ORDER BY reported_at, id
	`
	return t.queryConflicts(ctx, query, userID, int64(since))
}

// ListConflicts все записи пользователя
func (t *txStore) ListConflicts(ctx context.Context, userID string) ([]*models.ConflictLog, error) {
	query := `
		SELECT id, user_id, client_id, target_id, detail, reported_at
		FROM conflict_logs
		WHERE user_id = ?
		ORDER BY reported_at, id
	`
	return t.queryConflicts(ctx, query, userID)
}

func (t *txStore) queryConflicts(ctx context.Context, query string, args ...any) ([]*models.ConflictLog, error) {
	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query conflict logs: %w", err)
	}
	defer rows.Close()

	entries := make([]*models.ConflictLog, 0)
	for rows.Next() {
		entry := &models.ConflictLog{}
		var reportedAt int64
		if err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.ClientID,
			&entry.TargetID,
			&entry.Detail,
			&reportedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan conflict log: %w", err)
		}
		entry.ReportedAt = models.Timestamp(reportedAt)
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return entries, nil
}
