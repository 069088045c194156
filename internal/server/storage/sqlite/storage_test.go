package sqlite

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/wordkeeper/internal/models"
	"github.com/iudanet/wordkeeper/internal/server/storage"
)

func setupTestStorage(t *testing.T) (*Storage, func()) {
	ctx := context.Background()

	// Используем in-memory database для тестов
	s, err := New(ctx, ":memory:")
	require.NoError(t, err)

	cleanup := func() {
		_ = s.Close()
	}

	return s, cleanup
}

func createTestUser(t *testing.T, ctx context.Context, s *Storage) string {
	userID := uuid.New().String()
	user := &models.User{
		ID:           userID,
		Username:     "testuser_" + userID[:8],
		PasswordHash: "hash",
		CreatedAt:    time.Now(),
	}

	require.NoError(t, s.CreateUser(ctx, user))
	return userID
}

func TestStorage_Migrations(t *testing.T) {
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	var count int
	err := s.DB().QueryRow("SELECT COUNT(*) FROM languages").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 8, count, "seed languages must be present")
	assert.NoError(t, s.Ping(context.Background()))
}

func TestStorage_InTx_RollbackOnError(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()
	userID := createTestUser(t, ctx, s)

	boom := errors.New("boom")
	err := s.InTx(ctx, userID, func(ctx context.Context, tx storage.Tx) error {
		require.NoError(t, tx.InsertRecord(ctx, &models.TagCategory{ID: "c1", UserID: userID, CategoryName: "level", Meta: models.Meta{ModifiedAt: 1}}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	err = s.InTx(ctx, userID, func(ctx context.Context, tx storage.Tx) error {
		_, err := tx.GetRecord(ctx, models.KindTagCategory, "c1")
		return err
	})
	assert.ErrorIs(t, err, storage.ErrRecordNotFound)
}

func TestStorage_InTx_RollbackOnPanic(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()
	userID := createTestUser(t, ctx, s)

	assert.Panics(t, func() {
		_ = s.InTx(ctx, userID, func(ctx context.Context, tx storage.Tx) error {
			_ = tx.InsertRecord(ctx, &models.TagCategory{ID: "c1", UserID: userID, CategoryName: "level"})
			panic("unexpected")
		})
	})

	// блокировка пользователя снята, запись откатилась
	err := s.InTx(ctx, userID, func(ctx context.Context, tx storage.Tx) error {
		_, err := tx.GetRecord(ctx, models.KindTagCategory, "c1")
		return err
	})
	assert.ErrorIs(t, err, storage.ErrRecordNotFound)
}

func TestUserStorage(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	user := &models.User{
		ID:           uuid.New().String(),
		Username:     "alice",
		PasswordHash: "hash",
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, s.CreateUser(ctx, user))

	err := s.CreateUser(ctx, &models.User{ID: uuid.New().String(), Username: "alice", PasswordHash: "x", CreatedAt: time.Now()})
	assert.ErrorIs(t, err, storage.ErrUserAlreadyExists)

	byName, err := s.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byName.ID)
	assert.Equal(t, "hash", byName.PasswordHash)

	byID, err := s.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)

	_, err = s.GetUserByUsername(ctx, "bob")
	assert.ErrorIs(t, err, storage.ErrUserNotFound)
}

func TestStorage_MigrationOutputGoesToLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	s, err := New(context.Background(), ":memory:", WithLogger(logger))
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	out := buf.String()
	assert.Contains(t, out, "00001_init.sql")
	assert.Contains(t, out, "component=migrations")
	assert.Contains(t, out, "level=DEBUG")
}
