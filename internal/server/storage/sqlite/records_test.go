package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/wordkeeper/internal/models"
	"github.com/iudanet/wordkeeper/internal/server/storage"
)

func inTx(t *testing.T, s *Storage, userID string, fn func(ctx context.Context, tx storage.Tx)) {
	t.Helper()
	err := s.InTx(context.Background(), userID, func(ctx context.Context, tx storage.Tx) error {
		fn(ctx, tx)
		return nil
	})
	require.NoError(t, err)
}

func seedGraph(t *testing.T, ctx context.Context, tx storage.Tx, userID string) {
	t.Helper()
	require.NoError(t, tx.InsertRecord(ctx, &models.TagCategory{ID: "c1", UserID: userID, CategoryName: "level", Meta: models.Meta{ModifiedAt: 2}}))
	require.NoError(t, tx.InsertRecord(ctx, &models.Tag{ID: "t1", TagCategoryID: "c1", TagName: "starter", Meta: models.Meta{ModifiedAt: 4}}))
	require.NoError(t, tx.InsertRecord(ctx, &models.Phrase{ID: "p1", UserID: userID, PhraseText: "hello", PhraseLanguage: "en", Meta: models.Meta{ModifiedAt: 5}}))
	require.NoError(t, tx.InsertRecord(ctx, &models.PhraseTag{ID: "pt1", PhraseID: "p1", TagID: "t1", Meta: models.Meta{ModifiedAt: 6}}))
}

func TestRecords_InsertGetUpdate(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()
	userID := createTestUser(t, ctx, s)

	inTx(t, s, userID, func(ctx context.Context, tx storage.Tx) {
		seedGraph(t, ctx, tx, userID)

		rec, err := tx.GetRecord(ctx, models.KindTag, "t1")
		require.NoError(t, err)
		tag := rec.(*models.Tag)
		assert.Equal(t, "starter", tag.TagName)
		assert.Equal(t, models.Timestamp(4), tag.ModifiedAt)
		assert.False(t, tag.DeleteFlag)

		tag.TagName = "intermediate"
		tag.ModifiedAt = 7
		tag.DeleteFlag = true
		require.NoError(t, tx.UpdateRecord(ctx, tag))

		rec, err = tx.GetRecord(ctx, models.KindTag, "t1")
		require.NoError(t, err)
		assert.Equal(t, "intermediate", rec.(*models.Tag).TagName)
		assert.True(t, rec.IsDeleted())

		_, err = tx.GetRecord(ctx, models.KindTag, "missing")
		assert.ErrorIs(t, err, storage.ErrRecordNotFound)

		err = tx.UpdateRecord(ctx, &models.Tag{ID: "missing", TagCategoryID: "c1"})
		assert.ErrorIs(t, err, storage.ErrRecordNotFound)
	})
}

func TestRecords_OwnerOf(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()
	userID := createTestUser(t, ctx, s)

	inTx(t, s, userID, func(ctx context.Context, tx storage.Tx) {
		seedGraph(t, ctx, tx, userID)

		for _, tc := range []struct {
			kind models.Kind
			id   string
		}{
			{models.KindTagCategory, "c1"},
			{models.KindTag, "t1"},
			{models.KindPhrase, "p1"},
			{models.KindPhraseTag, "pt1"},
		} {
			owner, err := tx.OwnerOf(ctx, tc.kind, tc.id)
			require.NoError(t, err, tc.id)
			assert.Equal(t, userID, owner, tc.id)
		}

		_, err := tx.OwnerOf(ctx, models.KindBookmark, "nope")
		assert.ErrorIs(t, err, storage.ErrRecordNotFound)
	})
}

func TestRecords_ChangedSince(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()
	userID := createTestUser(t, ctx, s)
	otherID := createTestUser(t, ctx, s)

	inTx(t, s, userID, func(ctx context.Context, tx storage.Tx) {
		seedGraph(t, ctx, tx, userID)
		require.NoError(t, tx.InsertRecord(ctx, &models.TagCategory{ID: "c2", UserID: otherID, CategoryName: "other", Meta: models.Meta{ModifiedAt: 9}}))
		require.NoError(t, tx.InsertRecord(ctx, &models.Tag{ID: "t2", TagCategoryID: "c2", TagName: "foreign", Meta: models.Meta{ModifiedAt: 9}}))
		require.NoError(t, tx.InsertRecord(ctx, &models.Tag{ID: "t3", TagCategoryID: "c1", TagName: "gone", Meta: models.Meta{ModifiedAt: 8, DeleteFlag: true}}))

		tags, err := tx.ChangedSince(ctx, userID, models.KindTag, 4)
		require.NoError(t, err)
		require.Len(t, tags, 1, "only tags of own categories modified after the watermark")
		assert.Equal(t, "t3", tags[0].GetID())
		assert.True(t, tags[0].IsDeleted(), "tombstones are selected")

		tags, err = tx.ChangedSince(ctx, userID, models.KindTag, models.Epoch)
		require.NoError(t, err)
		assert.Len(t, tags, 2)

		categories, err := tx.ChangedSince(ctx, otherID, models.KindTagCategory, models.Epoch)
		require.NoError(t, err)
		require.Len(t, categories, 1)
		assert.Equal(t, "c2", categories[0].GetID())
	})
}

func TestRecords_Children(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()
	userID := createTestUser(t, ctx, s)

	inTx(t, s, userID, func(ctx context.Context, tx storage.Tx) {
		seedGraph(t, ctx, tx, userID)

		children, err := tx.Children(ctx, models.KindPhraseTag, models.KindTag, "t1")
		require.NoError(t, err)
		require.Len(t, children, 1)
		assert.Equal(t, "pt1", children[0].GetID())

		children, err = tx.Children(ctx, models.KindTag, models.KindTagCategory, "c1")
		require.NoError(t, err)
		assert.Len(t, children, 1)

		_, err = tx.Children(ctx, models.KindTag, models.KindPhrase, "p1")
		assert.Error(t, err)
	})
}

func TestRecords_ConstraintViolation(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()
	userID := createTestUser(t, ctx, s)

	inTx(t, s, userID, func(ctx context.Context, tx storage.Tx) {
		// слова 999 нет в словаре
		err := tx.InsertRecord(ctx, &models.Bookmark{ID: "b1", UserID: userID, WordID: 999, Meta: models.Meta{ModifiedAt: 1}})
		require.Error(t, err)
		assert.ErrorIs(t, err, storage.ErrConstraint)

		var ce *storage.ConstraintError
		require.True(t, errors.As(err, &ce))
		assert.Equal(t, models.KindBookmark, ce.Kind)
		assert.Equal(t, "b1", ce.ID)
		assert.Contains(t, ce.Error(), "Bookmark:")

		// неизвестный язык фразы
		err = tx.InsertRecord(ctx, &models.Phrase{ID: "p9", UserID: userID, PhraseText: "x", PhraseLanguage: "xx", Meta: models.Meta{ModifiedAt: 1}})
		assert.ErrorIs(t, err, storage.ErrConstraint)
	})
}

func TestCursors(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()
	userID := createTestUser(t, ctx, s)

	inTx(t, s, userID, func(ctx context.Context, tx storage.Tx) {
		_, err := tx.GetCursor(ctx, userID, "device-a")
		assert.ErrorIs(t, err, storage.ErrCursorNotFound)

		cursor := &models.SyncCursor{UserID: userID, ClientID: "device-a"}
		require.NoError(t, tx.CreateCursor(ctx, cursor))
		assert.ErrorIs(t, tx.CreateCursor(ctx, cursor), storage.ErrCursorExists)

		cursor.LastPull = 40
		cursor.LastPush = 30
		require.NoError(t, tx.SaveCursor(ctx, cursor))

		got, err := tx.GetCursor(ctx, userID, "device-a")
		require.NoError(t, err)
		assert.Equal(t, models.Timestamp(40), got.LastPull)
		assert.Equal(t, models.Timestamp(30), got.LastPush)

		err = tx.SaveCursor(ctx, &models.SyncCursor{UserID: userID, ClientID: "device-b"})
		assert.ErrorIs(t, err, storage.ErrCursorNotFound)
	})
}

func TestConflicts(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()
	userID := createTestUser(t, ctx, s)

	inTx(t, s, userID, func(ctx context.Context, tx storage.Tx) {
		first := &models.ConflictLog{ID: "x1", UserID: userID, ClientID: "a", TargetID: "p1", Detail: "{}", ReportedAt: 10}
		second := &models.ConflictLog{ID: "x2", UserID: userID, ClientID: "b", TargetID: "p1", ReportedAt: 20}
		require.NoError(t, tx.InsertConflict(ctx, first))
		require.NoError(t, tx.InsertConflict(ctx, second))

		changed := *first
		changed.Detail = "changed"
		assert.ErrorIs(t, tx.InsertConflict(ctx, &changed), storage.ErrConflictExists)

		since, err := tx.ConflictsSince(ctx, userID, 20)
		require.NoError(t, err)
		require.Len(t, since, 1, "ReportedAt equal to the watermark is included")
		assert.Equal(t, "x2", since[0].ID)

		all, err := tx.ListConflicts(ctx, userID)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "{}", all[0].Detail, "entries are never overwritten")
	})
}

func TestImportReference(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()
	userID := createTestUser(t, ctx, s)

	set := &models.ReferenceSet{
		Languages:    []*models.Language{{LanguageCode: "it", LanguageName: "Italian"}},
		Dictionaries: []*models.Dictionary{{WordID: 1, Word: "cat", SourceLanguage: "en"}},
		Translations: []*models.Translation{{TranslationID: 1, WordID: 1, TargetLanguage: "ja", TranslationText: "neko"}},
	}
	require.NoError(t, s.ImportReference(ctx, set))

	set.Dictionaries[0].Pronounce = "kat"
	require.NoError(t, s.ImportReference(ctx, set))

	inTx(t, s, userID, func(ctx context.Context, tx storage.Tx) {
		ref, err := tx.ReferenceData(ctx)
		require.NoError(t, err)
		assert.Len(t, ref.Languages, 9)
		require.Len(t, ref.Dictionaries, 1)
		assert.Equal(t, "kat", ref.Dictionaries[0].Pronounce)
		require.Len(t, ref.Translations, 1)

		// закладка на существующее слово проходит ограничения
		require.NoError(t, tx.InsertRecord(ctx, &models.Bookmark{ID: "b1", UserID: userID, WordID: 1, Meta: models.Meta{ModifiedAt: 1}}))
	})
}
