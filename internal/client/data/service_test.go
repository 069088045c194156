package data

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/wordkeeper/internal/cascade"
	"github.com/iudanet/wordkeeper/internal/client/storage"
	"github.com/iudanet/wordkeeper/internal/client/storage/boltdb"
	"github.com/iudanet/wordkeeper/internal/crdt"
	"github.com/iudanet/wordkeeper/internal/models"
)

const testUser = "user-1"

func setupService(t *testing.T) (*Service, *boltdb.Storage, *crdt.ManualClock) {
	t.Helper()

	store, err := boltdb.New(context.Background(), filepath.Join(t.TempDir(), "replica.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
	clock := crdt.NewManualClock(100)
	return NewService(store, cascade.NewEngine(cascade.Default(), logger), clock, logger), store, clock
}

func TestAdd_StampsAndNotifies(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setupService(t)

	changes := 0
	svc.OnChange(func() { changes++ })

	c, err := svc.AddCategory(ctx, testUser, "grammar", "")
	require.NoError(t, err)
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, models.Timestamp(100), c.ModifiedAt)

	tag, err := svc.AddTag(ctx, c.ID, "verbs", "irregular")
	require.NoError(t, err)
	assert.Equal(t, models.Timestamp(101), tag.ModifiedAt)
	assert.Equal(t, 2, changes)

	got, err := svc.Get(ctx, models.KindTag, tag.ID)
	require.NoError(t, err)
	assert.Equal(t, tag, got)
}

func TestAdd_Validation(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setupService(t)

	_, err := svc.AddCategory(ctx, testUser, "  ", "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.AddTag(ctx, "missing", "verbs", "")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.AddBookmark(ctx, testUser, 0, "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	c, err := svc.AddCategory(ctx, testUser, "grammar", "")
	require.NoError(t, err)
	_, err = svc.Delete(ctx, models.KindTagCategory, c.ID)
	require.NoError(t, err)

	_, err = svc.AddTag(ctx, c.ID, "verbs", "")
	assert.ErrorIs(t, err, ErrParentDeleted)
}

func TestAdd_ReferenceChecks(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := setupService(t)

	// Справочник еще не получен: проверка пропускается
	_, err := svc.AddPhrase(ctx, testUser, "hello", "xx", "")
	require.NoError(t, err)

	require.NoError(t, store.Update(ctx, func(tx storage.Tx) error {
		return tx.ReplaceReference(&models.ReferenceSet{
			Languages:    []*models.Language{{LanguageCode: "en", LanguageName: "English"}},
			Dictionaries: []*models.Dictionary{{WordID: 7, Word: "hello", SourceLanguage: "en"}},
		})
	}))

	_, err = svc.AddPhrase(ctx, testUser, "hello", "xx", "")
	assert.ErrorIs(t, err, ErrUnknownLanguage)
	_, err = svc.AddPhrase(ctx, testUser, "hello", "en", "")
	assert.NoError(t, err)

	_, err = svc.AddBookmark(ctx, testUser, 8, "")
	assert.ErrorIs(t, err, ErrUnknownWord)
	_, err = svc.AddBookmark(ctx, testUser, 7, "")
	assert.NoError(t, err)
}

func TestEdit(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setupService(t)

	p, err := svc.AddPhrase(ctx, testUser, "hello", "en", "")
	require.NoError(t, err)

	edited, err := svc.Edit(ctx, models.KindPhrase, p.ID, func(rec models.Record) error {
		rec.(*models.Phrase).Note = "greeting"
		rec.SetDeleted(true)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "greeting", edited.(*models.Phrase).Note)
	assert.False(t, edited.IsDeleted())
	assert.Greater(t, edited.Modified(), p.ModifiedAt)

	_, err = svc.Edit(ctx, models.KindPhrase, p.ID, func(rec models.Record) error {
		rec.(*models.Phrase).UserID = "someone-else"
		return nil
	})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Edit(ctx, models.KindPhrase, "missing", func(models.Record) error { return nil })
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDelete_CascadeSharesOneTick(t *testing.T) {
	ctx := context.Background()
	svc, _, clock := setupService(t)

	c, err := svc.AddCategory(ctx, testUser, "grammar", "")
	require.NoError(t, err)
	t1, err := svc.AddTag(ctx, c.ID, "verbs", "")
	require.NoError(t, err)
	p, err := svc.AddPhrase(ctx, testUser, "to go", "en", "")
	require.NoError(t, err)
	pt, err := svc.TagPhrase(ctx, p.ID, t1.ID)
	require.NoError(t, err)
	b, err := svc.AddBookmark(ctx, testUser, 1, "")
	require.NoError(t, err)
	bt, err := svc.TagBookmark(ctx, b.ID, t1.ID)
	require.NoError(t, err)

	clock.Set(500)
	flipped, err := svc.Delete(ctx, models.KindTagCategory, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, flipped)

	for _, ref := range []struct {
		kind models.Kind
		id   string
	}{
		{models.KindTagCategory, c.ID},
		{models.KindTag, t1.ID},
		{models.KindPhraseTag, pt.ID},
		{models.KindBookmarkTag, bt.ID},
	} {
		rec, err := svc.Get(ctx, ref.kind, ref.id)
		require.NoError(t, err)
		assert.True(t, rec.IsDeleted(), ref.kind)
		assert.Equal(t, models.Timestamp(500), rec.Modified(), ref.kind)
	}

	// Фраза и закладка не удаляются
	phrase, err := svc.Get(ctx, models.KindPhrase, p.ID)
	require.NoError(t, err)
	assert.False(t, phrase.IsDeleted())

	// Повторное удаление ничего не меняет
	flipped, err = svc.Delete(ctx, models.KindTagCategory, c.ID)
	require.NoError(t, err)
	assert.Zero(t, flipped)
	cat, err := svc.Get(ctx, models.KindTagCategory, c.ID)
	require.NoError(t, err)
	assert.Equal(t, models.Timestamp(500), cat.Modified())
}

func TestRestore_OnlyRecordsDeletedTogether(t *testing.T) {
	ctx := context.Background()
	svc, _, clock := setupService(t)

	c, err := svc.AddCategory(ctx, testUser, "grammar", "")
	require.NoError(t, err)
	t1, err := svc.AddTag(ctx, c.ID, "verbs", "")
	require.NoError(t, err)
	t2, err := svc.AddTag(ctx, c.ID, "nouns", "")
	require.NoError(t, err)

	// t2 удален отдельно, раньше категории
	clock.Set(300)
	_, err = svc.Delete(ctx, models.KindTag, t2.ID)
	require.NoError(t, err)

	clock.Set(400)
	_, err = svc.Delete(ctx, models.KindTagCategory, c.ID)
	require.NoError(t, err)

	clock.Set(600)
	flipped, err := svc.Restore(ctx, models.KindTagCategory, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, flipped)

	tag1, err := svc.Get(ctx, models.KindTag, t1.ID)
	require.NoError(t, err)
	assert.False(t, tag1.IsDeleted())
	assert.Equal(t, models.Timestamp(600), tag1.Modified())

	tag2, err := svc.Get(ctx, models.KindTag, t2.ID)
	require.NoError(t, err)
	assert.True(t, tag2.IsDeleted())
	assert.Equal(t, models.Timestamp(300), tag2.Modified())
}

func TestRestore_TagDoesNotRestoreCategory(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setupService(t)

	c, err := svc.AddCategory(ctx, testUser, "grammar", "")
	require.NoError(t, err)
	tag, err := svc.AddTag(ctx, c.ID, "verbs", "")
	require.NoError(t, err)
	_, err = svc.Delete(ctx, models.KindTagCategory, c.ID)
	require.NoError(t, err)

	flipped, err := svc.Restore(ctx, models.KindTag, tag.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, flipped)

	cat, err := svc.Get(ctx, models.KindTagCategory, c.ID)
	require.NoError(t, err)
	assert.True(t, cat.IsDeleted())
}

func TestRestore_LinkRestoresTag(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setupService(t)

	c, err := svc.AddCategory(ctx, testUser, "grammar", "")
	require.NoError(t, err)
	tag, err := svc.AddTag(ctx, c.ID, "verbs", "")
	require.NoError(t, err)
	b, err := svc.AddBookmark(ctx, testUser, 1, "")
	require.NoError(t, err)
	bt, err := svc.TagBookmark(ctx, b.ID, tag.ID)
	require.NoError(t, err)

	_, err = svc.Delete(ctx, models.KindTag, tag.ID)
	require.NoError(t, err)

	flipped, err := svc.Restore(ctx, models.KindBookmarkTag, bt.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, flipped)

	restored, err := svc.Get(ctx, models.KindTag, tag.ID)
	require.NoError(t, err)
	assert.False(t, restored.IsDeleted())
}

func TestList(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setupService(t)

	p1, err := svc.AddPhrase(ctx, testUser, "one", "en", "")
	require.NoError(t, err)
	p2, err := svc.AddPhrase(ctx, testUser, "two", "en", "")
	require.NoError(t, err)
	_, err = svc.Delete(ctx, models.KindPhrase, p1.ID)
	require.NoError(t, err)

	active, err := svc.List(ctx, models.KindPhrase, false)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, p2.ID, active[0].GetID())

	all, err := svc.List(ctx, models.KindPhrase, true)
	require.NoError(t, err)
	require.Len(t, all, 2)
	// p1 удален позже, поэтому последний
	assert.Equal(t, p2.ID, all[0].GetID())
	assert.Equal(t, p1.ID, all[1].GetID())
}

func TestConflictsAndReference_Empty(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setupService(t)

	entries, err := svc.Conflicts(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)

	ref, err := svc.Reference(ctx)
	require.NoError(t, err)
	assert.Zero(t, ref.Len())
}
