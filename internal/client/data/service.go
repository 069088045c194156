package data

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/iudanet/wordkeeper/internal/cascade"
	"github.com/iudanet/wordkeeper/internal/client/storage"
	"github.com/iudanet/wordkeeper/internal/crdt"
	"github.com/iudanet/wordkeeper/internal/models"
)

// Ошибки локальных изменений
var (
	ErrNotFound        = errors.New("record not found")
	ErrParentDeleted   = errors.New("referenced record is deleted")
	ErrInvalidInput    = errors.New("invalid input")
	ErrUnknownLanguage = errors.New("unknown language")
	ErrUnknownWord     = errors.New("unknown dictionary word")
)

// Service локальные изменения данных пользователя на устройстве.
// Каждое изменение выполняется в одной транзакции реплики: сначала каскад,
// затем всем затронутым записям выставляется один и тот же новый ModifiedAt.
type Service struct {
	replica  storage.Replica
	cascade  *cascade.Engine
	clock    crdt.Clock
	logger   *slog.Logger
	onChange func()
}

// NewService creates a new data service
func NewService(replica storage.Replica, engine *cascade.Engine, clock crdt.Clock, logger *slog.Logger) *Service {
	return &Service{
		replica: replica,
		cascade: engine,
		clock:   clock,
		logger:  logger,
	}
}

// OnChange задает функцию, вызываемую после каждого успешного изменения
func (s *Service) OnChange(fn func()) {
	s.onChange = fn
}

func (s *Service) changed() {
	if s.onChange != nil {
		s.onChange()
	}
}

// AddCategory создает категорию тегов
func (s *Service) AddCategory(ctx context.Context, userID, name, description string) (*models.TagCategory, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: category name is empty", ErrInvalidInput)
	}
	c := &models.TagCategory{
		ID:           uuid.NewString(),
		UserID:       userID,
		CategoryName: name,
		Description:  description,
	}
	if err := s.insert(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// AddTag создает тег в категории
func (s *Service) AddTag(ctx context.Context, categoryID, name, description string) (*models.Tag, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: tag name is empty", ErrInvalidInput)
	}
	t := &models.Tag{
		ID:            uuid.NewString(),
		TagCategoryID: categoryID,
		TagName:       name,
		Description:   description,
	}
	if err := s.insert(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// AddPhrase создает фразу
func (s *Service) AddPhrase(ctx context.Context, userID, text, language, note string) (*models.Phrase, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: phrase text is empty", ErrInvalidInput)
	}
	p := &models.Phrase{
		ID:             uuid.NewString(),
		UserID:         userID,
		PhraseText:     text,
		PhraseLanguage: language,
		Note:           note,
	}
	if err := s.insert(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// AddBookmark создает закладку на слово словаря
func (s *Service) AddBookmark(ctx context.Context, userID string, wordID int64, note string) (*models.Bookmark, error) {
	if wordID <= 0 {
		return nil, fmt.Errorf("%w: word id must be positive", ErrInvalidInput)
	}
	b := &models.Bookmark{
		ID:     uuid.NewString(),
		UserID: userID,
		WordID: wordID,
		Note:   note,
	}
	if err := s.insert(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// TagPhrase связывает фразу с тегом
func (s *Service) TagPhrase(ctx context.Context, phraseID, tagID string) (*models.PhraseTag, error) {
	pt := &models.PhraseTag{ID: uuid.NewString(), PhraseID: phraseID, TagID: tagID}
	if err := s.insert(ctx, pt); err != nil {
		return nil, err
	}
	return pt, nil
}

// TagBookmark связывает закладку с тегом
func (s *Service) TagBookmark(ctx context.Context, bookmarkID, tagID string) (*models.BookmarkTag, error) {
	bt := &models.BookmarkTag{ID: uuid.NewString(), BookmarkID: bookmarkID, TagID: tagID}
	if err := s.insert(ctx, bt); err != nil {
		return nil, err
	}
	return bt, nil
}

func (s *Service) insert(ctx context.Context, rec models.Record) error {
	err := s.replica.Update(ctx, func(tx storage.Tx) error {
		if err := checkParents(tx, rec); err != nil {
			return err
		}
		if err := checkReference(tx, rec); err != nil {
			return err
		}
		rec.Stamp(s.clock.Now())
		return tx.PutRecord(rec)
	})
	if err != nil {
		return fmt.Errorf("failed to add %s: %w", rec.Kind(), err)
	}

	s.logger.Debug("record added",
		slog.String("kind", rec.Kind().String()),
		slog.String("record_id", rec.GetID()),
		slog.String("modified_at", rec.Modified().String()))
	s.changed()
	return nil
}

// Edit изменяет поля записи через fn. Идентификатор, владелец и служебные
// поля восстанавливаются после fn; флаг удаления меняют только Delete и Restore.
func (s *Service) Edit(ctx context.Context, kind models.Kind, id string, fn func(rec models.Record) error) (models.Record, error) {
	var edited models.Record
	err := s.replica.Update(ctx, func(tx storage.Tx) error {
		current, err := getRecord(tx, kind, id)
		if err != nil {
			return err
		}

		rec := current.Clone()
		if err := fn(rec); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		if rec.GetID() != current.GetID() || rec.OwnerID() != current.OwnerID() {
			return fmt.Errorf("%w: id and owner cannot be changed", ErrInvalidInput)
		}
		for _, parent := range kind.Parents() {
			if rec.ParentID(parent) != current.ParentID(parent) {
				return fmt.Errorf("%w: %s cannot be changed", ErrInvalidInput, parent.DisplayName())
			}
		}
		if err := checkReference(tx, rec); err != nil {
			return err
		}

		rec.SetDeleted(current.IsDeleted())
		rec.Stamp(crdt.NextAfter(s.clock, current.Modified()))
		edited = rec
		return tx.PutRecord(rec)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to edit %s %s: %w", kind, id, err)
	}

	s.changed()
	return edited, nil
}

// Delete помечает запись удаленной вместе с зависимыми записями.
// Возвращает количество записей, у которых изменился флаг.
func (s *Service) Delete(ctx context.Context, kind models.Kind, id string) (int, error) {
	return s.setDeleted(ctx, kind, id, cascade.Delete)
}

// Restore восстанавливает запись и записи, удаленные вместе с ней
func (s *Service) Restore(ctx context.Context, kind models.Kind, id string) (int, error) {
	return s.setDeleted(ctx, kind, id, cascade.Restore)
}

func (s *Service) setDeleted(ctx context.Context, kind models.Kind, id string, dir cascade.Direction) (int, error) {
	var touched []models.Record
	err := s.replica.Update(ctx, func(tx storage.Tx) error {
		root, err := getRecord(tx, kind, id)
		if err != nil {
			return err
		}

		g := storage.NewGraph(tx)
		if _, err := s.cascade.Apply(ctx, g, cascade.NodeOf(root), dir); err != nil {
			return err
		}

		touched = g.Touched()
		if len(touched) == 0 {
			return nil
		}

		// Один тик на все изменение, не меньше любого затронутого ModifiedAt
		tick := crdt.NextAfter(s.clock, g.MaxModified())
		return g.Flush(func(models.Record) models.Timestamp { return tick })
	})
	if err != nil {
		return 0, fmt.Errorf("failed to %s %s %s: %w", dir, kind, id, err)
	}

	if len(touched) > 0 {
		s.logger.Debug("cascade applied",
			slog.String("direction", dir.String()),
			slog.String("kind", kind.String()),
			slog.String("record_id", id),
			slog.Int("flipped", len(touched)))
		s.changed()
	}
	return len(touched), nil
}

// Get возвращает запись по виду и id, включая удаленные
func (s *Service) Get(ctx context.Context, kind models.Kind, id string) (models.Record, error) {
	var rec models.Record
	err := s.replica.View(ctx, func(tx storage.Tx) error {
		var err error
		rec, err = getRecord(tx, kind, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// List возвращает записи вида kind, отсортированные по ModifiedAt
func (s *Service) List(ctx context.Context, kind models.Kind, includeDeleted bool) ([]models.Record, error) {
	var out []models.Record
	err := s.replica.View(ctx, func(tx storage.Tx) error {
		records, err := tx.Records(kind)
		if err != nil {
			return err
		}
		for _, rec := range records {
			if includeDeleted || !rec.IsDeleted() {
				out = append(out, rec)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", kind, err)
	}

	slices.SortStableFunc(out, func(a, b models.Record) int {
		switch {
		case a.Modified() < b.Modified():
			return -1
		case a.Modified() > b.Modified():
			return 1
		}
		return strings.Compare(a.GetID(), b.GetID())
	})
	return out, nil
}

// Reference справочные данные из последнего pull
func (s *Service) Reference(ctx context.Context) (*models.ReferenceSet, error) {
	var set *models.ReferenceSet
	err := s.replica.View(ctx, func(tx storage.Tx) error {
		var err error
		set, err = tx.Reference()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read reference data: %w", err)
	}
	return set, nil
}

// Conflicts журнал конфликтов, известный устройству
func (s *Service) Conflicts(ctx context.Context) ([]*models.ConflictLog, error) {
	var entries []*models.ConflictLog
	err := s.replica.View(ctx, func(tx storage.Tx) error {
		var err error
		entries, err = tx.Conflicts()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read conflict log: %w", err)
	}
	return entries, nil
}

func getRecord(tx storage.Tx, kind models.Kind, id string) (models.Record, error) {
	rec, err := tx.GetRecord(kind, id)
	if err != nil {
		if errors.Is(err, storage.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s %s", ErrNotFound, kind.DisplayName(), id)
		}
		return nil, err
	}
	return rec, nil
}

// checkParents родители новой записи должны существовать и не быть удалены
func checkParents(tx storage.Tx, rec models.Record) error {
	for _, kind := range rec.Kind().Parents() {
		parent, err := getRecord(tx, kind, rec.ParentID(kind))
		if err != nil {
			return err
		}
		if parent.IsDeleted() {
			return fmt.Errorf("%w: %s %s", ErrParentDeleted, kind.DisplayName(), parent.GetID())
		}
	}
	return nil
}

// checkReference проверяет язык фразы и слово закладки по справочнику.
// Пока справочник не получен (до первого pull), проверка пропускается.
func checkReference(tx storage.Tx, rec models.Record) error {
	ref, err := tx.Reference()
	if err != nil {
		return err
	}

	switch r := rec.(type) {
	case *models.Phrase:
		if len(ref.Languages) == 0 {
			return nil
		}
		for _, l := range ref.Languages {
			if l.LanguageCode == r.PhraseLanguage && !l.DeleteFlag {
				return nil
			}
		}
		return fmt.Errorf("%w: %q", ErrUnknownLanguage, r.PhraseLanguage)
	case *models.Bookmark:
		if len(ref.Dictionaries) == 0 {
			return nil
		}
		for _, d := range ref.Dictionaries {
			if d.WordID == r.WordID && !d.DeleteFlag {
				return nil
			}
		}
		return fmt.Errorf("%w: %d", ErrUnknownWord, r.WordID)
	}
	return nil
}
