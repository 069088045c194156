package models

import "fmt"

// Record общий интерфейс пользовательских записей.
// Запись никогда не удаляется физически: удаление это DeleteFlag=true
// вместе с новым ModifiedAt (tombstone), который так же уходит в синхронизацию.
type Record interface {
	Kind() Kind
	GetID() string
	Modified() Timestamp
	IsDeleted() bool
	Stamp(ts Timestamp)
	SetDeleted(deleted bool)
	// ParentID возвращает идентификатор родителя вида parent или пустую строку
	ParentID(parent Kind) string
	// OwnerID непосредственный владелец записи. Пусто, если запись
	// принадлежит пользователю через родителя (Tag, PhraseTag, BookmarkTag).
	OwnerID() string
	// Fields поля записи для читаемого снимка, без служебных
	Fields() []Field
	Clone() Record
}

// Field пара имя/значение для читаемого снимка записи
type Field struct {
	Value any
	Name  string
}

// Meta служебные поля синхронизации, общие для всех записей
type Meta struct {
	ModifiedAt Timestamp `json:"modified_at"` // ModifiedAt логическое время последней записи
	DeleteFlag bool      `json:"delete_flag"` // DeleteFlag tombstone
}

// Modified возвращает ModifiedAt
func (m *Meta) Modified() Timestamp { return m.ModifiedAt }

// IsDeleted возвращает DeleteFlag
func (m *Meta) IsDeleted() bool { return m.DeleteFlag }

// Stamp выставляет ModifiedAt
func (m *Meta) Stamp(ts Timestamp) { m.ModifiedAt = ts }

// SetDeleted выставляет DeleteFlag
func (m *Meta) SetDeleted(deleted bool) { m.DeleteFlag = deleted }

// TagCategory категория тегов пользователя
type TagCategory struct {
	ID           string `json:"id"`
	UserID       string `json:"user_id"`
	CategoryName string `json:"category_name"`
	Description  string `json:"description,omitempty"`
	Meta
}

func (c *TagCategory) Kind() Kind { return KindTagCategory }
func (c *TagCategory) GetID() string { return c.ID }
func (c *TagCategory) OwnerID() string { return c.UserID }
func (c *TagCategory) ParentID(parent Kind) string { return "" }

func (c *TagCategory) Fields() []Field {
	return []Field{
		{Name: "Category Name", Value: c.CategoryName},
		{Name: "Description", Value: c.Description},
	}
}

func (c *TagCategory) Clone() Record {
	clone := *c
	return &clone
}

// Tag тег; принадлежит пользователю через категорию
type Tag struct {
	ID            string `json:"id"`
	TagCategoryID string `json:"tag_category_id"`
	TagName       string `json:"tag_name"`
	Description   string `json:"description,omitempty"`
	Meta
}

func (t *Tag) Kind() Kind { return KindTag }
func (t *Tag) GetID() string { return t.ID }
func (t *Tag) OwnerID() string { return "" }

func (t *Tag) ParentID(parent Kind) string {
	if parent == KindTagCategory {
		return t.TagCategoryID
	}
	return ""
}

func (t *Tag) Fields() []Field {
	return []Field{
		{Name: "Tag Name", Value: t.TagName},
		{Name: "Tag Category Id", Value: t.TagCategoryID},
		{Name: "Description", Value: t.Description},
	}
}

func (t *Tag) Clone() Record {
	clone := *t
	return &clone
}

// Phrase фраза пользователя на одном из языков справочника
type Phrase struct {
	ID             string `json:"id"`
	UserID         string `json:"user_id"`
	PhraseText     string `json:"phrase_text"`
	PhraseLanguage string `json:"phrase_language"`
	Note           string `json:"note,omitempty"`
	Meta
}

func (p *Phrase) Kind() Kind { return KindPhrase }
func (p *Phrase) GetID() string { return p.ID }
func (p *Phrase) OwnerID() string { return p.UserID }
func (p *Phrase) ParentID(parent Kind) string { return "" }

func (p *Phrase) Fields() []Field {
	return []Field{
		{Name: "Phrase Text", Value: p.PhraseText},
		{Name: "Phrase Language", Value: p.PhraseLanguage},
		{Name: "Note", Value: p.Note},
	}
}

func (p *Phrase) Clone() Record {
	clone := *p
	return &clone
}

// PhraseTag связь фразы с тегом; принадлежит пользователю через фразу
type PhraseTag struct {
	ID       string `json:"id"`
	PhraseID string `json:"phrase_id"`
	TagID    string `json:"tag_id"`
	Meta
}

func (pt *PhraseTag) Kind() Kind { return KindPhraseTag }
func (pt *PhraseTag) GetID() string { return pt.ID }
func (pt *PhraseTag) OwnerID() string { return "" }

func (pt *PhraseTag) ParentID(parent Kind) string {
	switch parent {
	case KindPhrase:
		return pt.PhraseID
	case KindTag:
		return pt.TagID
	}
	return ""
}

func (pt *PhraseTag) Fields() []Field {
	return []Field{
		{Name: "Phrase Id", Value: pt.PhraseID},
		{Name: "Tag Id", Value: pt.TagID},
	}
}

func (pt *PhraseTag) Clone() Record {
	clone := *pt
	return &clone
}

// Bookmark закладка на слово из словаря
type Bookmark struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
	Note   string `json:"note,omitempty"`
	WordID int64  `json:"word_id"`
	Meta
}

func (b *Bookmark) Kind() Kind { return KindBookmark }
func (b *Bookmark) GetID() string { return b.ID }
func (b *Bookmark) OwnerID() string { return b.UserID }
func (b *Bookmark) ParentID(parent Kind) string { return "" }

func (b *Bookmark) Fields() []Field {
	return []Field{
		{Name: "Word Id", Value: b.WordID},
		{Name: "Note", Value: b.Note},
	}
}

func (b *Bookmark) Clone() Record {
	clone := *b
	return &clone
}

// BookmarkTag связь закладки с тегом; принадлежит пользователю через закладку
type BookmarkTag struct {
	ID         string `json:"id"`
	BookmarkID string `json:"bookmark_id"`
	TagID      string `json:"tag_id"`
	Meta
}

func (bt *BookmarkTag) Kind() Kind { return KindBookmarkTag }
func (bt *BookmarkTag) GetID() string { return bt.ID }
func (bt *BookmarkTag) OwnerID() string { return "" }

func (bt *BookmarkTag) ParentID(parent Kind) string {
	switch parent {
	case KindBookmark:
		return bt.BookmarkID
	case KindTag:
		return bt.TagID
	}
	return ""
}

func (bt *BookmarkTag) Fields() []Field {
	return []Field{
		{Name: "Bookmark Id", Value: bt.BookmarkID},
		{Name: "Tag Id", Value: bt.TagID},
	}
}

func (bt *BookmarkTag) Clone() Record {
	clone := *bt
	return &clone
}

// NewRecord создает пустую запись указанного вида
func NewRecord(kind Kind) (Record, error) {
	switch kind {
	case KindTagCategory:
		return &TagCategory{}, nil
	case KindTag:
		return &Tag{}, nil
	case KindPhrase:
		return &Phrase{}, nil
	case KindPhraseTag:
		return &PhraseTag{}, nil
	case KindBookmark:
		return &Bookmark{}, nil
	case KindBookmarkTag:
		return &BookmarkTag{}, nil
	}
	return nil, fmt.Errorf("kind %q is not a user record kind", kind)
}
