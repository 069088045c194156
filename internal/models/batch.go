package models

// Batch набор пользовательских записей, сгруппированный по видам
type Batch struct {
	TagCategories []*TagCategory `json:"tag_categories"`
	Tags          []*Tag         `json:"tags"`
	Phrases       []*Phrase      `json:"phrases"`
	PhraseTags    []*PhraseTag   `json:"phrase_tags"`
	Bookmarks     []*Bookmark    `json:"bookmarks"`
	BookmarkTags  []*BookmarkTag `json:"bookmark_tags"`
}

// Add добавляет запись в соответствующий список
func (b *Batch) Add(r Record) {
	switch rec := r.(type) {
	case *TagCategory:
		b.TagCategories = append(b.TagCategories, rec)
	case *Tag:
		b.Tags = append(b.Tags, rec)
	case *Phrase:
		b.Phrases = append(b.Phrases, rec)
	case *PhraseTag:
		b.PhraseTags = append(b.PhraseTags, rec)
	case *Bookmark:
		b.Bookmarks = append(b.Bookmarks, rec)
	case *BookmarkTag:
		b.BookmarkTags = append(b.BookmarkTags, rec)
	}
}

// Records возвращает записи одного вида
func (b *Batch) Records(kind Kind) []Record {
	var out []Record
	switch kind {
	case KindTagCategory:
		for _, r := range b.TagCategories {
			out = append(out, r)
		}
	case KindTag:
		for _, r := range b.Tags {
			out = append(out, r)
		}
	case KindPhrase:
		for _, r := range b.Phrases {
			out = append(out, r)
		}
	case KindPhraseTag:
		for _, r := range b.PhraseTags {
			out = append(out, r)
		}
	case KindBookmark:
		for _, r := range b.Bookmarks {
			out = append(out, r)
		}
	case KindBookmarkTag:
		for _, r := range b.BookmarkTags {
			out = append(out, r)
		}
	}
	return out
}

// All возвращает все записи в порядке зависимостей видов
func (b *Batch) All() []Record {
	out := make([]Record, 0, b.Len())
	for _, kind := range UserKinds {
		out = append(out, b.Records(kind)...)
	}
	return out
}

// Len общее количество записей
func (b *Batch) Len() int {
	return len(b.TagCategories) + len(b.Tags) + len(b.Phrases) +
		len(b.PhraseTags) + len(b.Bookmarks) + len(b.BookmarkTags)
}
