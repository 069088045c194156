package models

import (
	"fmt"
	"strings"
)

// Kind вид записи, участвующей в синхронизации
type Kind string

const (
	KindTagCategory Kind = "tag_category"
	KindTag         Kind = "tag"
	KindPhrase      Kind = "phrase"
	KindPhraseTag   Kind = "phrase_tag"
	KindBookmark    Kind = "bookmark"
	KindBookmarkTag Kind = "bookmark_tag"

	KindLanguage    Kind = "language"
	KindDictionary  Kind = "dictionary"
	KindTranslation Kind = "translation"
)

// UserKinds пользовательские виды записей в порядке зависимостей:
// родитель всегда обрабатывается раньше потомка.
var UserKinds = []Kind{
	KindTagCategory,
	KindTag,
	KindPhrase,
	KindPhraseTag,
	KindBookmark,
	KindBookmarkTag,
}

// ReferenceKinds справочные данные, доступные только для чтения
var ReferenceKinds = []Kind{KindLanguage, KindDictionary, KindTranslation}

var kindNames = map[Kind]string{
	KindTagCategory: "TagCategory",
	KindTag:         "Tag",
	KindPhrase:      "Phrase",
	KindPhraseTag:   "PhraseTag",
	KindBookmark:    "Bookmark",
	KindBookmarkTag: "BookmarkTag",
	KindLanguage:    "Language",
	KindDictionary:  "Dictionary",
	KindTranslation: "Translation",
}

var kindParents = map[Kind][]Kind{
	KindTag:         {KindTagCategory},
	KindPhraseTag:   {KindPhrase, KindTag},
	KindBookmarkTag: {KindBookmark, KindTag},
}

var kindAliases = map[string]Kind{
	"category":       KindTagCategory,
	"categories":     KindTagCategory,
	"tag-category":   KindTagCategory,
	"tags":           KindTag,
	"phrases":        KindPhrase,
	"phrase-tag":     KindPhraseTag,
	"phrase-tags":    KindPhraseTag,
	"bookmarks":      KindBookmark,
	"bookmark-tag":   KindBookmarkTag,
	"bookmark-tags":  KindBookmarkTag,
	"languages":      KindLanguage,
	"dictionaries":   KindDictionary,
	"translations":   KindTranslation,
	"tag_categories": KindTagCategory,
}

func (k Kind) String() string {
	return string(k)
}

// DisplayName имя вида для сообщений об ошибках, например "TagCategory"
func (k Kind) DisplayName() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return string(k)
}

// Valid сообщает, известен ли вид
func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

// IsReference true для справочных данных
func (k Kind) IsReference() bool {
	return k == KindLanguage || k == KindDictionary || k == KindTranslation
}

// Parents возвращает виды записей, на которые ссылается запись вида k
func (k Kind) Parents() []Kind {
	return kindParents[k]
}

// ParseKind разбирает имя вида, включая множественные формы и формы через дефис
func ParseKind(s string) (Kind, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	if k := Kind(normalized); k.Valid() {
		return k, nil
	}
	if k, ok := kindAliases[normalized]; ok {
		return k, nil
	}
	return "", fmt.Errorf("unknown record kind %q", s)
}
