package api

import "github.com/iudanet/wordkeeper/internal/models"

// PullRequest запрос изменений с сервера
type PullRequest struct {
	LastPull models.Timestamp `json:"last_pull"` // курсор устройства
}

// PullResponse справочные данные целиком и записи пользователя,
// измененные после курсора, включая удаленные
type PullResponse struct {
	Languages     []*models.Language    `json:"languages"`
	Dictionaries  []*models.Dictionary  `json:"dictionaries"`
	Translations  []*models.Translation `json:"translations"`
	TagCategories []*models.TagCategory `json:"tag_categories"`
	Tags          []*models.Tag         `json:"tags"`
	Phrases       []*models.Phrase      `json:"phrases"`
	PhraseTags    []*models.PhraseTag   `json:"phrase_tags"`
	Bookmarks     []*models.Bookmark    `json:"bookmarks"`
	BookmarkTags  []*models.BookmarkTag `json:"bookmark_tags"`
	ServerTime    models.Timestamp      `json:"server_time"` // новый курсор LastPull
}

// Batch записи пользователя из ответа
func (r *PullResponse) Batch() *models.Batch {
	return &models.Batch{
		TagCategories: r.TagCategories,
		Tags:          r.Tags,
		Phrases:       r.Phrases,
		PhraseTags:    r.PhraseTags,
		Bookmarks:     r.Bookmarks,
		BookmarkTags:  r.BookmarkTags,
	}
}

// Reference справочные данные из ответа
func (r *PullResponse) Reference() *models.ReferenceSet {
	return &models.ReferenceSet{
		Languages:    r.Languages,
		Dictionaries: r.Dictionaries,
		Translations: r.Translations,
	}
}

// PushRequest пакет изменений устройства
type PushRequest struct {
	models.Batch
	OverwriteIDs []string `json:"overwrite_ids"` // id, которые устройство сознательно перезаписывает
}

// PushResponse итог применения пакета
type PushResponse struct {
	Failures  map[string]string `json:"failures"`   // id -> причина отказа
	Stale     []string          `json:"stale"`      // устаревшие версии, сервер авторитетен
	Applied   int               `json:"applied"`    // вставлено или перезаписано
	PushStart models.Timestamp  `json:"push_start"` // новый курсор LastPush
}

// ConflictsPullRequest запрос журнала конфликтов
type ConflictsPullRequest struct {
	LastPush models.Timestamp `json:"last_push"`
}

// ConflictsPullResponse записи журнала конфликтов
type ConflictsPullResponse struct {
	Entries []*models.ConflictLog `json:"entries"`
}

// ConflictsPushRequest записи журнала, созданные на устройстве
type ConflictsPushRequest struct {
	Entries []*models.ConflictLog `json:"entries"`
}

// ConflictsPushResponse отказы по id записи журнала
type ConflictsPushResponse struct {
	Failures map[string]string `json:"failures"`
}

// ServerTimeResponse текущее логическое время сервера
type ServerTimeResponse struct {
	ServerTime models.Timestamp `json:"server_time"`
}

// SyncStatusResponse курсоры устройства на сервере
type SyncStatusResponse struct {
	ClientID string           `json:"client_id"`
	LastPull models.Timestamp `json:"last_pull"`
	LastPush models.Timestamp `json:"last_push"`
}
