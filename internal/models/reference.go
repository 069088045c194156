package models

// Language язык справочника. Справочные данные общие для всех
// пользователей и устройства получают их только через pull.
type Language struct {
	LanguageCode string `json:"language_code" yaml:"code"`
	LanguageName string `json:"language_name" yaml:"name"`
	Meta         `yaml:",inline"`
}

// Dictionary слово словаря
type Dictionary struct {
	Word           string `json:"word" yaml:"word"`
	SourceLanguage string `json:"source_language" yaml:"source_language"`
	Pronounce      string `json:"pronounce,omitempty" yaml:"pronounce"`
	WordID         int64  `json:"word_id" yaml:"word_id"`
	Meta           `yaml:",inline"`
}

// Translation перевод слова словаря на целевой язык
type Translation struct {
	TargetLanguage  string `json:"target_language" yaml:"target_language"`
	TranslationText string `json:"translation_text" yaml:"translation_text"`
	TranslationID   int64  `json:"translation_id" yaml:"translation_id"`
	WordID          int64  `json:"word_id" yaml:"word_id"`
	Meta            `yaml:",inline"`
}

// ReferenceSet полный набор справочных данных
type ReferenceSet struct {
	Languages    []*Language    `json:"languages" yaml:"languages"`
	Dictionaries []*Dictionary  `json:"dictionaries" yaml:"dictionaries"`
	Translations []*Translation `json:"translations" yaml:"translations"`
}

// Len общее количество справочных записей
func (s *ReferenceSet) Len() int {
	return len(s.Languages) + len(s.Dictionaries) + len(s.Translations)
}
