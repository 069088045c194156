package storage

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/iudanet/wordkeeper/internal/models"
)

// ReadReferenceSet разбирает YAML со справочными данными
func ReadReferenceSet(r io.Reader) (*models.ReferenceSet, error) {
	set := &models.ReferenceSet{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(set); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to decode reference data: %w", err)
	}

	for _, l := range set.Languages {
		if l.LanguageCode == "" {
			return nil, fmt.Errorf("language without code")
		}
	}
	for _, d := range set.Dictionaries {
		if d.WordID == 0 || d.SourceLanguage == "" {
			return nil, fmt.Errorf("dictionary word %q needs word_id and source_language", d.Word)
		}
	}
	for _, t := range set.Translations {
		if t.TranslationID == 0 || t.WordID == 0 {
			return nil, fmt.Errorf("translation %q needs translation_id and word_id", t.TranslationText)
		}
	}
	return set, nil
}

// LoadReferenceFile читает справочные данные из файла
func LoadReferenceFile(path string) (*models.ReferenceSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open reference data: %w", err)
	}
	defer f.Close()
	return ReadReferenceSet(f)
}
