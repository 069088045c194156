package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iudanet/wordkeeper/internal/models"
)

// ReferenceData возвращает все справочные данные, включая удаленные
func (t *txStore) ReferenceData(ctx context.Context) (*models.ReferenceSet, error) {
	set := &models.ReferenceSet{
		Languages:    make([]*models.Language, 0),
		Dictionaries: make([]*models.Dictionary, 0),
		Translations: make([]*models.Translation, 0),
	}

	err := queryEach(ctx, t.tx, `
		SELECT language_code, language_name, modified_at, delete_flag
		FROM languages ORDER BY language_code`,
		func(row scanner) error {
			l := &models.Language{}
			var modifiedAt, deleteFlag int64
			if err := row.Scan(&l.LanguageCode, &l.LanguageName, &modifiedAt, &deleteFlag); err != nil {
				return err
			}
			l.Meta = meta(modifiedAt, deleteFlag)
			set.Languages = append(set.Languages, l)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("failed to load languages: %w", err)
	}

	err = queryEach(ctx, t.tx, `
		SELECT word_id, word, source_language, pronounce, modified_at, delete_flag
		FROM dictionaries ORDER BY word_id`,
		func(row scanner) error {
			d := &models.Dictionary{}
			var modifiedAt, deleteFlag int64
			if err := row.Scan(&d.WordID, &d.Word, &d.SourceLanguage, &d.Pronounce, &modifiedAt, &deleteFlag); err != nil {
				return err
			}
			d.Meta = meta(modifiedAt, deleteFlag)
			set.Dictionaries = append(set.Dictionaries, d)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("failed to load dictionaries: %w", err)
	}

	err = queryEach(ctx, t.tx, `
		SELECT translation_id, word_id, target_language, translation_text, modified_at, delete_flag
		FROM translations ORDER BY translation_id`,
		func(row scanner) error {
			tr := &models.Translation{}
			var modifiedAt, deleteFlag int64
			if err := row.Scan(&tr.TranslationID, &tr.WordID, &tr.TargetLanguage, &tr.TranslationText, &modifiedAt, &deleteFlag); err != nil {
				return err
			}
			tr.Meta = meta(modifiedAt, deleteFlag)
			set.Translations = append(set.Translations, tr)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("failed to load translations: %w", err)
	}

	return set, nil
}

// ImportReference добавляет или обновляет справочные данные одной транзакцией
func (s *Storage) ImportReference(ctx context.Context, set *models.ReferenceSet) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, l := range set.Languages {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO languages (language_code, language_name, modified_at, delete_flag)
			VALUES (?, ?, ?, ?)
			ON CONFLICT (language_code) DO UPDATE SET
				language_name = excluded.language_name,
				modified_at = excluded.modified_at,
				delete_flag = excluded.delete_flag`,
			l.LanguageCode, l.LanguageName, int64(l.ModifiedAt), boolToInt(l.DeleteFlag))
		if err != nil {
			return fmt.Errorf("failed to import language %s: %w", l.LanguageCode, err)
		}
	}

	for _, d := range set.Dictionaries {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO dictionaries (word_id, word, source_language, pronounce, modified_at, delete_flag)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT (word_id) DO UPDATE SET
				word = excluded.word,
				source_language = excluded.source_language,
				pronounce = excluded.pronounce,
				modified_at = excluded.modified_at,
				delete_flag = excluded.delete_flag`,
			d.WordID, d.Word, d.SourceLanguage, d.Pronounce, int64(d.ModifiedAt), boolToInt(d.DeleteFlag))
		if err != nil {
			return fmt.Errorf("failed to import word %d: %w", d.WordID, err)
		}
	}

	for _, tr := range set.Translations {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO translations (translation_id, word_id, target_language, translation_text, modified_at, delete_flag)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT (translation_id) DO UPDATE SET
				word_id = excluded.word_id,
				target_language = excluded.target_language,
				translation_text = excluded.translation_text,
				modified_at = excluded.modified_at,
				delete_flag = excluded.delete_flag`,
			tr.TranslationID, tr.WordID, tr.TargetLanguage, tr.TranslationText, int64(tr.ModifiedAt), boolToInt(tr.DeleteFlag))
		if err != nil {
			return fmt.Errorf("failed to import translation %d: %w", tr.TranslationID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit reference import: %w", err)
	}
	return nil
}

func queryEach(ctx context.Context, tx *sql.Tx, query string, fn func(row scanner) error) error {
	rows, err := tx.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		if err := fn(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}
