package sqlite

import (
	"fmt"
	"strings"

	"github.com/iudanet/wordkeeper/internal/models"
)

type scanner interface {
	Scan(dest ...any) error
}

// table описывает хранение одного вида пользовательских записей.
// Первый столбец всегда id; записи, принадлежащие пользователю через
// родителя, соединяются с ним в from (алиас записи r, родителя p).
type table struct {
	scan    func(row scanner) (models.Record, error)
	values  func(rec models.Record) []any
	parents map[models.Kind]string
	name    string
	from    string
	owner   string
	columns []string
}

func (t *table) selectColumns() string {
	cols := make([]string, len(t.columns))
	for i, c := range t.columns {
		cols[i] = "r." + c
	}
	return strings.Join(cols, ", ")
}

func (t *table) insertSQL() string {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(t.columns)), ", ")
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", t.name, strings.Join(t.columns, ", "), placeholders)
}

func (t *table) updateSQL() string {
	sets := make([]string, 0, len(t.columns)-1)
	for _, c := range t.columns[1:] {
		sets = append(sets, c+" = ?")
	}
	return fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", t.name, strings.Join(sets, ", "))
}

// updateArgs значения без id, затем id для WHERE
func (t *table) updateArgs(rec models.Record) []any {
	values := t.values(rec)
	return append(values[1:], values[0])
}

var tables = map[models.Kind]*table{
	models.KindTagCategory: {
		name:    "tag_categories",
		from:    "tag_categories r",
		owner:   "r.user_id",
		columns: []string{"id", "user_id", "category_name", "description", "modified_at", "delete_flag"},
		scan: func(row scanner) (models.Record, error) {
			c := &models.TagCategory{}
			var modifiedAt, deleteFlag int64
			if err := row.Scan(&c.ID, &c.UserID, &c.CategoryName, &c.Description, &modifiedAt, &deleteFlag); err != nil {
				return nil, err
			}
			c.Meta = meta(modifiedAt, deleteFlag)
			return c, nil
		},
		values: func(rec models.Record) []any {
			c := rec.(*models.TagCategory)
			return []any{c.ID, c.UserID, c.CategoryName, c.Description, int64(c.ModifiedAt), boolToInt(c.DeleteFlag)}
		},
	},
	models.KindTag: {
		name:    "tags",
		from:    "tags r JOIN tag_categories p ON p.id = r.tag_category_id",
		owner:   "p.user_id",
		parents: map[models.Kind]string{models.KindTagCategory: "tag_category_id"},
		columns: []string{"id", "tag_category_id", "tag_name", "description", "modified_at", "delete_flag"},
		scan: func(row scanner) (models.Record, error) {
			t := &models.Tag{}
			var modifiedAt, deleteFlag int64
			if err := row.Scan(&t.ID, &t.TagCategoryID, &t.TagName, &t.Description, &modifiedAt, &deleteFlag); err != nil {
				return nil, err
			}
			t.Meta = meta(modifiedAt, deleteFlag)
			return t, nil
		},
		values: func(rec models.Record) []any {
			t := rec.(*models.Tag)
			return []any{t.ID, t.TagCategoryID, t.TagName, t.Description, int64(t.ModifiedAt), boolToInt(t.DeleteFlag)}
		},
	},
	models.KindPhrase: {
		name:    "phrases",
		from:    "phrases r",
		owner:   "r.user_id",
		columns: []string{"id", "user_id", "phrase_text", "phrase_language", "note", "modified_at", "delete_flag"},
		scan: func(row scanner) (models.Record, error) {
			p := &models.Phrase{}
			var modifiedAt, deleteFlag int64
			if err := row.Scan(&p.ID, &p.UserID, &p.PhraseText, &p.PhraseLanguage, &p.Note, &modifiedAt, &deleteFlag); err != nil {
				return nil, err
			}
			p.Meta = meta(modifiedAt, deleteFlag)
			return p, nil
		},
		values: func(rec models.Record) []any {
			p := rec.(*models.Phrase)
			return []any{p.ID, p.UserID, p.PhraseText, p.PhraseLanguage, p.Note, int64(p.ModifiedAt), boolToInt(p.DeleteFlag)}
		},
	},
	models.KindPhraseTag: {
		name:  "phrase_tags",
		from:  "phrase_tags r JOIN phrases p ON p.id = r.phrase_id",
		owner: "p.user_id",
		parents: map[models.Kind]string{
			models.KindPhrase: "phrase_id",
			models.KindTag:    "tag_id",
		},
		columns: []string{"id", "phrase_id", "tag_id", "modified_at", "delete_flag"},
		scan: func(row scanner) (models.Record, error) {
			pt := &models.PhraseTag{}
			var modifiedAt, deleteFlag int64
			if err := row.Scan(&pt.ID, &pt.PhraseID, &pt.TagID, &modifiedAt, &deleteFlag); err != nil {
				return nil, err
			}
			pt.Meta = meta(modifiedAt, deleteFlag)
			return pt, nil
		},
		values: func(rec models.Record) []any {
			pt := rec.(*models.PhraseTag)
			return []any{pt.ID, pt.PhraseID, pt.TagID, int64(pt.ModifiedAt), boolToInt(pt.DeleteFlag)}
		},
	},
	models.KindBookmark: {
		name:    "bookmarks",
		from:    "bookmarks r",
		owner:   "r.user_id",
		columns: []string{"id", "user_id", "word_id", "note", "modified_at", "delete_flag"},
		scan: func(row scanner) (models.Record, error) {
			b := &models.Bookmark{}
			var modifiedAt, deleteFlag int64
			if err := row.Scan(&b.ID, &b.UserID, &b.WordID, &b.Note, &modifiedAt, &deleteFlag); err != nil {
				return nil, err
			}
			b.Meta = meta(modifiedAt, deleteFlag)
			return b, nil
		},
		values: func(rec models.Record) []any {
			b := rec.(*models.Bookmark)
			return []any{b.ID, b.UserID, b.WordID, b.Note, int64(b.ModifiedAt), boolToInt(b.DeleteFlag)}
		},
	},
	models.KindBookmarkTag: {
		name:  "bookmark_tags",
		from:  "bookmark_tags r JOIN bookmarks p ON p.id = r.bookmark_id",
		owner: "p.user_id",
		parents: map[models.Kind]string{
			models.KindBookmark: "bookmark_id",
			models.KindTag:      "tag_id",
		},
		columns: []string{"id", "bookmark_id", "tag_id", "modified_at", "delete_flag"},
		scan: func(row scanner) (models.Record, error) {
			bt := &models.BookmarkTag{}
			var modifiedAt, deleteFlag int64
			if err := row.Scan(&bt.ID, &bt.BookmarkID, &bt.TagID, &modifiedAt, &deleteFlag); err != nil {
				return nil, err
			}
			bt.Meta = meta(modifiedAt, deleteFlag)
			return bt, nil
		},
		values: func(rec models.Record) []any {
			bt := rec.(*models.BookmarkTag)
			return []any{bt.ID, bt.BookmarkID, bt.TagID, int64(bt.ModifiedAt), boolToInt(bt.DeleteFlag)}
		},
	},
}

func tableFor(kind models.Kind) (*table, error) {
	t, ok := tables[kind]
	if !ok {
		return nil, fmt.Errorf("no table for kind %q", kind)
	}
	return t, nil
}

func meta(modifiedAt, deleteFlag int64) models.Meta {
	return models.Meta{ModifiedAt: models.Timestamp(modifiedAt), DeleteFlag: deleteFlag != 0}
}
