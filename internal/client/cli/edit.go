package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/iudanet/wordkeeper/internal/models"
)

type editFlags struct {
	name, desc, text, lang, note string
}

func newEditCommand(c *Cli) *cobra.Command {
	var f editFlags
	cmd := &cobra.Command{
		Use:   "edit <kind> <id>",
		Short: "Change fields of a record",
		Long: `Change fields of a record. Only the given flags are applied.

  categories, tags: --name, --desc
  phrases:          --text, --lang, --note
  bookmarks:        --note`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := c.session(); err != nil {
				return err
			}
			kind, err := parseUserKind(args[0])
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if !flags.Changed("name") && !flags.Changed("desc") && !flags.Changed("text") &&
				!flags.Changed("lang") && !flags.Changed("note") {
				return fmt.Errorf("nothing to change: pass at least one field flag")
			}

			rec, err := c.data.Edit(cmd.Context(), kind, args[1], func(rec models.Record) error {
				return applyEdit(rec, flags, f)
			})
			if err != nil {
				return err
			}
			c.io.Printf("✓ %s updated: %s\n", kind.DisplayName(), rec.GetID())
			return nil
		},
	}
	cmd.Flags().StringVar(&f.name, "name", "", "category or tag name")
	cmd.Flags().StringVar(&f.desc, "desc", "", "category or tag description")
	cmd.Flags().StringVar(&f.text, "text", "", "phrase text")
	cmd.Flags().StringVar(&f.lang, "lang", "", "phrase language code")
	cmd.Flags().StringVar(&f.note, "note", "", "phrase or bookmark note")
	return cmd
}

// applyEdit переносит заданные флаги в запись; флаг, не относящийся
// к виду записи, это ошибка
func applyEdit(rec models.Record, flags *pflag.FlagSet, f editFlags) error {
	allowed := map[string]*string{}
	switch r := rec.(type) {
	case *models.TagCategory:
		allowed["name"], allowed["desc"] = &r.CategoryName, &r.Description
	case *models.Tag:
		allowed["name"], allowed["desc"] = &r.TagName, &r.Description
	case *models.Phrase:
		allowed["text"], allowed["lang"], allowed["note"] = &r.PhraseText, &r.PhraseLanguage, &r.Note
	case *models.Bookmark:
		allowed["note"] = &r.Note
	}

	values := map[string]string{"name": f.name, "desc": f.desc, "text": f.text, "lang": f.lang, "note": f.note}
	for name, value := range values {
		if !flags.Changed(name) {
			continue
		}
		field, ok := allowed[name]
		if !ok {
			return fmt.Errorf("--%s does not apply to %s", name, rec.Kind().DisplayName())
		}
		*field = value
	}
	return nil
}
