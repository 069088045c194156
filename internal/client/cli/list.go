package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/iudanet/wordkeeper/internal/models"
)

func newListCommand(c *Cli) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "list <kind>",
		Short: "List records of one kind",
		Long: `List records stored on this device, oldest change first.

Kinds: categories, tags, phrases, phrase-tags, bookmarks, bookmark-tags.
Reference data: languages, dictionary, translations.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := models.ParseKind(args[0])
			if err != nil {
				return err
			}
			if kind.IsReference() {
				return c.listReference(cmd, kind)
			}

			records, err := c.data.List(cmd.Context(), kind, all)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				c.io.Printf("No %s records\n", kind.DisplayName())
				return nil
			}

			w := tabwriter.NewWriter(c.io, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSUMMARY\tMODIFIED\tDELETED")
			for _, rec := range records {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					rec.GetID(), summary(rec), formatTimestamp(rec.Modified()), yesNo(rec.IsDeleted()))
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "include deleted records")
	return cmd
}

func (c *Cli) listReference(cmd *cobra.Command, kind models.Kind) error {
	set, err := c.data.Reference(cmd.Context())
	if err != nil {
		return err
	}
	if set.Len() == 0 {
		c.io.Println("No reference data yet. Run 'wordkeeper sync' first.")
		return nil
	}

	w := tabwriter.NewWriter(c.io, 0, 0, 2, ' ', 0)
	switch kind {
	case models.KindLanguage:
		fmt.Fprintln(w, "CODE\tNAME")
		for _, l := range set.Languages {
			fmt.Fprintf(w, "%s\t%s\n", l.LanguageCode, l.LanguageName)
		}
	case models.KindDictionary:
		fmt.Fprintln(w, "WORD ID\tWORD\tLANGUAGE\tPRONOUNCE")
		for _, d := range set.Dictionaries {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", d.WordID, d.Word, d.SourceLanguage, d.Pronounce)
		}
	case models.KindTranslation:
		fmt.Fprintln(w, "ID\tWORD ID\tLANGUAGE\tTRANSLATION")
		for _, t := range set.Translations {
			fmt.Fprintf(w, "%d\t%d\t%s\t%s\n", t.TranslationID, t.WordID, t.TargetLanguage, t.TranslationText)
		}
	}
	return w.Flush()
}

// summary однострочное описание записи по ее полям
func summary(rec models.Record) string {
	parts := make([]string, 0, 2)
	for _, f := range rec.Fields() {
		v := fmt.Sprint(f.Value)
		if v == "" {
			continue
		}
		parts = append(parts, v)
		if len(parts) == 2 {
			break
		}
	}
	return truncate(strings.Join(parts, " | "), 48)
}
