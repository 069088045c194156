package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/iudanet/wordkeeper/internal/models"
)

func newAddCommand(c *Cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a record to the local database",
		Long: `Add a record on this device. The record is pushed on the next sync.

Examples:
  wordkeeper add category verbs --desc "irregular verbs"
  wordkeeper add tag <category-id> go
  wordkeeper add phrase "break a leg" --lang en
  wordkeeper add bookmark 42 --note "check pronunciation"
  wordkeeper add phrase-tag <phrase-id> <tag-id>`,
	}
	cmd.AddCommand(
		newAddCategoryCommand(c),
		newAddTagCommand(c),
		newAddPhraseCommand(c),
		newAddBookmarkCommand(c),
		newAddPhraseTagCommand(c),
		newAddBookmarkTagCommand(c),
	)
	return cmd
}

func (c *Cli) added(rec models.Record) {
	c.io.Printf("✓ %s added: %s\n", rec.Kind().DisplayName(), rec.GetID())
}

func newAddCategoryCommand(c *Cli) *cobra.Command {
	var desc string
	cmd := &cobra.Command{
		Use:   "category <name>",
		Short: "Add a tag category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dev, err := c.session()
			if err != nil {
				return err
			}
			rec, err := c.data.AddCategory(cmd.Context(), dev.UserID, args[0], desc)
			if err != nil {
				return err
			}
			c.added(rec)
			return nil
		},
	}
	cmd.Flags().StringVar(&desc, "desc", "", "description")
	return cmd
}

func newAddTagCommand(c *Cli) *cobra.Command {
	var desc string
	cmd := &cobra.Command{
		Use:   "tag <category-id> <name>",
		Short: "Add a tag to a category",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := c.session(); err != nil {
				return err
			}
			rec, err := c.data.AddTag(cmd.Context(), args[0], args[1], desc)
			if err != nil {
				return err
			}
			c.added(rec)
			return nil
		},
	}
	cmd.Flags().StringVar(&desc, "desc", "", "description")
	return cmd
}

func newAddPhraseCommand(c *Cli) *cobra.Command {
	var lang, note string
	cmd := &cobra.Command{
		Use:   "phrase <text>",
		Short: "Add a phrase",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dev, err := c.session()
			if err != nil {
				return err
			}
			rec, err := c.data.AddPhrase(cmd.Context(), dev.UserID, args[0], lang, note)
			if err != nil {
				return err
			}
			c.added(rec)
			return nil
		},
	}
	cmd.Flags().StringVar(&lang, "lang", "", "language code (required)")
	cmd.Flags().StringVar(&note, "note", "", "note")
	_ = cmd.MarkFlagRequired("lang")
	return cmd
}

func newAddBookmarkCommand(c *Cli) *cobra.Command {
	var note string
	cmd := &cobra.Command{
		Use:   "bookmark <word-id>",
		Short: "Bookmark a dictionary word",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dev, err := c.session()
			if err != nil {
				return err
			}
			wordID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid word id %q: %w", args[0], err)
			}
			rec, err := c.data.AddBookmark(cmd.Context(), dev.UserID, wordID, note)
			if err != nil {
				return err
			}
			c.added(rec)
			return nil
		},
	}
	cmd.Flags().StringVar(&note, "note", "", "note")
	return cmd
}

func newAddPhraseTagCommand(c *Cli) *cobra.Command {
	return &cobra.Command{
		Use:   "phrase-tag <phrase-id> <tag-id>",
		Short: "Tag a phrase",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := c.session(); err != nil {
				return err
			}
			rec, err := c.data.TagPhrase(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			c.added(rec)
			return nil
		},
	}
}

func newAddBookmarkTagCommand(c *Cli) *cobra.Command {
	return &cobra.Command{
		Use:   "bookmark-tag <bookmark-id> <tag-id>",
		Short: "Tag a bookmark",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := c.session(); err != nil {
				return err
			}
			rec, err := c.data.TagBookmark(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			c.added(rec)
			return nil
		},
	}
}
