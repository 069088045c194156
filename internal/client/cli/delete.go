package cli

import (
	"github.com/spf13/cobra"
)

func newDeleteCommand(c *Cli) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <kind> <id>",
		Short: "Delete a record and the records that depend on it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := c.session(); err != nil {
				return err
			}
			kind, err := parseUserKind(args[0])
			if err != nil {
				return err
			}
			n, err := c.data.Delete(cmd.Context(), kind, args[1])
			if err != nil {
				return err
			}
			c.io.Printf("✓ Deleted %d record(s)\n", n)
			return nil
		},
	}
}

func newRestoreCommand(c *Cli) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <kind> <id>",
		Short: "Restore a deleted record and the records deleted with it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := c.session(); err != nil {
				return err
			}
			kind, err := parseUserKind(args[0])
			if err != nil {
				return err
			}
			n, err := c.data.Restore(cmd.Context(), kind, args[1])
			if err != nil {
				return err
			}
			c.io.Printf("✓ Restored %d record(s)\n", n)
			return nil
		},
	}
}
