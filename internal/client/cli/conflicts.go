package cli

import (
	"github.com/spf13/cobra"
)

func newConflictsCommand(c *Cli) *cobra.Command {
	return &cobra.Command{
		Use:   "conflicts",
		Short: "Show local edits that lost to newer versions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := c.data.Conflicts(cmd.Context())
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				c.io.Println("No conflicts")
				return nil
			}

			c.io.Printf("=== Conflicts (%d) ===\n", len(entries))
			for _, e := range entries {
				if err := c.render(conflictTmpl, e); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
