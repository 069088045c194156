package cli

import (
	"github.com/spf13/cobra"
)

func newGetCommand(c *Cli) *cobra.Command {
	return &cobra.Command{
		Use:   "get <kind> <id>",
		Short: "Show one record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseUserKind(args[0])
			if err != nil {
				return err
			}
			rec, err := c.data.Get(cmd.Context(), kind, args[1])
			if err != nil {
				return err
			}
			return c.render(recordTmpl, rec)
		},
	}
}
