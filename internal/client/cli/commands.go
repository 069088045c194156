package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCommand собирает дерево команд клиента
func NewRootCommand(c *Cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wordkeeper",
		Short: "WordKeeper client",
		Long: `WordKeeper keeps bookmarked words, phrases and tags on this device
and synchronizes them with the server.

Examples:
  wordkeeper signup -u alice
  wordkeeper add category verbs
  wordkeeper add phrase "break a leg" --lang en --sync
  wordkeeper list phrases
  wordkeeper sync
  wordkeeper watch --interval 5m`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.open(cmd.Context())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return c.afterCommand(cmd.Context())
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&c.cfg.ServerURL, "server", c.cfg.ServerURL, "server URL")
	flags.StringVar(&c.cfg.DBPath, "db", c.cfg.DBPath, "path to local database")
	flags.DurationVar(&c.cfg.RequestTimeout, "timeout", c.cfg.RequestTimeout, "server request timeout")
	flags.BoolVar(&c.autoSync, "sync", false, "synchronize after changing local data")

	cmd.AddCommand(
		newSignupCommand(c),
		newLoginCommand(c),
		newLogoutCommand(c),
		newStatusCommand(c),
		newSyncCommand(c),
		newWatchCommand(c),
		newConflictsCommand(c),
		newAddCommand(c),
		newListCommand(c),
		newGetCommand(c),
		newEditCommand(c),
		newDeleteCommand(c),
		newRestoreCommand(c),
	)
	return cmd
}
