package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/iudanet/wordkeeper/internal/client/scheduler"
	clientsync "github.com/iudanet/wordkeeper/internal/client/sync"
)

func newSyncCommand(c *Cli) *cobra.Command {
	var reregister bool
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Synchronize local data with the server now",
		Long: `Run one synchronization: conflicts, pull, push, conflicts.
Interrupting the command cancels the run; cursors keep the last committed step.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSync(cmd.Context(), reregister)
		},
	}
	cmd.Flags().BoolVar(&reregister, "reregister", false, "reset this device's cursors and pull everything again")
	return cmd
}

func (c *Cli) runSync(ctx context.Context, reregister bool) error {
	if _, err := c.session(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	if reregister {
		if err := c.sync.Reregister(ctx); err != nil {
			return fmt.Errorf("failed to reregister device: %w", err)
		}
		c.io.Println("Device cursors reset; pulling everything again.")
	}

	c.io.Println("Synchronizing with server...")

	var result *clientsync.RunResult
	sched := scheduler.New(func(ctx context.Context) error {
		var err error
		result, err = c.sync.Run(ctx)
		return err
	}, 0, c.logger)

	if err := sched.RunNow(ctx); err != nil {
		return fmt.Errorf("synchronization failed: %w", err)
	}

	c.io.Println()
	return c.render(syncResultTmpl, result)
}
