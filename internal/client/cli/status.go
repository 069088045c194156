package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/iudanet/wordkeeper/internal/client/storage"
	"github.com/iudanet/wordkeeper/internal/config"
	"github.com/iudanet/wordkeeper/pkg/api"
)

type statusView struct {
	Device   config.Device
	State    *storage.SyncState
	Remote   *api.SyncStatusResponse
	Server   string
	Database string
	LastRun  string
	Pending  int
}

func newStatusCommand(c *Cli) *cobra.Command {
	var remote bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show session and synchronization status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runStatus(cmd.Context(), remote)
		},
	}
	cmd.Flags().BoolVar(&remote, "remote", false, "also fetch this device's cursors from the server")
	return cmd
}

func (c *Cli) runStatus(ctx context.Context, remote bool) error {
	state, err := c.sync.State(ctx)
	if err != nil {
		return err
	}
	pending, err := c.sync.PendingCount(ctx)
	if err != nil {
		return err
	}

	view := statusView{
		Device:   c.device.Get(),
		State:    state,
		Server:   c.cfg.ServerURL,
		Database: c.cfg.DBPath,
		LastRun:  describeRun(state.LastRun),
		Pending:  pending,
	}

	if remote {
		if _, err := c.session(); err != nil {
			return err
		}
		view.Remote, err = c.api.Status(ctx, view.Device.ClientID)
		if err != nil {
			return fmt.Errorf("failed to fetch server status: %w", err)
		}
	}

	return c.render(statusTmpl, view)
}

func describeRun(run storage.RunInfo) string {
	switch run.Status {
	case storage.RunStatusSucceeded:
		return fmt.Sprintf("succeeded at %s (pulled %d, pushed %d)",
			run.FinishedAt.Local().Format(time.DateTime), run.Pulled, run.Pushed)
	case storage.RunStatusFailed:
		return fmt.Sprintf("failed at %s: %s", run.FinishedAt.Local().Format(time.DateTime), run.Error)
	}
	return "never"
}
