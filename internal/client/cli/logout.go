package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iudanet/wordkeeper/internal/config"
)

func newLogoutCommand(c *Cli) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the session token; local data is kept",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := c.session(); err != nil {
				c.io.Println("Not logged in.")
				return nil
			}
			_, err := c.device.Update(func(d config.Device) config.Device {
				d.AccessToken = ""
				return d
			})
			if err != nil {
				return fmt.Errorf("failed to clear session: %w", err)
			}
			c.io.Println("✓ Logged out")
			return nil
		},
	}
}
