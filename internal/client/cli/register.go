package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iudanet/wordkeeper/internal/validation"
	"github.com/iudanet/wordkeeper/pkg/api"
)

func newSignupCommand(c *Cli) *cobra.Command {
	var username string
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account on the server and log in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSignup(cmd.Context(), username)
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "username (prompted when empty)")
	return cmd
}

func (c *Cli) runSignup(ctx context.Context, username string) error {
	c.io.Println("=== Sign up ===")
	c.io.Println()

	username, password, err := c.readCredentials(username)
	if err != nil {
		return err
	}
	if err := validation.ValidateUsername(username); err != nil {
		return fmt.Errorf("invalid username: %w", err)
	}
	if err := validation.ValidatePassword(password); err != nil {
		return fmt.Errorf("invalid password: %w", err)
	}

	confirm, err := c.io.ReadPassword("Confirm password: ")
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	if confirm != password {
		return fmt.Errorf("passwords do not match")
	}

	resp, err := c.api.Signup(ctx, api.SignupRequest{Username: username, Password: password})
	if err != nil {
		return err
	}
	c.io.Printf("✓ Account created (user id %s)\n", resp.UserID)

	return c.login(ctx, username, password)
}
