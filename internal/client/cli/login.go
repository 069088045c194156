package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/iudanet/wordkeeper/internal/config"
	"github.com/iudanet/wordkeeper/pkg/api"
)

func newLoginCommand(c *Cli) *cobra.Command {
	var username string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c.io.Println("=== Login ===")
			c.io.Println()

			username, password, err := c.readCredentials(username)
			if err != nil {
				return err
			}
			return c.login(cmd.Context(), username, password)
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "username (prompted when empty)")
	return cmd
}

// readCredentials запрашивает недостающий username и пароль
func (c *Cli) readCredentials(username string) (string, string, error) {
	if username == "" {
		var err error
		username, err = c.io.ReadInput("Username: ")
		if err != nil {
			return "", "", fmt.Errorf("failed to read username: %w", err)
		}
	}
	if username == "" {
		return "", "", fmt.Errorf("username cannot be empty")
	}

	password, err := c.io.ReadPassword("Password: ")
	if err != nil {
		return "", "", fmt.Errorf("failed to read password: %w", err)
	}
	if password == "" {
		return "", "", fmt.Errorf("password cannot be empty")
	}
	return username, password, nil
}

// login получает токен и сохраняет сессию в реплике.
// Реплика привязана к одному пользователю.
func (c *Cli) login(ctx context.Context, username, password string) error {
	tokens, err := c.api.Login(ctx, api.LoginRequest{Username: username, Password: password})
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	current := c.device.Get()
	if current.UserID != "" && current.UserID != tokens.UserID {
		return fmt.Errorf("local database belongs to user %q; use another --db for %q", current.Username, username)
	}

	_, err = c.device.Update(func(d config.Device) config.Device {
		d.Username = username
		d.UserID = tokens.UserID
		d.AccessToken = tokens.AccessToken
		return d
	})
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	c.io.Println()
	c.io.Println("✓ Login successful!")
	c.io.Printf("Username: %s\n", username)
	c.io.Printf("Access token expires in: %s\n", (time.Duration(tokens.ExpiresIn) * time.Second).String())
	return nil
}
