package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// authCommand creates the "auth" command group for token management.
func (c *CLI) authCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the stored GitHub access token",
	}

	cmd.AddCommand(c.authLoginCommand())
	cmd.AddCommand(c.authStatusCommand())
	cmd.AddCommand(c.authLogoutCommand())
	return cmd
}

// authLoginCommand creates "auth login". The token is read from --token or
// interactively from stdin, then validated and persisted with 0600
// permissions.
func (c *CLI) authLoginCommand() *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store an access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if token == "" {
				fmt.Fprint(os.Stderr, "Paste your GitHub token: ")
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil {
					return fmt.Errorf("read token: %w", err)
				}
				token = strings.TrimSpace(line)
			}

			store, err := newTokenStore()
			if err != nil {
				return err
			}
			if err := store.Save(token); err != nil {
				return err
			}

			printSuccess("Token saved")
			printDetail("File: %s", store.Path())
			printDetail("Authenticated requests get 5,000 requests/hour")
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "access token (read from stdin when omitted)")
	return cmd
}

// authStatusCommand creates "auth status".
func (c *CLI) authStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether a token is stored",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if os.Getenv("GITHUB_TOKEN") != "" {
				printInfo("Using token from GITHUB_TOKEN environment variable")
				return nil
			}

			store, err := newTokenStore()
			if err != nil {
				return err
			}
			token, savedAt, err := store.Load()
			if err != nil {
				return err
			}
			if token == "" {
				printInfo("No token stored; requests run unauthenticated (60/hour)")
				printDetail("run `%s auth login` to add one", appName)
				return nil
			}

			printSuccess("Token stored (saved %s)", savedAt.Format("2006-01-02"))
			printDetail("File: %s", store.Path())
			return nil
		},
	}
}

// authLogoutCommand creates "auth logout".
func (c *CLI) authLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := newTokenStore()
			if err != nil {
				return err
			}
			if err := store.Clear(); err != nil {
				return err
			}
			printSuccess("Token removed")
			return nil
		},
	}
}
