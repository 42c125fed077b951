package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

// contributorsCommand creates the "contributors" command.
func (c *CLI) contributorsCommand() *cobra.Command {
	var (
		noCache bool
		asJSON  bool
		limit   int
	)

	cmd := &cobra.Command{
		Use:   "contributors <owner/repo | url>",
		Short: "List top contributors",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := parseRef(args[0])
			if err != nil {
				return err
			}

			client, err := c.newClient(cmd.Context(), noCache)
			if err != nil {
				return err
			}

			contributors, err := client.Contributors(cmd.Context(), ref)
			if err != nil {
				return err
			}
			if limit > 0 && len(contributors) > limit {
				contributors = contributors[:limit]
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(contributors)
			}

			if len(contributors) == 0 {
				printInfo("No contributor data available for %s", ref)
				return nil
			}

			t := table.New().
				Border(lipgloss.RoundedBorder()).
				BorderStyle(StyleDim).
				Headers("#", "LOGIN", "COMMITS")
			for i, contributor := range contributors {
				t.Row(fmt.Sprint(i+1), contributor.Login, formatCount(contributor.Contributions))
			}
			fmt.Println(t)

			warnIfNearLimit(client)
			return nil
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the response cache")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	cmd.Flags().IntVar(&limit, "limit", 0, "show at most this many contributors")
	return cmd
}
