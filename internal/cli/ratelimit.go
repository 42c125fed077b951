package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

// rateLimitCommand creates the "ratelimit" command showing quota state.
func (c *CLI) rateLimitCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "ratelimit",
		Short: "Show the current API quota",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := c.newClient(cmd.Context(), false)
			if err != nil {
				return err
			}

			snap, err := client.RateLimit(cmd.Context())
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(snap)
			}

			printKeyValue("Limit", fmt.Sprint(snap.Limit))
			printKeyValue("Remaining", fmt.Sprint(snap.Remaining))
			printKeyValue("Resets", time.Unix(snap.ResetAt, 0).Local().Format("15:04:05"))
			if snap.Authenticated {
				printKeyValue("Credential", "token active")
			} else {
				printKeyValue("Credential", "none (60 requests/hour)")
			}
			if snap.ApproachingLimit() {
				printWarning("quota nearly exhausted")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}
