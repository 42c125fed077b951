package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mkessler/repolens/pkg/github"
)

// fileCommand creates the "file" command printing a file's contents.
func (c *CLI) fileCommand() *cobra.Command {
	var noCache bool

	cmd := &cobra.Command{
		Use:   "file <owner/repo | url> <path>",
		Short: "Print a file from the repository",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := parseRef(args[0])
			if err != nil {
				return err
			}

			client, err := c.newClient(cmd.Context(), noCache)
			if err != nil {
				return err
			}

			var content *github.FileContent
			err = withSpinner(cmd.Context(), fmt.Sprintf("Fetching %s:%s", ref, args[1]), func(func(string)) error {
				content, err = client.FileContent(cmd.Context(), ref, args[1])
				return err
			})
			if err != nil {
				return err
			}
			if content.Skipped {
				printInfo("%s is binary or generated content; not fetched", content.Path)
				return nil
			}

			fmt.Fprint(os.Stdout, content.Content)
			warnIfNearLimit(client)
			return nil
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the response cache")
	return cmd
}
