package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mkessler/repolens/pkg/github"
)

// treeCommand creates the "tree" command printing the repository layout.
func (c *CLI) treeCommand() *cobra.Command {
	var (
		noCache bool
		asJSON  bool
		depth   int
		path    string
	)

	cmd := &cobra.Command{
		Use:   "tree <owner/repo | url>",
		Short: "Print the repository file tree",
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

			var tree []github.FileNode
			err = withSpinner(cmd.Context(), fmt.Sprintf("Fetching tree for %s", ref), func(func(string)) error {
				tree, err = client.BuildTree(cmd.Context(), ref, path, depth)
				return err
			})
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(tree)
			}

			if len(tree) == 0 {
				printInfo("No contents found at %s:%s", ref, path)
				return nil
			}

			root := path
			if root == "" {
				root = ref.String()
			}
			fmt.Println(StyleTitle.Render(root))
			printTree(tree, "")

			warnIfNearLimit(client)
			return nil
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the response cache")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	cmd.Flags().IntVarP(&depth, "depth", "d", 2, "directory levels to descend")
	cmd.Flags().StringVarP(&path, "path", "p", "", "subdirectory to start from")
	return cmd
}

// printTree renders nodes with box-drawing connectors, the way git and tree
// do it.
func printTree(nodes []github.FileNode, prefix string) {
	for i, node := range nodes {
		connector, childPrefix := "├── ", prefix+"│   "
		if i == len(nodes)-1 {
			connector, childPrefix = "└── ", prefix+"    "
		}

		name := styleFileName.Render(node.Name)
		if node.Kind == github.KindDirectory {
			name = styleDirectory.Render(node.Name + "/")
		}
		fmt.Println(prefix + StyleDim.Render(connector) + name)

		if len(node.Children) > 0 {
			printTree(node.Children, childPrefix)
		}
	}
}
