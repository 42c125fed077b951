package cli

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/mkessler/repolens/pkg/github"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// browseCommand creates the "browse" command: an interactive tree explorer.
// Selecting a file prints its contents after the program exits.
func (c *CLI) browseCommand() *cobra.Command {
	var (
		noCache bool
		depth   int
	)

	cmd := &cobra.Command{
		Use:   "browse <owner/repo | url>",
		Short: "Interactively explore the repository tree",
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
				tree, err = client.BuildTree(cmd.Context(), ref, "", depth)
				return err
			})
			if err != nil {
				return err
			}
			if len(tree) == 0 {
				printInfo("Repository %s has no browsable contents", ref)
				return nil
			}

			model := newTreeModel(ref, tree)
			final, err := tea.NewProgram(model, tea.WithContext(cmd.Context())).Run()
			if err != nil {
				return err
			}

			m, ok := final.(treeModel)
			if !ok || m.selected == "" {
				return nil
			}

			content, err := client.FileContent(cmd.Context(), ref, m.selected)
			if err != nil {
				return err
			}
			if content.Skipped {
				printInfo("%s is binary or generated content; not fetched", content.Path)
				return nil
			}
			fmt.Fprint(os.Stdout, content.Content)
			return nil
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the response cache")
	cmd.Flags().IntVarP(&depth, "depth", "d", 3, "directory levels to prefetch")
	return cmd
}

// treeRow is one visible line: a node plus its indentation depth.
type treeRow struct {
	node  *github.FileNode
	depth int
}

// treeModel is the bubbletea model for tree navigation. Directories toggle
// open and closed; selecting a file quits with its path recorded.
type treeModel struct {
	ref      github.RepoRef
	tree     []github.FileNode
	expanded map[string]bool
	rows     []treeRow
	cursor   int
	offset   int
	height   int
	selected string
}

func newTreeModel(ref github.RepoRef, tree []github.FileNode) treeModel {
	m := treeModel{
		ref:      ref,
		tree:     tree,
		expanded: make(map[string]bool),
		height:   20,
	}
	m.rebuildRows()
	return m
}

// rebuildRows flattens the tree into visible lines, honoring the expanded
// set.
func (m *treeModel) rebuildRows() {
	m.rows = m.rows[:0]
	m.appendRows(m.tree, 0)
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
}

func (m *treeModel) appendRows(nodes []github.FileNode, depth int) {
	for i := range nodes {
		node := &nodes[i]
		m.rows = append(m.rows, treeRow{node: node, depth: depth})
		if node.Kind == github.KindDirectory && m.expanded[node.Path] {
			m.appendRows(node.Children, depth+1)
		}
	}
}

func (m treeModel) Init() tea.Cmd {
	return nil
}

func (m treeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case "down", "j":
			if m.cursor < len(m.rows)-1 {
				m.cursor++
				if m.cursor >= m.offset+m.height {
					m.offset = m.cursor - m.height + 1
				}
			}
		case "enter", " ":
			row := m.rows[m.cursor]
			if row.node.Kind == github.KindDirectory {
				// Unexpandable directories (depth cap or failed fetch)
				// have nothing to show.
				if len(row.node.Children) > 0 {
					m.expanded[row.node.Path] = !m.expanded[row.node.Path]
					m.rebuildRows()
				}
				return m, nil
			}
			m.selected = row.node.Path
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.height = msg.Height - 5
		if m.height < 5 {
			m.height = 5
		}
	}
	return m, nil
}

func (m treeModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.ref.String()))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ open/select  q quit"))
	b.WriteString("\n\n")

	end := m.offset + m.height
	if end > len(m.rows) {
		end = len(m.rows)
	}

	for i := m.offset; i < end; i++ {
		row := m.rows[i]

		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}
		indent := strings.Repeat("  ", row.depth)

		var name string
		switch {
		case row.node.Kind == github.KindDirectory && m.expanded[row.node.Path]:
			name = styleDirectory.Render(row.node.Name+"/") + listDimStyle.Render(" −")
		case row.node.Kind == github.KindDirectory:
			name = styleDirectory.Render(row.node.Name + "/")
		default:
			name = styleFileName.Render(row.node.Name)
			if row.node.Size > 0 {
				name += listDimStyle.Render("  " + formatSize(row.node.Size))
			}
		}

		line := indent + name
		if i == m.cursor {
			line = listSelectedStyle.Render(indent + plainName(row.node, m.expanded[row.node.Path]))
		}
		b.WriteString(cursor + line + "\n")
	}

	if len(m.rows) > m.height {
		b.WriteString(listDimStyle.Render(fmt.Sprintf("\n%d/%d", m.cursor+1, len(m.rows))))
	}
	return b.String()
}

func plainName(node *github.FileNode, expanded bool) string {
	if node.Kind == github.KindDirectory {
		if expanded {
			return node.Name + "/ −"
		}
		return node.Name + "/"
	}
	return node.Name
}
