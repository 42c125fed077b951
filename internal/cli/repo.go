package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mkessler/repolens/pkg/github"
	"github.com/mkessler/repolens/pkg/stats"
)

// repoCommand creates the "repo" command showing repository details and
// derived activity metrics.
func (c *CLI) repoCommand() *cobra.Command {
	var (
		noCache bool
		asJSON  bool
		noStats bool
	)

	cmd := &cobra.Command{
		Use:   "repo <owner/repo | url>",
		Short: "Show repository details and activity metrics",
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

			p := newProgress(c.Logger)
			var (
				details *github.RepoDetails
				metrics *stats.Metrics
			)
			err = withSpinner(cmd.Context(), fmt.Sprintf("Fetching %s", ref), func(update func(string)) error {
				details, err = client.RepoDetails(cmd.Context(), ref)
				if err != nil {
					return err
				}
				if noStats {
					return nil
				}
				update(fmt.Sprintf("Computing activity metrics for %s", ref))
				activity, err := client.CommitActivity(cmd.Context(), ref)
				if err != nil {
					return err
				}
				contributors, err := client.Contributors(cmd.Context(), ref)
				if err != nil {
					return err
				}
				m := stats.Calculate(activity, contributors)
				metrics = &m
				return nil
			})
			if err != nil {
				return err
			}
			p.done(fmt.Sprintf("Fetched %s", details.FullName))

			if asJSON {
				out := map[string]any{"details": details}
				if metrics != nil {
					out["metrics"] = metrics
				}
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}

			printRepoDetails(details, metrics)
			warnIfNearLimit(client)
			return nil
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the response cache")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	cmd.Flags().BoolVar(&noStats, "no-stats", false, "skip activity metrics")
	return cmd
}

func printRepoDetails(details *github.RepoDetails, metrics *stats.Metrics) {
	fmt.Println(StyleTitle.Render(details.FullName))
	if details.Description != "" {
		fmt.Println(StyleDim.Render(details.Description))
	}
	fmt.Println()

	printKeyValue("Stars", formatCount(details.Stars))
	printKeyValue("Forks", formatCount(details.Forks))
	printKeyValue("Open issues", formatCount(details.OpenIssuesCount))
	if details.PrimaryLanguage != "" {
		printKeyValue("Language", details.PrimaryLanguage)
	}
	if details.License != "" {
		printKeyValue("License", details.License)
	}
	printKeyValue("Branch", details.DefaultBranch)
	printKeyValue("Updated", details.UpdatedAt.Format("2006-01-02"))
	printKeyValue("URL", StyleLink.Render(details.URL))

	if metrics == nil {
		return
	}
	fmt.Println()
	printKeyValue("Commits/week", fmt.Sprintf("%.1f", metrics.AverageCommitsPerWeek))
	printKeyValue("Trend", trendLabel(metrics))
	if len(metrics.TopContributors) > 0 {
		logins := make([]string, 0, len(metrics.TopContributors))
		for _, contributor := range metrics.TopContributors {
			logins = append(logins, contributor.Login)
		}
		printKeyValue("Top authors", strings.Join(logins, ", "))
	}
}

func trendLabel(m *stats.Metrics) string {
	switch m.Trend {
	case stats.TrendIncreasing:
		return StyleSuccess.Render(fmt.Sprintf("increasing (%+.0f%%)", m.TrendChangePercent))
	case stats.TrendDecreasing:
		return StyleWarning.Render(fmt.Sprintf("decreasing (%+.0f%%)", m.TrendChangePercent))
	default:
		return "stable"
	}
}
