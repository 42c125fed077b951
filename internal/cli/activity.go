package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mkessler/repolens/pkg/github"
)

// activityCommand creates the "activity" command showing weekly commits as
// a sparkline-style bar chart.
func (c *CLI) activityCommand() *cobra.Command {
	var (
		noCache bool
		asJSON  bool
		weeks   int
	)

	cmd := &cobra.Command{
		Use:   "activity <owner/repo | url>",
		Short: "Show weekly commit activity",
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

			activity, err := client.CommitActivity(cmd.Context(), ref)
			if err != nil {
				return err
			}
			if weeks > 0 && len(activity) > weeks {
				activity = activity[len(activity)-weeks:]
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(activity)
			}

			if len(activity) == 0 {
				printInfo("No commit activity available for %s", ref)
				return nil
			}

			printActivity(activity)
			warnIfNearLimit(client)
			return nil
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the response cache")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	cmd.Flags().IntVar(&weeks, "weeks", 12, "show at most this many recent weeks (0 for all)")
	return cmd
}

// barGlyphs maps a commit count, scaled against the busiest week, onto a
// vertical bar character.
var barGlyphs = []rune("▁▂▃▄▅▆▇█")

func printActivity(activity []github.WeekActivity) {
	peak := 0
	for _, w := range activity {
		if w.Total > peak {
			peak = w.Total
		}
	}

	var spark strings.Builder
	for _, w := range activity {
		idx := 0
		if peak > 0 {
			idx = w.Total * (len(barGlyphs) - 1) / peak
		}
		spark.WriteRune(barGlyphs[idx])
	}

	first := time.Unix(activity[0].Week, 0).UTC()
	last := time.Unix(activity[len(activity)-1].Week, 0).UTC()
	fmt.Println(StyleHighlight.Render(spark.String()))
	printDetail("%s %s %s, peak %d commits/week",
		first.Format("2006-01-02"), iconArrow, last.Format("2006-01-02"), peak)

	for _, w := range activity {
		start := time.Unix(w.Week, 0).UTC()
		fmt.Printf("  %s  %s %s\n",
			StyleDim.Render(start.Format("Jan 02")),
			StyleNumber.Render(fmt.Sprintf("%3d", w.Total)),
			StyleDim.Render(strings.Repeat("■", scaled(w.Total, peak, 40))))
	}
}

// scaled maps value in [0, peak] to a bar width in [0, max].
func scaled(value, peak, max int) int {
	if peak == 0 || value == 0 {
		return 0
	}
	n := value * max / peak
	if n == 0 {
		n = 1
	}
	return n
}
