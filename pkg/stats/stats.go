// Package stats derives display metrics from fetched repository data.
//
// All calculations are pure: they take already-fetched activity and
// contributor slices and never touch the network or the cache. Partial
// input degrades to partial metrics rather than errors, matching the
// dashboard's render-what-we-have behavior.
package stats

import (
	"sort"

	"github.com/mkessler/repolens/pkg/github"
)

// Trend classifies recent commit activity against the preceding window.
type Trend string

const (
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
	TrendStable     Trend = "stable"
)

// trendWindow is how many weeks each comparison window spans.
const trendWindow = 4

// trendThreshold is the relative change beyond which activity counts as
// increasing or decreasing rather than stable.
const trendThreshold = 0.2

// topContributorCount caps the ranked contributor list.
const topContributorCount = 5

// Metrics summarizes a repository's recent activity for display.
type Metrics struct {
	AverageCommitsPerWeek float64              `json:"average_commits_per_week"`
	Trend                 Trend                `json:"trend"`
	TrendChangePercent    float64              `json:"trend_change_percent"`
	TotalCommits          int                  `json:"total_commits"`
	WeeksObserved         int                  `json:"weeks_observed"`
	TopContributors       []github.Contributor `json:"top_contributors"`
}

// Calculate derives metrics from weekly activity and the contributor list.
// Either input may be empty; the corresponding metrics zero out.
func Calculate(activity []github.WeekActivity, contributors []github.Contributor) Metrics {
	m := Metrics{
		Trend:           TrendStable,
		TopContributors: topContributors(contributors),
	}

	for _, w := range activity {
		m.TotalCommits += w.Total
	}
	m.WeeksObserved = len(activity)
	if len(activity) > 0 {
		m.AverageCommitsPerWeek = float64(m.TotalCommits) / float64(len(activity))
	}

	m.Trend, m.TrendChangePercent = trend(activity)
	return m
}

// trend compares the most recent window of weeks against the window before
// it. With fewer than two full windows there is nothing to compare, so the
// activity reads as stable with zero change.
func trend(activity []github.WeekActivity) (Trend, float64) {
	if len(activity) < 2*trendWindow {
		return TrendStable, 0
	}

	recent := sumWeeks(activity[len(activity)-trendWindow:])
	prior := sumWeeks(activity[len(activity)-2*trendWindow : len(activity)-trendWindow])

	if prior == 0 {
		if recent > 0 {
			return TrendIncreasing, 100
		}
		return TrendStable, 0
	}

	change := float64(recent-prior) / float64(prior)
	percent := change * 100
	switch {
	case change > trendThreshold:
		return TrendIncreasing, percent
	case change < -trendThreshold:
		return TrendDecreasing, percent
	default:
		return TrendStable, percent
	}
}

func sumWeeks(weeks []github.WeekActivity) int {
	total := 0
	for _, w := range weeks {
		total += w.Total
	}
	return total
}

// topContributors returns the top entries by contribution count. The input
// arrives provider-ordered already; the stable sort preserves that order
// for ties.
func topContributors(contributors []github.Contributor) []github.Contributor {
	ranked := make([]github.Contributor, len(contributors))
	copy(ranked, contributors)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Contributions > ranked[j].Contributions
	})
	if len(ranked) > topContributorCount {
		ranked = ranked[:topContributorCount]
	}
	return ranked
}
