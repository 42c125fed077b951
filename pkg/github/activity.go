package github

import (
	"context"
	"fmt"
	"sort"
	"time"

	apperr "github.com/mkessler/repolens/pkg/errors"
	"github.com/mkessler/repolens/pkg/httputil"
	"github.com/mkessler/repolens/pkg/observability"
)

const (
	// statsAttempts bounds waiting for the asynchronous statistic: one
	// initial call plus three delayed retries before giving up.
	statsAttempts = 4

	// fallbackWindowDays is how far back the commit-listing fallback
	// looks when the statistics endpoint is unavailable.
	fallbackWindowDays = 30

	// fallbackMaxPages caps pagination of the fallback listing so a very
	// active repository cannot burn the whole quota on one chart.
	fallbackMaxPages = 3
)

// CommitActivity fetches weekly commit activity for the past year. The
// underlying statistic is computed asynchronously by GitHub; the call waits
// through a few recomputation rounds and, if the statistic still is not
// ready, surfaces a StillComputing error so the caller can retry after a
// delay. When the statistics endpoint fails outright, recent weeks are
// synthesized from the raw commit listing instead. Results are cached under
// the metadata class either way.
func (c *Client) CommitActivity(ctx context.Context, ref RepoRef) ([]WeekActivity, error) {
	if err := ValidateRepoRef(ref.Owner, ref.Name); err != nil {
		return nil, err
	}

	key := fmt.Sprintf("commit-activity:%s", ref)
	var weeks []WeekActivity
	err := c.cached(ctx, c.meta, "commit-activity", key, &weeks, func(ctx context.Context) (any, error) {
		raw, err := c.fetchCommitActivity(ctx, ref)
		if err == nil {
			out := make([]WeekActivity, len(raw))
			for i, w := range raw {
				out[i] = WeekActivity{Week: w.Week, Total: w.Total, Days: w.Days}
			}
			return out, nil
		}
		if apperr.Is(err, apperr.ErrCodeStillComputing) {
			return nil, err
		}
		if !degradable(ctx, err) {
			return nil, err
		}
		weeks, err := c.fallbackActivity(ctx, ref)
		if err != nil {
			return nil, err
		}
		return weeks, nil
	})
	if err != nil {
		if degradable(ctx, err) {
			return []WeekActivity{}, nil
		}
		return nil, err
	}
	if weeks == nil {
		weeks = []WeekActivity{}
	}
	return weeks, nil
}

// fetchCommitActivity polls the statistics endpoint until it stops answering
// 202 or the retry budget runs out. The last StillComputing error surfaces
// unwrapped so it reaches the caller with its code intact.
func (c *Client) fetchCommitActivity(ctx context.Context, ref RepoRef) ([]apiWeekActivity, error) {
	var raw []apiWeekActivity
	path := repoPath(ref.Owner, ref.Name, "stats", "commit_activity")

	attempt := 0
	err := httputil.Retry(ctx, statsAttempts, c.retryBase, func() error {
		attempt++
		err := c.withRetry(ctx, func() error {
			return c.getJSON(ctx, path, &raw)
		})
		if apperr.Is(err, apperr.ErrCodeStillComputing) {
			observability.Fetch().OnRetry(ctx, "commit-activity", attempt, c.statsDelay)
			return &httputil.RetryAfterError{Err: err, After: c.statsDelay}
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return raw, nil
}

// fallbackActivity synthesizes weekly activity from the raw commit listing,
// bucketed into Sunday-aligned UTC weeks over the last thirty days.
func (c *Client) fallbackActivity(ctx context.Context, ref RepoRef) ([]WeekActivity, error) {
	since := time.Now().UTC().AddDate(0, 0, -fallbackWindowDays)
	commits, err := c.listCommits(ctx, ref, since)
	if err != nil {
		return nil, err
	}
	return bucketByWeek(commits), nil
}

// listCommits pages through the commit listing back to since, newest first.
func (c *Client) listCommits(ctx context.Context, ref RepoRef, since time.Time) ([]apiCommitResponse, error) {
	var all []apiCommitResponse
	for page := 1; page <= fallbackMaxPages; page++ {
		path := fmt.Sprintf("%s?per_page=100&page=%d&since=%s",
			repoPath(ref.Owner, ref.Name, "commits"), page, since.Format(time.RFC3339))

		var batch []apiCommitResponse
		if err := c.withRetry(ctx, func() error {
			return c.getJSON(ctx, path, &batch)
		}); err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if len(batch) < 100 {
			break
		}
	}
	return all, nil
}

// bucketByWeek groups commits into Sunday-aligned UTC weeks. Days index 0 is
// Sunday, matching the provider's convention for the real statistic.
func bucketByWeek(commits []apiCommitResponse) []WeekActivity {
	buckets := make(map[int64]*WeekActivity)
	for _, commit := range commits {
		ts := commit.Commit.Author.Date.UTC()
		if ts.IsZero() {
			continue
		}
		start := weekStart(ts)
		week, ok := buckets[start]
		if !ok {
			week = &WeekActivity{Week: start, Days: make([]int, 7)}
			buckets[start] = week
		}
		week.Total++
		week.Days[int(ts.Weekday())]++
	}

	out := make([]WeekActivity, 0, len(buckets))
	for _, w := range buckets {
		out = append(out, *w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Week < out[j].Week })
	return out
}

// weekStart returns the Unix timestamp of the Sunday 00:00 UTC that opens
// the week containing t.
func weekStart(t time.Time) int64 {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	d = d.AddDate(0, 0, -int(d.Weekday()))
	return d.Unix()
}
