package github

import (
	"context"
	"fmt"

	apperr "github.com/mkessler/repolens/pkg/errors"
)

// RepoDetails fetches repository metadata. Results are cached under the
// metadata class.
func (c *Client) RepoDetails(ctx context.Context, ref RepoRef) (*RepoDetails, error) {
	if err := ValidateRepoRef(ref.Owner, ref.Name); err != nil {
		return nil, err
	}

	key := fmt.Sprintf("repo-details:%s", ref)
	var details RepoDetails
	err := c.cached(ctx, c.meta, "repo-details", key, &details, func(ctx context.Context) (any, error) {
		var raw apiRepoResponse
		if err := c.withRetry(ctx, func() error {
			return c.getJSON(ctx, repoPath(ref.Owner, ref.Name), &raw)
		}); err != nil {
			return nil, err
		}
		return repoDetailsFromAPI(&raw), nil
	})
	if err != nil {
		if apperr.Is(err, apperr.ErrCodeNotFound) {
			return nil, apperr.Wrap(apperr.ErrCodeRepoNotFound, err, "repository %s not found", ref)
		}
		return nil, err
	}
	return &details, nil
}

func repoDetailsFromAPI(raw *apiRepoResponse) *RepoDetails {
	return &RepoDetails{
		Owner:           raw.Owner.Login,
		Name:            raw.Name,
		FullName:        raw.FullName,
		Description:     raw.Description,
		Stars:           raw.Stars,
		Forks:           raw.Forks,
		Watchers:        raw.Watchers,
		PrimaryLanguage: raw.Language,
		License:         raw.License.SPDXID,
		UpdatedAt:       raw.UpdatedAt,
		CreatedAt:       raw.CreatedAt,
		URL:             raw.HTMLURL,
		DefaultBranch:   raw.DefaultBranch,
		Size:            raw.Size,
		OpenIssuesCount: raw.OpenIssues,
	}
}

// Contributors fetches the repository's top contributors, bots excluded.
// Missing or unavailable contributor data degrades to an empty list; only
// quota exhaustion stops the caller.
func (c *Client) Contributors(ctx context.Context, ref RepoRef) ([]Contributor, error) {
	if err := ValidateRepoRef(ref.Owner, ref.Name); err != nil {
		return nil, err
	}

	key := fmt.Sprintf("contributors:%s", ref)
	var contributors []Contributor
	err := c.cached(ctx, c.meta, "contributors", key, &contributors, func(ctx context.Context) (any, error) {
		var raw []apiContributorResponse
		if err := c.withRetry(ctx, func() error {
			return c.getJSON(ctx, repoPath(ref.Owner, ref.Name, "contributors")+"?per_page=30", &raw)
		}); err != nil {
			return nil, err
		}

		out := make([]Contributor, 0, len(raw))
		for _, rc := range raw {
			if rc.Type == "Bot" {
				continue
			}
			out = append(out, Contributor{
				Login:         rc.Login,
				ID:            rc.ID,
				AvatarURL:     rc.AvatarURL,
				URL:           rc.HTMLURL,
				Contributions: rc.Contributions,
			})
		}
		return out, nil
	})
	if err != nil {
		if degradable(ctx, err) {
			return []Contributor{}, nil
		}
		return nil, err
	}
	if contributors == nil {
		contributors = []Contributor{}
	}
	return contributors, nil
}

// degradable reports whether a listing fetch may collapse to an empty
// result instead of failing the caller. Quota exhaustion, bad input, and
// cancellation always propagate.
func degradable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	switch apperr.GetCode(err) {
	case apperr.ErrCodeNotFound, apperr.ErrCodeRepoNotFound, apperr.ErrCodeFileNotFound, apperr.ErrCodeFetchFailed:
		return true
	}
	return false
}
