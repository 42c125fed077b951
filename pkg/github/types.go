package github

import "time"

// NodeKind distinguishes files from directories in a repository tree.
type NodeKind string

// Node kinds at the API boundary. Both the flat listing and the nested tree
// are built from the same node type.
const (
	KindFile      NodeKind = "file"
	KindDirectory NodeKind = "directory"
)

// RepoRef identifies a repository by owner and name. Immutable once parsed.
type RepoRef struct {
	Owner string `json:"owner"`
	Name  string `json:"name"`
}

// String returns the "owner/name" form.
func (r RepoRef) String() string { return r.Owner + "/" + r.Name }

// RepoDetails holds normalized repository metadata.
type RepoDetails struct {
	Owner           string    `json:"owner"`
	Name            string    `json:"name"`
	FullName        string    `json:"full_name"`
	Description     string    `json:"description"`
	Stars           int       `json:"stars"`
	Forks           int       `json:"forks"`
	Watchers        int       `json:"watchers"`
	PrimaryLanguage string    `json:"primary_language"`
	License         string    `json:"license"`
	UpdatedAt       time.Time `json:"updated_at"`
	CreatedAt       time.Time `json:"created_at"`
	URL             string    `json:"url"`
	DefaultBranch   string    `json:"default_branch"`
	Size            int       `json:"size"`
	OpenIssuesCount int       `json:"open_issues_count"`
}

// Contributor represents a repository contributor, ordered by the provider
// (descending contributions).
type Contributor struct {
	Login         string `json:"login"`
	ID            int64  `json:"id"`
	AvatarURL     string `json:"avatar_url"`
	URL           string `json:"url"`
	Contributions int    `json:"contributions"`
}

// WeekActivity is one week of commit activity. Week is the Unix timestamp of
// the week start (Sunday 00:00 UTC, the provider's convention); Days holds
// per-day totals with index 0 = Sunday.
type WeekActivity struct {
	Week  int64 `json:"week"`
	Total int   `json:"total"`
	Days  []int `json:"days"`
}

// FileNode is one entry in a repository tree. Children is populated only for
// directories that were expanded: nil means the directory was not descended
// into (depth or sibling cap), an empty non-nil slice means the descent was
// attempted and yielded nothing or failed.
type FileNode struct {
	Name     string     `json:"name"`
	Path     string     `json:"path"`
	Kind     NodeKind   `json:"kind"`
	Size     int        `json:"size,omitempty"`
	Children []FileNode `json:"children"`
}

// FileContent is the decoded content of a single file. Skipped is set when
// the path classifier short-circuited the fetch without a network call.
type FileContent struct {
	Name    string `json:"name"`
	Path    string `json:"path"`
	Size    int    `json:"size"`
	Content string `json:"content"`
	Skipped bool   `json:"skipped,omitempty"`
}

// RateLimitSnapshot is the most recently observed quota window.
type RateLimitSnapshot struct {
	Limit         int   `json:"limit"`
	Remaining     int   `json:"remaining"`
	ResetAt       int64 `json:"reset_at"` // unix seconds
	Authenticated bool  `json:"authenticated"`
}

// apiRepoResponse is the raw GitHub API response for repository details.
type apiRepoResponse struct {
	Name        string `json:"name"`
	FullName    string `json:"full_name"`
	Description string `json:"description"`
	Owner       struct {
		Login string `json:"login"`
	} `json:"owner"`
	Stars    int `json:"stargazers_count"`
	Forks    int `json:"forks_count"`
	Watchers int `json:"watchers_count"`
	License  struct {
		SPDXID string `json:"spdx_id"`
	} `json:"license"`
	Language      string    `json:"language"`
	UpdatedAt     time.Time `json:"updated_at"`
	CreatedAt     time.Time `json:"created_at"`
	HTMLURL       string    `json:"html_url"`
	DefaultBranch string    `json:"default_branch"`
	Size          int       `json:"size"`
	OpenIssues    int       `json:"open_issues_count"`
}

// apiContributorResponse is the raw GitHub API response for one contributor.
type apiContributorResponse struct {
	Login         string `json:"login"`
	ID            int64  `json:"id"`
	AvatarURL     string `json:"avatar_url"`
	HTMLURL       string `json:"html_url"`
	Contributions int    `json:"contributions"`
	Type          string `json:"type"`
}

// apiWeekActivity is the raw GitHub API response for one week of the
// commit_activity statistic.
type apiWeekActivity struct {
	Week  int64 `json:"week"`
	Total int   `json:"total"`
	Days  []int `json:"days"`
}

// apiContentResponse is the raw GitHub API response for a content entry.
type apiContentResponse struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	Type     string `json:"type"` // "file", "dir", "symlink", "submodule"
	Size     int    `json:"size"`
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

// apiCommitResponse is the raw GitHub API response for one commit, reduced
// to the fields the activity fallback needs.
type apiCommitResponse struct {
	SHA    string `json:"sha"`
	Commit struct {
		Author struct {
			Date time.Time `json:"date"`
		} `json:"author"`
	} `json:"commit"`
}

// apiRateLimitResponse is the raw GitHub API response for the rate_limit
// endpoint.
type apiRateLimitResponse struct {
	Resources struct {
		Core struct {
			Limit     int   `json:"limit"`
			Remaining int   `json:"remaining"`
			Reset     int64 `json:"reset"`
		} `json:"core"`
	} `json:"resources"`
}
