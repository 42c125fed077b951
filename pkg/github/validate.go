package github

import (
	"net/url"
	"regexp"
	"strings"

	apperr "github.com/mkessler/repolens/pkg/errors"
)

// Regex patterns for GitHub resource validation.
var (
	// GitHub usernames/orgs: 1-39 alphanumeric or hyphen, not starting with hyphen
	validOwner = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9-]{0,38}$`)
	// GitHub repo names: 1-100 alphanumeric, hyphen, underscore, or dot
	validRepo = regexp.MustCompile(`^[a-zA-Z0-9._-]{1,100}$`)
)

// ValidateOwner validates a GitHub username or organization name.
func ValidateOwner(owner string) error {
	if owner == "" {
		return apperr.New(apperr.ErrCodeInvalidRepoRef, "owner is required")
	}
	if !validOwner.MatchString(owner) {
		return apperr.New(apperr.ErrCodeInvalidRepoRef, "invalid owner format: must be 1-39 alphanumeric characters or hyphens, cannot start with hyphen")
	}
	return nil
}

// ValidateRepo validates a GitHub repository name.
func ValidateRepo(repo string) error {
	if repo == "" {
		return apperr.New(apperr.ErrCodeInvalidRepoRef, "repo is required")
	}
	if !validRepo.MatchString(repo) {
		return apperr.New(apperr.ErrCodeInvalidRepoRef, "invalid repo format: must be 1-100 alphanumeric characters, hyphens, underscores, or dots")
	}
	return nil
}

// ValidateRepoRef validates both owner and repo parameters.
func ValidateRepoRef(owner, repo string) error {
	if err := ValidateOwner(owner); err != nil {
		return err
	}
	return ValidateRepo(repo)
}

// ParseRepoRef parses an "owner/repo" string and validates both parts.
func ParseRepoRef(ref string) (RepoRef, error) {
	parts := strings.SplitN(ref, "/", 2)
	if len(parts) != 2 {
		return RepoRef{}, apperr.New(apperr.ErrCodeInvalidRepoRef, "invalid repo format: use owner/repo")
	}
	r := RepoRef{Owner: parts[0], Name: strings.TrimSuffix(parts[1], ".git")}
	if err := ValidateRepoRef(r.Owner, r.Name); err != nil {
		return RepoRef{}, err
	}
	return r, nil
}

// ParseRepoURL extracts a RepoRef from a full GitHub repository URL.
// The host must be github.com and the path must carry at least the owner and
// repository segments; anything after them (tree, blob, fragments) is ignored.
func ParseRepoURL(raw string) (RepoRef, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return RepoRef{}, apperr.Wrap(apperr.ErrCodeInvalidRepoRef, err, "invalid repository URL")
	}
	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	if host != "github.com" {
		return RepoRef{}, apperr.New(apperr.ErrCodeInvalidRepoRef, "invalid repository URL: host must be github.com")
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) < 2 || segments[0] == "" || segments[1] == "" {
		return RepoRef{}, apperr.New(apperr.ErrCodeInvalidRepoRef, "invalid repository URL: expected github.com/owner/repo")
	}
	return ParseRepoRef(segments[0] + "/" + segments[1])
}

// ValidateToken validates a personal access token's format: either the
// classic 40-character form or the "ghp_"-prefixed fine-grained form.
// Format validity says nothing about whether GitHub will accept the token;
// that is only known once a call succeeds or fails.
func ValidateToken(token string) error {
	if token == "" {
		return apperr.New(apperr.ErrCodeInvalidCredential, "token is required")
	}
	if len(token) == 40 || strings.HasPrefix(token, "ghp_") {
		return nil
	}
	return apperr.New(apperr.ErrCodeInvalidCredential, "invalid token format: expected a 40-character classic token or a ghp_-prefixed token")
}
