package github

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"path"
	"sort"
	"strings"

	apperr "github.com/mkessler/repolens/pkg/errors"
)

// ListContents fetches the flat listing of a directory, directories first
// and alphabetical within each kind. Missing or unreadable paths degrade to
// an empty listing; quota exhaustion propagates.
func (c *Client) ListContents(ctx context.Context, ref RepoRef, dir string) ([]FileNode, error) {
	nodes, err := c.listContents(ctx, ref, dir)
	if err != nil {
		if degradable(ctx, err) {
			return []FileNode{}, nil
		}
		return nil, err
	}
	return nodes, nil
}

// listContents is the error-returning listing used both by the public
// surface and by recursive tree building, which needs to distinguish a
// failed directory from an empty one.
func (c *Client) listContents(ctx context.Context, ref RepoRef, dir string) ([]FileNode, error) {
	if err := ValidateRepoRef(ref.Owner, ref.Name); err != nil {
		return nil, err
	}
	if err := apperr.ValidatePath(dir); err != nil {
		return nil, err
	}

	key := fmt.Sprintf("repo-contents:%s:%s", ref, dir)
	var nodes []FileNode
	err := c.cached(ctx, c.content, "repo-contents", key, &nodes, func(ctx context.Context) (any, error) {
		var raw []apiContentResponse
		if err := c.withRetry(ctx, func() error {
			return c.getJSON(ctx, contentsPath(ref, dir), &raw)
		}); err != nil {
			return nil, err
		}

		out := make([]FileNode, 0, len(raw))
		for _, entry := range raw {
			kind := KindFile
			if entry.Type == "dir" {
				kind = KindDirectory
			}
			out = append(out, FileNode{
				Name: entry.Name,
				Path: entry.Path,
				Kind: kind,
				Size: entry.Size,
			})
		}
		sortNodes(out)
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	if nodes == nil {
		nodes = []FileNode{}
	}
	return nodes, nil
}

// FileContent fetches and decodes a single file. Binary and generated paths
// are short-circuited by the classifier without a network call; oversized or
// non-base64 payloads come back with empty content rather than garbage.
func (c *Client) FileContent(ctx context.Context, ref RepoRef, filePath string) (*FileContent, error) {
	if err := ValidateRepoRef(ref.Owner, ref.Name); err != nil {
		return nil, err
	}
	if err := apperr.ValidatePath(filePath); err != nil {
		return nil, err
	}
	if filePath == "" {
		return nil, apperr.New(apperr.ErrCodeInvalidPath, "file path must not be empty")
	}

	if ShouldSkip(filePath) {
		return &FileContent{
			Name:    path.Base(filePath),
			Path:    filePath,
			Skipped: true,
		}, nil
	}

	key := fmt.Sprintf("file-content:%s:%s", ref, filePath)
	var content FileContent
	err := c.cached(ctx, c.content, "file-content", key, &content, func(ctx context.Context) (any, error) {
		var raw apiContentResponse
		if err := c.withRetry(ctx, func() error {
			return c.getJSON(ctx, contentsPath(ref, filePath), &raw)
		}); err != nil {
			return nil, err
		}
		if raw.Type == "dir" {
			return nil, apperr.New(apperr.ErrCodeInvalidPath, "%s is a directory", filePath)
		}

		fc := &FileContent{
			Name: raw.Name,
			Path: raw.Path,
			Size: raw.Size,
		}
		if raw.Encoding == "base64" {
			decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(raw.Content, "\n", ""))
			if err != nil {
				return nil, apperr.Wrap(apperr.ErrCodeFetchFailed, err, "decode content of %s", filePath)
			}
			fc.Content = string(decoded)
		} else {
			fc.Content = raw.Content
		}
		return fc, nil
	})
	if err != nil {
		if apperr.Is(err, apperr.ErrCodeNotFound) {
			return nil, apperr.Wrap(apperr.ErrCodeFileNotFound, err, "file %s not found in %s", filePath, ref)
		}
		return nil, err
	}
	return &content, nil
}

// BuildTree fetches a nested tree rooted at dir, descending at most maxDepth
// levels. Directories beyond the depth or sibling cap keep nil Children;
// directories whose own listing failed get empty non-nil Children so a
// renderer can tell the two apart. A quota rejection anywhere aborts the
// whole build.
func (c *Client) BuildTree(ctx context.Context, ref RepoRef, dir string, maxDepth int) ([]FileNode, error) {
	if maxDepth < 1 {
		return nil, apperr.New(apperr.ErrCodeInvalidInput, "tree depth must be at least 1, got %d", maxDepth)
	}

	key := fmt.Sprintf("file-tree:%s:%s:%d", ref, dir, maxDepth)
	var tree []FileNode
	err := c.cached(ctx, c.content, "file-tree", key, &tree, func(ctx context.Context) (any, error) {
		nodes, err := c.buildTreeLevel(ctx, ref, dir, 1, maxDepth)
		if err != nil {
			return nil, err
		}
		return nodes, nil
	})
	if err != nil {
		if degradable(ctx, err) {
			return []FileNode{}, nil
		}
		return nil, err
	}
	if tree == nil {
		tree = []FileNode{}
	}
	return tree, nil
}

func (c *Client) buildTreeLevel(ctx context.Context, ref RepoRef, dir string, depth, maxDepth int) ([]FileNode, error) {
	nodes, err := c.listContents(ctx, ref, dir)
	if err != nil {
		return nil, err
	}

	expanded := 0
	for i := range nodes {
		node := &nodes[i]
		if node.Kind != KindDirectory {
			continue
		}
		if depth >= maxDepth || expanded >= c.treeDirLimit || ShouldSkip(node.Path+"/") {
			continue
		}
		expanded++

		children, err := c.buildTreeLevel(ctx, ref, node.Path, depth+1, maxDepth)
		if err != nil {
			if apperr.Is(err, apperr.ErrCodeRateLimited) || ctx.Err() != nil {
				return nil, err
			}
			node.Children = []FileNode{}
			continue
		}
		node.Children = children
	}
	return nodes, nil
}

// sortNodes orders a listing directories first, then alphabetically.
func sortNodes(nodes []FileNode) {
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].Kind != nodes[j].Kind {
			return nodes[i].Kind == KindDirectory
		}
		return nodes[i].Name < nodes[j].Name
	})
}

func contentsPath(ref RepoRef, p string) string {
	base := repoPath(ref.Owner, ref.Name, "contents")
	if p == "" {
		return base
	}
	escaped := make([]string, 0, 4)
	for _, segment := range strings.Split(p, "/") {
		escaped = append(escaped, url.PathEscape(segment))
	}
	return base + "/" + strings.Join(escaped, "/")
}
