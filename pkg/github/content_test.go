package github

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"sync/atomic"
	"testing"

	apperr "github.com/mkessler/repolens/pkg/errors"
)

func contentsHandler(t *testing.T, listings map[string]string) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := listings[r.URL.Path]
		if !ok {
			http.Error(w, `{"message":"Not Found"}`, http.StatusNotFound)
			return
		}
		fmt.Fprint(w, body)
	})
}

func TestListContents(t *testing.T) {
	c := newTestClient(t, contentsHandler(t, map[string]string{
		"/repos/golang/go/contents": `[
			{"name": "main.go", "path": "main.go", "type": "file", "size": 120},
			{"name": "src", "path": "src", "type": "dir"},
			{"name": "README.md", "path": "README.md", "type": "file", "size": 800},
			{"name": "api", "path": "api", "type": "dir"}
		]`,
	}), Options{})

	nodes, err := c.ListContents(context.Background(), RepoRef{Owner: "golang", Name: "go"}, "")
	if err != nil {
		t.Fatalf("ListContents: %v", err)
	}

	wantOrder := []string{"api", "src", "README.md", "main.go"}
	if len(nodes) != len(wantOrder) {
		t.Fatalf("got %d nodes, want %d", len(nodes), len(wantOrder))
	}
	for i, name := range wantOrder {
		if nodes[i].Name != name {
			t.Errorf("nodes[%d] = %q, want %q (directories first, then alphabetical)", i, nodes[i].Name, name)
		}
	}
	if nodes[0].Kind != KindDirectory || nodes[3].Kind != KindFile {
		t.Errorf("unexpected kinds: %v", nodes)
	}
}

func TestListContents_DegradesToEmptyOnMissingPath(t *testing.T) {
	c := newTestClient(t, contentsHandler(t, nil), Options{})

	nodes, err := c.ListContents(context.Background(), RepoRef{Owner: "golang", Name: "go"}, "no/such/dir")
	if err != nil {
		t.Fatalf("ListContents should degrade, got %v", err)
	}
	if nodes == nil || len(nodes) != 0 {
		t.Errorf("got %v, want empty non-nil slice", nodes)
	}
}

func TestListContents_RejectsTraversal(t *testing.T) {
	c := newTestClient(t, contentsHandler(t, nil), Options{})

	_, err := c.ListContents(context.Background(), RepoRef{Owner: "golang", Name: "go"}, "../etc")
	if !apperr.Is(err, apperr.ErrCodeInvalidPath) {
		t.Fatalf("error = %v, want INVALID_PATH", err)
	}
}

func TestFileContent(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte("package main\n"))
	c := newTestClient(t, contentsHandler(t, map[string]string{
		"/repos/golang/go/contents/main.go": fmt.Sprintf(
			`{"name": "main.go", "path": "main.go", "type": "file", "size": 13, "content": %q, "encoding": "base64"}`, encoded),
	}), Options{})

	fc, err := c.FileContent(context.Background(), RepoRef{Owner: "golang", Name: "go"}, "main.go")
	if err != nil {
		t.Fatalf("FileContent: %v", err)
	}
	if fc.Content != "package main\n" {
		t.Errorf("Content = %q", fc.Content)
	}
	if fc.Skipped {
		t.Error("fetched file should not be marked skipped")
	}
}

func TestFileContent_WrappedBase64(t *testing.T) {
	// GitHub wraps base64 payloads with newlines every 60 characters.
	encoded := base64.StdEncoding.EncodeToString([]byte("line one is long enough to force the encoder past one chunk\n"))
	wrapped := encoded[:40] + "\n" + encoded[40:] + "\n"
	c := newTestClient(t, contentsHandler(t, map[string]string{
		"/repos/golang/go/contents/big.txt": fmt.Sprintf(
			`{"name": "big.txt", "path": "big.txt", "type": "file", "size": 61, "content": %q, "encoding": "base64"}`, wrapped),
	}), Options{})

	fc, err := c.FileContent(context.Background(), RepoRef{Owner: "golang", Name: "go"}, "big.txt")
	if err != nil {
		t.Fatalf("FileContent: %v", err)
	}
	if fc.Content != "line one is long enough to force the encoder past one chunk\n" {
		t.Errorf("Content = %q", fc.Content)
	}
}

func TestFileContent_SkipsBinaryWithoutNetworkCall(t *testing.T) {
	var calls int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}), Options{})

	fc, err := c.FileContent(context.Background(), RepoRef{Owner: "golang", Name: "go"}, "assets/logo.png")
	if err != nil {
		t.Fatalf("FileContent: %v", err)
	}
	if !fc.Skipped {
		t.Error("binary path should be marked skipped")
	}
	if fc.Content != "" {
		t.Errorf("skipped file should carry no content, got %q", fc.Content)
	}
	if got := atomic.LoadInt32(&calls); got != 0 {
		t.Errorf("server saw %d requests, want 0", got)
	}
}

func TestFileContent_NotFound(t *testing.T) {
	c := newTestClient(t, contentsHandler(t, nil), Options{})

	_, err := c.FileContent(context.Background(), RepoRef{Owner: "golang", Name: "go"}, "missing.go")
	if !apperr.Is(err, apperr.ErrCodeFileNotFound) {
		t.Fatalf("error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestFileContent_EmptyPathRejected(t *testing.T) {
	c := newTestClient(t, contentsHandler(t, nil), Options{})

	_, err := c.FileContent(context.Background(), RepoRef{Owner: "golang", Name: "go"}, "")
	if !apperr.Is(err, apperr.ErrCodeInvalidPath) {
		t.Fatalf("error = %v, want INVALID_PATH", err)
	}
}

func TestBuildTree_DepthCap(t *testing.T) {
	c := newTestClient(t, contentsHandler(t, map[string]string{
		"/repos/golang/go/contents": `[
			{"name": "src", "path": "src", "type": "dir"},
			{"name": "main.go", "path": "main.go", "type": "file", "size": 10}
		]`,
		"/repos/golang/go/contents/src": `[
			{"name": "inner", "path": "src/inner", "type": "dir"},
			{"name": "lib.go", "path": "src/lib.go", "type": "file", "size": 20}
		]`,
		"/repos/golang/go/contents/src/inner": `[
			{"name": "deep.go", "path": "src/inner/deep.go", "type": "file", "size": 5}
		]`,
	}), Options{})

	tree, err := c.BuildTree(context.Background(), RepoRef{Owner: "golang", Name: "go"}, "", 2)
	if err != nil {
		t.Fatalf("BuildTree: %v", err)
	}
	if len(tree) != 2 {
		t.Fatalf("got %d root nodes, want 2", len(tree))
	}

	src := tree[0]
	if src.Name != "src" || src.Children == nil {
		t.Fatalf("src should be expanded, got %+v", src)
	}
	inner := src.Children[0]
	if inner.Name != "inner" {
		t.Fatalf("unexpected child %+v", inner)
	}
	if inner.Children != nil {
		t.Errorf("inner sits at the depth cap and must not be descended, got %v", inner.Children)
	}
}

func TestBuildTree_SiblingDirCap(t *testing.T) {
	root := `[
		{"name": "a", "path": "a", "type": "dir"},
		{"name": "b", "path": "b", "type": "dir"},
		{"name": "c", "path": "c", "type": "dir"}
	]`
	child := `[{"name": "f.go", "path": "%s/f.go", "type": "file", "size": 1}]`
	c := newTestClient(t, contentsHandler(t, map[string]string{
		"/repos/golang/go/contents":   root,
		"/repos/golang/go/contents/a": fmt.Sprintf(child, "a"),
		"/repos/golang/go/contents/b": fmt.Sprintf(child, "b"),
		"/repos/golang/go/contents/c": fmt.Sprintf(child, "c"),
	}), Options{TreeDirLimit: 2})

	tree, err := c.BuildTree(context.Background(), RepoRef{Owner: "golang", Name: "go"}, "", 3)
	if err != nil {
		t.Fatalf("BuildTree: %v", err)
	}

	if tree[0].Children == nil || tree[1].Children == nil {
		t.Error("first two directories should be expanded")
	}
	if tree[2].Children != nil {
		t.Errorf("third directory exceeds the sibling cap and must stay unexpanded, got %v", tree[2].Children)
	}
}

func TestBuildTree_FailedDirectoryGetsEmptyChildren(t *testing.T) {
	c := newTestClient(t, contentsHandler(t, map[string]string{
		"/repos/golang/go/contents": `[
			{"name": "ok", "path": "ok", "type": "dir"},
			{"name": "broken", "path": "broken", "type": "dir"}
		]`,
		"/repos/golang/go/contents/ok": `[{"name": "f.go", "path": "ok/f.go", "type": "file", "size": 1}]`,
	}), Options{})

	tree, err := c.BuildTree(context.Background(), RepoRef{Owner: "golang", Name: "go"}, "", 2)
	if err != nil {
		t.Fatalf("BuildTree: %v", err)
	}

	var ok, broken *FileNode
	for i := range tree {
		switch tree[i].Name {
		case "ok":
			ok = &tree[i]
		case "broken":
			broken = &tree[i]
		}
	}
	if ok == nil || broken == nil {
		t.Fatalf("unexpected tree %+v", tree)
	}
	if len(ok.Children) != 1 {
		t.Errorf("ok.Children = %v, want one file", ok.Children)
	}
	if broken.Children == nil || len(broken.Children) != 0 {
		t.Errorf("broken.Children = %v, want empty non-nil slice", broken.Children)
	}
}

func TestBuildTree_SkipsVendoredDirectories(t *testing.T) {
	var nodeModulesFetched atomic.Bool
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/repos/golang/go/contents":
			fmt.Fprint(w, `[
				{"name": "node_modules", "path": "node_modules", "type": "dir"},
				{"name": "src", "path": "src", "type": "dir"}
			]`)
		case "/repos/golang/go/contents/src":
			fmt.Fprint(w, `[]`)
		case "/repos/golang/go/contents/node_modules":
			nodeModulesFetched.Store(true)
			fmt.Fprint(w, `[]`)
		default:
			http.Error(w, `{"message":"Not Found"}`, http.StatusNotFound)
		}
	}), Options{})

	tree, err := c.BuildTree(context.Background(), RepoRef{Owner: "golang", Name: "go"}, "", 2)
	if err != nil {
		t.Fatalf("BuildTree: %v", err)
	}
	if nodeModulesFetched.Load() {
		t.Error("node_modules must not be descended into")
	}
	for _, node := range tree {
		if node.Name == "node_modules" && node.Children != nil {
			t.Errorf("node_modules children = %v, want nil", node.Children)
		}
	}
}

func TestBuildTree_InvalidDepth(t *testing.T) {
	c := newTestClient(t, contentsHandler(t, nil), Options{})

	_, err := c.BuildTree(context.Background(), RepoRef{Owner: "golang", Name: "go"}, "", 0)
	if !apperr.Is(err, apperr.ErrCodeInvalidInput) {
		t.Fatalf("error = %v, want INVALID_INPUT", err)
	}
}
