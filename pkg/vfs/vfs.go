// Package vfs locates named resources (charts, music) under a set of
// search roots and opens them.
package vfs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var ErrNotFound = errors.New("resource not found")

// Node is a located resource.
type Node interface {
	// Name is the base filename.
	Name() string
	// Path is the real filesystem path.
	Path() string
	Open() (io.ReadCloser, error)
}

type Resolver interface {
	Locate(name string) (Node, error)
}

// Logger is the subset of logging OpenFirst needs.
type Logger interface {
	Warnf(format string, args ...any)
}

type fileNode struct {
	path string
}

func (n fileNode) Name() string { return filepath.Base(n.path) }
func (n fileNode) Path() string { return n.path }

func (n fileNode) Open() (io.ReadCloser, error) {
	return os.Open(n.path)
}

// FS resolves names against an ordered list of directories.
type FS struct {
	roots []string
}

// NewFS returns a resolver over roots. With no roots the working directory
// is searched.
func NewFS(roots ...string) *FS {
	if len(roots) == 0 {
		roots = []string{"."}
	}
	return &FS{roots: roots}
}

// SplitPathList turns an OS path list (as in MUZ_SEARCH_PATH) into roots.
func SplitPathList(list string) []string {
	var roots []string
	for _, r := range filepath.SplitList(list) {
		if r = strings.TrimSpace(r); r != "" {
			roots = append(roots, r)
		}
	}
	return roots
}

func (fs *FS) Roots() []string { return append([]string(nil), fs.roots...) }

// Locate returns the first regular file named name under the roots.
// Absolute names are checked as-is.
func (fs *FS) Locate(name string) (Node, error) {
	if name == "" {
		return nil, fmt.Errorf("empty name: %w", ErrNotFound)
	}
	if filepath.IsAbs(name) {
		return statNode(name)
	}
	for _, root := range fs.roots {
		if n, err := statNode(filepath.Join(root, name)); err == nil {
			return n, nil
		}
	}
	return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
}

func statNode(path string) (Node, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory: %w", path, ErrNotFound)
	}
	return fileNode{path: path}, nil
}

// OpenFirst locates and opens the first candidate that succeeds. Failures of
// individual candidates are logged and skipped; only exhausting the list is
// an error.
func OpenFirst(r Resolver, candidates []string, log Logger) (Node, io.ReadCloser, error) {
	for _, c := range candidates {
		node, err := r.Locate(c)
		if err != nil {
			if log != nil {
				log.Warnf("couldn't locate %q: %v", c, err)
			}
			continue
		}
		rc, err := node.Open()
		if err != nil {
			if log != nil {
				log.Warnf("couldn't open %q: %v", node.Path(), err)
			}
			continue
		}
		return node, rc, nil
	}
	return nil, nil, fmt.Errorf("tried %d candidate(s) %q: %w", len(candidates), candidates, ErrNotFound)
}
