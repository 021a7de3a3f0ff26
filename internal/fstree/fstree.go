// Package fstree exposes a directory on disk as a namespace.Host. Directories
// are folders of the namespace and manifest files are module leaves.
package fstree

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/vk/modboot/internal/fsutil"
	"github.com/vk/modboot/internal/namespace"
)

const (
	DefaultExtension    = ".hcl"
	DefaultPollInterval = 100 * time.Millisecond
)

// Host is a namespace.Host backed by the file system.
type Host struct {
	root         string
	ext          string
	pollInterval time.Duration
}

// Option configures a Host.
type Option func(*Host)

// WithExtension sets the file extension that marks a module manifest.
func WithExtension(ext string) Option {
	return func(h *Host) {
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		h.ext = ext
	}
}

// WithPollInterval sets how often WaitForNode checks for a missing path.
func WithPollInterval(d time.Duration) Option {
	return func(h *Host) { h.pollInterval = d }
}

// New creates a Host rooted at the given directory.
func New(root string, opts ...Option) *Host {
	h := &Host{
		root:         filepath.Clean(root),
		ext:          DefaultExtension,
		pollInterval: DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Root returns the directory the host is rooted at.
func (h *Host) Root() string { return h.root }

// FilePath maps a namespace path back to a path on disk.
func (h *Host) FilePath(p string) string {
	return filepath.Join(h.root, filepath.FromSlash(p))
}

// WaitForNode implements namespace.Host.
func (h *Host) WaitForNode(ctx context.Context, p string) (namespace.Node, error) {
	p = cleanPath(p)
	info, err := fsutil.WaitForPath(ctx, h.FilePath(p), h.pollInterval)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %q: %v", namespace.ErrDiscoveryUnavailable, p, err)
		}
		return nil, err
	}
	return h.nodeAt(p, info.IsDir()), nil
}

// Descendants implements namespace.Host.
func (h *Host) Descendants(ctx context.Context, n namespace.Node) ([]namespace.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	base, ok := n.(*node)
	if !ok {
		base = h.nodeAt(cleanPath(n.Path()), !n.IsModule())
	}
	if !base.dir {
		return nil, nil
	}

	entries, err := fsutil.WalkTree(h.FilePath(base.path))
	if err != nil {
		return nil, fmt.Errorf("failed to walk %q: %w", base.path, err)
	}

	byPath := map[string]*node{base.path: base}
	out := make([]namespace.Node, 0, len(entries))
	for _, e := range entries {
		full := path.Join(base.path, e.Rel)
		dir := path.Dir(full)
		if dir == "." {
			dir = ""
		}
		child := h.newNode(full, e.IsDir, byPath[dir])
		byPath[full] = child
		out = append(out, child)
	}
	return out, nil
}

// IsDescendantOf implements namespace.Host.
func (h *Host) IsDescendantOf(a, b namespace.Node) bool {
	return namespace.IsDescendantOf(a, b)
}

// nodeAt builds the node for p along with its full parent chain.
func (h *Host) nodeAt(p string, dir bool) *node {
	cur := h.newNode("", true, nil)
	if p == "" {
		return cur
	}
	parts := strings.Split(p, "/")
	for i := range parts {
		isLast := i == len(parts)-1
		cur = h.newNode(strings.Join(parts[:i+1], "/"), !isLast || dir, cur)
	}
	return cur
}

func (h *Host) newNode(p string, dir bool, parent *node) *node {
	n := &node{path: p, dir: dir, parent: parent}
	base := path.Base(p)
	if p == "" {
		base = filepath.Base(h.root)
	}
	if !dir && h.ext != "" && strings.HasSuffix(base, h.ext) {
		n.module = true
		base = strings.TrimSuffix(base, h.ext)
	}
	n.name = base
	return n
}

func cleanPath(p string) string {
	p = path.Clean("/" + filepath.ToSlash(p))
	return strings.TrimPrefix(p, "/")
}

type node struct {
	name   string
	path   string
	dir    bool
	module bool
	parent *node
}

func (n *node) Name() string   { return n.name }
func (n *node) Path() string   { return n.path }
func (n *node) IsModule() bool { return n.module }

func (n *node) Parent() namespace.Node {
	if n.parent == nil {
		return nil
	}
	return n.parent
}

// ReadFile returns the contents of the file behind a module node.
func (h *Host) ReadFile(n namespace.Node) ([]byte, error) {
	return os.ReadFile(h.FilePath(n.Path()))
}
