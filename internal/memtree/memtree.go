// Package memtree provides a thread-safe, in-memory namespace.Host. It is
// used by tests and by embedders that assemble their module tree in code
// instead of on disk.
package memtree

import (
	"context"
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/vk/modboot/internal/namespace"
)

// Tree is an in-memory namespace.Host.
//
// Children keep insertion order, which is also the enumeration order of
// Descendants.
type Tree struct {
	mu      sync.RWMutex
	root    *node
	byPath  map[string]*node
	changed chan struct{}
}

// New creates an empty tree whose root node is named "root".
func New() *Tree {
	root := &node{name: "root"}
	return &Tree{
		root:    root,
		byPath:  map[string]*node{"": root},
		changed: make(chan struct{}),
	}
}

// Add creates the folder at p together with any missing parents.
func (t *Tree) Add(p string) namespace.Node {
	return t.add(p, false)
}

// AddModule creates a module leaf at p. The last path element is the module
// name. An existing folder at p becomes a module.
func (t *Tree) AddModule(p string) namespace.Node {
	return t.add(p, true)
}

func (t *Tree) add(p string, module bool) namespace.Node {
	p = cleanPath(p)

	t.mu.Lock()
	defer t.mu.Unlock()

	if n, ok := t.byPath[p]; ok {
		if module && !n.module {
			n.module = true
			t.notify()
		}
		return n
	}
	cur := t.root
	parts := strings.Split(p, "/")
	for i, part := range parts {
		full := strings.Join(parts[:i+1], "/")
		next, ok := t.byPath[full]
		if !ok {
			next = &node{name: part, path: full, parent: cur}
			cur.children = append(cur.children, next)
			t.byPath[full] = next
		}
		cur = next
	}
	cur.module = module
	t.notify()
	return cur
}

// notify wakes every WaitForNode call. t.mu must be held.
func (t *Tree) notify() {
	close(t.changed)
	t.changed = make(chan struct{})
}

// WaitForNode implements namespace.Host.
func (t *Tree) WaitForNode(ctx context.Context, p string) (namespace.Node, error) {
	p = cleanPath(p)
	for {
		t.mu.RLock()
		n, ok := t.byPath[p]
		changed := t.changed
		t.mu.RUnlock()
		if ok {
			return n, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %q: %v", namespace.ErrDiscoveryUnavailable, p, ctx.Err())
		case <-changed:
		}
	}
}

// Descendants implements namespace.Host. Enumeration is depth-first in
// insertion order.
func (t *Tree) Descendants(ctx context.Context, n namespace.Node) ([]namespace.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	start, ok := t.byPath[cleanPath(n.Path())]
	if !ok {
		return nil, fmt.Errorf("%w: %q", namespace.ErrNotFound, n.Path())
	}
	var out []namespace.Node
	var walk func(*node)
	walk = func(cur *node) {
		for _, c := range cur.children {
			out = append(out, c)
			walk(c)
		}
	}
	walk(start)
	return out, nil
}

// IsDescendantOf implements namespace.Host.
func (t *Tree) IsDescendantOf(a, b namespace.Node) bool {
	return namespace.IsDescendantOf(a, b)
}

func cleanPath(p string) string {
	return strings.TrimPrefix(path.Clean("/"+p), "/")
}

type node struct {
	name     string
	path     string
	module   bool
	parent   *node
	children []*node
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
