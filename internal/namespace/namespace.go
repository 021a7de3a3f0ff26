package namespace

import (
	"context"
	"errors"
)

var (
	// ErrDiscoveryUnavailable is returned when a node did not appear before
	// the caller's context ended.
	ErrDiscoveryUnavailable = errors.New("namespace node unavailable")

	// ErrNotFound is returned by hosts that can tell a node will never appear.
	ErrNotFound = errors.New("namespace node not found")
)

// Node is a single entry of the namespace tree.
type Node interface {
	// Name is the display name. For module leaves it is the module name.
	Name() string
	// Path is the slash separated location relative to the host root.
	Path() string
	// Parent returns nil for the host root.
	Parent() Node
	// IsModule reports whether the node is a loadable unit.
	IsModule() bool
}

// Host is the storage that exposes the module tree.
type Host interface {
	// WaitForNode returns the node at path, blocking until it exists or ctx
	// is done.
	WaitForNode(ctx context.Context, path string) (Node, error)
	// Descendants returns every node below n in enumeration order.
	Descendants(ctx context.Context, n Node) ([]Node, error)
	// IsDescendantOf reports whether a sits anywhere below b.
	IsDescendantOf(a, b Node) bool
}

// Ancestors returns the parent chain of n, nearest first.
func Ancestors(n Node) []Node {
	var out []Node
	for p := n.Parent(); p != nil; p = p.Parent() {
		out = append(out, p)
	}
	return out
}

// IsDescendantOf walks a's parent chain looking for b by path. Hosts may use
// it to implement Host.IsDescendantOf.
func IsDescendantOf(a, b Node) bool {
	if a == nil || b == nil {
		return false
	}
	for p := a.Parent(); p != nil; p = p.Parent() {
		if p.Path() == b.Path() {
			return true
		}
	}
	return false
}
