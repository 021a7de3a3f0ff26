package discovery

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/vk/modboot/internal/ctxlog"
	"github.com/vk/modboot/internal/namespace"
)

// Root is one subtree to scan and the filter applied to its modules.
type Root struct {
	Path string
	// Keyword is the required name of a module's immediate parent. Ignored
	// when Ancestors is non-empty.
	Keyword string
	// Ancestors lists folder names of which at least one must appear between
	// the module and the root.
	Ancestors []string
}

// ModuleRef is an immutable reference to a module that has not been loaded
// yet.
type ModuleRef struct {
	Name string
	Path string
	Node namespace.Node
}

// String returns the module name with its location.
func (r ModuleRef) String() string {
	return fmt.Sprintf("%s (%s)", r.Name, r.Path)
}

// Discover scans every root in order and returns the matching module
// references. Nodes the host enumerates outside the root's subtree are
// ignored. A root reported missing by the host is skipped. A root that never
// becomes available aborts discovery with an error wrapping
// namespace.ErrDiscoveryUnavailable.
func Discover(ctx context.Context, host namespace.Host, roots []Root) ([]ModuleRef, error) {
	logger := ctxlog.FromContext(ctx)
	var refs []ModuleRef

	for _, root := range roots {
		rootNode, err := host.WaitForNode(ctx, root.Path)
		if err != nil {
			if errors.Is(err, namespace.ErrNotFound) {
				logger.Debug("Discovery root missing, skipping.", "root", root.Path)
				continue
			}
			return nil, fmt.Errorf("failed to resolve discovery root %q: %w", root.Path, err)
		}

		nodes, err := host.Descendants(ctx, rootNode)
		if err != nil {
			return nil, fmt.Errorf("failed to enumerate discovery root %q: %w", root.Path, err)
		}

		found := 0
		for _, n := range nodes {
			if !n.IsModule() {
				continue
			}
			if !host.IsDescendantOf(n, rootNode) {
				logger.Debug("Ignoring node outside discovery root.", "root", root.Path, "node", n.Path())
				continue
			}
			if !root.matches(n, rootNode) {
				continue
			}
			refs = append(refs, ModuleRef{Name: n.Name(), Path: n.Path(), Node: n})
			found++
		}
		logger.Debug("Discovery root scanned.", "root", root.Path, "nodes", len(nodes), "modules", found)
	}

	logger.Debug("Discovery finished.", "modules", len(refs))
	return refs, nil
}

func (r Root) matches(n, rootNode namespace.Node) bool {
	if len(r.Ancestors) == 0 {
		parent := n.Parent()
		return parent != nil && parent.Name() == r.Keyword
	}
	for _, a := range namespace.Ancestors(n) {
		if a.Path() == rootNode.Path() {
			break
		}
		if slices.Contains(r.Ancestors, a.Name()) {
			return true
		}
	}
	return false
}
