package memtree

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/modboot/internal/namespace"
)

func TestAddAndDescendants(t *testing.T) {
	tree := New()
	tree.AddModule("src/services/X")
	tree.AddModule("src/services/Y")
	tree.Add("src/util")
	tree.AddModule("src/controllers/Z")

	src, err := tree.WaitForNode(context.Background(), "src")
	require.NoError(t, err)

	nodes, err := tree.Descendants(context.Background(), src)
	require.NoError(t, err)

	var paths []string
	for _, n := range nodes {
		paths = append(paths, n.Path())
	}
	assert.Equal(t, []string{
		"src/services",
		"src/services/X",
		"src/services/Y",
		"src/util",
		"src/controllers",
		"src/controllers/Z",
	}, paths)
	assert.True(t, nodes[1].IsModule())
	assert.False(t, nodes[0].IsModule())
	assert.Equal(t, "services", nodes[1].Parent().Name())
}

func TestAddIsIdempotent(t *testing.T) {
	tree := New()
	a := tree.AddModule("src/services/X")
	b := tree.AddModule("/src/services/X/")
	assert.Same(t, a, b)

	src, err := tree.WaitForNode(context.Background(), "src")
	require.NoError(t, err)
	nodes, err := tree.Descendants(context.Background(), src)
	require.NoError(t, err)
	assert.Len(t, nodes, 2)
}

func TestWaitForNodeBlocksUntilAdded(t *testing.T) {
	tree := New()
	go func() {
		time.Sleep(20 * time.Millisecond)
		tree.AddModule("shared/src/services/Late")
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	n, err := tree.WaitForNode(ctx, "shared/src")
	require.NoError(t, err)
	assert.Equal(t, "src", n.Name())
}

func TestWaitForNodeTimesOut(t *testing.T) {
	tree := New()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := tree.WaitForNode(ctx, "never")
	assert.ErrorIs(t, err, namespace.ErrDiscoveryUnavailable)
}

func TestIsDescendantOf(t *testing.T) {
	tree := New()
	leaf := tree.AddModule("src/services/X")
	src := tree.Add("src")
	other := tree.Add("other")

	assert.True(t, tree.IsDescendantOf(leaf, src))
	assert.False(t, tree.IsDescendantOf(leaf, other))
	assert.True(t, tree.IsDescendantOf(leaf, tree.root))
}

func TestAddModuleOverExistingFolder(t *testing.T) {
	tree := New()
	folder := tree.Add("src/services/X")
	require.False(t, folder.IsModule())

	mod := tree.AddModule("src/services/X")
	assert.Same(t, folder, mod)
	assert.True(t, mod.IsModule())

	// Adding the folder again does not demote the module.
	assert.True(t, tree.Add("src/services/X").IsModule())
}
