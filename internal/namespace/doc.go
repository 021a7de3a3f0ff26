// Package namespace defines the hierarchical namespace that modules are
// discovered in. A Host stores a tree of named nodes; some of the leaves are
// loadable modules. Concrete hosts live in the fstree and memtree packages.
package namespace
