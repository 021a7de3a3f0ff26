// Package registry provides the central "glue" between module manifests and
// compiled Go code.
//
// A manifest found on disk names a factory (e.g., "NewInventoryService").
// The Registry maps those names to Go functions that build the module object.
// Module packages register their factories at startup through the Module
// interface, so the set of loadable modules is fixed at compile time while
// which of them actually boot is decided by the manifests present in the
// namespace.
package registry
