// Package discovery locates module references in a namespace.Host by
// directory convention.
//
// Each Root names a subtree and a filter. A module leaf below the root is
// kept when its immediate parent is named after the root's keyword, or, for
// roots that list acceptable ancestors, when any folder between the leaf and
// the root carries one of those names. Roots are scanned in order and their
// matches concatenated without de-duplication, so a module reachable from two
// overlapping roots is returned twice.
package discovery
