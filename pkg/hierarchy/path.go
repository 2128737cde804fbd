// Package hierarchy implements path display names and path-based name
// search over self-referential record trees. Location and Territory both
// build on it.
package hierarchy

import "strings"

// Separator joins ancestor names into a display path, root first.
const Separator = " / "

// JoinPath encodes an ancestor chain, root-to-leaf, into a display path.
func JoinPath(names []string) string {
	return strings.Join(names, Separator)
}

// SplitPath decodes a display path back into its segments, preserving
// order; the last segment is the leaf's own name. A name containing the
// literal separator corrupts the decode — no escaping is performed.
func SplitPath(path string) []string {
	return strings.Split(path, Separator)
}
