package fs

import (
	"strings"

	"tagfs/internal/tree"
)

// splitPath breaks a virtual path into its non-empty segments.
func splitPath(path string) []string {
	var segments []string
	for _, segment := range strings.Split(path, "/") {
		if segment != "" {
			segments = append(segments, segment)
		}
	}
	return segments
}

// resolve descends one segment at a time from the snapshot root. It fails
// with ErrNotFound when a segment is absent or when descent is attempted
// past an alias. The empty path resolves to the root itself.
func resolve(root tree.Branch, path string) (tree.Node, error) {
	var node tree.Node = root
	for _, segment := range splitPath(path) {
		branch, ok := node.(tree.Branch)
		if !ok {
			return nil, NewError(OpLookup, path, ErrNotFound)
		}
		child, ok := branch[segment]
		if !ok {
			return nil, NewError(OpLookup, path, ErrNotFound)
		}
		node = child
	}
	return node, nil
}

// joinPath appends one segment to a virtual path.
func joinPath(path, name string) string {
	if path == "/" {
		return "/" + name
	}
	return path + "/" + name
}
