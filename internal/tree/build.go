package tree

import "path/filepath"

// Build constructs the subtree contributed by a single tagged directory:
// for each combination path, a chain of nested branches along its
// segments, then one more branch level keyed by the directory's own base
// name holding the Alias. Keying the terminal Alias by the directory name
// rather than linking at the path's end keeps two directories with the
// same combination path apart in the listing.
func Build(dir string, paths [][]string) Branch {
	name := filepath.Base(dir)
	merged := Branch{}
	for _, path := range paths {
		leaf := Node(Branch{name: Alias(dir)})
		for i := len(path) - 1; i >= 0; i-- {
			leaf = Branch{path[i]: leaf}
		}
		merged = Merge(merged, leaf).(Branch)
	}
	return merged
}
