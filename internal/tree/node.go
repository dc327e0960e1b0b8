// Package tree defines the virtual directory tree that tagged directories
// are published into: a recursive structure of named branches terminating
// in symlink aliases to real directories.
//
// The package is pure data manipulation. It performs no I/O and holds no
// locks; the index package owns concurrency.
package tree

// Node is one node of the virtual tree, either a Branch or an Alias.
type Node interface {
	node()
}

// Branch is a virtual directory: a mapping from entry name to child node.
// Names are unique within one Branch; insertion order is irrelevant.
type Branch map[string]Node

// Alias is a virtual symbolic link to a real directory. An Alias is
// always a leaf.
type Alias string

func (Branch) node() {}
func (Alias) node()  {}

// Merge combines two trees into one. It is associative, with the empty
// Branch as identity. An Alias always wins over further expansion, left
// operand first; two Branches union their entries, merging children that
// share a name. Neither operand is mutated.
//
// Two distinct Aliases can only collide when two directories share a base
// name and an identical tag combination; the left operand wins, and the
// caller resolves the conflict by renaming.
func Merge(a, b Node) Node {
	if alias, ok := a.(Alias); ok {
		return alias
	}
	if alias, ok := b.(Alias); ok {
		return alias
	}

	left := a.(Branch)
	right := b.(Branch)
	merged := make(Branch, len(left)+len(right))
	for name, child := range left {
		merged[name] = child
	}
	for name, child := range right {
		if existing, ok := merged[name]; ok {
			merged[name] = Merge(existing, child)
		} else {
			merged[name] = child
		}
	}
	return merged
}
