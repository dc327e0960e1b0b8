package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeIdentity(t *testing.T) {
	b := Branch{
		"vacation": Alias("/data/photos/vacation"),
		"and":      Branch{"trip": Branch{"vacation": Alias("/data/photos/vacation")}},
	}

	assert.Equal(t, Node(b), Merge(Branch{}, b))
	assert.Equal(t, Node(b), Merge(b, Branch{}))
}

func TestMergeAliasWins(t *testing.T) {
	alias := Alias("/data/a")
	branch := Branch{"x": Alias("/data/x")}

	assert.Equal(t, Node(alias), Merge(alias, branch), "left alias wins")
	assert.Equal(t, Node(alias), Merge(branch, alias), "right alias wins over a branch")
}

func TestMergeAliasCollisionLeftWins(t *testing.T) {
	left := Branch{"x": Alias("/a/x")}
	right := Branch{"x": Alias("/b/x")}

	merged := Merge(left, right).(Branch)
	assert.Equal(t, Node(Alias("/a/x")), merged["x"])

	// Reversed fold order picks the other side; the collision is a
	// caller-level naming conflict, not an invariant violation.
	merged = Merge(right, left).(Branch)
	assert.Equal(t, Node(Alias("/b/x")), merged["x"])
}

func TestMergeUnionsBranches(t *testing.T) {
	left := Branch{
		"and": Branch{"trip": Branch{"a": Alias("/data/a")}},
		"a":   Alias("/data/a"),
	}
	right := Branch{
		"and": Branch{"trip": Branch{"b": Alias("/data/b")}},
		"b":   Alias("/data/b"),
	}

	merged := Merge(left, right).(Branch)
	require.Contains(t, merged, "a")
	require.Contains(t, merged, "b")

	trip := merged["and"].(Branch)["trip"].(Branch)
	assert.Equal(t, Node(Alias("/data/a")), trip["a"])
	assert.Equal(t, Node(Alias("/data/b")), trip["b"])
}

func TestMergeAssociative(t *testing.T) {
	a := Build("/data/a", Combinations([]string{"trip"}))
	b := Build("/data/b", Combinations([]string{"trip", "outdoor"}))
	c := Build("/data/c", Combinations([]string{"outdoor"}))

	leftFirst := Merge(Merge(a, b), c)
	rightFirst := Merge(a, Merge(b, c))
	assert.Equal(t, leftFirst, rightFirst)
}

func TestMergeDoesNotMutateOperands(t *testing.T) {
	left := Branch{"shared": Branch{"a": Alias("/data/a")}}
	right := Branch{"shared": Branch{"b": Alias("/data/b")}}

	_ = Merge(left, right)

	assert.NotContains(t, left["shared"].(Branch), "b")
	assert.NotContains(t, right["shared"].(Branch), "a")
}
