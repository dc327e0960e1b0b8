package tree

import "strings"

// QuerySegment is the literal path component injected before every tag in
// a combination path. Placing it before the first tag as well makes every
// resolved prefix a further query-expansion point: descending past
// "and/<tag>" exposes "and" again for the next filter.
const QuerySegment = "and"

// Combinations expands one file's tag list into every browsable
// combination path: for every ordered arrangement of every subset of the
// tags, the path "and", tag segments, "and", next tag's segments, and so
// on. The empty subset yields the empty path, the direct unfiltered route
// to the tagged directory.
//
// Tags may contain "/"-separated segments; empty segments are discarded.
// Duplicate tags and their original order are preserved as given, so n
// tags always produce 1 + sum over k of n!/(n-k)! paths. The factorial
// growth is inherent to exposing every ordering and is not bounded here.
func Combinations(tags []string) [][]string {
	groups := make([][]string, len(tags))
	for i, tag := range tags {
		groups[i] = splitTag(tag)
	}

	var paths [][]string
	for _, subset := range subsets(groups) {
		for _, ordering := range permutations(subset) {
			var path []string
			for _, group := range ordering {
				path = append(path, QuerySegment)
				path = append(path, group...)
			}
			paths = append(paths, path)
		}
	}
	return paths
}

// splitTag breaks a tag into its path segments, dropping empties so that
// "a//b/" and "a/b" are the same hierarchical tag.
func splitTag(tag string) []string {
	var segments []string
	for _, segment := range strings.Split(tag, "/") {
		if segment != "" {
			segments = append(segments, segment)
		}
	}
	return segments
}

// subsets enumerates every subset of groups, including the empty one,
// preserving each chosen element's relative position.
func subsets(groups [][]string) [][][]string {
	n := len(groups)
	out := make([][][]string, 0, 1<<uint(n))
	for mask := 0; mask < 1<<uint(n); mask++ {
		var subset [][]string
		for i := 0; i < n; i++ {
			if mask&(1<<uint(i)) != 0 {
				subset = append(subset, groups[i])
			}
		}
		out = append(out, subset)
	}
	return out
}

// permutations enumerates every ordering of groups. The empty input has
// exactly one ordering, the empty one.
func permutations(groups [][]string) [][][]string {
	if len(groups) == 0 {
		return [][][]string{nil}
	}

	var out [][][]string
	for i := range groups {
		rest := make([][]string, 0, len(groups)-1)
		rest = append(rest, groups[:i]...)
		rest = append(rest, groups[i+1:]...)
		for _, perm := range permutations(rest) {
			ordering := make([][]string, 0, len(groups))
			ordering = append(ordering, groups[i])
			ordering = append(ordering, perm...)
			out = append(out, ordering)
		}
	}
	return out
}
