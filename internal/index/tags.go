package index

import "strings"

// parseTags reads a tags file body: UTF-8 text, one tag per line, blank
// lines ignored. No comment syntax, no quoting. Duplicates and order are
// preserved as read.
func parseTags(data []byte) []string {
	var tags []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		tags = append(tags, line)
	}
	return tags
}
