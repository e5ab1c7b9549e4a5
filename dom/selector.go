package dom

import (
	"slices"
	"strings"
)

// MatchesSelector reports whether an element satisfies a single simple
// pattern: "*", a tag name (case-insensitive), ".class" or "#id". Text
// nodes never match.
func MatchesSelector(n *Node, pattern string) bool {
	if !n.IsElement() {
		return false
	}
	pattern = strings.TrimSpace(pattern)
	switch {
	case pattern == "":
		return false
	case pattern == "*":
		return true
	case pattern[0] == '.':
		return len(pattern) > 1 && slices.Contains(n.ClassList(), pattern[1:])
	case pattern[0] == '#':
		return len(pattern) > 1 && n.id == pattern[1:]
	default:
		return strings.EqualFold(n.tagName, pattern)
	}
}

// splitSelector splits a comma-separated selector list into its non-empty
// patterns.
func splitSelector(selector string) []string {
	var patterns []string
	for _, part := range strings.Split(selector, ",") {
		if part = strings.TrimSpace(part); part != "" {
			patterns = append(patterns, part)
		}
	}
	return patterns
}

func matchesAny(n *Node, patterns []string) bool {
	for _, p := range patterns {
		if MatchesSelector(n, p) {
			return true
		}
	}
	return false
}

// Matches reports whether n satisfies any pattern of a comma-separated
// selector list. Combinators are not supported.
func (n *Node) Matches(selector string) bool {
	return matchesAny(n, splitSelector(selector))
}

// QuerySelectorAll returns the descendants of n, excluding n itself, that
// match any pattern of selector, in depth-first pre-order.
func (n *Node) QuerySelectorAll(selector string) []*Node {
	patterns := splitSelector(selector)
	if len(patterns) == 0 {
		return nil
	}
	var results []*Node
	n.walkDescendants(func(d *Node) bool {
		if matchesAny(d, patterns) {
			results = append(results, d)
		}
		return true
	})
	return results
}

// QuerySelector returns the first descendant matching selector, or nil.
func (n *Node) QuerySelector(selector string) *Node {
	patterns := splitSelector(selector)
	if len(patterns) == 0 {
		return nil
	}
	var found *Node
	n.walkDescendants(func(d *Node) bool {
		if matchesAny(d, patterns) {
			found = d
			return false
		}
		return true
	})
	return found
}
