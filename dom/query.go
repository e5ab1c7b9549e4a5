package dom

import (
	"fmt"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// Select returns the descendants of n matching a full CSS selector group,
// in document order. Unlike QuerySelectorAll it understands combinators,
// attribute selectors and pseudo-classes; it runs against a mirror of the
// tree, so later mutations are not reflected in an earlier result.
func (n *Node) Select(selector string) ([]*Node, error) {
	group, err := cascadia.ParseGroup(selector)
	if err != nil {
		return nil, fmt.Errorf("parse selector %q: %w", selector, err)
	}
	if n.nodeType != ElementNode {
		return nil, nil
	}

	index := make(map[*html.Node]*Node)
	holder := &html.Node{Type: html.DocumentNode}
	appendHTMLNode(holder, n, index)

	var out []*Node
	for _, m := range cascadia.QueryAll(holder.FirstChild, group) {
		if node, ok := index[m]; ok {
			out = append(out, node)
		}
	}
	return out, nil
}

// Select runs a full CSS selector group against the document from
// DocumentElement.
func (d *Document) Select(selector string) ([]*Node, error) {
	return d.documentElement.Select(selector)
}
