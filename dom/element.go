package dom

import (
	"strings"

	"golang.org/x/net/html"

	minihtml "github.com/chrisuehlinger/minidom/html"
	"github.com/chrisuehlinger/minidom/sanitize"
)

// maxDepth caps how many nesting levels SetInnerHTML materializes. Deeper
// content is kept as text.
const maxDepth = 256

// NewElement creates a detached element. The tag name is stored upper-case.
func NewElement(tagName string) *Node {
	return &Node{
		nodeType: ElementNode,
		tagName:  strings.ToUpper(strings.TrimSpace(tagName)),
	}
}

// TagName returns the upper-case tag name, or "" for a text node.
func (n *Node) TagName() string {
	return n.tagName
}

// LocalName returns the lower-case tag name.
func (n *Node) LocalName() string {
	return strings.ToLower(n.tagName)
}

// ID returns the mirrored value of the id attribute.
func (n *Node) ID() string {
	return n.id
}

// ClassName returns the class attribute value.
func (n *Node) ClassName() string {
	return n.GetAttribute("class")
}

// ClassList returns the space-separated tokens of the class attribute.
func (n *Node) ClassList() []string {
	return strings.Fields(n.ClassName())
}

// LookupAttribute returns the value of the named attribute and whether it
// is present.
func (n *Node) LookupAttribute(name string) (string, bool) {
	return n.attrs.get(normalizeAttrName(name))
}

// GetAttribute returns the value of the named attribute, or "" when absent.
func (n *Node) GetAttribute(name string) string {
	v, _ := n.LookupAttribute(name)
	return v
}

// HasAttribute reports whether the named attribute is present.
func (n *Node) HasAttribute(name string) bool {
	_, ok := n.LookupAttribute(name)
	return ok
}

// SetAttribute stores value under name. Setting "id" also updates ID.
// Attributes cannot be set on text nodes.
func (n *Node) SetAttribute(name, value string) {
	name = normalizeAttrName(name)
	if n.nodeType != ElementNode || name == "" {
		return
	}
	n.attrs.set(name, value)
	if name == "id" {
		n.id = value
	}
}

// RemoveAttribute deletes the named attribute.
func (n *Node) RemoveAttribute(name string) {
	name = normalizeAttrName(name)
	if n.attrs.remove(name) && name == "id" {
		n.id = ""
	}
}

// Attributes returns a copy of the attribute bag in insertion order.
func (n *Node) Attributes() []Attr {
	return n.attrs.clone()
}

// AttributeNames returns the attribute names in insertion order.
func (n *Node) AttributeNames() []string {
	names := make([]string, len(n.attrs))
	for i, a := range n.attrs {
		names[i] = a.Name
	}
	return names
}

// InnerHTML returns the last string assigned with SetInnerHTML. It is not a
// serialization of the current children; see SerializeChildren for that.
func (n *Node) InnerHTML() string {
	return n.innerHTML
}

// SetInnerHTML replaces all children of the element with the nodes
// described by markup. The markup is sanitized first; tags are then
// tokenized and materialized, with each element's inner markup expanded
// through this same path. Only allow-listed tags and attributes become part
// of the tree, and every attribute value passes the attribute sanitizer.
func (n *Node) SetInnerHTML(markup string) {
	n.setInnerHTML(markup, 0)
}

func (n *Node) setInnerHTML(markup string, depth int) {
	if n.nodeType != ElementNode {
		return
	}
	n.innerHTML = markup
	n.removeChildren()
	n.appendMarkup(markup, depth)
}

// appendMarkup runs markup through the sanitize -> parse -> materialize
// pipeline and appends the result to n.
func (n *Node) appendMarkup(markup string, depth int) {
	clean := sanitize.HTML(markup)
	if depth < maxDepth && minihtml.HasMarkup(clean) {
		n.materialize(minihtml.ParseSegments(clean), depth)
		return
	}
	if text := strings.TrimSpace(clean); text != "" {
		n.AppendChild(NewText(html.UnescapeString(text)))
	}
}

func (n *Node) materialize(segments []minihtml.Segment, depth int) {
	for _, seg := range segments {
		if seg.Kind == minihtml.TextSegment {
			n.AppendChild(NewText(html.UnescapeString(seg.Content)))
			continue
		}
		switch {
		case sanitize.IsAllowedTag(seg.TagName):
			child := NewElement(seg.TagName)
			for _, a := range seg.Attributes {
				if !sanitize.IsAllowedAttribute(a.Key) {
					continue
				}
				child.SetAttribute(a.Key, sanitize.AttributeValue(html.UnescapeString(a.Value)))
			}
			if seg.Inner != "" {
				child.setInnerHTML(seg.Inner, depth+1)
			}
			n.AppendChild(child)
		case sanitize.IsOpaqueTag(seg.TagName):
			// dropped together with its content
		default:
			// unknown wrapper: keep what is inside it
			if seg.Inner != "" {
				n.appendMarkup(seg.Inner, depth+1)
			}
		}
	}
}

// CloneNode returns a copy of n. Attributes are copied; tree links, the
// innerHTML cache and the code-block flag are not. With deep set, element
// children are cloned recursively and text children recreated, in order.
func (n *Node) CloneNode(deep bool) *Node {
	if n.nodeType == TextNode {
		return NewText(n.data)
	}
	c := &Node{
		nodeType: ElementNode,
		tagName:  n.tagName,
		attrs:    n.attrs.clone(),
		id:       n.id,
	}
	if !deep {
		return c
	}
	for _, child := range n.childNodes {
		switch child.nodeType {
		case ElementNode:
			c.AppendChild(child.CloneNode(true))
		case TextNode:
			c.AppendChild(NewText(child.data))
		}
	}
	return c
}

// GetElementsByTagName returns the descendant elements with the given tag
// name in document order. "*" matches every element.
func (n *Node) GetElementsByTagName(tagName string) []*Node {
	all := tagName == "*"
	var out []*Node
	n.walkDescendants(func(d *Node) bool {
		if d.nodeType == ElementNode && (all || strings.EqualFold(d.tagName, tagName)) {
			out = append(out, d)
		}
		return true
	})
	return out
}

// walkDescendants visits the descendants of n depth-first in pre-order
// until fn returns false. It reports whether the walk ran to completion.
func (n *Node) walkDescendants(fn func(*Node) bool) bool {
	for _, c := range n.childNodes {
		if !fn(c) || !c.walkDescendants(fn) {
			return false
		}
	}
	return true
}
