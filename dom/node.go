package dom

import (
	"strings"
)

// Node is an element or a text node.
//
// The childNodes slice is the only owning structure of the tree. The parent
// and sibling links are back-references that only the mutation methods on
// this type maintain; there is no way to set them from outside the package.
type Node struct {
	nodeType NodeType
	tagName  string // upper case, elements only
	data     string // text nodes only

	attrs attributes
	id    string

	// isCode is bookkeeping for markdown converters that flag nodes inside
	// code blocks. It is never inspected by this package.
	isCode bool

	// innerHTML caches the last string assigned through SetInnerHTML.
	innerHTML string

	// parserRoot marks the <html> element a Document built.
	parserRoot bool

	parentNode  *Node
	childNodes  []*Node
	prevSibling *Node
	nextSibling *Node
}

// NodeType returns the type of the node.
func (n *Node) NodeType() NodeType {
	return n.nodeType
}

// NodeName returns the upper-case tag name of an element or "#text".
func (n *Node) NodeName() string {
	if n.nodeType == TextNode {
		return "#text"
	}
	return n.tagName
}

// IsElement reports whether n is an element node.
func (n *Node) IsElement() bool {
	return n != nil && n.nodeType == ElementNode
}

// IsText reports whether n is a text node.
func (n *Node) IsText() bool {
	return n != nil && n.nodeType == TextNode
}

// IsCode returns the code-block flag.
func (n *Node) IsCode() bool {
	return n.isCode
}

// SetIsCode sets the code-block flag.
func (n *Node) SetIsCode(v bool) {
	n.isCode = v
}

// ParentNode returns the parent of this node, or nil if it is detached.
func (n *Node) ParentNode() *Node {
	return n.parentNode
}

// ChildNodes returns a snapshot of the children in order.
func (n *Node) ChildNodes() []*Node {
	if len(n.childNodes) == 0 {
		return nil
	}
	out := make([]*Node, len(n.childNodes))
	copy(out, n.childNodes)
	return out
}

// ChildCount returns the number of children.
func (n *Node) ChildCount() int {
	return len(n.childNodes)
}

// FirstChild returns the first child node, or nil if there are no children.
func (n *Node) FirstChild() *Node {
	if len(n.childNodes) == 0 {
		return nil
	}
	return n.childNodes[0]
}

// LastChild returns the last child node, or nil if there are no children.
func (n *Node) LastChild() *Node {
	if len(n.childNodes) == 0 {
		return nil
	}
	return n.childNodes[len(n.childNodes)-1]
}

// PreviousSibling returns the previous sibling node, or nil if this is the first child.
func (n *Node) PreviousSibling() *Node {
	return n.prevSibling
}

// NextSibling returns the next sibling node, or nil if this is the last child.
func (n *Node) NextSibling() *Node {
	return n.nextSibling
}

// HasChildNodes returns true if this node has any child nodes.
func (n *Node) HasChildNodes() bool {
	return len(n.childNodes) > 0
}

// Children returns the element children in order.
func (n *Node) Children() []*Node {
	var out []*Node
	for _, c := range n.childNodes {
		if c.nodeType == ElementNode {
			out = append(out, c)
		}
	}
	return out
}

// ChildElementCount returns the number of element children.
func (n *Node) ChildElementCount() int {
	count := 0
	for _, c := range n.childNodes {
		if c.nodeType == ElementNode {
			count++
		}
	}
	return count
}

// Contains returns true if other is n or one of its descendants.
func (n *Node) Contains(other *Node) bool {
	for cur := other; cur != nil; cur = cur.parentNode {
		if cur == n {
			return true
		}
	}
	return false
}

// Root returns the topmost ancestor of n, or n itself when detached.
func (n *Node) Root() *Node {
	root := n
	for root.parentNode != nil {
		root = root.parentNode
	}
	return root
}

// AppendChild adds child to the end of the children of n and returns it.
// A child that is already attached elsewhere is moved. Text nodes cannot
// have children, and a node cannot be appended to itself or to one of its
// descendants; in those cases nothing changes and nil is returned.
func (n *Node) AppendChild(child *Node) *Node {
	if child == nil || n.nodeType != ElementNode || child.Contains(n) {
		return nil
	}
	if child.parentNode != nil {
		child.Remove()
	}
	if last := n.LastChild(); last != nil {
		last.nextSibling = child
		child.prevSibling = last
	}
	child.nextSibling = nil
	child.parentNode = n
	n.childNodes = append(n.childNodes, child)
	return child
}

// Remove detaches n from its parent, relinks its former siblings and clears
// its own parent and sibling links. It is a no-op on a detached node.
func (n *Node) Remove() {
	parent := n.parentNode
	if parent == nil {
		return
	}
	for i, c := range parent.childNodes {
		if c == n {
			parent.childNodes = append(parent.childNodes[:i], parent.childNodes[i+1:]...)
			break
		}
	}
	if n.prevSibling != nil {
		n.prevSibling.nextSibling = n.nextSibling
	}
	if n.nextSibling != nil {
		n.nextSibling.prevSibling = n.prevSibling
	}
	n.parentNode = nil
	n.prevSibling = nil
	n.nextSibling = nil
}

// RemoveChild removes child from n and returns it, or returns nil when child
// is not a child of n.
func (n *Node) RemoveChild(child *Node) *Node {
	if child == nil || child.parentNode != n {
		return nil
	}
	child.Remove()
	return child
}

// removeChildren detaches every child of n.
func (n *Node) removeChildren() {
	for _, c := range n.childNodes {
		c.parentNode = nil
		c.prevSibling = nil
		c.nextSibling = nil
	}
	n.childNodes = nil
}

// TextContent returns the data of a text node, or the concatenated text of
// all descendants of an element.
func (n *Node) TextContent() string {
	if n.nodeType == TextNode {
		return n.data
	}
	var sb strings.Builder
	n.collectTextContent(&sb)
	return sb.String()
}

func (n *Node) collectTextContent(sb *strings.Builder) {
	for _, child := range n.childNodes {
		switch child.nodeType {
		case TextNode:
			sb.WriteString(child.data)
		case ElementNode:
			child.collectTextContent(sb)
		}
	}
}

// SetTextContent sets the data of a text node. On an element it discards
// all children and, if value is not empty, installs a single text child.
func (n *Node) SetTextContent(value string) {
	if n.nodeType == TextNode {
		n.data = value
		return
	}
	n.removeChildren()
	if value != "" {
		n.AppendChild(NewText(value))
	}
}
