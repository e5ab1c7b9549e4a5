package dom

// NewText creates a detached text node. Its data, text content and node
// value are the same string.
func NewText(data string) *Node {
	return &Node{nodeType: TextNode, data: data}
}

// Data returns the text of a text node, or "" for an element.
func (n *Node) Data() string {
	if n.nodeType != TextNode {
		return ""
	}
	return n.data
}

// SetData replaces the text of a text node. It has no effect on elements.
func (n *Node) SetData(data string) {
	if n.nodeType == TextNode {
		n.data = data
	}
}

// NodeValue returns the text of a text node, or "" for an element.
func (n *Node) NodeValue() string {
	return n.Data()
}

// SetNodeValue is an alias for SetData.
func (n *Node) SetNodeValue(value string) {
	n.SetData(value)
}
