package dom

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// voidElements cannot carry children when rendered; any children they hold
// are emitted as following siblings instead.
var voidElements = map[atom.Atom]bool{
	atom.Area: true, atom.Base: true, atom.Br: true, atom.Col: true,
	atom.Embed: true, atom.Hr: true, atom.Img: true, atom.Input: true,
	atom.Link: true, atom.Meta: true, atom.Source: true, atom.Track: true,
	atom.Wbr: true,
}

// ToHTMLNode converts n and its subtree into a detached golang.org/x/net/html
// tree. The result shares nothing with n.
func ToHTMLNode(n *Node) *html.Node {
	holder := &html.Node{Type: html.DocumentNode}
	appendHTMLNode(holder, n, nil)
	first := holder.FirstChild
	if first != nil {
		holder.RemoveChild(first)
	}
	return first
}

// appendHTMLNode mirrors n below parent. When index is not nil it records
// which node each mirrored element came from.
func appendHTMLNode(parent *html.Node, n *Node, index map[*html.Node]*Node) {
	if n.nodeType == TextNode {
		parent.AppendChild(&html.Node{Type: html.TextNode, Data: n.data})
		return
	}
	name := strings.ToLower(n.tagName)
	el := &html.Node{
		Type:     html.ElementNode,
		Data:     name,
		DataAtom: atom.Lookup([]byte(name)),
	}
	for _, a := range n.attrs {
		el.Attr = append(el.Attr, html.Attribute{Key: a.Name, Val: a.Value})
	}
	parent.AppendChild(el)
	if index != nil {
		index[el] = n
	}

	target := el
	if voidElements[el.DataAtom] {
		target = parent
	}
	for _, c := range n.childNodes {
		appendHTMLNode(target, c, index)
	}
}

// OuterHTML renders n and its current subtree as HTML.
func (n *Node) OuterHTML() string {
	if n.nodeType == TextNode {
		return html.EscapeString(n.data)
	}
	var sb strings.Builder
	holder := &html.Node{Type: html.DocumentNode}
	appendHTMLNode(holder, n, nil)
	for c := holder.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&sb, c); err != nil {
			return ""
		}
	}
	return sb.String()
}

// SerializeChildren renders the current children of n as HTML. Unlike
// InnerHTML it reflects mutations made after the last SetInnerHTML.
func (n *Node) SerializeChildren() string {
	var sb strings.Builder
	for _, c := range n.childNodes {
		sb.WriteString(c.OuterHTML())
	}
	return sb.String()
}
