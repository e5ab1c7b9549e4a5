package dom

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// ParserMarker is the name of the property a readability-style consumer
// probes on documentElement to recognise a document built by this parser.
const ParserMarker = "__JSDOMParser__"

// DocumentState is the position of a Document in its write cycle.
type DocumentState int

const (
	// StateClosed is the initial state, before Open.
	StateClosed DocumentState = iota
	// StateBuffering accepts Write calls.
	StateBuffering
	// StateParsed is reached by Close.
	StateParsed
)

// String returns the name of the state.
func (s DocumentState) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateBuffering:
		return "buffering"
	case StateParsed:
		return "parsed"
	default:
		return "unknown"
	}
}

var (
	titleRe     = regexp.MustCompile(`(?is)<title\b[^>]*>(.*?)</title\s*>`)
	bodyOpenRe  = regexp.MustCompile(`(?i)<body\b[^>]*>`)
	bodyCloseRe = regexp.MustCompile(`(?i)</body\s*>`)
	spaceRe     = regexp.MustCompile(`\s+`)
)

// Document emulates a top-level HTML document fed through open/write/close.
//
// Every Write and Close re-parses the whole buffer: the first <title> sets
// Title, the <body> content (or the whole buffer when there is no body tag)
// is assigned to Body through SetInnerHTML, and a fresh <html> element
// wrapping Body becomes DocumentElement. Callers are expected to write once
// and then close; many small writes cost quadratic time.
type Document struct {
	title           string
	buf             strings.Builder
	state           DocumentState
	body            *Node
	documentElement *Node
}

// NewDocument creates a closed document with an empty body.
func NewDocument(title string) *Document {
	d := &Document{
		title: title,
		body:  NewElement("body"),
	}
	d.documentElement = newRootElement(d.body)
	return d
}

// ParseDocument feeds markup through Open, Write and Close.
func ParseDocument(markup string) *Document {
	d := NewDocument("")
	d.Open()
	d.Write(markup)
	d.Close()
	return d
}

func newRootElement(body *Node) *Node {
	root := NewElement("html")
	root.parserRoot = true
	root.AppendChild(body)
	return root
}

// IsParserRoot reports whether n is the <html> element of a Document.
func (n *Node) IsParserRoot() bool {
	return n.parserRoot
}

// Open resets the buffer and starts a new write cycle.
func (d *Document) Open() {
	d.buf.Reset()
	d.state = StateBuffering
}

// Write appends markup to the buffer and re-parses it. Writing to a closed
// or parsed document continues with the current buffer.
func (d *Document) Write(markup ...string) {
	for _, m := range markup {
		d.buf.WriteString(m)
	}
	d.state = StateBuffering
	d.reparse()
}

// Close re-parses the buffer one last time and ends the write cycle.
func (d *Document) Close() {
	d.reparse()
	d.state = StateParsed
}

func (d *Document) reparse() {
	src := d.buf.String()
	if m := titleRe.FindStringSubmatch(src); m != nil {
		d.title = collapseSpace(html.UnescapeString(m[1]))
	}

	content := src
	if loc := bodyOpenRe.FindStringIndex(src); loc != nil {
		content = src[loc[1]:]
		if end := bodyCloseRe.FindStringIndex(content); end != nil {
			content = content[:end[0]]
		}
	}
	d.body.SetInnerHTML(content)

	if d.documentElement != nil {
		d.documentElement.parserRoot = false
	}
	d.documentElement = newRootElement(d.body)
}

func collapseSpace(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

// State returns the position of d in its write cycle.
func (d *Document) State() DocumentState {
	return d.state
}

// Source returns the buffered markup.
func (d *Document) Source() string {
	return d.buf.String()
}

// Title returns the document title.
func (d *Document) Title() string {
	return d.title
}

// SetTitle replaces the document title.
func (d *Document) SetTitle(title string) {
	d.title = title
}

// Body returns the <body> element.
func (d *Document) Body() *Node {
	return d.body
}

// DocumentElement returns the <html> element wrapping Body.
func (d *Document) DocumentElement() *Node {
	return d.documentElement
}

// FirstChild returns DocumentElement.
func (d *Document) FirstChild() *Node {
	return d.documentElement
}

// CreateElement creates a detached element.
func (d *Document) CreateElement(tagName string) *Node {
	return NewElement(tagName)
}

// CreateTextNode creates a detached text node.
func (d *Document) CreateTextNode(data string) *Node {
	return NewText(data)
}

// GetElementById returns the first element in the document whose id is id.
func (d *Document) GetElementById(id string) *Node {
	if id == "" {
		return nil
	}
	for _, root := range []*Node{d.documentElement, d.body} {
		if root == nil {
			continue
		}
		if found := findByID(root, id); found != nil {
			return found
		}
	}
	return nil
}

func findByID(root *Node, id string) *Node {
	if root.id == id {
		return root
	}
	var found *Node
	root.walkDescendants(func(d *Node) bool {
		if d.id == id {
			found = d
			return false
		}
		return true
	})
	return found
}

// GetElementsByTagName only recognises "BODY" (case-insensitive); any other
// name yields an empty result.
func (d *Document) GetElementsByTagName(tagName string) []*Node {
	if strings.EqualFold(tagName, "body") && d.body != nil {
		return []*Node{d.body}
	}
	return nil
}

// QuerySelector searches Body first, then DocumentElement.
func (d *Document) QuerySelector(selector string) *Node {
	if found := d.body.QuerySelector(selector); found != nil {
		return found
	}
	return d.documentElement.QuerySelector(selector)
}

// QuerySelectorAll returns the matches below Body, or, when there are none,
// the matches below DocumentElement.
func (d *Document) QuerySelectorAll(selector string) []*Node {
	if found := d.body.QuerySelectorAll(selector); len(found) > 0 {
		return found
	}
	return d.documentElement.QuerySelectorAll(selector)
}

// HTMLNode returns the document as a golang.org/x/net/html document node.
func (d *Document) HTMLNode() *html.Node {
	doc := &html.Node{Type: html.DocumentNode}
	if root := ToHTMLNode(d.documentElement); root != nil {
		doc.AppendChild(root)
	}
	return doc
}
