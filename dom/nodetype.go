// Package dom provides a small document object model built for consumers
// that expect a browser-like tree: element and text nodes with parent and
// sibling links, computed textContent, a cached innerHTML that runs untrusted
// markup through sanitize -> parse -> materialize, a minimal selector matcher
// and a document facade with open/write/close buffering.
package dom

// NodeType represents the type of a Node as defined by the DOM Standard.
type NodeType uint16

const (
	// ElementNode represents an Element node.
	ElementNode NodeType = 1
	// AttributeNode represents an Attr node (deprecated but still defined).
	AttributeNode NodeType = 2
	// TextNode represents a Text node.
	TextNode NodeType = 3
	// CDATASectionNode represents a CDATASection node.
	CDATASectionNode NodeType = 4
	// EntityReferenceNode is obsolete.
	EntityReferenceNode NodeType = 5
	// EntityNode is obsolete.
	EntityNode NodeType = 6
	// ProcessingInstructionNode represents a ProcessingInstruction node.
	ProcessingInstructionNode NodeType = 7
	// CommentNode represents a Comment node.
	CommentNode NodeType = 8
	// DocumentNode represents a Document node.
	DocumentNode NodeType = 9
	// DocumentTypeNode represents a DocumentType node.
	DocumentTypeNode NodeType = 10
	// DocumentFragmentNode represents a DocumentFragment node.
	DocumentFragmentNode NodeType = 11
	// NotationNode is obsolete.
	NotationNode NodeType = 12
)

var nodeTypeNames = [...]string{
	ElementNode:               "ELEMENT_NODE",
	AttributeNode:             "ATTRIBUTE_NODE",
	TextNode:                  "TEXT_NODE",
	CDATASectionNode:          "CDATA_SECTION_NODE",
	EntityReferenceNode:       "ENTITY_REFERENCE_NODE",
	EntityNode:                "ENTITY_NODE",
	ProcessingInstructionNode: "PROCESSING_INSTRUCTION_NODE",
	CommentNode:               "COMMENT_NODE",
	DocumentNode:              "DOCUMENT_NODE",
	DocumentTypeNode:          "DOCUMENT_TYPE_NODE",
	DocumentFragmentNode:      "DOCUMENT_FRAGMENT_NODE",
	NotationNode:              "NOTATION_NODE",
}

// String returns the string representation of the NodeType.
func (nt NodeType) String() string {
	if nt == 0 || int(nt) >= len(nodeTypeNames) {
		return "UNKNOWN_NODE"
	}
	return nodeTypeNames[nt]
}

// NodeTypes returns the twelve standard node type constant names mapped to
// their codes, e.g. "ELEMENT_NODE" -> 1. A fresh map is returned on each call.
func NodeTypes() map[string]NodeType {
	m := make(map[string]NodeType, len(nodeTypeNames)-1)
	for code := ElementNode; code <= NotationNode; code++ {
		m[nodeTypeNames[code]] = code
	}
	return m
}
