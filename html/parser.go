// Package html provides a tolerant, regex-driven tokenizer that splits an
// already sanitized HTML fragment into an ordered list of segments. Element
// segments keep their inner markup raw so the caller can re-enter the
// pipeline lazily, one nesting level at a time.
//
// The tokenizer is deliberately not an HTML5 parser:
//   - the closing tag of an element is the first same-named closing tag after
//     it, regardless of same-named descendants;
//   - an element without a closing tag is treated as self-closing and its
//     would-be content continues as following siblings.
package html

import (
	"regexp"
	"strings"
)

// SegmentKind distinguishes text runs from element instances.
type SegmentKind int

const (
	// TextSegment is a run of character data.
	TextSegment SegmentKind = iota
	// ElementSegment is a single tag instance together with its raw content.
	ElementSegment
)

// String returns the name of the kind.
func (k SegmentKind) String() string {
	switch k {
	case TextSegment:
		return "text"
	case ElementSegment:
		return "element"
	default:
		return "unknown"
	}
}

// Attribute is a name/value pair found inside an open tag.
type Attribute struct {
	Key   string
	Value string
}

// Segment is one parsed unit, prior to tree materialization.
type Segment struct {
	Kind SegmentKind

	// Content holds the raw text of a TextSegment.
	Content string

	// TagName is the lower-cased tag name of an ElementSegment.
	TagName string
	// Attributes are the attributes of the open tag in source order.
	// Only the first occurrence of a name is kept.
	Attributes []Attribute
	// Inner is the raw markup between the open tag and its closing tag.
	Inner string
	// SelfClosing is set for "<x/>" tags and for tags whose closing tag
	// could not be found.
	SelfClosing bool
}

// Attr returns the value of the named attribute and whether it was present.
func (s Segment) Attr(key string) (string, bool) {
	for _, a := range s.Attributes {
		if strings.EqualFold(a.Key, key) {
			return a.Value, true
		}
	}
	return "", false
}

var (
	startTagRe = regexp.MustCompile(
		`<([a-zA-Z][a-zA-Z0-9:-]*)((?:\s+[^\s"'<>/=]+(?:\s*=\s*(?:"[^"]*"|'[^']*'|[^\s"'=<>` + "`" + `]+))?)*)\s*/?>`)
	attrRe = regexp.MustCompile(
		`([^\s"'<>/=]+)\s*=\s*(?:"([^"]*)"|'([^']*)'|([^\s"'=<>` + "`" + `]+))`)
	markupRe = regexp.MustCompile(`(?is)<[a-z].*>`)
)

// HasMarkup reports whether s contains anything that looks like a tag.
func HasMarkup(s string) bool {
	return markupRe.MatchString(s)
}

// ParseSegments splits an HTML fragment into segments. It never fails:
// malformed markup degrades to text or to self-closing elements. The empty
// string yields an empty list.
func ParseSegments(s string) []Segment {
	var segments []Segment
	pos := 0
	for pos < len(s) {
		loc := startTagRe.FindStringSubmatchIndex(s[pos:])
		if loc == nil {
			break
		}
		tagStart, tagEnd := pos+loc[0], pos+loc[1]
		if text := s[pos:tagStart]; strings.TrimSpace(text) != "" {
			segments = append(segments, Segment{Kind: TextSegment, Content: text})
		}

		seg := Segment{
			Kind:       ElementSegment,
			TagName:    strings.ToLower(s[pos+loc[2] : pos+loc[3]]),
			Attributes: parseAttributes(s[pos+loc[4] : pos+loc[5]]),
		}

		if s[tagEnd-2] == '/' {
			seg.SelfClosing = true
			segments = append(segments, seg)
			pos = tagEnd
			continue
		}

		closeStart, closeEnd := indexCloseTag(s, seg.TagName, tagEnd)
		if closeStart < 0 {
			seg.SelfClosing = true
			segments = append(segments, seg)
			pos = tagEnd
			continue
		}
		seg.Inner = s[tagEnd:closeStart]
		segments = append(segments, seg)
		pos = closeEnd
	}
	if pos < len(s) {
		if text := s[pos:]; strings.TrimSpace(text) != "" {
			segments = append(segments, Segment{Kind: TextSegment, Content: text})
		}
	}
	return segments
}

func parseAttributes(raw string) []Attribute {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var attrs []Attribute
	seen := make(map[string]bool)
	for _, m := range attrRe.FindAllStringSubmatch(raw, -1) {
		key := strings.ToLower(m[1])
		if seen[key] {
			continue
		}
		seen[key] = true
		value := m[2]
		if value == "" {
			value = m[3]
		}
		if value == "" {
			value = m[4]
		}
		attrs = append(attrs, Attribute{Key: key, Value: value})
	}
	return attrs
}

// indexCloseTag finds the first "</tag>" at or after from, matching the name
// case-insensitively. It returns the offsets of '<' and one past '>', or -1.
func indexCloseTag(s, tag string, from int) (int, int) {
	for from < len(s) {
		i := strings.Index(s[from:], "</")
		if i < 0 {
			return -1, -1
		}
		start := from + i
		nameEnd := start + 2 + len(tag)
		if nameEnd <= len(s) && strings.EqualFold(s[start+2:nameEnd], tag) &&
			(nameEnd == len(s) || !isNameByte(s[nameEnd])) {
			gt := strings.IndexByte(s[nameEnd:], '>')
			if gt < 0 {
				return -1, -1
			}
			return start, nameEnd + gt + 1
		}
		from = start + 2
	}
	return -1, -1
}

func isNameByte(c byte) bool {
	return c == '-' || c == ':' ||
		('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}
