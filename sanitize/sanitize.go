// Package sanitize strips dangerous markup from untrusted HTML before it is
// turned into nodes, and holds the tag and attribute allow-lists that the
// node model applies while materializing parsed segments.
//
// The filtering is string-level and best effort. It is one of two independent
// layers: the allow-lists consulted during materialization are the second.
package sanitize

import (
	"strings"
	"time"

	"github.com/dlclark/regexp2"
	"golang.org/x/net/html/atom"
)

// matchTimeout bounds a single regex evaluation on hostile input.
const matchTimeout = 2 * time.Second

const reOpts = regexp2.IgnoreCase | regexp2.Singleline

func mustCompile(pattern string) *regexp2.Regexp {
	re := regexp2.MustCompile(pattern, reOpts)
	re.MatchTimeout = matchTimeout
	return re
}

var (
	commentRe = mustCompile(`<!--.*?(-->|$)`)
	doctypeRe = mustCompile(`<!doctype[^>]*>`)

	// A script element, allowing '<' inside the body as long as it does not
	// start the closing tag.
	scriptRe          = mustCompile(`<script\b[^<]*(?:(?!</script\s*>)<[^<]*)*</script\s*>`)
	scriptSelfCloseRe = mustCompile(`<script\b[^>]*/>`)
	scriptStrayRe     = mustCompile(`</?script\b[^>]*>`)

	// input and embed are void; their bare tags fall to dangerousStrayRe.
	dangerousRe      = mustCompile(`<(iframe|object|form|button)\b[^>]*>.*?</\1\s*>`)
	dangerousStrayRe = mustCompile(`</?(?:iframe|object|embed|form|input|button)\b[^>]*>`)

	handlerQuotedRe   = mustCompile(`\s+on[a-z0-9_-]+\s*=\s*(?:"[^"]*"|'[^']*')`)
	handlerUnquotedRe = mustCompile(`\s+on[a-z0-9_-]+\s*=\s*[^\s"'>]+`)

	javascriptRe = mustCompile(`javascript\s*:`)

	unsafeSchemeRe = mustCompile(`(?:javascript|vbscript|data)\s*:`)
	handlerTextRe  = mustCompile(`\bon[a-z0-9_-]+\s*=`)
)

// maxPasses bounds the repeated scheme stripping of one value.
const maxPasses = 16

// HTML removes script elements, dangerous embedding and form elements with
// their content, inline event handler attributes and javascript: URL schemes
// from s. Comments and doctype declarations are dropped as well.
//
// HTML never fails: a step that cannot be evaluated within its time budget
// is skipped and the remaining steps still run. The allow-lists applied
// during materialization catch what a skipped step would have removed.
func HTML(s string) string {
	if s == "" {
		return ""
	}
	out := strip(s,
		commentRe,
		doctypeRe,
		scriptRe,
		scriptSelfCloseRe,
		scriptStrayRe,
		dangerousRe,
		dangerousStrayRe,
		handlerQuotedRe,
		handlerUnquotedRe,
	)
	return stripRepeated(out, javascriptRe)
}

// strip removes every match of each step in turn. A step that errors leaves
// its input unchanged.
func strip(s string, steps ...*regexp2.Regexp) string {
	out := s
	for _, re := range steps {
		if replaced, err := re.Replace(out, "", -1, -1); err == nil {
			out = replaced
		}
	}
	return out
}

// stripRepeated applies the steps until the value stops changing, at most
// maxPasses times.
func stripRepeated(s string, steps ...*regexp2.Regexp) string {
	for range maxPasses {
		next := strip(s, steps...)
		if next == s {
			return s
		}
		s = next
	}
	return s
}

// AttributeValue strips javascript:, vbscript: and data: schemes and any
// handler-looking "onxxx=" text from a single attribute value. A value that
// still starts with one of those schemes once whitespace and control
// characters are ignored is dropped entirely.
func AttributeValue(v string) string {
	if v == "" {
		return ""
	}
	out := stripRepeated(v, unsafeSchemeRe, handlerTextRe)
	if hasUnsafeScheme(out) {
		return ""
	}
	return out
}

var unsafeSchemes = []string{"javascript:", "vbscript:", "data:"}

// hasUnsafeScheme reports whether v names an unsafe scheme the way a URL
// parser would read it: leading spaces and control characters trimmed,
// tabs and newlines removed, case ignored.
func hasUnsafeScheme(v string) bool {
	v = strings.Map(func(r rune) rune {
		if r == '\t' || r == '\n' || r == '\r' {
			return -1
		}
		return r
	}, v)
	v = strings.ToLower(strings.TrimLeftFunc(v, func(r rune) bool {
		return r <= ' '
	}))
	for _, scheme := range unsafeSchemes {
		if strings.HasPrefix(v, scheme) {
			return true
		}
	}
	return false
}

var allowedTags = atomSet(
	atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6,
	// text and structure
	atom.P, atom.Div, atom.Span, atom.Br, atom.Hr, atom.Strong, atom.B,
	atom.Em, atom.I, atom.U, atom.S, atom.Strike, atom.Del, atom.Ins,
	atom.Mark, atom.Small, atom.Sub, atom.Sup, atom.Code, atom.Pre, atom.Kbd,
	atom.Samp, atom.Var, atom.Blockquote, atom.Q, atom.Cite, atom.Abbr,
	atom.Time, atom.Address, atom.Article, atom.Section, atom.Main,
	atom.Header, atom.Footer, atom.Nav, atom.Aside, atom.Figure,
	atom.Figcaption, atom.Details, atom.Summary,
	// lists
	atom.Ul, atom.Ol, atom.Li, atom.Dl, atom.Dt, atom.Dd,
	// links and media
	atom.A, atom.Img, atom.Picture, atom.Source, atom.Video, atom.Audio,
	// tables
	atom.Table, atom.Caption, atom.Thead, atom.Tbody, atom.Tfoot, atom.Tr,
	atom.Th, atom.Td, atom.Colgroup, atom.Col,
)

// opaqueTags are dropped together with everything inside them.
var opaqueTags = atomSet(
	atom.Script, atom.Style, atom.Noscript, atom.Template, atom.Svg,
	atom.Math, atom.Head, atom.Title, atom.Meta, atom.Link, atom.Base,
	atom.Iframe, atom.Object, atom.Embed, atom.Form, atom.Input,
	atom.Button, atom.Select, atom.Textarea, atom.Frame, atom.Frameset,
	atom.Applet,
)

var allowedAttributes = map[string]bool{
	"href":    true,
	"src":     true,
	"alt":     true,
	"title":   true,
	"class":   true,
	"id":      true,
	"colspan": true,
	"rowspan": true,
}

func atomSet(atoms ...atom.Atom) map[atom.Atom]bool {
	m := make(map[atom.Atom]bool, len(atoms))
	for _, a := range atoms {
		m[a] = true
	}
	return m
}

func lookup(tagName string) atom.Atom {
	return atom.Lookup([]byte(strings.ToLower(strings.TrimSpace(tagName))))
}

// IsAllowedTag reports whether tagName may become an element node.
// The comparison is case-insensitive.
func IsAllowedTag(tagName string) bool {
	a := lookup(tagName)
	return a != 0 && allowedTags[a]
}

// IsOpaqueTag reports whether a non-allowed tag must be discarded together
// with its content instead of being unwrapped.
func IsOpaqueTag(tagName string) bool {
	a := lookup(tagName)
	return a != 0 && opaqueTags[a]
}

// IsAllowedAttribute reports whether an attribute name may be copied onto an
// element node. The comparison is case-insensitive.
func IsAllowedAttribute(name string) bool {
	return allowedAttributes[strings.ToLower(strings.TrimSpace(name))]
}

// AllowedTags returns the allow-listed tag names in lower case.
func AllowedTags() []string {
	names := make([]string, 0, len(allowedTags))
	for a := range allowedTags {
		names = append(names, a.String())
	}
	return names
}

// AllowedAttributes returns the allow-listed attribute names.
func AllowedAttributes() []string {
	names := make([]string, 0, len(allowedAttributes))
	for name := range allowedAttributes {
		names = append(names, name)
	}
	return names
}
