package sanitize

import (
	"sort"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	exportOnce   sync.Once
	exportPolicy *bluemonday.Policy
)

// ExportPolicy returns a bluemonday policy mirroring the tag and attribute
// allow-lists. It is applied to serialized markup that leaves the tree, as a
// parser-backed counterpart to the string-level filtering done by HTML.
//
// The returned policy is shared and must not be modified.
func ExportPolicy() *bluemonday.Policy {
	exportOnce.Do(func() {
		tags := AllowedTags()
		sort.Strings(tags)
		attrs := AllowedAttributes()
		sort.Strings(attrs)

		p := bluemonday.NewPolicy()
		p.AllowElements(tags...)
		p.AllowAttrs(attrs...).Globally()
		p.AllowURLSchemes("http", "https", "mailto")
		p.AllowRelativeURLs(true)
		p.RequireParseableURLs(true)
		exportPolicy = p
	})
	return exportPolicy
}

// Export runs serialized markup through ExportPolicy.
func Export(markup string) string {
	if markup == "" {
		return ""
	}
	return ExportPolicy().Sanitize(markup)
}
