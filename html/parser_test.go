package html

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSegments_Empty(t *testing.T) {
	assert.Empty(t, ParseSegments(""))
	assert.Empty(t, ParseSegments("   \n\t "))
}

func TestParseSegments_TextOnly(t *testing.T) {
	segs := ParseSegments("hello world")
	require.Len(t, segs, 1)
	assert.Equal(t, TextSegment, segs[0].Kind)
	assert.Equal(t, "hello world", segs[0].Content)
}

func TestParseSegments_Elements(t *testing.T) {
	segs := ParseSegments(`lead <p class="intro" id='p1'>Hello <b>you</b></p> tail`)
	require.Len(t, segs, 3)

	assert.Equal(t, TextSegment, segs[0].Kind)
	assert.Equal(t, "lead ", segs[0].Content)

	p := segs[1]
	assert.Equal(t, ElementSegment, p.Kind)
	assert.Equal(t, "p", p.TagName)
	assert.Equal(t, "Hello <b>you</b>", p.Inner)
	assert.False(t, p.SelfClosing)
	assert.Equal(t, []Attribute{{Key: "class", Value: "intro"}, {Key: "id", Value: "p1"}}, p.Attributes)

	assert.Equal(t, " tail", segs[2].Content)
}

func TestParseSegments_SkipsWhitespaceBetweenTags(t *testing.T) {
	segs := ParseSegments("<li>a</li>\n  <li>b</li>\n")
	require.Len(t, segs, 2)
	assert.Equal(t, "a", segs[0].Inner)
	assert.Equal(t, "b", segs[1].Inner)
}

func TestParseSegments_SelfClosing(t *testing.T) {
	segs := ParseSegments(`<img src="a.png" alt="A"/><br />text`)
	require.Len(t, segs, 3)
	assert.True(t, segs[0].SelfClosing)
	assert.Equal(t, "img", segs[0].TagName)
	v, ok := segs[0].Attr("SRC")
	assert.True(t, ok)
	assert.Equal(t, "a.png", v)
	assert.True(t, segs[1].SelfClosing)
	assert.Equal(t, "br", segs[1].TagName)
	assert.Equal(t, "text", segs[2].Content)
}

func TestParseSegments_UnclosedFallsBackToSelfClosing(t *testing.T) {
	segs := ParseSegments(`<p>one<br>two</p>`)
	require.Len(t, segs, 1)
	assert.Equal(t, "one<br>two", segs[0].Inner)

	inner := ParseSegments(segs[0].Inner)
	require.Len(t, inner, 3)
	assert.Equal(t, "one", inner[0].Content)
	assert.Equal(t, "br", inner[1].TagName)
	assert.True(t, inner[1].SelfClosing)
	assert.Empty(t, inner[1].Inner)
	assert.Equal(t, "two", inner[2].Content)
}

func TestParseSegments_CaseInsensitiveClose(t *testing.T) {
	segs := ParseSegments(`<DIV>x</div>`)
	require.Len(t, segs, 1)
	assert.Equal(t, "div", segs[0].TagName)
	assert.Equal(t, "x", segs[0].Inner)
}

func TestParseSegments_CloseTagNamePrefix(t *testing.T) {
	segs := ParseSegments(`<b>x</br></b>`)
	require.Len(t, segs, 1)
	assert.Equal(t, "x</br>", segs[0].Inner)
}

// The first same-named closing tag ends the element, even when a same-named
// child opened before it.
func TestParseSegments_NestedSameNameIsNotBalanced(t *testing.T) {
	segs := ParseSegments(`<div><div>a</div>b</div>`)
	require.Len(t, segs, 2)
	assert.Equal(t, "<div>a", segs[0].Inner)
	assert.Equal(t, TextSegment, segs[1].Kind)
	assert.Equal(t, "b</div>", segs[1].Content)
}

func TestParseSegments_MalformedTagIsText(t *testing.T) {
	segs := ParseSegments(`a < b and <3`)
	require.Len(t, segs, 1)
	assert.Equal(t, TextSegment, segs[0].Kind)
}

func TestParseSegments_DuplicateAttributeKeepsFirst(t *testing.T) {
	segs := ParseSegments(`<a href="one" HREF="two" title=plain>x</a>`)
	require.Len(t, segs, 1)
	assert.Equal(t, []Attribute{{Key: "href", Value: "one"}, {Key: "title", Value: "plain"}}, segs[0].Attributes)
}

func TestHasMarkup(t *testing.T) {
	assert.True(t, HasMarkup("<p>x</p>"))
	assert.True(t, HasMarkup("a <br> b"))
	assert.False(t, HasMarkup("a < b > c"))
	assert.False(t, HasMarkup("plain"))
	assert.False(t, HasMarkup(""))
}
