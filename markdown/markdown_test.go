package markdown

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrisuehlinger/minidom/dom"
)

func TestConverter_ConvertNode(t *testing.T) {
	el := dom.NewElement("div")
	el.SetInnerHTML(`<h1>Title</h1><p>Some <strong>bold</strong> and <em>italic</em> text.</p>`)

	md, err := New().ConvertNode(context.Background(), el)
	require.NoError(t, err)
	assert.Contains(t, md, "# Title")
	assert.Contains(t, md, "**bold**")
	assert.Contains(t, md, "*italic*")
}

func TestConverter_ConvertNodeNil(t *testing.T) {
	md, err := New().ConvertNode(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "", md)
}

func TestConverter_SanitizedBeforeConversion(t *testing.T) {
	el := dom.NewElement("div")
	el.SetInnerHTML(`<p>safe</p><script>steal()</script><a href="javascript:go()" onclick="x()">l</a>`)

	md, err := New().ConvertNode(context.Background(), el)
	require.NoError(t, err)
	assert.Contains(t, md, "safe")
	assert.NotContains(t, md, "steal")
	assert.NotContains(t, md, "javascript")
}

func TestConverter_WithDomain(t *testing.T) {
	el := dom.NewElement("p")
	el.SetInnerHTML(`<a href="/docs">docs</a>`)

	md, err := New(WithDomain("https://example.com")).ConvertNode(context.Background(), el)
	require.NoError(t, err)
	assert.Equal(t, "[docs](https://example.com/docs)", md)
}

func TestConverter_StrikethroughAndTable(t *testing.T) {
	el := dom.NewElement("div")
	el.SetInnerHTML(`<p><del>gone</del></p><table><tr><th>Name</th></tr><tr><td>Ada</td></tr></table>`)

	md, err := New().ConvertNode(context.Background(), el)
	require.NoError(t, err)
	assert.Contains(t, md, "~~gone~~")
	assert.Contains(t, md, "Name")
	assert.Contains(t, md, "Ada")
	assert.Contains(t, md, "|")
}

func TestConverter_ConvertDocument(t *testing.T) {
	doc := dom.ParseDocument(`<html><head><title>T</title></head><body><h2>Intro</h2><ul><li>one</li><li>two</li></ul></body></html>`)

	md, err := New().ConvertDocument(context.Background(), doc)
	require.NoError(t, err)
	assert.Contains(t, md, "## Intro")
	assert.Contains(t, md, "- one")
	assert.Contains(t, md, "- two")
	assert.NotContains(t, md, "# T")
}

func TestMarkCode(t *testing.T) {
	el := dom.NewElement("div")
	el.SetInnerHTML(`<p>text</p><pre><code>x := 1</code></pre>`)
	p := el.FirstChild()
	p.SetIsCode(true)

	MarkCode(el)

	pre := el.LastChild()
	code := pre.FirstChild()
	require.NotNil(t, code)
	assert.False(t, el.IsCode())
	assert.False(t, p.IsCode())
	assert.False(t, pre.IsCode())
	assert.True(t, code.IsCode())
	assert.True(t, code.FirstChild().IsCode())
}

func TestConverter_ConvertNodeRefreshesCodeFlag(t *testing.T) {
	el := dom.NewElement("div")
	el.SetInnerHTML(`<p>intro</p><pre><code>x := 1</code></pre>`)
	el.FirstChild().SetIsCode(true)

	md, err := New().ConvertNode(context.Background(), el)
	require.NoError(t, err)
	assert.Contains(t, md, "x := 1")

	assert.False(t, el.FirstChild().IsCode())
	assert.True(t, el.LastChild().FirstChild().IsCode())
}
