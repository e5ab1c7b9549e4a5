// Package markdown converts node trees into Markdown through
// html-to-markdown. The tree is handed over as a golang.org/x/net/html
// document, so the converter never reparses serialized markup.
package markdown

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/strikethrough"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"golang.org/x/net/html"

	"github.com/chrisuehlinger/minidom/dom"
)

// Converter turns nodes and documents into Markdown.
type Converter struct {
	conv   *converter.Converter
	logger *slog.Logger
	domain string
}

// Option configures a Converter.
type Option func(*Converter)

// WithDomain resolves relative link and image URLs against domain.
func WithDomain(domain string) Option {
	return func(c *Converter) { c.domain = domain }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Converter) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a Converter with the base, commonmark, strikethrough and
// table plugins.
func New(opts ...Option) *Converter {
	c := &Converter{
		conv: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				strikethrough.NewStrikethroughPlugin(),
				table.NewTablePlugin(),
			),
		),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ConvertNode converts n and its subtree. As a side effect the code-block
// flag of every node in the subtree is refreshed (see MarkCode).
func (c *Converter) ConvertNode(ctx context.Context, n *dom.Node) (string, error) {
	if n == nil {
		return "", nil
	}
	MarkCode(n)
	root := &html.Node{Type: html.DocumentNode}
	if hn := dom.ToHTMLNode(n); hn != nil {
		root.AppendChild(hn)
	}
	return c.convert(ctx, root)
}

// ConvertDocument converts the body of doc.
func (c *Converter) ConvertDocument(ctx context.Context, doc *dom.Document) (string, error) {
	MarkCode(doc.Body())
	return c.convert(ctx, doc.HTMLNode())
}

func (c *Converter) convert(ctx context.Context, root *html.Node) (string, error) {
	opts := []converter.ConvertOptionFunc{converter.WithContext(ctx)}
	if c.domain != "" {
		opts = append(opts, converter.WithDomain(c.domain))
	}
	out, err := c.conv.ConvertNode(root, opts...)
	if err != nil {
		return "", fmt.Errorf("convert to markdown: %w", err)
	}
	md := strings.TrimSpace(string(out))
	c.logger.Debug("markdown: converted", "bytes", len(md))
	return md, nil
}

// MarkCode sets the code-block flag on every node inside a PRE or CODE
// element below n, and clears it everywhere else.
//
// The flag is not carried into the *html.Node tree handed to
// html-to-markdown, which finds code blocks from the PRE and CODE tags
// itself. It is kept up to date for callers that read IsCode afterwards,
// such as scripts inspecting isCode on the converted nodes.
func MarkCode(n *dom.Node) {
	markCode(n, false)
}

func markCode(n *dom.Node, inCode bool) {
	n.SetIsCode(inCode)
	childInCode := inCode || n.TagName() == "PRE" || n.TagName() == "CODE"
	for _, c := range n.ChildNodes() {
		markCode(c, childInCode)
	}
}
