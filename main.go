// Command minidom reads an HTML page, passes it through the sanitizing
// document parser and prints its title, text, HTML or Markdown.
//
// Usage:
//
//	minidom [flags] [file|url]      # reads stdin when no input is given
//	minidom -format markdown https://example.com/article
//	minidom -config minidom.yaml -script extract.js page.html
//	minidom -select "article h2" -format html page.html
//
// A script runs in a JavaScript runtime where document, DOMParser and Node
// are installed and the parsed page is bound to the global "page".
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/chrisuehlinger/minidom/dom"
	"github.com/chrisuehlinger/minidom/js"
	"github.com/chrisuehlinger/minidom/markdown"
	"github.com/chrisuehlinger/minidom/network"
	"github.com/chrisuehlinger/minidom/sanitize"
)

// errInputTooLarge is returned when the input exceeds MaxInputBytes.
var errInputTooLarge = errors.New("input too large")

func main() {
	configPath := flag.String("config", "", "path to minidom.yaml config file")
	format := flag.String("format", FormatText, "output format: text, markdown, html, title")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	maxInput := flag.Int64("max-input-bytes", defaultMaxInputBytes, "maximum input size")
	strict := flag.Bool("strict", false, "re-sanitize html output with the export policy")
	domain := flag.String("domain", "", "base URL for relative links in markdown output")
	selector := flag.String("select", "", "CSS selector restricting output to matching elements")
	script := flag.String("script", "", "JavaScript file to run against the parsed page")
	timeout := flag.Duration("timeout", defaultFetchTimeout, "timeout for fetching a URL")
	flag.Parse()

	cfg := DefaultConfig()
	if *configPath != "" {
		loaded, err := LoadConfigFile(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "minidom:", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	// flags given on the command line win over the file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "format":
			cfg.Format = *format
		case "log-level":
			cfg.LogLevel = *logLevel
		case "max-input-bytes":
			cfg.MaxInputBytes = *maxInput
		case "strict":
			cfg.StrictExport = *strict
		case "domain":
			cfg.Markdown.Domain = *domain
		case "timeout":
			cfg.Fetch.Timeout = *timeout
		case "select":
			cfg.Select = *selector
		}
	})
	cfg.defaults()
	if err := cfg.validate(); err != nil {
		fmt.Fprintln(os.Stderr, "minidom:", err)
		os.Exit(2)
	}

	level, _ := parseLevel(cfg.LogLevel)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := run(context.Background(), logger, cfg, flag.Arg(0), os.Stdin, *script, os.Stdout); err != nil {
		logger.Error("minidom: fatal", "error", err)
		os.Exit(1)
	}
}

// run processes one page. input is a URL, a file path, or empty for stdin.
func run(ctx context.Context, logger *slog.Logger, cfg *Config, input string, stdin io.Reader, scriptPath string, out io.Writer) error {
	src, pageURL, err := load(ctx, cfg, input, stdin)
	if err != nil {
		return err
	}
	if cfg.Markdown.Domain == "" && pageURL != "" {
		cfg.Markdown.Domain = pageURL
	}

	reg := js.NewRegistry(js.NewRuntime(logger))
	reg.Install()
	doc := reg.ParseFromString(src, "text/html")
	logger.Debug("minidom: parsed", "bytes", len(src), "title", doc.Title())

	if scriptPath != "" {
		if err := runScript(reg, doc, scriptPath); err != nil {
			return err
		}
	}

	result, err := render(ctx, logger, cfg, doc)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, result)
	return err
}

// load returns the markup of input and, for URLs, the final page URL.
func load(ctx context.Context, cfg *Config, input string, stdin io.Reader) (string, string, error) {
	switch {
	case input == "" || input == "-":
		src, err := readLimited(stdin, cfg.MaxInputBytes)
		return src, "", err
	case network.IsURL(input):
		fetcher, err := network.NewFetcher(
			network.WithTimeout(cfg.Fetch.Timeout),
			network.WithUserAgent(cfg.Fetch.UserAgent),
			network.WithMaxBodyBytes(cfg.MaxInputBytes),
		)
		if err != nil {
			return "", "", err
		}
		page, err := fetcher.Fetch(ctx, input)
		if errors.Is(err, network.ErrTooLarge) {
			return "", "", fmt.Errorf("%w: %v", errInputTooLarge, err)
		}
		if err != nil {
			return "", "", err
		}
		return page.Body, page.URL.String(), nil
	default:
		f, err := os.Open(input)
		if err != nil {
			return "", "", fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		src, err := readLimited(f, cfg.MaxInputBytes)
		return src, "", err
	}
}

func readLimited(in io.Reader, limit int64) (string, error) {
	data, err := io.ReadAll(io.LimitReader(in, limit+1))
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	if int64(len(data)) > limit {
		return "", fmt.Errorf("%w: more than %d bytes", errInputTooLarge, limit)
	}
	return string(data), nil
}

func runScript(reg *js.Registry, doc *dom.Document, path string) error {
	code, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read script: %w", err)
	}
	rt := reg.Runtime()
	if err := rt.VM().Set("page", reg.Binder().BindDocument(doc)); err != nil {
		return fmt.Errorf("bind page: %w", err)
	}
	if err := rt.ExecuteScript(string(code), path); err != nil {
		return fmt.Errorf("script %s: %w", path, err)
	}
	return nil
}

// render prints the title, or the body (or each element matching
// cfg.Select) in the configured format.
func render(ctx context.Context, logger *slog.Logger, cfg *Config, doc *dom.Document) (string, error) {
	conv := markdown.New(
		markdown.WithDomain(cfg.Markdown.Domain),
		markdown.WithLogger(logger),
	)
	if cfg.Select != "" && cfg.Format != FormatTitle {
		return renderSelection(ctx, logger, cfg, conv, doc)
	}

	switch cfg.Format {
	case FormatTitle:
		return doc.Title(), nil
	case FormatHTML:
		return exportHTML(cfg, doc.Body().SerializeChildren()), nil
	case FormatMarkdown:
		return conv.ConvertDocument(ctx, doc)
	default:
		return plainText(doc.Body()), nil
	}
}

func renderSelection(ctx context.Context, logger *slog.Logger, cfg *Config, conv *markdown.Converter, doc *dom.Document) (string, error) {
	found, err := doc.Select(cfg.Select)
	if err != nil {
		return "", err
	}
	logger.Debug("minidom: selected", "selector", cfg.Select, "matches", len(found))

	sep := "\n"
	if cfg.Format == FormatMarkdown {
		sep = "\n\n"
	}
	parts := make([]string, 0, len(found))
	for _, n := range found {
		var out string
		switch cfg.Format {
		case FormatHTML:
			out = exportHTML(cfg, n.OuterHTML())
		case FormatMarkdown:
			if out, err = conv.ConvertNode(ctx, n); err != nil {
				return "", err
			}
		default:
			out = plainText(n)
		}
		if out != "" {
			parts = append(parts, out)
		}
	}
	return strings.Join(parts, sep), nil
}

func exportHTML(cfg *Config, markup string) string {
	if cfg.StrictExport {
		return sanitize.Export(markup)
	}
	return markup
}

// blockTags start a new line in plain text output.
var blockTags = map[string]bool{
	"P": true, "DIV": true, "BR": true, "HR": true, "LI": true, "UL": true, "OL": true,
	"H1": true, "H2": true, "H3": true, "H4": true, "H5": true, "H6": true,
	"BLOCKQUOTE": true, "PRE": true, "TABLE": true, "TR": true, "SECTION": true,
	"ARTICLE": true, "HEADER": true, "FOOTER": true, "DT": true, "DD": true,
	"FIGCAPTION": true, "MAIN": true, "NAV": true, "ASIDE": true,
}

// plainText renders the text of n one block per line, with runs of
// whitespace collapsed.
func plainText(n *dom.Node) string {
	var sb strings.Builder
	writeText(&sb, n)

	var lines []string
	for _, line := range strings.Split(sb.String(), "\n") {
		if f := strings.Fields(line); len(f) > 0 {
			lines = append(lines, strings.Join(f, " "))
		}
	}
	return strings.Join(lines, "\n")
}

func writeText(sb *strings.Builder, n *dom.Node) {
	if n.IsText() {
		sb.WriteString(strings.ReplaceAll(n.Data(), "\n", " "))
		return
	}
	block := blockTags[n.TagName()]
	if block {
		sb.WriteByte('\n')
	}
	for _, c := range n.ChildNodes() {
		writeText(sb, c)
	}
	if block {
		sb.WriteByte('\n')
	}
}
