// Package markup converts markdown sources to HTML fragments with goldmark.
package markup

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"go.abhg.dev/goldmark/frontmatter"
	mermaid "go.abhg.dev/goldmark/mermaid"
)

// Document is the result of converting one markdown source.
type Document struct {
	HTML  []byte
	Title string
	Meta  map[string]any
}

// Converter turns markdown into HTML. It is safe for concurrent use.
type Converter struct {
	md goldmark.Markdown
}

// New returns a converter with GFM, mermaid and front matter support.
func New() *Converter {
	return &Converter{
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				&mermaid.Extender{},
				&frontmatter.Extender{
					Mode: frontmatter.SetMetadata,
				},
			),
			goldmark.WithRendererOptions(
				html.WithUnsafe(),
			),
		),
	}
}

// Convert renders src. Links to sibling markdown files are rewritten to .html.
func (c *Converter) Convert(src []byte) (*Document, error) {
	src = replaceMdLinks(src)

	ctx := parser.NewContext()
	root := c.md.Parser().Parse(text.NewReader(src), parser.WithContext(ctx))

	var meta map[string]any
	if doc, ok := root.(interface{ Meta() map[string]any }); ok {
		meta = doc.Meta()
	}
	if meta == nil {
		meta = map[string]any{}
	}

	var buf bytes.Buffer
	if err := c.md.Renderer().Render(&buf, src, root); err != nil {
		return nil, fmt.Errorf("failed to render markdown: %w", err)
	}

	doc := &Document{HTML: buf.Bytes(), Meta: meta}
	if title, ok := meta["title"].(string); ok {
		doc.Title = strings.TrimSpace(title)
	}
	return doc, nil
}

var mdLinkRe = regexp.MustCompile(`\[([^\]]*)\]\(([^)]*\.(?:md|markdown))\)`)

// replaceMdLinks replaces links to .md/.markdown files with .html in markdown content.
func replaceMdLinks(content []byte) []byte {
	return mdLinkRe.ReplaceAllFunc(content, func(match []byte) []byte {
		s := string(match)
		s = strings.ReplaceAll(s, ".md)", ".html)")
		s = strings.ReplaceAll(s, ".markdown)", ".html)")
		return []byte(s)
	})
}
