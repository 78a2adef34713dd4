// Package markdown renders article bodies and pulls structural text out of them.
package markdown

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	htmlrenderer "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
)

// renderEngine produces the HTML served with published posts
var renderEngine = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		extension.Typographer,
	),
	goldmark.WithRendererOptions(
		htmlrenderer.WithHardWraps(),
		htmlrenderer.WithXHTML(),
	),
)

// textEngine is used for extraction only; no typographer so quotes stay as written
var textEngine = goldmark.New(goldmark.WithExtensions(extension.GFM))

// RenderHTML converts markdown into HTML, falling back to escaped text on failure.
// Raw HTML in the source is dropped since goldmark runs without html.WithUnsafe.
func RenderHTML(source string) string {
	src := strings.TrimSpace(source)
	if src == "" {
		return ""
	}

	var out bytes.Buffer
	if err := renderEngine.Convert([]byte(src), &out); err != nil {
		return template.HTMLEscapeString(src)
	}
	return out.String()
}

// FirstHeading returns the plain text of the first top-level heading of the given level
func FirstHeading(source string, level int) (string, bool) {
	src := []byte(source)
	doc := textEngine.Parser().Parse(text.NewReader(src))

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		h, ok := n.(*ast.Heading)
		if !ok || h.Level != level {
			continue
		}
		if title := plainText(h, src); title != "" {
			return title, true
		}
	}
	return "", false
}

// FirstParagraph returns the plain text of the first top-level paragraph.
// Headings, lists, quotes and code blocks are skipped.
func FirstParagraph(source string) (string, bool) {
	src := []byte(source)
	doc := textEngine.Parser().Parse(text.NewReader(src))

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if n.Kind() != ast.KindParagraph {
			continue
		}
		if para := plainText(n, src); para != "" {
			return para, true
		}
	}
	return "", false
}

// plainText concatenates the text leaves under n, dropping inline markup
func plainText(n ast.Node, src []byte) string {
	var b strings.Builder

	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := c.(type) {
		case *ast.Text:
			b.Write(v.Segment.Value(src))
			if v.SoftLineBreak() || v.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(v.Value)
		case *ast.AutoLink:
			b.Write(v.Label(src))
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	return strings.Join(strings.Fields(b.String()), " ")
}
