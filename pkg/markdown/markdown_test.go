package markdown

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFirstHeading(t *testing.T) {
	tests := []struct {
		name   string
		source string
		level  int
		want   string
		found  bool
	}{
		{"level one", "# Hello World\n\nbody", 1, "Hello World", true},
		{"inline markup stripped", "# Grow with **WhatsApp** `links`\n", 1, "Grow with WhatsApp links", true},
		{"arabic", "# دليل التسويق عبر واتساب\n\nنص", 1, "دليل التسويق عبر واتساب", true},
		{"only second level", "## Introduction\n\ntext", 1, "", false},
		{"second level requested", "# Title\n\n## Section\n", 2, "Section", true},
		{"setext heading", "Title\n=====\n\nbody", 1, "Title", true},
		{"empty document", "", 1, "", false},
		{"heading inside code is ignored", "```\n# not a title\n```\n", 1, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FirstHeading(tt.source, tt.level)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFirstParagraph(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
		found  bool
	}{
		{"after heading", "# Title\n\nFirst paragraph.\n\nSecond.", "First paragraph.", true},
		{"soft breaks joined", "line one\nline two", "line one line two", true},
		{"links keep their label", "Read [our guide](https://example.com) today", "Read our guide today", true},
		{"list items are not paragraphs", "- item\n- item\n\nAfter list", "After list", true},
		{"headings only", "# A\n\n## B\n", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FirstParagraph(tt.source)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRenderHTML(t *testing.T) {
	html := RenderHTML("# Title\n\n| a | b |\n|---|---|\n| 1 | 2 |\n\n~~old~~")
	assert.Contains(t, html, "<h1>Title</h1>")
	assert.Contains(t, html, "<table>")
	assert.Contains(t, html, "<del>old</del>")

	assert.Empty(t, RenderHTML("   "))

	unsafe := RenderHTML("<script>alert(1)</script>\n\ntext")
	assert.False(t, strings.Contains(unsafe, "<script>"))
}
