// Package docs handles document content: rich-text sanitization, plain-text
// conversion for indexing, PDF text extraction, and plan summarization.
package docs

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
)

var htmlPolicy = bluemonday.UGCPolicy()

var collapseWhitespace = regexp.MustCompile(`[ \t]+`)

// SanitizeHTML strips scripts, event handlers, and other dangerous markup
// from editor content before it is stored.
func SanitizeHTML(html string) string {
	return htmlPolicy.Sanitize(html)
}

// HTMLToText flattens HTML into plain text for embedding and search. Block
// elements become line breaks so sentence boundaries survive.
func HTMLToText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		// Fall back to the raw input stripped of tags by the sanitizer.
		return strings.TrimSpace(bluemonday.StrictPolicy().Sanitize(html))
	}
	doc.Find("script, style").Remove()
	doc.Find("p, div, li, h1, h2, h3, h4, h5, h6, br, tr").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	text := doc.Text()
	text = collapseWhitespace.ReplaceAllString(text, " ")

	lines := strings.Split(text, "\n")
	var out []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
