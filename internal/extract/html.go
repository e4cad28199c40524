package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
)

var htmlPolicy = bluemonday.UGCPolicy()

// htmlText converts an HTML solicitation page to plain text. The markup is
// sanitized first because pages arrive from untrusted hosts, then flattened
// with newlines between block elements so the engine's line-oriented
// patterns still work.
func htmlText(html string) (string, error) {
	sanitized := htmlPolicy.Sanitize(html)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(sanitized))
	if err != nil {
		return "", err
	}

	var lines []string
	doc.Find("h1, h2, h3, h4, p, li, td, th, pre, div").Each(func(_ int, sel *goquery.Selection) {
		if sel.Children().Length() > 0 {
			return // only leaf blocks, to avoid duplicated nested text
		}
		if s := strings.TrimSpace(sel.Text()); s != "" {
			lines = append(lines, s)
		}
	})

	if len(lines) == 0 {
		// No block structure survived sanitization; fall back to the
		// whole document's text.
		return strings.TrimSpace(doc.Text()), nil
	}

	return strings.Join(lines, "\n"), nil
}
