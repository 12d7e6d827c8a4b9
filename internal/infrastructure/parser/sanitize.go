package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// SanitizeText strips markup and entities from review text and collapses
// whitespace. Plain text only has its whitespace collapsed.
func SanitizeText(raw string) string {
	text := raw
	if strings.ContainsAny(raw, "<&") {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
		if err == nil {
			doc.Find("script, style").Remove()
			doc.Find("br, p, div, li").Each(func(_ int, s *goquery.Selection) {
				s.AfterHtml(" ")
			})
			text = doc.Text()
		}
	}
	return strings.Join(strings.Fields(text), " ")
}
