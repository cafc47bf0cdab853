package feed

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// plainText returns the visible text of an HTML fragment with whitespace collapsed.
// Input without markup is returned trimmed.
func plainText(fragment string) string {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" || !strings.ContainsAny(fragment, "<&") {
		return collapseSpace(fragment)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return collapseSpace(fragment)
	}
	doc.Find("script, style").Remove()
	return collapseSpace(doc.Text())
}

// firstImage returns the src of the first <img> in an HTML fragment, or "".
func firstImage(fragment string) string {
	if !strings.Contains(fragment, "<img") {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return ""
	}
	src, _ := doc.Find("img[src]").First().Attr("src")
	return strings.TrimSpace(src)
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
