package parser

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Safe extraction helpers. Each returns a zero value on a selector miss so a
// single drifted page region degrades one field instead of the whole record.

func firstText(doc *goquery.Document, selector string) string {
	return strings.TrimSpace(doc.Find(selector).First().Text())
}

func firstAttr(doc *goquery.Document, selector, attr string) string {
	return strings.TrimSpace(doc.Find(selector).First().AttrOr(attr, ""))
}

func metaName(doc *goquery.Document, name string) string {
	return firstAttr(doc, fmt.Sprintf(`meta[name=%q]`, name), "content")
}

func metaProperty(doc *goquery.Document, property string) string {
	return firstAttr(doc, fmt.Sprintf(`meta[property=%q]`, property), "content")
}
