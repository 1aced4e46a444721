package client

import (
	"regexp"
	"strings"
	"unicode"
)

var vintageRegex = regexp.MustCompile(`\d{4}`)

// ExtractVintage pulls an embedded 4-digit year out of a free-text wine name.
// It returns the remaining keyword and the vintage, or the original keyword
// and "" when no year is present.
func ExtractVintage(keyword string) (string, string) {
	match := vintageRegex.FindString(keyword)
	if match == "" {
		return keyword, ""
	}
	stripped := vintageRegex.ReplaceAllString(keyword, "")
	return strings.TrimSpace(stripped), match
}

// ComposeSearchURL builds the deterministic search URL for a wine query.
// When vintage is empty, a 4-digit run in the keyword is treated as the
// vintage and stripped from it. Excluding auctions appends the country, sort
// and USD currency filter suffix.
func ComposeSearchURL(baseURL, keyword, vintage, country string, includeAuction bool) string {
	if vintage == "" {
		keyword, vintage = ExtractVintage(keyword)
	}
	if country == "" {
		country = "-"
	}

	url := baseURL + "/find/" + normalizeKeyword(keyword) + "/"
	if vintage != "" {
		url += vintage + "/"
	}
	if !includeAuction {
		url += country + "/-/ndbipe?Xsort_order=p&Xcurrencycode=USD&Xsavecurrency=Y"
	}
	return url
}

// normalizeKeyword lowercases the keyword and turns it into a hyphenated URL
// path segment: non-alphanumeric runs become single hyphens.
func normalizeKeyword(keyword string) string {
	var b strings.Builder
	lastHyphen := true // swallow leading separators
	for _, r := range strings.ToLower(strings.TrimSpace(keyword)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastHyphen = false
			continue
		}
		if !lastHyphen {
			b.WriteRune('-')
			lastHyphen = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}
