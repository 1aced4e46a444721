package parser

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ldProduct is the typed intermediate for the page's embedded
// application/ld+json block. Every field is optional; the block is validated
// once here instead of scattering defensive lookups through the parser.
type ldProduct struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	Offers      []ldOffer `json:"offers"`
}

type ldOffer struct {
	Price       json.Number `json:"price"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	URL         string      `json:"url"`
	Seller      *ldSeller   `json:"seller"`
}

type ldSeller struct {
	Name    string     `json:"name"`
	Address *ldAddress `json:"address"`
}

type ldAddress struct {
	AddressRegion  string            `json:"addressRegion"`
	AddressCountry *ldAddressCountry `json:"addressCountry"`
}

type ldAddressCountry struct {
	Name string `json:"name"`
}

// extractLDJSON deserializes the first ld+json script block, or returns nil
// when the block is absent or malformed.
func extractLDJSON(doc *goquery.Document) *ldProduct {
	raw := strings.TrimSpace(doc.Find(`script[type="application/ld+json"]`).First().Text())
	if raw == "" {
		return nil
	}

	var product ldProduct
	if err := json.Unmarshal([]byte(raw), &product); err != nil {
		return nil
	}
	return &product
}
