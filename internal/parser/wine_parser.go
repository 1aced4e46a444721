package parser

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"winesearcher/parser/internal/domain"

	"github.com/PuerkitoBio/goquery"
	log "github.com/sirupsen/logrus"
)

var urlVintageRegex = regexp.MustCompile(`/(\d{4})/`)
var queryVintageRegex = regexp.MustCompile(`(\d{4})\s*$`)

// WineParser maps arbitrary, drifting wine-searcher markup into a typed
// record. It performs no I/O.
type WineParser struct {
	baseURL string
}

func NewWineParser(baseURL string) *WineParser {
	return &WineParser{
		baseURL: baseURL,
	}
}

// ParseWine extracts a wine record from a product page. Every field is
// independently defensive: a missing selector degrades to a zero field, never
// an abort. A page with no identifiable product yields nil. query is the
// originating search text, used for vintage fallback and operator-visible
// logging; it never reaches the record itself.
func (p *WineParser) ParseWine(html, query string) (wine *domain.Wine) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("❌ Parser panic for query %q: %v", query, r)
			wine = nil
		}
	}()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		log.Errorf("❌ Failed to parse HTML for query %q: %v", query, err)
		return nil
	}

	heading := doc.Find("h1").First()
	idAttr := strings.TrimSpace(heading.AttrOr("data-name-id", ""))
	wineSearcherID, err := strconv.Atoi(idAttr)
	if err != nil {
		// No identifiable product on the page. A partial record would be
		// worse than none.
		log.Warnf("⚠️ No wine found for query %q", query)
		return nil
	}

	name := strings.TrimSpace(heading.Text())
	ogURL := metaProperty(doc, "og:url")
	vintage := p.resolveVintage(ogURL, query)

	ld := extractLDJSON(doc)

	description := firstText(doc, "li.product-details__description p")
	if description == "" && ld != nil {
		description = strings.TrimSpace(ld.Description)
	}

	region := metaName(doc, "productRegion")

	regionImage := ""
	if region != "" {
		if src := firstAttr(doc, fmt.Sprintf(`img[alt=%q]`, region), "data-src"); src != "" {
			regionImage = p.baseURL + src
		}
	}

	producer := firstAttr(doc, "a#MoreProducerDetail", "title")
	producer = strings.TrimPrefix(producer, "More information about ")

	wineType, wineStyle := splitStyle(firstText(doc, "li.product-details__styles span"))

	offers, offersCount, searchExpanded := p.extractOffers(doc, ld)

	return &domain.Wine{
		ID:             domain.WineID(wineSearcherID, vintage),
		WineSearcherID: wineSearcherID,
		Vintage:        vintage,
		Name:           name,
		URL:            ogURL,
		Description:    description,
		Region:         region,
		RegionImage:    regionImage,
		Origin:         metaName(doc, "productOrigin"),
		GrapeVariety:   metaName(doc, "productVarietal"),
		Image:          metaProperty(doc, "og:image"),
		Producer:       producer,
		AveragePrice:   extractAveragePrice(doc),
		MinPrice:       domain.MinUnitPrice(offers),
		WineType:       wineType,
		WineStyle:      wineStyle,
		Offers:         offers,
		OffersCount:    offersCount,
		SearchExpanded: searchExpanded,
	}
}

// resolveVintage prefers a 4-digit year in the canonical page URL, then a
// trailing year in the query text. "All" and absent both map to the
// non-vintage sentinel.
func (p *WineParser) resolveVintage(ogURL, query string) int {
	if matches := urlVintageRegex.FindStringSubmatch(ogURL); len(matches) > 1 {
		return strToVintage(matches[1])
	}
	if matches := queryVintageRegex.FindStringSubmatch(strings.TrimSpace(query)); len(matches) > 1 {
		return strToVintage(matches[1])
	}
	return domain.NonVintage
}

func strToVintage(vintageStr string) int {
	if vintageStr == "" || vintageStr == "All" {
		return domain.NonVintage
	}
	vintage, err := strconv.Atoi(vintageStr)
	if err != nil {
		return domain.NonVintage
	}
	return vintage
}

// extractOffers captures up to domain.MaxOffers marketplace offers plus the
// site-reported total. An auto-expanded search invalidates all offer data for
// the queried vintage, so it short-circuits to an empty list.
func (p *WineParser) extractOffers(doc *goquery.Document, ld *ldProduct) ([]domain.Offer, int, bool) {
	if doc.Find("#pjax-offers .auto-expand-card").Length() > 0 {
		return nil, 0, true
	}

	offersCount := 0
	countText := firstText(doc, "#pjax-offers > div:first-child span.font-weight-bold")
	if fields := strings.Fields(countText); len(fields) > 0 {
		if count, err := strconv.Atoi(strings.ReplaceAll(fields[0], ",", "")); err == nil {
			offersCount = count
		}
	}

	var offers []domain.Offer
	doc.Find("div.offer-card__container").EachWithBreak(func(i int, card *goquery.Selection) bool {
		if len(offers) >= domain.MaxOffers {
			return false
		}

		price := parsePrice(card.Find(".price__detail_main").First().Text())
		if price == nil {
			// An offer card without a price is noise, not data.
			return true
		}

		unitPrice := price
		if secondary := card.Find(".price__detail_secondary"); secondary.Length() > 0 {
			unitText := secondary.First().Text()
			if parsed := parsePrice(strings.SplitN(unitText, "/", 2)[0]); parsed != nil {
				unitPrice = parsed
			}
		}

		offerURL := strings.TrimSpace(card.Find("a.col2").First().AttrOr("href", ""))
		if decoded, err := url.QueryUnescape(offerURL); err == nil {
			offerURL = decoded
		}

		location := strings.TrimSpace(card.Find(".offer-card__location-address").First().Text())
		sellerRegion := ""
		if location != "" {
			parts := strings.Split(location, ":")
			sellerRegion = strings.TrimSpace(parts[len(parts)-1])
		}

		sellerCountry := ""
		if flagClass := card.Find("svg.offer-card__location-flag").First().AttrOr("class", ""); flagClass != "" {
			fields := strings.Fields(flagClass)
			last := fields[len(fields)-1]
			sellerCountry = strings.ToUpper(strings.TrimPrefix(last, "icon-flag-"))
		}

		offers = append(offers, domain.Offer{
			Price:                *price,
			UnitPrice:            *unitPrice,
			Description:          strings.TrimSpace(card.Find("div.mb-2.small.d-full-card-only").First().Text()),
			SellerName:           strings.TrimSpace(card.Find("a.offer-card__merchant-name").First().Text()),
			URL:                  offerURL,
			SellerAddressRegion:  sellerRegion,
			SellerAddressCountry: sellerCountry,
		})
		return true
	})

	// Older page variants carry offers only in the metadata block.
	if len(offers) == 0 && ld != nil {
		offers = offersFromLDJSON(ld)
		if offersCount == 0 {
			offersCount = len(offers)
		}
	}

	return offers, offersCount, false
}

func offersFromLDJSON(ld *ldProduct) []domain.Offer {
	var offers []domain.Offer
	for _, entry := range ld.Offers {
		if len(offers) >= domain.MaxOffers {
			break
		}

		price, err := entry.Price.Float64()
		if err != nil {
			continue
		}

		offer := domain.Offer{
			Price:       price,
			UnitPrice:   price,
			Name:        entry.Name,
			Description: entry.Description,
			URL:         entry.URL,
		}
		if entry.Seller != nil {
			offer.SellerName = entry.Seller.Name
			if entry.Seller.Address != nil {
				offer.SellerAddressRegion = entry.Seller.Address.AddressRegion
				if entry.Seller.Address.AddressCountry != nil {
					offer.SellerAddressCountry = entry.Seller.Address.AddressCountry.Name
				}
			}
		}
		offers = append(offers, offer)
	}
	return offers
}

// extractAveragePrice pulls the currency amount out of the page-level summary
// meta description ("... $1,234.00 / 750ml ...").
func extractAveragePrice(doc *goquery.Document) *float64 {
	content := metaName(doc, "description")
	_, after, found := strings.Cut(content, "$")
	if !found {
		return nil
	}
	amount := strings.TrimSpace(strings.SplitN(after, "/", 2)[0])
	return parsePrice(amount)
}

// parsePrice converts a "$1,234.56"-style string to a float, or nil.
func parsePrice(text string) *float64 {
	cleaned := strings.TrimSpace(strings.ReplaceAll(strings.ReplaceAll(text, "$", ""), ",", ""))
	if cleaned == "" {
		return nil
	}
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}
	return &value
}

func splitStyle(style string) (string, string) {
	if style == "" {
		return "", ""
	}
	parts := strings.SplitN(style, " - ", 2)
	if len(parts) < 2 {
		return strings.TrimSpace(parts[0]), ""
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
}
