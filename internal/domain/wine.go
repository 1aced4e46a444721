package domain

import "fmt"

// MaxOffers caps how many marketplace offers are captured per wine. The site
// reports the full count separately in OffersCount.
const MaxOffers = 5

// NonVintage is the sentinel vintage for "All"/non-vintage listings.
const NonVintage = 1

type Offer struct {
	Price                float64 `json:"price"`
	UnitPrice            float64 `json:"unit_price"`
	Description          string  `json:"description,omitempty"`
	SellerName           string  `json:"seller_name,omitempty"`
	URL                  string  `json:"url,omitempty"`
	Name                 string  `json:"name,omitempty"`
	SellerAddressRegion  string  `json:"seller_address_region,omitempty"`
	SellerAddressCountry string  `json:"seller_address_country,omitempty"`
}

type Wine struct {
	ID             string   `json:"id"`               // "{wine_searcher_id}_{vintage}", stable across re-fetches
	WineSearcherID int      `json:"wine_searcher_id"` // site-assigned product identifier
	Vintage        int      `json:"vintage"`          // NonVintage (1) for "All"
	Name           string   `json:"name,omitempty"`
	URL            string   `json:"url,omitempty"`
	Description    string   `json:"description,omitempty"`
	Region         string   `json:"region,omitempty"`
	RegionImage    string   `json:"region_image,omitempty"`
	Origin         string   `json:"origin,omitempty"`
	GrapeVariety   string   `json:"grape_variety,omitempty"`
	Image          string   `json:"image,omitempty"`
	Producer       string   `json:"producer,omitempty"`
	AveragePrice   *float64 `json:"average_price,omitempty"`
	MinPrice       *float64 `json:"min_price,omitempty"`
	WineType       string   `json:"wine_type,omitempty"`
	WineStyle      string   `json:"wine_style,omitempty"`
	Offers         []Offer  `json:"offers,omitempty"`
	OffersCount    int      `json:"offers_count"` // site-reported total, may exceed len(Offers)
	SearchExpanded bool     `json:"search_expanded"`
}

// WineID builds the deterministic record identifier. Re-fetching the same
// product and vintage must always yield the same ID so the sink can upsert.
func WineID(wineSearcherID, vintage int) string {
	return fmt.Sprintf("%d_%d", wineSearcherID, vintage)
}

// MinUnitPrice returns the lowest unit price across offers, or nil when the
// wine has no captured offers.
func MinUnitPrice(offers []Offer) *float64 {
	if len(offers) == 0 {
		return nil
	}
	min := offers[0].UnitPrice
	for _, offer := range offers[1:] {
		if offer.UnitPrice < min {
			min = offer.UnitPrice
		}
	}
	return &min
}
