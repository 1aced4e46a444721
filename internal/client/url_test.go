package client

import "testing"

func TestComposeSearchURL(t *testing.T) {
	base := "https://www.wine-searcher.com"

	tests := []struct {
		name           string
		keyword        string
		vintage        string
		country        string
		includeAuction bool
		expected       string
	}{
		{
			name:     "keyword with embedded vintage",
			keyword:  "Château Margaux 2015",
			country:  "usa",
			expected: base + "/find/château-margaux/2015/usa/-/ndbipe?Xsort_order=p&Xcurrencycode=USD&Xsavecurrency=Y",
		},
		{
			name:     "explicit vintage wins over keyword",
			keyword:  "Opus One",
			vintage:  "2018",
			country:  "usa",
			expected: base + "/find/opus-one/2018/usa/-/ndbipe?Xsort_order=p&Xcurrencycode=USD&Xsavecurrency=Y",
		},
		{
			name:     "no vintage",
			keyword:  "Opus One",
			country:  "usa",
			expected: base + "/find/opus-one/usa/-/ndbipe?Xsort_order=p&Xcurrencycode=USD&Xsavecurrency=Y",
		},
		{
			name:     "empty country becomes wildcard",
			keyword:  "Opus One 2018",
			country:  "",
			expected: base + "/find/opus-one/2018/-/-/ndbipe?Xsort_order=p&Xcurrencycode=USD&Xsavecurrency=Y",
		},
		{
			name:           "auction listings skip the filter suffix",
			keyword:        "Opus One 2018",
			country:        "usa",
			includeAuction: true,
			expected:       base + "/find/opus-one/2018/",
		},
		{
			name:     "punctuation collapses to hyphens",
			keyword:  "  Penfolds, Grange * Bin 95  ",
			country:  "aus",
			expected: base + "/find/penfolds-grange-bin-95/aus/-/ndbipe?Xsort_order=p&Xcurrencycode=USD&Xsavecurrency=Y",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComposeSearchURL(base, tt.keyword, tt.vintage, tt.country, tt.includeAuction)
			if got != tt.expected {
				t.Errorf("ComposeSearchURL() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestComposeSearchURLDeterministic(t *testing.T) {
	base := "https://www.wine-searcher.com"
	first := ComposeSearchURL(base, "Château Margaux 2015", "", "usa", false)
	for i := 0; i < 10; i++ {
		if got := ComposeSearchURL(base, "Château Margaux 2015", "", "usa", false); got != first {
			t.Fatalf("ComposeSearchURL() not deterministic: %q vs %q", got, first)
		}
	}
}

func TestExtractVintage(t *testing.T) {
	tests := []struct {
		name        string
		keyword     string
		wantKeyword string
		wantVintage string
	}{
		{name: "trailing year", keyword: "Opus One 2018", wantKeyword: "Opus One", wantVintage: "2018"},
		{name: "leading year", keyword: "2015 Château Margaux", wantKeyword: "Château Margaux", wantVintage: "2015"},
		{name: "no year", keyword: "Opus One", wantKeyword: "Opus One", wantVintage: ""},
		{name: "short number kept", keyword: "Bin 95", wantKeyword: "Bin 95", wantVintage: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			keyword, vintage := ExtractVintage(tt.keyword)
			if keyword != tt.wantKeyword || vintage != tt.wantVintage {
				t.Errorf("ExtractVintage(%q) = (%q, %q), want (%q, %q)",
					tt.keyword, keyword, vintage, tt.wantKeyword, tt.wantVintage)
			}
		})
	}
}
