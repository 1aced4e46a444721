package checkpoint

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"winesearcher/parser/internal/domain"
)

func sampleWine() *domain.Wine {
	avg := 645.00
	min := 598.50
	return &domain.Wine{
		ID:             "18567_2015",
		WineSearcherID: 18567,
		Vintage:        2015,
		Name:           "Chateau Margaux",
		URL:            "https://www.wine-searcher.com/find/chateau-margaux/2015/usa",
		Description:    "Powerful yet elegant.",
		Region:         "Margaux",
		Origin:         "Margaux, Bordeaux, France",
		GrapeVariety:   "Cabernet Sauvignon Blend",
		Producer:       "Chateau Margaux",
		AveragePrice:   &avg,
		MinPrice:       &min,
		WineType:       "Red",
		WineStyle:      "Savory and Classic",
		OffersCount:    247,
		Offers: []domain.Offer{
			{Price: 598.50, UnitPrice: 598.50, SellerName: "Grand Cru Cellars", URL: "https://shop.test/margaux"},
			{Price: 860.00, UnitPrice: 860.00, SellerName: "Empire Wines"},
		},
	}
}

func TestCSVStoreAppendAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "wines.csv")

	store, err := NewCSVStore(path)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	batch := map[string]*domain.Wine{
		"chateau margaux 2015": sampleWine(),
		"no such wine":         nil,
	}
	if err := store.Append(batch); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// A fresh store on the same path resumes the previous run.
	store, err = NewCSVStore(path)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer store.Close()

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("loaded = %d entries, want 2", len(loaded))
	}

	null, ok := loaded["no such wine"]
	if !ok {
		t.Fatal("missing null result entry")
	}
	if null != nil {
		t.Fatalf("null result = %+v, want nil", null)
	}

	wine, ok := loaded["chateau margaux 2015"]
	if !ok || wine == nil {
		t.Fatal("missing wine entry")
	}
	if wine.ID != "18567_2015" || wine.WineSearcherID != 18567 || wine.Vintage != 2015 {
		t.Errorf("identity = %q/%d/%d", wine.ID, wine.WineSearcherID, wine.Vintage)
	}
	if wine.AveragePrice == nil || *wine.AveragePrice != 645.00 {
		t.Errorf("AveragePrice = %v", wine.AveragePrice)
	}
	if wine.MinPrice == nil || *wine.MinPrice != 598.50 {
		t.Errorf("MinPrice = %v", wine.MinPrice)
	}
	if len(wine.Offers) != 2 {
		t.Fatalf("offers = %d, want 2", len(wine.Offers))
	}
	if wine.Offers[0].SellerName != "Grand Cru Cellars" || wine.Offers[0].URL != "https://shop.test/margaux" {
		t.Errorf("first offer = %+v", wine.Offers[0])
	}
}

func TestCSVStoreHeaderWrittenOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wines.csv")

	for i := 0; i < 2; i++ {
		store, err := NewCSVStore(path)
		if err != nil {
			t.Fatalf("open %d: %v", i, err)
		}
		if err := store.Append(map[string]*domain.Wine{"q": nil}); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
		if err := store.Close(); err != nil {
			t.Fatalf("close %d: %v", i, err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	if got := strings.Count(string(data), "wine_searcher_id"); got != 1 {
		t.Fatalf("header written %d times, want 1", got)
	}
}

func TestCSVStoreLoadEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wines.csv")

	store, err := NewCSVStore(path)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer store.Close()

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != 0 {
		t.Fatalf("loaded = %d entries, want 0", len(loaded))
	}
}

func TestCSVStoreSkipsMalformedRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wines.csv")

	content := strings.Join([]string{
		strings.Join(csvHeader, ","),
		`18567_2015,18567,2015,Margaux,,,,,,,,,,,Red,,247,false,chateau margaux 2015,,,`,
		`"unterminated quote`,
		"",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	store, err := NewCSVStore(path)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer store.Close()

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != 1 {
		t.Fatalf("loaded = %d entries, want 1 (malformed row skipped)", len(loaded))
	}
	if wine := loaded["chateau margaux 2015"]; wine == nil || wine.Name != "Margaux" {
		t.Fatalf("wine = %+v", wine)
	}
}
