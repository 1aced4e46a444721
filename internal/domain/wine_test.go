package domain

import "testing"

func TestWineID(t *testing.T) {
	tests := []struct {
		wineSearcherID int
		vintage        int
		expected       string
	}{
		{wineSearcherID: 18567, vintage: 2015, expected: "18567_2015"},
		{wineSearcherID: 18567, vintage: NonVintage, expected: "18567_1"},
	}

	for _, tt := range tests {
		if got := WineID(tt.wineSearcherID, tt.vintage); got != tt.expected {
			t.Errorf("WineID(%d, %d) = %q, want %q", tt.wineSearcherID, tt.vintage, got, tt.expected)
		}
	}
}

func TestMinUnitPrice(t *testing.T) {
	if got := MinUnitPrice(nil); got != nil {
		t.Errorf("MinUnitPrice(nil) = %v, want nil", *got)
	}

	offers := []Offer{
		{Price: 1380.00, UnitPrice: 690.00},
		{Price: 860.00, UnitPrice: 860.00},
		{Price: 598.50, UnitPrice: 598.50},
	}
	if got := MinUnitPrice(offers); got == nil || *got != 598.50 {
		t.Errorf("MinUnitPrice() = %v, want 598.50", got)
	}
}

func TestFetchResultOK(t *testing.T) {
	tests := []struct {
		name     string
		result   FetchResult
		expected bool
	}{
		{name: "success", result: FetchResult{StatusCode: 200}, expected: true},
		{name: "redirect", result: FetchResult{StatusCode: 301}, expected: false},
		{name: "error with status", result: FetchResult{StatusCode: 200, Err: errAny}, expected: false},
		{name: "zero value", result: FetchResult{}, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.result.OK(); got != tt.expected {
				t.Errorf("OK() = %v, want %v", got, tt.expected)
			}
		})
	}
}

var errAny = errTest("fetch failed")

type errTest string

func (e errTest) Error() string { return string(e) }
