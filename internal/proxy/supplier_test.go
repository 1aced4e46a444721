package proxy

import (
	"reflect"
	"testing"
)

func TestStaticRoundRobin(t *testing.T) {
	s := Static([]string{"http://p1:8080", "http://p2:8080", "http://p3:8080"})

	got := []string{s.Get(), s.Get(), s.Get(), s.Get()}
	want := []string{"http://p1:8080", "http://p2:8080", "http://p3:8080", "http://p1:8080"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("round-robin order = %v, want %v", got, want)
	}
}

func TestEmptyPoolReturnsDirect(t *testing.T) {
	s := Static(nil)
	for i := 0; i < 3; i++ {
		if got := s.Get(); got != "" {
			t.Fatalf("Get() = %q, want empty string for direct connection", got)
		}
	}
}

func TestParseProviderList(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected []string
	}{
		{
			name:     "newline separated",
			body:     "10.0.0.1:8080\n10.0.0.2:8080\n",
			expected: []string{"http://10.0.0.1:8080", "http://10.0.0.2:8080"},
		},
		{
			name:     "comma separated",
			body:     "10.0.0.1:8080,10.0.0.2:8080",
			expected: []string{"http://10.0.0.1:8080", "http://10.0.0.2:8080"},
		},
		{
			name:     "scheme preserved",
			body:     "socks5://10.0.0.1:1080\nhttp://10.0.0.2:8080",
			expected: []string{"socks5://10.0.0.1:1080", "http://10.0.0.2:8080"},
		},
		{
			name:     "whitespace and blanks skipped",
			body:     "  10.0.0.1:8080  \r\n\n   \n10.0.0.2:8080",
			expected: []string{"http://10.0.0.1:8080", "http://10.0.0.2:8080"},
		},
		{
			name:     "empty body",
			body:     "",
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseProviderList(tt.body)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("ParseProviderList(%q) = %v, want %v", tt.body, got, tt.expected)
			}
		})
	}
}
