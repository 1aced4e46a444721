package headers

import "testing"

func TestGenerateCompleteHeaderSet(t *testing.T) {
	g := NewGenerator(1)

	required := []string{
		"User-Agent",
		"Accept",
		"Accept-Language",
		"Sec-Ch-Ua",
		"Sec-Ch-Ua-Platform",
		"Sec-Fetch-Dest",
		"Upgrade-Insecure-Requests",
	}

	for i := 0; i < 20; i++ {
		set := g.Generate()
		for _, key := range required {
			if set[key] == "" {
				t.Fatalf("iteration %d: header %q is empty", i, key)
			}
		}
	}
}

func TestGenerateVariesAcrossCalls(t *testing.T) {
	g := NewGenerator(42)

	seen := map[string]struct{}{}
	for i := 0; i < 50; i++ {
		seen[g.Generate()["User-Agent"]] = struct{}{}
	}
	if len(seen) < 2 {
		t.Fatalf("expected more than one user agent across 50 calls, got %d", len(seen))
	}
}
