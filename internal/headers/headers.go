// Package headers generates plausible browser header sets so consecutive
// requests do not present an identical fingerprint to the upstream site.
package headers

import (
	"fmt"
	"math/rand"
	"sync"
)

type profile struct {
	userAgent string
	platform  string
	chromeVer int
}

var profiles = []profile{
	{
		userAgent: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
		platform:  `"macOS"`,
		chromeVer: 126,
	},
	{
		userAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36",
		platform:  `"Windows"`,
		chromeVer: 125,
	},
	{
		userAgent: "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
		platform:  `"Linux"`,
		chromeVer: 124,
	},
	{
		userAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36 Edg/126.0.0.0",
		platform:  `"Windows"`,
		chromeVer: 126,
	},
	{
		userAgent: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
		platform:  `"macOS"`,
		chromeVer: 123,
	},
}

var acceptLanguages = []string{
	"en-US,en;q=0.9",
	"en-US,en;q=0.8",
	"en-GB,en-US;q=0.9,en;q=0.8",
	"en-US,en;q=0.5",
}

// Generator hands out a fresh header set per request.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewGenerator(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// Generate returns a complete browser-like header set. Each call may pick a
// different profile.
func (g *Generator) Generate() map[string]string {
	g.mu.Lock()
	p := profiles[g.rng.Intn(len(profiles))]
	lang := acceptLanguages[g.rng.Intn(len(acceptLanguages))]
	g.mu.Unlock()

	return map[string]string{
		"User-Agent":                p.userAgent,
		"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8,application/signed-exchange;v=b3;q=0.7",
		"Accept-Language":           lang,
		"Sec-Ch-Ua":                 fmt.Sprintf(`"Not/A)Brand";v="8", "Chromium";v="%d", "Google Chrome";v="%d"`, p.chromeVer, p.chromeVer),
		"Sec-Ch-Ua-Mobile":          "?0",
		"Sec-Ch-Ua-Platform":        p.platform,
		"Sec-Fetch-Dest":            "document",
		"Sec-Fetch-Mode":            "navigate",
		"Sec-Fetch-Site":            "none",
		"Sec-Fetch-User":            "?1",
		"Upgrade-Insecure-Requests": "1",
	}
}
