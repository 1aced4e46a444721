package proxy

import (
	"context"
	"crypto/tls"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"resty.dev/v3"
)

// Supplier manages a pool of proxies with round-robin selection. Get returns
// "" when no proxy is available, which callers treat as a direct connection.
type Supplier interface {
	Get() string
}

type supplier struct {
	proxies []string
	current int
	mutex   sync.Mutex
}

// NewSupplier creates a Supplier over a fixed proxy pool, dropping entries
// that fail a probe against testURL.
func NewSupplier(ctx context.Context, proxies []string, testURL string) (Supplier, error) {
	if len(proxies) == 0 {
		return &supplier{proxies: []string{}, current: 0}, nil
	}

	validProxies := validatePool(ctx, proxies, testURL)
	log.Infof("✅ Proxy supplier initialized with %d working proxies out of %d tested", len(validProxies), len(proxies))

	return &supplier{
		proxies: validProxies,
		current: 0,
	}, nil
}

// NewSupplierFromProvider fetches a fresh pool from a rotating-proxy provider
// endpoint. The provider returns one "host:port" per line (comma-separated is
// accepted too). An unreachable provider or empty pool yields an empty
// supplier rather than an error so the fetcher can fall back to direct
// connections.
func NewSupplierFromProvider(ctx context.Context, providerURL string, poolSize int, testURL string) (Supplier, error) {
	if providerURL == "" {
		return &supplier{proxies: []string{}, current: 0}, nil
	}

	client := resty.New().SetTimeout(15 * time.Second)
	defer client.Close()

	resp, err := client.R().
		SetContext(ctx).
		Get(providerURL)
	if err != nil {
		log.Warnf("⚠️ Failed to reach proxy provider %s: %v", providerURL, err)
		return &supplier{proxies: []string{}, current: 0}, nil
	}
	if resp.IsError() {
		log.Warnf("⚠️ Proxy provider returned %s", resp.Status())
		return &supplier{proxies: []string{}, current: 0}, nil
	}

	pool := ParseProviderList(resp.String())
	if poolSize > 0 && len(pool) > poolSize {
		pool = pool[:poolSize]
	}
	if len(pool) == 0 {
		log.Warn("⚠️ Proxy provider returned an empty pool")
		return &supplier{proxies: []string{}, current: 0}, nil
	}

	validProxies := pool
	if testURL != "" {
		validProxies = validatePool(ctx, pool, testURL)
	}

	log.Infof("✅ Proxy supplier initialized with %d proxies from provider", len(validProxies))
	return &supplier{
		proxies: validProxies,
		current: 0,
	}, nil
}

// ParseProviderList parses the provider response body into proxy URLs.
// Entries without a scheme get "http://" prepended.
func ParseProviderList(body string) []string {
	fields := strings.FieldsFunc(body, func(r rune) bool {
		return r == '\n' || r == '\r' || r == ','
	})

	proxies := make([]string, 0, len(fields))
	for _, field := range fields {
		entry := strings.TrimSpace(field)
		if entry == "" {
			continue
		}
		if !strings.Contains(entry, "://") {
			entry = "http://" + entry
		}
		proxies = append(proxies, entry)
	}
	return proxies
}

// Get returns the next proxy URL in round-robin fashion
func (p *supplier) Get() string {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if len(p.proxies) == 0 {
		return "" // No proxies available
	}

	proxy := p.proxies[p.current]
	p.current = (p.current + 1) % len(p.proxies)

	return proxy
}

func validatePool(ctx context.Context, proxies []string, testURL string) []string {
	validProxies := make([]string, 0, len(proxies))
	validProxiesCh := make(chan string, len(proxies))

	log.Infof("🔄 Testing %d proxies in parallel...", len(proxies))

	semaphore := make(chan struct{}, 50)

	var wg sync.WaitGroup

	for i, proxyURL := range proxies {
		wg.Add(1)

		go func(index int, proxy string) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			log.Debugf("🔄 Testing proxy %d/%d: %s", index+1, len(proxies), proxy)

			if isProxyValid(ctx, proxy, testURL) {
				validProxiesCh <- proxy
				log.Infof("✅ Proxy %s is working", proxy)
			} else {
				log.Infof("❌ Proxy %s is not working, skipping", proxy)
			}
		}(i, proxyURL)
	}

	wg.Wait()
	close(validProxiesCh)

	for proxy := range validProxiesCh {
		validProxies = append(validProxies, proxy)
	}

	return validProxies
}

// isProxyValid tests if a proxy can successfully make a request to the test URL
func isProxyValid(ctx context.Context, proxyURL, testURL string) bool {
	client := resty.New().
		SetTimeout(5 * time.Second). // Reduced timeout for faster testing
		SetRetryCount(0).            // No retries for faster testing
		SetProxy(proxyURL).
		SetTLSClientConfig(&tls.Config{
			InsecureSkipVerify: true,
		})
	defer client.Close()

	resp, err := client.R().
		SetContext(ctx).
		Get(testURL)

	if err != nil {
		log.Infof("Proxy test failed for %s: %v", proxyURL, err)
		return false
	}

	if resp.IsError() {
		log.Infof("Proxy test failed for %s with status: %s", proxyURL, resp.Status())
		return false
	}

	return true
}

// Static builds a supplier over an explicit pool without probing. Used by
// tests and by deployments with a known-good pool.
func Static(proxies []string) Supplier {
	return &supplier{proxies: append([]string(nil), proxies...)}
}
