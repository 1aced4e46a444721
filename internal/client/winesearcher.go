package client

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"sync"
	"time"

	"winesearcher/parser/internal/config"
	"winesearcher/parser/internal/domain"
	"winesearcher/parser/internal/headers"
	"winesearcher/parser/internal/metrics"
	"winesearcher/parser/internal/proxy"

	log "github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"
	"resty.dev/v3"
)

// WineSearcherClient is the bounded-concurrency, retrying fetch layer. It has
// no knowledge of page semantics; it returns raw HTML per URL.
type WineSearcherClient interface {
	Fetch(ctx context.Context, url string) domain.FetchResult
	FetchBatch(ctx context.Context, urls []string) []domain.FetchResult
	SearchURL(keyword string) string
}

type wineSearcherClient struct {
	rl            ratelimit.Limiter
	config        config.WineSearcherConfig
	baseURL       string
	httpClient    *resty.Client
	retry         RetryPolicy
	headers       *headers.Generator
	proxySupplier proxy.Supplier
	metrics       *metrics.Metrics

	// Proxy rotation is single-owner: the cursor only advances here, under
	// this mutex, when a rate-limit response forces a switch.
	proxyMutex sync.Mutex
}

func NewWineSearcherClient(
	cfg config.WineSearcherConfig,
	retry RetryPolicy,
	proxySupplier proxy.Supplier,
	m *metrics.Metrics,
) WineSearcherClient {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	httpClient := resty.New().
		SetTimeout(timeout).
		SetRetryCount(0). // retries are driven by RetryPolicy, not the transport
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(5)).
		SetTLSClientConfig(&tls.Config{
			InsecureSkipVerify: true,
		})

	// Get initial proxy
	if proxySupplier != nil {
		if proxyURL := proxySupplier.Get(); proxyURL != "" {
			httpClient.SetProxy(proxyURL)
			log.Infof("🔗 Using initial proxy: %s", proxyURL)
		}
	}

	rps := cfg.MaxRequestsPerSecond
	if rps <= 0 {
		rps = 2
	}

	return &wineSearcherClient{
		rl:            ratelimit.New(rps),
		config:        cfg,
		baseURL:       cfg.BaseURL,
		httpClient:    httpClient,
		retry:         retry,
		headers:       headers.NewGenerator(time.Now().UnixNano()),
		proxySupplier: proxySupplier,
		metrics:       m,
	}
}

// SearchURL composes the search URL for a free-text wine name using the
// configured country and auction filters.
func (c *wineSearcherClient) SearchURL(keyword string) string {
	return ComposeSearchURL(c.baseURL, keyword, "", c.config.Country, c.config.IncludeAuction)
}

// FetchBatch fetches every URL with bounded concurrency and returns one
// result per URL, index-aligned with the input. A single URL's failure never
// fails the batch.
func (c *wineSearcherClient) FetchBatch(ctx context.Context, urls []string) []domain.FetchResult {
	results := make([]domain.FetchResult, len(urls))

	maxConcurrent := c.config.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 5
	}

	wg := &sync.WaitGroup{}
	semaphore := make(chan struct{}, maxConcurrent)

	for i, url := range urls {
		wg.Add(1)

		go func(i int, url string) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			results[i] = c.Fetch(ctx, url)
		}(i, url)
	}

	wg.Wait()
	return results
}

// Fetch retrieves one URL, applying the retry policy for transient failures.
// The terminal outcome is recorded in the result rather than raised.
func (c *wineSearcherClient) Fetch(ctx context.Context, url string) domain.FetchResult {
	result := domain.FetchResult{URL: url}
	start := time.Now()

	for attempt := 1; attempt <= c.retry.MaxAttempts; attempt++ {
		c.rl.Take()

		resp, err := c.httpClient.R().
			SetContext(ctx).
			SetHeaders(c.headers.Generate()).
			Get(url)

		if err != nil {
			if ctx.Err() != nil {
				result.Err = fmt.Errorf("request cancelled: %w", ctx.Err())
				c.metrics.IncRequest("cancelled")
				return result
			}
			result.Err = fmt.Errorf("failed to fetch URL: %w", err)
		} else {
			result.StatusCode = resp.StatusCode()
			result.Body = resp.String()

			if !resp.IsError() {
				result.Err = nil
				c.metrics.IncRequest("success")
				c.metrics.ObserveDuration(time.Since(start))
				return result
			}

			result.Err = fmt.Errorf("HTTP error: %d %s", resp.StatusCode(), resp.Status())

			if resp.StatusCode() == http.StatusTooManyRequests {
				log.Warnf("🚫 Rate limited for URL: %s", url)
				c.rotateProxy()
			}
		}

		if !c.retry.Retryable(result.StatusCode, result.Err) {
			c.metrics.IncRequest("permanent_failure")
			c.metrics.ObserveDuration(time.Since(start))
			return result
		}

		if attempt == c.retry.MaxAttempts {
			break
		}

		c.metrics.IncRetries()
		log.Debugf("🔄 Retrying %s (attempt %d/%d): %v", url, attempt+1, c.retry.MaxAttempts, result.Err)

		select {
		case <-ctx.Done():
			result.Err = fmt.Errorf("request cancelled: %w", ctx.Err())
			c.metrics.IncRequest("cancelled")
			return result
		case <-time.After(c.retry.Backoff(attempt)):
		}
	}

	result.Err = fmt.Errorf("retries exhausted: %w", result.Err)
	c.metrics.IncRequest("retries_exhausted")
	c.metrics.ObserveDuration(time.Since(start))
	return result
}

// rotateProxy advances to the next proxy in the pool. With an empty pool the
// client keeps its direct connection.
func (c *wineSearcherClient) rotateProxy() {
	if c.proxySupplier == nil {
		return
	}

	c.proxyMutex.Lock()
	defer c.proxyMutex.Unlock()

	if next := c.proxySupplier.Get(); next != "" {
		log.Infof("🔄 Switching to proxy: %s", next)
		c.httpClient.SetProxy(next)
	}
}
