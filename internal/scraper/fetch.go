package scraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"apartment-tracker-backend/config"
)

const maxPageBytes = 10 << 20

// BlockedError means the site served a bot wall instead of listings.
type BlockedError struct {
	Source string
}

func (e *BlockedError) Error() string {
	return e.Source + "_blocked"
}

// Page is a fetched and parsed listing page.
type Page struct {
	URL *url.URL
	Doc *html.Node
}

// Fetcher downloads listing pages with rotating user agents and retries.
type Fetcher struct {
	client     *http.Client
	userAgents []string
	maxRetries int
	delayMin   time.Duration
	delayMax   time.Duration
	logger     *zap.Logger
}

// NewFetcher builds a fetcher from the scraper config, routing through the proxy when set.
func NewFetcher(cfg config.ScraperConfig, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}

	var transport http.RoundTripper = &http.Transport{}
	if cfg.HTTPProxy != "" {
		proxyURL, err := url.Parse(cfg.HTTPProxy)
		if err != nil {
			logger.Warn("invalid proxy URL, scraper will not use a proxy",
				zap.String("proxy", cfg.HTTPProxy), zap.Error(err))
		} else {
			transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
		}
	}

	retries := cfg.MaxRetries
	if retries <= 0 {
		retries = 1
	}
	return &Fetcher{
		client: &http.Client{
			Transport: transport,
			Timeout:   time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		userAgents: cfg.UserAgents,
		maxRetries: retries,
		delayMin:   time.Duration(cfg.DelayMinSeconds) * time.Second,
		delayMax:   time.Duration(cfg.DelayMaxSeconds) * time.Second,
		logger:     logger,
	}
}

// Fetch retrieves rawURL for source. A bot wall is reported as *BlockedError and is not retried.
func (f *Fetcher) Fetch(ctx context.Context, source, rawURL string) (*Page, error) {
	pageURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid url %q: %w", rawURL, err)
	}

	var lastErr error
	for attempt := 1; attempt <= f.maxRetries; attempt++ {
		if attempt > 1 {
			if err := f.sleep(ctx); err != nil {
				return nil, err
			}
		}

		page, err := f.fetchOnce(ctx, source, pageURL)
		if err == nil {
			return page, nil
		}
		var blocked *BlockedError
		if errors.As(err, &blocked) || ctx.Err() != nil {
			return nil, err
		}

		lastErr = err
		f.logger.Warn("fetch attempt failed",
			zap.String("source", source),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", f.maxRetries),
			zap.Error(err))
	}
	return nil, fmt.Errorf("%s: giving up after %d attempts: %w", source, f.maxRetries, lastErr)
}

func (f *Fetcher) fetchOnce(ctx context.Context, source string, pageURL *url.URL) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent())
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}

	if isBlocked(pageTitle(doc), body) {
		return nil, &BlockedError{Source: source}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("received non-200 status code: %d", resp.StatusCode)
	}
	return &Page{URL: pageURL, Doc: doc}, nil
}

func isBlocked(title string, body []byte) bool {
	title = strings.ToLower(title)
	if strings.Contains(title, "cloudflare") || strings.Contains(title, "access denied") {
		return true
	}
	return bytes.Contains(bytes.ToLower(body), []byte("you have been blocked"))
}

func (f *Fetcher) userAgent() string {
	if len(f.userAgents) == 0 {
		return "Mozilla/5.0"
	}
	return f.userAgents[rand.IntN(len(f.userAgents))]
}

// sleep waits a random delay in [delayMin, delayMax].
func (f *Fetcher) sleep(ctx context.Context) error {
	d := f.delayMin
	if spread := f.delayMax - f.delayMin; spread > 0 {
		d += time.Duration(rand.Int64N(int64(spread) + 1))
	}
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
