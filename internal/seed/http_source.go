package seed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"salesboard/internal/core"
)

// DefaultURL is the public product transaction feed.
const DefaultURL = "https://s3.amazonaws.com/roxiler.com/product_transaction.json"

// Source fetches the full seed catalog in one call.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]core.Transaction, error)
}

// HTTPSource downloads the catalog as a JSON array.
type HTTPSource struct {
	url    string
	client *http.Client
}

var _ Source = (*HTTPSource)(nil)

// NewHTTPSource builds a source with its own transport so a slow upstream
// cannot hang seeding past timeout.
func NewHTTPSource(url string, timeout time.Duration) *HTTPSource {
	if url == "" {
		url = DefaultURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   5 * time.Second,
		ResponseHeaderTimeout: timeout,
		IdleConnTimeout:       30 * time.Second,
	}
	return &HTTPSource{
		url:    url,
		client: &http.Client{Transport: transport, Timeout: timeout},
	}
}

func (s *HTTPSource) Name() string { return s.url }

// Fetch retrieves and decodes the feed. Every failure is reported as
// core.ErrUpstreamSeed.
func (s *HTTPSource) Fetch(ctx context.Context) ([]core.Transaction, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", core.ErrUpstreamSeed, err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch %s: %w", core.ErrUpstreamSeed, s.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("%w: fetch %s: unexpected status %d", core.ErrUpstreamSeed, s.url, resp.StatusCode)
	}

	txs, err := Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrUpstreamSeed, err)
	}

	slog.InfoContext(ctx, "Fetched seed feed",
		"url", s.url,
		"records", len(txs),
		"duration_ms", time.Since(start).Milliseconds())
	return txs, nil
}
