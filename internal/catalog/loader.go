package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/jcmexdev/coin-storefront/internal/pkg/cache"
)

var tracer = otel.Tracer("github.com/jcmexdev/coin-storefront/internal/catalog")

// Fetcher returns the full list of catalog items.
type Fetcher interface {
	Fetch(ctx context.Context) ([]Item, error)
}

// HTTPFetcher downloads the catalog JSON with a GET request. When a cache is
// set, successful downloads are kept for cacheTTL and served from there.
type HTTPFetcher struct {
	url      string
	client   *http.Client
	cache    cache.Cache // nil-safe: every Fetch hits the source if nil
	cacheTTL time.Duration
}

var _ Fetcher = (*HTTPFetcher)(nil)

func NewHTTPFetcher(url string, client *http.Client, c cache.Cache, cacheTTL time.Duration) *HTTPFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPFetcher{url: url, client: client, cache: c, cacheTTL: cacheTTL}
}

func (f *HTTPFetcher) Fetch(ctx context.Context) ([]Item, error) {
	ctx, span := tracer.Start(ctx, "catalog.Fetch")
	defer span.End()
	span.SetAttributes(attribute.String("catalog.url", f.url))

	if items, ok := f.fromCache(ctx); ok {
		span.SetAttributes(attribute.Bool("catalog.cache_hit", true))
		return items, nil
	}

	body, err := f.download(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	var items []Item
	if err := json.Unmarshal(body, &items); err != nil {
		err = fmt.Errorf("catalog: decode %s: %w", f.url, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("catalog.items", len(items)))

	f.toCache(ctx, body)
	return items, nil
}

func (f *HTTPFetcher) download(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("catalog: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog: get %s: %w", f.url, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, fmt.Errorf("catalog: get %s: unexpected status %d", f.url, res.StatusCode)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("catalog: read body: %w", err)
	}
	return body, nil
}

func (f *HTTPFetcher) fromCache(ctx context.Context) ([]Item, bool) {
	if f.cache == nil {
		return nil, false
	}
	raw, err := f.cache.Get(ctx, f.cache.GenerateKey("catalog", f.url))
	if err != nil {
		slog.WarnContext(ctx, "catalog cache read failed", "error", err)
		return nil, false
	}
	if raw == "" {
		return nil, false
	}
	var items []Item
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		slog.WarnContext(ctx, "discarding malformed cached catalog", "error", err)
		return nil, false
	}
	return items, true
}

func (f *HTTPFetcher) toCache(ctx context.Context, body []byte) {
	if f.cache == nil {
		return
	}
	if err := f.cache.Set(ctx, f.cache.GenerateKey("catalog", f.url), string(body), f.cacheTTL); err != nil {
		slog.WarnContext(ctx, "catalog cache write failed", "error", err)
	}
}
