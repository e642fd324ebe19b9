package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/mark3labs/assetkit-go"
)

// Fetcher loads the metadata document published at uri.
type Fetcher interface {
	Fetch(ctx context.Context, uri string) (*Document, error)
}

const (
	defaultFetchTimeout = 10 * time.Second
	defaultCacheEntries = 512
	defaultCacheTTL     = 10 * time.Minute

	// maxDocumentSize bounds the JSON body read from a metadata URI.
	maxDocumentSize = 1 << 20
)

// HTTPFetcher fetches metadata JSON over HTTP(S) and keeps successful
// documents in a bounded TTL cache keyed by URI.
type HTTPFetcher struct {
	client  *http.Client
	timeout time.Duration
	cache   *documentCache
	logger  *slog.Logger

	cacheEntries int
	cacheTTL     time.Duration
}

// FetcherOption configures an HTTPFetcher.
type FetcherOption func(*HTTPFetcher) error

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(client *http.Client) FetcherOption {
	return func(f *HTTPFetcher) error {
		if client == nil {
			return fmt.Errorf("http client cannot be nil")
		}
		f.client = client
		return nil
	}
}

// WithTimeout bounds each fetch.
func WithTimeout(timeout time.Duration) FetcherOption {
	return func(f *HTTPFetcher) error {
		if timeout <= 0 {
			return fmt.Errorf("timeout must be positive")
		}
		f.timeout = timeout
		return nil
	}
}

// WithCache sets the cache capacity and entry lifetime. A zero capacity
// disables caching.
func WithCache(entries int, ttl time.Duration) FetcherOption {
	return func(f *HTTPFetcher) error {
		if entries < 0 || ttl < 0 {
			return fmt.Errorf("cache size and ttl cannot be negative")
		}
		f.cacheEntries = entries
		f.cacheTTL = ttl
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) FetcherOption {
	return func(f *HTTPFetcher) error {
		if logger != nil {
			f.logger = logger
		}
		return nil
	}
}

// NewHTTPFetcher creates an HTTPFetcher.
func NewHTTPFetcher(opts ...FetcherOption) (*HTTPFetcher, error) {
	f := &HTTPFetcher{
		client:       &http.Client{},
		timeout:      defaultFetchTimeout,
		logger:       slog.Default(),
		cacheEntries: defaultCacheEntries,
		cacheTTL:     defaultCacheTTL,
	}
	for _, opt := range opts {
		if err := opt(f); err != nil {
			return nil, err
		}
	}
	f.cache = newDocumentCache(f.cacheEntries, f.cacheTTL)
	return f, nil
}

// Fetch implements Fetcher. Transport failures, non-200 responses and
// documents that do not match the metadata schema all wrap
// assetkit.ErrMetadataFetch.
func (f *HTTPFetcher) Fetch(ctx context.Context, uri string) (*Document, error) {
	if doc, ok := f.cache.Get(uri); ok {
		return doc, nil
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", assetkit.ErrMetadataFetch, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", assetkit.ErrMetadataFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned status %d", assetkit.ErrMetadataFetch, uri, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read body: %v", assetkit.ErrMetadataFetch, err)
	}

	doc, err := Parse(body)
	if err != nil {
		f.logger.Debug("metadata document rejected", "uri", uri, "error", err)
		return nil, err
	}
	if doc.URI == "" {
		doc.URI = uri
	}

	f.cache.Add(uri, doc)
	return doc.Clone(), nil
}

// jsonDocument accepts the token standard layout (seller_fee_basis_points,
// properties.creators) as well as flat camelCase fields.
type jsonDocument struct {
	Name                      *string          `json:"name"`
	Symbol                    string           `json:"symbol"`
	URI                       string           `json:"uri"`
	SellerFeeBasisPoints      *uint16          `json:"seller_fee_basis_points"`
	SellerFeeBasisPointsCamel *uint16          `json:"sellerFeeBasisPoints"`
	Creators                  []jsonCreator    `json:"creators"`
	Properties                *jsonProperties  `json:"properties"`
	Collection                *json.RawMessage `json:"collection"`
}

type jsonProperties struct {
	Creators []jsonCreator `json:"creators"`
}

type jsonCreator struct {
	Address string `json:"address"`
	Share   uint8  `json:"share"`
}

type jsonCollection struct {
	Key string `json:"key"`
}

// Parse decodes a metadata JSON document. Name is required; everything else
// is optional.
func Parse(data []byte) (*Document, error) {
	var raw jsonDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON: %v", assetkit.ErrMetadataFetch, err)
	}
	if raw.Name == nil {
		return nil, fmt.Errorf("%w: document has no name", assetkit.ErrMetadataFetch)
	}

	doc := &Document{
		Name:   *raw.Name,
		Symbol: raw.Symbol,
		URI:    raw.URI,
	}
	switch {
	case raw.SellerFeeBasisPoints != nil:
		doc.SellerFeeBasisPoints = *raw.SellerFeeBasisPoints
	case raw.SellerFeeBasisPointsCamel != nil:
		doc.SellerFeeBasisPoints = *raw.SellerFeeBasisPointsCamel
	}

	creators := raw.Creators
	if raw.Properties != nil && len(raw.Properties.Creators) > 0 {
		creators = raw.Properties.Creators
	}
	for _, c := range creators {
		address, err := solana.PublicKeyFromBase58(c.Address)
		if err != nil {
			return nil, fmt.Errorf("%w: creator address %q: %v", assetkit.ErrMetadataFetch, c.Address, err)
		}
		doc.Creators = append(doc.Creators, Creator{Address: address, Share: c.Share})
	}

	if raw.Collection != nil {
		var collection jsonCollection
		// The token standard also uses collection for {name, family}; only a key matters here.
		if err := json.Unmarshal(*raw.Collection, &collection); err == nil && collection.Key != "" {
			key, err := solana.PublicKeyFromBase58(collection.Key)
			if err != nil {
				return nil, fmt.Errorf("%w: collection key %q: %v", assetkit.ErrMetadataFetch, collection.Key, err)
			}
			doc.Collection = &Collection{Key: key}
		}
	}
	return doc, nil
}
