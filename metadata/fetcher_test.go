package metadata

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/mark3labs/assetkit-go"
)

func metadataServer(t *testing.T, status int, body string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestHTTPFetcherFetch(t *testing.T) {
	creator := solana.NewWallet().PublicKey()
	collection := solana.NewWallet().PublicKey()

	tests := []struct {
		name       string
		status     int
		body       string
		wantErr    bool
		wantFee    uint16
		wantShares []uint8
		wantColl   bool
	}{
		{
			name:   "token standard layout",
			status: http.StatusOK,
			body: `{"name":"Octopus #7","symbol":"OCT","seller_fee_basis_points":500,
				"image":"https://example.com/7.png",
				"properties":{"creators":[{"address":"` + creator.String() + `","share":100}]},
				"collection":{"name":"Octopi","family":"Sea"}}`,
			wantFee:    500,
			wantShares: []uint8{100},
		},
		{
			name:   "flat layout with collection key",
			status: http.StatusOK,
			body: `{"name":"Octopus #8","sellerFeeBasisPoints":250,
				"creators":[{"address":"` + creator.String() + `","share":100}],
				"collection":{"key":"` + collection.String() + `"}}`,
			wantFee:    250,
			wantShares: []uint8{100},
			wantColl:   true,
		},
		{name: "not found", status: http.StatusNotFound, body: `{}`, wantErr: true},
		{name: "malformed JSON", status: http.StatusOK, body: `{"name":`, wantErr: true},
		{name: "missing name", status: http.StatusOK, body: `{"symbol":"X"}`, wantErr: true},
		{
			name:    "bad creator address",
			status:  http.StatusOK,
			body:    `{"name":"x","creators":[{"address":"not-base58-0OIl","share":100}]}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := metadataServer(t, tt.status, tt.body)
			f, err := NewHTTPFetcher()
			if err != nil {
				t.Fatalf("NewHTTPFetcher() error = %v", err)
			}

			doc, err := f.Fetch(context.Background(), srv.URL+"/meta.json")
			if tt.wantErr {
				if !errors.Is(err, assetkit.ErrMetadataFetch) {
					t.Errorf("Fetch() error = %v, want ErrMetadataFetch", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Fetch() error = %v", err)
			}
			if doc.URI != srv.URL+"/meta.json" {
				t.Errorf("URI = %q, want the fetched uri", doc.URI)
			}
			if doc.SellerFeeBasisPoints != tt.wantFee {
				t.Errorf("SellerFeeBasisPoints = %d, want %d", doc.SellerFeeBasisPoints, tt.wantFee)
			}
			if len(doc.Creators) != len(tt.wantShares) {
				t.Fatalf("creators = %v, want %d", doc.Creators, len(tt.wantShares))
			}
			for i, share := range tt.wantShares {
				if doc.Creators[i].Share != share || !doc.Creators[i].Address.Equals(creator) {
					t.Errorf("creator %d = %+v", i, doc.Creators[i])
				}
			}
			if (doc.Collection != nil) != tt.wantColl {
				t.Errorf("collection = %+v, want present=%v", doc.Collection, tt.wantColl)
			}
		})
	}
}

func TestHTTPFetcherCache(t *testing.T) {
	srv, hits := metadataServer(t, http.StatusOK, `{"name":"cached","symbol":"C"}`)
	uri := srv.URL + "/c.json"

	t.Run("second fetch is served from cache", func(t *testing.T) {
		hits.Store(0)
		f, err := NewHTTPFetcher()
		if err != nil {
			t.Fatalf("NewHTTPFetcher() error = %v", err)
		}
		first, err := f.Fetch(context.Background(), uri)
		if err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
		first.Name = "mutated"

		second, err := f.Fetch(context.Background(), uri)
		if err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
		if hits.Load() != 1 {
			t.Errorf("server hits = %d, want 1", hits.Load())
		}
		if second.Name != "cached" {
			t.Errorf("cached document was mutated through a returned copy: %q", second.Name)
		}
	})

	t.Run("expired entries are refetched", func(t *testing.T) {
		hits.Store(0)
		f, err := NewHTTPFetcher(WithCache(4, time.Minute))
		if err != nil {
			t.Fatalf("NewHTTPFetcher() error = %v", err)
		}
		now := time.Now()
		f.cache.now = func() time.Time { return now }

		if _, err := f.Fetch(context.Background(), uri); err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
		now = now.Add(2 * time.Minute)
		if _, err := f.Fetch(context.Background(), uri); err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
		if hits.Load() != 2 {
			t.Errorf("server hits = %d, want 2", hits.Load())
		}
	})

	t.Run("disabled cache", func(t *testing.T) {
		hits.Store(0)
		f, err := NewHTTPFetcher(WithCache(0, 0))
		if err != nil {
			t.Fatalf("NewHTTPFetcher() error = %v", err)
		}
		for i := 0; i < 2; i++ {
			if _, err := f.Fetch(context.Background(), uri); err != nil {
				t.Fatalf("Fetch() error = %v", err)
			}
		}
		if hits.Load() != 2 {
			t.Errorf("server hits = %d, want 2", hits.Load())
		}
	})

	t.Run("failures are not cached", func(t *testing.T) {
		bad, badHits := metadataServer(t, http.StatusInternalServerError, `oops`)
		f, err := NewHTTPFetcher()
		if err != nil {
			t.Fatalf("NewHTTPFetcher() error = %v", err)
		}
		for i := 0; i < 2; i++ {
			if _, err := f.Fetch(context.Background(), bad.URL); err == nil {
				t.Fatal("expected error")
			}
		}
		if badHits.Load() != 2 {
			t.Errorf("server hits = %d, want 2", badHits.Load())
		}
		if f.cache.Len() != 0 {
			t.Errorf("cache holds %d entries, want 0", f.cache.Len())
		}
	})
}

func TestNewHTTPFetcherOptions(t *testing.T) {
	tests := []struct {
		name    string
		opts    []FetcherOption
		wantErr bool
	}{
		{name: "defaults"},
		{name: "custom client", opts: []FetcherOption{WithHTTPClient(&http.Client{})}},
		{name: "nil client", opts: []FetcherOption{WithHTTPClient(nil)}, wantErr: true},
		{name: "zero timeout", opts: []FetcherOption{WithTimeout(0)}, wantErr: true},
		{name: "negative cache", opts: []FetcherOption{WithCache(-1, time.Minute)}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewHTTPFetcher(tt.opts...)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewHTTPFetcher() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
