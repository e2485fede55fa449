package marketplace

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMint = "So11111111111111111111111111111111111111112"

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestGetListing(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/listings/"+testMint, r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"mint": "` + testMint + `",
			"seller": "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
			"price_lamports": "1000000000",
			"royalty_bps": 500,
			"royalties_enforced": true,
			"active": true,
			"name": "Test Asset #1"
		}`))
	}))
	defer upstream.Close()

	client := NewHTTPClient(upstream.URL, Options{APIKey: "test-key"}, nil, testLogger())

	listing, err := client.GetListing(context.Background(), testMint)
	require.NoError(t, err)

	assert.Equal(t, testMint, listing.Mint)
	assert.Equal(t, "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", listing.Seller)
	assert.Equal(t, uint64(1_000_000_000), listing.PriceLamports)
	assert.Equal(t, uint64(500), listing.RoyaltyBps)
	assert.True(t, listing.RoyaltiesEnforced)
	assert.True(t, listing.Active)
	assert.Equal(t, "Test Asset #1", listing.Name)
}

func TestGetListing_NotFound(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"no listing"}`, http.StatusNotFound)
	}))
	defer upstream.Close()

	client := NewHTTPClient(upstream.URL, Options{}, nil, testLogger())

	_, err := client.GetListing(context.Background(), testMint)
	require.ErrorIs(t, err, ErrListingNotFound)
}

func TestGetListing_MalformedPrice(t *testing.T) {
	tests := []struct {
		name  string
		price string
	}{
		{name: "non-numeric", price: "banana"},
		{name: "negative", price: "-5"},
		{name: "decimal", price: "1.5"},
		{name: "empty", price: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{
					"mint": "` + testMint + `",
					"seller": "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
					"price_lamports": "` + tt.price + `",
					"active": true
				}`))
			}))
			defer upstream.Close()

			client := NewHTTPClient(upstream.URL, Options{}, nil, testLogger())

			_, err := client.GetListing(context.Background(), testMint)
			require.ErrorIs(t, err, ErrInvalidListing)
		})
	}
}

func TestGetListing_MissingSeller(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"mint": "` + testMint + `", "price_lamports": "100", "active": true}`))
	}))
	defer upstream.Close()

	client := NewHTTPClient(upstream.URL, Options{}, nil, testLogger())

	_, err := client.GetListing(context.Background(), testMint)
	require.ErrorIs(t, err, ErrInvalidListing)
}

func TestGetListing_CachesSnapshot(t *testing.T) {
	var hits atomic.Int64
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(`{
			"mint": "` + testMint + `",
			"seller": "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
			"price_lamports": "42",
			"active": true
		}`))
	}))
	defer upstream.Close()

	client := NewHTTPClient(upstream.URL, Options{CacheTTL: time.Minute}, nil, testLogger())

	for range 3 {
		listing, err := client.GetListing(context.Background(), testMint)
		require.NoError(t, err)
		assert.Equal(t, uint64(42), listing.PriceLamports)
	}

	// Only the first lookup reaches the data service.
	assert.Equal(t, int64(1), hits.Load())
}

func TestGetListing_RetriesTransientFailures(t *testing.T) {
	var hits atomic.Int64
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			http.Error(w, "upstream hiccup", http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{
			"mint": "` + testMint + `",
			"seller": "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
			"price_lamports": "7",
			"active": true
		}`))
	}))
	defer upstream.Close()

	client := NewHTTPClient(upstream.URL, Options{RetryMax: 2}, nil, testLogger())

	listing, err := client.GetListing(context.Background(), testMint)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), listing.PriceLamports)
	assert.Equal(t, int64(2), hits.Load())
}

func TestMockClient(t *testing.T) {
	mock := NewMockClient()
	mock.SetListing(&Listing{Mint: testMint, Seller: "seller", PriceLamports: 10, Active: true})

	listing, err := mock.GetListing(context.Background(), testMint)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), listing.PriceLamports)

	_, err = mock.GetListing(context.Background(), "unknown")
	require.ErrorIs(t, err, ErrListingNotFound)

	assert.Equal(t, []string{testMint, "unknown"}, mock.Calls())
}
