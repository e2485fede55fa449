package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMint = "So11111111111111111111111111111111111111112"

func TestGetAction(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GET", r.Method)
		assert.Equal(t, "/api/v1/actions/buy/"+testMint, r.URL.Path)
		json.NewEncoder(w).Encode(ActionMetadata{
			Title: "Test Asset #1",
			Label: "Buy for 1.0650 SOL",
			Links: &ActionLinks{
				Actions: []LinkedAction{{Label: "Buy", Href: "/api/v1/actions/buy/" + testMint}},
			},
		})
	}))
	defer server.Close()

	c := NewClient(server.URL, nil, nil)
	meta, err := c.GetAction(context.Background(), testMint)
	require.NoError(t, err)

	assert.Equal(t, "Test Asset #1", meta.Title)
	require.NotNil(t, meta.Links)
	require.Len(t, meta.Links.Actions, 1)
}

func TestBuy(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "buyer-address", body["account"])
		json.NewEncoder(w).Encode(ActionResult{Transaction: "dGVzdA==", Message: "Buy Test Asset #1"})
	}))
	defer server.Close()

	c := NewClient(server.URL, nil, nil)
	result, err := c.Buy(context.Background(), testMint, "buyer-address")
	require.NoError(t, err)

	assert.Equal(t, "dGVzdA==", result.Transaction)
	assert.Contains(t, result.Message, "Test Asset")
}

func TestBid_EncodesAmount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1.5", r.URL.Query().Get("amount"))
		json.NewEncoder(w).Encode(ActionResult{Transaction: "dGVzdA=="})
	}))
	defer server.Close()

	c := NewClient(server.URL, nil, nil)
	_, err := c.Bid(context.Background(), testMint, "bidder-address", 1.5)
	require.NoError(t, err)
}

func TestErrorResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "no listing found for this item"})
	}))
	defer server.Close()

	c := NewClient(server.URL, nil, nil)
	_, err := c.GetAction(context.Background(), testMint)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no listing found")
	assert.Contains(t, err.Error(), "404")
}
