package marketplace

import (
	"context"
	"sync"
)

// MockClient is an in-memory Client for tests. Listings are keyed by mint;
// unknown mints return ErrListingNotFound.
type MockClient struct {
	mu       sync.Mutex
	listings map[string]*Listing
	err      error
	calls    []string
}

// NewMockClient creates an empty mock listing client.
func NewMockClient() *MockClient {
	return &MockClient{listings: make(map[string]*Listing)}
}

// SetListing registers a listing snapshot for a mint.
func (m *MockClient) SetListing(listing *Listing) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listings[listing.Mint] = listing
}

// SetError makes every subsequent GetListing call fail with err.
func (m *MockClient) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns the mints looked up so far, in order.
func (m *MockClient) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// GetListing implements Client.
func (m *MockClient) GetListing(_ context.Context, mint string) (*Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, mint)

	if m.err != nil {
		return nil, m.err
	}
	listing, ok := m.listings[mint]
	if !ok {
		return nil, ErrListingNotFound
	}
	return listing, nil
}
