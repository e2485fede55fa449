package marketplace

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	// ErrListingNotFound indicates the mint has no active listing on the
	// marketplace. Callers must branch on this explicitly; a nil Listing is
	// never returned alongside a nil error.
	ErrListingNotFound = errors.New("listing not found")

	// ErrInvalidListing indicates the data service returned a listing this
	// service refuses to price (malformed price, missing seller).
	ErrInvalidListing = errors.New("invalid listing")
)

// Listing is a snapshot of a marketplace listing at lookup time. The data
// service owns this record; floorlink only reads it, and a snapshot is never
// reused across requests.
type Listing struct {
	Mint              string // asset mint address
	Seller            string // current owner receiving the sale proceeds
	PriceLamports     uint64 // list price in lamports
	RoyaltyBps        uint64 // creator royalty rate in basis points
	RoyaltiesEnforced bool   // whether the token standard enforces royalties
	Active            bool   // false once delisted or sold
	Name              string // display name, may be empty
	ImageURL          string // display image, may be empty
}

// listingResponse is the data service's wire format. Prices arrive as decimal
// strings because the upstream API serves them that way to avoid JSON number
// precision loss.
type listingResponse struct {
	Mint              string `json:"mint"`
	Seller            string `json:"seller"`
	PriceLamports     string `json:"price_lamports"`
	RoyaltyBps        uint64 `json:"royalty_bps"`
	RoyaltiesEnforced bool   `json:"royalties_enforced"`
	Active            bool   `json:"active"`
	Name              string `json:"name"`
	ImageURL          string `json:"image_url"`
}

// toDomain converts a wire listing into the domain model, validating the
// price string at the boundary rather than letting junk propagate into
// pricing math.
func (lr *listingResponse) toDomain() (*Listing, error) {
	if lr.Seller == "" {
		return nil, fmt.Errorf("%w: missing seller", ErrInvalidListing)
	}

	price, err := strconv.ParseUint(lr.PriceLamports, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: price %q is not a non-negative integer", ErrInvalidListing, lr.PriceLamports)
	}

	return &Listing{
		Mint:              lr.Mint,
		Seller:            lr.Seller,
		PriceLamports:     price,
		RoyaltyBps:        lr.RoyaltyBps,
		RoyaltiesEnforced: lr.RoyaltiesEnforced,
		Active:            lr.Active,
		Name:              lr.Name,
		ImageURL:          lr.ImageURL,
	}, nil
}
