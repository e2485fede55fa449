// Package pricing computes the economic terms of marketplace purchases and bids.
// All functions are pure: results depend only on their arguments, so they are
// safe to call concurrently without synchronization.
package pricing

import (
	"errors"
	"math"
)

const (
	// MarketplaceFeeBps is the platform taker fee in basis points (1.5%).
	MarketplaceFeeBps = 150

	// BpsDenominator converts a basis-points rate to a fraction.
	BpsDenominator = 10_000

	// LamportsPerSOL is the number of lamports in one SOL.
	LamportsPerSOL = 1_000_000_000
)

// ErrInvalidAmount indicates an amount that is not a finite, non-negative number.
var ErrInvalidAmount = errors.New("invalid amount")

// Quote breaks down the total a buyer owes for an outright purchase.
// Invariant: Total == BasePrice + MarketplaceFee + RoyaltyFee.
type Quote struct {
	BasePrice      uint64 `json:"base_price"`      // listing price in lamports
	MarketplaceFee uint64 `json:"marketplace_fee"` // platform taker fee
	RoyaltyFee     uint64 `json:"royalty_fee"`     // creator royalty, zero when not applicable
	Total          uint64 `json:"total"`           // lamports the buyer pays
}

// ComputeQuote computes the total owed for a purchase at the listed price.
//
// The marketplace fee is a fixed MarketplaceFeeBps cut of the price. The
// creator royalty applies only when the asset's token standard enforces it
// (royaltiesApply); some standards make royalties optional, in which case the
// buyer pays none. Both fees use truncating integer division, matching the
// on-chain programs.
//
// Inputs are trusted: the caller validates that priceLamports and royaltyBps
// came from a well-formed listing. Out-of-range rates produce arithmetically
// consistent but meaningless output.
func ComputeQuote(priceLamports uint64, royaltyBps uint64, royaltiesApply bool) Quote {
	fee := priceLamports * MarketplaceFeeBps / BpsDenominator

	var royalty uint64
	if royaltiesApply {
		royalty = priceLamports * royaltyBps / BpsDenominator
	}

	return Quote{
		BasePrice:      priceLamports,
		MarketplaceFee: fee,
		RoyaltyFee:     royalty,
		Total:          priceLamports + fee + royalty,
	}
}

// BidLamports converts a user-facing SOL offer (e.g. "1.5") into lamports,
// truncating any fraction smaller than a lamport.
// Returns ErrInvalidAmount for NaN, infinite, or negative offers.
func BidLamports(offerSOL float64) (uint64, error) {
	if math.IsNaN(offerSOL) || math.IsInf(offerSOL, 0) {
		return 0, ErrInvalidAmount
	}
	if offerSOL < 0 {
		return 0, ErrInvalidAmount
	}

	lamports := offerSOL * LamportsPerSOL
	if lamports >= math.MaxUint64 {
		return 0, ErrInvalidAmount
	}

	return uint64(lamports), nil
}

// SOL converts a lamport amount to whole SOL for display purposes only;
// never feed the result back into pricing math.
func SOL(lamports uint64) float64 {
	return float64(lamports) / LamportsPerSOL
}
