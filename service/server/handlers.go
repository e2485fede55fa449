package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"

	"github.com/brojonat/floorlink/service/config"
	"github.com/brojonat/floorlink/service/marketplace"
	"github.com/brojonat/floorlink/service/metrics"
	"github.com/brojonat/floorlink/service/pricing"
	"github.com/brojonat/floorlink/service/txbuild"
	"github.com/google/uuid"
)

const (
	maxRequestBodySize = 1 << 20 // 1MB - plenty for an action POST body
	maxAddressLength   = 64      // Solana addresses are 32-44 chars, give buffer
)

// Valid Solana address characters: base58 (no 0, O, I, l)
var validAddressRegex = regexp.MustCompile(`^[1-9A-HJ-NP-Za-km-z]+$`)

// handleGetBuyAction returns a handler describing the available actions for a
// listed mint: buy at list price, or submit an offer.
// GET /api/v1/actions/buy/{mint}
func handleGetBuyAction(cfg *config.Config, market marketplace.Client, m *metrics.Metrics, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mint := r.PathValue("mint")
		if err := validateAddress(mint); err != nil {
			logger.Debug("invalid mint", "mint", mint, "error", err)
			writeError(w, err.Error(), http.StatusBadRequest)
			return
		}

		listing, ok := resolveListing(w, r, market, mint, logger)
		if !ok {
			return
		}

		quote := pricing.ComputeQuote(listing.PriceLamports, listing.RoyaltyBps, listing.RoyaltiesEnforced)

		title := listing.Name
		if title == "" {
			title = mint
		}

		description := fmt.Sprintf(
			"List price %.4f SOL + %.4f SOL marketplace fee",
			pricing.SOL(quote.BasePrice),
			pricing.SOL(quote.MarketplaceFee),
		)
		if quote.RoyaltyFee > 0 {
			description += fmt.Sprintf(" + %.4f SOL creator royalty", pricing.SOL(quote.RoyaltyFee))
		}
		description += fmt.Sprintf(". Total %.4f SOL.", pricing.SOL(quote.Total))

		meta := actionMetadata{
			Icon:        listing.ImageURL,
			Title:       title,
			Description: description,
			Label:       fmt.Sprintf("Buy for %.4f SOL", pricing.SOL(quote.Total)),
			Links: &actionLinks{
				Actions: []linkedAction{
					{
						Label: fmt.Sprintf("Buy for %.4f SOL", pricing.SOL(quote.Total)),
						Href:  buyActionPath(mint),
					},
					{
						Label: "Make an offer",
						Href:  bidActionPath(mint),
						Parameters: []actionParameter{
							{Name: "amount", Label: "Offer amount in SOL", Required: true},
						},
					},
				},
			},
		}

		m.RecordActionServed("describe", "success")
		logger.Debug("action metadata served", "mint", mint, "total_lamports", quote.Total)
		writeJSON(w, meta, http.StatusOK)
	})
}

// handlePostBuyAction builds the unsigned purchase transaction for a listing.
// POST /api/v1/actions/buy/{mint} with body {"account": BUYER_ADDRESS}
//
// The blockhash is fetched after the listing resolves and the quote is
// computed, immediately before the transaction is assembled, to keep the
// validity window as long as possible.
func handlePostBuyAction(cfg *config.Config, market marketplace.Client, ledger LedgerClient, m *metrics.Metrics, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mint := r.PathValue("mint")
		if err := validateAddress(mint); err != nil {
			logger.Debug("invalid mint", "mint", mint, "error", err)
			writeError(w, err.Error(), http.StatusBadRequest)
			return
		}

		buyer, ok := decodeAccount(w, r, logger)
		if !ok {
			return
		}

		listing, ok := resolveListing(w, r, market, mint, logger)
		if !ok {
			m.RecordActionServed("buy", "listing_error")
			return
		}

		quote := pricing.ComputeQuote(listing.PriceLamports, listing.RoyaltyBps, listing.RoyaltiesEnforced)

		blockhash, err := ledger.LatestBlockhash(r.Context())
		if err != nil {
			logger.Error("failed to fetch blockhash", "mint", mint, "error", err)
			m.RecordActionServed("buy", "upstream_error")
			writeError(w, "ledger unavailable, try again", http.StatusBadGateway)
			return
		}

		tx, err := txbuild.BuildTransfer(buyer, listing.Seller, quote.Total, blockhash)
		if err != nil {
			m.RecordTransactionBuilt("transfer", "error")
			writeBuildError(w, err, logger)
			return
		}
		m.RecordTransactionBuilt("transfer", "success")

		encoded, err := tx.ToBase64()
		if err != nil {
			logger.Error("failed to serialize transaction", "mint", mint, "error", err)
			writeError(w, "internal server error", http.StatusInternalServerError)
			return
		}

		m.RecordActionServed("buy", "success")
		logger.Info("buy transaction built",
			"mint", mint,
			"buyer", buyer,
			"seller", listing.Seller,
			"total_lamports", quote.Total,
		)

		writeJSON(w, actionPostResponse{
			Transaction: encoded,
			Message: fmt.Sprintf("Buy %s for %.4f SOL (includes %.4f SOL in fees)",
				displayName(listing), pricing.SOL(quote.Total), pricing.SOL(quote.Total-quote.BasePrice)),
		}, http.StatusOK)
	})
}

// handlePostBidAction builds the unsigned bid transaction escrowing an offer.
// POST /api/v1/actions/bid/{mint}?amount=SOL with body {"account": BIDDER_ADDRESS}
func handlePostBidAction(cfg *config.Config, market marketplace.Client, ledger LedgerClient, m *metrics.Metrics, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mint := r.PathValue("mint")
		if err := validateAddress(mint); err != nil {
			logger.Debug("invalid mint", "mint", mint, "error", err)
			writeError(w, err.Error(), http.StatusBadRequest)
			return
		}

		amountParam := r.URL.Query().Get("amount")
		if amountParam == "" {
			writeError(w, "amount query parameter is required", http.StatusBadRequest)
			return
		}
		offerSOL, err := strconv.ParseFloat(amountParam, 64)
		if err != nil {
			writeError(w, "invalid amount: must be a decimal SOL value", http.StatusBadRequest)
			return
		}
		lamports, err := pricing.BidLamports(offerSOL)
		if err != nil {
			writeError(w, "invalid amount: must be a finite, non-negative SOL value", http.StatusBadRequest)
			return
		}

		bidder, ok := decodeAccount(w, r, logger)
		if !ok {
			return
		}

		listing, ok := resolveListing(w, r, market, mint, logger)
		if !ok {
			m.RecordActionServed("bid", "listing_error")
			return
		}

		blockhash, err := ledger.LatestBlockhash(r.Context())
		if err != nil {
			logger.Error("failed to fetch blockhash", "mint", mint, "error", err)
			m.RecordActionServed("bid", "upstream_error")
			writeError(w, "ledger unavailable, try again", http.StatusBadGateway)
			return
		}

		reference := uuid.New().String()
		tx, err := txbuild.BuildBid(txbuild.BidParams{
			Mint:      mint,
			Owner:     listing.Seller,
			Bidder:    bidder,
			Escrow:    cfg.BidEscrowAddress,
			Lamports:  lamports,
			Reference: reference,
			Blockhash: blockhash,
		})
		if err != nil {
			m.RecordTransactionBuilt("bid", "error")
			writeBuildError(w, err, logger)
			return
		}
		m.RecordTransactionBuilt("bid", "success")

		encoded, err := tx.ToBase64()
		if err != nil {
			logger.Error("failed to serialize transaction", "mint", mint, "error", err)
			writeError(w, "internal server error", http.StatusInternalServerError)
			return
		}

		m.RecordActionServed("bid", "success")
		logger.Info("bid transaction built",
			"mint", mint,
			"bidder", bidder,
			"offer_lamports", lamports,
			"reference", reference,
		)

		writeJSON(w, actionPostResponse{
			Transaction: encoded,
			Message: fmt.Sprintf("Offer %.4f SOL for %s (funds held in marketplace escrow)",
				pricing.SOL(lamports), displayName(listing)),
		}, http.StatusOK)
	})
}

// resolveListing fetches the listing for a mint and writes the appropriate
// error response on failure. Returns false when a response has been written.
func resolveListing(w http.ResponseWriter, r *http.Request, market marketplace.Client, mint string, logger *slog.Logger) (*marketplace.Listing, bool) {
	listing, err := market.GetListing(r.Context(), mint)
	switch {
	case err == nil:
		// Proceed.
	case errors.Is(err, marketplace.ErrListingNotFound):
		writeError(w, "no listing found for this item", http.StatusNotFound)
		return nil, false
	case errors.Is(err, marketplace.ErrInvalidListing):
		logger.Error("marketplace returned unusable listing", "mint", mint, "error", err)
		writeError(w, "marketplace returned an unusable listing", http.StatusBadGateway)
		return nil, false
	default:
		logger.Error("failed to fetch listing", "mint", mint, "error", err)
		writeError(w, "marketplace unavailable, try again", http.StatusBadGateway)
		return nil, false
	}

	if !listing.Active {
		writeError(w, "listing is no longer active", http.StatusGone)
		return nil, false
	}

	return listing, true
}

// decodeAccount reads and validates the buyer account from the POST body.
// Returns false when an error response has been written.
func decodeAccount(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

	var req actionPostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, "request body too large", http.StatusBadRequest)
			return "", false
		}
		writeError(w, "invalid request body", http.StatusBadRequest)
		return "", false
	}

	if req.Account == "" {
		writeError(w, "account is required", http.StatusBadRequest)
		return "", false
	}
	if err := validateAddress(req.Account); err != nil {
		logger.Debug("invalid account", "account", req.Account, "error", err)
		writeError(w, err.Error(), http.StatusBadRequest)
		return "", false
	}

	return req.Account, true
}

// writeBuildError maps transaction-builder errors onto HTTP statuses.
func writeBuildError(w http.ResponseWriter, err error, logger *slog.Logger) {
	switch {
	case errors.Is(err, txbuild.ErrInvalidAccount):
		writeError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, txbuild.ErrInvalidAmount):
		writeError(w, err.Error(), http.StatusBadRequest)
	default:
		logger.Error("failed to build transaction", "error", err)
		writeError(w, "internal server error", http.StatusInternalServerError)
	}
}

// displayName returns the listing's name, falling back to its mint.
func displayName(listing *marketplace.Listing) string {
	if listing.Name != "" {
		return listing.Name
	}
	return listing.Mint
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}

// validateAddress validates a base58 account or mint address.
func validateAddress(address string) error {
	if address == "" {
		return fmt.Errorf("address is required")
	}
	if len(address) > maxAddressLength {
		return fmt.Errorf("address too long: maximum length is %d characters", maxAddressLength)
	}
	if !validAddressRegex.MatchString(address) {
		return fmt.Errorf("invalid address: must be base58")
	}
	return nil
}
