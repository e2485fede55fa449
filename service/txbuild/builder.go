// Package txbuild assembles unsigned Solana transactions for marketplace
// purchases and bids. Nothing here signs, simulates, or broadcasts: the output
// is an in-memory transaction envelope anchored to a caller-supplied recent
// blockhash, ready for client-side signing.
package txbuild

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
)

var (
	// ErrInvalidAccount indicates a malformed base58 account address.
	ErrInvalidAccount = errors.New("invalid account address")

	// ErrInvalidAmount indicates a zero lamport amount where a positive
	// transfer is required.
	ErrInvalidAmount = errors.New("invalid amount")
)

// memoProgramID is the SPL memo program (v2).
var memoProgramID = solana.MustPublicKeyFromBase58("MemoSq4gqABAXKb96qnH8TysNcWxMyWCqXgDLGmfcHr")

// BuildTransfer constructs an unsigned transaction moving lamports from payer
// to recipient. The envelope holds exactly one system-program transfer
// instruction and is anchored to the supplied blockhash; the caller must have
// fetched that blockhash immediately beforehand, since its validity window is
// what bounds the transaction's lifetime.
//
// The same inputs (including blockhash) always produce a byte-identical
// transaction.
func BuildTransfer(payer, recipient string, lamports uint64, blockhash solana.Hash) (*solana.Transaction, error) {
	payerKey, err := parseAccount("payer", payer)
	if err != nil {
		return nil, err
	}
	recipientKey, err := parseAccount("recipient", recipient)
	if err != nil {
		return nil, err
	}
	if lamports == 0 {
		return nil, fmt.Errorf("%w: transfer amount must be positive", ErrInvalidAmount)
	}

	transfer, err := system.NewTransferInstruction(lamports, payerKey, recipientKey).ValidateAndBuild()
	if err != nil {
		return nil, fmt.Errorf("failed to build transfer instruction: %w", err)
	}

	tx, err := solana.NewTransaction(
		[]solana.Instruction{transfer},
		blockhash,
		solana.TransactionPayer(payerKey),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to assemble transaction: %w", err)
	}

	return tx, nil
}

// BidParams describes a bid (offer) on a listed asset.
type BidParams struct {
	// Mint is the asset the bid targets.
	Mint string
	// Owner is the current owner of the asset (the listing's seller).
	Owner string
	// Bidder funds the escrow and pays transaction fees.
	Bidder string
	// Escrow is the marketplace's bid escrow account.
	Escrow string
	// Lamports is the offer amount to escrow.
	Lamports uint64
	// Reference ties the on-chain bid back to a quote served by this service.
	Reference string
	// Blockhash anchors the transaction's validity window.
	Blockhash solana.Hash
}

// BuildBid constructs an unsigned transaction that escrows a bid with the
// marketplace. Instruction order is significant and fixed: the escrow-fund
// transfer executes first, then a memo records the bid reference so the
// marketplace's off-chain matcher can attribute the escrowed funds to the
// target mint and owner.
func BuildBid(params BidParams) (*solana.Transaction, error) {
	bidderKey, err := parseAccount("bidder", params.Bidder)
	if err != nil {
		return nil, err
	}
	escrowKey, err := parseAccount("escrow", params.Escrow)
	if err != nil {
		return nil, err
	}
	if _, err := parseAccount("mint", params.Mint); err != nil {
		return nil, err
	}
	if _, err := parseAccount("owner", params.Owner); err != nil {
		return nil, err
	}
	if params.Lamports == 0 {
		return nil, fmt.Errorf("%w: bid amount must be positive", ErrInvalidAmount)
	}

	fund, err := system.NewTransferInstruction(params.Lamports, bidderKey, escrowKey).ValidateAndBuild()
	if err != nil {
		return nil, fmt.Errorf("failed to build escrow transfer: %w", err)
	}

	memoData := fmt.Sprintf("bid:%s:%s:%d:%s", params.Mint, params.Owner, params.Lamports, params.Reference)
	memo := solana.NewInstruction(
		memoProgramID,
		solana.AccountMetaSlice{solana.Meta(bidderKey).SIGNER()},
		[]byte(memoData),
	)

	tx, err := solana.NewTransaction(
		[]solana.Instruction{fund, memo},
		params.Blockhash,
		solana.TransactionPayer(bidderKey),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to assemble transaction: %w", err)
	}

	return tx, nil
}

// parseAccount validates and decodes a base58 account address.
func parseAccount(field, address string) (solana.PublicKey, error) {
	if address == "" {
		return solana.PublicKey{}, fmt.Errorf("%w: %s is required", ErrInvalidAccount, field)
	}
	key, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("%w: %s: %v", ErrInvalidAccount, field, err)
	}
	return key, nil
}
