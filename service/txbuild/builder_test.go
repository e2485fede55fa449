package txbuild

import (
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testPayer     = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	testRecipient = "4zMMC9srt5Ri5X14GAgXhaHii3GnPAEERYPJgZJDncDU"
	testMint      = "So11111111111111111111111111111111111111112"
	testEscrow    = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
	testBlockhash = solana.MustHashFromBase58("SysvarC1ock11111111111111111111111111111111")
)

// transferLamports extracts the lamport amount from a compiled system-program
// transfer instruction (4-byte instruction index, 8-byte LE amount).
func transferLamports(t *testing.T, data []byte) uint64 {
	t.Helper()
	require.Len(t, data, 12)
	return binary.LittleEndian.Uint64(data[4:])
}

func TestBuildTransfer(t *testing.T) {
	tx, err := BuildTransfer(testPayer, testRecipient, 1_065_000, testBlockhash)
	require.NoError(t, err)

	// Exactly one instruction, carrying the requested amount.
	require.Len(t, tx.Message.Instructions, 1)
	assert.Equal(t, uint64(1_065_000), transferLamports(t, tx.Message.Instructions[0].Data))

	// Payer is the fee payer and first account key.
	assert.Equal(t, testPayer, tx.Message.AccountKeys[0].String())

	// Anchored to the supplied blockhash, unsigned.
	assert.Equal(t, testBlockhash, tx.Message.RecentBlockhash)
	assert.Empty(t, tx.Signatures)
}

func TestBuildTransfer_Deterministic(t *testing.T) {
	a, err := BuildTransfer(testPayer, testRecipient, 42, testBlockhash)
	require.NoError(t, err)
	b, err := BuildTransfer(testPayer, testRecipient, 42, testBlockhash)
	require.NoError(t, err)

	aBytes, err := a.MarshalBinary()
	require.NoError(t, err)
	bBytes, err := b.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, aBytes, bBytes)
}

func TestBuildTransfer_InvalidInput(t *testing.T) {
	tests := []struct {
		name      string
		payer     string
		recipient string
		amount    uint64
		wantErr   error
	}{
		{name: "empty payer", payer: "", recipient: testRecipient, amount: 1, wantErr: ErrInvalidAccount},
		{name: "malformed payer", payer: "not-base58-0OIl", recipient: testRecipient, amount: 1, wantErr: ErrInvalidAccount},
		{name: "malformed recipient", payer: testPayer, recipient: "zzz", amount: 1, wantErr: ErrInvalidAccount},
		{name: "zero amount", payer: testPayer, recipient: testRecipient, amount: 0, wantErr: ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx, err := BuildTransfer(tt.payer, tt.recipient, tt.amount, testBlockhash)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, tx)
		})
	}
}

func TestBuildBid(t *testing.T) {
	tx, err := BuildBid(BidParams{
		Mint:      testMint,
		Owner:     testRecipient,
		Bidder:    testPayer,
		Escrow:    testEscrow,
		Lamports:  1_500_000_000,
		Reference: "f1ee3b1c-4a39-44a6-9d5e-1f6b0a42b100",
		Blockhash: testBlockhash,
	})
	require.NoError(t, err)

	// Escrow-fund transfer first, memo second.
	require.Len(t, tx.Message.Instructions, 2)
	assert.Equal(t, uint64(1_500_000_000), transferLamports(t, tx.Message.Instructions[0].Data))

	memoProgram, err := tx.Message.Program(tx.Message.Instructions[1].ProgramIDIndex)
	require.NoError(t, err)
	assert.Equal(t, memoProgramID, memoProgram)
	assert.Contains(t, string(tx.Message.Instructions[1].Data), testMint)
	assert.Contains(t, string(tx.Message.Instructions[1].Data), "f1ee3b1c-4a39-44a6-9d5e-1f6b0a42b100")

	assert.Equal(t, testPayer, tx.Message.AccountKeys[0].String())
	assert.Equal(t, testBlockhash, tx.Message.RecentBlockhash)
	assert.Empty(t, tx.Signatures)
}

func TestBuildBid_InvalidInput(t *testing.T) {
	valid := BidParams{
		Mint:      testMint,
		Owner:     testRecipient,
		Bidder:    testPayer,
		Escrow:    testEscrow,
		Lamports:  1,
		Blockhash: testBlockhash,
	}

	t.Run("malformed bidder", func(t *testing.T) {
		p := valid
		p.Bidder = "!!"
		_, err := BuildBid(p)
		require.ErrorIs(t, err, ErrInvalidAccount)
	})

	t.Run("malformed escrow", func(t *testing.T) {
		p := valid
		p.Escrow = ""
		_, err := BuildBid(p)
		require.ErrorIs(t, err, ErrInvalidAccount)
	})

	t.Run("malformed mint", func(t *testing.T) {
		p := valid
		p.Mint = "0"
		_, err := BuildBid(p)
		require.ErrorIs(t, err, ErrInvalidAccount)
	})

	t.Run("zero amount", func(t *testing.T) {
		p := valid
		p.Lamports = 0
		_, err := BuildBid(p)
		require.ErrorIs(t, err, ErrInvalidAmount)
	})
}
