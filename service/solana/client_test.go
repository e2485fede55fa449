package solana

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	solanago "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRPC is a canned-response RPCClient for tests.
type fakeRPC struct {
	result     *rpc.GetLatestBlockhashResult
	err        error
	commitment rpc.CommitmentType
}

func (f *fakeRPC) GetLatestBlockhash(_ context.Context, commitment rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error) {
	f.commitment = commitment
	return f.result, f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestLatestBlockhash(t *testing.T) {
	want := solanago.MustHashFromBase58("SysvarC1ock11111111111111111111111111111111")
	fake := &fakeRPC{
		result: &rpc.GetLatestBlockhashResult{
			Value: &rpc.LatestBlockhashResult{
				Blockhash:            want,
				LastValidBlockHeight: 12345,
			},
		},
	}
	client := NewClient(fake, "test", nil, testLogger())

	got, err := client.LatestBlockhash(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// Transactions must anchor to finalized state.
	assert.Equal(t, rpc.CommitmentFinalized, fake.commitment)
}

func TestLatestBlockhash_RPCError(t *testing.T) {
	fake := &fakeRPC{err: errors.New("rpc unavailable")}
	client := NewClient(fake, "test", nil, testLogger())

	_, err := client.LatestBlockhash(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get latest blockhash")
}

func TestLatestBlockhash_EmptyResult(t *testing.T) {
	fake := &fakeRPC{result: &rpc.GetLatestBlockhashResult{}}
	client := NewClient(fake, "test", nil, testLogger())

	_, err := client.LatestBlockhash(context.Background())
	require.Error(t, err)
}
