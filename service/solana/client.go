package solana

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/brojonat/floorlink/service/metrics"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// RPCClient is an interface for the Solana RPC operations we need.
// This allows us to mock the RPC layer in tests without hitting real Solana nodes.
type RPCClient interface {
	GetLatestBlockhash(
		ctx context.Context,
		commitment rpc.CommitmentType,
	) (*rpc.GetLatestBlockhashResult, error)
}

// Client provides ledger access for transaction construction.
// Its single job is fetching a fresh blockhash immediately before a
// transaction is built; it never signs or submits anything.
type Client struct {
	rpc      RPCClient
	logger   *slog.Logger
	metrics  *metrics.Metrics
	endpoint string // RPC endpoint identifier for metrics (e.g., "mainnet", rpc host)
}

// NewClient creates a new Solana client.
// The endpoint parameter is used for metrics labeling (e.g., "mainnet", "devnet",
// or RPC hostname). If m is nil, no metrics are recorded.
func NewClient(rpcClient RPCClient, endpoint string, m *metrics.Metrics, logger *slog.Logger) *Client {
	return &Client{
		rpc:      rpcClient,
		logger:   logger,
		metrics:  m,
		endpoint: endpoint,
	}
}

// LatestBlockhash fetches the most recent finalized blockhash. Callers must
// invoke this immediately before building a transaction: the returned hash
// bounds the transaction's validity window, and a stale one gets the signed
// transaction rejected at submission.
func (c *Client) LatestBlockhash(ctx context.Context) (solana.Hash, error) {
	start := time.Now()
	out, err := c.rpc.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	duration := time.Since(start).Seconds()

	status := "success"
	if err != nil {
		status = "error"
	}
	c.metrics.RecordRPCCall("GetLatestBlockhash", status, c.endpoint, duration)

	if err != nil {
		c.logger.ErrorContext(ctx, "failed to get latest blockhash", "error", err)
		return solana.Hash{}, fmt.Errorf("failed to get latest blockhash: %w", err)
	}
	if out == nil || out.Value == nil {
		return solana.Hash{}, fmt.Errorf("rpc returned empty blockhash result")
	}

	c.logger.DebugContext(ctx, "fetched latest blockhash",
		"blockhash", out.Value.Blockhash.String(),
		"last_valid_block_height", out.Value.LastValidBlockHeight,
	)

	return out.Value.Blockhash, nil
}
