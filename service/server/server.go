package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/brojonat/floorlink/service/config"
	"github.com/brojonat/floorlink/service/marketplace"
	"github.com/brojonat/floorlink/service/metrics"
	"github.com/gagliardetto/solana-go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// LedgerClient provides the blockhash fetch needed to anchor transactions.
// Satisfied by service/solana.Client; tests substitute a fake.
type LedgerClient interface {
	LatestBlockhash(ctx context.Context) (solana.Hash, error)
}

// Server represents the HTTP server for the action service.
type Server struct {
	addr    string
	cfg     *config.Config
	market  marketplace.Client
	ledger  LedgerClient
	metrics *metrics.Metrics
	logger  *slog.Logger
	server  *http.Server
}

// New creates a new HTTP server with the given dependencies.
// The market client resolves listings, the ledger client supplies fresh
// blockhashes. The metrics is optional - if nil, metrics endpoints won't be
// available.
func New(addr string, cfg *config.Config, market marketplace.Client, ledger LedgerClient, m *metrics.Metrics, logger *slog.Logger) *Server {
	return &Server{
		addr:    addr,
		cfg:     cfg,
		market:  market,
		ledger:  ledger,
		metrics: m,
		logger:  logger,
	}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("starting HTTP server", "addr", s.addr)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

// Handler builds the full route table. Exposed separately from Start so tests
// can drive the server through httptest without binding a port.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Action routes, each wrapped with per-endpoint HTTP metrics
	buyMW := metrics.HTTPMetricsMiddleware(s.metrics, "/api/v1/actions/buy")
	bidMW := metrics.HTTPMetricsMiddleware(s.metrics, "/api/v1/actions/bid")
	qrMW := metrics.HTTPMetricsMiddleware(s.metrics, "/api/v1/actions/buy/qr")
	mux.Handle("GET /api/v1/actions/buy/{mint}", buyMW(handleGetBuyAction(s.cfg, s.market, s.metrics, s.logger)))
	mux.Handle("POST /api/v1/actions/buy/{mint}", buyMW(handlePostBuyAction(s.cfg, s.market, s.ledger, s.metrics, s.logger)))
	mux.Handle("POST /api/v1/actions/bid/{mint}", bidMW(handlePostBidAction(s.cfg, s.market, s.ledger, s.metrics, s.logger)))
	mux.Handle("GET /api/v1/actions/buy/{mint}/qr", qrMW(handleActionQR(s.cfg, s.logger)))

	// Action client routing manifest
	mux.HandleFunc("GET /actions.json", handleActionsRules())

	// Health check endpoint
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Prometheus metrics endpoint (if metrics collector is configured)
	if s.metrics != nil {
		mux.Handle("GET /metrics", promhttp.Handler())
	}

	// Wrap mux with CORS middleware; action clients are browser extensions and
	// wallet apps, so permissive CORS is part of the protocol contract.
	return corsMiddleware(mux)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// corsMiddleware adds CORS headers to all responses and handles OPTIONS
// preflight requests. The action headers advertise protocol support to
// blink-aware clients.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Accept-Encoding")
		w.Header().Set("Access-Control-Max-Age", "3600")
		w.Header().Set("X-Action-Version", "2.1")
		w.Header().Set("X-Blockchain-Ids", "solana:5eykt4UsFv8P8NJdTREpY1vzqKqZKvdp")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
