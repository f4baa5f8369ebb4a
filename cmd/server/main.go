// Package main runs the token forge HTTP service: wallet connection,
// validation, preview and the three-step creation pipeline behind a JSON
// API.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"spl-token-forge/internal/api"
	"spl-token-forge/internal/minting"
	"spl-token-forge/internal/solana"
	"spl-token-forge/internal/wallet"
)

func main() {
	// Load .env if present; existing env vars win.
	_ = godotenv.Load()

	// Parse flags (env vars as defaults)
	addr := flag.String("addr", envOr("ADDR", ":8080"), "HTTP listen address")
	rpcEndpoint := flag.String("rpc-endpoint", envOr("SOLANA_RPC_URL", solana.DefaultRPCEndpoint), "Solana RPC HTTP endpoint")
	wsEndpoint := flag.String("ws-endpoint", os.Getenv("SOLANA_WS_URL"), "Solana WebSocket endpoint (derived from the RPC endpoint when empty)")
	keypairPath := flag.String("keypair", envOr("KEYPAIR_PATH", defaultKeypairPath()), "Path to the signing keypair file")

	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client, wsClient := buildClient(ctx, logger, *rpcEndpoint, *wsEndpoint)
	if wsClient != nil {
		defer wsClient.Close()
	}

	connector := wallet.NewConnector(*keypairPath)
	pipeline := minting.NewPipeline(client)
	server := api.NewServer(connector, pipeline)

	httpServer := &http.Server{
		Addr:    *addr,
		Handler: server.Routes(),
	}

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		go func() {
			sig := <-sigCh
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		}()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Printf("Graceful shutdown failed: %v", err)
		}
		cancel()
	}()

	logger.Printf("Listening on %s (RPC %s)", *addr, *rpcEndpoint)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("HTTP server error: %v", err)
	}

	logger.Println("Shutdown complete")
}

// buildClient creates the program client, preferring WebSocket confirmation
// and falling back to status polling when the subscription endpoint is
// unreachable.
func buildClient(ctx context.Context, logger *log.Logger, rpcEndpoint, wsEndpoint string) (*solana.Client, *solana.WSClientImpl) {
	if wsEndpoint == "" {
		wsEndpoint = deriveWSEndpoint(rpcEndpoint)
	}

	client := solana.NewClient(rpcEndpoint)

	wsClient, err := solana.NewWSClient(ctx, wsEndpoint, nil)
	if err != nil {
		logger.Printf("WebSocket endpoint %s unavailable (%v), falling back to status polling", wsEndpoint, err)
		return client, nil
	}

	client.SetConfirmer(solana.NewWSConfirmer(wsClient, client.RPC()))
	return client, wsClient
}

// deriveWSEndpoint maps an HTTP RPC endpoint to its WebSocket counterpart.
func deriveWSEndpoint(rpcEndpoint string) string {
	switch {
	case strings.HasPrefix(rpcEndpoint, "https://"):
		return "wss://" + strings.TrimPrefix(rpcEndpoint, "https://")
	case strings.HasPrefix(rpcEndpoint, "http://"):
		return "ws://" + strings.TrimPrefix(rpcEndpoint, "http://")
	default:
		return rpcEndpoint
	}
}

func defaultKeypairPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "id.json"
	}
	return home + "/.config/solana/id.json"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
