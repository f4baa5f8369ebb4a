// Package main creates an SPL token from the command line: validate the
// parameters, show a preview, connect the wallet and run the creation
// pipeline.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"spl-token-forge/internal/image"
	"spl-token-forge/internal/minting"
	"spl-token-forge/internal/preview"
	"spl-token-forge/internal/solana"
	"spl-token-forge/internal/token"
	"spl-token-forge/internal/wallet"
)

func main() {
	_ = godotenv.Load()

	name := flag.String("name", "", "Token name (required, at most 32 characters)")
	symbol := flag.String("symbol", "", "Token symbol (required, at most 10 characters)")
	decimals := flag.String("decimals", "9", "Decimal places (0-9)")
	totalSupply := flag.String("total-supply", "", "Initial supply in whole tokens (required)")
	description := flag.String("description", "", "Token description")
	imageFile := flag.String("image-file", "", "Path to a token image (jpg, jpeg, png or webp)")
	imageURL := flag.String("image-url", "", "URL of a token image")
	previewOnly := flag.Bool("preview", false, "Show the token preview and exit without creating")
	keypairPath := flag.String("keypair", envOr("KEYPAIR_PATH", defaultKeypairPath()), "Path to the signing keypair file")
	rpcEndpoint := flag.String("rpc-endpoint", envOr("SOLANA_RPC_URL", solana.DefaultRPCEndpoint), "Solana RPC HTTP endpoint")
	wsEndpoint := flag.String("ws-endpoint", os.Getenv("SOLANA_WS_URL"), "Solana WebSocket endpoint (derived from the RPC endpoint when empty)")

	flag.Parse()

	logger := log.New(os.Stderr, "[mint] ", log.LstdFlags)

	if *imageFile != "" && *imageURL != "" {
		logger.Fatal("--image-file and --image-url are mutually exclusive")
	}

	resolver := image.NewResolver()
	switch {
	case *imageFile != "":
		result := <-resolver.SetUploadFile(*imageFile)
		if result.Err != nil {
			logger.Fatalf("Image rejected: %v", result.Err)
		}
	case *imageURL != "":
		if _, err := resolver.SetURL(*imageURL); err != nil {
			logger.Fatalf("Image URL rejected: %v", err)
		}
	}

	raw := token.RawInput{
		Name:        *name,
		Symbol:      *symbol,
		Decimals:    *decimals,
		TotalSupply: *totalSupply,
		Description: *description,
		ImageURL:    *imageURL,
	}

	fmt.Print(preview.FromRaw(raw, resolver.Preview()).Render())

	params, ferrs := token.ParseAndValidate(raw)
	if ferrs != nil {
		fields := strings.Split(ferrs.Error(), "; ")
		for _, f := range fields {
			fmt.Fprintf(os.Stderr, "  %s\n", f)
		}
		os.Exit(1)
	}

	if *previewOnly {
		return
	}

	ctx := context.Background()

	connector := wallet.NewConnector(*keypairPath)
	handle, err := connector.Connect(ctx)
	if err != nil {
		os.Exit(1)
	}

	client, wsClient := buildClient(ctx, logger, *rpcEndpoint, *wsEndpoint)
	if wsClient != nil {
		defer wsClient.Close()
	}

	result, err := minting.NewPipeline(client).CreateToken(ctx, handle, params)
	if err != nil {
		logger.Fatalf("Token creation failed: %v", err)
	}

	fmt.Println()
	fmt.Printf("Token created: %s\n", result.Mint)
	fmt.Printf("  Holding account: %s\n", result.HoldingAccount)
	fmt.Printf("  Signature:       %s\n", result.Signature)
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
