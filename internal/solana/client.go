// Package solana implements the token-program client boundary against a
// Solana RPC endpoint.
package solana

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/blocto/solana-go-sdk/client"
	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/program/associated_token_account"
	"github.com/blocto/solana-go-sdk/program/system"
	"github.com/blocto/solana-go-sdk/program/token"
	"github.com/blocto/solana-go-sdk/rpc"
	"github.com/blocto/solana-go-sdk/types"

	"spl-token-forge/internal/wallet"
)

// DefaultRPCEndpoint is the public test network endpoint used when no
// override is configured.
const DefaultRPCEndpoint = rpc.DevnetRPCEndpoint

// Client implements minting.ProgramClient on the Solana token program.
// Each operation submits one transaction and waits for finality before
// returning, so the pipeline's steps stay strictly sequential.
type Client struct {
	rpc       *client.Client
	confirmer Confirmer
	logger    *log.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithConfirmer sets the confirmation strategy.
func WithConfirmer(c Confirmer) ClientOption {
	return func(cl *Client) {
		cl.confirmer = c
	}
}

// WithClientLogger sets the client logger.
func WithClientLogger(l *log.Logger) ClientOption {
	return func(cl *Client) {
		cl.logger = l
	}
}

// NewClient creates a Client against endpoint. Confirmation defaults to
// status polling; pass WithConfirmer to use WebSocket subscriptions.
func NewClient(endpoint string, opts ...ClientOption) *Client {
	if strings.TrimSpace(endpoint) == "" {
		endpoint = DefaultRPCEndpoint
	}

	c := &Client{
		rpc:    client.NewClient(endpoint),
		logger: log.New(os.Stdout, "[solana] ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.confirmer == nil {
		c.confirmer = NewPollConfirmer(c.rpc)
	}
	return c
}

// RPC exposes the underlying RPC client for confirmers.
func (c *Client) RPC() *client.Client {
	return c.rpc
}

// SetConfirmer replaces the confirmation strategy. Intended for wiring a
// WebSocket confirmer that itself needs the client's RPC handle.
func (c *Client) SetConfirmer(conf Confirmer) {
	c.confirmer = conf
}

// CreateMint creates a rent-exempt mint account and initializes it in a
// single transaction signed by the wallet and the fresh mint account.
func (c *Client) CreateMint(ctx context.Context, signer *wallet.Handle, mintAuthority, freezeAuthority string, decimals uint8) (string, error) {
	payer := signer.Signer()
	mint := types.NewAccount()

	rentLamports, err := c.rpc.GetMinimumBalanceForRentExemption(ctx, token.MintAccountSize)
	if err != nil {
		return "", fmt.Errorf("get rent exemption: %w", err)
	}

	mintAuth := common.PublicKeyFromString(mintAuthority)
	freezeAuth := common.PublicKeyFromString(freezeAuthority)

	instructions := []types.Instruction{
		system.CreateAccount(system.CreateAccountParam{
			From:     payer.PublicKey,
			New:      mint.PublicKey,
			Owner:    common.TokenProgramID,
			Lamports: rentLamports,
			Space:    token.MintAccountSize,
		}),
		token.InitializeMint(token.InitializeMintParam{
			Decimals:   decimals,
			Mint:       mint.PublicKey,
			MintAuth:   mintAuth,
			FreezeAuth: &freezeAuth,
		}),
	}

	sig, err := c.sendAndConfirm(ctx, []types.Account{payer, mint}, payer.PublicKey, instructions)
	if err != nil {
		return "", fmt.Errorf("create mint: %w", err)
	}

	c.logger.Printf("created mint %s (tx %s)", mint.PublicKey.ToBase58(), wallet.ShortAddress(sig))
	return mint.PublicKey.ToBase58(), nil
}

// GetOrCreateAssociatedAccount derives the associated token account for
// (mint, owner) and creates it when absent, funded by the wallet.
func (c *Client) GetOrCreateAssociatedAccount(ctx context.Context, signer *wallet.Handle, mint, owner string) (string, error) {
	payer := signer.Signer()
	mintPub := common.PublicKeyFromString(mint)
	ownerPub := common.PublicKeyFromString(owner)

	ata, _, err := common.FindAssociatedTokenAddress(ownerPub, mintPub)
	if err != nil {
		return "", fmt.Errorf("derive associated account: %w", err)
	}

	exists, err := c.accountExists(ctx, ata.ToBase58())
	if err != nil {
		return "", fmt.Errorf("check associated account: %w", err)
	}
	if exists {
		c.logger.Printf("associated account %s already exists", ata.ToBase58())
		return ata.ToBase58(), nil
	}

	instructions := []types.Instruction{
		associated_token_account.CreateAssociatedTokenAccount(associated_token_account.CreateAssociatedTokenAccountParam{
			Funder:                 payer.PublicKey,
			Owner:                  ownerPub,
			Mint:                   mintPub,
			AssociatedTokenAccount: ata,
		}),
	}

	sig, err := c.sendAndConfirm(ctx, []types.Account{payer}, payer.PublicKey, instructions)
	if err != nil {
		return "", fmt.Errorf("create associated account: %w", err)
	}

	c.logger.Printf("created associated account %s (tx %s)", ata.ToBase58(), wallet.ShortAddress(sig))
	return ata.ToBase58(), nil
}

// MintTo mints amount base units into account under the wallet's mint
// authority.
func (c *Client) MintTo(ctx context.Context, signer *wallet.Handle, mint, account, authority string, amount uint64) (string, error) {
	payer := signer.Signer()

	instructions := []types.Instruction{
		token.MintTo(token.MintToParam{
			Mint:   common.PublicKeyFromString(mint),
			To:     common.PublicKeyFromString(account),
			Auth:   common.PublicKeyFromString(authority),
			Amount: amount,
		}),
	}

	sig, err := c.sendAndConfirm(ctx, []types.Account{payer}, payer.PublicKey, instructions)
	if err != nil {
		return "", fmt.Errorf("mint to: %w", err)
	}

	c.logger.Printf("minted %d base units of %s (tx %s)", amount, wallet.ShortAddress(mint), wallet.ShortAddress(sig))
	return sig, nil
}

// sendAndConfirm assembles, signs, submits and confirms one transaction.
func (c *Client) sendAndConfirm(ctx context.Context, signers []types.Account, feePayer common.PublicKey, instructions []types.Instruction) (string, error) {
	latest, err := c.rpc.GetLatestBlockhash(ctx)
	if err != nil {
		return "", fmt.Errorf("get latest blockhash: %w", err)
	}

	tx, err := types.NewTransaction(types.NewTransactionParam{
		Signers: signers,
		Message: types.NewMessage(types.NewMessageParam{
			FeePayer:        feePayer,
			RecentBlockhash: latest.Blockhash,
			Instructions:    instructions,
		}),
	})
	if err != nil {
		return "", fmt.Errorf("build transaction: %w", err)
	}

	sig, err := c.rpc.SendTransaction(ctx, tx)
	if err != nil {
		return "", fmt.Errorf("send transaction: %w", err)
	}

	if err := c.confirmer.Confirm(ctx, sig); err != nil {
		return "", err
	}
	return sig, nil
}

// accountExists probes an account via getAccountInfo. RPC providers differ
// on absent accounts: some return a zero-valued info, others a not-found
// error, so both shapes classify as absent.
func (c *Client) accountExists(ctx context.Context, address string) (bool, error) {
	info, err := c.rpc.GetAccountInfo(ctx, address)
	if err == nil {
		if info.Owner == (common.PublicKey{}) && info.Lamports == 0 && info.Data == nil {
			return false, nil
		}
		return true, nil
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "not found") ||
		strings.Contains(msg, "could not find account") ||
		strings.Contains(msg, "account does not exist") {
		return false, nil
	}
	return false, err
}
