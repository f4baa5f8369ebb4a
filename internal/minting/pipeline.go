// Package minting runs the token-creation pipeline: three sequential
// wallet-signed remote calls against the token program.
package minting

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"spl-token-forge/internal/observability"
	"spl-token-forge/internal/token"
	"spl-token-forge/internal/wallet"
)

// Result identifies a successfully created token.
type Result struct {
	// RequestID tags the invocation in logs so stray mints from partial
	// failures can be traced back to their submission.
	RequestID string

	// Mint is the on-chain address of the new token.
	Mint string

	// HoldingAccount is the associated account holding the initial supply.
	HoldingAccount string

	// Signature is the signature of the final mint-to transaction.
	Signature string
}

// Pipeline issues the token-creation call sequence. Invocations are
// independent: a re-invocation after a partial failure creates a new,
// distinct mint rather than resuming the failed one.
type Pipeline struct {
	client ProgramClient
	logger *log.Logger
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithLogger sets the pipeline logger.
func WithLogger(l *log.Logger) PipelineOption {
	return func(p *Pipeline) {
		p.logger = l
	}
}

// NewPipeline creates a Pipeline backed by client.
func NewPipeline(client ProgramClient, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		client: client,
		logger: log.New(os.Stdout, "[minting] ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// CreateToken creates the mint, resolves the holding account and mints the
// initial supply. The wallet account is both mint authority and freeze
// authority. Any remote failure is terminal; the partial on-chain state it
// may leave behind is documented, not cleaned up.
func (p *Pipeline) CreateToken(ctx context.Context, handle *wallet.Handle, params *token.Params) (*Result, error) {
	if handle == nil {
		return nil, ErrWalletNotConnected
	}

	reqID := uuid.NewString()
	owner := handle.Address()
	p.logger.Printf("request %s: creating token %q (%s) as %s",
		reqID, params.Name, params.Symbol, wallet.ShortAddress(owner))

	mint, err := p.runStage(ctx, "create_mint", func(ctx context.Context) (string, error) {
		return p.client.CreateMint(ctx, handle, owner, owner, params.Decimals)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMintCreationFailed, err)
	}
	p.logger.Printf("request %s: mint created at %s", reqID, mint)

	account, err := p.runStage(ctx, "resolve_account", func(ctx context.Context) (string, error) {
		return p.client.GetOrCreateAssociatedAccount(ctx, handle, mint, owner)
	})
	if err != nil {
		p.logger.Printf("request %s: mint %s left unlinked", reqID, mint)
		return nil, fmt.Errorf("%w: %w", ErrAccountResolutionFailed, err)
	}

	amount, err := token.RawAmount(params.TotalSupply, params.Decimals)
	if err != nil {
		// Validation upstream makes this unreachable for accepted input.
		return nil, fmt.Errorf("%w: %w", ErrMintIssuanceFailed, err)
	}

	sig, err := p.runStage(ctx, "mint_to", func(ctx context.Context) (string, error) {
		return p.client.MintTo(ctx, handle, mint, account, owner, amount)
	})
	if err != nil {
		p.logger.Printf("request %s: mint %s and account %s hold zero supply", reqID, mint, account)
		return nil, fmt.Errorf("%w: %w", ErrMintIssuanceFailed, err)
	}

	p.logger.Printf("request %s: minted %d base units of %s into %s", reqID, amount, mint, account)
	observability.RecordTokenCreated()

	return &Result{
		RequestID:      reqID,
		Mint:           mint,
		HoldingAccount: account,
		Signature:      sig,
	}, nil
}

// runStage executes one remote call with stage metrics.
func (p *Pipeline) runStage(ctx context.Context, stage string, fn func(context.Context) (string, error)) (string, error) {
	start := time.Now()
	out, err := fn(ctx)
	status := "success"
	if err != nil {
		status = "error"
	}
	observability.RecordPipelineStage(stage, status, time.Since(start).Seconds())
	return out, err
}
