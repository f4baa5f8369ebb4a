// Package stub provides an in-memory ProgramClient for testing.
package stub

import (
	"context"

	"spl-token-forge/internal/wallet"
)

// Call records one ProgramClient invocation.
type Call struct {
	Op        string
	Mint      string
	Account   string
	Authority string
	Freeze    string
	Decimals  uint8
	Amount    uint64
}

// ProgramClient implements minting.ProgramClient for testing. Configure the
// addresses it returns and the error to fail each operation with; every
// invocation is recorded in Calls.
type ProgramClient struct {
	MintAddress    string
	AccountAddress string
	Signature      string

	CreateMintErr error
	AccountErr    error
	MintToErr     error

	Calls []Call
}

// NewProgramClient creates a stub client with fixed result addresses.
func NewProgramClient() *ProgramClient {
	return &ProgramClient{
		MintAddress:    "StubMint1111111111111111111111111111111111",
		AccountAddress: "StubAccount11111111111111111111111111111111",
		Signature:      "StubSignature",
	}
}

// CreateMint records the call and returns the configured mint address.
func (c *ProgramClient) CreateMint(_ context.Context, _ *wallet.Handle, mintAuthority, freezeAuthority string, decimals uint8) (string, error) {
	c.Calls = append(c.Calls, Call{Op: "create_mint", Authority: mintAuthority, Freeze: freezeAuthority, Decimals: decimals})
	if c.CreateMintErr != nil {
		return "", c.CreateMintErr
	}
	return c.MintAddress, nil
}

// GetOrCreateAssociatedAccount records the call and returns the configured
// account address.
func (c *ProgramClient) GetOrCreateAssociatedAccount(_ context.Context, _ *wallet.Handle, mint, owner string) (string, error) {
	c.Calls = append(c.Calls, Call{Op: "resolve_account", Mint: mint, Authority: owner})
	if c.AccountErr != nil {
		return "", c.AccountErr
	}
	return c.AccountAddress, nil
}

// MintTo records the call and returns the configured signature.
func (c *ProgramClient) MintTo(_ context.Context, _ *wallet.Handle, mint, account, authority string, amount uint64) (string, error) {
	c.Calls = append(c.Calls, Call{Op: "mint_to", Mint: mint, Account: account, Authority: authority, Amount: amount})
	if c.MintToErr != nil {
		return "", c.MintToErr
	}
	return c.Signature, nil
}

// CallsFor returns the recorded calls for one operation.
func (c *ProgramClient) CallsFor(op string) []Call {
	var out []Call
	for _, call := range c.Calls {
		if call.Op == op {
			out = append(out, call)
		}
	}
	return out
}
