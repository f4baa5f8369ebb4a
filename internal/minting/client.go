package minting

import (
	"context"

	"spl-token-forge/internal/wallet"
)

// ProgramClient is the token-program boundary: three operations executed
// against a remote Solana endpoint. Implementations submit wallet-signed
// transactions and return only once the transaction reached finality.
type ProgramClient interface {
	// CreateMint creates and initializes a new mint account with the given
	// decimals and authorities. Returns the mint address.
	CreateMint(ctx context.Context, signer *wallet.Handle, mintAuthority, freezeAuthority string, decimals uint8) (string, error)

	// GetOrCreateAssociatedAccount resolves the associated token account for
	// (mint, owner), creating it when absent. Returns the account address.
	GetOrCreateAssociatedAccount(ctx context.Context, signer *wallet.Handle, mint, owner string) (string, error)

	// MintTo mints amount base units of mint into account. Returns the
	// confirmed transaction signature.
	MintTo(ctx context.Context, signer *wallet.Handle, mint, account, authority string, amount uint64) (string, error)
}
