package minting

import "errors"

// Pipeline errors. Every remote-call failure is terminal for the invocation;
// there are no retries and no rollback of partially created on-chain state.
var (
	// ErrWalletNotConnected is returned when no wallet handle is present.
	// No remote call is attempted.
	ErrWalletNotConnected = errors.New("wallet not connected")

	// ErrMintCreationFailed wraps a failure of the create-mint call.
	// Nothing was created on chain.
	ErrMintCreationFailed = errors.New("mint creation failed")

	// ErrAccountResolutionFailed wraps a failure of the holding-account
	// resolution. A mint exists in an unlinked state; this partial outcome
	// is accepted and not remediated.
	ErrAccountResolutionFailed = errors.New("holding account resolution failed")

	// ErrMintIssuanceFailed wraps a failure of the mint-to call. The mint
	// and account exist with zero supply; this partial outcome is accepted
	// and not remediated.
	ErrMintIssuanceFailed = errors.New("supply issuance failed")
)
