package solana

import "context"

// WSClient defines the Solana WebSocket signature-subscription interface.
type WSClient interface {
	// SubscribeSignature subscribes to the confirmation of a transaction
	// signature. The returned channel delivers at most one result; the
	// server removes the subscription after notifying.
	SubscribeSignature(ctx context.Context, signature string) (<-chan SignatureResult, error)

	// Close closes the WebSocket connection.
	Close() error
}

// SignatureResult is a signatureNotification payload.
type SignatureResult struct {
	Slot int64
	// Err is the on-chain transaction error, nil when the transaction
	// succeeded.
	Err interface{}
}
