package solana

import (
	"context"
	"fmt"
	"time"

	"github.com/blocto/solana-go-sdk/client"
	"github.com/blocto/solana-go-sdk/rpc"

	"spl-token-forge/internal/observability"
)

// Confirmer waits until a submitted transaction signature reaches finality.
type Confirmer interface {
	Confirm(ctx context.Context, signature string) error
}

// DefaultConfirmTimeout bounds a single confirmation wait.
const DefaultConfirmTimeout = 90 * time.Second

// PollConfirmer confirms via repeated getSignatureStatuses queries. Used
// when no WebSocket endpoint is configured.
type PollConfirmer struct {
	RPC      *client.Client
	Interval time.Duration
	Timeout  time.Duration
}

// NewPollConfirmer creates a PollConfirmer with default timing.
func NewPollConfirmer(rpcClient *client.Client) *PollConfirmer {
	return &PollConfirmer{
		RPC:      rpcClient,
		Interval: 2 * time.Second,
		Timeout:  DefaultConfirmTimeout,
	}
}

// Confirm polls the signature status until it is finalized, errored or the
// timeout elapses.
func (p *PollConfirmer) Confirm(ctx context.Context, signature string) error {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()

	for {
		done, err := checkSignatureStatus(ctx, p.RPC, signature)
		if err != nil {
			return err
		}
		if done {
			observability.RecordConfirmationLatency(time.Since(start).Seconds())
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("confirmation of %s: %w", signature, ctx.Err())
		case <-ticker.C:
		}
	}
}

// WSConfirmer confirms via a signatureSubscribe subscription, with a single
// status poll to close the subscribe-after-send race: a transaction that
// finalized before the subscription was registered never notifies.
type WSConfirmer struct {
	WS      WSClient
	RPC     *client.Client
	Timeout time.Duration
}

// NewWSConfirmer creates a WSConfirmer with the default timeout.
func NewWSConfirmer(ws WSClient, rpcClient *client.Client) *WSConfirmer {
	return &WSConfirmer{
		WS:      ws,
		RPC:     rpcClient,
		Timeout: DefaultConfirmTimeout,
	}
}

// Confirm waits for the signature to finalize.
func (w *WSConfirmer) Confirm(ctx context.Context, signature string) error {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, w.Timeout)
	defer cancel()

	ch, err := w.WS.SubscribeSignature(ctx, signature)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", signature, err)
	}

	// Catch-up: the transaction may have finalized before the subscription
	// was registered.
	if w.RPC != nil {
		done, err := checkSignatureStatus(ctx, w.RPC, signature)
		if err == nil && done {
			observability.RecordConfirmationLatency(time.Since(start).Seconds())
			return nil
		}
	}

	select {
	case result, ok := <-ch:
		if !ok {
			return fmt.Errorf("confirmation of %s: subscription closed", signature)
		}
		if result.Err != nil {
			return fmt.Errorf("transaction %s failed on chain: %v", signature, result.Err)
		}
		observability.RecordConfirmationLatency(time.Since(start).Seconds())
		return nil
	case <-ctx.Done():
		return fmt.Errorf("confirmation of %s: %w", signature, ctx.Err())
	}
}

// checkSignatureStatus reports whether the signature reached finality.
// Returns an error only for on-chain transaction failure; RPC errors and
// unknown signatures report not-done so the caller keeps waiting.
func checkSignatureStatus(ctx context.Context, rpcClient *client.Client, signature string) (bool, error) {
	status, err := rpcClient.GetSignatureStatus(ctx, signature)
	if err != nil || status == nil {
		return false, nil
	}
	if status.Err != nil {
		return false, fmt.Errorf("transaction %s failed on chain: %v", signature, status.Err)
	}
	return status.ConfirmationStatus != nil && *status.ConfirmationStatus == rpc.CommitmentFinalized, nil
}
