// Package wallet obtains a signing capability from a local keypair file,
// the server-side equivalent of a browser wallet extension.
package wallet

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"

	"github.com/blocto/solana-go-sdk/types"

	"spl-token-forge/internal/observability"
)

// InstallURL is surfaced when no keypair exists, pointing at the wallet
// tooling installation page.
const InstallURL = "https://docs.solanalabs.com/cli/install"

// Connection errors.
var (
	// ErrWalletNotFound is returned when no keypair file exists at the
	// configured path.
	ErrWalletNotFound = errors.New("wallet not found")

	// ErrConnectionRejected is returned when a keypair file exists but
	// cannot be unlocked into a signing account.
	ErrConnectionRejected = errors.New("wallet connection rejected")
)

// Notifier receives user-facing outcome notifications. Notifications are
// fire-and-forget feedback, not part of any contract's return value.
type Notifier interface {
	Notify(title, description string)
}

// LogNotifier writes notifications to a logger.
type LogNotifier struct {
	Logger *log.Logger
}

func (n *LogNotifier) Notify(title, description string) {
	n.Logger.Printf("%s: %s", title, description)
}

// Handle is the signing capability obtained from a successful Connect.
// It is held for the process session and never persisted.
type Handle struct {
	account types.Account
}

// NewHandle wraps a signing account in a Handle.
func NewHandle(account types.Account) *Handle {
	return &Handle{account: account}
}

// Address returns the base58 account address.
func (h *Handle) Address() string {
	return h.account.PublicKey.ToBase58()
}

// Signer returns the underlying signing account.
func (h *Handle) Signer() types.Account {
	return h.account
}

// Connector obtains a Handle from a keypair file.
type Connector struct {
	keypairPath string
	notifier    Notifier
	logger      *log.Logger
}

// ConnectorOption configures a Connector.
type ConnectorOption func(*Connector)

// WithNotifier sets the notifier for connection outcomes.
func WithNotifier(n Notifier) ConnectorOption {
	return func(c *Connector) {
		c.notifier = n
	}
}

// WithLogger sets the connector logger.
func WithLogger(l *log.Logger) ConnectorOption {
	return func(c *Connector) {
		c.logger = l
	}
}

// NewConnector creates a Connector reading the keypair at path.
func NewConnector(keypairPath string, opts ...ConnectorOption) *Connector {
	c := &Connector{
		keypairPath: keypairPath,
		logger:      log.New(os.Stdout, "[wallet] ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.notifier == nil {
		c.notifier = &LogNotifier{Logger: c.logger}
	}
	return c
}

// Connect loads and unlocks the keypair. Every outcome is notified; there is
// no retry, the caller re-invokes manually.
func (c *Connector) Connect(ctx context.Context) (*Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(c.keypairPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			observability.RecordWalletConnect("not_found")
			c.notifier.Notify("Wallet Not Found",
				fmt.Sprintf("no keypair at %s; install the wallet tooling from %s and run solana-keygen new", c.keypairPath, InstallURL))
			return nil, ErrWalletNotFound
		}
		observability.RecordWalletConnect("rejected")
		c.notifier.Notify("Connection Error",
			fmt.Sprintf("keypair at %s could not be read: %v", c.keypairPath, err))
		return nil, fmt.Errorf("%w: %w", ErrConnectionRejected, err)
	}

	acc, err := DecodeKeypair(data)
	if err != nil {
		observability.RecordWalletConnect("rejected")
		c.notifier.Notify("Connection Error",
			fmt.Sprintf("keypair at %s could not be unlocked: %v", c.keypairPath, err))
		return nil, fmt.Errorf("%w: %w", ErrConnectionRejected, err)
	}

	h := NewHandle(acc)
	observability.RecordWalletConnect("connected")
	c.logger.Printf("connected wallet %s", ShortAddress(h.Address()))
	c.notifier.Notify("Wallet Connected",
		fmt.Sprintf("successfully connected wallet %s", h.Address()))
	return h, nil
}
