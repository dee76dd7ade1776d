package provider

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/mrz1836/tether/internal/networks"
	"github.com/mrz1836/tether/internal/walletrpc"
)

var (
	// ErrNoEndpoint is returned when a kind has no endpoint configured.
	ErrNoEndpoint = errors.New("no endpoint configured for provider")

	// ErrNoAccounts is returned when the wallet exposes no account.
	ErrNoAccounts = errors.New("wallet returned no accounts")
)

// Handle is the RPC surface of an activated wallet.
type Handle interface {
	ChainID(ctx context.Context) (uint64, error)
	SwitchChain(ctx context.Context, chainID uint64) error
	AddChain(ctx context.Context, desc networks.Descriptor) error
	PersonalSign(ctx context.Context, message, account string) (string, error)
	EcRecover(ctx context.Context, message, signature string) (string, error)
	Close()
}

// Wallet is a freshly dialed handle that can still be asked for accounts.
type Wallet interface {
	Handle
	RequestAccounts(ctx context.Context) ([]string, error)
}

// DialFunc opens a wallet transport.
type DialFunc func(ctx context.Context, endpoint string) (Wallet, error)

// Activation is the result of a successful Activate.
type Activation struct {
	Handle  Handle
	Account string
	ChainID uint64
}

// Connector establishes and tears down a wallet connection for one kind.
type Connector interface {
	Kind() Kind
	Activate(ctx context.Context) (*Activation, error)
	Deactivate() error
}

// RPCConnector connects to a wallet over JSON-RPC.
type RPCConnector struct {
	kind     Kind
	endpoint string
	dial     DialFunc
	pairing  PairingFunc

	mu     sync.Mutex
	active Handle
}

// ConnectorOptions configures an RPCConnector.
type ConnectorOptions struct {
	// Endpoint is the wallet URL, or the bridge URL for WalletConnect.
	Endpoint string
	// Dial opens the transport. Defaults to walletrpc.Dial with RPC.
	Dial DialFunc
	// RPC is passed to walletrpc.Dial when Dial is nil.
	RPC *walletrpc.Options
	// Pairing receives the WalletConnect pairing offer.
	Pairing PairingFunc
}

// NewRPCConnector creates a connector for kind.
func NewRPCConnector(kind Kind, opts ConnectorOptions) *RPCConnector {
	dial := opts.Dial
	if dial == nil {
		rpcOpts := opts.RPC
		dial = func(ctx context.Context, endpoint string) (Wallet, error) {
			client, err := walletrpc.Dial(ctx, endpoint, rpcOpts)
			if err != nil {
				return nil, err
			}
			return client, nil
		}
	}

	return &RPCConnector{
		kind:     kind,
		endpoint: opts.Endpoint,
		dial:     dial,
		pairing:  opts.Pairing,
	}
}

// Kind returns the provider kind.
func (c *RPCConnector) Kind() Kind {
	return c.kind
}

// Endpoint returns the configured endpoint.
func (c *RPCConnector) Endpoint() string {
	return c.endpoint
}

// Activate dials the wallet, asks for accounts and reads the current chain.
// A previous activation of this connector is closed first.
func (c *RPCConnector) Activate(ctx context.Context) (*Activation, error) {
	if c.endpoint == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoEndpoint, c.kind)
	}

	_ = c.Deactivate()

	target, err := c.dialTarget()
	if err != nil {
		return nil, err
	}

	w, err := c.dial(ctx, target)
	if err != nil {
		return nil, err
	}

	accounts, err := w.RequestAccounts(ctx)
	if err != nil {
		w.Close()
		return nil, err
	}
	if len(accounts) == 0 {
		w.Close()
		return nil, ErrNoAccounts
	}

	chainID, err := w.ChainID(ctx)
	if err != nil {
		w.Close()
		return nil, err
	}

	c.mu.Lock()
	c.active = w
	c.mu.Unlock()

	return &Activation{Handle: w, Account: accounts[0], ChainID: chainID}, nil
}

func (c *RPCConnector) dialTarget() (string, error) {
	if c.kind != WalletConnect {
		return c.endpoint, nil
	}

	p, err := NewPairing(c.endpoint)
	if err != nil {
		return "", err
	}
	if c.pairing != nil {
		if err := c.pairing(p); err != nil {
			return "", fmt.Errorf("pairing: %w", err)
		}
	}
	return p.DialURL()
}

// Deactivate closes the live handle, if any. Safe to call repeatedly.
func (c *RPCConnector) Deactivate() error {
	c.mu.Lock()
	h := c.active
	c.active = nil
	c.mu.Unlock()

	if h != nil {
		h.Close()
	}
	return nil
}
