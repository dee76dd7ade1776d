// Package providertest provides scripted wallets and connectors for tests.
package providertest

import (
	"context"
	"encoding/hex"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/mrz1836/tether/internal/networks"
	"github.com/mrz1836/tether/internal/provider"
	"github.com/mrz1836/tether/internal/walletrpc"
)

// DefaultAccount is the checksummed account a new Wallet exposes.
const DefaultAccount = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"

// Wallet is an in-memory wallet. Signatures are a reversible encoding of message
// and account, so EcRecover detects any tampering.
type Wallet struct {
	mu sync.Mutex

	Accounts []string
	Chain    uint64
	Known    map[uint64]bool

	AccountsErr error
	ChainErr    error
	SwitchErr   error
	AddErr      error
	SignErr     error
	RecoverErr  error

	// SignGate, when set, blocks PersonalSign until it is closed or receives.
	SignGate chan struct{}

	calls  []string
	added  []networks.Descriptor
	closed int
}

// NewWallet returns a wallet on chain that knows the given chains plus its own.
func NewWallet(chain uint64, known ...uint64) *Wallet {
	w := &Wallet{
		Accounts: []string{DefaultAccount},
		Chain:    chain,
		Known:    map[uint64]bool{chain: true},
	}
	for _, id := range known {
		w.Known[id] = true
	}
	return w
}

func (w *Wallet) record(method string) {
	w.mu.Lock()
	w.calls = append(w.calls, method)
	w.mu.Unlock()
}

// Calls returns the methods invoked so far, in order.
func (w *Wallet) Calls() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.calls...)
}

// CallCount returns how many times method was invoked.
func (w *Wallet) CallCount(method string) int {
	n := 0
	for _, c := range w.Calls() {
		if c == method {
			n++
		}
	}
	return n
}

// Added returns the descriptors passed to AddChain.
func (w *Wallet) Added() []networks.Descriptor {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]networks.Descriptor(nil), w.added...)
}

// Closed returns how many times Close was called.
func (w *Wallet) Closed() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed
}

// CurrentChain returns the chain the wallet is on.
func (w *Wallet) CurrentChain() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.Chain
}

// RequestAccounts implements provider.Wallet.
func (w *Wallet) RequestAccounts(_ context.Context) ([]string, error) {
	w.record(walletrpc.MethodRequestAccounts)
	if w.AccountsErr != nil {
		return nil, w.AccountsErr
	}
	return append([]string(nil), w.Accounts...), nil
}

// ChainID implements provider.Handle.
func (w *Wallet) ChainID(_ context.Context) (uint64, error) {
	w.record(walletrpc.MethodChainID)
	if w.ChainErr != nil {
		return 0, w.ChainErr
	}
	return w.CurrentChain(), nil
}

// SwitchChain implements provider.Handle.
func (w *Wallet) SwitchChain(_ context.Context, chainID uint64) error {
	w.record(walletrpc.MethodSwitchChain)
	if w.SwitchErr != nil {
		return w.SwitchErr
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.Known[chainID] {
		return &walletrpc.PeerError{
			Method:  walletrpc.MethodSwitchChain,
			Code:    walletrpc.CodeUnrecognizedChain,
			Message: "Unrecognized chain ID " + networks.ToHex(chainID),
		}
	}
	w.Chain = chainID
	return nil
}

// AddChain implements provider.Handle.
func (w *Wallet) AddChain(_ context.Context, desc networks.Descriptor) error {
	w.record(walletrpc.MethodAddChain)
	if w.AddErr != nil {
		return w.AddErr
	}

	id, err := hexutil.DecodeUint64(desc.ChainID)
	if err != nil {
		return &walletrpc.PeerError{Method: walletrpc.MethodAddChain, Code: -32602, Message: err.Error()}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.added = append(w.added, desc)
	w.Known[id] = true
	return nil
}

// PersonalSign implements provider.Handle.
func (w *Wallet) PersonalSign(ctx context.Context, message, account string) (string, error) {
	w.record(walletrpc.MethodPersonalSign)
	if w.SignGate != nil {
		select {
		case <-w.SignGate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if w.SignErr != nil {
		return "", w.SignErr
	}
	return Signature(message, account), nil
}

// EcRecover implements provider.Handle. A signature that does not decode to
// message yields the zero address.
func (w *Wallet) EcRecover(_ context.Context, message, signature string) (string, error) {
	w.record(walletrpc.MethodEcRecover)
	if w.RecoverErr != nil {
		return "", w.RecoverErr
	}

	raw, err := hex.DecodeString(strings.TrimPrefix(signature, "0x"))
	if err != nil {
		return "", &walletrpc.PeerError{Method: walletrpc.MethodEcRecover, Code: -32602, Message: "invalid signature"}
	}
	msg, account, ok := strings.Cut(string(raw), "|")
	if !ok || msg != message {
		return "0x0000000000000000000000000000000000000000", nil
	}
	return account, nil
}

// Close implements provider.Handle.
func (w *Wallet) Close() {
	w.mu.Lock()
	w.closed++
	w.mu.Unlock()
}

// Signature is what Wallet.PersonalSign returns for message and account.
func Signature(message, account string) string {
	return "0x" + hex.EncodeToString([]byte(message+"|"+account))
}

// Dial returns a provider.DialFunc that always hands out w and records endpoints.
func Dial(w *Wallet, endpoints *[]string) provider.DialFunc {
	var mu sync.Mutex
	return func(_ context.Context, endpoint string) (provider.Wallet, error) {
		if endpoints != nil {
			mu.Lock()
			*endpoints = append(*endpoints, endpoint)
			mu.Unlock()
		}
		return w, nil
	}
}

// Connector is a scripted provider.Connector.
type Connector struct {
	K      provider.Kind
	Wallet *Wallet
	Err    error

	mu            sync.Mutex
	activations   int
	deactivations int
}

// NewConnector returns a connector for kind backed by w.
func NewConnector(kind provider.Kind, w *Wallet) *Connector {
	return &Connector{K: kind, Wallet: w}
}

// Kind implements provider.Connector.
func (c *Connector) Kind() provider.Kind {
	return c.K
}

// Activate implements provider.Connector.
func (c *Connector) Activate(ctx context.Context) (*provider.Activation, error) {
	c.mu.Lock()
	c.activations++
	err := c.Err
	c.mu.Unlock()

	if err != nil {
		return nil, err
	}

	accounts, err := c.Wallet.RequestAccounts(ctx)
	if err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return nil, provider.ErrNoAccounts
	}
	chainID, err := c.Wallet.ChainID(ctx)
	if err != nil {
		return nil, err
	}
	return &provider.Activation{Handle: c.Wallet, Account: accounts[0], ChainID: chainID}, nil
}

// Deactivate implements provider.Connector.
func (c *Connector) Deactivate() error {
	c.mu.Lock()
	c.deactivations++
	c.mu.Unlock()
	return nil
}

// Activations returns how many times Activate was called.
func (c *Connector) Activations() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activations
}

// Deactivations returns how many times Deactivate was called.
func (c *Connector) Deactivations() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.deactivations
}

// SetErr changes the activation error.
func (c *Connector) SetErr(err error) {
	c.mu.Lock()
	c.Err = err
	c.mu.Unlock()
}
