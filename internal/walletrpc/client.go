// Package walletrpc is the client side of the wallet peer's JSON-RPC surface:
// account and chain discovery, chain switching, and personal message signing.
package walletrpc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/mrz1836/tether/internal/metrics"
	"github.com/mrz1836/tether/internal/networks"
)

// Wallet RPC method names.
const (
	MethodRequestAccounts = "eth_requestAccounts"
	MethodChainID         = "eth_chainId"
	MethodSwitchChain     = "wallet_switchEthereumChain"
	MethodAddChain        = "wallet_addEthereumChain"
	MethodPersonalSign    = "personal_sign"
	MethodEcRecover       = "personal_ecRecover"
)

// DefaultTimeout bounds a single wallet request. Wallets wait on a human, so it is generous.
const DefaultTimeout = 2 * time.Minute

// Caller is the transport used by Client. *rpc.Client satisfies it.
type Caller interface {
	CallContext(ctx context.Context, result any, method string, args ...any) error
	Close()
}

// Options contains optional configuration for the client.
type Options struct {
	// Limiter throttles outgoing requests per endpoint. Nil disables throttling.
	Limiter *RateLimiter
	// Metrics receives per-call measurements. Defaults to metrics.Global.
	Metrics *metrics.Metrics
	// Timeout bounds each call. Zero means DefaultTimeout; negative disables it.
	Timeout time.Duration
	// Retry makes Dial retry a refused or dropped connection. Nil dials once.
	Retry *RetryConfig
}

// Client talks to one wallet peer.
type Client struct {
	caller   Caller
	endpoint string
	limiter  *RateLimiter
	metrics  *metrics.Metrics
	timeout  time.Duration
}

// NewClient wraps an established transport.
func NewClient(caller Caller, endpoint string, opts *Options) *Client {
	c := &Client{
		caller:   caller,
		endpoint: endpoint,
		metrics:  metrics.Global,
		timeout:  DefaultTimeout,
	}

	if opts != nil {
		c.limiter = opts.Limiter
		if opts.Metrics != nil {
			c.metrics = opts.Metrics
		}
		if opts.Timeout != 0 {
			c.timeout = opts.Timeout
		}
	}

	return c
}

// Dial connects to a wallet endpoint. http(s) and ws(s) URLs are supported.
func Dial(ctx context.Context, endpoint string, opts *Options) (*Client, error) {
	cfg := RetryConfig{MaxAttempts: 1}
	if opts != nil && opts.Retry != nil {
		cfg = *opts.Retry
	}

	rc, err := retry(ctx, cfg, func() (*rpc.Client, error) {
		return rpc.DialContext(ctx, endpoint)
	})
	if err != nil {
		return nil, fmt.Errorf("dialing wallet endpoint: %w", err)
	}
	return NewClient(rc, endpoint, opts), nil
}

// Endpoint returns the URL the client was created for.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// call performs one throttled, measured request.
func (c *Client) call(ctx context.Context, result any, method string, args ...any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, c.endpoint); err != nil {
			return fmt.Errorf("%s: %w", method, err)
		}
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	err := c.caller.CallContext(ctx, result, method, args...)
	c.metrics.RecordRPCCall(method, time.Since(start), err)

	if err != nil {
		return toPeerError(method, err)
	}
	return nil
}

// RequestAccounts asks the wallet to expose its accounts.
func (c *Client) RequestAccounts(ctx context.Context) ([]string, error) {
	var accounts []string
	if err := c.call(ctx, &accounts, MethodRequestAccounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

// ChainID returns the chain the wallet is currently on.
func (c *Client) ChainID(ctx context.Context) (uint64, error) {
	var id hexutil.Uint64
	if err := c.call(ctx, &id, MethodChainID); err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// switchChainParams is the single parameter of wallet_switchEthereumChain.
type switchChainParams struct {
	ChainID string `json:"chainId"`
}

// SwitchChain asks the wallet to move to chainID. A wallet that does not know the
// chain answers with CodeUnrecognizedChain; see IsUnrecognizedChain.
func (c *Client) SwitchChain(ctx context.Context, chainID uint64) error {
	return c.call(ctx, nil, MethodSwitchChain, switchChainParams{ChainID: networks.ToHex(chainID)})
}

// AddChain asks the wallet to register a chain.
func (c *Client) AddChain(ctx context.Context, desc networks.Descriptor) error {
	return c.call(ctx, nil, MethodAddChain, desc)
}

// PersonalSign requests an EIP-191 signature over message from account.
func (c *Client) PersonalSign(ctx context.Context, message, account string) (string, error) {
	var sig string
	if err := c.call(ctx, &sig, MethodPersonalSign, EncodeMessage(message), account); err != nil {
		return "", err
	}
	return sig, nil
}

// EcRecover asks the wallet which address produced signature over message.
func (c *Client) EcRecover(ctx context.Context, message, signature string) (string, error) {
	var addr string
	if err := c.call(ctx, &addr, MethodEcRecover, EncodeMessage(message), signature); err != nil {
		return "", err
	}
	return addr, nil
}

// Close releases the transport.
func (c *Client) Close() {
	c.caller.Close()
}

// EncodeMessage hex-encodes message text for personal_sign and personal_ecRecover,
// so wallets never have to guess whether a 0x-looking string is text or bytes.
func EncodeMessage(message string) string {
	return hexutil.Encode([]byte(message))
}

// toPeerError converts a JSON-RPC error reply into a *PeerError. Transport
// failures are wrapped unchanged.
func toPeerError(method string, err error) error {
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		return &PeerError{
			Method:  method,
			Code:    rpcErr.ErrorCode(),
			Message: rpcErr.Error(),
		}
	}
	return fmt.Errorf("%s: %w", method, err)
}
