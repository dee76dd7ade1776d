// Package dapp ties the session, network and signing components into one
// owned client object.
package dapp

import (
	"context"
	"sync"

	"github.com/mrz1836/tether/internal/metrics"
	"github.com/mrz1836/tether/internal/network"
	"github.com/mrz1836/tether/internal/networks"
	"github.com/mrz1836/tether/internal/provider"
	"github.com/mrz1836/tether/internal/session"
	"github.com/mrz1836/tether/internal/signing"
)

// Logger is the interface for client logging.
type Logger interface {
	Debug(format string, args ...any)
	Error(format string, args ...any)
}

// Config holds the client's collaborators.
type Config struct {
	Providers *provider.Registry
	Store     session.Store
	Networks  *networks.Registry
	Logger    Logger
	Metrics   *metrics.Metrics
}

// Client is the wallet dApp core. All state lives here; there are no package
// globals.
type Client struct {
	providers  *provider.Registry
	networks   *networks.Registry
	controller *session.Controller
	switcher   *network.Switcher
	workflow   *signing.Workflow
	logger     Logger

	mu      sync.Mutex
	lastErr string
}

// New creates a client. On connect and disconnect the selected network and
// the signing workflow are reset.
func New(cfg *Config) *Client {
	nets := cfg.Networks
	if nets == nil {
		nets = networks.NewRegistry()
	}

	ctrl := session.NewController(session.ControllerConfig{
		Registry: cfg.Providers,
		Store:    cfg.Store,
		Logger:   cfg.Logger,
		Metrics:  cfg.Metrics,
	})

	c := &Client{
		providers:  cfg.Providers,
		networks:   nets,
		controller: ctrl,
		switcher:   network.NewSwitcher(ctrl, nets, cfg.Logger),
		workflow:   signing.NewWorkflow(ctrl, cfg.Metrics),
		logger:     cfg.Logger,
	}
	ctrl.Subscribe(c.onSessionEvent)
	return c
}

func (c *Client) onSessionEvent(ev session.Event) {
	c.workflow.Reset()
	c.switcher.Reset()
	if c.logger != nil {
		c.logger.Debug("session %s: reset derived state", ev.Type)
	}
}

// record stores err in the last-error slot and returns it unchanged. A nil
// err leaves the slot alone.
func (c *Client) record(err error) error {
	if err == nil {
		return nil
	}
	c.mu.Lock()
	c.lastErr = err.Error()
	c.mu.Unlock()
	return err
}

// LastError returns the display text of the most recent failure.
func (c *Client) LastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// ClearError empties the last-error slot.
func (c *Client) ClearError() {
	c.mu.Lock()
	c.lastErr = ""
	c.mu.Unlock()
}

// Restore reconnects to the remembered provider. Failures are never reported.
func (c *Client) Restore(ctx context.Context) {
	c.controller.Restore(ctx)
}

// Connect activates the provider named kind.
func (c *Client) Connect(ctx context.Context, kind string) error {
	k, err := provider.ParseKind(kind)
	if err != nil {
		return c.record(err)
	}
	return c.record(c.controller.Connect(ctx, k))
}

// Disconnect ends the session and forgets the remembered provider.
func (c *Client) Disconnect() error {
	return c.record(c.controller.Disconnect())
}

// Close releases the wallet connection but keeps the remembered provider.
func (c *Client) Close() {
	c.controller.Close()
}

// SelectNetwork chooses the network SwitchNetwork moves to.
func (c *Client) SelectNetwork(chainID uint64) error {
	return c.record(c.switcher.Select(chainID))
}

// SwitchNetwork asks the wallet to move to the selected network.
func (c *Client) SwitchNetwork(ctx context.Context) (network.Outcome, error) {
	outcome, err := c.switcher.SwitchTo(ctx)
	return outcome, c.record(err)
}

// SwitchToChain selects chainID and switches to it.
func (c *Client) SwitchToChain(ctx context.Context, chainID uint64) (network.Outcome, error) {
	outcome, err := c.switcher.SwitchToChain(ctx, chainID)
	return outcome, c.record(err)
}

// SetMessage replaces the message to sign.
func (c *Client) SetMessage(text string) error {
	return c.record(c.workflow.SetMessage(text))
}

// Sign signs the current message with the connected account.
func (c *Client) Sign(ctx context.Context) (*signing.Record, error) {
	rec, err := c.workflow.Sign(ctx)
	return rec, c.record(err)
}

// Verify recovers the signer of the last signature and compares it to the
// connected account.
func (c *Client) Verify(ctx context.Context) (signing.Verification, error) {
	v, err := c.workflow.Verify(ctx)
	return v, c.record(err)
}

// Adopt loads a message and signature produced elsewhere so Verify can run.
func (c *Client) Adopt(message, signature string) error {
	return c.record(c.workflow.Adopt(message, signature))
}

// Providers returns the connectable provider kinds.
func (c *Client) Providers() []provider.Kind {
	if c.providers == nil {
		return nil
	}
	return c.providers.Kinds()
}

// Networks returns the selectable networks.
func (c *Client) Networks() []networks.Network {
	return c.networks.List()
}

// Session returns the current session.
func (c *Client) Session() session.Session {
	return c.controller.Snapshot()
}
