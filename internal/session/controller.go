package session

import (
	"context"
	"sync"

	"github.com/mrz1836/tether/internal/metrics"
	"github.com/mrz1836/tether/internal/provider"
	tethererr "github.com/mrz1836/tether/pkg/errors"
)

// Resolver finds the connector for a provider kind.
type Resolver interface {
	Resolve(kind provider.Kind) (provider.Connector, error)
}

// ControllerConfig holds the controller's collaborators.
type ControllerConfig struct {
	Registry Resolver
	Store    Store
	Logger   Logger
	Metrics  *metrics.Metrics
}

// Controller owns the single wallet session.
type Controller struct {
	registry Resolver
	store    Store
	logger   Logger
	metrics  *metrics.Metrics

	mu         sync.Mutex
	session    Session
	handle     provider.Handle
	connector  provider.Connector
	connecting bool
	listeners  []Listener
}

// NewController creates a controller with an inactive session.
func NewController(cfg ControllerConfig) *Controller {
	m := cfg.Metrics
	if m == nil {
		m = metrics.Global
	}
	return &Controller{
		registry: cfg.Registry,
		store:    cfg.Store,
		logger:   cfg.Logger,
		metrics:  m,
	}
}

// Subscribe registers l for session events.
func (c *Controller) Subscribe(l Listener) {
	c.mu.Lock()
	c.listeners = append(c.listeners, l)
	c.mu.Unlock()
}

// Snapshot returns the current session.
func (c *Controller) Snapshot() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// Handle returns the live wallet handle and the session it belongs to.
// It fails with ErrNoActiveSession while inactive.
func (c *Controller) Handle() (provider.Handle, Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.session.Active || c.handle == nil {
		return nil, Session{}, tethererr.ErrNoActiveSession
	}
	return c.handle, c.session, nil
}

// Restore reconnects to the persisted provider, if any. It never fails: a
// missing, stale or unreachable provider just leaves the session inactive.
func (c *Controller) Restore(ctx context.Context) {
	if c.store == nil {
		return
	}

	kind, ok, err := c.store.Load()
	if err != nil {
		c.debug("session restore: reading slot: %v", err)
		return
	}
	if !ok {
		c.debug("session restore: no persisted provider")
		return
	}

	if err := c.Connect(ctx, kind); err != nil {
		c.debug("session restore: reconnecting %s: %v", kind, err)
		return
	}
	c.debug("session restore: reconnected %s", kind)
}

// Connect activates kind. An active session is torn down first. On success
// the kind is persisted; a persistence failure is logged but does not fail
// the connect.
func (c *Controller) Connect(ctx context.Context, kind provider.Kind) error {
	c.mu.Lock()
	if c.connecting {
		c.mu.Unlock()
		return tethererr.ErrBusy
	}

	connector, err := c.registry.Resolve(kind)
	if err != nil {
		c.mu.Unlock()
		return err
	}

	c.connecting = true
	prev, prevConnector, hadSession := c.detachLocked()
	c.mu.Unlock()

	if hadSession {
		c.teardown(prev, prevConnector)
	}

	act, err := connector.Activate(ctx)
	c.metrics.RecordConnect(err)

	c.mu.Lock()
	c.connecting = false
	if err != nil {
		c.mu.Unlock()
		c.logError("activating %s: %v", kind, err)
		return tethererr.WithDetails(
			tethererr.WithCause(tethererr.ErrActivationFailed, err),
			map[string]string{"provider": string(kind)},
		)
	}

	c.session = Session{
		Active:  true,
		Kind:    kind,
		Account: act.Account,
		ChainID: act.ChainID,
	}
	c.handle = act.Handle
	c.connector = connector
	snap := c.session
	c.mu.Unlock()

	if c.store != nil {
		if err := c.store.Save(kind); err != nil {
			c.logError("persisting provider %s: %v", kind, err)
		}
	}

	c.debug("connected %s account=%s chain=%d", kind, snap.Account, snap.ChainID)
	c.emit(Event{Type: EventConnected, Session: snap})
	return nil
}

// Disconnect clears the persisted slot and tears the session down. Calling it
// while inactive clears the slot and notifies listeners again; the resulting
// state is the same.
func (c *Controller) Disconnect() error {
	c.mu.Lock()
	if c.connecting {
		c.mu.Unlock()
		return tethererr.ErrBusy
	}
	prev, prevConnector, _ := c.detachLocked()
	c.mu.Unlock()

	var clearErr error
	if c.store != nil {
		if clearErr = c.store.Clear(); clearErr != nil {
			c.logError("clearing persisted provider: %v", clearErr)
		}
	}

	c.teardown(prev, prevConnector)
	return clearErr
}

// Close releases the live handle without touching the persisted slot, so the
// next process can Restore the same provider. No event is emitted.
func (c *Controller) Close() {
	c.mu.Lock()
	prev, connector, _ := c.detachLocked()
	c.mu.Unlock()

	if connector == nil {
		return
	}
	if err := connector.Deactivate(); err != nil {
		c.logError("closing %s: %v", prev.Kind, err)
	}
}

// Refresh re-reads the chain id from the wallet.
func (c *Controller) Refresh(ctx context.Context) (Session, error) {
	h, snap, err := c.Handle()
	if err != nil {
		return Session{}, err
	}

	chainID, err := h.ChainID(ctx)
	if err != nil {
		return snap, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// Ignore the result if the session changed while the call was out.
	if c.handle == h && c.session.Active {
		c.session.ChainID = chainID
	}
	return c.session, nil
}

// detachLocked resets the session and returns what was active. c.mu must be held.
func (c *Controller) detachLocked() (Session, provider.Connector, bool) {
	prev := c.session
	prevConnector := c.connector
	c.session = Session{}
	c.handle = nil
	c.connector = nil
	return prev, prevConnector, prev.Active
}

// teardown notifies listeners and deactivates the previous connector.
func (c *Controller) teardown(prev Session, connector provider.Connector) {
	c.emit(Event{Type: EventDisconnected, Session: prev})

	if connector == nil {
		return
	}
	if err := connector.Deactivate(); err != nil {
		c.logError("deactivating %s: %v", prev.Kind, err)
	}
	c.debug("disconnected %s", prev.Kind)
}

func (c *Controller) emit(ev Event) {
	c.mu.Lock()
	listeners := append([]Listener(nil), c.listeners...)
	c.mu.Unlock()

	for _, l := range listeners {
		l(ev)
	}
}

func (c *Controller) debug(format string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(format, args...)
	}
}

func (c *Controller) logError(format string, args ...any) {
	if c.logger != nil {
		c.logger.Error(format, args...)
	}
}
