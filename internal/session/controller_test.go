package session

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/tether/internal/metrics"
	"github.com/mrz1836/tether/internal/provider"
	"github.com/mrz1836/tether/internal/provider/providertest"
	tethererr "github.com/mrz1836/tether/pkg/errors"
)

var (
	errUnreachable = errors.New("wallet unreachable")
	errDiskFull    = errors.New("disk full")
)

// recordingLogger captures log lines.
type recordingLogger struct {
	mu     sync.Mutex
	debugs []string
	errors []string
}

func (l *recordingLogger) Debug(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.debugs = append(l.debugs, fmt.Sprintf(format, args...))
}

func (l *recordingLogger) Error(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, fmt.Sprintf(format, args...))
}

// brokenStore fails every write.
type brokenStore struct{ kind provider.Kind }

func (s brokenStore) Load() (provider.Kind, bool, error) { return s.kind, s.kind != "", nil }
func (brokenStore) Save(provider.Kind) error              { return errDiskFull }
func (brokenStore) Clear() error                          { return errDiskFull }

type fixture struct {
	ctrl     *Controller
	store    *FileStore
	logger   *recordingLogger
	metrics  *metrics.Metrics
	wallets  map[provider.Kind]*providertest.Wallet
	conns    map[provider.Kind]*providertest.Connector
	eventsMu sync.Mutex
	events   []Event
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		store:   NewFileStore(filepath.Join(t.TempDir(), "session.json")),
		logger:  &recordingLogger{},
		metrics: &metrics.Metrics{},
		wallets: map[provider.Kind]*providertest.Wallet{},
		conns:   map[provider.Kind]*providertest.Connector{},
	}

	connectors := make([]provider.Connector, 0, 3)
	for i, k := range provider.Kinds() {
		w := providertest.NewWallet(uint64(i + 3))
		c := providertest.NewConnector(k, w)
		f.wallets[k] = w
		f.conns[k] = c
		connectors = append(connectors, c)
	}

	f.ctrl = NewController(ControllerConfig{
		Registry: provider.NewRegistry(connectors...),
		Store:    f.store,
		Logger:   f.logger,
		Metrics:  f.metrics,
	})
	f.ctrl.Subscribe(func(ev Event) {
		f.eventsMu.Lock()
		f.events = append(f.events, ev)
		f.eventsMu.Unlock()
	})
	return f
}

func (f *fixture) eventTypes() []EventType {
	f.eventsMu.Lock()
	defer f.eventsMu.Unlock()
	out := make([]EventType, 0, len(f.events))
	for _, ev := range f.events {
		out = append(out, ev.Type)
	}
	return out
}

func TestController_ConnectSuccess(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	require.NoError(t, f.ctrl.Connect(context.Background(), provider.Injected))

	s := f.ctrl.Snapshot()
	assert.True(t, s.Active)
	assert.Equal(t, provider.Injected, s.Kind)
	assert.Equal(t, providertest.DefaultAccount, s.Account)
	assert.Equal(t, uint64(5), s.ChainID)

	h, hs, err := f.ctrl.Handle()
	require.NoError(t, err)
	assert.Same(t, f.wallets[provider.Injected], h)
	assert.Equal(t, s, hs)

	kind, ok, err := f.store.Load()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, provider.Injected, kind)

	assert.Equal(t, []EventType{EventConnected}, f.eventTypes())
	assert.Equal(t, int64(1), f.metrics.Snapshot().ConnectsTotal)
}

func TestController_ConnectFailure(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.conns[provider.CoinbaseWallet].SetErr(errUnreachable)

	err := f.ctrl.Connect(context.Background(), provider.CoinbaseWallet)
	require.ErrorIs(t, err, tethererr.ErrActivationFailed)
	require.ErrorIs(t, err, errUnreachable)
	assert.Equal(t, "coinbaseWallet", tethererr.Detail(err, "provider"))

	assert.False(t, f.ctrl.Snapshot().Active)
	_, _, err = f.ctrl.Handle()
	require.ErrorIs(t, err, tethererr.ErrNoActiveSession)

	_, ok, err := f.store.Load()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, f.eventTypes())
	assert.Equal(t, int64(1), f.metrics.Snapshot().ConnectFailures)
}

func TestController_ConnectUnknownKind(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	err := f.ctrl.Connect(context.Background(), provider.Kind("metamask"))
	require.ErrorIs(t, err, tethererr.ErrUnknownProviderKind)
	assert.False(t, f.ctrl.Snapshot().Active)
}

func TestController_ConnectReplacesSession(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.ctrl.Connect(ctx, provider.Injected))
	require.NoError(t, f.ctrl.Connect(ctx, provider.WalletConnect))

	assert.Equal(t, 1, f.conns[provider.Injected].Deactivations())
	assert.Equal(t, []EventType{EventConnected, EventDisconnected, EventConnected}, f.eventTypes())

	s := f.ctrl.Snapshot()
	assert.Equal(t, provider.WalletConnect, s.Kind)
	assert.Equal(t, uint64(4), s.ChainID)

	kind, _, err := f.store.Load()
	require.NoError(t, err)
	assert.Equal(t, provider.WalletConnect, kind)
}

func TestController_FailedReconnectLeavesInactive(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.ctrl.Connect(ctx, provider.Injected))
	f.conns[provider.CoinbaseWallet].SetErr(errUnreachable)

	require.Error(t, f.ctrl.Connect(ctx, provider.CoinbaseWallet))
	assert.False(t, f.ctrl.Snapshot().Active)
	assert.Equal(t, 1, f.conns[provider.Injected].Deactivations())
}

func TestController_PersistFailureIsLogged(t *testing.T) {
	t.Parallel()

	w := providertest.NewWallet(5)
	logger := &recordingLogger{}
	ctrl := NewController(ControllerConfig{
		Registry: provider.NewRegistry(providertest.NewConnector(provider.Injected, w)),
		Store:    brokenStore{},
		Logger:   logger,
		Metrics:  &metrics.Metrics{},
	})

	require.NoError(t, ctrl.Connect(context.Background(), provider.Injected))
	assert.True(t, ctrl.Snapshot().Active)
	require.Len(t, logger.errors, 1)
	assert.Contains(t, logger.errors[0], "disk full")
}

func TestController_Disconnect(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.ctrl.Connect(ctx, provider.Injected))
	require.NoError(t, f.ctrl.Disconnect())

	s := f.ctrl.Snapshot()
	assert.Equal(t, Session{}, s)
	_, ok, err := f.store.Load()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, f.conns[provider.Injected].Deactivations())

	// A second disconnect changes nothing.
	require.NoError(t, f.ctrl.Disconnect())
	assert.Equal(t, s, f.ctrl.Snapshot())
	_, ok, err = f.store.Load()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, f.conns[provider.Injected].Deactivations())
	assert.Equal(t, []EventType{EventConnected, EventDisconnected, EventDisconnected}, f.eventTypes())
}

func TestController_DisconnectStoreError(t *testing.T) {
	t.Parallel()

	w := providertest.NewWallet(5)
	ctrl := NewController(ControllerConfig{
		Registry: provider.NewRegistry(providertest.NewConnector(provider.Injected, w)),
		Store:    brokenStore{},
		Metrics:  &metrics.Metrics{},
	})

	require.NoError(t, ctrl.Connect(context.Background(), provider.Injected))
	require.ErrorIs(t, ctrl.Disconnect(), errDiskFull)
	assert.False(t, ctrl.Snapshot().Active)
}

func TestController_Restore(t *testing.T) {
	t.Parallel()

	t.Run("persisted kind reconnects", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		require.NoError(t, f.store.Save(provider.CoinbaseWallet))

		f.ctrl.Restore(context.Background())
		s := f.ctrl.Snapshot()
		assert.True(t, s.Active)
		assert.Equal(t, provider.CoinbaseWallet, s.Kind)
	})

	t.Run("empty slot", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		f.ctrl.Restore(context.Background())
		assert.False(t, f.ctrl.Snapshot().Active)
		for _, c := range f.conns {
			assert.Zero(t, c.Activations())
		}
	})

	t.Run("activation failure is silent", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		require.NoError(t, f.store.Save(provider.WalletConnect))
		f.conns[provider.WalletConnect].SetErr(errUnreachable)

		f.ctrl.Restore(context.Background())
		assert.False(t, f.ctrl.Snapshot().Active)
		assert.NotEmpty(t, f.logger.debugs)
	})
}

func TestController_Refresh(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.ctrl.Refresh(ctx)
	require.ErrorIs(t, err, tethererr.ErrNoActiveSession)

	require.NoError(t, f.ctrl.Connect(ctx, provider.Injected))
	w := f.wallets[provider.Injected]
	w.Known[42220] = true
	require.NoError(t, w.SwitchChain(ctx, 42220))

	s, err := f.ctrl.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(42220), s.ChainID)
	assert.Equal(t, uint64(42220), f.ctrl.Snapshot().ChainID)
}

func TestController_ConnectWhileConnectingIsBusy(t *testing.T) {
	t.Parallel()

	gate := make(chan struct{})
	entered := make(chan struct{})
	slow := &gatedConnector{kind: provider.Injected, gate: gate, entered: entered, wallet: providertest.NewWallet(5)}
	ctrl := NewController(ControllerConfig{
		Registry: provider.NewRegistry(slow),
		Metrics:  &metrics.Metrics{},
	})

	done := make(chan error, 1)
	go func() { done <- ctrl.Connect(context.Background(), provider.Injected) }()
	<-entered

	require.ErrorIs(t, ctrl.Connect(context.Background(), provider.Injected), tethererr.ErrBusy)
	require.ErrorIs(t, ctrl.Disconnect(), tethererr.ErrBusy)

	close(gate)
	require.NoError(t, <-done)
	assert.True(t, ctrl.Snapshot().Active)
}

// gatedConnector blocks Activate until gate is closed.
type gatedConnector struct {
	kind    provider.Kind
	gate    chan struct{}
	entered chan struct{}
	wallet  *providertest.Wallet
}

func (g *gatedConnector) Kind() provider.Kind { return g.kind }

func (g *gatedConnector) Activate(context.Context) (*provider.Activation, error) {
	close(g.entered)
	<-g.gate
	return &provider.Activation{Handle: g.wallet, Account: providertest.DefaultAccount, ChainID: 5}, nil
}

func (g *gatedConnector) Deactivate() error { return nil }

func TestController_CloseKeepsSlot(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.ctrl.Connect(ctx, provider.WalletConnect))
	f.ctrl.Close()

	assert.False(t, f.ctrl.Snapshot().Active)
	assert.Equal(t, 1, f.conns[provider.WalletConnect].Deactivations())
	assert.Equal(t, []EventType{EventConnected}, f.eventTypes())

	kind, ok, err := f.store.Load()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, provider.WalletConnect, kind)

	// closing twice is a no-op
	f.ctrl.Close()
	assert.Equal(t, 1, f.conns[provider.WalletConnect].Deactivations())
}
