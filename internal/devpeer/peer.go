// Package devpeer is a local development wallet. It answers the JSON-RPC calls
// tether makes (account discovery, chain switching, personal_sign and
// personal_ecRecover) with a key derived from a development mnemonic, so the
// client can be exercised end to end without a browser wallet.
package devpeer

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/mrz1836/tether/internal/networks"
)

// DefaultChainID is the chain a new peer starts on.
const DefaultChainID = networks.Goerli

// Config configures a Peer.
type Config struct {
	// Mnemonic seeds the signing key. Ignored when PrivateKey is set.
	Mnemonic string
	// PrivateKey is a hex private key.
	PrivateKey string
	// ChainID is the starting chain. Defaults to DefaultChainID.
	ChainID uint64
	// KnownChains are chains the peer can switch to without registration.
	// The starting chain is always known.
	KnownChains []uint64
	// RejectAdd makes wallet_addEthereumChain fail as if the user declined.
	RejectAdd bool
	// RejectSign makes personal_sign fail as if the user declined.
	RejectSign bool
	// Logger receives request logs. Optional.
	Logger Logger
}

// Logger is the interface for peer logging.
type Logger interface {
	Debug(format string, args ...any)
	Error(format string, args ...any)
}

// Peer is an in-memory wallet with a JSON-RPC front end.
type Peer struct {
	key     *ecdsa.PrivateKey
	address common.Address
	cfg     Config
	server  *rpc.Server

	mu      sync.Mutex
	chainID uint64
	known   map[uint64]bool
	added   []networks.Descriptor
}

// New creates a peer and registers its RPC namespaces.
func New(cfg Config) (*Peer, error) {
	var (
		key *ecdsa.PrivateKey
		err error
	)
	switch {
	case cfg.PrivateKey != "":
		key, err = KeyFromHex(cfg.PrivateKey)
	default:
		mnemonic := cfg.Mnemonic
		if mnemonic == "" {
			mnemonic = DefaultMnemonic
		}
		key, err = KeyFromMnemonic(mnemonic)
	}
	if err != nil {
		return nil, err
	}

	if cfg.ChainID == 0 {
		cfg.ChainID = DefaultChainID
	}

	p := &Peer{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
		cfg:     cfg,
		server:  rpc.NewServer(),
		chainID: cfg.ChainID,
		known:   map[uint64]bool{cfg.ChainID: true},
	}
	for _, id := range cfg.KnownChains {
		p.known[id] = true
	}

	services := map[string]any{
		"eth":      &ethAPI{p},
		"wallet":   &walletAPI{p},
		"personal": &personalAPI{p},
	}
	for ns, svc := range services {
		if err := p.server.RegisterName(ns, svc); err != nil {
			return nil, fmt.Errorf("registering %s namespace: %w", ns, err)
		}
	}

	return p, nil
}

// Address returns the account the peer signs with.
func (p *Peer) Address() common.Address {
	return p.address
}

// ChainID returns the chain the peer is currently on.
func (p *Peer) ChainID() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.chainID
}

// KnownChains returns the chains the peer can switch to, in ascending order.
func (p *Peer) KnownChains() []uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]uint64, 0, len(p.known))
	for id := range p.known {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Added returns the descriptors registered through wallet_addEthereumChain.
func (p *Peer) Added() []networks.Descriptor {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]networks.Descriptor(nil), p.added...)
}

// DialInProc returns a client connected to the peer in-process.
func (p *Peer) DialInProc() *rpc.Client {
	return rpc.DialInProc(p.server)
}

// Handler serves JSON-RPC over HTTP POST and over WebSocket on the same path.
func (p *Peer) Handler() http.Handler {
	ws := p.server.WebsocketHandler([]string{"*"})
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
			ws.ServeHTTP(w, r)
			return
		}
		p.server.ServeHTTP(w, r)
	})
}

// Serve answers requests on ln until ctx is canceled.
func (p *Peer) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           p.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		<-errCh
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// Close stops the RPC server.
func (p *Peer) Close() {
	p.server.Stop()
}

func (p *Peer) debug(format string, args ...any) {
	if p.cfg.Logger != nil {
		p.cfg.Logger.Debug(format, args...)
	}
}
