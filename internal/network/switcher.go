// Package network negotiates chain switches with the connected wallet, falling
// back to registering the chain when the wallet does not know it.
package network

import (
	"context"
	"strconv"
	"sync"

	"github.com/mrz1836/tether/internal/networks"
	"github.com/mrz1836/tether/internal/provider"
	"github.com/mrz1836/tether/internal/session"
	"github.com/mrz1836/tether/internal/walletrpc"
	tethererr "github.com/mrz1836/tether/pkg/errors"
)

// Outcome is the successful result of a switch attempt.
type Outcome int

// Switch outcomes.
const (
	// Switched means the wallet moved to the target chain.
	Switched Outcome = iota + 1
	// ChainAdded means the wallet did not know the chain and accepted its
	// registration. The switch itself is not retried.
	ChainAdded
)

func (o Outcome) String() string {
	switch o {
	case Switched:
		return "switched"
	case ChainAdded:
		return "chain-added"
	}
	return "unknown"
}

// switchResult classifies the reply to wallet_switchEthereumChain.
type switchResult int

const (
	switchSucceeded switchResult = iota
	switchUnknownChain
	switchFailed
)

func classify(err error) switchResult {
	switch {
	case err == nil:
		return switchSucceeded
	case walletrpc.IsUnrecognizedChain(err):
		return switchUnknownChain
	default:
		return switchFailed
	}
}

// Session is what the switcher needs from the session controller.
type Session interface {
	Handle() (provider.Handle, session.Session, error)
	Refresh(ctx context.Context) (session.Session, error)
}

// Logger is the interface for switcher logging.
type Logger interface {
	Debug(format string, args ...any)
	Error(format string, args ...any)
}

// Switcher holds the selected target network and performs switches.
type Switcher struct {
	session  Session
	networks *networks.Registry
	logger   Logger

	mu       sync.Mutex
	selected uint64
	hasSel   bool
	busy     bool
}

// NewSwitcher creates a switcher over the given session and network registry.
func NewSwitcher(sess Session, registry *networks.Registry, logger Logger) *Switcher {
	return &Switcher{session: sess, networks: registry, logger: logger}
}

// Select chooses the target network.
func (s *Switcher) Select(chainID uint64) error {
	if _, err := s.networks.Lookup(chainID); err != nil {
		return err
	}

	s.mu.Lock()
	s.selected = chainID
	s.hasSel = true
	s.mu.Unlock()
	return nil
}

// Selected returns the target network, if one is selected.
func (s *Switcher) Selected() (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected, s.hasSel
}

// Reset clears the selection.
func (s *Switcher) Reset() {
	s.mu.Lock()
	s.selected = 0
	s.hasSel = false
	s.mu.Unlock()
}

// SwitchToChain selects chainID and switches to it.
func (s *Switcher) SwitchToChain(ctx context.Context, chainID uint64) (Outcome, error) {
	if err := s.Select(chainID); err != nil {
		return 0, err
	}
	return s.SwitchTo(ctx)
}

// SwitchTo asks the wallet to move to the selected network. If the wallet
// reports the chain as unrecognized, exactly one registration request is sent
// and its result is final.
func (s *Switcher) SwitchTo(ctx context.Context) (Outcome, error) {
	h, _, err := s.session.Handle()
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	if !s.hasSel {
		s.mu.Unlock()
		return 0, tethererr.ErrNoNetworkSelected
	}
	if s.busy {
		s.mu.Unlock()
		return 0, tethererr.ErrBusy
	}
	target := s.selected
	s.busy = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.busy = false
		s.mu.Unlock()
	}()

	net, err := s.networks.Lookup(target)
	if err != nil {
		return 0, err
	}

	switchErr := h.SwitchChain(ctx, target)
	switch classify(switchErr) {
	case switchSucceeded:
		s.debug("switched to %s (%d)", net.Name, target)
		if _, err := s.session.Refresh(ctx); err != nil {
			s.logError("refreshing chain after switch: %v", err)
		}
		return Switched, nil

	case switchUnknownChain:
		s.debug("wallet does not know %s (%d), registering it", net.Name, target)
		if err := h.AddChain(ctx, net.Descriptor); err != nil {
			s.logError("adding chain %d: %v", target, err)
			return 0, switchError(tethererr.StageAddRejected, target, err)
		}
		return ChainAdded, nil

	default:
		s.logError("switching to chain %d: %v", target, switchErr)
		return 0, switchError(tethererr.StageSwitchRejected, target, switchErr)
	}
}

func switchError(stage string, chainID uint64, cause error) error {
	return tethererr.WithDetails(
		tethererr.WithCause(tethererr.ErrNetworkSwitchFailed, cause),
		map[string]string{
			"stage":    stage,
			"chain_id": strconv.FormatUint(chainID, 10),
		},
	)
}

func (s *Switcher) debug(format string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(format, args...)
	}
}

func (s *Switcher) logError(format string, args ...any) {
	if s.logger != nil {
		s.logger.Error(format, args...)
	}
}
