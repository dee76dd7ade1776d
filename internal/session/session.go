// Package session owns the single wallet session: the persisted "last provider"
// slot, and the controller that activates, restores and tears down the session.
package session

import (
	"github.com/mrz1836/tether/internal/provider"
)

const (
	// ServiceName is the keyring service under which the slot is stored.
	ServiceName = "tether"

	// SlotKey is the key of the persisted provider slot.
	SlotKey = "provider"
)

// Session is a point-in-time view of the wallet session.
// Account and ChainID are only meaningful while Active.
type Session struct {
	Active  bool          `json:"active"`
	Kind    provider.Kind `json:"provider,omitempty"`
	Account string        `json:"account,omitempty"`
	ChainID uint64        `json:"chain_id,omitempty"`
}

// EventType distinguishes session events.
type EventType int

// Session event types.
const (
	EventConnected EventType = iota + 1
	EventDisconnected
)

func (t EventType) String() string {
	switch t {
	case EventConnected:
		return "connected"
	case EventDisconnected:
		return "disconnected"
	}
	return "unknown"
}

// Event is delivered to listeners after the session changes.
type Event struct {
	Type    EventType
	Session Session
}

// Listener receives session events. Listeners run synchronously, outside the
// controller lock, in subscription order.
type Listener func(Event)

// Logger is the interface for session logging.
type Logger interface {
	Debug(format string, args ...any)
	Error(format string, args ...any)
}
