// Package provider owns the closed set of wallet provider kinds and the connectors
// that turn a kind into a live wallet handle.
package provider

import (
	"strings"

	"github.com/agnivade/levenshtein"

	tethererr "github.com/mrz1836/tether/pkg/errors"
)

// Kind identifies a wallet provider. The set is closed.
type Kind string

// Provider kinds.
const (
	CoinbaseWallet Kind = "coinbaseWallet"
	WalletConnect  Kind = "walletConnect"
	Injected       Kind = "injected"
)

// MaxTypoDistance is the largest edit distance that still earns a suggestion.
const MaxTypoDistance = 3

// Kinds returns every provider kind in display order.
func Kinds() []Kind {
	return []Kind{CoinbaseWallet, WalletConnect, Injected}
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case CoinbaseWallet, WalletConnect, Injected:
		return true
	}
	return false
}

// Label is the human-facing provider name.
func (k Kind) Label() string {
	switch k {
	case CoinbaseWallet:
		return "Coinbase Wallet"
	case WalletConnect:
		return "WalletConnect"
	case Injected:
		return "Injected (browser extension)"
	}
	return string(k)
}

func (k Kind) String() string {
	return string(k)
}

// ParseKind accepts a kind name, case-insensitively. Unknown names fail with
// ErrUnknownProviderKind and, when one is close, a suggestion.
func ParseKind(s string) (Kind, error) {
	in := strings.TrimSpace(s)
	for _, k := range Kinds() {
		if strings.EqualFold(in, string(k)) {
			return k, nil
		}
	}

	err := tethererr.WithDetails(tethererr.ErrUnknownProviderKind, map[string]string{"kind": in})
	if guess := suggestKind(in); guess != "" {
		return "", tethererr.WithSuggestion(err, "Did you mean '"+string(guess)+"'?")
	}
	return "", tethererr.WithSuggestion(err, "Valid kinds: "+kindList())
}

func suggestKind(input string) Kind {
	lower := strings.ToLower(input)
	best := Kind("")
	minDist := MaxTypoDistance + 1

	for _, k := range Kinds() {
		dist := levenshtein.ComputeDistance(lower, strings.ToLower(string(k)))
		if dist < minDist {
			minDist = dist
			best = k
		}
	}
	return best
}

func kindList() string {
	names := make([]string, 0, 3)
	for _, k := range Kinds() {
		names = append(names, string(k))
	}
	return strings.Join(names, ", ")
}
