package provider

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/url"

	"github.com/google/uuid"
)

// Pairing is a WalletConnect v1 pairing offer.
type Pairing struct {
	Topic  string
	Bridge string
	Key    string // 32-byte symmetric key, hex
}

// PairingFunc is called with the pairing offer before the bridge is dialed.
// Returning an error aborts activation.
type PairingFunc func(p Pairing) error

// NewPairing creates a pairing offer for bridge with a fresh topic and key.
func NewPairing(bridge string) (Pairing, error) {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return Pairing{}, fmt.Errorf("generating pairing key: %w", err)
	}

	return Pairing{
		Topic:  uuid.NewString(),
		Bridge: bridge,
		Key:    hex.EncodeToString(key),
	}, nil
}

// URI renders the wc: pairing URI scanned by the mobile wallet.
func (p Pairing) URI() string {
	return fmt.Sprintf("wc:%s@1?bridge=%s&key=%s", p.Topic, url.QueryEscape(p.Bridge), p.Key)
}

// DialURL is the bridge URL the client connects to for this pairing.
func (p Pairing) DialURL() (string, error) {
	u, err := url.Parse(p.Bridge)
	if err != nil {
		return "", fmt.Errorf("parsing bridge url: %w", err)
	}

	q := u.Query()
	q.Set("protocol", "wc")
	q.Set("version", "1")
	q.Set("topic", p.Topic)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
