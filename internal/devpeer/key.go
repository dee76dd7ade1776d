package devpeer

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/tyler-smith/go-bip32"
	"github.com/tyler-smith/go-bip39"
)

// DefaultMnemonic is the well-known development mnemonic. Never fund it.
const DefaultMnemonic = "test test test test test test test test test test test junk"

// ErrInvalidMnemonic indicates the mnemonic failed its checksum.
var ErrInvalidMnemonic = errors.New("invalid mnemonic phrase")

// DerivationPath is the BIP-44 path of the account the peer signs with.
const DerivationPath = "m/44'/60'/0'/0/0"

// KeyFromMnemonic derives the first Ethereum account key from a BIP-39 mnemonic.
func KeyFromMnemonic(mnemonic string) (*ecdsa.PrivateKey, error) {
	mnemonic = strings.Join(strings.Fields(mnemonic), " ")
	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, "")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidMnemonic, err)
	}

	key, err := bip32.NewMasterKey(seed)
	if err != nil {
		return nil, fmt.Errorf("deriving master key: %w", err)
	}

	path := []uint32{
		bip32.FirstHardenedChild + 44,
		bip32.FirstHardenedChild + 60,
		bip32.FirstHardenedChild,
		0,
		0,
	}
	for _, idx := range path {
		key, err = key.NewChildKey(idx)
		if err != nil {
			return nil, fmt.Errorf("deriving %s: %w", DerivationPath, err)
		}
	}

	return crypto.ToECDSA(key.Key)
}

// KeyFromHex parses a hex private key, with or without 0x.
func KeyFromHex(s string) (*ecdsa.PrivateKey, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(s), "0x"))
	if err != nil {
		return nil, fmt.Errorf("parsing private key: %w", err)
	}
	return key, nil
}
