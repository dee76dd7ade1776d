package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"

	"github.com/mrz1836/tether/internal/fileutil"
	"github.com/mrz1836/tether/internal/provider"
)

// Store persists the last successfully activated provider kind.
type Store interface {
	// Load returns the stored kind. ok is false when the slot is empty or holds
	// something that is not a valid kind.
	Load() (kind provider.Kind, ok bool, err error)
	Save(kind provider.Kind) error
	Clear() error
}

// Store backends.
const (
	BackendFile    = "file"
	BackendKeyring = "keyring"
)

const slotFilePermissions = 0o600

// slotFile is the on-disk shape of the slot.
type slotFile struct {
	Provider string `json:"provider"`
}

// FileStore keeps the slot in a small JSON file.
type FileStore struct {
	path string
}

// NewFileStore creates a store backed by path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the slot file path.
func (s *FileStore) Path() string {
	return s.path
}

// Load implements Store. A corrupt file reads as an empty slot.
func (s *FileStore) Load() (provider.Kind, bool, error) {
	data, ok, err := fileutil.ReadOptional(s.path)
	if err != nil || !ok {
		return "", false, err
	}

	var sf slotFile
	if jsonErr := json.Unmarshal(data, &sf); jsonErr != nil {
		return "", false, nil //nolint:nilerr // corrupt slot is treated as absent
	}
	return validKind(sf.Provider)
}

// Save implements Store.
func (s *FileStore) Save(kind provider.Kind) error {
	data, err := json.Marshal(slotFile{Provider: string(kind)})
	if err != nil {
		return fmt.Errorf("marshaling session slot: %w", err)
	}
	if err := fileutil.WriteAtomic(s.path, data, slotFilePermissions); err != nil {
		return fmt.Errorf("writing session slot: %w", err)
	}
	return nil
}

// Clear implements Store.
func (s *FileStore) Clear() error {
	return fileutil.RemoveIfExists(s.path)
}

// KeyringStore keeps the slot in the OS keychain.
type KeyringStore struct {
	keyring Keyring
}

// NewKeyringStore creates a store backed by kr. A nil kr uses the OS keychain.
func NewKeyringStore(kr Keyring) *KeyringStore {
	if kr == nil {
		kr = NewOSKeyring()
	}
	return &KeyringStore{keyring: kr}
}

// Load implements Store.
func (s *KeyringStore) Load() (provider.Kind, bool, error) {
	val, err := s.keyring.Get(ServiceName, SlotKey)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading session slot from keyring: %w", err)
	}
	return validKind(val)
}

// Save implements Store.
func (s *KeyringStore) Save(kind provider.Kind) error {
	if err := s.keyring.Set(ServiceName, SlotKey, string(kind)); err != nil {
		return fmt.Errorf("writing session slot to keyring: %w", err)
	}
	return nil
}

// Clear implements Store.
func (s *KeyringStore) Clear() error {
	err := s.keyring.Delete(ServiceName, SlotKey)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("clearing session slot in keyring: %w", err)
	}
	return nil
}

// NewStore selects a backend. The keyring backend falls back to the file at
// path when the keychain does not respond to a probe; fellBack reports that.
func NewStore(backend, path string, kr Keyring) (store Store, fellBack bool, err error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendFile:
		return NewFileStore(path), false, nil
	case BackendKeyring:
		ks := NewKeyringStore(kr)
		if ProbeKeyring(ks.keyring) {
			return ks, false, nil
		}
		return NewFileStore(path), true, nil
	}
	return nil, false, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
}

// ErrUnknownBackend is returned by NewStore for an unrecognized backend name.
var ErrUnknownBackend = errors.New("unknown session store backend")

func validKind(s string) (provider.Kind, bool, error) {
	k := provider.Kind(s)
	if !k.Valid() {
		return "", false, nil
	}
	return k, true, nil
}
