package session

import (
	"github.com/zalando/go-keyring"
)

// Keyring is the subset of an OS keychain the store needs.
type Keyring interface {
	Set(service, user, password string) error
	Get(service, user string) (string, error)
	Delete(service, user string) error
}

// OSKeyring implements Keyring using the OS keychain.
type OSKeyring struct{}

// NewOSKeyring creates a new OS keyring wrapper.
func NewOSKeyring() *OSKeyring {
	return &OSKeyring{}
}

// Set stores a secret in the OS keyring.
func (k *OSKeyring) Set(service, user, password string) error {
	return keyring.Set(service, user, password)
}

// Get retrieves a secret from the OS keyring.
func (k *OSKeyring) Get(service, user string) (string, error) {
	return keyring.Get(service, user)
}

// Delete removes a secret from the OS keyring.
func (k *OSKeyring) Delete(service, user string) error {
	return keyring.Delete(service, user)
}

// ProbeKeyring reports whether kr accepts a write, read and delete.
func ProbeKeyring(kr Keyring) bool {
	const (
		probeUser  = "probe"
		probeValue = "ok"
	)
	service := ServiceName + "-probe"

	if err := kr.Set(service, probeUser, probeValue); err != nil {
		return false
	}

	val, err := kr.Get(service, probeUser)
	if err != nil || val != probeValue {
		_ = kr.Delete(service, probeUser)
		return false
	}

	return kr.Delete(service, probeUser) == nil
}
