package walletrpc

import (
	"errors"
	"fmt"
)

// EIP-1193 provider error codes.
const (
	CodeUserRejected      = 4001
	CodeUnauthorized      = 4100
	CodeUnsupportedMethod = 4200
	CodeDisconnected      = 4900
	CodeChainDisconnected = 4901

	// CodeUnrecognizedChain is returned by wallet_switchEthereumChain when the
	// wallet has never heard of the requested chain.
	CodeUnrecognizedChain = 4902
)

// PeerError is an error reply from the wallet peer.
type PeerError struct {
	Method  string
	Code    int
	Message string
}

func (e *PeerError) Error() string {
	return fmt.Sprintf("%s: wallet error %d: %s", e.Method, e.Code, e.Message)
}

// IsUnrecognizedChain reports whether err is the wallet's "unknown chain" reply.
func IsUnrecognizedChain(err error) bool {
	return PeerCode(err) == CodeUnrecognizedChain
}

// IsUserRejected reports whether the user declined the request in the wallet.
func IsUserRejected(err error) bool {
	return PeerCode(err) == CodeUserRejected
}

// PeerCode returns the wallet error code carried by err, or 0.
func PeerCode(err error) int {
	var pe *PeerError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return 0
}
