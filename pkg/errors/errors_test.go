package errors_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tethererr "github.com/mrz1836/tether/pkg/errors"
)

var (
	errPeer      = errors.New("user rejected the request")
	errPlain     = errors.New("plain error")
	errPlainCode = errors.New("plain")
)

func TestExitCodes(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"success", nil, tethererr.ExitSuccess},
		{"general error", tethererr.ErrGeneral, tethererr.ExitGeneral},
		{"input error", tethererr.ErrInvalidInput, tethererr.ExitInput},
		{"activation failed", tethererr.ErrActivationFailed, tethererr.ExitRejected},
		{"unknown provider", tethererr.ErrUnknownProviderKind, tethererr.ExitInput},
		{"switch failed", tethererr.ErrNetworkSwitchFailed, tethererr.ExitRejected},
		{"signing failed", tethererr.ErrSigningFailed, tethererr.ExitRejected},
		{"verification failed", tethererr.ErrVerificationFailed, tethererr.ExitRejected},
		{"not found", tethererr.ErrNotFound, tethererr.ExitNotFound},
		{"plain error", errPlain, tethererr.ExitGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, tethererr.ExitCode(tt.err))
		})
	}
}

func TestWrap_PreservesIdentity(t *testing.T) {
	t.Parallel()

	wrapped := tethererr.Wrap(tethererr.ErrSigningFailed, "signing %q", "hello")
	require.ErrorIs(t, wrapped, tethererr.ErrSigningFailed)
	assert.Equal(t, tethererr.ExitRejected, tethererr.ExitCode(wrapped))
	assert.Contains(t, wrapped.Error(), `signing "hello"`)

	assert.NoError(t, tethererr.Wrap(nil, "nothing"))
}

func TestWrap_PlainError(t *testing.T) {
	t.Parallel()

	wrapped := tethererr.Wrap(errPlain, "context")
	require.ErrorIs(t, wrapped, errPlain)
	assert.Equal(t, "GENERAL_ERROR", tethererr.Code(wrapped))
	assert.Equal(t, "context: plain error", wrapped.Error())
}

func TestWithCause(t *testing.T) {
	t.Parallel()

	err := tethererr.WithCause(tethererr.ErrActivationFailed, errPeer)
	require.ErrorIs(t, err, tethererr.ErrActivationFailed)
	require.ErrorIs(t, err, errPeer)
	assert.Equal(t, "wallet activation failed: user rejected the request", err.Error())

	// The sentinel itself is never mutated.
	assert.NoError(t, tethererr.ErrActivationFailed.Cause)
}

func TestWithDetails(t *testing.T) {
	t.Parallel()

	err := tethererr.WithDetails(tethererr.ErrNetworkSwitchFailed, map[string]string{
		"stage":    tethererr.StageAddRejected,
		"chain_id": "42220",
	})
	require.ErrorIs(t, err, tethererr.ErrNetworkSwitchFailed)
	assert.Equal(t, "network switch failed (chain_id: 42220) (stage: add-rejected)", err.Error())
	assert.Equal(t, tethererr.StageAddRejected, tethererr.Detail(err, "stage"))
	assert.Empty(t, tethererr.Detail(errPlain, "stage"))

	plain := tethererr.WithDetails(errPlainCode, map[string]string{"k": "v"})
	assert.Equal(t, "GENERAL_ERROR", tethererr.Code(plain))
	assert.NoError(t, tethererr.WithDetails(nil, nil))
}

func TestWithSuggestion(t *testing.T) {
	t.Parallel()

	err := tethererr.WithSuggestion(tethererr.ErrUnknownProviderKind, "Did you mean 'injected'?")
	var te *tethererr.TetherError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "Did you mean 'injected'?", te.Suggestion)
	assert.Equal(t, "UNKNOWN_PROVIDER_KIND", te.Code)
	assert.NoError(t, tethererr.WithSuggestion(nil, "x"))
}

func TestErrorCode(t *testing.T) {
	t.Parallel()
	tests := []struct {
		err      error
		expected string
	}{
		{tethererr.ErrGeneral, "GENERAL_ERROR"},
		{tethererr.ErrActivationFailed, "ACTIVATION_FAILED"},
		{tethererr.ErrUnknownProviderKind, "UNKNOWN_PROVIDER_KIND"},
		{tethererr.ErrNetworkSwitchFailed, "NETWORK_SWITCH_FAILED"},
		{tethererr.ErrSigningFailed, "SIGNING_FAILED"},
		{tethererr.ErrVerificationFailed, "VERIFICATION_FAILED"},
		{errPlainCode, "GENERAL_ERROR"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, tethererr.Code(tt.err))
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	err := tethererr.New("CUSTOM", "custom failure")
	assert.Equal(t, "CUSTOM", err.Code)
	assert.Equal(t, "custom failure", err.Error())
	assert.Equal(t, tethererr.ExitGeneral, err.ExitCode)
	assert.False(t, tethererr.Is(err, tethererr.ErrGeneral))
}
