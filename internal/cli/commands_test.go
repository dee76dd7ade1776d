package cli

import (
	"context"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/tether/internal/dapp"
	"github.com/mrz1836/tether/internal/devpeer"
	"github.com/mrz1836/tether/internal/networks"
	tethererr "github.com/mrz1836/tether/pkg/errors"
)

// The tests in this file execute the shared root command and are NOT parallel.

func TestCLI_ConnectSignVerifyDisconnect(t *testing.T) {
	h := newCLIHarness(t)

	var st dapp.State
	h.runJSON(&st, "connect", "injected")
	assert.True(t, st.Active)
	assert.Equal(t, "injected", st.Provider)
	assert.Equal(t, strings.ToLower(h.peer.Address().Hex()), st.Account, "wallets report lower-case accounts")
	assert.Equal(t, devpeer.DefaultChainID, st.ChainID)
	assert.Equal(t, "Goerli", st.Network)

	// A new process reconnects the remembered provider.
	st = dapp.State{}
	h.runJSON(&st, "status")
	assert.True(t, st.Active)
	assert.Equal(t, "injected", st.Provider)

	st = dapp.State{}
	h.runJSON(&st, "sign", "hello", "--verify")
	assert.Equal(t, "hello", st.Signed)
	assert.NotEmpty(t, st.Signature)
	assert.Equal(t, "matched", st.Verification)
	assert.Equal(t, "verified", st.Workflow)
	signature := st.Signature

	st = dapp.State{}
	h.runJSON(&st, "verify", "--message", "hello", "--signature", signature)
	assert.Equal(t, "matched", st.Verification)

	stdout, _, err := h.run("disconnect", "-o", "text")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Disconnected")

	stdout, _, err = h.run("status", "-o", "text")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Not connected")
}

func TestCLI_VerifyMismatchIsNotAnError(t *testing.T) {
	h := newCLIHarness(t)

	other, err := devpeer.New(devpeer.Config{Mnemonic: "legal winner thank year wave sausage worth useful legal winner thank yellow"})
	require.NoError(t, err)
	t.Cleanup(other.Close)

	var sig string
	require.NoError(t, other.DialInProc().CallContext(context.Background(), &sig, "personal_sign", "0x6869", other.Address()))

	h.runJSON(&dapp.State{}, "connect", "injected")

	var st dapp.State
	h.runJSON(&st, "verify", "--message", "hi", "--signature", sig)
	assert.Equal(t, "mismatched", st.Verification)
	assert.True(t, strings.EqualFold(other.Address().Hex(), st.Recovered))
}

func TestCLI_TextOutput(t *testing.T) {
	h := newCLIHarness(t)

	stdout, _, err := h.run("connect", "injected", "-o", "text")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Provider: injected")
	assert.Contains(t, stdout, "Network:  Goerli")

	stdout, _, err = h.run("sign", "gm", "--verify", "-o", "text")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Message:   gm")
	assert.Contains(t, stdout, "signer matches the connected account")
}

func TestCLI_NetworkSwitchRegistersThenSwitches(t *testing.T) {
	h := newCLIHarness(t)
	h.runJSON(&dapp.State{}, "connect", "injected")

	chain := strconv.FormatUint(networks.Celo, 10)

	var res switchResult
	h.runJSON(&res, "network", "switch", chain)
	assert.Equal(t, "chain-added", res.Outcome)
	assert.Equal(t, "Celo", res.Network)
	assert.Equal(t, devpeer.DefaultChainID, res.State.ChainID, "registering does not move the wallet")
	require.Len(t, h.peer.Added(), 1)

	res = switchResult{}
	h.runJSON(&res, "network", "switch", networks.ToHex(networks.Celo))
	assert.Equal(t, "switched", res.Outcome)
	assert.Equal(t, networks.Celo, res.State.ChainID)
	assert.Equal(t, networks.Celo, h.peer.ChainID())
}

func TestCLI_NetworkSwitchKnownChain(t *testing.T) {
	h := newCLIHarness(t)
	h.runJSON(&dapp.State{}, "connect", "injected")

	stdout, _, err := h.run("network", "switch", "42", "-o", "text")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Switched to Kovan (42)")
	assert.Empty(t, h.peer.Added())
}

func TestCLI_NetworkSwitchInvalidChain(t *testing.T) {
	h := newCLIHarness(t)

	_, _, err := h.run("network", "switch", "mainnet")
	require.ErrorIs(t, err, tethererr.ErrInvalidInput)
	assert.Equal(t, tethererr.ExitInput, ExitCode(err))
}

func TestCLI_NetworkList(t *testing.T) {
	h := newCLIHarness(t)

	var rows []networkRow
	h.runJSON(&rows, "network", "list")
	require.Len(t, rows, 6)
	assert.Equal(t, networks.Ropsten, rows[0].ChainID)
	assert.Equal(t, "0x3", rows[0].ChainHex)

	stdout, _, err := h.run("network", "list", "-o", "text")
	require.NoError(t, err)
	assert.Contains(t, stdout, "CHAIN")
	assert.Contains(t, stdout, "Harmony")
}

func TestCLI_WithoutSession(t *testing.T) {
	h := newCLIHarness(t)

	for _, args := range [][]string{
		{"sign", "hello"},
		{"verify", "--message", "a", "--signature", "0x00"},
		{"network", "switch", "3"},
	} {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			_, _, err := h.run(args...)
			require.ErrorIs(t, err, tethererr.ErrNoActiveSession)
		})
	}
}

func TestCLI_ConnectUnknownKind(t *testing.T) {
	h := newCLIHarness(t)

	_, _, err := h.run("connect", "metamask")
	require.ErrorIs(t, err, tethererr.ErrUnknownProviderKind)
}

func TestCLI_ConnectUnreachableProvider(t *testing.T) {
	h := newCLIHarness(t)
	h.srv.Close()

	_, _, err := h.run("connect", "injected")
	require.ErrorIs(t, err, tethererr.ErrActivationFailed)

	stdout, _, err := h.run("status", "-o", "text")
	require.NoError(t, err, "restore failures are silent")
	assert.Contains(t, stdout, "Not connected")
}

func TestCLI_SignMessageTooLong(t *testing.T) {
	h := newCLIHarness(t)
	h.runJSON(&dapp.State{}, "connect", "injected")

	_, _, err := h.run("sign", strings.Repeat("x", 21))
	require.ErrorIs(t, err, tethererr.ErrMessageTooLong)
}

func TestCLI_WalletConnectPrintsPairing(t *testing.T) {
	h := newCLIHarness(t)

	stdout, stderr, err := h.run("connect", "walletConnect", "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, stderr, "wc:")
	assert.Contains(t, stdout, `"provider": "walletConnect"`)
}

func TestCLI_ProvidersMarksRemembered(t *testing.T) {
	h := newCLIHarness(t)
	h.runJSON(&dapp.State{}, "connect", "coinbaseWallet")

	var rows []providerRow
	h.runJSON(&rows, "providers")
	require.Len(t, rows, 3)
	for _, r := range rows {
		assert.Equal(t, r.Kind == "coinbaseWallet", r.Remembered, r.Kind)
		assert.NotEmpty(t, r.Endpoint)
	}
}

func TestCLI_Shell(t *testing.T) {
	h := newCLIHarness(t)

	script := strings.Join([]string{
		"help",
		"connect injected",
		"message hello",
		"sign",
		"verify",
		"select 0",
		"error",
		"clear",
		"error",
		"switch 3",
		"status",
		"bogus",
		"quit",
	}, "\n")

	resetCommandFlags()
	var stdout strings.Builder
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stdout)
	rootCmd.SetIn(strings.NewReader(script))
	rootCmd.SetArgs([]string{"--home", h.home, "shell"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())

	got := stdout.String()
	assert.Contains(t, got, "Commands:")
	assert.Contains(t, got, "injected "+strings.ToLower(h.peer.Address().Hex())+" on Goerli (5)")
	assert.Contains(t, got, "Message set (5/20)")
	assert.Contains(t, got, "Signature: 0x")
	assert.Contains(t, got, "Verification: matched")
	assert.Contains(t, got, "No error")
	assert.Contains(t, got, "Network switched; wallet on Ropsten (3)")
	assert.Contains(t, got, `unknown command "bogus"`)
}

func TestCLI_Version(t *testing.T) {
	h := newCLIHarness(t)
	SetBuildInfo(BuildInfo{Version: "v0.3.0", Commit: "abc1234", Date: "2026-10-01"})

	var info map[string]string
	h.runJSON(&info, "version")
	assert.Equal(t, "v0.3.0", info["version"])
	assert.Equal(t, "abc1234", info["commit"])
	assert.NotEmpty(t, info["go"])
}

func TestCLI_InvalidConfigRejected(t *testing.T) {
	h := newCLIHarness(t)

	_, _, err := h.run("config", "set", "providers.injected.endpoint", "http://wallet.example.com")
	require.ErrorIs(t, err, tethererr.ErrInvalidInput)

	_, _, err = h.run("config", "set", "providers.injected.endpoint", "https://wallet.example.com")
	require.NoError(t, err)

	stdout, _, err := h.run("config", "get", "providers.injected.endpoint")
	require.NoError(t, err)
	assert.Equal(t, "https://wallet.example.com\n", stdout)
}
