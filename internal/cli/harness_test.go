package cli

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mrz1836/tether/internal/config"
	"github.com/mrz1836/tether/internal/devpeer"
	"github.com/mrz1836/tether/internal/networks"
)

// cliHarness runs the root command against a development wallet served over
// HTTP and WebSocket, with a private home directory.
type cliHarness struct {
	t    *testing.T
	home string
	peer *devpeer.Peer
	srv  *httptest.Server
}

func newCLIHarness(t *testing.T) *cliHarness {
	t.Helper()
	t.Cleanup(saveGlobals(t))
	t.Cleanup(resetCommandFlags)

	peer, err := devpeer.New(devpeer.Config{KnownChains: []uint64{networks.Ropsten, networks.Kovan}})
	require.NoError(t, err)
	srv := httptest.NewServer(peer.Handler())
	t.Cleanup(func() {
		srv.Close()
		peer.Close()
	})

	home := t.TempDir()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")

	c := config.Defaults()
	c.Home = home
	c.Providers.Injected.Endpoint = srv.URL
	c.Providers.CoinbaseWallet.Endpoint = wsURL
	c.Providers.WalletConnect.Endpoint = wsURL
	c.RPC.TimeoutSeconds = 10
	c.Logging.Level = "off"
	require.NoError(t, config.Save(c, config.Path(home)))

	return &cliHarness{t: t, home: home, peer: peer, srv: srv}
}

// run executes tether with args and returns what it wrote.
func (h *cliHarness) run(args ...string) (string, string, error) {
	h.t.Helper()
	resetCommandFlags()

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs(append([]string{"--home", h.home}, args...))
	defer func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

// runJSON executes tether with -o json and decodes stdout into v.
func (h *cliHarness) runJSON(v any, args ...string) {
	h.t.Helper()
	stdout, stderr, err := h.run(append(args, "-o", "json")...)
	require.NoError(h.t, err, "stderr: %s", stderr)
	require.NoError(h.t, json.Unmarshal([]byte(stdout), v), "stdout: %s", stdout)
}

// resetCommandFlags puts every package-level flag back to its default.
func resetCommandFlags() {
	homeDir = ""
	outputFormat = "auto"
	verbose = false
	configForce = false
	signVerify = false
	verifyMessage = ""
	verifySignature = ""
	peerListen = ""
	peerMnemonic = ""
	peerChain = ""
	peerRejectAdd = false
	peerRejectSign = false
}
