package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var errRejected = errors.New("user rejected")

func TestMetrics_RecordRPCCall(t *testing.T) {
	t.Parallel()
	m := &Metrics{}

	m.RecordRPCCall("personal_sign", 100*time.Millisecond, nil)
	assert.Equal(t, int64(1), m.RPCCallsTotal())
	assert.Equal(t, int64(0), m.RPCErrorsTotal())
	assert.Equal(t, int64(1), m.signCalls.Load())

	m.RecordRPCCall("wallet_switchEthereumChain", 50*time.Millisecond, errRejected)
	m.RecordRPCCall("wallet_addEthereumChain", 50*time.Millisecond, nil)
	m.RecordRPCCall("personal_ecRecover", 50*time.Millisecond, nil)
	m.RecordRPCCall("eth_chainId", 50*time.Millisecond, nil)

	snap := m.Snapshot()
	assert.Equal(t, int64(5), snap.RPCCallsTotal)
	assert.Equal(t, int64(1), snap.RPCErrorsTotal)
	assert.Equal(t, int64(1), snap.SwitchCalls)
	assert.Equal(t, int64(1), snap.AddChainCalls)
	assert.Equal(t, int64(1), snap.RecoverCalls)
}

func TestMetrics_RecordConnect(t *testing.T) {
	t.Parallel()
	m := &Metrics{}

	m.RecordConnect(nil)
	m.RecordConnect(errRejected)

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.ConnectsTotal)
	assert.Equal(t, int64(1), snap.ConnectFailures)
}

func TestMetrics_RecordVerification(t *testing.T) {
	t.Parallel()
	m := &Metrics{}

	m.RecordVerification(true)
	m.RecordVerification(true)
	m.RecordVerification(false)

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.VerifyMatched)
	assert.Equal(t, int64(1), snap.VerifyMismatched)
}

func TestMetrics_RPCLatencyAvg(t *testing.T) {
	t.Parallel()
	m := &Metrics{}

	assert.InDelta(t, 0.0, m.RPCLatencyAvgMs(), 0.001)

	m.RecordRPCCall("eth_chainId", 100*time.Millisecond, nil)
	m.RecordRPCCall("eth_chainId", 200*time.Millisecond, nil)

	assert.InDelta(t, 150.0, m.RPCLatencyAvgMs(), 0.001)
}

func TestMetrics_Reset(t *testing.T) {
	t.Parallel()
	m := &Metrics{}

	m.RecordRPCCall("personal_sign", time.Second, errRejected)
	m.RecordConnect(nil)
	m.RecordVerification(false)
	m.Reset()

	assert.Equal(t, Snapshot{}, m.Snapshot())
}

func TestMetrics_Concurrent(t *testing.T) {
	t.Parallel()
	m := &Metrics{}

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.RecordRPCCall("personal_sign", time.Millisecond, nil)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(50), m.RPCCallsTotal())
}
