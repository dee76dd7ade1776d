// Package metrics provides application-level metrics collection.
// This is a lightweight metrics foundation using atomic counters.
package metrics

import (
	"sync/atomic"
	"time"
)

// Metrics holds application metrics using atomic counters for thread safety.
type Metrics struct {
	// Wallet RPC metrics
	rpcCallsTotal   atomic.Int64
	rpcErrorsTotal  atomic.Int64
	rpcLatencyNanos atomic.Int64

	// Per-method RPC calls
	switchCalls  atomic.Int64
	addCalls     atomic.Int64
	signCalls    atomic.Int64
	recoverCalls atomic.Int64

	// Session metrics
	connectsTotal   atomic.Int64
	connectFailures atomic.Int64

	// Verification outcomes
	verifyMatched    atomic.Int64
	verifyMismatched atomic.Int64
}

// Global is the global metrics instance.
// Use this for recording metrics throughout the application.
//
//nolint:gochecknoglobals // Intentional global for metrics access
var Global = &Metrics{}

// RecordRPCCall records a wallet RPC call with its duration and success status.
func (m *Metrics) RecordRPCCall(method string, duration time.Duration, err error) {
	m.rpcCallsTotal.Add(1)
	m.rpcLatencyNanos.Add(duration.Nanoseconds())

	if err != nil {
		m.rpcErrorsTotal.Add(1)
	}

	switch method {
	case "wallet_switchEthereumChain":
		m.switchCalls.Add(1)
	case "wallet_addEthereumChain":
		m.addCalls.Add(1)
	case "personal_sign":
		m.signCalls.Add(1)
	case "personal_ecRecover":
		m.recoverCalls.Add(1)
	}
}

// RecordConnect records a session activation attempt.
func (m *Metrics) RecordConnect(err error) {
	m.connectsTotal.Add(1)
	if err != nil {
		m.connectFailures.Add(1)
	}
}

// RecordVerification records a completed verification.
func (m *Metrics) RecordVerification(matched bool) {
	if matched {
		m.verifyMatched.Add(1)
		return
	}
	m.verifyMismatched.Add(1)
}

// Snapshot is a point-in-time copy of all metrics.
type Snapshot struct {
	RPCCallsTotal    int64 `json:"rpc_calls_total"`
	RPCErrorsTotal   int64 `json:"rpc_errors_total"`
	RPCLatencyNanos  int64 `json:"rpc_latency_nanos"`
	SwitchCalls      int64 `json:"switch_calls"`
	AddChainCalls    int64 `json:"add_chain_calls"`
	SignCalls        int64 `json:"sign_calls"`
	RecoverCalls     int64 `json:"recover_calls"`
	ConnectsTotal    int64 `json:"connects_total"`
	ConnectFailures  int64 `json:"connect_failures"`
	VerifyMatched    int64 `json:"verify_matched"`
	VerifyMismatched int64 `json:"verify_mismatched"`
}

// Snapshot returns a point-in-time copy of all metrics.
func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		RPCCallsTotal:    m.rpcCallsTotal.Load(),
		RPCErrorsTotal:   m.rpcErrorsTotal.Load(),
		RPCLatencyNanos:  m.rpcLatencyNanos.Load(),
		SwitchCalls:      m.switchCalls.Load(),
		AddChainCalls:    m.addCalls.Load(),
		SignCalls:        m.signCalls.Load(),
		RecoverCalls:     m.recoverCalls.Load(),
		ConnectsTotal:    m.connectsTotal.Load(),
		ConnectFailures:  m.connectFailures.Load(),
		VerifyMatched:    m.verifyMatched.Load(),
		VerifyMismatched: m.verifyMismatched.Load(),
	}
}

// RPCCallsTotal returns the total number of RPC calls made.
func (m *Metrics) RPCCallsTotal() int64 {
	return m.rpcCallsTotal.Load()
}

// RPCErrorsTotal returns the total number of RPC errors.
func (m *Metrics) RPCErrorsTotal() int64 {
	return m.rpcErrorsTotal.Load()
}

// RPCLatencyAvgMs returns the average RPC latency in milliseconds.
// Returns 0 if no calls have been made.
func (m *Metrics) RPCLatencyAvgMs() float64 {
	calls := m.rpcCallsTotal.Load()
	if calls == 0 {
		return 0
	}
	nanos := m.rpcLatencyNanos.Load()
	return float64(nanos) / float64(calls) / 1e6
}

// Reset resets all metrics to zero.
// Useful for testing.
func (m *Metrics) Reset() {
	m.rpcCallsTotal.Store(0)
	m.rpcErrorsTotal.Store(0)
	m.rpcLatencyNanos.Store(0)
	m.switchCalls.Store(0)
	m.addCalls.Store(0)
	m.signCalls.Store(0)
	m.recoverCalls.Store(0)
	m.connectsTotal.Store(0)
	m.connectFailures.Store(0)
	m.verifyMatched.Store(0)
	m.verifyMismatched.Store(0)
}
