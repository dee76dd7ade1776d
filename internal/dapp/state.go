package dapp

import (
	"github.com/mrz1836/tether/internal/networks"
)

// State is a snapshot of everything the client displays.
type State struct {
	Active       bool   `json:"active"`
	Provider     string `json:"provider,omitempty"`
	Account      string `json:"account,omitempty"`
	ChainID      uint64 `json:"chain_id,omitempty"`
	ChainHex     string `json:"chain_id_hex,omitempty"`
	Network      string `json:"network,omitempty"`
	Selected     uint64 `json:"selected_chain_id,omitempty"`
	Workflow     string `json:"workflow"`
	Message      string `json:"message,omitempty"`
	Signature    string `json:"signature,omitempty"`
	Signed       string `json:"signed_message,omitempty"`
	Verification string `json:"verification"`
	Recovered    string `json:"recovered,omitempty"`
	LastError    string `json:"last_error,omitempty"`
}

// State returns the current snapshot.
func (c *Client) State() State {
	sess := c.controller.Snapshot()
	wf := c.workflow.Snapshot()

	st := State{
		Active:       sess.Active,
		Workflow:     wf.State.String(),
		Message:      wf.Message,
		Verification: wf.Verification.String(),
		Recovered:    wf.Recovered,
		LastError:    c.LastError(),
	}
	if sess.Active {
		st.Provider = sess.Kind.String()
		st.Account = sess.Account
		st.ChainID = sess.ChainID
		st.ChainHex = networks.ToHex(sess.ChainID)
		st.Network = c.networks.Name(sess.ChainID)
	}
	if id, ok := c.switcher.Selected(); ok {
		st.Selected = id
	}
	if wf.Record != nil {
		st.Signature = wf.Record.Signature
		st.Signed = wf.Record.Message
	}
	return st
}
