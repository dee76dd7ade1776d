// Package signing runs the sign-then-verify round trip against the connected
// wallet: set a short challenge message, have the wallet sign it, then ask the
// wallet to recover the signer and compare it with the session account.
package signing

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/mrz1836/tether/internal/metrics"
	"github.com/mrz1836/tether/internal/provider"
	"github.com/mrz1836/tether/internal/session"
	tethererr "github.com/mrz1836/tether/pkg/errors"
)

// MaxMessageLength is the longest message, in characters, that may be signed.
const MaxMessageLength = 20

// State is the workflow state.
type State int

// Workflow states.
const (
	Idle State = iota
	MessageSet
	Signed
	Verified
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case MessageSet:
		return "message-set"
	case Signed:
		return "signed"
	case Verified:
		return "verified"
	}
	return "unknown"
}

// Verification is the tri-state verification result.
type Verification int

// Verification results.
const (
	Unknown Verification = iota
	Matched
	Mismatched
)

func (v Verification) String() string {
	switch v {
	case Matched:
		return "matched"
	case Mismatched:
		return "mismatched"
	}
	return "unknown"
}

// Record is the most recent successful signature.
type Record struct {
	Message   string `json:"message"`
	Signature string `json:"signature"`
}

// Snapshot is a copy of the workflow state.
type Snapshot struct {
	State        State
	Message      string
	Record       *Record
	Verification Verification
	Recovered    string
}

// Session is what the workflow needs from the session controller.
type Session interface {
	Handle() (provider.Handle, session.Session, error)
}

// Workflow is the message signing state machine.
type Workflow struct {
	session Session
	metrics *metrics.Metrics

	mu           sync.Mutex
	message      string
	record       *Record
	verification Verification
	recovered    string
	verified     bool
	gen          uint64
	signing      bool
	verifying    bool
}

// NewWorkflow creates an idle workflow. A nil m records to metrics.Global.
func NewWorkflow(sess Session, m *metrics.Metrics) *Workflow {
	if m == nil {
		m = metrics.Global
	}
	return &Workflow{session: sess, metrics: m}
}

// SetMessage replaces the pending message and drops any signature and
// verification result. Messages longer than MaxMessageLength are rejected and
// leave the workflow untouched. An empty message returns the workflow to Idle.
func (w *Workflow) SetMessage(text string) error {
	if n := utf8.RuneCountInString(text); n > MaxMessageLength {
		return tethererr.WithDetails(tethererr.ErrMessageTooLong, map[string]string{
			"length": strconv.Itoa(n),
			"max":    strconv.Itoa(MaxMessageLength),
		})
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.message = text
	w.clearLocked()
	return nil
}

// Reset returns the workflow to Idle and discards any request in flight.
func (w *Workflow) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.message = ""
	w.clearLocked()
}

// Adopt loads a message and signature obtained elsewhere so they can be verified.
func (w *Workflow) Adopt(message, signature string) error {
	if message == "" {
		return tethererr.ErrEmptyMessage
	}
	if strings.TrimSpace(signature) == "" {
		return tethererr.ErrNoSignature
	}
	if err := w.SetMessage(message); err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.record = &Record{Message: message, Signature: signature}
	return nil
}

// clearLocked drops derived state and invalidates requests in flight.
func (w *Workflow) clearLocked() {
	w.record = nil
	w.verification = Unknown
	w.recovered = ""
	w.verified = false
	w.gen++
}

// Sign asks the wallet to sign the pending message with the session account.
func (w *Workflow) Sign(ctx context.Context) (*Record, error) {
	h, sess, err := w.session.Handle()
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	if w.message == "" {
		w.mu.Unlock()
		return nil, tethererr.ErrEmptyMessage
	}
	if w.signing {
		w.mu.Unlock()
		return nil, tethererr.ErrBusy
	}
	w.signing = true
	message := w.message
	gen := w.gen
	w.mu.Unlock()

	sig, err := h.PersonalSign(ctx, message, sess.Account)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.signing = false

	if err != nil {
		return nil, tethererr.WithCause(tethererr.ErrSigningFailed, err)
	}
	if gen != w.gen {
		return nil, tethererr.WithDetails(tethererr.ErrSigningFailed, map[string]string{"reason": "message changed"})
	}

	w.record = &Record{Message: message, Signature: sig}
	w.verification = Unknown
	w.recovered = ""
	w.verified = false
	w.gen++
	rec := *w.record
	return &rec, nil
}

// Verify asks the wallet to recover the signer of the current record and
// compares it, case-insensitively, with the session account. A mismatch is a
// result, not an error.
func (w *Workflow) Verify(ctx context.Context) (Verification, error) {
	w.mu.Lock()
	if w.record == nil {
		w.mu.Unlock()
		return Unknown, tethererr.ErrNoSignature
	}
	w.mu.Unlock()

	h, sess, err := w.session.Handle()
	if err != nil {
		return Unknown, err
	}

	w.mu.Lock()
	if w.verifying {
		w.mu.Unlock()
		return Unknown, tethererr.ErrBusy
	}
	w.verifying = true
	rec := *w.record
	gen := w.gen
	w.mu.Unlock()

	recovered, err := h.EcRecover(ctx, rec.Message, rec.Signature)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.verifying = false

	if err != nil {
		return Unknown, tethererr.WithCause(tethererr.ErrVerificationFailed, err)
	}
	if gen != w.gen {
		return Unknown, tethererr.WithDetails(tethererr.ErrVerificationFailed, map[string]string{"reason": "signature changed"})
	}

	result := Mismatched
	if strings.EqualFold(recovered, sess.Account) {
		result = Matched
	}
	w.verification = result
	w.recovered = recovered
	w.verified = true
	w.metrics.RecordVerification(result == Matched)
	return result, nil
}

// Snapshot returns the current state.
func (w *Workflow) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	snap := Snapshot{
		Message:      w.message,
		Verification: w.verification,
		Recovered:    w.recovered,
	}
	if w.record != nil {
		rec := *w.record
		snap.Record = &rec
	}

	switch {
	case w.verified:
		snap.State = Verified
	case w.record != nil:
		snap.State = Signed
	case w.message != "":
		snap.State = MessageSet
	default:
		snap.State = Idle
	}
	return snap
}
