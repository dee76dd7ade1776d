package output

import (
	"fmt"
	"io"
)

// Notifier prints short status lines meant for people, never for JSON consumers.
type Notifier struct {
	out   io.Writer
	err   io.Writer
	plain bool
}

// NewNotifier writes info and success lines to out and warnings to errOut.
// With plain set, the emoji prefixes are dropped.
func NewNotifier(out, errOut io.Writer, plain bool) *Notifier {
	return &Notifier{out: out, err: errOut, plain: plain}
}

func (n *Notifier) line(w io.Writer, prefix, plainPrefix, msg string) {
	if n.plain {
		prefix = plainPrefix
	}
	_, _ = fmt.Fprintln(w, prefix+msg)
}

// Info prints an informational line.
func (n *Notifier) Info(format string, args ...any) {
	n.line(n.out, "ℹ️  ", "", fmt.Sprintf(format, args...))
}

// Warn prints a warning line.
func (n *Notifier) Warn(format string, args ...any) {
	n.line(n.err, "⚠️  ", "warning: ", fmt.Sprintf(format, args...))
}

// Success prints a success line.
func (n *Notifier) Success(format string, args ...any) {
	n.line(n.out, "✅ ", "", fmt.Sprintf(format, args...))
}
