package cli

import (
	"github.com/mrz1836/tether/internal/config"
	"github.com/mrz1836/tether/internal/dapp"
	"github.com/mrz1836/tether/internal/output"
)

// Compile-time interface checks.
var (
	_ LogWriter      = (*config.Logger)(nil)
	_ dapp.Logger    = LogWriter(nil)
	_ FormatProvider = (*output.Formatter)(nil)
)

// LogWriter provides logging capabilities.
// This interface enables mocking logging in tests.
type LogWriter interface {
	// Debug logs a debug-level message.
	Debug(format string, args ...any)

	// Error logs an error-level message.
	Error(format string, args ...any)

	// Close closes the logger and releases resources.
	Close() error
}

// FormatProvider provides output format information.
type FormatProvider interface {
	// Format returns the current output format.
	Format() output.Format
}
