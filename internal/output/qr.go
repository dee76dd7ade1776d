package output

import (
	"fmt"
	"io"

	"github.com/mdp/qrterminal/v3"
	"rsc.io/qr"
)

// QRConfig configures QR code rendering.
type QRConfig struct {
	// Level is the error correction level.
	Level qr.Level
	// QuietZone is the number of empty blocks around the QR code.
	QuietZone int
	// HalfBlocks uses half-height blocks for a more compact display.
	HalfBlocks bool
}

// DefaultQRConfig returns the settings used for pairing URIs. They are long,
// so medium correction keeps the code scannable without making it huge.
func DefaultQRConfig() QRConfig {
	return QRConfig{
		Level:      qr.M,
		QuietZone:  1,
		HalfBlocks: true,
	}
}

// CanRenderQR checks if the output writer is a terminal suitable for QR rendering.
func CanRenderQR(w io.Writer) bool {
	return IsTerminal(w)
}

// RenderQR renders a QR code to the writer if it's a terminal.
// Nothing is written otherwise.
func RenderQR(w io.Writer, data string, cfg QRConfig) error {
	if !CanRenderQR(w) {
		return nil
	}

	qrterminal.GenerateWithConfig(data, qrterminal.Config{
		Level:          cfg.Level,
		Writer:         w,
		QuietZone:      cfg.QuietZone,
		HalfBlocks:     cfg.HalfBlocks,
		BlackChar:      qrterminal.BLACK_BLACK,
		WhiteChar:      qrterminal.WHITE_WHITE,
		WhiteBlackChar: qrterminal.WHITE_BLACK,
		BlackWhiteChar: qrterminal.BLACK_WHITE,
	})
	return nil
}

// RenderPairing prints a WalletConnect pairing URI and, on a terminal, its QR code.
// A URI too long for a QR code is an error.
func RenderPairing(w io.Writer, uri string) error {
	cfg := DefaultQRConfig()
	if _, err := qr.Encode(uri, cfg.Level); err != nil {
		return fmt.Errorf("encoding pairing uri: %w", err)
	}
	if _, err := fmt.Fprintf(w, "Scan with your wallet or paste the pairing URI:\n%s\n", uri); err != nil {
		return err
	}
	return RenderQR(w, uri, cfg)
}
