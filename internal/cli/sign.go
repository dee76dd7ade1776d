package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/mrz1836/tether/internal/dapp"
	"github.com/mrz1836/tether/internal/output"
	"github.com/mrz1836/tether/internal/signing"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var signCmd = &cobra.Command{
	Use:   "sign <message>",
	Short: "Sign a message with the connected account",
	Long: `Ask the connected wallet to sign a short message with personal_sign.

Messages are limited to 20 characters. With --verify the signer is recovered
right away and compared with the connected account.`,
	Example: `  tether sign "hello"
  tether sign "gm" --verify -o json`,
	GroupID: groupWallet,
	Args:    cobra.ExactArgs(1),
	RunE:    runSign,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check who signed a message",
	Long: `Recover the signer of a message signature through the connected wallet and
compare it with the connected account.

A signature from another account is reported as a mismatch, not an error.`,
	Example: `  tether verify --message hello --signature 0x5f1c...1b`,
	GroupID: groupWallet,
	Args:    cobra.NoArgs,
	RunE:    runVerify,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	signVerify      bool
	verifyMessage   string
	verifySignature string
)

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(signCmd)
	rootCmd.AddCommand(verifyCmd)

	signCmd.Flags().BoolVar(&signVerify, "verify", false, "verify the signature after signing")

	verifyCmd.Flags().StringVar(&verifyMessage, "message", "", "message that was signed (required)")
	verifyCmd.Flags().StringVar(&verifySignature, "signature", "", "0x-prefixed signature to check (required)")
	_ = verifyCmd.MarkFlagRequired("message")
	_ = verifyCmd.MarkFlagRequired("signature")
}

func runSign(cmd *cobra.Command, args []string) error {
	return withClient(cmd, true, func(ctx context.Context, c *dapp.Client) error {
		if err := requireSession(c); err != nil {
			return err
		}
		if err := c.SetMessage(args[0]); err != nil {
			return err
		}
		if _, err := c.Sign(ctx); err != nil {
			return err
		}
		if signVerify {
			if _, err := c.Verify(ctx); err != nil {
				return err
			}
		}
		return displaySignature(GetCmdContext(cmd).Fmt, c.State())
	})
}

func runVerify(cmd *cobra.Command, _ []string) error {
	return withClient(cmd, true, func(ctx context.Context, c *dapp.Client) error {
		if err := requireSession(c); err != nil {
			return err
		}
		if err := c.Adopt(verifyMessage, verifySignature); err != nil {
			return err
		}
		if _, err := c.Verify(ctx); err != nil {
			return err
		}
		return displaySignature(GetCmdContext(cmd).Fmt, c.State())
	})
}

func displaySignature(f *output.Formatter, st dapp.State) error {
	return f.Render(st, func(w io.Writer) error {
		out(w, "Message:   %s\n", st.Signed)
		out(w, "Signature: %s\n", st.Signature)
		out(w, "Account:   %s\n", st.Account)
		switch st.Verification {
		case signing.Matched.String():
			out(w, "Verified:  signer matches the connected account\n")
		case signing.Mismatched.String():
			out(w, "Verified:  MISMATCH, signed by %s\n", st.Recovered)
		}
		return nil
	})
}
