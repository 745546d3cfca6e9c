package main

import (
	"fmt"
	"io"
	"os"

	"mentor-booking/internal/domain/payment"
	"mentor-booking/internal/pkg/errs"

	"github.com/spf13/cobra"
)

func signWebhookCmd() *cobra.Command {
	var secret string

	cmd := &cobra.Command{
		Use:   "sign-webhook [body-file]",
		Short: "Print the signature header value for a callback body",
		Long: `Compute the hex HMAC-SHA256 the webhook endpoint expects for the exact
bytes of a body. Reads stdin when no file is given. The secret defaults to
WEBHOOK_SECRET.

Example:
  bookingctl sign-webhook charged.json | xargs -I{} curl -H "X-Webhook-Signature: {}" ...`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				secret = os.Getenv("WEBHOOK_SECRET")
			}
			if secret == "" {
				return errs.New("no secret: pass --secret or set WEBHOOK_SECRET")
			}

			var (
				body []byte
				err  error
			)
			if len(args) == 1 {
				body, err = os.ReadFile(args[0])
			} else {
				body, err = io.ReadAll(cmd.InOrStdin())
			}
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), payment.Sign(secret, body))
			return nil
		},
	}

	cmd.Flags().StringVar(&secret, "secret", "", "shared webhook secret")

	return cmd
}
