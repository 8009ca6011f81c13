package cli

import (
	"encoding/json"
	"fmt"

	"taskpush/internal/vapid"

	"github.com/spf13/cobra"
)

func keygenCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a VAPID key pair for the gateway",
		Long: `Generate a P-256 VAPID key pair.

The public key goes into vapid.public_key on the gateway (and optionally
push.vapid_public_key on clients); the private key into vapid.private_key.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := vapid.Generate()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(key)
			}

			fmt.Fprintf(out, "TASKPUSH_VAPID_PUBLIC_KEY=%s\n", key.PublicKey)
			fmt.Fprintf(out, "TASKPUSH_VAPID_PRIVATE_KEY=%s\n", key.PrivateKey)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the key pair as JSON")
	return cmd
}
