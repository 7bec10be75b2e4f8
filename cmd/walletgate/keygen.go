package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/layer-3/walletgate/adapters/wallet"
)

func keygenCmd() *cobra.Command {
	var (
		kind string
		out  string
	)

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a local wallet key",
		RunE: func(cmd *cobra.Command, args []string) error {
			var identity string
			switch kind {
			case "ed25519", "solana":
				kp, err := wallet.NewKeypair()
				if err != nil {
					return err
				}
				if err := kp.Save(out); err != nil {
					return fmt.Errorf("failed to save key: %w", err)
				}
				identity = kp.Identity()
			case "ethereum", "eth":
				key, err := wallet.NewEthKey()
				if err != nil {
					return err
				}
				if err := key.Save(out); err != nil {
					return fmt.Errorf("failed to save key: %w", err)
				}
				identity = key.Identity()
			default:
				return fmt.Errorf("unknown key type %q", kind)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\nWallet address: %s\n", out, identity)
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "type", "ed25519", "Key type (ed25519, ethereum)")
	cmd.Flags().StringVarP(&out, "out", "o", "walletgate-key.json", "Output file")
	return cmd
}
