package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/layer-3/walletgate/adapters/store/sqlite"
	"github.com/layer-3/walletgate/adapters/verifier"
	"github.com/layer-3/walletgate/config"
	"github.com/layer-3/walletgate/core"
)

// grantActor is recorded as the author of wallets added from the command line.
const grantActor = "cli"

func grantCmd() *cobra.Command {
	var (
		role  string
		name  string
		notes string
	)

	cmd := &cobra.Command{
		Use:   "grant <wallet-address>",
		Short: "Authorize a wallet directly in the database",
		Long:  "Authorize a wallet without going through the API. Use it to create the first admin.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			address := args[0]
			if !verifier.ValidIdentity(address) {
				return fmt.Errorf("invalid wallet address %q", address)
			}
			r, err := core.ParseAssignableRole(role)
			if err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			store, err := sqlite.Open(cmd.Context(), cfg.DatabasePath, nil)
			if err != nil {
				return err
			}
			defer store.Close()

			ctx, err := store.SetRequestIdentity(cmd.Context(), grantActor)
			if err != nil {
				return err
			}
			id, err := store.AddWallet(ctx, core.WalletInput{Address: address, Name: name, Role: r, Notes: notes})
			if err != nil {
				return fmt.Errorf("grant %s: %w", address, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Granted %s to %s (id %d)\n", r, address, id)
			return nil
		},
	}

	cmd.Flags().StringVar(&role, "role", "admin", "Role to grant (admin, editor, viewer)")
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&notes, "notes", "", "Free-form notes")
	return cmd
}
