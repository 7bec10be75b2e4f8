package main

import (
	"github.com/spf13/cobra"

	"github.com/layer-3/walletgate/config"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "walletgate",
		Short: "Wallet-authenticated token metadata CMS",
		Long: `walletgate serves a role-gated token metadata API. Requests are
authenticated by a wallet signature over a timestamped challenge; no
server-side session is kept.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		grantCmd(),
		keygenCmd(),
		loginCmd(),
		logoutCmd(),
		whoamiCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		config.Exitf("Error: %v", err)
	}
}
