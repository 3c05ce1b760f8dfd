package main

import (
	"github.com/spf13/cobra"
)

// newRootCmd builds the idp command tree.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "idp",
		Short:         "Sign in against a hosted identity provider",
		Long:          `idp drives the username/password sign-in flow of a hosted identity provider, persists the session token, and reports the current user.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().String("config", "", "path to a YAML config file")
	cmd.PersistentFlags().String("endpoint", "", "identity provider endpoint URL")
	cmd.PersistentFlags().String("client-id", "", "app client id issued by the provider")
	cmd.PersistentFlags().String("token-dir", "", "directory for the persisted session token")

	cmd.AddCommand(newLoginCmd())
	cmd.AddCommand(newLogoutCmd())
	cmd.AddCommand(newWhoamiCmd())

	return cmd
}
