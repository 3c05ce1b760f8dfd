package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and clear the persisted session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			_, flow, err := buildSession(conf)
			if err != nil {
				return err
			}

			// Never fails: the local session is cleared even when the
			// provider-side call errors.
			flow.SignOut(cmd.Context())

			fmt.Println("Signed out.")
			return nil
		},
	}
}
