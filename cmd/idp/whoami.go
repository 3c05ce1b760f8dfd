package main

import (
	"fmt"

	"github.com/spf13/cobra"

	session "github.com/goliatone/go-idp-session"
)

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current signed-in user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			identity, _, err := buildSession(conf)
			if err != nil {
				return err
			}

			identity.Init(cmd.Context())

			snapshot := identity.Snapshot()
			if snapshot.Phase != session.PhaseSignedIn {
				fmt.Println("Not signed in.")
				return nil
			}

			fmt.Printf("%s <%s>\n", identity.DisplayName(), snapshot.User.Email)
			return nil
		},
	}
}
