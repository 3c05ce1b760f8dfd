package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	session "github.com/goliatone/go-idp-session"
)

// loginConfig holds flags for the login command.
type loginConfig struct {
	email    string
	password string
}

func newLoginCmd() *cobra.Command {
	cfg := &loginConfig{}

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with email and password",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLogin(cmd, cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.email, "email", "", "account email (prompted when omitted)")
	cmd.Flags().StringVar(&cfg.password, "password", "", "account password (prompted when omitted)")

	return cmd
}

func runLogin(cmd *cobra.Command, cfg *loginConfig) error {
	conf, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	identity, flow, err := buildSession(conf)
	if err != nil {
		return err
	}

	reader := bufio.NewReader(os.Stdin)
	email := cfg.email
	if email == "" {
		email = prompt(reader, "Email: ")
	}
	password := cfg.password
	if password == "" {
		password = prompt(reader, "Password: ")
	}

	ctx := cmd.Context()
	flow.Begin()
	if err := flow.SubmitCredentials(ctx, email, password); err != nil {
		return err
	}

	if flow.State() == session.FlowChallengePending {
		fmt.Println("A new password is required before you can sign in.")
		if err := completeChallenge(cmd, flow, reader); err != nil {
			return err
		}
	}

	if flow.State() != session.FlowAuthenticated {
		return fmt.Errorf("sign-in did not complete (state %s)", flow.State())
	}

	fmt.Printf("Signed in as %s\n", identity.DisplayName())
	return nil
}

// completeChallenge prompts for the new password and every attribute the
// provider still requires, then submits the challenge. A validation
// failure re-prompts instead of aborting.
func completeChallenge(cmd *cobra.Command, flow *session.Flow, reader *bufio.Reader) error {
	for {
		newPassword := prompt(reader, "New password: ")

		attributes := map[string]string{}
		for _, field := range flow.RequiredFields() {
			attributes[field] = prompt(reader, fieldPrompt(field))
		}

		err := flow.SubmitChallenge(cmd.Context(), newPassword, attributes)
		if err == nil {
			return nil
		}
		if !session.IsKind(err, session.KindValidation) {
			return err
		}
		fmt.Printf("%v\n", err)
	}
}

func fieldPrompt(field string) string {
	switch field {
	case session.AttributeGivenName:
		return "First name: "
	case session.AttributeFamilyName:
		return "Last name: "
	default:
		return field + ": "
	}
}

func prompt(reader *bufio.Reader, label string) string {
	fmt.Print(label)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}
