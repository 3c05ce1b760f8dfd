package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/cobra"

	session "github.com/goliatone/go-idp-session"
	"github.com/goliatone/go-idp-session/provider/cognito"
)

// defaultConfigPath is consulted when --config is not given.
const defaultConfigPath = ".config/idp-session/config.yaml"

// cliConfig is the resolved CLI configuration. Flags override file
// values.
type cliConfig struct {
	Endpoint string
	ClientID string
	TokenDir string
}

// loadConfig resolves configuration from the optional YAML file, then
// overlays any flags that were set.
func loadConfig(cmd *cobra.Command) (cliConfig, error) {
	k := koanf.New(".")

	path, _ := cmd.Flags().GetString("config")
	explicit := path != ""
	if !explicit {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, defaultConfigPath)
		}
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			if explicit {
				return cliConfig{}, fmt.Errorf("load config %s: %w", path, err)
			}
			// The default file is optional.
		}
	}

	if err := k.Load(posflag.Provider(cmd.Flags(), ".", k), nil); err != nil {
		return cliConfig{}, fmt.Errorf("read flags: %w", err)
	}

	return cliConfig{
		Endpoint: k.String("endpoint"),
		ClientID: k.String("client-id"),
		TokenDir: k.String("token-dir"),
	}, nil
}

// buildSession wires the token store, provider client, identity store,
// and sign-in flow from the resolved configuration.
func buildSession(cfg cliConfig) (*session.IdentityStore, *session.Flow, error) {
	tokens := session.NewFileTokenStore(cfg.TokenDir, nil)

	client, err := cognito.New(cognito.Config{
		Endpoint: cfg.Endpoint,
		ClientID: cfg.ClientID,
	}, tokens)
	if err != nil {
		return nil, nil, err
	}

	identity := session.NewIdentityStore(client, tokens)
	flow := session.NewFlow(client, identity)

	return identity, flow, nil
}
