package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Arch0125/zulip-mobile/internal/api"
	"github.com/Arch0125/zulip-mobile/internal/config"
	"github.com/Arch0125/zulip-mobile/internal/store"
)

// runtime carries lazily-built dependencies shared by the subcommands.
type runtime struct {
	cfg *config.Config
}

func (rt *runtime) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if rt.cfg != nil {
		return rt.cfg, nil
	}

	var (
		cfg *config.Config
		err error
	)
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		cfg, err = config.LoadFromFile(path)
	} else {
		cfg, err = config.LoadDefault()
	}
	if err != nil {
		return nil, err
	}

	rt.cfg = cfg
	return cfg, nil
}

// credentials resolves credentials from the config, an api_key_file if one
// is set, and the stored credentials file, in that order of precedence.
func (rt *runtime) credentials() (*config.Credentials, error) {
	creds := &config.Credentials{
		Server: rt.cfg.Server.URL,
		Email:  rt.cfg.Server.Email,
	}
	if rt.cfg.Server.APIKeyFile != "" {
		key, err := os.ReadFile(rt.cfg.Server.APIKeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read API key file: %w", err)
		}
		creds.APIKey = strings.TrimSpace(string(key))
	}
	if creds.IsComplete() {
		return creds, nil
	}

	stored, err := config.LoadCredentials(rt.cfg.CredentialsPath())
	if err != nil {
		return nil, err
	}
	if creds.Server == "" {
		creds.Server = stored.Server
	}
	if creds.Email == "" {
		creds.Email = stored.Email
	}
	if creds.APIKey == "" {
		creds.APIKey = stored.APIKey
	}
	if !creds.IsComplete() {
		return nil, config.ErrNoCredentials
	}
	return creds, nil
}

func (rt *runtime) client() (*api.Client, error) {
	creds, err := rt.credentials()
	if err != nil {
		return nil, err
	}

	client, err := api.NewClient(creds.Server, creds.Email, creds.APIKey,
		api.WithLongPollTimeout(rt.cfg.Events.LongPollTimeout))
	if err != nil {
		return nil, fmt.Errorf("failed to build API client: %w", err)
	}
	return client, nil
}

func (rt *runtime) openStore() (*store.Store, error) {
	if err := rt.cfg.EnsureDirectories(); err != nil {
		return nil, err
	}
	return store.Open(rt.cfg.CachePath())
}
