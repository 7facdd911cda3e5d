package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Arch0125/zulip-mobile/internal/api"
	"github.com/Arch0125/zulip-mobile/internal/config"
)

func newLoginCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store credentials for a Zulip account",
		Long:  "Prompts for the realm URL, email and API key, verifies them against the server and stores them for later commands.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd, rt)
		},
	}
	cmd.Flags().String("server", "", "Realm base URL, e.g. https://chat.example.com")
	cmd.Flags().String("email", "", "Account email address")
	cmd.Flags().Bool("no-verify", false, "Skip the connection check")
	return cmd
}

func runLogin(cmd *cobra.Command, rt *runtime) error {
	reader := bufio.NewReader(cmd.InOrStdin())

	server, _ := cmd.Flags().GetString("server")
	if server == "" {
		server = rt.cfg.Server.URL
	}
	if server == "" {
		var err error
		server, err = promptLine(cmd, reader, "Server URL: ")
		if err != nil {
			return err
		}
	}

	email, _ := cmd.Flags().GetString("email")
	if email == "" {
		email = rt.cfg.Server.Email
	}
	if email == "" {
		var err error
		email, err = promptLine(cmd, reader, "Email: ")
		if err != nil {
			return err
		}
	}

	apiKey, err := promptAPIKey(cmd, reader)
	if err != nil {
		return err
	}

	creds := &config.Credentials{
		Server:    strings.TrimSpace(server),
		Email:     strings.TrimSpace(email),
		APIKey:    strings.TrimSpace(apiKey),
		UpdatedAt: time.Now().UTC(),
	}
	if !creds.IsComplete() {
		return fmt.Errorf("server, email and API key are all required")
	}

	if skip, _ := cmd.Flags().GetBool("no-verify"); !skip {
		if err := verifyLogin(cmd.Context(), creds); err != nil {
			return err
		}
	}

	if err := rt.cfg.EnsureDirectories(); err != nil {
		return err
	}
	if err := config.SaveCredentials(rt.cfg.CredentialsPath(), creds); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s on %s\n", creds.Email, creds.Server)
	return nil
}

// verifyLogin registers and immediately deletes a throwaway queue to
// prove the credentials work.
func verifyLogin(ctx context.Context, creds *config.Credentials) error {
	client, err := api.NewClient(creds.Server, creds.Email, creds.APIKey)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	resp, err := client.Register(ctx)
	if err != nil {
		return fmt.Errorf("login check failed: %w", err)
	}
	return client.DeleteQueue(ctx, resp.QueueID)
}

func promptLine(cmd *cobra.Command, reader *bufio.Reader, prompt string) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), prompt)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// promptAPIKey reads the key without echo when stdin is a terminal, and
// falls back to a plain line read for piped input.
func promptAPIKey(cmd *cobra.Command, reader *bufio.Reader) (string, error) {
	if file, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		fmt.Fprint(cmd.OutOrStdout(), "API key: ")
		key, err := term.ReadPassword(int(file.Fd()))
		fmt.Fprintln(cmd.OutOrStdout())
		if err != nil {
			return "", fmt.Errorf("failed to read API key: %w", err)
		}
		return string(key), nil
	}
	return promptLine(cmd, reader, "API key: ")
}
