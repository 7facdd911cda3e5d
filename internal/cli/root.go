// Package cli implements the zulip command-line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/Arch0125/zulip-mobile/internal/config"
	"github.com/Arch0125/zulip-mobile/internal/logging"
)

// Execute runs the CLI with the given version string.
func Execute(version string) error {
	return NewRootCmd(version).Execute()
}

// NewRootCmd builds the root command and wires all subcommands.
func NewRootCmd(version string) *cobra.Command {
	rt := &runtime{}

	cmd := &cobra.Command{
		Use:           "zulip",
		Short:         "Terminal Zulip client with live unread tracking",
		Long:          "zulip keeps per-conversation unread counts in sync with a Zulip server and renders them in the terminal.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
		// Bare invocation opens the dashboard.
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUI(cmd.Context(), rt)
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rt.loadConfig(cmd)
			if err != nil {
				return err
			}

			level := cfg.Logging.Level
			if flag, _ := cmd.Flags().GetString("log-level"); flag != "" {
				level = flag
			}
			logging.Init(logging.Config{Level: level, Format: cfg.Logging.Format})
			return nil
		},
	}

	cmd.PersistentFlags().String("config", "", "Config file path (default: "+config.DefaultConfig().Global.ConfigDir+"/config.yaml)")
	cmd.PersistentFlags().String("log-level", "", "Override log level (debug, info, warn, error)")

	cmd.AddCommand(
		newLoginCmd(rt),
		newLogoutCmd(rt),
		newSyncCmd(rt),
		newUnreadsCmd(rt),
		newMessagesCmd(rt),
		newSendCmd(rt),
		newMarkReadCmd(rt),
		newUICmd(rt),
	)

	return cmd
}
