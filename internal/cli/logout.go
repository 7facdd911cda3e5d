package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Arch0125/zulip-mobile/internal/config"
	"github.com/Arch0125/zulip-mobile/internal/store"
)

func newLogoutCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove stored credentials and the local cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogout(cmd, rt)
		},
	}
}

func runLogout(cmd *cobra.Command, rt *runtime) error {
	if err := config.DeleteCredentials(rt.cfg.CredentialsPath()); err != nil {
		return err
	}

	if err := clearCache(cmd.Context(), rt); err != nil {
		return fmt.Errorf("credentials removed but cache cleanup failed: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
	return nil
}

func clearCache(ctx context.Context, rt *runtime) error {
	st, err := store.Open(rt.cfg.CachePath())
	if err != nil {
		// No cache file is fine on a fresh install.
		return nil
	}
	defer st.Close()

	return errors.Join(
		store.NewMessageRepository(st).Clear(ctx),
		store.NewUnreadSnapshotRepository(st).Clear(ctx),
	)
}
