package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Arch0125/zulip-mobile/internal/events"
	"github.com/Arch0125/zulip-mobile/internal/session"
	"github.com/Arch0125/zulip-mobile/internal/tui"
)

func newUICmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "ui",
		Short: "Open the live unreads dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUI(cmd.Context(), rt)
		},
	}
}

// runUI starts a live session in the background and blocks in the
// dashboard until the user quits.
func runUI(ctx context.Context, rt *runtime) error {
	if !hasTTY() {
		return fmt.Errorf("the dashboard requires an interactive terminal")
	}

	client, err := rt.client()
	if err != nil {
		return err
	}
	st, err := rt.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	s := session.New(client, st, events.ConsumerConfig{
		RetryBackoff:    rt.cfg.Events.RetryBackoff,
		MaxRetryBackoff: rt.cfg.Events.MaxRetryBackoff,
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sessionDone := make(chan error, 1)
	go func() {
		sessionDone <- s.Run(ctx)
	}()

	uiErr := tui.Run(s, client, tui.Config{RefreshInterval: rt.cfg.TUI.RefreshInterval})

	cancel()
	sessionErr := <-sessionDone
	if errors.Is(sessionErr, context.Canceled) {
		sessionErr = nil
	}
	return errors.Join(uiErr, sessionErr)
}

func hasTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}
