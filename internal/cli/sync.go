package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Arch0125/zulip-mobile/internal/events"
	"github.com/Arch0125/zulip-mobile/internal/session"
)

func newSyncCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run a live session and keep the local cache current",
		Long:  "Registers an event queue and applies the event stream to the unread index and the local cache until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd, rt)
		},
	}
	cmd.Flags().Duration("for", 0, "Stop after this duration instead of running until interrupted")
	return cmd
}

func runSync(cmd *cobra.Command, rt *runtime) error {
	client, err := rt.client()
	if err != nil {
		return err
	}
	st, err := rt.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if d, _ := cmd.Flags().GetDuration("for"); d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	s := session.New(client, st, events.ConsumerConfig{
		RetryBackoff:    rt.cfg.Events.RetryBackoff,
		MaxRetryBackoff: rt.cfg.Events.MaxRetryBackoff,
	})

	fmt.Fprintln(cmd.OutOrStdout(), "Syncing, press Ctrl-C to stop")
	err = s.Run(ctx)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		err = nil
	}
	if err != nil {
		return err
	}

	state := s.Snapshot()
	fmt.Fprintf(cmd.OutOrStdout(), "Stopped at %s with %d unread messages\n",
		time.Now().Format("15:04:05"), state.Total())
	return nil
}
