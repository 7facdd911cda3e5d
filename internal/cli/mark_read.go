package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

func newMarkReadCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mark-read [message-id...]",
		Short: "Mark messages read on the server",
		Long: "Marks the given message IDs read. With --all every message is marked " +
			"read, with --stream a whole stream. The unread index picks the change " +
			"up from the resulting flag event.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMarkRead(cmd, rt, args)
		},
	}
	cmd.Flags().Bool("all", false, "Mark everything read")
	cmd.Flags().Int64("stream", 0, "Mark one stream read by ID")
	return cmd
}

func runMarkRead(cmd *cobra.Command, rt *runtime, args []string) error {
	all, _ := cmd.Flags().GetBool("all")
	streamID, _ := cmd.Flags().GetInt64("stream")

	modes := 0
	if all {
		modes++
	}
	if streamID != 0 {
		modes++
	}
	if len(args) > 0 {
		modes++
	}
	if modes != 1 {
		return fmt.Errorf("provide message IDs, --stream, or --all")
	}

	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, parseErr := strconv.ParseInt(arg, 10, 64)
		if parseErr != nil {
			return fmt.Errorf("invalid message ID %q", arg)
		}
		ids = append(ids, id)
	}

	client, err := rt.client()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	switch {
	case all:
		err = client.MarkAllRead(ctx)
	case streamID != 0:
		err = client.MarkStreamRead(ctx, streamID)
	default:
		err = client.MarkRead(ctx, ids)
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Marked read")
	return nil
}
