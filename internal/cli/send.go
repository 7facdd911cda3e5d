package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func newSendCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "send <message>",
		Short: "Send a message to a stream topic or to users",
		Long: "Send a stream message with --stream and --topic, or a direct message " +
			"with --to (comma-separated emails or user IDs).",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSend(cmd, rt, args[0])
		},
	}
	cmd.Flags().String("stream", "", "Target stream name")
	cmd.Flags().String("topic", "", "Target topic (requires --stream)")
	cmd.Flags().String("to", "", "Direct message recipients, comma-separated")
	return cmd
}

func runSend(cmd *cobra.Command, rt *runtime, content string) error {
	stream, _ := cmd.Flags().GetString("stream")
	topic, _ := cmd.Flags().GetString("topic")
	to, _ := cmd.Flags().GetString("to")

	if (stream == "") == (to == "") {
		return fmt.Errorf("provide either --stream/--topic or --to")
	}
	if stream != "" && topic == "" {
		return fmt.Errorf("--stream requires --topic")
	}

	client, err := rt.client()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	var id int64
	if stream != "" {
		id, err = client.SendStreamMessage(ctx, stream, topic, content)
	} else {
		recipients := strings.Split(to, ",")
		for i := range recipients {
			recipients[i] = strings.TrimSpace(recipients[i])
		}
		id, err = client.SendPrivateMessage(ctx, recipients, content)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Sent message %d\n", id)
	return nil
}
