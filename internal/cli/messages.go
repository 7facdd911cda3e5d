package cli

import (
	"fmt"
	"strconv"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/Arch0125/zulip-mobile/internal/store"
)

const messagePreviewWidth = 60

func newMessagesCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "messages",
		Short: "Show cached messages for one topic",
		Long:  "Renders messages mirrored into the local cache by sync, scoped to a single stream topic.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMessages(cmd, rt)
		},
	}
	cmd.Flags().Int64("stream-id", 0, "Stream ID holding the topic")
	cmd.Flags().String("topic", "", "Topic name")
	cmd.Flags().Int("limit", 0, "Maximum number of messages to show")
	return cmd
}

func runMessages(cmd *cobra.Command, rt *runtime) error {
	streamID, _ := cmd.Flags().GetInt64("stream-id")
	topic, _ := cmd.Flags().GetString("topic")
	limit, _ := cmd.Flags().GetInt("limit")
	if streamID == 0 || topic == "" {
		return fmt.Errorf("messages requires --stream-id and --topic")
	}

	st, err := rt.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	msgs, err := store.NewMessageRepository(st).ListTopic(cmd.Context(), streamID, topic, limit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(msgs) == 0 {
		fmt.Fprintf(out, "No cached messages for stream %d > %s, run sync first\n", streamID, topic)
		return nil
	}

	rows := make([][]string, 0, len(msgs))
	for _, msg := range msgs {
		rows = append(rows, []string{
			strconv.FormatInt(msg.ID, 10),
			strconv.FormatInt(msg.SenderID, 10),
			msg.Time().Format("2006-01-02 15:04"),
			runewidth.Truncate(msg.Content, messagePreviewWidth, "..."),
		})
	}
	return writeTable(out, []string{"ID", "SENDER", "SENT", "CONTENT"}, rows)
}
