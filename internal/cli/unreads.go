package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Arch0125/zulip-mobile/internal/store"
	"github.com/Arch0125/zulip-mobile/internal/unread"
)

func newUnreadsCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unreads",
		Short: "Show unread counts per conversation",
		Long:  "Fetches a fresh unread snapshot from the server, or renders the locally cached one with --cached.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUnreads(cmd, rt)
		},
	}
	cmd.Flags().Bool("cached", false, "Use the locally cached snapshot instead of contacting the server")
	return cmd
}

func runUnreads(cmd *cobra.Command, rt *runtime) error {
	if cached, _ := cmd.Flags().GetBool("cached"); cached {
		return renderCachedUnreads(cmd, rt)
	}
	return renderLiveUnreads(cmd, rt)
}

func renderLiveUnreads(cmd *cobra.Command, rt *runtime) error {
	client, err := rt.client()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	resp, err := client.Register(ctx)
	if err != nil {
		return err
	}
	defer client.DeleteQueue(ctx, resp.QueueID)

	names := make(map[int64]string, len(resp.Subscriptions))
	for _, sub := range resp.Subscriptions {
		names[sub.StreamID] = sub.Name
	}

	return renderUnreads(cmd, unread.FromSnapshot(resp.UnreadMsgs), names, "")
}

func renderCachedUnreads(cmd *cobra.Command, rt *runtime) error {
	st, err := rt.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	cached, err := store.NewUnreadSnapshotRepository(st).Load(cmd.Context())
	if errors.Is(err, store.ErrNoSnapshot) {
		return fmt.Errorf("no cached snapshot, run sync first")
	}
	if err != nil {
		return err
	}

	age := time.Since(cached.SavedAt).Round(time.Second)
	note := fmt.Sprintf("cached %s ago", age)
	return renderUnreads(cmd, unread.FromSnapshot(cached.Snapshot), nil, note)
}

func renderUnreads(cmd *cobra.Command, state *unread.State, names map[int64]string, note string) error {
	out := cmd.OutOrStdout()

	if state.Total() == 0 {
		fmt.Fprintln(out, "No unread messages")
		return nil
	}

	rows := unreadRows(state, names)
	if err := writeTable(out, []string{"CONVERSATION", "UNREAD", "MENTIONS"}, rows); err != nil {
		return err
	}

	fmt.Fprintf(out, "\n%d unread", state.Total())
	if n := state.MentionsCount(); n > 0 {
		fmt.Fprintf(out, ", %d mentions", n)
	}
	if note != "" {
		fmt.Fprintf(out, " (%s)", note)
	}
	fmt.Fprintln(out)
	return nil
}

func unreadRows(state *unread.State, names map[int64]string) [][]string {
	var rows [][]string

	streamIDs := make([]int64, 0, len(state.Streams))
	for id := range state.Streams {
		streamIDs = append(streamIDs, id)
	}
	sort.Slice(streamIDs, func(i, j int) bool {
		return streamLabel(streamIDs[i], names) < streamLabel(streamIDs[j], names)
	})

	for _, streamID := range streamIDs {
		topics := state.Streams[streamID]
		topicNames := make([]string, 0, len(topics))
		for topic := range topics {
			topicNames = append(topicNames, topic)
		}
		sort.Strings(topicNames)

		for _, topic := range topicNames {
			ids := topics[topic]
			rows = append(rows, []string{
				streamLabel(streamID, names) + " > " + topic,
				strconv.Itoa(len(ids)),
				mentionCell(state.Mentions, ids),
			})
		}
	}

	for _, th := range state.Pms {
		rows = append(rows, []string{
			"dm user " + th.Key,
			strconv.Itoa(len(th.MessageIDs)),
			mentionCell(state.Mentions, th.MessageIDs),
		})
	}
	for _, th := range state.Huddles {
		rows = append(rows, []string{
			"group users " + strings.ReplaceAll(th.Key, ",", ", "),
			strconv.Itoa(len(th.MessageIDs)),
			mentionCell(state.Mentions, th.MessageIDs),
		})
	}
	return rows
}

func streamLabel(streamID int64, names map[int64]string) string {
	if name := names[streamID]; name != "" {
		return "#" + name
	}
	return fmt.Sprintf("#stream %d", streamID)
}

func mentionCell(mentions unread.MentionSet, ids []int64) string {
	count := 0
	for _, id := range ids {
		if _, ok := mentions[id]; ok {
			count++
		}
	}
	if count == 0 {
		return ""
	}
	return "@" + strconv.Itoa(count)
}
