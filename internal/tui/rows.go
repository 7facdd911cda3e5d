package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Arch0125/zulip-mobile/internal/unread"
)

type rowKind int

const (
	rowSectionHeader rowKind = iota
	rowTopic
	rowPm
	rowHuddle
	rowEmpty
)

// row is one rendered line of the unreads list. Only conversation rows
// are selectable.
type row struct {
	kind    rowKind
	label   string
	detail  string
	count   int
	ids     []int64
	mention bool
}

func (r row) selectable() bool {
	return r.kind == rowTopic || r.kind == rowPm || r.kind == rowHuddle
}

// buildRows flattens the aggregate into display order: streams sorted
// by name with their topics, then direct messages, then group messages.
func buildRows(state *unread.State, nameFor func(int64) string) []row {
	var rows []row

	type streamEntry struct {
		id   int64
		name string
	}
	streams := make([]streamEntry, 0, len(state.Streams))
	for streamID := range state.Streams {
		name := nameFor(streamID)
		if name == "" {
			name = fmt.Sprintf("stream %d", streamID)
		}
		streams = append(streams, streamEntry{id: streamID, name: name})
	}
	sort.Slice(streams, func(i, j int) bool {
		if streams[i].name != streams[j].name {
			return streams[i].name < streams[j].name
		}
		return streams[i].id < streams[j].id
	})

	for _, s := range streams {
		topics := state.Streams[s.id]
		names := make([]string, 0, len(topics))
		for topic := range topics {
			names = append(names, topic)
		}
		sort.Strings(names)

		rows = append(rows, row{
			kind:  rowSectionHeader,
			label: s.name,
			count: state.StreamCount(s.id),
		})
		for _, topic := range names {
			ids := topics[topic]
			rows = append(rows, row{
				kind:    rowTopic,
				label:   topic,
				detail:  s.name,
				count:   len(ids),
				ids:     ids,
				mention: containsAny(state.Mentions, ids),
			})
		}
	}

	if len(state.Pms) > 0 {
		rows = append(rows, row{kind: rowSectionHeader, label: "Direct messages", count: state.PmsTotal()})
		for _, th := range state.Pms {
			rows = append(rows, row{
				kind:    rowPm,
				label:   "user " + th.Key,
				count:   len(th.MessageIDs),
				ids:     th.MessageIDs,
				mention: containsAny(state.Mentions, th.MessageIDs),
			})
		}
	}

	if len(state.Huddles) > 0 {
		rows = append(rows, row{kind: rowSectionHeader, label: "Group messages", count: state.HuddlesTotal()})
		for _, th := range state.Huddles {
			rows = append(rows, row{
				kind:    rowHuddle,
				label:   "users " + strings.ReplaceAll(th.Key, ",", ", "),
				count:   len(th.MessageIDs),
				ids:     th.MessageIDs,
				mention: containsAny(state.Mentions, th.MessageIDs),
			})
		}
	}

	if len(rows) == 0 {
		rows = append(rows, row{kind: rowEmpty, label: "No unread messages"})
	}
	return rows
}

func containsAny(mentions unread.MentionSet, ids []int64) bool {
	for _, id := range ids {
		if _, ok := mentions[id]; ok {
			return true
		}
	}
	return false
}

// firstSelectable returns the index of the first selectable row, or -1.
func firstSelectable(rows []row) int {
	for i, r := range rows {
		if r.selectable() {
			return i
		}
	}
	return -1
}

// nearestSelectable clamps cursor to a selectable row after a rebuild,
// preferring the same or next position.
func nearestSelectable(rows []row, cursor int) int {
	if len(rows) == 0 {
		return -1
	}
	if cursor < 0 {
		cursor = 0
	}
	if cursor >= len(rows) {
		cursor = len(rows) - 1
	}
	for i := cursor; i < len(rows); i++ {
		if rows[i].selectable() {
			return i
		}
	}
	for i := cursor - 1; i >= 0; i-- {
		if rows[i].selectable() {
			return i
		}
	}
	return -1
}
