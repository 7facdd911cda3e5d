// Package unread maintains the client's unread-message indexes.
//
// The indexes are a derived cache over the server's event stream: an ID
// is present iff the corresponding message exists, is not deleted, and
// is flagged unread for the viewing user. State values are immutable
// once built; every change produces a new version while old versions
// stay valid for readers holding them. When an event has no effect the
// maintainer returns the previous *State pointer unchanged, which
// downstream consumers use to skip recomputation. That is a required
// contract, not an optimization detail.
package unread

import (
	"strconv"

	"github.com/Arch0125/zulip-mobile/internal/models"
)

// TopicMap maps a topic name to its unread message IDs, ascending.
type TopicMap map[string][]int64

// StreamMap maps a stream ID to its per-topic unread lists. An empty
// topic list or topic map is never retained.
type StreamMap map[int64]TopicMap

// Thread holds the unread message IDs of one direct-message thread,
// keyed by the canonical participant signature.
type Thread struct {
	Key        string
	MessageIDs []int64
}

// ThreadList is an ordered sequence of direct-message threads.
type ThreadList []Thread

// MentionSet is the set of unread message IDs mentioning the viewer.
type MentionSet map[int64]struct{}

// State is the aggregate of the four unread sub-indexes. The sub-states
// share no references beyond message IDs drawn from the same universe.
type State struct {
	Streams  StreamMap
	Pms      ThreadList
	Huddles  ThreadList
	Mentions MentionSet
}

// NewState returns an empty aggregate, as held before registration and
// after logout or account switch.
func NewState() *State {
	return &State{
		Streams:  StreamMap{},
		Pms:      ThreadList{},
		Huddles:  ThreadList{},
		Mentions: MentionSet{},
	}
}

// FromSnapshot replaces all unread state from a registration snapshot.
// The server delivers each entry's message IDs pre-sorted ascending, so
// no re-sort is performed.
func FromSnapshot(snap models.UnreadSnapshot) *State {
	streams := make(StreamMap, len(snap.Streams))
	for _, entry := range snap.Streams {
		if len(entry.UnreadMessageIDs) == 0 {
			continue
		}
		topics := streams[entry.StreamID]
		if topics == nil {
			topics = TopicMap{}
			streams[entry.StreamID] = topics
		}
		topics[entry.Topic] = copyIDs(entry.UnreadMessageIDs)
	}

	pms := make(ThreadList, 0, len(snap.Pms))
	for _, entry := range snap.Pms {
		if len(entry.UnreadMessageIDs) == 0 {
			continue
		}
		pms = append(pms, Thread{
			Key:        strconv.FormatInt(entry.SenderID, 10),
			MessageIDs: copyIDs(entry.UnreadMessageIDs),
		})
	}

	huddles := make(ThreadList, 0, len(snap.Huddles))
	for _, entry := range snap.Huddles {
		if len(entry.UnreadMessageIDs) == 0 {
			continue
		}
		huddles = append(huddles, Thread{
			Key:        entry.UserIDs,
			MessageIDs: copyIDs(entry.UnreadMessageIDs),
		})
	}

	mentions := make(MentionSet, len(snap.Mentions))
	for _, id := range snap.Mentions {
		mentions[id] = struct{}{}
	}

	return &State{
		Streams:  streams,
		Pms:      pms,
		Huddles:  huddles,
		Mentions: mentions,
	}
}

func copyIDs(ids []int64) []int64 {
	out := make([]int64, len(ids))
	copy(out, ids)
	return out
}

func idSet(ids []int64) map[int64]struct{} {
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
