package unread

import (
	"sort"
	"strconv"

	"github.com/Arch0125/zulip-mobile/internal/models"
)

// ToSnapshot exports the aggregate in the same shape the server delivers
// at registration, so it can be cached and reloaded offline.
func (s *State) ToSnapshot() models.UnreadSnapshot {
	var snap models.UnreadSnapshot

	streamIDs := make([]int64, 0, len(s.Streams))
	for streamID := range s.Streams {
		streamIDs = append(streamIDs, streamID)
	}
	sort.Slice(streamIDs, func(i, j int) bool { return streamIDs[i] < streamIDs[j] })
	for _, streamID := range streamIDs {
		topics := s.Streams[streamID]
		names := make([]string, 0, len(topics))
		for topic := range topics {
			names = append(names, topic)
		}
		sort.Strings(names)
		for _, topic := range names {
			snap.Streams = append(snap.Streams, models.UnreadStreamSnapshot{
				StreamID:         streamID,
				Topic:            topic,
				UnreadMessageIDs: copyIDs(topics[topic]),
			})
		}
	}

	for _, th := range s.Pms {
		senderID, err := strconv.ParseInt(th.Key, 10, 64)
		if err != nil {
			continue
		}
		snap.Pms = append(snap.Pms, models.UnreadPmSnapshot{
			SenderID:         senderID,
			UnreadMessageIDs: copyIDs(th.MessageIDs),
		})
	}

	for _, th := range s.Huddles {
		snap.Huddles = append(snap.Huddles, models.UnreadHuddleSnapshot{
			UserIDs:          th.Key,
			UnreadMessageIDs: copyIDs(th.MessageIDs),
		})
	}

	if len(s.Mentions) > 0 {
		mentions := make([]int64, 0, len(s.Mentions))
		for id := range s.Mentions {
			mentions = append(mentions, id)
		}
		sort.Slice(mentions, func(i, j int) bool { return mentions[i] < mentions[j] })
		snap.Mentions = mentions
	}

	return snap
}
