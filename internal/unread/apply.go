package unread

import (
	"github.com/Arch0125/zulip-mobile/internal/logging"
	"github.com/Arch0125/zulip-mobile/internal/models"
)

var log = logging.Component("unread")

// Apply routes one server event through every sub-index and returns the
// next aggregate. Events are applied one at a time in arrival order;
// the caller owns that ordering. When no sub-index changed, the original
// *State pointer is returned so observers can skip recomputation.
//
// Malformed events are logged and discarded rather than failed on: the
// server validates events before delivery, so a violation here means a
// gap in our model of the protocol, not a recoverable client error.
func Apply(s *State, ev *models.Event, ownUserID int64) *State {
	switch ev.Type {
	case models.EventTypeMessage:
		return applyMessage(s, ev, ownUserID)
	case models.EventTypeUpdateMessage:
		return applyUpdateMessage(s, ev)
	case models.EventTypeDeleteMessage:
		return applyDeleteMessage(s, ev)
	case models.EventTypeUpdateMessageFlags:
		return applyFlags(s, ev)
	default:
		// Reactions, submessages, heartbeats and realm events do not
		// affect unread counts.
		return s
	}
}

func applyMessage(s *State, ev *models.Event, ownUserID int64) *State {
	var payload models.MessageEvent
	if err := ev.Decode(&payload); err != nil {
		log.Warn().Err(err).Int64("event_id", ev.ID).Msg("dropping undecodable message event")
		return s
	}
	if err := payload.Validate(); err != nil {
		log.Warn().Err(err).Int64("event_id", ev.ID).Msg("dropping invalid message event")
		return s
	}
	if models.HasFlag(payload.Flags, models.FlagRead) {
		return s
	}

	msg := &payload.Message
	streams, streamsChanged := s.Streams, false
	pms, pmsChanged := s.Pms, false
	huddles, huddlesChanged := s.Huddles, false

	switch {
	case msg.IsStream():
		streams, streamsChanged = streamsAppend(s.Streams, msg.StreamID, msg.Subject, msg.ID)
	case msg.IsHuddle():
		huddles, huddlesChanged = threadsAppend(s.Huddles, models.HuddleKeyForMessage(msg), msg.ID)
	case msg.Type == models.MessageTypePrivate:
		pms, pmsChanged = threadsAppend(s.Pms, models.PmKey(msg, ownUserID), msg.ID)
	default:
		return s
	}

	mentions, mentionsChanged := s.Mentions, false
	if models.IsMentioned(payload.Flags) {
		mentions, mentionsChanged = mentionsAdd(s.Mentions, msg.ID)
	}

	if !streamsChanged && !pmsChanged && !huddlesChanged && !mentionsChanged {
		return s
	}
	return &State{Streams: streams, Pms: pms, Huddles: huddles, Mentions: mentions}
}

func applyUpdateMessage(s *State, ev *models.Event) *State {
	var payload models.UpdateMessageEvent
	if err := ev.Decode(&payload); err != nil {
		log.Warn().Err(err).Int64("event_id", ev.ID).Msg("dropping undecodable update_message event")
		return s
	}
	if !payload.IsMove() {
		return s
	}

	// A move needs the old coordinates to locate the prior slot.
	if payload.StreamID == nil || payload.OrigSubject == nil {
		log.Warn().
			Int64("event_id", ev.ID).
			Msg("update_message move lacks original stream/topic, skipping unread reindex")
		return s
	}

	fromStream := *payload.StreamID
	fromTopic := *payload.OrigSubject
	toStream := fromStream
	if payload.NewStreamID != nil {
		toStream = *payload.NewStreamID
	}
	toTopic := fromTopic
	if payload.Subject != nil {
		toTopic = *payload.Subject
	}

	streams, changed := streamsMove(s.Streams, fromStream, fromTopic, toStream, toTopic, payload.MessageIDs)
	if !changed {
		return s
	}
	return &State{Streams: streams, Pms: s.Pms, Huddles: s.Huddles, Mentions: s.Mentions}
}

func applyDeleteMessage(s *State, ev *models.Event) *State {
	var payload models.DeleteMessageEvent
	if err := ev.Decode(&payload); err != nil {
		log.Warn().Err(err).Int64("event_id", ev.ID).Msg("dropping undecodable delete_message event")
		return s
	}
	if err := payload.Validate(); err != nil {
		log.Warn().Err(err).Int64("event_id", ev.ID).Msg("dropping invalid delete_message event")
		return s
	}
	return removeEverywhere(s, payload.MessageIDs)
}

func applyFlags(s *State, ev *models.Event) *State {
	var payload models.UpdateMessageFlagsEvent
	if err := ev.Decode(&payload); err != nil {
		log.Warn().Err(err).Int64("event_id", ev.ID).Msg("dropping undecodable update_message_flags event")
		return s
	}
	if err := payload.Validate(); err != nil {
		log.Warn().Err(err).Int64("event_id", ev.ID).Msg("dropping invalid update_message_flags event")
		return s
	}
	if payload.Flag != models.FlagRead {
		return s
	}
	// The protocol has no way to un-read a message once read.
	if payload.Op == models.FlagOpRemove {
		return s
	}

	if payload.All {
		streams, a := streamsReset(s.Streams)
		pms, b := threadsReset(s.Pms)
		huddles, c := threadsReset(s.Huddles)
		mentions, d := mentionsReset(s.Mentions)
		if !a && !b && !c && !d {
			return s
		}
		return &State{Streams: streams, Pms: pms, Huddles: huddles, Mentions: mentions}
	}

	return removeEverywhere(s, payload.Messages)
}

func removeEverywhere(s *State, ids []int64) *State {
	streams, a := streamsRemove(s.Streams, ids)
	pms, b := threadsRemove(s.Pms, ids)
	huddles, c := threadsRemove(s.Huddles, ids)
	mentions, d := mentionsRemove(s.Mentions, ids)
	if !a && !b && !c && !d {
		return s
	}
	return &State{Streams: streams, Pms: pms, Huddles: huddles, Mentions: mentions}
}
