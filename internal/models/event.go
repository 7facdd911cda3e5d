package models

import (
	"encoding/json"
	"fmt"
)

// EventType categorizes events delivered by the server event queue.
type EventType string

const (
	// Message events
	EventTypeMessage            EventType = "message"
	EventTypeUpdateMessage      EventType = "update_message"
	EventTypeDeleteMessage      EventType = "delete_message"
	EventTypeUpdateMessageFlags EventType = "update_message_flags"
	EventTypeReaction           EventType = "reaction"
	EventTypeSubmessage         EventType = "submessage"

	// Session events
	EventTypeHeartbeat EventType = "heartbeat"

	// Realm events
	EventTypeRealmUser    EventType = "realm_user"
	EventTypeSubscription EventType = "subscription"
	EventTypePresence     EventType = "presence"
)

// Flag-update operations.
const (
	FlagOpAdd    = "add"
	FlagOpRemove = "remove"
)

// Event is one envelope from the server event stream. The payload remains
// raw JSON until decoded by the consumer for its concrete type; the full
// envelope is retained so unknown event types pass through untouched.
type Event struct {
	// ID is the queue-local sequence number assigned by the server.
	// Strictly increasing within a queue.
	ID int64 `json:"id"`

	// Type categorizes the event.
	Type EventType `json:"type"`

	// Raw is the complete event object as received.
	Raw json.RawMessage `json:"-"`
}

// UnmarshalJSON keeps the raw envelope alongside the decoded header fields.
func (e *Event) UnmarshalJSON(data []byte) error {
	type header struct {
		ID   int64     `json:"id"`
		Type EventType `json:"type"`
	}
	var h header
	if err := json.Unmarshal(data, &h); err != nil {
		return err
	}
	e.ID = h.ID
	e.Type = h.Type
	e.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// MessageEvent signals a newly arrived message.
type MessageEvent struct {
	Message Message  `json:"message"`
	Flags   []string `json:"flags"`
}

// UpdateMessageEvent signals an edit. For topic or stream moves the server
// includes the original coordinates and the full set of moved message IDs.
// Pointer fields distinguish "absent" from zero values.
type UpdateMessageEvent struct {
	MessageID   int64   `json:"message_id"`
	StreamID    *int64  `json:"stream_id,omitempty"`
	NewStreamID *int64  `json:"new_stream_id,omitempty"`
	OrigSubject *string `json:"orig_subject,omitempty"`
	Subject     *string `json:"subject,omitempty"`
	Content     *string `json:"content,omitempty"`
	MessageIDs  []int64 `json:"message_ids,omitempty"`
}

// IsMove reports whether the edit changes the stream or topic.
func (e *UpdateMessageEvent) IsMove() bool {
	if e.NewStreamID != nil && e.StreamID != nil && *e.NewStreamID != *e.StreamID {
		return true
	}
	return e.OrigSubject != nil && e.Subject != nil && *e.OrigSubject != *e.Subject
}

// DeleteMessageEvent signals permanent removal of messages.
type DeleteMessageEvent struct {
	MessageIDs []int64 `json:"message_ids"`
}

// UpdateMessageFlagsEvent signals a flag toggle for the viewing user.
type UpdateMessageFlagsEvent struct {
	Flag     string  `json:"flag"`
	Op       string  `json:"op"`
	All      bool    `json:"all"`
	Messages []int64 `json:"messages"`
}

// ReactionEvent signals an emoji reaction added or removed on a message.
type ReactionEvent struct {
	Op        string `json:"op"`
	MessageID int64  `json:"message_id"`
	UserID    int64  `json:"user_id"`
	EmojiName string `json:"emoji_name"`
	EmojiCode string `json:"emoji_code"`
}

// SubmessageEvent signals a submessage (widget payload) appended to a message.
type SubmessageEvent struct {
	SubmessageID int64  `json:"submessage_id"`
	MessageID    int64  `json:"message_id"`
	SenderID     int64  `json:"sender_id"`
	MsgType      string `json:"msg_type"`
	Content      string `json:"content"`
}

// Decode unmarshals the raw envelope into the given payload struct.
func (e *Event) Decode(v any) error {
	if len(e.Raw) == 0 {
		return fmt.Errorf("event %d has no payload", e.ID)
	}
	if err := json.Unmarshal(e.Raw, v); err != nil {
		return fmt.Errorf("failed to decode %s event %d: %w", e.Type, e.ID, err)
	}
	return nil
}
