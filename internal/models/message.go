package models

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// MessageType distinguishes channel messages from direct messages.
type MessageType string

const (
	MessageTypeStream  MessageType = "stream"
	MessageTypePrivate MessageType = "private"
)

// Message flags set by the server for the viewing user.
const (
	FlagRead              = "read"
	FlagStarred           = "starred"
	FlagMentioned         = "mentioned"
	FlagWildcardMentioned = "wildcard_mentioned"
	FlagHasAlertWord      = "has_alert_word"
)

// Recipient is one participant of a private-message thread as delivered
// in a message's display_recipient field.
type Recipient struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

// Message is a single chat message as delivered by the server.
type Message struct {
	ID         int64       `json:"id"`
	Type       MessageType `json:"type"`
	SenderID   int64       `json:"sender_id"`
	SenderName string      `json:"sender_full_name,omitempty"`
	StreamID   int64       `json:"stream_id,omitempty"`
	Subject    string      `json:"subject,omitempty"`
	Content    string      `json:"content,omitempty"`
	Timestamp  int64       `json:"timestamp"`
	Recipients []Recipient `json:"display_recipient,omitempty"`
}

// Time returns the message timestamp as a time.Time.
func (m *Message) Time() time.Time {
	return time.Unix(m.Timestamp, 0).UTC()
}

// IsStream reports whether the message belongs to a stream.
func (m *Message) IsStream() bool {
	return m.Type == MessageTypeStream
}

// HasFlag reports whether the given flag is present in flags.
func HasFlag(flags []string, flag string) bool {
	for _, f := range flags {
		if f == flag {
			return true
		}
	}
	return false
}

// IsMentioned reports whether the flags carry a direct or wildcard mention.
func IsMentioned(flags []string) bool {
	return HasFlag(flags, FlagMentioned) || HasFlag(flags, FlagWildcardMentioned)
}

// PmKey returns the canonical thread key for a two-party private message:
// the other party's user ID, or the viewer's own ID for self-PMs.
func PmKey(m *Message, ownUserID int64) string {
	for _, r := range m.Recipients {
		if r.ID != ownUserID {
			return strconv.FormatInt(r.ID, 10)
		}
	}
	return strconv.FormatInt(ownUserID, 10)
}

// HuddleKey returns the canonical thread key for a group private message:
// all participant IDs (viewer included), sorted ascending and joined with
// commas. The same participant set always yields the same key.
func HuddleKey(userIDs []int64) string {
	ids := make([]int64, len(userIDs))
	copy(ids, userIDs)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}

// HuddleKeyForMessage builds the huddle key from a message's recipient list.
func HuddleKeyForMessage(m *Message) string {
	ids := make([]int64, 0, len(m.Recipients))
	for _, r := range m.Recipients {
		ids = append(ids, r.ID)
	}
	return HuddleKey(ids)
}

// IsHuddle reports whether a private message involves three or more
// participants.
func (m *Message) IsHuddle() bool {
	return m.Type == MessageTypePrivate && len(m.Recipients) > 2
}
