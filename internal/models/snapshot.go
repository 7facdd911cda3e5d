package models

// UnreadStreamSnapshot is one (stream, topic) entry of the registration
// snapshot. Message IDs arrive pre-sorted ascending from the server.
type UnreadStreamSnapshot struct {
	StreamID         int64   `json:"stream_id"`
	Topic            string  `json:"topic"`
	UnreadMessageIDs []int64 `json:"unread_message_ids"`
}

// UnreadPmSnapshot is one two-party thread entry of the snapshot.
type UnreadPmSnapshot struct {
	SenderID         int64   `json:"sender_id"`
	UnreadMessageIDs []int64 `json:"unread_message_ids"`
}

// UnreadHuddleSnapshot is one group-thread entry of the snapshot. UserIDs
// is the server's canonical comma-joined sorted participant list.
type UnreadHuddleSnapshot struct {
	UserIDs          string  `json:"user_ids_string"`
	UnreadMessageIDs []int64 `json:"unread_message_ids"`
}

// UnreadSnapshot is the full unread-message state delivered at
// registration. It is authoritative: the client replaces any prior
// unread state with it wholesale.
type UnreadSnapshot struct {
	Streams  []UnreadStreamSnapshot `json:"streams"`
	Pms      []UnreadPmSnapshot     `json:"pms"`
	Huddles  []UnreadHuddleSnapshot `json:"huddles"`
	Mentions []int64                `json:"mentions"`
}

// Subscription is one stream the user is subscribed to.
type Subscription struct {
	StreamID int64  `json:"stream_id"`
	Name     string `json:"name"`
	Color    string `json:"color,omitempty"`
	Muted    bool   `json:"is_muted,omitempty"`
}

// RegisterResponse is the server's reply to a queue registration.
type RegisterResponse struct {
	QueueID       string         `json:"queue_id"`
	LastEventID   int64          `json:"last_event_id"`
	UserID        int64          `json:"user_id"`
	UnreadMsgs    UnreadSnapshot `json:"unread_msgs"`
	Subscriptions []Subscription `json:"subscriptions,omitempty"`
	MaxMessageID  int64          `json:"max_message_id,omitempty"`
}
