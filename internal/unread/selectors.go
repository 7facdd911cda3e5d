package unread

// Read-only selectors over the aggregate. Returned slices alias internal
// state and must not be mutated by callers.

// TopicCount returns the number of unread messages in one topic.
func (s *State) TopicCount(streamID int64, topic string) int {
	return len(s.Streams[streamID][topic])
}

// TopicIDs returns the unread message IDs of one topic, ascending.
func (s *State) TopicIDs(streamID int64, topic string) []int64 {
	return s.Streams[streamID][topic]
}

// StreamCount returns the number of unread messages across all topics
// of one stream.
func (s *State) StreamCount(streamID int64) int {
	total := 0
	for _, ids := range s.Streams[streamID] {
		total += len(ids)
	}
	return total
}

// StreamsTotal returns the number of unread stream messages.
func (s *State) StreamsTotal() int {
	total := 0
	for _, topics := range s.Streams {
		for _, ids := range topics {
			total += len(ids)
		}
	}
	return total
}

// PmIDs returns the unread message IDs of a two-party thread.
func (s *State) PmIDs(key string) []int64 {
	return threadIDs(s.Pms, key)
}

// HuddleIDs returns the unread message IDs of a group thread.
func (s *State) HuddleIDs(key string) []int64 {
	return threadIDs(s.Huddles, key)
}

// PmsTotal returns the number of unread two-party direct messages.
func (s *State) PmsTotal() int {
	return threadsTotal(s.Pms)
}

// HuddlesTotal returns the number of unread group direct messages.
func (s *State) HuddlesTotal() int {
	return threadsTotal(s.Huddles)
}

// MentionsCount returns the number of unread messages mentioning the
// viewer.
func (s *State) MentionsCount() int {
	return len(s.Mentions)
}

// Total returns the overall unread count across all sub-indexes except
// mentions, which overlap the others.
func (s *State) Total() int {
	return s.StreamsTotal() + s.PmsTotal() + s.HuddlesTotal()
}

func threadIDs(threads ThreadList, key string) []int64 {
	for _, thread := range threads {
		if thread.Key == key {
			return thread.MessageIDs
		}
	}
	return nil
}

func threadsTotal(threads ThreadList) int {
	total := 0
	for _, thread := range threads {
		total += len(thread.MessageIDs)
	}
	return total
}
