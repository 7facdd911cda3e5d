package unread

import "sort"

// streamsAppend records a newly arrived unread stream message. New
// messages arrive with increasing IDs, so a plain append keeps each
// topic list sorted without an explicit sort step.
func streamsAppend(streams StreamMap, streamID int64, topic string, id int64) (StreamMap, bool) {
	next := make(StreamMap, len(streams)+1)
	for sid, topics := range streams {
		next[sid] = topics
	}

	topics := make(TopicMap, len(streams[streamID])+1)
	for name, ids := range streams[streamID] {
		topics[name] = ids
	}

	old := topics[topic]
	ids := make([]int64, len(old)+1)
	copy(ids, old)
	ids[len(old)] = id

	topics[topic] = ids
	next[streamID] = topics
	return next, true
}

// streamsRemove deletes the given IDs from every (stream, topic) list
// they appear in, pruning topic lists and stream entries that become
// empty. Returns the original map unchanged when no listed ID is
// present.
func streamsRemove(streams StreamMap, ids []int64) (StreamMap, bool) {
	if len(ids) == 0 || len(streams) == 0 {
		return streams, false
	}

	set := idSet(ids)
	if !streamsContainAny(streams, set) {
		return streams, false
	}

	next := make(StreamMap, len(streams))
	for sid, topics := range streams {
		var nextTopics TopicMap
		changed := false
		for name, list := range topics {
			filtered, removed := filterIDs(list, set)
			if removed {
				changed = true
			}
			if len(filtered) == 0 {
				changed = true
				continue
			}
			if nextTopics == nil {
				nextTopics = make(TopicMap, len(topics))
			}
			nextTopics[name] = filtered
		}
		if !changed {
			next[sid] = topics
			continue
		}
		if len(nextTopics) > 0 {
			next[sid] = nextTopics
		}
	}
	return next, true
}

// streamsReset clears all per-topic unread state.
func streamsReset(streams StreamMap) (StreamMap, bool) {
	if len(streams) == 0 {
		return streams, false
	}
	return StreamMap{}, true
}

// streamsMove relocates the subset of ids currently unread under the old
// (stream, topic) slot to the new slot. The destination list is re-sorted
// because its pre-existing members may be out of relative order with the
// moved IDs.
func streamsMove(streams StreamMap, fromStream int64, fromTopic string, toStream int64, toTopic string, ids []int64) (StreamMap, bool) {
	oldList := streams[fromStream][fromTopic]
	if len(oldList) == 0 {
		return streams, false
	}

	set := idSet(ids)
	remaining, removed := filterIDs(oldList, set)
	if !removed {
		return streams, false
	}

	moved := make([]int64, 0, len(oldList)-len(remaining))
	for _, id := range oldList {
		if _, ok := set[id]; ok {
			moved = append(moved, id)
		}
	}

	next := make(StreamMap, len(streams)+1)
	for sid, topics := range streams {
		next[sid] = topics
	}

	// Remove from the old slot, pruning empties.
	fromTopics := make(TopicMap, len(streams[fromStream]))
	for name, list := range streams[fromStream] {
		fromTopics[name] = list
	}
	if len(remaining) == 0 {
		delete(fromTopics, fromTopic)
	} else {
		fromTopics[fromTopic] = remaining
	}
	if len(fromTopics) == 0 {
		delete(next, fromStream)
	} else {
		next[fromStream] = fromTopics
	}

	// Merge into the new slot.
	toTopics := make(TopicMap, len(next[toStream])+1)
	for name, list := range next[toStream] {
		toTopics[name] = list
	}
	dest := toTopics[toTopic]
	merged := make([]int64, 0, len(dest)+len(moved))
	merged = append(merged, dest...)
	merged = append(merged, moved...)
	sort.Slice(merged, func(i, j int) bool { return merged[i] < merged[j] })
	toTopics[toTopic] = merged
	next[toStream] = toTopics

	return next, true
}

func streamsContainAny(streams StreamMap, set map[int64]struct{}) bool {
	for _, topics := range streams {
		for _, list := range topics {
			for _, id := range list {
				if _, ok := set[id]; ok {
					return true
				}
			}
		}
	}
	return false
}

// filterIDs returns list without the members of set. The second return
// reports whether anything was removed; when false the original slice is
// returned untouched.
func filterIDs(list []int64, set map[int64]struct{}) ([]int64, bool) {
	removeCount := 0
	for _, id := range list {
		if _, ok := set[id]; ok {
			removeCount++
		}
	}
	if removeCount == 0 {
		return list, false
	}

	filtered := make([]int64, 0, len(list)-removeCount)
	for _, id := range list {
		if _, ok := set[id]; !ok {
			filtered = append(filtered, id)
		}
	}
	return filtered, true
}
