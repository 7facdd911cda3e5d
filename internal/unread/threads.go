package unread

// threadsAppend records a newly arrived unread direct message under its
// thread key, creating the thread at the end of the list on first use.
func threadsAppend(threads ThreadList, key string, id int64) (ThreadList, bool) {
	next := make(ThreadList, len(threads), len(threads)+1)
	copy(next, threads)

	for i := range next {
		if next[i].Key != key {
			continue
		}
		old := next[i].MessageIDs
		ids := make([]int64, len(old)+1)
		copy(ids, old)
		ids[len(old)] = id
		next[i] = Thread{Key: key, MessageIDs: ids}
		return next, true
	}

	next = append(next, Thread{Key: key, MessageIDs: []int64{id}})
	return next, true
}

// threadsRemove deletes the given IDs from every thread they appear in,
// pruning threads that become empty. Returns the original list unchanged
// when no listed ID is present.
func threadsRemove(threads ThreadList, ids []int64) (ThreadList, bool) {
	if len(ids) == 0 || len(threads) == 0 {
		return threads, false
	}

	set := idSet(ids)
	present := false
	for _, thread := range threads {
		for _, id := range thread.MessageIDs {
			if _, ok := set[id]; ok {
				present = true
				break
			}
		}
		if present {
			break
		}
	}
	if !present {
		return threads, false
	}

	next := make(ThreadList, 0, len(threads))
	for _, thread := range threads {
		filtered, removed := filterIDs(thread.MessageIDs, set)
		if !removed {
			next = append(next, thread)
			continue
		}
		if len(filtered) == 0 {
			continue
		}
		next = append(next, Thread{Key: thread.Key, MessageIDs: filtered})
	}
	return next, true
}

// threadsReset clears all direct-message unread state.
func threadsReset(threads ThreadList) (ThreadList, bool) {
	if len(threads) == 0 {
		return threads, false
	}
	return ThreadList{}, true
}
