package unread

// mentionsAdd records an unread message that mentions the viewer.
func mentionsAdd(mentions MentionSet, id int64) (MentionSet, bool) {
	if _, ok := mentions[id]; ok {
		return mentions, false
	}
	next := make(MentionSet, len(mentions)+1)
	for k := range mentions {
		next[k] = struct{}{}
	}
	next[id] = struct{}{}
	return next, true
}

// mentionsRemove drops the given IDs from the mention set.
func mentionsRemove(mentions MentionSet, ids []int64) (MentionSet, bool) {
	if len(mentions) == 0 {
		return mentions, false
	}

	present := false
	for _, id := range ids {
		if _, ok := mentions[id]; ok {
			present = true
			break
		}
	}
	if !present {
		return mentions, false
	}

	set := idSet(ids)
	next := make(MentionSet, len(mentions))
	for k := range mentions {
		if _, ok := set[k]; ok {
			continue
		}
		next[k] = struct{}{}
	}
	return next, true
}

// mentionsReset clears the mention set.
func mentionsReset(mentions MentionSet) (MentionSet, bool) {
	if len(mentions) == 0 {
		return mentions, false
	}
	return MentionSet{}, true
}
