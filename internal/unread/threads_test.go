package unread

import "testing"

func TestThreadsAppendKeepsOrder(t *testing.T) {
	threads := ThreadList{}

	threads, _ = threadsAppend(threads, "42", 1)
	threads, _ = threadsAppend(threads, "99", 2)
	threads, _ = threadsAppend(threads, "42", 3)

	if len(threads) != 2 {
		t.Fatalf("expected 2 threads, got %d", len(threads))
	}
	if threads[0].Key != "42" || threads[1].Key != "99" {
		t.Fatalf("thread order changed: %+v", threads)
	}
	ids := threads[0].MessageIDs
	if len(ids) != 2 || ids[0] != 1 || ids[1] != 3 {
		t.Fatalf("thread ids: %v", ids)
	}
}

func TestThreadsAppendCopies(t *testing.T) {
	orig := ThreadList{{Key: "42", MessageIDs: []int64{1}}}
	next, changed := threadsAppend(orig, "42", 2)
	if !changed {
		t.Fatal("expected change")
	}
	if len(orig[0].MessageIDs) != 1 {
		t.Fatalf("original version mutated: %v", orig[0].MessageIDs)
	}
	if len(next[0].MessageIDs) != 2 {
		t.Fatalf("new version missing append: %v", next[0].MessageIDs)
	}
}

func TestThreadsRemoveReferenceStable(t *testing.T) {
	threads := ThreadList{{Key: "42", MessageIDs: []int64{1, 2}}}

	same, changed := threadsRemove(threads, []int64{99})
	if changed {
		t.Fatal("removal of absent ids reported a change")
	}
	if &same[0] != &threads[0] {
		t.Fatal("expected the original backing array")
	}
}

func TestThreadsRemovePrunesEmpty(t *testing.T) {
	threads := ThreadList{
		{Key: "42", MessageIDs: []int64{1}},
		{Key: "99", MessageIDs: []int64{2, 3}},
	}

	next, changed := threadsRemove(threads, []int64{1, 3})
	if !changed {
		t.Fatal("expected change")
	}
	if len(next) != 1 || next[0].Key != "99" {
		t.Fatalf("pruning wrong: %+v", next)
	}
	if len(next[0].MessageIDs) != 1 || next[0].MessageIDs[0] != 2 {
		t.Fatalf("surviving ids wrong: %v", next[0].MessageIDs)
	}
}

func TestMentionsAddIdempotent(t *testing.T) {
	m := MentionSet{}
	m, changed := mentionsAdd(m, 5)
	if !changed {
		t.Fatal("first add must change")
	}
	_, changed = mentionsAdd(m, 5)
	if changed {
		t.Fatal("second add must be a no-op")
	}
}
