package models

import (
	"encoding/json"
	"testing"
)

func TestHuddleKeyCanonical(t *testing.T) {
	cases := []struct {
		name string
		ids  []int64
		want string
	}{
		{"sorted input", []int64{1, 2, 3}, "1,2,3"},
		{"unsorted input", []int64{9, 3, 21}, "3,9,21"},
		{"single", []int64{7}, "7"},
		{"empty", nil, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := HuddleKey(tc.ids); got != tc.want {
				t.Fatalf("HuddleKey(%v) = %q, want %q", tc.ids, got, tc.want)
			}
		})
	}
}

func TestHuddleKeyDoesNotMutateInput(t *testing.T) {
	ids := []int64{5, 1, 3}
	_ = HuddleKey(ids)
	if ids[0] != 5 || ids[1] != 1 || ids[2] != 3 {
		t.Fatalf("HuddleKey mutated its input: %v", ids)
	}
}

func TestPmKey(t *testing.T) {
	msg := &Message{
		Type: MessageTypePrivate,
		Recipients: []Recipient{
			{ID: 10, Email: "self@example.com"},
			{ID: 42, Email: "other@example.com"},
		},
	}

	if got := PmKey(msg, 10); got != "42" {
		t.Fatalf("PmKey = %q, want 42", got)
	}

	self := &Message{
		Type:       MessageTypePrivate,
		Recipients: []Recipient{{ID: 10}},
	}
	if got := PmKey(self, 10); got != "10" {
		t.Fatalf("self PmKey = %q, want 10", got)
	}
}

func TestEventUnmarshalKeepsRawEnvelope(t *testing.T) {
	data := []byte(`{"id":17,"type":"message","message":{"id":100,"type":"stream","stream_id":5,"subject":"foo","sender_id":2,"timestamp":1700000000},"flags":["mentioned"]}`)

	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if ev.ID != 17 || ev.Type != EventTypeMessage {
		t.Fatalf("unexpected header: %+v", ev)
	}

	var payload MessageEvent
	if err := ev.Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Message.ID != 100 || payload.Message.StreamID != 5 {
		t.Fatalf("unexpected payload: %+v", payload.Message)
	}
	if !IsMentioned(payload.Flags) {
		t.Fatal("expected mentioned flag")
	}
}

func TestUpdateMessageEventIsMove(t *testing.T) {
	s := func(v string) *string { return &v }
	i := func(v int64) *int64 { return &v }

	cases := []struct {
		name string
		ev   UpdateMessageEvent
		want bool
	}{
		{"content-only edit", UpdateMessageEvent{MessageID: 1}, false},
		{"same topic", UpdateMessageEvent{OrigSubject: s("foo"), Subject: s("foo")}, false},
		{"topic change", UpdateMessageEvent{OrigSubject: s("foo"), Subject: s("bar")}, true},
		{"stream change", UpdateMessageEvent{StreamID: i(1), NewStreamID: i(2)}, true},
		{"stream unchanged", UpdateMessageEvent{StreamID: i(1), NewStreamID: i(1)}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.ev.IsMove(); got != tc.want {
				t.Fatalf("IsMove = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestMessageEventValidate(t *testing.T) {
	ev := MessageEvent{Message: Message{ID: 1, Type: MessageTypeStream}}
	if err := ev.Validate(); err == nil {
		t.Fatal("expected error for stream message without flags")
	}

	ev.Flags = []string{}
	if err := ev.Validate(); err != nil {
		t.Fatalf("empty flags should be valid: %v", err)
	}
}
