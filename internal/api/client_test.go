package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(srv.URL, "bot@example.com", "abcdefghijklmnopqrstuvwxyz123456")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client, srv
}

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient("", "a@b", "key"); err == nil {
		t.Fatal("expected error for empty server")
	}
	if _, err := NewClient("https://chat.example.com", "", "key"); err == nil {
		t.Fatal("expected error for empty email")
	}
	if _, err := NewClient("ftp://chat.example.com", "a@b", "key"); err == nil {
		t.Fatal("expected error for non-http scheme")
	}
}

func TestRegisterParsesSnapshot(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/register" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method %s", r.Method)
		}
		if user, _, ok := r.BasicAuth(); !ok || user != "bot@example.com" {
			t.Errorf("missing basic auth")
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"result":        "success",
			"queue_id":      "q-1",
			"last_event_id": int64(-1),
			"unread_msgs": map[string]any{
				"streams": []map[string]any{
					{"stream_id": 5, "topic": "foo", "unread_message_ids": []int64{1, 2, 3}},
				},
				"pms":      []map[string]any{},
				"huddles":  []map[string]any{},
				"mentions": []int64{2},
			},
		})
	})

	resp, err := client.Register(context.Background())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if resp.QueueID != "q-1" || resp.LastEventID != -1 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if len(resp.UnreadMsgs.Streams) != 1 || resp.UnreadMsgs.Streams[0].Topic != "foo" {
		t.Fatalf("snapshot not decoded: %+v", resp.UnreadMsgs)
	}
}

func TestEventsLongPoll(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/events" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("queue_id") != "q-1" || q.Get("last_event_id") != "41" {
			t.Errorf("unexpected query: %v", q)
		}
		w.Write([]byte(`{"result":"success","events":[
			{"id":42,"type":"heartbeat"},
			{"id":43,"type":"delete_message","message_ids":[7]}
		]}`))
	})

	events, err := client.Events(context.Background(), "q-1", 41)
	if err != nil {
		t.Fatalf("Events: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].ID != 42 || events[1].Type != "delete_message" {
		t.Fatalf("unexpected events: %+v", events)
	}
	if len(events[1].Raw) == 0 {
		t.Fatal("raw envelope not retained")
	}
}

func TestBadEventQueueErrorMapping(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"result":"error","msg":"Bad event queue id","code":"BAD_EVENT_QUEUE_ID"}`))
	})

	_, err := client.Events(context.Background(), "stale", 0)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, ErrBadEventQueue) {
		t.Fatalf("error not mapped to ErrBadEventQueue: %v", err)
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Code != CodeBadEventQueueID {
		t.Fatalf("lost error envelope: %v", err)
	}
}

func TestUnauthorizedMapping(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"result":"error","msg":"Invalid API key","code":"INVALID_API_KEY"}`))
	})

	_, err := client.Register(context.Background())
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("error not mapped to ErrUnauthorized: %v", err)
	}
}

func TestMarkReadSendsFlagUpdate(t *testing.T) {
	var got url.Values
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/messages/flags" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_ = r.ParseForm()
		got = r.PostForm
		w.Write([]byte(`{"result":"success","messages":[1,2]}`))
	})

	if err := client.MarkRead(context.Background(), []int64{1, 2}); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if got.Get("flag") != "read" || got.Get("op") != "add" {
		t.Fatalf("unexpected form: %v", got)
	}
	if got.Get("messages") != "[1,2]" {
		t.Fatalf("unexpected messages param: %q", got.Get("messages"))
	}
}

func TestSendStreamMessage(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if r.PostForm.Get("type") != "stream" || r.PostForm.Get("to") != "general" {
			t.Errorf("unexpected form: %v", r.PostForm)
		}
		w.Write([]byte(`{"result":"success","id":4711}`))
	})

	id, err := client.SendStreamMessage(context.Background(), "general", "hello", "hi all")
	if err != nil {
		t.Fatalf("SendStreamMessage: %v", err)
	}
	if id != 4711 {
		t.Fatalf("id = %d, want 4711", id)
	}
}
