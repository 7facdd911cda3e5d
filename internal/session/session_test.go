package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Arch0125/zulip-mobile/internal/api"
	"github.com/Arch0125/zulip-mobile/internal/events"
	"github.com/Arch0125/zulip-mobile/internal/models"
	"github.com/Arch0125/zulip-mobile/internal/store"
)

// fakeGateway scripts registration responses and event batches. Once
// the scripted batches are exhausted, Events blocks until ctx is done,
// mimicking an idle long-poll.
type fakeGateway struct {
	mu        sync.Mutex
	registers []*models.RegisterResponse
	batches   []func() ([]models.Event, error)
	deleted   []string

	registerCalls int
}

func (g *fakeGateway) Register(ctx context.Context) (*models.RegisterResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.registerCalls >= len(g.registers) {
		return nil, errors.New("unexpected register call")
	}
	resp := g.registers[g.registerCalls]
	g.registerCalls++
	return resp, nil
}

func (g *fakeGateway) Events(ctx context.Context, queueID string, lastEventID int64) ([]models.Event, error) {
	g.mu.Lock()
	if len(g.batches) > 0 {
		next := g.batches[0]
		g.batches = g.batches[1:]
		g.mu.Unlock()
		return next()
	}
	g.mu.Unlock()

	<-ctx.Done()
	return nil, ctx.Err()
}

func (g *fakeGateway) DeleteQueue(ctx context.Context, queueID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.deleted = append(g.deleted, queueID)
	return nil
}

func (g *fakeGateway) registerCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.registerCalls
}

func registration(queueID string, lastEventID int64) *models.RegisterResponse {
	return &models.RegisterResponse{
		QueueID:     queueID,
		LastEventID: lastEventID,
		UserID:      10,
		UnreadMsgs: models.UnreadSnapshot{
			Streams: []models.UnreadStreamSnapshot{
				{StreamID: 7, Topic: "deploys", UnreadMessageIDs: []int64{100, 101}},
			},
		},
	}
}

func parseEvent(t *testing.T, raw string) models.Event {
	t.Helper()
	var ev models.Event
	require.NoError(t, json.Unmarshal([]byte(raw), &ev))
	return ev
}

// batchOf scripts one single-event batch per event, in order.
func batchOf(evs ...models.Event) []func() ([]models.Event, error) {
	out := make([]func() ([]models.Event, error), len(evs))
	for i, ev := range evs {
		ev := ev
		out[i] = func() ([]models.Event, error) { return []models.Event{ev}, nil }
	}
	return out
}

func fastConfig() events.ConsumerConfig {
	return events.ConsumerConfig{
		RetryBackoff:    time.Millisecond,
		MaxRetryBackoff: 5 * time.Millisecond,
	}
}

func runSession(t *testing.T, s *Session) (cancel func(), done chan error) {
	t.Helper()
	ctx, stop := context.WithCancel(context.Background())
	done = make(chan error, 1)
	go func() {
		done <- s.Run(ctx)
		close(done)
	}()

	t.Cleanup(func() {
		stop()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("session did not stop")
		}
	})
	return stop, done
}

func TestRunSeedsStateFromSnapshot(t *testing.T) {
	gateway := &fakeGateway{registers: []*models.RegisterResponse{registration("q1", 5)}}
	s := New(gateway, nil, fastConfig())

	runSession(t, s)

	require.Eventually(t, func() bool { return s.QueueID() == "q1" },
		time.Second, time.Millisecond)

	state := s.Snapshot()
	assert.Equal(t, 2, state.StreamsTotal())
	assert.Equal(t, 2, state.TopicCount(7, "deploys"))
	assert.Equal(t, int64(10), s.OwnUserID())
}

func TestRunAppliesStreamedEvents(t *testing.T) {
	gateway := &fakeGateway{
		registers: []*models.RegisterResponse{registration("q1", 5)},
		batches: batchOf(parseEvent(t, `{
			"id": 6, "type": "message",
			"message": {"id": 102, "type": "stream", "sender_id": 20, "stream_id": 7, "subject": "deploys", "content": "done"},
			"flags": []
		}`)),
	}
	s := New(gateway, nil, fastConfig())

	runSession(t, s)

	require.Eventually(t, func() bool { return s.Snapshot().StreamsTotal() == 3 },
		time.Second, time.Millisecond)
	assert.Equal(t, []int64{100, 101, 102}, s.Snapshot().TopicIDs(7, "deploys"))
}

func TestRunReregistersAfterQueueExpiry(t *testing.T) {
	second := registration("q2", 50)
	second.UnreadMsgs = models.UnreadSnapshot{
		Pms: []models.UnreadPmSnapshot{{SenderID: 42, UnreadMessageIDs: []int64{200}}},
	}

	gateway := &fakeGateway{
		registers: []*models.RegisterResponse{registration("q1", 5), second},
		batches: []func() ([]models.Event, error){
			func() ([]models.Event, error) { return nil, api.ErrBadEventQueue },
		},
	}
	s := New(gateway, nil, fastConfig())

	runSession(t, s)

	require.Eventually(t, func() bool { return s.QueueID() == "q2" },
		time.Second, time.Millisecond)
	assert.Equal(t, 2, gateway.registerCount())
	assert.Equal(t, 0, s.Snapshot().StreamsTotal())
	assert.Equal(t, 1, s.Snapshot().PmsTotal())
}

func TestRunMirrorsEventsToCache(t *testing.T) {
	st, err := store.OpenInMemory()
	require.NoError(t, err)
	defer st.Close()

	gateway := &fakeGateway{
		registers: []*models.RegisterResponse{registration("q1", 5)},
		batches: batchOf(
			parseEvent(t, `{
				"id": 6, "type": "message",
				"message": {"id": 102, "type": "stream", "sender_id": 20, "stream_id": 7, "subject": "deploys", "content": "done", "timestamp": 1700000000},
				"flags": ["mentioned"]
			}`),
			parseEvent(t, `{
				"id": 7, "type": "update_message_flags",
				"op": "add", "flag": "read", "all": false, "messages": [102]
			}`),
		),
	}
	s := New(gateway, st, fastConfig())

	runSession(t, s)

	messages := store.NewMessageRepository(st)
	require.Eventually(t, func() bool {
		_, flags, err := messages.Get(context.Background(), 102)
		if err != nil {
			return false
		}
		for _, f := range flags {
			if f == models.FlagRead {
				return true
			}
		}
		return false
	}, time.Second, time.Millisecond)

	msg, flags, err := messages.Get(context.Background(), 102)
	require.NoError(t, err)
	assert.Equal(t, "done", msg.Content)
	assert.ElementsMatch(t, []string{models.FlagMentioned, models.FlagRead}, flags)

	// The aggregate dropped the message on mark-read.
	assert.Equal(t, 2, s.Snapshot().StreamsTotal())
}

func TestRunPersistsSnapshotOnShutdown(t *testing.T) {
	st, err := store.OpenInMemory()
	require.NoError(t, err)
	defer st.Close()

	gateway := &fakeGateway{
		registers: []*models.RegisterResponse{registration("q1", 5)},
		batches: batchOf(parseEvent(t, `{
			"id": 6, "type": "message",
			"message": {"id": 102, "type": "stream", "sender_id": 20, "stream_id": 7, "subject": "deploys", "content": "done"},
			"flags": []
		}`)),
	}
	s := New(gateway, st, fastConfig())

	stop, done := runSession(t, s)
	require.Eventually(t, func() bool { return s.Snapshot().StreamsTotal() == 3 },
		time.Second, time.Millisecond)

	stop()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("session did not stop")
	}

	cached, err := store.NewUnreadSnapshotRepository(st).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "q1", cached.QueueID)
	assert.Equal(t, int64(6), cached.LastEventID)
	require.Len(t, cached.Snapshot.Streams, 1)
	assert.Equal(t, []int64{100, 101, 102}, cached.Snapshot.Streams[0].UnreadMessageIDs)
}

func TestCloseDeletesQueueAndClearsCache(t *testing.T) {
	st, err := store.OpenInMemory()
	require.NoError(t, err)
	defer st.Close()

	gateway := &fakeGateway{registers: []*models.RegisterResponse{registration("q1", 5)}}
	s := New(gateway, st, fastConfig())

	runSession(t, s)
	require.Eventually(t, func() bool { return s.QueueID() == "q1" },
		time.Second, time.Millisecond)

	require.NoError(t, s.Close(context.Background()))

	assert.Equal(t, []string{"q1"}, gateway.deleted)
	assert.Equal(t, "", s.QueueID())
	assert.Equal(t, 0, s.Snapshot().Total())

	_, err = store.NewUnreadSnapshotRepository(st).Load(context.Background())
	assert.ErrorIs(t, err, store.ErrNoSnapshot)
}
